package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/contact-log-api/internal/dto"
	"github.com/noah-isme/contact-log-api/internal/models"
	"github.com/noah-isme/contact-log-api/internal/repository"
	appErrors "github.com/noah-isme/contact-log-api/pkg/errors"
	"github.com/noah-isme/contact-log-api/pkg/schoolday"
)

const (
	holidayResource     = "holiday"
	holidayCachePrefix  = "holidays"
	defaultLookbackDays = 62
)

type holidayRepository interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Holiday, error)
	ListByYear(ctx context.Context, year int) ([]models.Holiday, error)
	FindByID(ctx context.Context, id string) (*models.Holiday, error)
	Create(ctx context.Context, holiday *models.Holiday) error
	Delete(ctx context.Context, id string) (bool, error)
}

// HolidayOracleProvider loads the holiday snapshot that is valid for resolving a reference date.
type HolidayOracleProvider interface {
	Oracle(ctx context.Context, ref time.Time) (*schoolday.HolidaySet, error)
}

// HolidayServiceConfig tunes snapshot loading.
type HolidayServiceConfig struct {
	LookbackDays int
	CacheTTL     time.Duration
}

// HolidayService manages the holiday calendar and serves oracle snapshots to the calendar resolver.
type HolidayService struct {
	repo      holidayRepository
	cache     *CacheService
	audit     auditWriter
	resolver  *schoolday.Resolver
	validator *validator.Validate
	logger    *zap.Logger
	cfg       HolidayServiceConfig
}

// NewHolidayService builds the service. cache may be nil.
func NewHolidayService(repo holidayRepository, cache *CacheService, audit auditWriter, resolver *schoolday.Resolver, validate *validator.Validate, logger *zap.Logger, cfg HolidayServiceConfig) *HolidayService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = defaultLookbackDays
	}
	return &HolidayService{
		repo:      repo,
		cache:     cache,
		audit:     audit,
		resolver:  resolver,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Oracle returns the holidays dated within the lookback window ending at ref, plus recurring ones.
// A storage failure is returned before any resolution happens.
func (s *HolidayService) Oracle(ctx context.Context, ref time.Time) (*schoolday.HolidaySet, error) {
	to := schoolday.Date(ref, s.resolver.Location())
	from := to.AddDate(0, 0, -s.cfg.LookbackDays)
	key := CacheKey(holidayCachePrefix, schoolday.Key(from), schoolday.Key(to))

	var holidays []models.Holiday
	if hit, _ := s.cache.Get(ctx, key, &holidays); !hit {
		loaded, err := s.repo.ListBetween(ctx, from, to)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to load holiday calendar")
		}
		holidays = loaded
		_ = s.cache.Set(ctx, key, holidays, s.cfg.CacheTTL)
	}

	rules := make([]schoolday.Holiday, 0, len(holidays))
	for _, h := range holidays {
		rules = append(rules, schoolday.Holiday{Date: h.Date, Name: h.Name, Recurring: h.RecurringYearly})
	}
	return schoolday.NewHolidaySet(rules...), nil
}

// List returns the holidays for a calendar year, defaulting to the current school year.
func (s *HolidayService) List(ctx context.Context, filter dto.HolidayFilter) ([]models.Holiday, error) {
	year := filter.Year
	if year == 0 {
		year = s.resolver.Today().Year()
	}
	if year < 1900 || year > 9999 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "year is out of range")
	}
	holidays, err := s.repo.ListByYear(ctx, year)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list holidays")
	}
	return holidays, nil
}

// Create registers a holiday and drops cached snapshots.
func (s *HolidayService) Create(ctx context.Context, req dto.CreateHolidayRequest, actor *models.JWTClaims) (*models.Holiday, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid holiday payload")
	}
	date, err := time.Parse(schoolday.DateLayout, req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid holiday date")
	}

	holiday := &models.Holiday{
		ID:              uuid.NewString(),
		Date:            date,
		Name:            req.Name,
		RecurringYearly: req.RecurringYearly,
		CreatedAt:       s.resolver.Now().UTC(),
	}
	if err := s.repo.Create(ctx, holiday); err != nil {
		if errors.Is(err, repository.ErrHolidayExists) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a holiday is already registered for "+req.Date)
		}
		return nil, appErrors.Internal(err, "failed to create holiday")
	}

	s.invalidate(ctx)
	recordAudit(ctx, s.audit, s.logger, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionHolidayCreate,
		Resource:   holidayResource,
		ResourceID: &holiday.ID,
		NewValues:  auditPayload(map[string]interface{}{"date": req.Date, "name": req.Name, "recurring_yearly": req.RecurringYearly}),
		IPAddress:  "system",
		UserAgent:  "holiday-service",
	})
	return holiday, nil
}

// Delete removes a holiday and drops cached snapshots.
func (s *HolidayService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if _, err := uuid.Parse(id); err != nil {
		return appErrors.Clone(appErrors.ErrNotFound, "holiday not found")
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "holiday not found")
		}
		return appErrors.Internal(err, "failed to load holiday")
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Internal(err, "failed to delete holiday")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "holiday not found")
	}

	s.invalidate(ctx)
	recordAudit(ctx, s.audit, s.logger, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionHolidayDelete,
		Resource:   holidayResource,
		ResourceID: &id,
		OldValues:  auditPayload(map[string]interface{}{"date": schoolday.Key(existing.Date), "name": existing.Name, "recurring_yearly": existing.RecurringYearly}),
		IPAddress:  "system",
		UserAgent:  "holiday-service",
	})
	return nil
}

func (s *HolidayService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, holidayCachePrefix+":*"); err != nil {
		s.logger.Warn("holiday snapshots may be stale", zap.Error(err))
	}
	if err := s.cache.Invalidate(ctx, dashboardCachePrefix+":*"); err != nil {
		s.logger.Warn("dashboards may be stale", zap.Error(err))
	}
}
