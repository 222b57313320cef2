package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/contact-log-api/internal/dto"
	"github.com/noah-isme/contact-log-api/internal/models"
	appErrors "github.com/noah-isme/contact-log-api/pkg/errors"
	"github.com/noah-isme/contact-log-api/pkg/schoolday"
)

const (
	dashboardCachePrefix       = "dashboard"
	defaultDashboardHistory    = 200
	dashboardEntriesPageSize   = 500
	defaultDashboardCacheTTL   = 2 * time.Minute
	maxDashboardQueryRuneCount = 100
)

type classDirectory interface {
	ListByHomeroomTeacher(ctx context.Context, teacherID string) ([]models.ClassRoomDetail, error)
	FindByID(ctx context.Context, id string) (*models.ClassRoomDetail, error)
}

type rosterReader interface {
	ListByClassRooms(ctx context.Context, classRoomIDs []string) ([]models.StudentDetail, error)
}

type entryLister interface {
	List(ctx context.Context, filter models.EntryFilter) ([]models.EntryDetail, int, error)
}

type targetDateProvider interface {
	TargetDate(ctx context.Context) (time.Time, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	HistoryLimit int
	CacheTTL     time.Duration
}

// DashboardService composes the homeroom teacher's view of the current target day.
type DashboardService struct {
	classes  classDirectory
	roster   rosterReader
	entries  entryLister
	calendar targetDateProvider
	cache    *CacheService
	logger   *zap.Logger
	cfg      DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(classes classDirectory, roster rosterReader, entries entryLister, calendar targetDateProvider, cache *CacheService, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultDashboardHistory
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultDashboardCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		classes:  classes,
		roster:   roster,
		entries:  entries,
		calendar: calendar,
		cache:    cache,
		logger:   logger,
		cfg:      cfg,
	}
}

// Teacher returns the dashboard for the actor's homeroom classes and indicates cache utilisation.
// q optionally narrows the history list by content or student name.
func (s *DashboardService) Teacher(ctx context.Context, actor *models.JWTClaims, q string) (*dto.TeacherDashboard, bool, error) {
	if actor == nil {
		return nil, false, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleTeacher {
		return nil, false, appErrors.Clone(appErrors.ErrForbidden, "only teachers have a homeroom dashboard")
	}
	q = strings.TrimSpace(q)
	if len([]rune(q)) > maxDashboardQueryRuneCount {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "search query is too long")
	}

	target, err := s.calendar.TargetDate(ctx)
	if err != nil {
		return nil, false, err
	}

	cacheKey := CacheKey(dashboardCachePrefix, actor.UserID, schoolday.Key(target), q)
	var cached dto.TeacherDashboard
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, true, nil
	}

	dashboard, err := s.compose(ctx, actor.UserID, target, q)
	if err != nil {
		return nil, false, err
	}
	_ = s.cache.Set(ctx, cacheKey, dashboard, s.cfg.CacheTTL)
	return dashboard, false, nil
}

func (s *DashboardService) compose(ctx context.Context, teacherID string, target time.Time, q string) (*dto.TeacherDashboard, error) {
	dashboard := &dto.TeacherDashboard{
		TargetDate:   schoolday.Key(target),
		Classes:      []models.ClassRoomDetail{},
		EntriesToday: []models.EntryDetail{},
		NotSubmitted: []models.StudentDetail{},
		History:      []models.EntryDetail{},
		Query:        q,
	}

	classes, err := s.classes.ListByHomeroomTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load homeroom classes")
	}
	if len(classes) == 0 {
		return dashboard, nil
	}
	dashboard.Classes = classes

	classIDs := make([]string, len(classes))
	for i, c := range classes {
		classIDs[i] = c.ID
	}

	today, err := collectEntries(ctx, s.entries, models.EntryFilter{ClassRoomIDs: classIDs, TargetDate: &target})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load entries")
	}
	dashboard.EntriesToday = today

	students, err := s.roster.ListByClassRooms(ctx, classIDs)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load class roster")
	}
	dashboard.NotSubmitted = notSubmitted(students, today)

	history, _, err := s.entries.List(ctx, models.EntryFilter{
		ClassRoomIDs: classIDs,
		Search:       q,
		Page:         1,
		PageSize:     s.cfg.HistoryLimit,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load entry history")
	}
	if history != nil {
		dashboard.History = history
	}

	s.logger.Debug("dashboard composed",
		zap.String("teacher_id", teacherID),
		zap.String("target_date", dashboard.TargetDate),
		zap.Int("classes", len(classes)),
		zap.Int("entries_today", len(today)),
		zap.Int("not_submitted", len(dashboard.NotSubmitted)))
	return dashboard, nil
}

// collectEntries follows pages until every entry matching filter is loaded.
func collectEntries(ctx context.Context, lister entryLister, filter models.EntryFilter) ([]models.EntryDetail, error) {
	collected := []models.EntryDetail{}
	filter.PageSize = dashboardEntriesPageSize
	for page := 1; ; page++ {
		filter.Page = page
		batch, total, err := lister.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		collected = append(collected, batch...)
		if len(batch) == 0 || len(collected) >= total {
			return collected, nil
		}
	}
}

func notSubmitted(students []models.StudentDetail, entries []models.EntryDetail) []models.StudentDetail {
	submitted := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		submitted[e.StudentID] = struct{}{}
	}
	missing := []models.StudentDetail{}
	for _, st := range students {
		if _, ok := submitted[st.ID]; !ok {
			missing = append(missing, st)
		}
	}
	return missing
}
