package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
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
	entryResource            = "entry"
	defaultSubmitMaxAttempts = 3
)

type entryStore interface {
	WithinTx(ctx context.Context, fn func(tx repository.EntryTx) error) error
	FindByID(ctx context.Context, id string) (*models.Entry, error)
	FindDetailByID(ctx context.Context, id string) (*models.EntryDetail, error)
	FindByStudentDate(ctx context.Context, studentID string, targetDate time.Time) (*models.Entry, error)
	MarkRead(ctx context.Context, id, readerID string, at time.Time) (bool, error)
	MarkUnread(ctx context.Context, id string, at time.Time) (bool, error)
	MarkReadMany(ctx context.Context, ids []string, readerID string, at time.Time) ([]string, error)
	MarkUnreadMany(ctx context.Context, ids []string, at time.Time) ([]string, error)
	ExistingIDs(ctx context.Context, ids []string) ([]string, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter models.EntryFilter) ([]models.EntryDetail, int, error)
}

type studentDirectory interface {
	FindByUserID(ctx context.Context, userID string) (*models.StudentDetail, error)
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
}

// EntryServiceConfig tunes the submission workflow.
type EntryServiceConfig struct {
	SubmitMaxAttempts int
}

// EntryService runs the contact-log entry lifecycle: submission for the resolved school day,
// review (Submitted -> Read) and administrative unlock (Read -> Submitted).
type EntryService struct {
	entries   entryStore
	students  studentDirectory
	holidays  HolidayOracleProvider
	resolver  *schoolday.Resolver
	cache     *CacheService
	metrics   *MetricsService
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
	cfg       EntryServiceConfig
}

// NewEntryService wires the service. cache, metrics and audit may be nil.
func NewEntryService(
	entries entryStore,
	students studentDirectory,
	holidays HolidayOracleProvider,
	resolver *schoolday.Resolver,
	cache *CacheService,
	metrics *MetricsService,
	audit auditWriter,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg EntryServiceConfig,
) *EntryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SubmitMaxAttempts <= 0 {
		cfg.SubmitMaxAttempts = defaultSubmitMaxAttempts
	}
	return &EntryService{
		entries:   entries,
		students:  students,
		holidays:  holidays,
		resolver:  resolver,
		cache:     cache,
		metrics:   metrics,
		audit:     audit,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// TargetDate resolves the single school day submissions are accepted for right now.
func (s *EntryService) TargetDate(ctx context.Context) (time.Time, error) {
	oracle, err := s.holidays.Oracle(ctx, s.resolver.Today())
	if err != nil {
		return time.Time{}, err
	}
	return s.resolver.TargetDate(oracle), nil
}

// Calendar describes today's resolution for clients.
func (s *EntryService) Calendar(ctx context.Context) (*dto.TargetDateResponse, error) {
	target, err := s.TargetDate(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.TargetDateResponse{
		Today:      schoolday.Key(s.resolver.Today()),
		TargetDate: schoolday.Key(target),
		Timezone:   s.resolver.Location().String(),
	}, nil
}

// Validate checks a candidate entry against the current target date and the stored row it replaces.
// existing is nil for a brand new entry.
func (s *EntryService) Validate(ctx context.Context, entry, existing *models.Entry) error {
	target, err := s.TargetDate(ctx)
	if err != nil {
		return err
	}
	return validateEntry(entry, existing, target)
}

func validateEntry(entry, existing *models.Entry, target time.Time) error {
	if entry == nil {
		return appErrors.Clone(appErrors.ErrValidation, "entry is required")
	}
	if existing.IsRead() {
		return appErrors.ErrEntryLocked
	}
	if !schoolday.SameDay(entry.TargetDate, target) {
		return appErrors.Clone(appErrors.ErrTargetDateMismatch, "entries can only be written for "+schoolday.Key(target))
	}
	if strings.TrimSpace(entry.Content) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "content is required")
	}
	if !models.RatingInRange(entry.ConditionRating) || !models.RatingInRange(entry.MoodRating) {
		return appErrors.Clone(appErrors.ErrValidation, "ratings must be between 1 and 5")
	}
	return nil
}

// Submit creates or updates the student's entry for the target date. Editing an entry that
// has already been read is not an error: the entry is returned untouched with outcome EDIT_LOCKED.
// The read lock is checked before the payload, so a locked entry reports EDIT_LOCKED even when
// the submitted content or ratings are invalid.
func (s *EntryService) Submit(ctx context.Context, actor *models.JWTClaims, req dto.SubmitEntryRequest) (*dto.SubmitResult, error) {
	student, err := s.requireStudent(ctx, actor)
	if err != nil {
		return nil, err
	}
	content, condition, mood, payloadErr := s.normaliseSubmission(req)

	oracle, err := s.holidays.Oracle(ctx, s.resolver.Today())
	if err != nil {
		return nil, err
	}
	target := s.resolver.TargetDate(oracle)

	var result *dto.SubmitResult
	for attempt := 1; ; attempt++ {
		result, err = s.submitOnce(ctx, student.ID, target, content, condition, mood, payloadErr, func() time.Time {
			return s.resolver.TargetDate(oracle)
		})
		if !errors.Is(err, repository.ErrEntryConflict) {
			break
		}
		if attempt >= s.cfg.SubmitMaxAttempts {
			s.logger.Warn("entry submission kept conflicting",
				zap.String("student_id", student.ID),
				zap.String("target_date", schoolday.Key(target)),
				zap.Int("attempts", attempt))
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "entry is being modified concurrently, please retry")
		}
		s.metrics.RecordSubmitRetry()
	}
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, appErrors.Internal(err, "failed to save entry")
	}

	s.metrics.RecordSubmission(result.Outcome)
	if result.Outcome != dto.SubmitOutcomeEditLocked {
		s.invalidateDashboards(ctx, student.HomeroomTeacherID)
	}
	return result, nil
}

func (s *EntryService) submitOnce(ctx context.Context, studentID string, target time.Time, content string, condition, mood int, payloadErr error, targetNow func() time.Time) (*dto.SubmitResult, error) {
	var result *dto.SubmitResult
	err := s.entries.WithinTx(ctx, func(tx repository.EntryTx) error {
		existing, err := tx.LockByStudentDate(ctx, studentID, target)
		if err != nil {
			return err
		}
		if existing.IsRead() {
			result = &dto.SubmitResult{Outcome: dto.SubmitOutcomeEditLocked, TargetDate: schoolday.Key(target), Entry: existing}
			return nil
		}
		if payloadErr != nil {
			return payloadErr
		}

		now := s.resolver.Now().UTC()
		if existing == nil {
			entry := &models.Entry{
				ID:              uuid.NewString(),
				StudentID:       studentID,
				TargetDate:      target,
				Content:         content,
				ConditionRating: condition,
				MoodRating:      mood,
				Status:          models.EntryStatusSubmitted,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if err := validateEntry(entry, nil, targetNow()); err != nil {
				return err
			}
			if err := tx.Insert(ctx, entry); err != nil {
				return err
			}
			result = &dto.SubmitResult{Outcome: dto.SubmitOutcomeCreated, TargetDate: schoolday.Key(target), Entry: entry}
			return nil
		}

		updated := *existing
		updated.Content = content
		updated.ConditionRating = condition
		updated.MoodRating = mood
		updated.UpdatedAt = now
		if err := validateEntry(&updated, existing, targetNow()); err != nil {
			return err
		}
		if err := tx.UpdateContent(ctx, &updated); err != nil {
			return err
		}
		result = &dto.SubmitResult{Outcome: dto.SubmitOutcomeUpdated, TargetDate: schoolday.Key(target), Entry: &updated}
		return nil
	})
	return result, err
}

// Update is the strict save path for a student editing an entry by id. Every rule violation,
// including a read lock or a stale target date, is returned as an error.
func (s *EntryService) Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.SubmitEntryRequest) (*models.Entry, error) {
	student, err := s.requireStudent(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "entry not found")
	}
	content, condition, mood, err := s.normaliseSubmission(req)
	if err != nil {
		return nil, err
	}
	oracle, err := s.holidays.Oracle(ctx, s.resolver.Today())
	if err != nil {
		return nil, err
	}

	var saved *models.Entry
	err = s.entries.WithinTx(ctx, func(tx repository.EntryTx) error {
		existing, err := tx.LockByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "entry not found")
			}
			return err
		}
		if existing.StudentID != student.ID {
			return appErrors.Clone(appErrors.ErrForbidden, "entry belongs to another student")
		}

		candidate := *existing
		candidate.Content = content
		candidate.ConditionRating = condition
		candidate.MoodRating = mood
		candidate.UpdatedAt = s.resolver.Now().UTC()
		if err := validateEntry(&candidate, existing, s.resolver.TargetDate(oracle)); err != nil {
			return err
		}
		if err := tx.UpdateContent(ctx, &candidate); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.ErrEntryLocked
			}
			return err
		}
		saved = &candidate
		return nil
	})
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, appErrors.Internal(err, "failed to update entry")
	}

	s.invalidateDashboards(ctx, student.HomeroomTeacherID)
	return saved, nil
}

// Review marks an entry as read. Only the homeroom teacher of the entry's class, or an
// administrator, may review. Reviewing an already-read entry succeeds without changing it.
func (s *EntryService) Review(ctx context.Context, actor *models.JWTClaims, id string) (*dto.ReviewResult, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleTeacher && !actor.Role.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only teachers can review entries")
	}
	if !validID(id) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "entry not found")
	}

	entry, err := s.findEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	student, err := s.entryOwner(ctx, entry.StudentID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsAdmin() && student.HomeroomTeacherID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you are not the homeroom teacher of this student")
	}

	transitioned, err := s.entries.MarkRead(ctx, id, actor.UserID, s.resolver.Now().UTC())
	if err != nil {
		return nil, appErrors.Internal(err, "failed to mark entry as read")
	}
	s.metrics.RecordReview(transitioned)

	current, err := s.findEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if transitioned {
		s.logger.Info("entry marked as read",
			zap.String("entry_id", id),
			zap.String("reader_id", actor.UserID))
		recordAudit(ctx, s.audit, s.logger, &models.AuditLog{
			UserID:     &actor.UserID,
			Action:     models.AuditActionEntryRead,
			Resource:   entryResource,
			ResourceID: &id,
			NewValues:  auditPayload(map[string]interface{}{"status": current.Status, "read_at": current.ReadAt}),
			IPAddress:  "system",
			UserAgent:  "entry-service",
		})
		s.invalidateDashboards(ctx, student.HomeroomTeacherID)
	}
	return &dto.ReviewResult{Transitioned: transitioned, Entry: current}, nil
}

// Unlock returns an entry to the unread state. Unlocking an unread entry is a no-op.
func (s *EntryService) Unlock(ctx context.Context, actor *models.JWTClaims, id string) (*models.Entry, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "entry not found")
	}

	found, err := s.entries.MarkUnread(ctx, id, s.resolver.Now().UTC())
	if err != nil {
		return nil, appErrors.Internal(err, "failed to unlock entry")
	}
	if !found {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "entry not found")
	}
	s.metrics.RecordUnlocks(1)

	entry, err := s.findEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	recordAudit(ctx, s.audit, s.logger, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionEntryUnlock,
		Resource:   entryResource,
		ResourceID: &id,
		NewValues:  auditPayload(map[string]interface{}{"status": entry.Status}),
		IPAddress:  "system",
		UserAgent:  "entry-service",
	})
	s.invalidateDashboards(ctx, "")
	return entry, nil
}

// MarkReadBulk reviews many entries at once on behalf of an administrator.
func (s *EntryService) MarkReadBulk(ctx context.Context, actor *models.JWTClaims, req dto.BulkEntryRequest) (*dto.BulkResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk payload")
	}
	ids, invalid := partitionIDs(req.IDs)

	var existing, changed []string
	if len(ids) > 0 {
		var err error
		if existing, err = s.entries.ExistingIDs(ctx, ids); err != nil {
			return nil, appErrors.Internal(err, "failed to check entries")
		}
		if changed, err = s.entries.MarkReadMany(ctx, ids, actor.UserID, s.resolver.Now().UTC()); err != nil {
			return nil, appErrors.Internal(err, "failed to mark entries as read")
		}
	}
	for range changed {
		s.metrics.RecordReview(true)
	}

	result := &dto.BulkResult{
		Requested: len(ids) + len(invalid),
		Affected:  len(changed),
		Missing:   append(invalid, difference(ids, existing)...),
	}
	s.auditBulk(ctx, actor, models.AuditActionEntryRead, changed)
	if len(changed) > 0 {
		s.invalidateDashboards(ctx, "")
	}
	return result, nil
}

// UnlockBulk unlocks many entries at once.
func (s *EntryService) UnlockBulk(ctx context.Context, actor *models.JWTClaims, req dto.BulkEntryRequest) (*dto.BulkResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk payload")
	}
	ids, invalid := partitionIDs(req.IDs)

	var changed []string
	if len(ids) > 0 {
		var err error
		if changed, err = s.entries.MarkUnreadMany(ctx, ids, s.resolver.Now().UTC()); err != nil {
			return nil, appErrors.Internal(err, "failed to unlock entries")
		}
	}
	s.metrics.RecordUnlocks(len(changed))

	result := &dto.BulkResult{
		Requested: len(ids) + len(invalid),
		Affected:  len(changed),
		Missing:   append(invalid, difference(ids, changed)...),
	}
	s.auditBulk(ctx, actor, models.AuditActionEntryUnlock, changed)
	if len(changed) > 0 {
		s.invalidateDashboards(ctx, "")
	}
	return result, nil
}

// Delete hard-deletes an entry, returning the student to "not submitted" for that day.
func (s *EntryService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if !validID(id) {
		return appErrors.Clone(appErrors.ErrNotFound, "entry not found")
	}
	entry, err := s.findEntry(ctx, id)
	if err != nil {
		return err
	}
	deleted, err := s.entries.Delete(ctx, id)
	if err != nil {
		return appErrors.Internal(err, "failed to delete entry")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "entry not found")
	}

	recordAudit(ctx, s.audit, s.logger, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionEntryDelete,
		Resource:   entryResource,
		ResourceID: &id,
		OldValues: auditPayload(map[string]interface{}{
			"student_id":  entry.StudentID,
			"target_date": schoolday.Key(entry.TargetDate),
			"status":      entry.Status,
		}),
		IPAddress: "system",
		UserAgent: "entry-service",
	})
	s.invalidateDashboards(ctx, "")
	return nil
}

// Today returns the student's state for the current target date.
func (s *EntryService) Today(ctx context.Context, actor *models.JWTClaims) (*dto.TodayEntry, error) {
	student, err := s.requireStudent(ctx, actor)
	if err != nil {
		return nil, err
	}
	target, err := s.TargetDate(ctx)
	if err != nil {
		return nil, err
	}
	entry, err := s.entries.FindByStudentDate(ctx, student.ID, target)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load today's entry")
	}
	return &dto.TodayEntry{
		TargetDate: schoolday.Key(target),
		Submitted:  entry != nil,
		Editable:   !entry.IsRead(),
		Entry:      entry,
	}, nil
}

// ListMine pages through the student's own history, newest first.
func (s *EntryService) ListMine(ctx context.Context, actor *models.JWTClaims, page, pageSize int) ([]models.EntryDetail, *models.Pagination, error) {
	student, err := s.requireStudent(ctx, actor)
	if err != nil {
		return nil, nil, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	entries, total, err := s.entries.List(ctx, models.EntryFilter{StudentID: student.ID, Page: page, PageSize: pageSize})
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list entries")
	}
	return entries, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns one entry to its owner, the owner's homeroom teacher, or an administrator.
func (s *EntryService) Get(ctx context.Context, actor *models.JWTClaims, id string) (*models.EntryDetail, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !validID(id) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "entry not found")
	}
	detail, err := s.entries.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "entry not found")
		}
		return nil, appErrors.Internal(err, "failed to load entry")
	}
	if actor.Role.IsAdmin() {
		return detail, nil
	}

	owner, err := s.entryOwner(ctx, detail.StudentID)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case models.RoleStudent:
		if owner.UserID == actor.UserID {
			return detail, nil
		}
	case models.RoleTeacher:
		if owner.HomeroomTeacherID == actor.UserID {
			return detail, nil
		}
	}
	return nil, appErrors.ErrForbidden
}

func (s *EntryService) requireStudent(ctx context.Context, actor *models.JWTClaims) (*models.StudentDetail, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students can write entries")
	}
	student, err := s.students.FindByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "no student profile is linked to this account")
		}
		return nil, appErrors.Internal(err, "failed to load student profile")
	}
	return student, nil
}

// normaliseSubmission trims content and applies the neutral default to omitted ratings.
// Supplied ratings outside 1..5 are rejected, never coerced.
func (s *EntryService) normaliseSubmission(req dto.SubmitEntryRequest) (string, int, int, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", 0, 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid entry payload")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return "", 0, 0, appErrors.Clone(appErrors.ErrValidation, "content is required")
	}
	return content, ratingOrDefault(req.ConditionRating), ratingOrDefault(req.MoodRating), nil
}

// entryOwner loads the student an entry belongs to. An entry whose student no longer
// exists is reported as not found.
func (s *EntryService) entryOwner(ctx context.Context, studentID string) (*models.StudentDetail, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "entry not found")
		}
		return nil, appErrors.Internal(err, "failed to load entry owner")
	}
	return student, nil
}

func (s *EntryService) findEntry(ctx context.Context, id string) (*models.Entry, error) {
	entry, err := s.entries.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "entry not found")
		}
		return nil, appErrors.Internal(err, "failed to load entry")
	}
	return entry, nil
}

func (s *EntryService) auditBulk(ctx context.Context, actor *models.JWTClaims, action string, ids []string) {
	if len(ids) == 0 {
		return
	}
	recordAudit(ctx, s.audit, s.logger, &models.AuditLog{
		UserID:    &actor.UserID,
		Action:    action,
		Resource:  entryResource,
		NewValues: auditPayload(map[string]interface{}{"ids": ids}),
		IPAddress: "system",
		UserAgent: "entry-service",
	})
}

// invalidateDashboards drops one teacher's cached dashboards, or all of them when teacherID is empty.
func (s *EntryService) invalidateDashboards(ctx context.Context, teacherID string) {
	pattern := dashboardCachePrefix + ":*"
	if teacherID != "" {
		pattern = CacheKey(dashboardCachePrefix, teacherID, "*")
	}
	_ = s.cache.Invalidate(ctx, pattern)
}

func requireAdmin(actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if !actor.Role.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "administrator role required")
	}
	return nil
}

func ratingOrDefault(v *int) int {
	if v == nil {
		return models.RatingDefault
	}
	return *v
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// partitionIDs de-duplicates ids and separates out those that are not UUIDs.
func partitionIDs(raw []string) (valid, invalid []string) {
	seen := make(map[string]struct{}, len(raw))
	for _, id := range raw {
		id = strings.TrimSpace(id)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if validID(id) {
			valid = append(valid, id)
		} else {
			invalid = append(invalid, id)
		}
	}
	return valid, invalid
}

func difference(all, present []string) []string {
	found := make(map[string]struct{}, len(present))
	for _, id := range present {
		found[id] = struct{}{}
	}
	var missing []string
	for _, id := range all {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
