package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/contact-log-api/internal/dto"
	"github.com/noah-isme/contact-log-api/internal/models"
	appErrors "github.com/noah-isme/contact-log-api/pkg/errors"
	"github.com/noah-isme/contact-log-api/pkg/export"
	"github.com/noah-isme/contact-log-api/pkg/schoolday"
)

const exportStatusNotSubmitted = "NOT_SUBMITTED"

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

var entryExportColumns = []export.Column{
	{Key: "student_no", Title: "Student No", Weight: 1},
	{Key: "name", Title: "Name", Weight: 1.6},
	{Key: "status", Title: "Status", Weight: 1.2},
	{Key: "condition", Title: "Condition", Weight: 0.8},
	{Key: "mood", Title: "Mood", Weight: 0.7},
	{Key: "content", Title: "Content", Weight: 4},
	{Key: "reader", Title: "Read By", Weight: 1.2},
	{Key: "read_at", Title: "Read At", Weight: 1.3},
}

// ExportService renders one class's entries for one day as a downloadable file.
type ExportService struct {
	classes   classDirectory
	roster    rosterReader
	entries   entryLister
	calendar  targetDateProvider
	csv       datasetRenderer
	pdf       datasetRenderer
	location  *time.Location
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(classes classDirectory, roster rosterReader, entries entryLister, calendar targetDateProvider, csv, pdf datasetRenderer, location *time.Location, validate *validator.Validate, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter(true)
	}
	if pdf == nil {
		pdf = export.NewPDFExporter("")
	}
	if location == nil {
		location = time.UTC
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		classes:   classes,
		roster:    roster,
		entries:   entries,
		calendar:  calendar,
		csv:       csv,
		pdf:       pdf,
		location:  location,
		validator: validate,
		logger:    logger,
	}
}

// Export renders the class roster with each student's entry for the requested day. Students
// without an entry appear as NOT_SUBMITTED. The day defaults to the current target date.
func (s *ExportService) Export(ctx context.Context, actor *models.JWTClaims, req dto.ExportRequest) (*dto.ExportFile, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleTeacher && !actor.Role.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only teachers and administrators can export entries")
	}
	req.Format = dto.ExportFormat(strings.ToLower(string(req.Format)))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export request")
	}
	if !validID(req.ClassRoomID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	class, err := s.classes.FindByID(ctx, req.ClassRoomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Internal(err, "failed to load class")
	}
	if !actor.Role.IsAdmin() && class.HomeroomTeacherID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you are not the homeroom teacher of this class")
	}

	day, err := s.resolveDay(ctx, req.Date)
	if err != nil {
		return nil, err
	}

	students, err := s.roster.ListByClassRooms(ctx, []string{class.ID})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load class roster")
	}
	entries, err := collectEntries(ctx, s.entries, models.EntryFilter{ClassRoomIDs: []string{class.ID}, TargetDate: &day})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load entries")
	}

	data := s.dataset(class, day, students, entries)
	renderer, contentType := s.csv, "text/csv; charset=utf-8"
	if req.Format == dto.ExportFormatPDF {
		renderer, contentType = s.pdf, "application/pdf"
	}
	body, err := renderer.Render(data)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}

	s.logger.Info("entries exported",
		zap.String("class_room_id", class.ID),
		zap.String("date", schoolday.Key(day)),
		zap.String("format", string(req.Format)),
		zap.String("actor_id", actor.UserID),
		zap.Int("rows", len(data.Rows)))

	return &dto.ExportFile{
		Filename:    fmt.Sprintf("contact-log_%s_%s.%s", fileSafe(class.Name), schoolday.Key(day), req.Format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

func (s *ExportService) resolveDay(ctx context.Context, raw string) (time.Time, error) {
	if raw == "" {
		return s.calendar.TargetDate(ctx)
	}
	day, err := time.Parse(schoolday.DateLayout, raw)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}
	return day, nil
}

func (s *ExportService) dataset(class *models.ClassRoomDetail, day time.Time, students []models.StudentDetail, entries []models.EntryDetail) export.Dataset {
	byStudent := make(map[string]models.EntryDetail, len(entries))
	for _, e := range entries {
		byStudent[e.StudentID] = e
	}

	rows := make([]map[string]string, 0, len(students))
	for _, st := range students {
		row := map[string]string{
			"student_no": st.StudentNo,
			"name":       st.FullName,
			"status":     exportStatusNotSubmitted,
		}
		if e, ok := byStudent[st.ID]; ok {
			row["status"] = string(e.Status)
			row["condition"] = strconv.Itoa(e.ConditionRating)
			row["mood"] = strconv.Itoa(e.MoodRating)
			row["content"] = e.Content
			if e.ReaderName != nil {
				row["reader"] = *e.ReaderName
			}
			if e.ReadAt != nil {
				row["read_at"] = e.ReadAt.In(s.location).Format("2006-01-02 15:04")
			}
		}
		rows = append(rows, row)
	}

	return export.Dataset{
		Title:   fmt.Sprintf("Contact log %s %s", class.Name, schoolday.Key(day)),
		Columns: entryExportColumns,
		Rows:    rows,
	}
}

func fileSafe(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '-'
		default:
			return -1
		}
	}, name)
	if cleaned == "" {
		return "class"
	}
	return cleaned
}
