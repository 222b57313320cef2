package dto

import "github.com/noah-isme/contact-log-api/internal/models"

// TeacherDashboard aggregates a homeroom teacher's view of the current target day.
type TeacherDashboard struct {
	TargetDate   string                   `json:"target_date"`
	Classes      []models.ClassRoomDetail `json:"classes"`
	EntriesToday []models.EntryDetail     `json:"entries_today"`
	NotSubmitted []models.StudentDetail   `json:"not_submitted"`
	History      []models.EntryDetail     `json:"history"`
	Query        string                   `json:"query,omitempty"`
}

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportRequest selects one class and one day of entries.
type ExportRequest struct {
	ClassRoomID string       `validate:"required"`
	Date        string       `validate:"omitempty,datetime=2006-01-02"`
	Format      ExportFormat `validate:"required,oneof=csv pdf"`
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
