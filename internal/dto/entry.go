package dto

import "github.com/noah-isme/contact-log-api/internal/models"

// SubmitEntryRequest is the student payload for the daily entry. The target date is never accepted from the client.
type SubmitEntryRequest struct {
	Content         string `json:"content" validate:"required,max=4000"`
	ConditionRating *int   `json:"condition_rating" validate:"omitempty,min=1,max=5"`
	MoodRating      *int   `json:"mood_rating" validate:"omitempty,min=1,max=5"`
}

// SubmitOutcome tells the caller what a submission did.
type SubmitOutcome string

const (
	SubmitOutcomeCreated    SubmitOutcome = "CREATED"
	SubmitOutcomeUpdated    SubmitOutcome = "UPDATED"
	SubmitOutcomeEditLocked SubmitOutcome = "EDIT_LOCKED"
)

// SubmitResult is returned by the lenient submission path.
type SubmitResult struct {
	Outcome    SubmitOutcome `json:"outcome"`
	TargetDate string        `json:"target_date"`
	Entry      *models.Entry `json:"entry"`
}

// ReviewResult reports whether this call performed the Submitted -> Read flip.
type ReviewResult struct {
	Transitioned bool          `json:"transitioned"`
	Entry        *models.Entry `json:"entry"`
}

// BulkEntryRequest selects entries for administrative bulk actions.
type BulkEntryRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=500,dive,required"`
}

// BulkResult summarises an administrative bulk action.
type BulkResult struct {
	Requested int      `json:"requested"`
	Affected  int      `json:"affected"`
	Missing   []string `json:"missing,omitempty"`
}

// TodayEntry is the student's view of the current target day.
type TodayEntry struct {
	TargetDate string        `json:"target_date"`
	Submitted  bool          `json:"submitted"`
	Editable   bool          `json:"editable"`
	Entry      *models.Entry `json:"entry,omitempty"`
}

// TargetDateResponse exposes the calendar resolution to clients.
type TargetDateResponse struct {
	Today      string `json:"today"`
	TargetDate string `json:"target_date"`
	Timezone   string `json:"timezone"`
}
