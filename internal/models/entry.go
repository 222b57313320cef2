package models

import "time"

// EntryStatus is the lifecycle state of a contact-log entry.
type EntryStatus string

const (
	EntryStatusSubmitted EntryStatus = "SUBMITTED"
	EntryStatusRead      EntryStatus = "READ"
)

// Rating bounds shared by the condition and mood scales.
const (
	RatingMin     = 1
	RatingMax     = 5
	RatingDefault = 3
)

// Entry is one student's contact-log submission for a single school day.
type Entry struct {
	ID              string      `db:"id" json:"id"`
	StudentID       string      `db:"student_id" json:"student_id"`
	TargetDate      time.Time   `db:"target_date" json:"target_date"`
	Content         string      `db:"content" json:"content"`
	ConditionRating int         `db:"condition_rating" json:"condition_rating"`
	MoodRating      int         `db:"mood_rating" json:"mood_rating"`
	Status          EntryStatus `db:"status" json:"status"`
	ReadBy          *string     `db:"read_by" json:"read_by,omitempty"`
	ReadAt          *time.Time  `db:"read_at" json:"read_at,omitempty"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updated_at"`
}

// IsRead reports whether a reviewer has locked the entry.
func (e *Entry) IsRead() bool {
	return e != nil && e.ReadAt != nil
}

// RatingInRange reports whether v is a valid scale value.
func RatingInRange(v int) bool {
	return v >= RatingMin && v <= RatingMax
}

// EntryDetail joins an entry with the student and class it belongs to.
type EntryDetail struct {
	Entry
	StudentNo     string  `db:"student_no" json:"student_no"`
	StudentName   string  `db:"student_name" json:"student_name"`
	ClassRoomID   string  `db:"class_room_id" json:"class_room_id"`
	ClassRoomName string  `db:"class_room_name" json:"class_room_name"`
	ReaderName    *string `db:"reader_name" json:"reader_name,omitempty"`
}

// EntryFilter narrows entry history queries.
type EntryFilter struct {
	StudentID    string
	ClassRoomIDs []string
	TargetDate   *time.Time
	Search       string
	Page         int
	PageSize     int
}
