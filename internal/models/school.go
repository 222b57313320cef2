package models

// Grade is a school year level (1st year, 2nd year, ...).
type Grade struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Year int    `db:"year" json:"year"`
}

// ClassRoom belongs to one grade and has exactly one homeroom teacher.
type ClassRoom struct {
	ID                string `db:"id" json:"id"`
	GradeID           string `db:"grade_id" json:"grade_id"`
	Name              string `db:"name" json:"name"`
	HomeroomTeacherID string `db:"homeroom_teacher_id" json:"homeroom_teacher_id"`
}

// ClassRoomDetail adds the grade label for display.
type ClassRoomDetail struct {
	ClassRoom
	GradeName string `db:"grade_name" json:"grade_name"`
}

// Student links a user account to its class.
type Student struct {
	ID          string `db:"id" json:"id"`
	UserID      string `db:"user_id" json:"user_id"`
	ClassRoomID string `db:"class_room_id" json:"class_room_id"`
	StudentNo   string `db:"student_no" json:"student_no"`
}

// StudentDetail carries the name and homeroom scope used for authorization.
type StudentDetail struct {
	Student
	FullName          string `db:"full_name" json:"full_name"`
	ClassRoomName     string `db:"class_room_name" json:"class_room_name"`
	HomeroomTeacherID string `db:"homeroom_teacher_id" json:"homeroom_teacher_id"`
}
