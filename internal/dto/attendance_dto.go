package dto

import "time"

// StudentAttendanceRequest marks one student for one date, optionally scoped
// to a subject. Marking the same key again overwrites the earlier record.
type StudentAttendanceRequest struct {
	StudentID     uint      `json:"student_id" validate:"required"`
	Date          time.Time `json:"date" validate:"required"`
	SubjectID     *uint     `json:"subject_id"`
	SchoolClassID *uint     `json:"school_class_id"`
	Status        string    `json:"status" validate:"required"`
	Remarks       string    `json:"remarks"`
}

// TeacherAttendanceRequest marks one teacher for one date.
type TeacherAttendanceRequest struct {
	TeacherID    uint       `json:"teacher_id" validate:"required"`
	Date         time.Time  `json:"date" validate:"required"`
	Status       string     `json:"status" validate:"required"`
	CheckInTime  *time.Time `json:"check_in_time"`
	CheckOutTime *time.Time `json:"check_out_time"`
	Remarks      string     `json:"remarks"`
}

// StudentAttendanceBulkRequest marks several students in one call. Items are
// validated and committed independently.
type StudentAttendanceBulkRequest struct {
	Records []StudentAttendanceRequest `json:"records" validate:"required,min=1"`
}

// AttendanceBulkItemError reports one failed bulk item.
type AttendanceBulkItemError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// AttendanceBulkResponse summarises a bulk attendance write.
type AttendanceBulkResponse struct {
	Marked int                       `json:"marked"`
	Errors []AttendanceBulkItemError `json:"errors"`
}

// AttendanceListRequest filters attendance listings.
type AttendanceListRequest struct {
	StudentID *uint
	TeacherID *uint
	SubjectID *uint
	From      *time.Time
	To        *time.Time
}

// AttendanceStatsResponse summarises attendance over a period. PresentRate
// counts present and late records against the total.
type AttendanceStatsResponse struct {
	Total       int64            `json:"total"`
	ByStatus    map[string]int64 `json:"by_status"`
	PresentRate float64          `json:"present_rate"`
}
