package models

import "time"

// AttendanceStatus enumerates daily attendance outcomes. "excused" applies to
// students, "leave" to teachers.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
	AttendanceLeave   AttendanceStatus = "leave"
)

// ValidForStudent reports whether the status is accepted on student records.
func (s AttendanceStatus) ValidForStudent() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	default:
		return false
	}
}

// ValidForTeacher reports whether the status is accepted on teacher records.
func (s AttendanceStatus) ValidForTeacher() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceLeave:
		return true
	default:
		return false
	}
}

// StudentAttendance keys one record per (student, date, subject); marking the
// same key again overwrites the status rather than duplicating the row.
type StudentAttendance struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	StudentID     uint             `gorm:"not null;uniqueIndex:idx_student_attendance_key" json:"student_id"`
	Student       *Student         `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Date          time.Time        `gorm:"type:date;not null;uniqueIndex:idx_student_attendance_key" json:"date"`
	SubjectID     *uint            `gorm:"uniqueIndex:idx_student_attendance_key" json:"subject_id"`
	Subject       *Subject         `gorm:"foreignKey:SubjectID;constraint:OnDelete:SET NULL" json:"subject,omitempty"`
	SchoolClassID *uint            `json:"school_class_id"`
	Status        AttendanceStatus `gorm:"size:20;default:present" json:"status"`
	Remarks       string           `gorm:"type:text" json:"remarks"`
	MarkedByID    *uint            `json:"marked_by"`
	MarkedBy      *User            `gorm:"foreignKey:MarkedByID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// TeacherAttendance keys one record per (teacher, date).
type TeacherAttendance struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	TeacherID    uint             `gorm:"not null;uniqueIndex:idx_teacher_attendance_key" json:"teacher_id"`
	Teacher      *Teacher         `gorm:"foreignKey:TeacherID;constraint:OnDelete:CASCADE" json:"teacher,omitempty"`
	Date         time.Time        `gorm:"type:date;not null;uniqueIndex:idx_teacher_attendance_key" json:"date"`
	Status       AttendanceStatus `gorm:"size:20;default:present" json:"status"`
	CheckInTime  *time.Time       `json:"check_in_time"`
	CheckOutTime *time.Time       `json:"check_out_time"`
	Remarks      string           `gorm:"type:text" json:"remarks"`
	MarkedByID   *uint            `json:"marked_by"`
	MarkedBy     *User            `gorm:"foreignKey:MarkedByID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}
