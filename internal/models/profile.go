package models

import "time"

// Student is the one-to-one academic extension of a STUDENT user. Deleting
// the user cascades to the profile.
type Student struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	UserID        uint         `gorm:"uniqueIndex;not null" json:"user_id"`
	User          *User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	SchoolClassID *uint        `json:"school_class_id"`
	SchoolClass   *SchoolClass `gorm:"foreignKey:SchoolClassID;constraint:OnDelete:SET NULL" json:"school_class,omitempty"`
	SemesterID    *uint        `json:"semester_id"`
	Semester      *Semester    `gorm:"foreignKey:SemesterID;constraint:OnDelete:SET NULL" json:"semester,omitempty"`
	GuardianPhone string       `gorm:"size:17" json:"guardian_phone"`
	Address       string       `gorm:"type:text" json:"address"`
	EnrolledAt    *time.Time   `json:"enrolled_at"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Teacher is the one-to-one professional extension of a TEACHER user. The
// subject links drive teacher-scope authorization for grades and attendance.
type Teacher struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	User           *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Specialization string     `gorm:"size:255" json:"specialization"`
	HiredAt        *time.Time `json:"hired_at"`
	Subjects       []Subject  `gorm:"many2many:teacher_subjects" json:"subjects,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
