package models

import "time"

// Semester is one ordinal term in the academic programme.
type Semester struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Number    uint      `gorm:"uniqueIndex;not null" json:"number"`
	Name      string    `gorm:"size:100" json:"name"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SchoolClass groups students, optionally bound to a semester.
type SchoolClass struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	SemesterID  *uint     `json:"semester_id"`
	Semester    *Semester `gorm:"foreignKey:SemesterID;constraint:OnDelete:SET NULL" json:"semester,omitempty"`
	Description string    `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Subject is a taught course with a credit weight, always tied to a semester.
// Code is optional but unique when present.
type Subject struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Code        *string   `gorm:"size:50;uniqueIndex" json:"code"`
	SemesterID  uint      `gorm:"not null" json:"semester_id"`
	Semester    *Semester `gorm:"foreignKey:SemesterID;constraint:OnDelete:CASCADE" json:"semester,omitempty"`
	Credits     uint      `gorm:"default:3" json:"credits"`
	Description string    `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
