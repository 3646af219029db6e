package models

import (
	"time"

	"github.com/darsa-school/darsa-api/internal/authz"
)

// ApprovalStatus tracks a self-registered student account through the
// approval workflow.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Gender values accepted on profiles.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// User is the identity record every other entity hangs off. Students created
// through self-registration start pending; every other role is approved at
// creation.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"size:150;uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Name         string     `gorm:"size:255;not null" json:"name"`
	FatherName   string     `gorm:"size:255" json:"father_name"`
	Email        string     `gorm:"size:255" json:"email"`
	PhoneNumber  string     `gorm:"size:17" json:"phone_number"`
	Gender       string     `gorm:"size:10;default:male" json:"gender"`
	Role         authz.Role `gorm:"size:20;not null;index" json:"role"`

	IsActive        bool           `gorm:"default:true" json:"is_active"`
	IsApproved      bool           `gorm:"default:false" json:"is_approved"`
	ApprovalStatus  ApprovalStatus `gorm:"size:20;default:pending;index" json:"approval_status"`
	ApprovedByID    *uint          `json:"approved_by"`
	ApprovedBy      *User          `gorm:"foreignKey:ApprovedByID;constraint:OnDelete:SET NULL" json:"-"`
	ApprovedAt      *time.Time     `json:"approved_at"`
	RejectionReason string         `gorm:"type:text" json:"rejection_reason"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
