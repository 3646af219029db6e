package dto

import (
	"time"

	"github.com/darsa-school/darsa-api/internal/models"
)

// StudentRegistrationRequest is the self-registration payload.
type StudentRegistrationRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=150"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
	Name            string `json:"name" validate:"required,max=255"`
	FatherName      string `json:"father_name" validate:"max=255"`
	Email           string `json:"email" validate:"omitempty,email"`
	PhoneNumber     string `json:"phone_number" validate:"omitempty,e164"`
	Gender          string `json:"gender" validate:"omitempty,oneof=male female"`
}

// UserCreateRequest is the administrator-created account payload.
type UserCreateRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=150"`
	Password    string `json:"password" validate:"required,min=8"`
	Name        string `json:"name" validate:"required,max=255"`
	FatherName  string `json:"father_name" validate:"max=255"`
	Email       string `json:"email" validate:"omitempty,email"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,e164"`
	Gender      string `json:"gender" validate:"omitempty,oneof=male female"`
	Role        string `json:"role" validate:"required"`
}

// UserListRequest filters the user listing.
type UserListRequest struct {
	Role           string
	ApprovalStatus string
	Search         string
	Page           int
	PageSize       int
}

// ApprovalRequest carries the approve/reject decision for a pending account.
type ApprovalRequest struct {
	Action          string `json:"action" validate:"required,oneof=approve reject"`
	RejectionReason string `json:"rejection_reason"`
}

// ProfileUpdateRequest carries self-service profile edits.
type ProfileUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	FatherName  *string `json:"father_name" validate:"omitempty,max=255"`
	Email       *string `json:"email" validate:"omitempty,email"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,e164"`
	Gender      *string `json:"gender" validate:"omitempty,oneof=male female"`
}

// ChangePasswordRequest carries a password change.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// UserResponse is the public shape of an identity record.
type UserResponse struct {
	ID              uint       `json:"id"`
	Username        string     `json:"username"`
	Name            string     `json:"name"`
	FatherName      string     `json:"father_name,omitempty"`
	Email           string     `json:"email,omitempty"`
	PhoneNumber     string     `json:"phone_number,omitempty"`
	Gender          string     `json:"gender"`
	Role            string     `json:"role"`
	IsActive        bool       `json:"is_active"`
	IsApproved      bool       `json:"is_approved"`
	ApprovalStatus  string     `json:"approval_status"`
	ApprovedBy      *uint      `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// NewUserResponse maps a user model to its response shape.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:              user.ID,
		Username:        user.Username,
		Name:            user.Name,
		FatherName:      user.FatherName,
		Email:           user.Email,
		PhoneNumber:     user.PhoneNumber,
		Gender:          user.Gender,
		Role:            string(user.Role),
		IsActive:        user.IsActive,
		IsApproved:      user.IsApproved,
		ApprovalStatus:  string(user.ApprovalStatus),
		ApprovedBy:      user.ApprovedByID,
		ApprovedAt:      user.ApprovedAt,
		RejectionReason: user.RejectionReason,
		CreatedAt:       user.CreatedAt,
	}
}

// UserListResponse is a paginated user listing.
type UserListResponse struct {
	Items      []UserResponse `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}
