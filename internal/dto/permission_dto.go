package dto

import (
	"time"

	"github.com/darsa-school/darsa-api/internal/models"
)

// PermissionGrantRequest grants or revokes one capability for an admin.
type PermissionGrantRequest struct {
	AdminID        uint   `json:"admin_id" validate:"required"`
	PermissionType string `json:"permission_type" validate:"required"`
	IsGranted      bool   `json:"is_granted"`
}

// PermissionItem is one entry of a bulk permission update.
type PermissionItem struct {
	PermissionType string `json:"permission_type" validate:"required"`
	IsGranted      bool   `json:"is_granted"`
}

// PermissionBulkRequest applies several grid entries for one admin. Items are
// processed independently; failures are reported per item.
type PermissionBulkRequest struct {
	AdminID     uint             `json:"admin_id" validate:"required"`
	Permissions []PermissionItem `json:"permissions" validate:"required,min=1,dive"`
}

// PermissionBulkItemError reports one failed bulk item.
type PermissionBulkItemError struct {
	Index          int    `json:"index"`
	PermissionType string `json:"permission_type"`
	Error          string `json:"error"`
}

// PermissionBulkResponse summarises a bulk update: applied rows plus per-item
// failures. The operation is not atomic across items.
type PermissionBulkResponse struct {
	Updated []PermissionResponse      `json:"updated"`
	Errors  []PermissionBulkItemError `json:"errors"`
}

// PermissionResponse is one grid row.
type PermissionResponse struct {
	ID             uint      `json:"id"`
	AdminID        uint      `json:"admin_id"`
	PermissionType string    `json:"permission_type"`
	IsGranted      bool      `json:"is_granted"`
	GrantedBy      *uint     `json:"granted_by,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewPermissionResponse maps a grid row model to its response shape.
func NewPermissionResponse(row models.AdminPermission) PermissionResponse {
	return PermissionResponse{
		ID:             row.ID,
		AdminID:        row.AdminID,
		PermissionType: string(row.PermissionType),
		IsGranted:      row.IsGranted,
		GrantedBy:      row.GrantedByID,
		UpdatedAt:      row.UpdatedAt,
	}
}
