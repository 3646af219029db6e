package models

import (
	"time"

	"github.com/darsa-school/darsa-api/internal/authz"
)

// AdminPermission is one cell of the per-admin capability grid. At most one
// row exists per (admin, permission_type); grants and revokes upsert it.
type AdminPermission struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	AdminID        uint             `gorm:"not null;uniqueIndex:idx_admin_permission" json:"admin_id"`
	Admin          *User            `gorm:"foreignKey:AdminID;constraint:OnDelete:CASCADE" json:"-"`
	PermissionType authz.Permission `gorm:"size:50;not null;uniqueIndex:idx_admin_permission" json:"permission_type"`
	IsGranted      bool             `gorm:"default:false" json:"is_granted"`
	GrantedByID    *uint            `json:"granted_by"`
	GrantedBy      *User            `gorm:"foreignKey:GrantedByID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
