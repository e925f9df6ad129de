package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionLogin           = "LOGIN"
	ActionCreateUser      = "CREATE_USER"
	ActionUpdateUser      = "UPDATE_USER"
	ActionDeleteUser      = "DELETE_USER"
	ActionUpdateSettings  = "UPDATE_REQUISITION_SETTINGS"
	ActionBackupTenant    = "BACKUP_TENANT"
	ActionDeleteTenant    = "DELETE_TENANT"
	ActionExportReports   = "EXPORT_REPORTS"
	ActionVerifyAdmission = "VERIFY_ADMISSION"
	ActionCreateAdmission = "CREATE_ADMISSION"
)

// AuditLog tracks Who, What, and When for critical system changes outside
// the requisition workflow (which has its own activity trail).
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID   *uuid.UUID `gorm:"type:uuid;index" json:"tenant_id"` // Nullable: platform-level actions
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
