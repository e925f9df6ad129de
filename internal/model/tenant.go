package model

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is one customer organization's isolated data partition. Every
// domain row carries a tenant id and every query is scoped by it.
type Tenant struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Slug      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Currency  string    `gorm:"type:varchar(10);not null;default:'UGX'" json:"currency"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TenantBackup is the pre-deletion snapshot of a tenant's rows. It is
// committed before any row is removed and survives a failed deletion.
type TenantBackup struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	TenantName string    `gorm:"type:varchar(255);not null" json:"tenant_name"`
	Data       string    `gorm:"type:jsonb;not null" json:"data"` // table name -> serialized rows
	CreatedBy  uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
