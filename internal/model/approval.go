package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApprovalStatus enum constants (per-level decision, not requisition status)
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// RequisitionApproval is one row per approval level per requisition, created
// in bulk at submission time. Rows are never deleted or re-created; the
// decision fields are filled in exactly once.
type RequisitionApproval struct {
	ID            uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"tenant_id"`
	RequisitionID uuid.UUID    `gorm:"type:uuid;not null;index" json:"requisition_id"`
	Requisition   *Requisition `gorm:"foreignKey:RequisitionID" json:"-"`

	Level        int    `gorm:"not null" json:"level"`
	ApproverRole string `gorm:"type:varchar(50);not null" json:"approver_role"`

	Status         string           `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ApproverID     *uuid.UUID       `gorm:"type:uuid" json:"approver_id"`
	Approver       *User            `gorm:"foreignKey:ApproverID" json:"approver,omitempty"`
	AmountApproved *decimal.Decimal `gorm:"type:decimal(18,4)" json:"amount_approved"`
	Comment        string           `gorm:"type:text" json:"comment"`
	DecidedAt      *time.Time       `json:"decided_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
