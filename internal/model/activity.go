package model

import (
	"time"

	"github.com/google/uuid"
)

// Requisition activity action constants
const (
	ActivityCreated       = "CREATED"
	ActivitySubmitted     = "SUBMITTED"
	ActivityAutoApproved  = "AUTO_APPROVED"
	ActivityLevelApproved = "LEVEL_APPROVED"
	ActivityApproved      = "APPROVED"
	ActivityPartial       = "PARTIALLY_APPROVED"
	ActivityRejected      = "REJECTED"
	ActivityCancelled     = "CANCELLED"
	ActivityUpdated       = "UPDATED"
)

// RequisitionActivity is the append-only audit trail of a requisition. Rows
// are written inside the same transaction as the mutation they record and
// are never read back into workflow logic.
type RequisitionActivity struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	RequisitionID uuid.UUID  `gorm:"type:uuid;not null;index" json:"requisition_id"`
	ActorID       *uuid.UUID `gorm:"type:uuid;index" json:"actor_id"`
	Actor         *User      `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	Action        string     `gorm:"type:varchar(50);not null;index" json:"action"`
	Details       string     `gorm:"type:text" json:"details"`
	Metadata      string     `gorm:"type:jsonb" json:"metadata"` // Serialized JSON payload of the action
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
}
