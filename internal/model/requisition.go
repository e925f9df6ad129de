package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequisitionType enum constants
const (
	ReqTypeCashAdvance     = "cash_advance"
	ReqTypeReimbursement   = "reimbursement"
	ReqTypePurchaseRequest = "purchase_request"
)

// RequisitionUrgency enum constants
const (
	UrgencyLow    = "low"
	UrgencyNormal = "normal"
	UrgencyHigh   = "high"
)

// Requisition is a request for funds subject to staged approval. Status is
// always one of workflow.Status; current/max approval levels are meaningful
// only while the status is pending.
type Requisition struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID      uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	RequisitionNo string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"requisition_no"`

	Type          string `gorm:"type:varchar(30);not null;index" json:"type"` // cash_advance, reimbursement, purchase_request
	Urgency       string `gorm:"type:varchar(10);not null;default:'normal'" json:"urgency"`
	Category      string `gorm:"type:varchar(100)" json:"category"`
	PaymentMethod string `gorm:"type:varchar(50)" json:"payment_method"`

	AmountRequested decimal.Decimal  `gorm:"type:decimal(18,4);not null" json:"amount_requested"`
	AmountApproved  *decimal.Decimal `gorm:"type:decimal(18,4)" json:"amount_approved"` // nil until a level has decided
	Currency        string           `gorm:"type:varchar(10);not null;default:'UGX'" json:"currency"`

	Status               string `gorm:"type:varchar(30);not null;default:'draft';index" json:"status"`
	CurrentApprovalLevel int    `gorm:"not null;default:0" json:"current_approval_level"`
	MaxApprovalLevels    int    `gorm:"not null;default:0" json:"max_approval_levels"` // fixed at submission time

	Purpose         string `gorm:"type:text;not null" json:"purpose"`
	Description     string `gorm:"type:text" json:"description"`
	RejectionReason string `gorm:"type:text" json:"rejection_reason"`
	Notes           string `gorm:"type:text" json:"notes"`

	RequestedBy uuid.UUID `gorm:"type:uuid;not null;index" json:"requested_by"`
	Requester   *User     `gorm:"foreignKey:RequestedBy" json:"requester,omitempty"`

	Approvals   []RequisitionApproval `gorm:"foreignKey:RequisitionID" json:"approvals,omitempty"`
	SubmittedAt *time.Time            `json:"submitted_at"`
	DecidedAt   *time.Time            `json:"decided_at"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}
