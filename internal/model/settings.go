package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequisitionSettings is the per-tenant workflow configuration: how many
// approval levels a submitted requisition passes through and which role
// signs off at each level. AutoApproveThreshold and MaxAdvanceAmount are
// consulted by submit/create (they are not decorative).
type RequisitionSettings struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"tenant_id"`

	ApprovalLevels int    `gorm:"not null;default:2" json:"approval_levels"` // 1..3
	Level1Role     string `gorm:"type:varchar(50);not null;default:'bursar'" json:"level1_role"`
	Level2Role     string `gorm:"type:varchar(50);not null;default:'head_teacher'" json:"level2_role"`
	Level3Role     string `gorm:"type:varchar(50);not null;default:'director'" json:"level3_role"`

	AutoApproveThreshold *decimal.Decimal `gorm:"type:decimal(18,4)" json:"auto_approve_threshold"` // submit lands in approved when amount <= threshold
	MaxAdvanceAmount     *decimal.Decimal `gorm:"type:decimal(18,4)" json:"max_advance_amount"`     // cash advances above this are refused at create

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoleForLevel returns the configured approver role for a level, empty when
// the level is out of the configured range.
func (s RequisitionSettings) RoleForLevel(level int) string {
	switch level {
	case 1:
		return s.Level1Role
	case 2:
		return s.Level2Role
	case 3:
		return s.Level3Role
	}
	return ""
}
