package model

import (
	"time"

	"github.com/google/uuid"
)

// AdmissionStatus enum constants
const (
	AdmissionSubmitted = "submitted"
	AdmissionVerified  = "verified"
)

// AdmissionApplication is an external applicant's submission. A short
// confirmation code is issued on creation and checked during in-person
// verification.
type AdmissionApplication struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`

	ApplicantName    string `gorm:"type:varchar(255);not null" json:"applicant_name"`
	GuardianName     string `gorm:"type:varchar(255)" json:"guardian_name"`
	GuardianPhone    string `gorm:"type:varchar(20)" json:"guardian_phone"`
	ClassApplied     string `gorm:"type:varchar(100);not null" json:"class_applied"`
	ConfirmationCode string `gorm:"type:varchar(12);uniqueIndex;not null" json:"confirmation_code"`

	Status     string     `gorm:"type:varchar(20);not null;default:'submitted';index" json:"status"`
	VerifiedBy *uuid.UUID `gorm:"type:uuid" json:"verified_by"`
	VerifiedAt *time.Time `json:"verified_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
