package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/model"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/repository"

	"github.com/google/uuid"
)

// confirmationAlphabet omits ambiguous characters (0/O, 1/I/L)
const confirmationAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// --- DTOs ---

type CreateAdmissionRequest struct {
	ApplicantName string `json:"applicant_name" binding:"required"`
	GuardianName  string `json:"guardian_name"`
	GuardianPhone string `json:"guardian_phone"`
	ClassApplied  string `json:"class_applied" binding:"required"`
}

// --- Interface ---

type AdmissionService interface {
	// Create registers an external application and issues its confirmation
	// code for later in-person verification.
	Create(ctx context.Context, tenantID uuid.UUID, req CreateAdmissionRequest) (*model.AdmissionApplication, error)
	Verify(ctx context.Context, tenantID, verifierID uuid.UUID, code string) (*model.AdmissionApplication, error)
	List(ctx context.Context, tenantID uuid.UUID, status string, page, limit int) ([]model.AdmissionApplication, int64, error)
}

type admissionService struct {
	repo      repository.AdmissionRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewAdmissionService(repo repository.AdmissionRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager) AdmissionService {
	return &admissionService{repo: repo, auditRepo: auditRepo, txManager: txManager}
}

// generateConfirmationCode returns an 8-character code from the unambiguous
// alphabet.
func generateConfirmationCode() (string, error) {
	raw := make([]byte, 8)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate confirmation code: %w", err)
	}
	code := make([]byte, len(raw))
	for i, b := range raw {
		code[i] = confirmationAlphabet[int(b)%len(confirmationAlphabet)]
	}
	return string(code), nil
}

func (s *admissionService) Create(ctx context.Context, tenantID uuid.UUID, req CreateAdmissionRequest) (*model.AdmissionApplication, error) {
	code, err := generateConfirmationCode()
	if err != nil {
		return nil, err
	}

	app := &model.AdmissionApplication{
		TenantID:         tenantID,
		ApplicantName:    req.ApplicantName,
		GuardianName:     req.GuardianName,
		GuardianPhone:    req.GuardianPhone,
		ClassApplied:     req.ClassApplied,
		ConfirmationCode: code,
		Status:           model.AdmissionSubmitted,
	}
	if err := s.repo.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to create admission application: %w", err)
	}

	recordAudit(ctx, s.auditRepo, &model.AuditLog{
		TenantID:   &tenantID,
		Action:     model.ActionCreateAdmission,
		EntityID:   app.ConfirmationCode,
		EntityName: app.ApplicantName,
		Details:    fmt.Sprintf(`{"class_applied":%q}`, app.ClassApplied),
	})
	return app, nil
}

func (s *admissionService) Verify(ctx context.Context, tenantID, verifierID uuid.UUID, code string) (*model.AdmissionApplication, error) {
	var app *model.AdmissionApplication

	// Lock the row for the check-and-mark so two staff scanning the same
	// code cannot both verify it.
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		locked, err := s.repo.FindByCodeForUpdate(txCtx, tenantID, code)
		if err != nil {
			return fmt.Errorf("no application matches confirmation code %s", code)
		}
		if locked.Status == model.AdmissionVerified {
			return fmt.Errorf("application %s is already verified", code)
		}

		now := time.Now()
		locked.Status = model.AdmissionVerified
		locked.VerifiedBy = &verifierID
		locked.VerifiedAt = &now
		if err := s.repo.Update(txCtx, locked); err != nil {
			return fmt.Errorf("failed to verify application: %w", err)
		}
		app = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, s.auditRepo, &model.AuditLog{
		TenantID:   &tenantID,
		UserID:     &verifierID,
		Action:     model.ActionVerifyAdmission,
		EntityID:   app.ConfirmationCode,
		EntityName: app.ApplicantName,
	})
	return app, nil
}

func (s *admissionService) List(ctx context.Context, tenantID uuid.UUID, status string, page, limit int) ([]model.AdmissionApplication, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.List(ctx, tenantID, status, page, limit)
}
