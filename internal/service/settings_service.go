package service

import (
	"context"
	"fmt"

	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/model"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/repository"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/workflow"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type UpdateSettingsRequest struct {
	ApprovalLevels       int              `json:"approval_levels" binding:"required,min=1,max=3"`
	Level1Role           string           `json:"level1_role"`
	Level2Role           string           `json:"level2_role"`
	Level3Role           string           `json:"level3_role"`
	AutoApproveThreshold *decimal.Decimal `json:"auto_approve_threshold"`
	MaxAdvanceAmount     *decimal.Decimal `json:"max_advance_amount"`
}

// --- Interface ---

type SettingsService interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*model.RequisitionSettings, error)
	Update(ctx context.Context, actorID, tenantID uuid.UUID, req UpdateSettingsRequest) (*model.RequisitionSettings, error)
}

type settingsService struct {
	repo      repository.SettingsRepository
	auditRepo repository.AuditRepository
}

func NewSettingsService(repo repository.SettingsRepository, auditRepo repository.AuditRepository) SettingsService {
	return &settingsService{repo: repo, auditRepo: auditRepo}
}

// DefaultSettings is the workflow configuration applied before a tenant
// saves its own: two levels, bursar then head teacher.
func DefaultSettings(tenantID uuid.UUID) model.RequisitionSettings {
	return model.RequisitionSettings{
		TenantID:       tenantID,
		ApprovalLevels: 2,
		Level1Role:     string(workflow.RoleBursar),
		Level2Role:     string(workflow.RoleHeadTeacher),
		Level3Role:     string(workflow.RoleDirector),
	}
}

func (s *settingsService) Get(ctx context.Context, tenantID uuid.UUID) (*model.RequisitionSettings, error) {
	settings, err := s.repo.GetByTenant(ctx, tenantID)
	if err != nil {
		defaults := DefaultSettings(tenantID)
		return &defaults, nil
	}
	return settings, nil
}

func (s *settingsService) Update(ctx context.Context, actorID, tenantID uuid.UUID, req UpdateSettingsRequest) (*model.RequisitionSettings, error) {
	defaults := DefaultSettings(tenantID)
	if req.Level1Role == "" {
		req.Level1Role = defaults.Level1Role
	}
	if req.Level2Role == "" {
		req.Level2Role = defaults.Level2Role
	}
	if req.Level3Role == "" {
		req.Level3Role = defaults.Level3Role
	}

	for level, role := range map[int]string{1: req.Level1Role, 2: req.Level2Role, 3: req.Level3Role} {
		if !workflow.ValidRole(workflow.Role(role)) {
			return nil, fmt.Errorf("level %d role %q is not a recognized role", level, role)
		}
	}
	if req.AutoApproveThreshold != nil && !req.AutoApproveThreshold.IsPositive() {
		return nil, fmt.Errorf("auto_approve_threshold must be positive")
	}
	if req.MaxAdvanceAmount != nil && !req.MaxAdvanceAmount.IsPositive() {
		return nil, fmt.Errorf("max_advance_amount must be positive")
	}

	settings := &model.RequisitionSettings{
		TenantID:             tenantID,
		ApprovalLevels:       req.ApprovalLevels,
		Level1Role:           req.Level1Role,
		Level2Role:           req.Level2Role,
		Level3Role:           req.Level3Role,
		AutoApproveThreshold: req.AutoApproveThreshold,
		MaxAdvanceAmount:     req.MaxAdvanceAmount,
	}
	if err := s.repo.Upsert(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	recordAudit(ctx, s.auditRepo, &model.AuditLog{
		TenantID: &tenantID,
		UserID:   &actorID,
		Action:   model.ActionUpdateSettings,
		EntityID: tenantID.String(),
		Details:  fmt.Sprintf(`{"approval_levels":%d}`, req.ApprovalLevels),
	})
	return s.repo.GetByTenant(ctx, tenantID)
}
