package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/model"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/repository"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/workflow"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sentinel errors let the handler map tenant-deletion failures onto the
// layered 401/403/404/500 responses this endpoint promises.
var (
	ErrTenantNotFound = errors.New("tenant not found")
	ErrForbidden      = errors.New("insufficient permissions")
)

// --- DTOs ---

type CreateTenantRequest struct {
	Name     string `json:"name" binding:"required"`
	Slug     string `json:"slug" binding:"required,lowercase,alphanum"`
	Currency string `json:"currency"`
}

// DeleteTenantResult reports the two-phase outcome: the backup always
// exists once deletion has been attempted.
type DeleteTenantResult struct {
	TenantID  string         `json:"tenant_id"`
	BackupID  string         `json:"backup_id"`
	Deleted   bool           `json:"deleted"`
	RowCounts map[string]int `json:"row_counts"`
}

// --- Interface ---

type TenantService interface {
	Create(ctx context.Context, req CreateTenantRequest) (*model.Tenant, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Tenant, error)
	// GetBySlug resolves public, unauthenticated requests (admission
	// applications) to a tenant.
	GetBySlug(ctx context.Context, slug string) (*model.Tenant, error)
	List(ctx context.Context, page, limit int) ([]model.Tenant, int64, error)
	// Delete snapshots every tenant-scoped table into a backup row, then
	// removes the tenant's rows, users, and the tenant itself. The backup
	// commits before any row is deleted and survives a failed deletion.
	Delete(ctx context.Context, actor Actor, tenantID uuid.UUID) (*DeleteTenantResult, error)
}

type tenantService struct {
	db         *gorm.DB
	tenantRepo repository.TenantRepository
	userRepo   repository.UserRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
}

func NewTenantService(
	db *gorm.DB,
	tenantRepo repository.TenantRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) TenantService {
	return &tenantService{
		db:         db,
		tenantRepo: tenantRepo,
		userRepo:   userRepo,
		auditRepo:  auditRepo,
		txManager:  txManager,
	}
}

// --- Implementation ---

func (s *tenantService) Create(ctx context.Context, req CreateTenantRequest) (*model.Tenant, error) {
	if req.Currency == "" {
		req.Currency = "UGX"
	}
	if _, err := s.tenantRepo.FindBySlug(ctx, req.Slug); err == nil {
		return nil, fmt.Errorf("tenant slug %q already exists", req.Slug)
	}

	tenant := &model.Tenant{
		Name:     req.Name,
		Slug:     req.Slug,
		Currency: req.Currency,
		Active:   true,
	}
	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}
	return tenant, nil
}

func (s *tenantService) Get(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrTenantNotFound
	}
	return tenant, nil
}

func (s *tenantService) GetBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	tenant, err := s.tenantRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, ErrTenantNotFound
	}
	return tenant, nil
}

func (s *tenantService) List(ctx context.Context, page, limit int) ([]model.Tenant, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.tenantRepo.List(ctx, page, limit)
}

func (s *tenantService) Delete(ctx context.Context, actor Actor, tenantID uuid.UUID) (*DeleteTenantResult, error) {
	if actor.Role != workflow.RoleAdmin {
		return nil, ErrForbidden
	}

	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, ErrTenantNotFound
	}

	// Phase 1: snapshot. Committed on its own so a later deletion failure
	// never costs the backup.
	snapshot, counts, err := s.snapshotTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot tenant data: %w", err)
	}

	backup := &model.TenantBackup{
		TenantID:   tenantID,
		TenantName: tenant.Name,
		Data:       snapshot,
		CreatedBy:  actor.UserID,
	}
	if err := s.tenantRepo.CreateBackup(ctx, backup); err != nil {
		return nil, fmt.Errorf("failed to write tenant backup: %w", err)
	}

	// Recorded without a tenant id so the entry survives phase 2, which
	// removes every tenant-scoped audit row.
	actorID := actor.UserID
	recordAudit(ctx, s.auditRepo, &model.AuditLog{
		UserID:     &actorID,
		Action:     model.ActionBackupTenant,
		EntityID:   backup.ID.String(),
		EntityName: tenant.Name,
		Details:    fmt.Sprintf(`{"tenant_id":%q}`, tenantID.String()),
	})

	result := &DeleteTenantResult{
		TenantID:  tenantID.String(),
		BackupID:  backup.ID.String(),
		RowCounts: counts,
	}

	// Phase 2: delete. One transaction, so a failure leaves the tenant's
	// rows fully intact alongside the committed backup.
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for _, m := range []interface{}{
			&model.RequisitionActivity{},
			&model.RequisitionApproval{},
			&model.Requisition{},
			&model.RequisitionSettings{},
			&model.StudentReport{},
			&model.AdmissionApplication{},
			&model.AuditLog{},
		} {
			if err := repository.GetDB(txCtx, s.db).
				Where("tenant_id = ?", tenantID).Delete(m).Error; err != nil {
				return fmt.Errorf("failed to delete tenant rows: %w", err)
			}
		}

		if err := s.userRepo.DeleteByTenant(txCtx, tenantID); err != nil {
			return fmt.Errorf("failed to delete tenant users: %w", err)
		}

		if err := s.tenantRepo.Delete(txCtx, tenantID); err != nil {
			return fmt.Errorf("failed to delete tenant: %w", err)
		}

		audit := model.AuditLog{
			UserID:     &actorID,
			Action:     model.ActionDeleteTenant,
			EntityID:   tenantID.String(),
			EntityName: tenant.Name,
			Details:    fmt.Sprintf(`{"backup_id":%q}`, backup.ID.String()),
		}
		return repository.GetDB(txCtx, s.db).Create(&audit).Error
	})
	if err != nil {
		// Backup is already committed; report it so the deletion can be retried
		logger.WithModule("tenant").WithError(err).
			WithField("backup_id", backup.ID.String()).
			Error("tenant deletion failed after backup")
		return result, fmt.Errorf("tenant backup %s committed but deletion failed: %w", backup.ID, err)
	}

	result.Deleted = true
	return result, nil
}

// snapshotTenant serializes every tenant-scoped table into one JSON document
func (s *tenantService) snapshotTenant(ctx context.Context, tenantID uuid.UUID) (string, map[string]int, error) {
	var (
		requisitions []model.Requisition
		approvals    []model.RequisitionApproval
		activities   []model.RequisitionActivity
		settings     []model.RequisitionSettings
		reports      []model.StudentReport
		admissions   []model.AdmissionApplication
		users        []model.User
		audits       []model.AuditLog
	)

	tables := []struct {
		name string
		dest interface{}
		rows func() int
	}{
		{"requisitions", &requisitions, func() int { return len(requisitions) }},
		{"requisition_approvals", &approvals, func() int { return len(approvals) }},
		{"requisition_activities", &activities, func() int { return len(activities) }},
		{"requisition_settings", &settings, func() int { return len(settings) }},
		{"student_reports", &reports, func() int { return len(reports) }},
		{"admission_applications", &admissions, func() int { return len(admissions) }},
		{"users", &users, func() int { return len(users) }},
		{"audit_logs", &audits, func() int { return len(audits) }},
	}

	data := make(map[string]interface{}, len(tables))
	counts := make(map[string]int, len(tables))
	for _, table := range tables {
		if err := s.db.WithContext(ctx).
			Where("tenant_id = ?", tenantID).
			Find(table.dest).Error; err != nil {
			return "", nil, fmt.Errorf("failed to read %s: %w", table.name, err)
		}
		data[table.name] = table.dest
		counts[table.name] = table.rows()
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return "", nil, fmt.Errorf("failed to serialize snapshot: %w", err)
	}
	return string(payload), counts, nil
}
