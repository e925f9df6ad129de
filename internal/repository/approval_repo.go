package repository

import (
	"context"

	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApprovalRepository interface {
	// CreateBatch inserts the full approval ladder for a requisition in one
	// statement, one row per level.
	CreateBatch(ctx context.Context, approvals []model.RequisitionApproval) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RequisitionApproval, error)
	FindPendingForLevel(ctx context.Context, requisitionID uuid.UUID, level int) (*model.RequisitionApproval, error)
	ListByRequisition(ctx context.Context, requisitionID uuid.UUID) ([]model.RequisitionApproval, error)
	Update(ctx context.Context, approval *model.RequisitionApproval) error
	DeleteByTenant(ctx context.Context, tenantID uuid.UUID) error
}

type approvalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) CreateBatch(ctx context.Context, approvals []model.RequisitionApproval) error {
	if len(approvals) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&approvals).Error
}

func (r *approvalRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.RequisitionApproval, error) {
	var approval model.RequisitionApproval
	if err := GetDB(ctx, r.db).First(&approval, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &approval, nil
}

func (r *approvalRepository) FindPendingForLevel(ctx context.Context, requisitionID uuid.UUID, level int) (*model.RequisitionApproval, error) {
	var approval model.RequisitionApproval
	if err := GetDB(ctx, r.db).
		First(&approval, "requisition_id = ? AND level = ? AND status = ?",
			requisitionID, level, model.ApprovalPending).Error; err != nil {
		return nil, err
	}
	return &approval, nil
}

func (r *approvalRepository) ListByRequisition(ctx context.Context, requisitionID uuid.UUID) ([]model.RequisitionApproval, error) {
	var approvals []model.RequisitionApproval
	if err := GetDB(ctx, r.db).Preload("Approver").
		Where("requisition_id = ?", requisitionID).
		Order("level ASC").
		Find(&approvals).Error; err != nil {
		return nil, err
	}
	return approvals, nil
}

func (r *approvalRepository) Update(ctx context.Context, approval *model.RequisitionApproval) error {
	return GetDB(ctx, r.db).Save(approval).Error
}

func (r *approvalRepository) DeleteByTenant(ctx context.Context, tenantID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("tenant_id = ?", tenantID).Delete(&model.RequisitionApproval{}).Error
}
