package repository

import (
	"context"

	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityRepository interface {
	Create(ctx context.Context, entry *model.RequisitionActivity) error
	ListByRequisition(ctx context.Context, requisitionID uuid.UUID, page, limit int) ([]model.RequisitionActivity, int64, error)
	DeleteByTenant(ctx context.Context, tenantID uuid.UUID) error
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, entry *model.RequisitionActivity) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *activityRepository) ListByRequisition(ctx context.Context, requisitionID uuid.UUID, page, limit int) ([]model.RequisitionActivity, int64, error) {
	var entries []model.RequisitionActivity
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.RequisitionActivity{}).Where("requisition_id = ?", requisitionID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Actor").
		Where("requisition_id = ?", requisitionID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *activityRepository) DeleteByTenant(ctx context.Context, tenantID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("tenant_id = ?", tenantID).Delete(&model.RequisitionActivity{}).Error
}
