package repository

import (
	"context"

	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository interface {
	GetByTenant(ctx context.Context, tenantID uuid.UUID) (*model.RequisitionSettings, error)
	Upsert(ctx context.Context, settings *model.RequisitionSettings) error
	DeleteByTenant(ctx context.Context, tenantID uuid.UUID) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetByTenant(ctx context.Context, tenantID uuid.UUID) (*model.RequisitionSettings, error) {
	var settings model.RequisitionSettings
	if err := GetDB(ctx, r.db).First(&settings, "tenant_id = ?", tenantID).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, settings *model.RequisitionSettings) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"approval_levels", "level1_role", "level2_role", "level3_role",
			"auto_approve_threshold", "max_advance_amount", "updated_at",
		}),
	}).Create(settings).Error
}

func (r *settingsRepository) DeleteByTenant(ctx context.Context, tenantID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("tenant_id = ?", tenantID).Delete(&model.RequisitionSettings{}).Error
}
