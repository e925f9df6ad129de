package repository

import (
	"context"

	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AdmissionRepository interface {
	Create(ctx context.Context, app *model.AdmissionApplication) error
	FindByCodeForUpdate(ctx context.Context, tenantID uuid.UUID, code string) (*model.AdmissionApplication, error)
	List(ctx context.Context, tenantID uuid.UUID, status string, page, limit int) ([]model.AdmissionApplication, int64, error)
	Update(ctx context.Context, app *model.AdmissionApplication) error
	DeleteByTenant(ctx context.Context, tenantID uuid.UUID) error
}

type admissionRepository struct {
	db *gorm.DB
}

func NewAdmissionRepository(db *gorm.DB) AdmissionRepository {
	return &admissionRepository{db: db}
}

func (r *admissionRepository) Create(ctx context.Context, app *model.AdmissionApplication) error {
	return GetDB(ctx, r.db).Create(app).Error
}

// FindByCodeForUpdate locks the matching row for the duration of the
// surrounding transaction.
func (r *admissionRepository) FindByCodeForUpdate(ctx context.Context, tenantID uuid.UUID, code string) (*model.AdmissionApplication, error) {
	var app model.AdmissionApplication
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&app, "tenant_id = ? AND confirmation_code = ?", tenantID, code).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *admissionRepository) List(ctx context.Context, tenantID uuid.UUID, status string, page, limit int) ([]model.AdmissionApplication, int64, error) {
	var apps []model.AdmissionApplication
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.AdmissionApplication{}).Where("tenant_id = ?", tenantID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&apps).Error; err != nil {
		return nil, 0, err
	}

	return apps, total, nil
}

func (r *admissionRepository) Update(ctx context.Context, app *model.AdmissionApplication) error {
	return GetDB(ctx, r.db).Save(app).Error
}

func (r *admissionRepository) DeleteByTenant(ctx context.Context, tenantID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("tenant_id = ?", tenantID).Delete(&model.AdmissionApplication{}).Error
}
