package repository

import (
	"context"

	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportFilter narrows a batch export to a class/term/year slice
type ReportFilter struct {
	ClassName string
	Term      string
	Year      int
}

type ReportRepository interface {
	Create(ctx context.Context, report *model.StudentReport) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.StudentReport, error)
	ListByFilter(ctx context.Context, tenantID uuid.UUID, filter ReportFilter) ([]model.StudentReport, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ReportFilter, page, limit int) ([]model.StudentReport, int64, error)
	Update(ctx context.Context, report *model.StudentReport) error
	DeleteByTenant(ctx context.Context, tenantID uuid.UUID) error
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *model.StudentReport) error {
	return GetDB(ctx, r.db).Create(report).Error
}

func (r *reportRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.StudentReport, error) {
	var report model.StudentReport
	if err := GetDB(ctx, r.db).First(&report, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) filtered(ctx context.Context, tenantID uuid.UUID, filter ReportFilter) *gorm.DB {
	query := GetDB(ctx, r.db).Model(&model.StudentReport{}).Where("tenant_id = ?", tenantID)
	if filter.ClassName != "" {
		query = query.Where("class_name = ?", filter.ClassName)
	}
	if filter.Term != "" {
		query = query.Where("term = ?", filter.Term)
	}
	if filter.Year != 0 {
		query = query.Where("year = ?", filter.Year)
	}
	return query
}

// ListByFilter returns the full matching set, unpaginated — the batch export
// renders every record in the slice.
func (r *reportRepository) ListByFilter(ctx context.Context, tenantID uuid.UUID, filter ReportFilter) ([]model.StudentReport, error) {
	var reports []model.StudentReport
	if err := r.filtered(ctx, tenantID, filter).
		Order("class_name ASC, student_name ASC").
		Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *reportRepository) List(ctx context.Context, tenantID uuid.UUID, filter ReportFilter, page, limit int) ([]model.StudentReport, int64, error) {
	var reports []model.StudentReport
	var total int64

	query := r.filtered(ctx, tenantID, filter)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("class_name ASC, student_name ASC").
		Offset(offset).Limit(limit).
		Find(&reports).Error; err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}

func (r *reportRepository) Update(ctx context.Context, report *model.StudentReport) error {
	return GetDB(ctx, r.db).Save(report).Error
}

func (r *reportRepository) DeleteByTenant(ctx context.Context, tenantID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("tenant_id = ?", tenantID).Delete(&model.StudentReport{}).Error
}
