package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StatisticsRepository interface {
	CountByStatus(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]model.StatusCount, error)
	TotalsByCategory(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]model.CategoryTotal, error)
	TotalsByMonth(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]model.MonthlyTotal, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]model.StatusCount, error) {
	var counts []model.StatusCount
	if err := r.db.WithContext(ctx).Table("requisitions").
		Select("status, COUNT(*) as count").
		Where("tenant_id = ? AND created_at >= ? AND created_at <= ?", tenantID, start, end).
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to count requisitions by status: %w", err)
	}
	return counts, nil
}

func (r *statisticsRepository) TotalsByCategory(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]model.CategoryTotal, error) {
	var totals []model.CategoryTotal
	if err := r.db.WithContext(ctx).Table("requisitions").
		Select("category, SUM(amount_requested) as total_requested, COALESCE(SUM(amount_approved), 0) as total_approved, COUNT(*) as count").
		Where("tenant_id = ? AND created_at >= ? AND created_at <= ?", tenantID, start, end).
		Group("category").
		Order("total_requested DESC").
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("failed to total requisitions by category: %w", err)
	}
	return totals, nil
}

func (r *statisticsRepository) TotalsByMonth(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]model.MonthlyTotal, error) {
	var totals []model.MonthlyTotal
	if err := r.db.WithContext(ctx).Table("requisitions").
		Select("to_char(created_at, 'YYYY-MM') as month, SUM(amount_requested) as total_requested, COALESCE(SUM(amount_approved), 0) as total_approved").
		Where("tenant_id = ? AND created_at >= ? AND created_at <= ?", tenantID, start, end).
		Group("to_char(created_at, 'YYYY-MM')").
		Order("month ASC").
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("failed to total requisitions by month: %w", err)
	}
	return totals, nil
}
