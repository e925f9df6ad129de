package service

import (
	"context"
	"time"

	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/model"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type StatisticsService interface {
	GetStatistics(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) (model.StatisticsResponse, error)
}

type statisticsService struct {
	repo repository.StatisticsRepository
}

func NewStatisticsService(repo repository.StatisticsRepository) StatisticsService {
	return &statisticsService{repo: repo}
}

// GetStatistics aggregates tenant requisition metrics into time brackets
func (s *statisticsService) GetStatistics(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) (model.StatisticsResponse, error) {
	response := model.StatisticsResponse{
		TimeRangeStartDate: startDate,
		TimeRangeEndDate:   endDate,
		TotalRequested:     decimal.Zero,
		TotalApproved:      decimal.Zero,
	}

	byStatus, err := s.repo.CountByStatus(ctx, tenantID, startDate, endDate)
	if err != nil {
		return response, err
	}
	response.ByStatus = byStatus
	for _, bucket := range byStatus {
		response.TotalRequisitions += bucket.Count
	}

	byCategory, err := s.repo.TotalsByCategory(ctx, tenantID, startDate, endDate)
	if err != nil {
		return response, err
	}
	response.ByCategory = byCategory
	for _, bucket := range byCategory {
		response.TotalRequested = response.TotalRequested.Add(bucket.TotalRequested)
		response.TotalApproved = response.TotalApproved.Add(bucket.TotalApproved)
	}

	byMonth, err := s.repo.TotalsByMonth(ctx, tenantID, startDate, endDate)
	if err != nil {
		return response, err
	}
	response.ByMonth = byMonth

	return response, nil
}
