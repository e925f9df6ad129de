package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusCount is one requisition status bucket in the summary
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// CategoryTotal aggregates requested/approved value per expense category
type CategoryTotal struct {
	Category       string          `json:"category"`
	TotalRequested decimal.Decimal `json:"total_requested"`
	TotalApproved  decimal.Decimal `json:"total_approved"`
	Count          int64           `json:"count"`
}

// MonthlyTotal aggregates approved spend per calendar month
type MonthlyTotal struct {
	Month          string          `json:"month"` // YYYY-MM
	TotalRequested decimal.Decimal `json:"total_requested"`
	TotalApproved  decimal.Decimal `json:"total_approved"`
}

// StatisticsResponse is the aggregated requisition dashboard payload
type StatisticsResponse struct {
	TimeRangeStartDate time.Time       `json:"time_range_start_date"`
	TimeRangeEndDate   time.Time       `json:"time_range_end_date"`
	TotalRequisitions  int64           `json:"total_requisitions"`
	TotalRequested     decimal.Decimal `json:"total_requested"`
	TotalApproved      decimal.Decimal `json:"total_approved"`
	ByStatus           []StatusCount   `json:"by_status"`
	ByCategory         []CategoryTotal `json:"by_category"`
	ByMonth            []MonthlyTotal  `json:"by_month"`
}
