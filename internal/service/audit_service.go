package service

import (
	"context"

	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/model"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/repository"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/pkg/logger"

	"github.com/google/uuid"
)

// recordAudit writes an audit entry on a best-effort basis. A failed write is
// logged and never fails the operation being audited.
func recordAudit(ctx context.Context, repo repository.AuditRepository, entry *model.AuditLog) {
	if repo == nil {
		return
	}
	if err := repo.Log(ctx, entry); err != nil {
		logger.WithModule("audit").WithError(err).
			WithField("action", entry.Action).
			Warn("failed to write audit log")
	}
}

type AuditLogResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

type AuditService interface {
	GetAuditLogs(ctx context.Context, tenantID uuid.UUID, filter repository.AuditFilter) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

// GetAuditLogs retrieves strictly paginated records with Users pre-loaded joining details
func (s *auditService) GetAuditLogs(ctx context.Context, tenantID uuid.UUID, filter repository.AuditFilter) ([]AuditLogResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	logs, total, err := s.repo.List(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		username := "System"
		userID := ""
		if l.User != nil {
			username = l.User.Username
		}
		if l.UserID != nil {
			userID = l.UserID.String()
		}

		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			UserID:     userID,
			Username:   username,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return res, total, nil
}
