package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/model"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/repository"
	ws "github.com/namandisafari-sketch/kabejjasystems-sub005/internal/websocket"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/workflow"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateRequisitionRequest struct {
	Type            string          `json:"type" binding:"required,oneof=cash_advance reimbursement purchase_request"`
	Urgency         string          `json:"urgency" binding:"omitempty,oneof=low normal high"`
	Category        string          `json:"category"`
	PaymentMethod   string          `json:"payment_method"`
	AmountRequested decimal.Decimal `json:"amount_requested" binding:"required"`
	Currency        string          `json:"currency"`
	Purpose         string          `json:"purpose" binding:"required"`
	Description     string          `json:"description"`
	Notes           string          `json:"notes"`
}

type UpdateRequisitionRequest struct {
	Urgency         string           `json:"urgency" binding:"omitempty,oneof=low normal high"`
	Category        string           `json:"category"`
	PaymentMethod   string           `json:"payment_method"`
	AmountRequested *decimal.Decimal `json:"amount_requested"`
	Purpose         string           `json:"purpose"`
	Description     string           `json:"description"`
	Notes           string           `json:"notes"`
}

type ApproveRequisitionRequest struct {
	ApprovalID string           `json:"approval_id" binding:"required"`
	Amount     *decimal.Decimal `json:"amount"` // override; defaults to the running approved amount
	Comment    string           `json:"comment"`
}

type RejectRequisitionRequest struct {
	ApprovalID string `json:"approval_id" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
}

// Actor identifies the authenticated user performing a workflow operation
type Actor struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Role     workflow.Role
}

// --- Interface ---

type RequisitionService interface {
	Create(ctx context.Context, actor Actor, req CreateRequisitionRequest) (*model.Requisition, error)
	Update(ctx context.Context, actor Actor, id string, req UpdateRequisitionRequest) (*model.Requisition, error)
	Submit(ctx context.Context, actor Actor, id string) (*model.Requisition, error)
	Approve(ctx context.Context, actor Actor, id string, req ApproveRequisitionRequest) (*model.Requisition, error)
	Reject(ctx context.Context, actor Actor, id string, req RejectRequisitionRequest) (*model.Requisition, error)
	Cancel(ctx context.Context, actor Actor, id string) (*model.Requisition, error)
	Get(ctx context.Context, actor Actor, id string) (*model.Requisition, error)
	List(ctx context.Context, actor Actor, filter repository.RequisitionFilter) ([]model.Requisition, int64, error)
	ListActivity(ctx context.Context, actor Actor, id string, page, limit int) ([]model.RequisitionActivity, int64, error)
}

type requisitionService struct {
	reqRepo      repository.RequisitionRepository
	approvalRepo repository.ApprovalRepository
	activityRepo repository.ActivityRepository
	settingsRepo repository.SettingsRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewRequisitionService(
	reqRepo repository.RequisitionRepository,
	approvalRepo repository.ApprovalRepository,
	activityRepo repository.ActivityRepository,
	settingsRepo repository.SettingsRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) RequisitionService {
	return &requisitionService{
		reqRepo:      reqRepo,
		approvalRepo: approvalRepo,
		activityRepo: activityRepo,
		settingsRepo: settingsRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

// --- Implementation ---

func (s *requisitionService) Create(ctx context.Context, actor Actor, req CreateRequisitionRequest) (*model.Requisition, error) {
	if !req.AmountRequested.IsPositive() {
		return nil, errors.New("amount_requested must be positive")
	}
	if req.Urgency == "" {
		req.Urgency = model.UrgencyNormal
	}
	if req.Currency == "" {
		req.Currency = "UGX"
	}

	// Cash advances are capped by tenant settings when a cap is configured
	settings := s.settingsOrDefaults(ctx, actor.TenantID)
	if err := checkAdvanceCap(req.Type, req.AmountRequested, settings); err != nil {
		return nil, err
	}

	requisition := &model.Requisition{
		TenantID:        actor.TenantID,
		Type:            req.Type,
		Urgency:         req.Urgency,
		Category:        req.Category,
		PaymentMethod:   req.PaymentMethod,
		AmountRequested: req.AmountRequested,
		Currency:        req.Currency,
		Status:          workflow.StatusDraft.String(),
		Purpose:         req.Purpose,
		Description:     req.Description,
		Notes:           req.Notes,
		RequestedBy:     actor.UserID,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		prefix := "REQ-" + time.Now().Format("20060102") + "-"
		no, err := s.reqRepo.NextRequisitionNo(txCtx, prefix)
		if err != nil {
			return fmt.Errorf("failed to generate requisition number: %w", err)
		}
		requisition.RequisitionNo = no

		if err := s.reqRepo.Create(txCtx, requisition); err != nil {
			return fmt.Errorf("failed to create requisition: %w", err)
		}

		return s.logActivity(txCtx, requisition, actor.UserID, model.ActivityCreated,
			"Requisition created as draft", map[string]interface{}{
				"type":             requisition.Type,
				"amount_requested": requisition.AmountRequested.String(),
			})
	})
	if err != nil {
		return nil, err
	}

	return requisition, nil
}

func (s *requisitionService) Update(ctx context.Context, actor Actor, id string, req UpdateRequisitionRequest) (*model.Requisition, error) {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid requisition id: %w", err)
	}

	var requisition *model.Requisition
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		requisition, err = s.reqRepo.FindByIDForUpdate(txCtx, actor.TenantID, reqID)
		if err != nil {
			return fmt.Errorf("requisition not found: %w", err)
		}

		if workflow.Status(requisition.Status) != workflow.StatusDraft {
			return fmt.Errorf("requisition is %s, only drafts can be edited", requisition.Status)
		}
		if requisition.RequestedBy != actor.UserID && actor.Role != workflow.RoleAdmin {
			return errors.New("only the requester may edit this requisition")
		}

		if req.Urgency != "" {
			requisition.Urgency = req.Urgency
		}
		if req.Category != "" {
			requisition.Category = req.Category
		}
		if req.PaymentMethod != "" {
			requisition.PaymentMethod = req.PaymentMethod
		}
		if req.AmountRequested != nil {
			if !req.AmountRequested.IsPositive() {
				return errors.New("amount_requested must be positive")
			}
			// The cap holds across edits, not just at creation
			settings := s.settingsOrDefaults(txCtx, actor.TenantID)
			if err := checkAdvanceCap(requisition.Type, *req.AmountRequested, settings); err != nil {
				return err
			}
			requisition.AmountRequested = *req.AmountRequested
		}
		if req.Purpose != "" {
			requisition.Purpose = req.Purpose
		}
		if req.Description != "" {
			requisition.Description = req.Description
		}
		if req.Notes != "" {
			requisition.Notes = req.Notes
		}

		if err := s.reqRepo.Update(txCtx, requisition); err != nil {
			return fmt.Errorf("failed to update requisition: %w", err)
		}

		return s.logActivity(txCtx, requisition, actor.UserID, model.ActivityUpdated,
			"Draft requisition edited", nil)
	})
	if err != nil {
		return nil, err
	}

	return requisition, nil
}

// Submit moves a draft into the approval chain. The status write, the bulk
// approval-row insert, and the activity entry commit or roll back as one
// unit, so a requisition can never be pending with zero approval rows.
func (s *requisitionService) Submit(ctx context.Context, actor Actor, id string) (*model.Requisition, error) {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid requisition id: %w", err)
	}

	var requisition *model.Requisition
	var eventType string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		requisition, err = s.reqRepo.FindByIDForUpdate(txCtx, actor.TenantID, reqID)
		if err != nil {
			return fmt.Errorf("requisition not found: %w", err)
		}

		current := workflow.Status(requisition.Status)
		if current != workflow.StatusDraft {
			return fmt.Errorf("requisition is %s, only drafts can be submitted", requisition.Status)
		}
		if requisition.RequestedBy != actor.UserID && actor.Role != workflow.RoleAdmin {
			return errors.New("only the requester may submit this requisition")
		}

		settings := s.settingsOrDefaults(txCtx, actor.TenantID)

		// The amount becomes binding here, so the cap is re-checked against
		// whatever the draft holds now
		if err := checkAdvanceCap(requisition.Type, requisition.AmountRequested, settings); err != nil {
			return err
		}

		now := time.Now()
		requisition.SubmittedAt = &now

		// Below-threshold submissions skip the approval chain entirely
		if settings.AutoApproveThreshold != nil &&
			requisition.AmountRequested.LessThanOrEqual(*settings.AutoApproveThreshold) {
			if !workflow.CanTransition(current, workflow.StatusApproved) {
				return fmt.Errorf("cannot move requisition from %s to %s", current, workflow.StatusApproved)
			}
			approved := requisition.AmountRequested
			requisition.Status = workflow.StatusApproved.String()
			requisition.AmountApproved = &approved
			requisition.DecidedAt = &now
			if err := s.reqRepo.Update(txCtx, requisition); err != nil {
				return fmt.Errorf("failed to update requisition: %w", err)
			}

			eventType = "requisition.approved"
			return s.logActivity(txCtx, requisition, actor.UserID, model.ActivityAutoApproved,
				"Auto-approved below tenant threshold", map[string]interface{}{
					"threshold": settings.AutoApproveThreshold.String(),
					"amount":    approved.String(),
				})
		}

		next, err := workflow.PendingForLevel(1)
		if err != nil {
			return err
		}
		if !workflow.CanTransition(current, next) {
			return fmt.Errorf("cannot move requisition from %s to %s", current, next)
		}

		requisition.Status = next.String()
		requisition.CurrentApprovalLevel = 1
		requisition.MaxApprovalLevels = settings.ApprovalLevels
		if err := s.reqRepo.Update(txCtx, requisition); err != nil {
			return fmt.Errorf("failed to update requisition: %w", err)
		}

		approvals := buildApprovalLadder(requisition, settings)
		if err := s.approvalRepo.CreateBatch(txCtx, approvals); err != nil {
			return fmt.Errorf("failed to create approval records: %w", err)
		}

		eventType = "requisition.submitted"
		return s.logActivity(txCtx, requisition, actor.UserID, model.ActivitySubmitted,
			fmt.Sprintf("Submitted for %d-level approval", settings.ApprovalLevels),
			map[string]interface{}{"approval_levels": settings.ApprovalLevels})
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(eventType, requisition)
	return s.reload(ctx, actor.TenantID, requisition.ID)
}

// Approve records a decision on the current approval level and advances the
// requisition. The requisition row is locked for the duration of the
// transaction, so a concurrent decision on the same level fails its status
// guard instead of double-advancing the level.
func (s *requisitionService) Approve(ctx context.Context, actor Actor, id string, req ApproveRequisitionRequest) (*model.Requisition, error) {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid requisition id: %w", err)
	}
	approvalID, err := uuid.Parse(req.ApprovalID)
	if err != nil {
		return nil, fmt.Errorf("invalid approval id: %w", err)
	}

	var requisition *model.Requisition
	var eventType string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		requisition, err = s.reqRepo.FindByIDForUpdate(txCtx, actor.TenantID, reqID)
		if err != nil {
			return fmt.Errorf("requisition not found: %w", err)
		}

		current := workflow.Status(requisition.Status)
		if current.IsTerminal() {
			return fmt.Errorf("requisition is already %s", requisition.Status)
		}
		level := current.Level()
		if level == 0 {
			return fmt.Errorf("requisition is %s, not awaiting approval", requisition.Status)
		}

		approval, err := s.approvalRepo.FindByID(txCtx, approvalID)
		if err != nil {
			return fmt.Errorf("approval record not found: %w", err)
		}
		if approval.RequisitionID != requisition.ID {
			return errors.New("approval record does not belong to this requisition")
		}
		if approval.Status != model.ApprovalPending {
			return fmt.Errorf("approval record is already %s", approval.Status)
		}
		// A stale approval id (level already passed) is refused rather than
		// silently re-advancing the workflow
		if approval.Level != level {
			return fmt.Errorf("approval record is for level %d but requisition is at level %d", approval.Level, level)
		}
		if !workflow.CanActOnLevel(actor.Role, workflow.Role(approval.ApproverRole)) {
			return fmt.Errorf("level %d requires role %s", level, approval.ApproverRole)
		}

		// The running amount defaults to the previous level's decision and
		// carries forward, so an intermediate reduction is not silently
		// overwritten at the next level
		amount := requisition.AmountRequested
		if requisition.AmountApproved != nil {
			amount = *requisition.AmountApproved
		}
		if req.Amount != nil {
			if !req.Amount.IsPositive() {
				return errors.New("approved amount must be positive")
			}
			amount = *req.Amount
		}

		now := time.Now()
		approverID := actor.UserID
		approval.Status = model.ApprovalApproved
		approval.ApproverID = &approverID
		approval.AmountApproved = &amount
		approval.Comment = req.Comment
		approval.DecidedAt = &now
		if err := s.approvalRepo.Update(txCtx, approval); err != nil {
			return fmt.Errorf("failed to update approval record: %w", err)
		}

		next, err := workflow.NextOnApprove(current, requisition.MaxApprovalLevels, amount, requisition.AmountRequested)
		if err != nil {
			return err
		}
		if !workflow.CanTransition(current, next) {
			return fmt.Errorf("cannot move requisition from %s to %s", current, next)
		}

		requisition.Status = next.String()
		requisition.AmountApproved = &amount
		if next.IsPending() {
			requisition.CurrentApprovalLevel = next.Level()
			eventType = "requisition.advanced"
		} else {
			requisition.DecidedAt = &now
			eventType = "requisition.approved"
		}
		if err := s.reqRepo.Update(txCtx, requisition); err != nil {
			return fmt.Errorf("failed to update requisition: %w", err)
		}

		action := model.ActivityLevelApproved
		details := fmt.Sprintf("Level %d approved", level)
		if next == workflow.StatusApproved {
			action = model.ActivityApproved
			details = "Final approval granted"
		} else if next == workflow.StatusPartiallyApproved {
			action = model.ActivityPartial
			details = "Partially approved below the requested amount"
		}
		return s.logActivity(txCtx, requisition, actor.UserID, action, details,
			map[string]interface{}{
				"level":           level,
				"amount_approved": amount.String(),
				"comment":         req.Comment,
			})
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(eventType, requisition)
	return s.reload(ctx, actor.TenantID, requisition.ID)
}

// Reject terminates the workflow at the current level. Rejection is global:
// the requisition lands in the terminal rejected status regardless of which
// level rejected it.
func (s *requisitionService) Reject(ctx context.Context, actor Actor, id string, req RejectRequisitionRequest) (*model.Requisition, error) {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid requisition id: %w", err)
	}
	approvalID, err := uuid.Parse(req.ApprovalID)
	if err != nil {
		return nil, fmt.Errorf("invalid approval id: %w", err)
	}

	var requisition *model.Requisition
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		requisition, err = s.reqRepo.FindByIDForUpdate(txCtx, actor.TenantID, reqID)
		if err != nil {
			return fmt.Errorf("requisition not found: %w", err)
		}

		current := workflow.Status(requisition.Status)
		if current.IsTerminal() {
			return fmt.Errorf("requisition is already %s", requisition.Status)
		}
		level := current.Level()
		if level == 0 {
			return fmt.Errorf("requisition is %s, not awaiting approval", requisition.Status)
		}

		approval, err := s.approvalRepo.FindByID(txCtx, approvalID)
		if err != nil {
			return fmt.Errorf("approval record not found: %w", err)
		}
		if approval.RequisitionID != requisition.ID {
			return errors.New("approval record does not belong to this requisition")
		}
		if approval.Status != model.ApprovalPending {
			return fmt.Errorf("approval record is already %s", approval.Status)
		}
		if approval.Level != level {
			return fmt.Errorf("approval record is for level %d but requisition is at level %d", approval.Level, level)
		}
		if !workflow.CanActOnLevel(actor.Role, workflow.Role(approval.ApproverRole)) {
			return fmt.Errorf("level %d requires role %s", level, approval.ApproverRole)
		}

		if !workflow.CanTransition(current, workflow.StatusRejected) {
			return fmt.Errorf("cannot move requisition from %s to %s", current, workflow.StatusRejected)
		}

		now := time.Now()
		approverID := actor.UserID
		approval.Status = model.ApprovalRejected
		approval.ApproverID = &approverID
		approval.Comment = req.Reason
		approval.DecidedAt = &now
		if err := s.approvalRepo.Update(txCtx, approval); err != nil {
			return fmt.Errorf("failed to update approval record: %w", err)
		}

		requisition.Status = workflow.StatusRejected.String()
		requisition.RejectionReason = req.Reason
		requisition.DecidedAt = &now
		if err := s.reqRepo.Update(txCtx, requisition); err != nil {
			return fmt.Errorf("failed to update requisition: %w", err)
		}

		return s.logActivity(txCtx, requisition, actor.UserID, model.ActivityRejected,
			fmt.Sprintf("Rejected at level %d", level),
			map[string]interface{}{"level": level, "reason": req.Reason})
	})
	if err != nil {
		return nil, err
	}

	s.broadcast("requisition.rejected", requisition)
	return s.reload(ctx, actor.TenantID, requisition.ID)
}

func (s *requisitionService) Cancel(ctx context.Context, actor Actor, id string) (*model.Requisition, error) {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid requisition id: %w", err)
	}

	var requisition *model.Requisition
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		requisition, err = s.reqRepo.FindByIDForUpdate(txCtx, actor.TenantID, reqID)
		if err != nil {
			return fmt.Errorf("requisition not found: %w", err)
		}
		if requisition.RequestedBy != actor.UserID && actor.Role != workflow.RoleAdmin {
			return errors.New("only the requester may cancel this requisition")
		}

		current := workflow.Status(requisition.Status)
		if !workflow.CanTransition(current, workflow.StatusCancelled) {
			return fmt.Errorf("requisition is %s and cannot be cancelled", requisition.Status)
		}

		now := time.Now()
		requisition.Status = workflow.StatusCancelled.String()
		requisition.DecidedAt = &now
		if err := s.reqRepo.Update(txCtx, requisition); err != nil {
			return fmt.Errorf("failed to update requisition: %w", err)
		}

		return s.logActivity(txCtx, requisition, actor.UserID, model.ActivityCancelled,
			"Requisition cancelled by requester", nil)
	})
	if err != nil {
		return nil, err
	}

	s.broadcast("requisition.cancelled", requisition)
	return requisition, nil
}

func (s *requisitionService) Get(ctx context.Context, actor Actor, id string) (*model.Requisition, error) {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid requisition id: %w", err)
	}
	return s.reload(ctx, actor.TenantID, reqID)
}

func (s *requisitionService) List(ctx context.Context, actor Actor, filter repository.RequisitionFilter) ([]model.Requisition, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return s.reqRepo.List(ctx, actor.TenantID, filter)
}

func (s *requisitionService) ListActivity(ctx context.Context, actor Actor, id string, page, limit int) ([]model.RequisitionActivity, int64, error) {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid requisition id: %w", err)
	}
	// Ensure the requisition exists within the caller's tenant
	if _, err := s.reqRepo.FindByID(ctx, actor.TenantID, reqID); err != nil {
		return nil, 0, fmt.Errorf("requisition not found: %w", err)
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.activityRepo.ListByRequisition(ctx, reqID, page, limit)
}

// --- Helpers ---

// settingsOrDefaults returns the tenant's workflow configuration, falling
// back to the defaults (2 levels, bursar then head teacher) when no settings
// row exists yet.
func (s *requisitionService) settingsOrDefaults(ctx context.Context, tenantID uuid.UUID) model.RequisitionSettings {
	settings, err := s.settingsRepo.GetByTenant(ctx, tenantID)
	if err != nil {
		return DefaultSettings(tenantID)
	}
	return *settings
}

// checkAdvanceCap refuses cash advances above the tenant cap when one is
// configured. Applied at create, edit, and submit so the cap cannot be
// sidestepped by editing a draft after creation.
func checkAdvanceCap(reqType string, amount decimal.Decimal, settings model.RequisitionSettings) error {
	if reqType == model.ReqTypeCashAdvance && settings.MaxAdvanceAmount != nil &&
		amount.GreaterThan(*settings.MaxAdvanceAmount) {
		return fmt.Errorf("cash advance amount %s exceeds the maximum advance amount %s",
			amount.StringFixed(2), settings.MaxAdvanceAmount.StringFixed(2))
	}
	return nil
}

// buildApprovalLadder creates one pending approval row per configured level,
// with roles from tenant settings falling back to the workflow defaults.
func buildApprovalLadder(req *model.Requisition, settings model.RequisitionSettings) []model.RequisitionApproval {
	approvals := make([]model.RequisitionApproval, 0, settings.ApprovalLevels)
	for level := 1; level <= settings.ApprovalLevels; level++ {
		role := settings.RoleForLevel(level)
		if role == "" {
			role = string(workflow.DefaultRoleForLevel(level))
		}
		approvals = append(approvals, model.RequisitionApproval{
			TenantID:      req.TenantID,
			RequisitionID: req.ID,
			Level:         level,
			ApproverRole:  role,
			Status:        model.ApprovalPending,
		})
	}
	return approvals
}

func (s *requisitionService) logActivity(ctx context.Context, req *model.Requisition, actorID uuid.UUID, action, details string, metadata map[string]interface{}) error {
	entry := &model.RequisitionActivity{
		TenantID:      req.TenantID,
		RequisitionID: req.ID,
		ActorID:       &actorID,
		Action:        action,
		Details:       details,
	}
	if metadata != nil {
		data, _ := json.Marshal(metadata)
		entry.Metadata = string(data)
	}
	if err := s.activityRepo.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to write activity entry: %w", err)
	}
	return nil
}

func (s *requisitionService) broadcast(eventType string, req *model.Requisition) {
	if s.hub == nil || eventType == "" {
		return
	}
	s.hub.BroadcastEvent(eventType, req.TenantID.String(), req.ID.String(), map[string]interface{}{
		"requisition_no": req.RequisitionNo,
		"status":         req.Status,
	})
}

func (s *requisitionService) reload(ctx context.Context, tenantID, id uuid.UUID) (*model.Requisition, error) {
	req, err := s.reqRepo.FindByIDWithRelations(ctx, tenantID, id)
	if err != nil {
		logger.WithModule("requisition").WithError(err).Warn("failed to reload requisition")
		return nil, fmt.Errorf("requisition not found: %w", err)
	}
	return req, nil
}
