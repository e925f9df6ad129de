package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/model"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/repository"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/workflow"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestBuildApprovalLadder(t *testing.T) {
	tenantID := uuid.New()
	req := &model.Requisition{ID: uuid.New(), TenantID: tenantID}

	tests := []struct {
		name      string
		settings  model.RequisitionSettings
		wantRoles []string
	}{
		{
			name:      "default two levels",
			settings:  DefaultSettings(tenantID),
			wantRoles: []string{"bursar", "head_teacher"},
		},
		{
			name: "single level",
			settings: model.RequisitionSettings{
				TenantID:       tenantID,
				ApprovalLevels: 1,
				Level1Role:     "director",
			},
			wantRoles: []string{"director"},
		},
		{
			name: "three levels",
			settings: model.RequisitionSettings{
				TenantID:       tenantID,
				ApprovalLevels: 3,
				Level1Role:     "bursar",
				Level2Role:     "head_teacher",
				Level3Role:     "director",
			},
			wantRoles: []string{"bursar", "head_teacher", "director"},
		},
		{
			name: "blank roles fall back to workflow defaults",
			settings: model.RequisitionSettings{
				TenantID:       tenantID,
				ApprovalLevels: 2,
			},
			wantRoles: []string{
				string(workflow.DefaultRoleForLevel(1)),
				string(workflow.DefaultRoleForLevel(2)),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ladder := buildApprovalLadder(req, tt.settings)
			if len(ladder) != len(tt.wantRoles) {
				t.Fatalf("expected %d levels, got %d", len(tt.wantRoles), len(ladder))
			}
			for i, approval := range ladder {
				if approval.Level != i+1 {
					t.Errorf("level %d: got level %d", i+1, approval.Level)
				}
				if approval.ApproverRole != tt.wantRoles[i] {
					t.Errorf("level %d: expected role %s, got %s", i+1, tt.wantRoles[i], approval.ApproverRole)
				}
				if approval.Status != model.ApprovalPending {
					t.Errorf("level %d: new ladder entries must be pending, got %s", i+1, approval.Status)
				}
				if approval.RequisitionID != req.ID || approval.TenantID != tenantID {
					t.Errorf("level %d: ladder entry not bound to requisition", i+1)
				}
			}
		})
	}
}

func TestDefaultSettings(t *testing.T) {
	tenantID := uuid.New()
	settings := DefaultSettings(tenantID)

	if settings.ApprovalLevels != 2 {
		t.Errorf("expected 2 default approval levels, got %d", settings.ApprovalLevels)
	}
	if settings.Level1Role != string(workflow.RoleBursar) {
		t.Errorf("expected bursar at level 1, got %s", settings.Level1Role)
	}
	if settings.Level2Role != string(workflow.RoleHeadTeacher) {
		t.Errorf("expected head_teacher at level 2, got %s", settings.Level2Role)
	}
	if settings.AutoApproveThreshold != nil || settings.MaxAdvanceAmount != nil {
		t.Error("thresholds should be unset by default")
	}
}

// --- In-memory fakes ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeRequisitionRepo struct {
	rows map[uuid.UUID]model.Requisition
	seq  int
}

func newFakeRequisitionRepo() *fakeRequisitionRepo {
	return &fakeRequisitionRepo{rows: make(map[uuid.UUID]model.Requisition)}
}

func (f *fakeRequisitionRepo) Create(_ context.Context, req *model.Requisition) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	f.rows[req.ID] = *req
	return nil
}

func (f *fakeRequisitionRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*model.Requisition, error) {
	row, ok := f.rows[id]
	if !ok || row.TenantID != tenantID {
		return nil, errors.New("record not found")
	}
	out := row
	return &out, nil
}

func (f *fakeRequisitionRepo) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*model.Requisition, error) {
	return f.FindByID(ctx, tenantID, id)
}

func (f *fakeRequisitionRepo) FindByIDWithRelations(ctx context.Context, tenantID, id uuid.UUID) (*model.Requisition, error) {
	return f.FindByID(ctx, tenantID, id)
}

func (f *fakeRequisitionRepo) List(_ context.Context, tenantID uuid.UUID, _ repository.RequisitionFilter) ([]model.Requisition, int64, error) {
	var out []model.Requisition
	for _, row := range f.rows {
		if row.TenantID == tenantID {
			out = append(out, row)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRequisitionRepo) Update(_ context.Context, req *model.Requisition) error {
	f.rows[req.ID] = *req
	return nil
}

func (f *fakeRequisitionRepo) NextRequisitionNo(_ context.Context, prefix string) (string, error) {
	f.seq++
	return fmt.Sprintf("%s%05d", prefix, f.seq), nil
}

func (f *fakeRequisitionRepo) DeleteByTenant(_ context.Context, tenantID uuid.UUID) error {
	for id, row := range f.rows {
		if row.TenantID == tenantID {
			delete(f.rows, id)
		}
	}
	return nil
}

type fakeApprovalRepo struct {
	rows map[uuid.UUID]model.RequisitionApproval
}

func newFakeApprovalRepo() *fakeApprovalRepo {
	return &fakeApprovalRepo{rows: make(map[uuid.UUID]model.RequisitionApproval)}
}

func (f *fakeApprovalRepo) CreateBatch(_ context.Context, approvals []model.RequisitionApproval) error {
	for i := range approvals {
		if approvals[i].ID == uuid.Nil {
			approvals[i].ID = uuid.New()
		}
		f.rows[approvals[i].ID] = approvals[i]
	}
	return nil
}

func (f *fakeApprovalRepo) FindByID(_ context.Context, id uuid.UUID) (*model.RequisitionApproval, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	out := row
	return &out, nil
}

func (f *fakeApprovalRepo) FindPendingForLevel(_ context.Context, requisitionID uuid.UUID, level int) (*model.RequisitionApproval, error) {
	for _, row := range f.rows {
		if row.RequisitionID == requisitionID && row.Level == level && row.Status == model.ApprovalPending {
			out := row
			return &out, nil
		}
	}
	return nil, errors.New("record not found")
}

func (f *fakeApprovalRepo) ListByRequisition(_ context.Context, requisitionID uuid.UUID) ([]model.RequisitionApproval, error) {
	var out []model.RequisitionApproval
	for _, row := range f.rows {
		if row.RequisitionID == requisitionID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeApprovalRepo) Update(_ context.Context, approval *model.RequisitionApproval) error {
	f.rows[approval.ID] = *approval
	return nil
}

func (f *fakeApprovalRepo) DeleteByTenant(_ context.Context, tenantID uuid.UUID) error {
	for id, row := range f.rows {
		if row.TenantID == tenantID {
			delete(f.rows, id)
		}
	}
	return nil
}

type fakeActivityRepo struct {
	entries []model.RequisitionActivity
}

func (f *fakeActivityRepo) Create(_ context.Context, entry *model.RequisitionActivity) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeActivityRepo) ListByRequisition(_ context.Context, requisitionID uuid.UUID, _, _ int) ([]model.RequisitionActivity, int64, error) {
	var out []model.RequisitionActivity
	for _, entry := range f.entries {
		if entry.RequisitionID == requisitionID {
			out = append(out, entry)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeActivityRepo) DeleteByTenant(_ context.Context, _ uuid.UUID) error { return nil }

type fakeSettingsRepo struct {
	settings *model.RequisitionSettings
}

func (f *fakeSettingsRepo) GetByTenant(_ context.Context, _ uuid.UUID) (*model.RequisitionSettings, error) {
	if f.settings == nil {
		return nil, errors.New("record not found")
	}
	out := *f.settings
	return &out, nil
}

func (f *fakeSettingsRepo) Upsert(_ context.Context, settings *model.RequisitionSettings) error {
	s := *settings
	f.settings = &s
	return nil
}

func (f *fakeSettingsRepo) DeleteByTenant(_ context.Context, _ uuid.UUID) error {
	f.settings = nil
	return nil
}

type workflowFixture struct {
	service   RequisitionService
	reqs      *fakeRequisitionRepo
	approvals *fakeApprovalRepo
	tenantID  uuid.UUID
	requester Actor
	bursar    Actor
	head      Actor
}

func newWorkflowFixture(t *testing.T, settings *model.RequisitionSettings) *workflowFixture {
	t.Helper()
	tenantID := uuid.New()
	if settings != nil {
		settings.TenantID = tenantID
	}

	reqs := newFakeRequisitionRepo()
	approvals := newFakeApprovalRepo()
	svc := NewRequisitionService(
		reqs, approvals, &fakeActivityRepo{}, &fakeSettingsRepo{settings: settings},
		fakeTxManager{}, nil,
	)

	return &workflowFixture{
		service:   svc,
		reqs:      reqs,
		approvals: approvals,
		tenantID:  tenantID,
		requester: Actor{UserID: uuid.New(), TenantID: tenantID, Role: workflow.RoleStaff},
		bursar:    Actor{UserID: uuid.New(), TenantID: tenantID, Role: workflow.RoleBursar},
		head:      Actor{UserID: uuid.New(), TenantID: tenantID, Role: workflow.RoleHeadTeacher},
	}
}

func (f *workflowFixture) pendingApproval(t *testing.T, reqID uuid.UUID, level int) *model.RequisitionApproval {
	t.Helper()
	approval, err := f.approvals.FindPendingForLevel(context.Background(), reqID, level)
	if err != nil {
		t.Fatalf("no pending approval at level %d: %v", level, err)
	}
	return approval
}

func (f *workflowFixture) submitted(t *testing.T, amount decimal.Decimal) *model.Requisition {
	t.Helper()
	ctx := context.Background()
	req, err := f.service.Create(ctx, f.requester, CreateRequisitionRequest{
		Type:            model.ReqTypePurchaseRequest,
		AmountRequested: amount,
		Purpose:         "Science lab equipment",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	req, err = f.service.Submit(ctx, f.requester, req.ID.String())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return req
}

// --- Workflow tests ---

// A mid-chain reduction carries forward: the next level decides on the
// reduced amount by default, and a final amount below the request lands the
// requisition in partially_approved rather than approved.
func TestApproveCarriesReducedAmountForward(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t, &model.RequisitionSettings{
		ApprovalLevels: 2,
		Level1Role:     string(workflow.RoleBursar),
		Level2Role:     string(workflow.RoleHeadTeacher),
	})

	req := f.submitted(t, decimal.NewFromInt(500000))
	if req.Status != workflow.StatusPendingLevel1.String() {
		t.Fatalf("expected pending_level1 after submit, got %s", req.Status)
	}

	reduced := decimal.NewFromInt(400000)
	first := f.pendingApproval(t, req.ID, 1)
	req, err := f.service.Approve(ctx, f.bursar, req.ID.String(), ApproveRequisitionRequest{
		ApprovalID: first.ID.String(),
		Amount:     &reduced,
		Comment:    "Budget only allows 400k this term",
	})
	if err != nil {
		t.Fatalf("level 1 approve: %v", err)
	}
	if req.Status != workflow.StatusPendingLevel2.String() {
		t.Fatalf("expected pending_level2, got %s", req.Status)
	}
	if req.AmountApproved == nil || !req.AmountApproved.Equal(reduced) {
		t.Fatalf("expected running amount 400000, got %v", req.AmountApproved)
	}

	// No override at the final level: the reduced amount is the default
	second := f.pendingApproval(t, req.ID, 2)
	req, err = f.service.Approve(ctx, f.head, req.ID.String(), ApproveRequisitionRequest{
		ApprovalID: second.ID.String(),
	})
	if err != nil {
		t.Fatalf("level 2 approve: %v", err)
	}

	if req.Status != workflow.StatusPartiallyApproved.String() {
		t.Fatalf("expected partially_approved, got %s", req.Status)
	}
	if req.AmountApproved == nil || !req.AmountApproved.Equal(reduced) {
		t.Fatalf("expected final amount 400000, got %v", req.AmountApproved)
	}
	if req.DecidedAt == nil {
		t.Error("final decision must set decided_at")
	}

	decided, _ := f.approvals.FindByID(ctx, second.ID)
	if decided.AmountApproved == nil || !decided.AmountApproved.Equal(reduced) {
		t.Errorf("level 2 record should carry the reduced amount, got %v", decided.AmountApproved)
	}
}

func TestApproveFullAmountThroughAllLevels(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t, &model.RequisitionSettings{
		ApprovalLevels: 2,
		Level1Role:     string(workflow.RoleBursar),
		Level2Role:     string(workflow.RoleHeadTeacher),
	})

	amount := decimal.NewFromInt(250000)
	req := f.submitted(t, amount)

	first := f.pendingApproval(t, req.ID, 1)
	req, err := f.service.Approve(ctx, f.bursar, req.ID.String(), ApproveRequisitionRequest{ApprovalID: first.ID.String()})
	if err != nil {
		t.Fatalf("level 1 approve: %v", err)
	}

	second := f.pendingApproval(t, req.ID, 2)
	req, err = f.service.Approve(ctx, f.head, req.ID.String(), ApproveRequisitionRequest{ApprovalID: second.ID.String()})
	if err != nil {
		t.Fatalf("level 2 approve: %v", err)
	}

	if req.Status != workflow.StatusApproved.String() {
		t.Fatalf("full amount at every level must end approved, got %s", req.Status)
	}
	if req.AmountApproved == nil || !req.AmountApproved.Equal(amount) {
		t.Fatalf("expected approved amount %s, got %v", amount, req.AmountApproved)
	}
}

// Rejection at any level is terminal for the whole requisition, and the
// reason survives on both the requisition and the approval record.
func TestRejectIsGlobalAndKeepsReason(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t, &model.RequisitionSettings{
		ApprovalLevels: 2,
		Level1Role:     string(workflow.RoleBursar),
		Level2Role:     string(workflow.RoleHeadTeacher),
	})

	req := f.submitted(t, decimal.NewFromInt(300000))
	first := f.pendingApproval(t, req.ID, 1)

	reason := "No supporting quotation attached"
	req, err := f.service.Reject(ctx, f.bursar, req.ID.String(), RejectRequisitionRequest{
		ApprovalID: first.ID.String(),
		Reason:     reason,
	})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}

	if req.Status != workflow.StatusRejected.String() {
		t.Fatalf("rejection at level 1 must end the workflow, got %s", req.Status)
	}
	if req.RejectionReason != reason {
		t.Fatalf("expected rejection reason %q, got %q", reason, req.RejectionReason)
	}
	if req.DecidedAt == nil {
		t.Error("rejection must set decided_at")
	}

	decided, _ := f.approvals.FindByID(ctx, first.ID)
	if decided.Status != model.ApprovalRejected {
		t.Errorf("approval record should be rejected, got %s", decided.Status)
	}
	if decided.Comment != reason {
		t.Errorf("approval record should keep the reason, got %q", decided.Comment)
	}

	// No further decision is possible on a rejected requisition
	if _, err := f.service.Approve(ctx, f.head, req.ID.String(), ApproveRequisitionRequest{
		ApprovalID: f.mustSecondLevelID(t, req.ID).String(),
	}); err == nil {
		t.Error("approving a rejected requisition must fail")
	}
}

func (f *workflowFixture) mustSecondLevelID(t *testing.T, reqID uuid.UUID) uuid.UUID {
	t.Helper()
	rows, err := f.approvals.ListByRequisition(context.Background(), reqID)
	if err != nil {
		t.Fatalf("list approvals: %v", err)
	}
	for _, row := range rows {
		if row.Level == 2 {
			return row.ID
		}
	}
	t.Fatal("no level 2 approval record")
	return uuid.Nil
}

// The cash advance cap binds at creation, on draft edits, and again at
// submission, so a draft cannot be created under the cap and then inflated
// past it before entering the workflow.
func TestCashAdvanceCapHoldsAcrossEditAndSubmit(t *testing.T) {
	ctx := context.Background()
	advanceCap := decimal.NewFromInt(1000)
	f := newWorkflowFixture(t, &model.RequisitionSettings{
		ApprovalLevels:   2,
		Level1Role:       string(workflow.RoleBursar),
		Level2Role:       string(workflow.RoleHeadTeacher),
		MaxAdvanceAmount: &advanceCap,
	})

	if _, err := f.service.Create(ctx, f.requester, CreateRequisitionRequest{
		Type:            model.ReqTypeCashAdvance,
		AmountRequested: decimal.NewFromInt(5000),
		Purpose:         "Field trip float",
	}); err == nil {
		t.Fatal("creating a cash advance above the cap must fail")
	}

	req, err := f.service.Create(ctx, f.requester, CreateRequisitionRequest{
		Type:            model.ReqTypeCashAdvance,
		AmountRequested: decimal.NewFromInt(500),
		Purpose:         "Field trip float",
	})
	if err != nil {
		t.Fatalf("create under cap: %v", err)
	}

	inflated := decimal.NewFromInt(1000000)
	if _, err := f.service.Update(ctx, f.requester, req.ID.String(), UpdateRequisitionRequest{
		AmountRequested: &inflated,
	}); err == nil {
		t.Fatal("editing a cash advance draft above the cap must fail")
	}

	// A draft that somehow holds an over-cap amount is still refused at
	// submission, where the amount becomes binding
	stored := f.reqs.rows[req.ID]
	stored.AmountRequested = inflated
	f.reqs.rows[req.ID] = stored
	if _, err := f.service.Submit(ctx, f.requester, req.ID.String()); err == nil {
		t.Fatal("submitting an over-cap cash advance must fail")
	}

	// The cap does not apply to other requisition types
	if _, err := f.service.Create(ctx, f.requester, CreateRequisitionRequest{
		Type:            model.ReqTypePurchaseRequest,
		AmountRequested: inflated,
		Purpose:         "New classroom block furniture",
	}); err != nil {
		t.Fatalf("cap must not apply to purchase requests: %v", err)
	}
}
