package service

import (
	"context"
	"testing"

	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/model"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/workflow"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	actorID := uuid.New()
	threshold := decimal.NewFromInt(50000)
	negative := decimal.NewFromInt(-1)

	tests := []struct {
		name    string
		req     UpdateSettingsRequest
		wantErr bool
	}{
		{
			name: "valid three level chain",
			req: UpdateSettingsRequest{
				ApprovalLevels:       3,
				Level1Role:           string(workflow.RoleBursar),
				Level2Role:           string(workflow.RoleHeadTeacher),
				Level3Role:           string(workflow.RoleDirector),
				AutoApproveThreshold: &threshold,
			},
		},
		{
			name: "blank roles fall back to defaults",
			req:  UpdateSettingsRequest{ApprovalLevels: 2},
		},
		{
			name:    "unknown role refused",
			req:     UpdateSettingsRequest{ApprovalLevels: 2, Level1Role: "janitor"},
			wantErr: true,
		},
		{
			name:    "negative threshold refused",
			req:     UpdateSettingsRequest{ApprovalLevels: 2, AutoApproveThreshold: &negative},
			wantErr: true,
		},
		{
			name:    "negative advance cap refused",
			req:     UpdateSettingsRequest{ApprovalLevels: 2, MaxAdvanceAmount: &negative},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			audit := &fakeAuditRepo{}
			svc := NewSettingsService(&fakeSettingsRepo{}, audit)

			settings, err := svc.Update(ctx, actorID, tenantID, tt.req)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				if len(audit.entries) != 0 {
					t.Error("a refused update must not be audited")
				}
				return
			}
			if err != nil {
				t.Fatalf("update: %v", err)
			}
			if settings.ApprovalLevels != tt.req.ApprovalLevels {
				t.Errorf("expected %d levels, got %d", tt.req.ApprovalLevels, settings.ApprovalLevels)
			}
			if settings.Level1Role == "" || settings.Level2Role == "" {
				t.Error("saved settings must carry concrete level roles")
			}

			if len(audit.entries) != 1 || audit.entries[0].Action != model.ActionUpdateSettings {
				t.Fatalf("expected one settings audit entry, got %v", audit.actions())
			}
			if audit.entries[0].UserID == nil || *audit.entries[0].UserID != actorID {
				t.Error("audit entry must record the acting user")
			}
		})
	}
}
