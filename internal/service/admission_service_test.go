package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/model"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/repository"

	"github.com/google/uuid"
)

func TestGenerateConfirmationCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code, err := generateConfirmationCode()
		if err != nil {
			t.Fatalf("generateConfirmationCode: %v", err)
		}
		if len(code) != 8 {
			t.Fatalf("expected 8-character code, got %q", code)
		}
		for _, r := range code {
			if !strings.ContainsRune(confirmationAlphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
		seen[code] = true
	}
	// 200 draws from a 31^8 space colliding would point at a broken source
	if len(seen) < 190 {
		t.Errorf("expected mostly unique codes, got %d distinct of 200", len(seen))
	}
}

func TestConfirmationAlphabetOmitsAmbiguousCharacters(t *testing.T) {
	for _, r := range "0O1IL" {
		if strings.ContainsRune(confirmationAlphabet, r) {
			t.Errorf("alphabet should not contain ambiguous character %q", r)
		}
	}
}

type fakeAuditRepo struct {
	entries []model.AuditLog
}

func (f *fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) List(_ context.Context, _ uuid.UUID, _ repository.AuditFilter) ([]model.AuditLog, int64, error) {
	return f.entries, int64(len(f.entries)), nil
}

func (f *fakeAuditRepo) DeleteByTenant(_ context.Context, _ uuid.UUID) error { return nil }

func (f *fakeAuditRepo) actions() []string {
	out := make([]string, 0, len(f.entries))
	for _, entry := range f.entries {
		out = append(out, entry.Action)
	}
	return out
}

type fakeAdmissionRepo struct {
	rows map[uuid.UUID]model.AdmissionApplication
}

func newFakeAdmissionRepo() *fakeAdmissionRepo {
	return &fakeAdmissionRepo{rows: make(map[uuid.UUID]model.AdmissionApplication)}
}

func (f *fakeAdmissionRepo) Create(_ context.Context, app *model.AdmissionApplication) error {
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	f.rows[app.ID] = *app
	return nil
}

func (f *fakeAdmissionRepo) FindByCodeForUpdate(_ context.Context, tenantID uuid.UUID, code string) (*model.AdmissionApplication, error) {
	for _, row := range f.rows {
		if row.TenantID == tenantID && row.ConfirmationCode == code {
			out := row
			return &out, nil
		}
	}
	return nil, errors.New("record not found")
}

func (f *fakeAdmissionRepo) List(_ context.Context, tenantID uuid.UUID, status string, _, _ int) ([]model.AdmissionApplication, int64, error) {
	var out []model.AdmissionApplication
	for _, row := range f.rows {
		if row.TenantID == tenantID && (status == "" || row.Status == status) {
			out = append(out, row)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeAdmissionRepo) Update(_ context.Context, app *model.AdmissionApplication) error {
	f.rows[app.ID] = *app
	return nil
}

func (f *fakeAdmissionRepo) DeleteByTenant(_ context.Context, _ uuid.UUID) error { return nil }

// Verification is single-use: the first staff member to present a code marks
// the application verified, and any repeat attempt is refused.
func TestVerifyAdmissionIsSingleUse(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	verifier := uuid.New()

	repo := newFakeAdmissionRepo()
	audit := &fakeAuditRepo{}
	svc := NewAdmissionService(repo, audit, fakeTxManager{})

	app, err := svc.Create(ctx, tenantID, CreateAdmissionRequest{
		ApplicantName: "Nansubuga Mary",
		ClassApplied:  "S1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	verified, err := svc.Verify(ctx, tenantID, verifier, app.ConfirmationCode)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verified.Status != model.AdmissionVerified {
		t.Fatalf("expected verified status, got %s", verified.Status)
	}
	if verified.VerifiedBy == nil || *verified.VerifiedBy != verifier {
		t.Error("verification must record who verified")
	}
	if verified.VerifiedAt == nil {
		t.Error("verification must record when")
	}

	if _, err := svc.Verify(ctx, tenantID, uuid.New(), app.ConfirmationCode); err == nil {
		t.Fatal("verifying an already-verified application must fail")
	}

	if _, err := svc.Verify(ctx, tenantID, verifier, "NOSUCHCD"); err == nil {
		t.Fatal("verifying an unknown code must fail")
	}

	// Another tenant cannot verify with this tenant's code
	if _, err := svc.Verify(ctx, uuid.New(), verifier, app.ConfirmationCode); err == nil {
		t.Fatal("codes must not resolve across tenants")
	}

	actions := audit.actions()
	if len(actions) != 2 || actions[0] != model.ActionCreateAdmission || actions[1] != model.ActionVerifyAdmission {
		t.Fatalf("expected create and verify audit entries, got %v", actions)
	}
}
