package workflow

import (
	"testing"

	"github.com/shopspring/decimal"
)

func amt(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestStatusValidity(t *testing.T) {
	for _, s := range []Status{
		StatusDraft, StatusPendingLevel1, StatusPendingLevel2, StatusPendingLevel3,
		StatusApproved, StatusPartiallyApproved, StatusRejected, StatusCancelled,
	} {
		if !s.Valid() {
			t.Errorf("expected %s to be valid", s)
		}
	}
	if Status("pending_level4").Valid() {
		t.Error("pending_level4 should not be a valid status")
	}
	if Status("").Valid() {
		t.Error("empty status should not be valid")
	}
}

func TestPendingLevels(t *testing.T) {
	cases := []struct {
		status Status
		level  int
	}{
		{StatusPendingLevel1, 1},
		{StatusPendingLevel2, 2},
		{StatusPendingLevel3, 3},
		{StatusDraft, 0},
		{StatusApproved, 0},
		{StatusRejected, 0},
	}
	for _, tc := range cases {
		if got := tc.status.Level(); got != tc.level {
			t.Errorf("%s: Level() = %d, want %d", tc.status, got, tc.level)
		}
	}

	for level := 1; level <= MaxApprovalLevels; level++ {
		s, err := PendingForLevel(level)
		if err != nil {
			t.Fatalf("PendingForLevel(%d): %v", level, err)
		}
		if s.Level() != level {
			t.Errorf("PendingForLevel(%d) = %s with level %d", level, s, s.Level())
		}
	}
	if _, err := PendingForLevel(0); err == nil {
		t.Error("PendingForLevel(0) should error")
	}
	if _, err := PendingForLevel(4); err == nil {
		t.Error("PendingForLevel(4) should error")
	}
}

// Terminal statuses must admit no outgoing transition at all.
func TestTerminalStatusesAreFinal(t *testing.T) {
	terminals := []Status{StatusApproved, StatusPartiallyApproved, StatusRejected, StatusCancelled}
	all := []Status{
		StatusDraft, StatusPendingLevel1, StatusPendingLevel2, StatusPendingLevel3,
		StatusApproved, StatusPartiallyApproved, StatusRejected, StatusCancelled,
	}
	for _, from := range terminals {
		if !from.IsTerminal() {
			t.Errorf("%s should be terminal", from)
		}
		for _, to := range all {
			if CanTransition(from, to) {
				t.Errorf("terminal %s must not transition to %s", from, to)
			}
		}
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusDraft, StatusPendingLevel1, true},
		{StatusDraft, StatusApproved, true}, // auto-approve below threshold
		{StatusDraft, StatusCancelled, true},
		{StatusDraft, StatusPendingLevel2, false},
		{StatusDraft, StatusRejected, false},
		{StatusPendingLevel1, StatusPendingLevel2, true},
		{StatusPendingLevel1, StatusApproved, true},
		{StatusPendingLevel1, StatusPartiallyApproved, true},
		{StatusPendingLevel1, StatusRejected, true},
		{StatusPendingLevel1, StatusCancelled, true},
		{StatusPendingLevel1, StatusDraft, false},
		{StatusPendingLevel2, StatusPendingLevel1, false},
		{StatusPendingLevel2, StatusPendingLevel3, true},
		{StatusPendingLevel3, StatusApproved, true},
		{StatusPendingLevel3, StatusPendingLevel1, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestNextOnApprove(t *testing.T) {
	cases := []struct {
		name      string
		current   Status
		maxLevels int
		approved  string
		requested string
		want      Status
		wantErr   bool
	}{
		{"level1 of 2 advances", StatusPendingLevel1, 2, "500000", "500000", StatusPendingLevel2, false},
		{"level2 of 2 full amount", StatusPendingLevel2, 2, "500000", "500000", StatusApproved, false},
		{"level2 of 2 reduced amount", StatusPendingLevel2, 2, "400000", "500000", StatusPartiallyApproved, false},
		{"level1 of 1 full amount", StatusPendingLevel1, 1, "1000", "1000", StatusApproved, false},
		{"level1 of 1 reduced", StatusPendingLevel1, 1, "900", "1000", StatusPartiallyApproved, false},
		{"level2 of 3 advances", StatusPendingLevel2, 3, "100", "100", StatusPendingLevel3, false},
		{"level3 of 3 over-approved counts as full", StatusPendingLevel3, 3, "150", "100", StatusApproved, false},
		{"intermediate reduction does not terminate", StatusPendingLevel1, 2, "400000", "500000", StatusPendingLevel2, false},
		{"draft is not approvable", StatusDraft, 2, "1", "1", "", true},
		{"approved is not approvable", StatusApproved, 2, "1", "1", "", true},
		{"rejected is not approvable", StatusRejected, 2, "1", "1", "", true},
		{"max levels zero rejected", StatusPendingLevel1, 0, "1", "1", "", true},
		{"max levels above cap rejected", StatusPendingLevel1, 4, "1", "1", "", true},
		{"level beyond max rejected", StatusPendingLevel3, 2, "1", "1", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NextOnApprove(tc.current, tc.maxLevels, amt(tc.approved), amt(tc.requested))
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}

// The approve handler must never produce a pending level outside
// [1, maxLevels]: every reachable next state is either terminal or a pending
// status whose level is within range.
func TestNextOnApproveNeverLeavesRange(t *testing.T) {
	pendings := []Status{StatusPendingLevel1, StatusPendingLevel2, StatusPendingLevel3}
	for maxLevels := 1; maxLevels <= MaxApprovalLevels; maxLevels++ {
		for _, current := range pendings {
			next, err := NextOnApprove(current, maxLevels, amt("10"), amt("10"))
			if err != nil {
				continue // out-of-range inputs are rejected, which is the point
			}
			if next.IsTerminal() {
				continue
			}
			if next.Level() < 1 || next.Level() > maxLevels {
				t.Errorf("maxLevels=%d current=%s: next %s has out-of-range level %d",
					maxLevels, current, next, next.Level())
			}
		}
	}
}

func TestRoleSet(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleBursar, RoleHeadTeacher, RoleDirector, RoleStaff} {
		if !ValidRole(r) {
			t.Errorf("expected %s to be valid", r)
		}
		if r.Label() == "" {
			t.Errorf("role %s has no label", r)
		}
	}
	if ValidRole("accountant") {
		t.Error("accountant is not in the closed role set")
	}
}

func TestDefaultRoleForLevel(t *testing.T) {
	cases := map[int]Role{1: RoleBursar, 2: RoleHeadTeacher, 3: RoleDirector}
	for level, want := range cases {
		if got := DefaultRoleForLevel(level); got != want {
			t.Errorf("DefaultRoleForLevel(%d) = %s, want %s", level, got, want)
		}
	}
}

func TestCanActOnLevel(t *testing.T) {
	if !CanActOnLevel(RoleAdmin, RoleBursar) {
		t.Error("admin should be able to act on any level")
	}
	if !CanActOnLevel(RoleBursar, RoleBursar) {
		t.Error("matching role should be allowed")
	}
	if CanActOnLevel(RoleStaff, RoleBursar) {
		t.Error("staff must not decide a bursar level")
	}
}
