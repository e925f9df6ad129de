package workflow

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Status represents a requisition state in the approval lifecycle.
// All transitions go through CanTransition/NextOnApprove — services never
// assemble a status string by hand.
type Status string

const (
	StatusDraft             Status = "draft"
	StatusPendingLevel1     Status = "pending_level1"
	StatusPendingLevel2     Status = "pending_level2"
	StatusPendingLevel3     Status = "pending_level3"
	StatusApproved          Status = "approved"
	StatusPartiallyApproved Status = "partially_approved"
	StatusRejected          Status = "rejected"
	StatusCancelled         Status = "cancelled"
)

// MaxApprovalLevels is the hard ceiling on configurable approval chains.
const MaxApprovalLevels = 3

var validStatuses = map[Status]bool{
	StatusDraft:             true,
	StatusPendingLevel1:     true,
	StatusPendingLevel2:     true,
	StatusPendingLevel3:     true,
	StatusApproved:          true,
	StatusPartiallyApproved: true,
	StatusRejected:          true,
	StatusCancelled:         true,
}

var terminalStatuses = map[Status]bool{
	StatusApproved:          true,
	StatusPartiallyApproved: true,
	StatusRejected:          true,
	StatusCancelled:         true,
}

var pendingLevels = map[Status]int{
	StatusPendingLevel1: 1,
	StatusPendingLevel2: 2,
	StatusPendingLevel3: 3,
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// Valid returns true if the status is a known lifecycle state
func (s Status) Valid() bool {
	return validStatuses[s]
}

// IsTerminal returns true if the status admits no further transitions
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// IsPending returns true if the requisition is waiting on some approval level
func (s Status) IsPending() bool {
	_, ok := pendingLevels[s]
	return ok
}

// Level returns the approval level a pending status is waiting on, or 0
// for any non-pending status.
func (s Status) Level() int {
	return pendingLevels[s]
}

// PendingForLevel returns the pending status for a given approval level.
func PendingForLevel(level int) (Status, error) {
	switch level {
	case 1:
		return StatusPendingLevel1, nil
	case 2:
		return StatusPendingLevel2, nil
	case 3:
		return StatusPendingLevel3, nil
	default:
		return "", fmt.Errorf("approval level %d out of range [1, %d]", level, MaxApprovalLevels)
	}
}

// transitions is the closed set of legal status moves. Anything not listed
// here is rejected before a single row is written.
var transitions = map[Status][]Status{
	StatusDraft:         {StatusPendingLevel1, StatusApproved, StatusCancelled},
	StatusPendingLevel1: {StatusPendingLevel2, StatusApproved, StatusPartiallyApproved, StatusRejected, StatusCancelled},
	StatusPendingLevel2: {StatusPendingLevel3, StatusApproved, StatusPartiallyApproved, StatusRejected, StatusCancelled},
	StatusPendingLevel3: {StatusApproved, StatusPartiallyApproved, StatusRejected, StatusCancelled},
}

// CanTransition reports whether moving from one status to another is legal.
// Terminal statuses have no outgoing edges.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextOnApprove computes the status that follows an approval decision at the
// current pending level. At the final level the decision is terminal:
// partially_approved when the approved amount is below the requested amount,
// approved otherwise. At intermediate levels the requisition advances to the
// next pending level.
func NextOnApprove(current Status, maxLevels int, approved, requested decimal.Decimal) (Status, error) {
	level := current.Level()
	if level == 0 {
		return "", fmt.Errorf("requisition is %s, not awaiting approval", current)
	}
	if maxLevels < 1 || maxLevels > MaxApprovalLevels {
		return "", fmt.Errorf("max approval levels %d out of range [1, %d]", maxLevels, MaxApprovalLevels)
	}
	if level > maxLevels {
		return "", fmt.Errorf("current level %d exceeds max approval levels %d", level, maxLevels)
	}

	if level >= maxLevels {
		if approved.LessThan(requested) {
			return StatusPartiallyApproved, nil
		}
		return StatusApproved, nil
	}

	return PendingForLevel(level + 1)
}
