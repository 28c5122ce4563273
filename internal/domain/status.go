package domain

import "github.com/shopspring/decimal"

// Status is the lifecycle state of an entry.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted || s == StatusCancelled
}

// Two derived totals hang off the entry status, each with its own membership
// rule: the account balance counts only completed entries, goal progress
// counts everything that is not cancelled. Deltas for both are produced by
// the single transition function below instead of branching at call sites.

// CountsTowardBalance reports whether an entry in status s contributes to
// the cached account balance.
func (s Status) CountsTowardBalance() bool { return s == StatusCompleted }

// CountsTowardGoal reports whether an entry in status s contributes to goal
// progress.
func (s Status) CountsTowardGoal() bool { return s != StatusCancelled }

// TransitionDelta returns the signed adjustment a derived total must apply
// when an entry moves from (oldStatus, oldAmount) to (newStatus, newAmount),
// given the total's membership rule. Entering membership adds the new
// amount, leaving subtracts the old one, staying inside nets the amount
// edit, staying outside is a no-op.
func TransitionDelta(oldStatus, newStatus Status, oldAmount, newAmount decimal.Decimal, member func(Status) bool) decimal.Decimal {
	was, is := member(oldStatus), member(newStatus)
	switch {
	case !was && is:
		return newAmount
	case was && !is:
		return oldAmount.Neg()
	case was && is:
		return newAmount.Sub(oldAmount)
	default:
		return decimal.Zero
	}
}

// CreationDelta is the adjustment for an entry that did not exist before:
// the new amount if its initial status is a member, zero otherwise.
func CreationDelta(status Status, amount decimal.Decimal, member func(Status) bool) decimal.Decimal {
	if member(status) {
		return amount
	}
	return decimal.Zero
}

// DeletionDelta is the adjustment for removing an entry outright.
func DeletionDelta(status Status, amount decimal.Decimal, member func(Status) bool) decimal.Decimal {
	if member(status) {
		return amount.Neg()
	}
	return decimal.Zero
}
