package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GoalType restricts a goal to one entry kind.
type GoalType string

const (
	GoalTypeExpense GoalType = "expense"
	GoalTypeIncome  GoalType = "income"
)

// Valid reports whether t is a known goal type.
func (t GoalType) Valid() bool {
	return t == GoalTypeExpense || t == GoalTypeIncome
}

// Kind returns the entry kind counted by this goal type.
func (t GoalType) Kind() Kind {
	if t == GoalTypeIncome {
		return KindIncome
	}
	return KindExpense
}

// MonthlyGoal is a category budget for one period. CurrentAmount is a
// derived cache maintained by the reconciler; the pure recomputation in
// GoalProgress is always authoritative.
type MonthlyGoal struct {
	ID            string
	CategoryID    string
	GoalType      GoalType
	Period        Period
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks the goal's configuration.
func (g *MonthlyGoal) Validate() error {
	if !g.GoalType.Valid() {
		return ErrInvalidKind
	}
	if !g.TargetAmount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// GoalProgress sums the entries counting toward a category goal in one
// period. An entry counts when its kind matches the goal type, it is not
// cancelled, and its effective period is the target period: the bill
// period for card purchases, so spending counts in the month it was made
// whether or not the bill has been paid. Settlement entries are excluded
// entirely: the spending they settle is already attributed to the
// underlying card purchases.
func GoalProgress(goalType GoalType, categoryID string, p Period, entries []*Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.IsSettlement() || e.IsDiscount() {
			continue
		}
		if e.CategoryID != categoryID || e.Kind != goalType.Kind() {
			continue
		}
		if !e.Status.CountsTowardGoal() {
			continue
		}
		if e.EffectivePeriod() != p {
			continue
		}
		total = total.Add(e.Amount)
	}
	return total
}
