package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a funding source with a cached balance. The balance is derived
// from completed entries plus the initial balance; it is recomputed or
// adjusted incrementally, never trusted as independent truth.
type Account struct {
	ID             string
	Name           string
	InitialBalance decimal.Decimal
	Balance        decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RecomputeBalance derives the account balance from its completed entries.
// funded are entries debiting or crediting the account directly; received
// are transfers into the account from elsewhere. Pending and cancelled
// entries are ignored.
func (a *Account) RecomputeBalance(funded, received []*Entry) decimal.Decimal {
	balance := a.InitialBalance
	for _, e := range funded {
		if !e.Status.CountsTowardBalance() {
			continue
		}
		balance = balance.Add(e.SignedAmount())
	}
	for _, e := range received {
		if !e.Status.CountsTowardBalance() {
			continue
		}
		balance = balance.Add(e.Amount)
	}
	return balance
}
