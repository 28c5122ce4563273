package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Card is a credit card whose purchases accumulate into monthly bills.
type Card struct {
	ID               string
	Name             string
	ClosingDay       int
	DueDay           int
	CreditLimit      decimal.Decimal
	PaymentAccountID string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Validate checks the card's configuration.
func (c *Card) Validate() error {
	if c.ClosingDay < 1 || c.ClosingDay > 31 {
		return ErrInvalidDayOfMonth
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		return ErrInvalidDayOfMonth
	}
	if c.CreditLimit.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// BillingPeriodFor maps a purchase date to the bill it settles in.
func (c *Card) BillingPeriodFor(purchaseDate time.Time) Period {
	return BillingPeriodFor(purchaseDate, c.ClosingDay)
}

// DueDateFor returns the payment due date of the card's bill for period p.
func (c *Card) DueDateFor(p Period) time.Time {
	return DueDateFor(p, c.ClosingDay, c.DueDay)
}

// Bill is the materialized view of one card's entries for one billing
// period. It is derived on demand, never stored.
type Bill struct {
	CardID      string
	Period      Period
	Entries     []*Entry
	TotalAmount decimal.Decimal
	DueDate     time.Time
	IsPaid      bool
}

// AggregateBill builds the bill view for one card and period from the
// card-funded entries attributed to it. Cancelled entries are excluded.
// Discount lines spawned by anticipations are credits on the bill: their
// amounts subtract from the total.
func AggregateBill(card *Card, p Period, entries []*Entry, settlement *Entry) *Bill {
	bill := &Bill{
		CardID:      card.ID,
		Period:      p,
		Entries:     make([]*Entry, 0, len(entries)),
		TotalAmount: decimal.Zero,
		DueDate:     card.DueDateFor(p),
	}
	for _, e := range entries {
		if e.Status == StatusCancelled {
			continue
		}
		bill.Entries = append(bill.Entries, e)
		if e.IsDiscount() {
			bill.TotalAmount = bill.TotalAmount.Sub(e.Amount)
		} else {
			bill.TotalAmount = bill.TotalAmount.Add(e.Amount)
		}
	}
	bill.IsPaid = settlement != nil && settlement.Status == StatusCompleted
	return bill
}
