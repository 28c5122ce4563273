package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a ledger entry.
type Kind string

const (
	KindExpense  Kind = "expense"
	KindIncome   Kind = "income"
	KindTransfer Kind = "transfer"
)

// Valid reports whether k is a known entry kind.
func (k Kind) Valid() bool {
	return k == KindExpense || k == KindIncome || k == KindTransfer
}

// Recurrence is the interval between occurrences of a series.
type Recurrence string

const (
	RecurrenceNone     Recurrence = "none"
	RecurrenceWeekly   Recurrence = "weekly"
	RecurrenceBiweekly Recurrence = "biweekly"
	RecurrenceMonthly  Recurrence = "monthly"
	RecurrenceYearly   Recurrence = "yearly"
)

// Valid reports whether r is a known recurrence interval.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceWeekly, RecurrenceBiweekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

// SplitMode controls how a series' stated total maps to member amounts.
// Installment divides the total across occurrences; fixed repeats the full
// amount each occurrence.
type SplitMode string

const (
	SplitInstallment SplitMode = "installment"
	SplitFixed       SplitMode = "fixed"
)

// Valid reports whether m is a known split mode.
func (m SplitMode) Valid() bool {
	return m == SplitInstallment || m == SplitFixed
}

// Entry is the ledger line item. Amounts are always positive; the kind
// determines the direction of the movement.
type Entry struct {
	ID                   string
	Kind                 Kind
	Amount               decimal.Decimal
	Description          string
	OccursOn             time.Time
	Status               Status
	AccountID            string
	CardID               string
	DestinationAccountID string
	CategoryID           string
	BillPeriod           *Period
	SeriesID             string
	InstallmentIndex     int
	InstallmentCount     int
	Recurrence           Recurrence
	SplitMode            SplitMode
	AnticipatedFrom      *Period
	DiscountAmount       decimal.Decimal
	RelatedEntryID       string
	GoalID               string
	SettlesCardID        string
	SettlesPeriod        *Period
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// CardFunded reports whether the entry settles against a credit card bill.
func (e *Entry) CardFunded() bool { return e.CardID != "" }

// SeriesMember reports whether the entry was created as part of a series.
func (e *Entry) SeriesMember() bool { return e.SeriesID != "" }

// IsSettlement reports whether the entry records payment of a card bill.
func (e *Entry) IsSettlement() bool { return e.SettlesCardID != "" }

// IsDiscount reports whether the entry is the cash-discount line spawned by
// an installment anticipation.
func (e *Entry) IsDiscount() bool { return e.DiscountAmount.IsPositive() }

// EffectivePeriod is the period the entry counts toward in reports: the
// bill period for card-funded entries, the calendar month of OccursOn
// otherwise. A card purchase counts in the month it was made, regardless of
// when its bill is paid.
func (e *Entry) EffectivePeriod() Period {
	if e.CardFunded() && e.BillPeriod != nil {
		return *e.BillPeriod
	}
	return PeriodOf(e.OccursOn)
}

// Direction returns +1 for movements that increase the funding account and
// -1 for ones that decrease it. Transfers debit the source account; the
// credit side is handled against DestinationAccountID.
func (e *Entry) Direction() int {
	if e.Kind == KindIncome {
		return 1
	}
	return -1
}

// SignedAmount is the entry amount with Direction applied.
func (e *Entry) SignedAmount() decimal.Decimal {
	if e.Direction() < 0 {
		return e.Amount.Neg()
	}
	return e.Amount
}

// Validate checks the structural invariants of an entry before any write.
func (e *Entry) Validate() error {
	if !e.Kind.Valid() {
		return ErrInvalidKind
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if e.OccursOn.IsZero() {
		return ErrMissingDate
	}
	switch e.Kind {
	case KindTransfer:
		if e.AccountID == "" || e.DestinationAccountID == "" {
			return ErrMissingFundingSource
		}
		if e.AccountID == e.DestinationAccountID {
			return ErrSameAccount
		}
		if e.CardID != "" {
			return ErrAmbiguousFundingSource
		}
	default:
		if e.AccountID == "" && e.CardID == "" {
			return ErrMissingFundingSource
		}
		if e.AccountID != "" && e.CardID != "" {
			return ErrAmbiguousFundingSource
		}
	}
	if e.CardFunded() && e.BillPeriod == nil {
		return ErrMissingBillPeriod
	}
	return nil
}
