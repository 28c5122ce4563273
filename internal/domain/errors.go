package domain

import (
	"errors"
	"fmt"
)

var (
	// Not found
	ErrEntryNotFound   = errors.New("entry not found")
	ErrCardNotFound    = errors.New("card not found")
	ErrAccountNotFound = errors.New("account not found")
	ErrGoalNotFound    = errors.New("goal not found")
	ErrSeriesNotFound  = errors.New("series not found")

	// Validation: rejected before any write, recoverable by correcting input.
	ErrInvalidKind            = errors.New("invalid entry kind")
	ErrInvalidName            = errors.New("name is required")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidStatus          = errors.New("invalid entry status")
	ErrInvalidRecurrence      = errors.New("invalid recurrence interval")
	ErrInvalidSplitMode       = errors.New("invalid split mode")
	ErrInvalidCount           = errors.New("occurrence count must be at least 1")
	ErrInvalidDayOfMonth      = errors.New("day of month must be between 1 and 31")
	ErrInvalidPeriod          = errors.New("invalid billing period")
	ErrInvalidInstallment     = errors.New("installment index must be at least 1")
	ErrMissingDate            = errors.New("entry date is required")
	ErrMissingBillPeriod      = errors.New("card-funded entry requires a bill period")
	ErrMissingFundingSource   = errors.New("entry requires an account or card")
	ErrAmbiguousFundingSource = errors.New("entry cannot be funded by both an account and a card")
	ErrSameAccount            = errors.New("cannot transfer to same account")

	// Preconditions: the operation is well-formed but the ledger state
	// forbids it. Also rejected before any write.
	ErrNotCardFunded      = errors.New("entry is not card funded")
	ErrNotSeriesMember    = errors.New("entry does not belong to a series")
	ErrAlreadyAnticipated = errors.New("entry was already anticipated")
	ErrPeriodNotFuture    = errors.New("bill period is already current or past")
	ErrPeriodClosed       = errors.New("target bill period is already closed")
	ErrBillAlreadyPaid    = errors.New("bill is already paid")
	ErrBillEmpty          = errors.New("bill has no entries")
	ErrGoalExists         = errors.New("goal already exists for category and period")
)

// PartialFailure reports a bulk operation where some but not all member
// writes succeeded. The achieved count is part of the result: callers decide
// whether to retry the remainder or surface a degraded success. It is never
// upgraded to a silent full success.
type PartialFailure struct {
	Written   int
	Requested int
	Err       error
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("partial failure: %d of %d writes succeeded: %v", e.Written, e.Requested, e.Err)
}

func (e *PartialFailure) Unwrap() error { return e.Err }

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrCardNotFound) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrGoalNotFound) ||
		errors.Is(err, ErrSeriesNotFound)
}

// IsPrecondition reports whether err is a state-dependent rejection.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrNotCardFunded) ||
		errors.Is(err, ErrNotSeriesMember) ||
		errors.Is(err, ErrAlreadyAnticipated) ||
		errors.Is(err, ErrPeriodNotFuture) ||
		errors.Is(err, ErrPeriodClosed) ||
		errors.Is(err, ErrBillAlreadyPaid) ||
		errors.Is(err, ErrBillEmpty) ||
		errors.Is(err, ErrGoalExists)
}
