package domain

import (
	"fmt"
	"time"
)

// Period identifies one monthly billing or budget period.
type Period struct {
	Month time.Month
	Year  int
}

// PeriodOf returns the calendar period a date falls in.
func PeriodOf(t time.Time) Period {
	return Period{Month: t.Month(), Year: t.Year()}
}

// AddMonths returns the period n months after p. Negative n steps backward.
func (p Period) AddMonths(n int) Period {
	months := p.Year*12 + int(p.Month) - 1 + n
	year := months / 12
	month := months%12 + 1
	if month < 1 {
		month += 12
		year--
	}
	return Period{Month: time.Month(month), Year: year}
}

// Compare returns -1, 0 or 1 as p sorts before, equal to or after other.
func (p Period) Compare(other Period) int {
	a := p.Year*12 + int(p.Month)
	b := other.Year*12 + int(other.Month)
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Before reports whether p precedes other.
func (p Period) Before(other Period) bool { return p.Compare(other) < 0 }

// After reports whether p follows other.
func (p Period) After(other Period) bool { return p.Compare(other) > 0 }

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// BillingPeriodFor maps a purchase date to the bill it settles in: on or
// before the closing day it bills in the purchase's own month, strictly
// after it rolls into the next month. The closing day itself always belongs
// to the closing bill.
func BillingPeriodFor(purchaseDate time.Time, closingDay int) Period {
	p := PeriodOf(purchaseDate)
	if purchaseDate.Day() > closingDay {
		return p.AddMonths(1)
	}
	return p
}

// DueDateFor returns the payment due date of the bill for period p. A due
// day strictly before the closing day falls in the month after the bill's
// period; a due day on or after it stays in the bill's own month. The day
// is clamped to the target month's length.
func DueDateFor(p Period, closingDay, dueDay int) time.Time {
	due := p
	if dueDay < closingDay {
		due = p.AddMonths(1)
	}
	day := dueDay
	if last := lastDayOfMonth(due.Year, due.Month); day > last {
		day = last
	}
	return time.Date(due.Year, due.Month, day, 0, 0, 0, 0, time.UTC)
}

// StepOccurrence returns the date of the index-th occurrence (0-based) of a
// recurrence starting at base. Monthly and yearly steps preserve the base
// day of month, clamping to short months without drifting: stepping past
// February restores the original day.
func StepOccurrence(base time.Time, interval Recurrence, index int) time.Time {
	switch interval {
	case RecurrenceWeekly:
		return base.AddDate(0, 0, 7*index)
	case RecurrenceBiweekly:
		return base.AddDate(0, 0, 14*index)
	case RecurrenceYearly:
		return addMonthsClamped(base, 12*index)
	default:
		return addMonthsClamped(base, index)
	}
}

// addMonthsClamped adds months to a date keeping the day of month, clamped
// to the target month's last day. time.AddDate would overflow Jan 31 plus
// one month into March.
func addMonthsClamped(t time.Time, months int) time.Time {
	p := PeriodOf(t).AddMonths(months)
	day := t.Day()
	if last := lastDayOfMonth(p.Year, p.Month); day > last {
		day = last
	}
	return time.Date(p.Year, p.Month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
