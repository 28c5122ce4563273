package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxDescriptionLength = 255
	MaxEntryAmount       = "1000000000" // 1 billion
	MaxSeriesCount       = 360          // 30 years of monthly occurrences
)

// ValidateAmount rejects non-positive or absurdly large amounts.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	maxAmount, _ := decimal.NewFromString(MaxEntryAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrInvalidAmount, MaxEntryAmount)
	}
	return nil
}

// ValidateDescription bounds the free-text description.
func ValidateDescription(desc string) error {
	if len(desc) > MaxDescriptionLength {
		return fmt.Errorf("description exceeds %d characters", MaxDescriptionLength)
	}
	return nil
}

// ValidateSeriesCount bounds the occurrence count of a recurrence request.
func ValidateSeriesCount(count int) error {
	if count < 1 {
		return ErrInvalidCount
	}
	if count > MaxSeriesCount {
		return fmt.Errorf("%w: maximum is %d occurrences", ErrInvalidCount, MaxSeriesCount)
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	const maxPageSize = 1000
	const defaultPageSize = 50

	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
