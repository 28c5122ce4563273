package domain

import "github.com/shopspring/decimal"

// SplitInstallments divides a stated total across count installments at
// minor-unit precision. Each of the first count-1 installments receives the
// total divided by count rounded to two places; the final installment
// absorbs the rounding remainder so the sum of all shares equals the total
// exactly. Splitting 100.00 by 3 yields 33.33, 33.33, 33.34.
func SplitInstallments(total decimal.Decimal, count int) []decimal.Decimal {
	shares := make([]decimal.Decimal, count)
	if count == 1 {
		shares[0] = total
		return shares
	}
	base := total.Div(decimal.NewFromInt(int64(count))).Round(2)
	running := decimal.Zero
	for i := 0; i < count-1; i++ {
		shares[i] = base
		running = running.Add(base)
	}
	shares[count-1] = total.Sub(running)
	return shares
}

// SeriesAmounts returns the per-occurrence amounts for a series. Fixed mode
// repeats the full total each occurrence; installment mode splits it.
func SeriesAmounts(total decimal.Decimal, count int, mode SplitMode) []decimal.Decimal {
	if mode == SplitFixed {
		amounts := make([]decimal.Decimal, count)
		for i := range amounts {
			amounts[i] = total
		}
		return amounts
	}
	return SplitInstallments(total, count)
}
