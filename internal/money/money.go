// Package money provides the exact decimal arithmetic used for household
// amounts. All amounts are shopspring decimals; floats never touch a balance.
package money

import (
	"github.com/shopspring/decimal"
)

var (
	epsilon            = decimal.New(1, -3)
	reconcileTolerance = decimal.New(1, -2)
	hundred            = decimal.NewFromInt(100)
)

// Epsilon is the tolerance below which a net amount is treated as zero.
func Epsilon() decimal.Decimal { return epsilon }

// ReconcileTolerance is the largest discrepancy between a computed balance and
// the persisted snapshot that is not reported.
func ReconcileTolerance() decimal.Decimal { return reconcileTolerance }

// Hundred is 100, the percentage base.
func Hundred() decimal.Decimal { return hundred }

// centPlaces is the number of decimal places amounts are split at.
const centPlaces = 2

// percentPlaces is the number of decimal places owed percentages are stored at.
const percentPlaces = 4

// IsEffectivelyZero reports whether |d| <= Epsilon().
func IsEffectivelyZero(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(epsilon)
}

// ExceedsEpsilon reports whether |d| > Epsilon().
func ExceedsEpsilon(d decimal.Decimal) bool {
	return !IsEffectivelyZero(d)
}

// ApproxEqual reports whether |a - b| <= tolerance.
func ApproxEqual(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}

// Sum adds the given values. Sum of nothing is zero.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// IsPositive reports whether d is strictly greater than zero.
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThan(decimal.Zero)
}

// ShareOf returns amount * pct / 100.
func ShareOf(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}

// Percent returns part as a percentage of total, rounded to four places.
// A zero total yields zero.
func Percent(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Mul(hundred).DivRound(total, percentPlaces)
}

// SplitEvenly divides amount into n parts at cent precision. Leftover cents go
// to the first parts so the parts always add up to amount exactly.
func SplitEvenly(amount decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}

	count := decimal.NewFromInt(int64(n))
	base := amount.Div(count).RoundDown(centPlaces)
	remainder := amount.Sub(base.Mul(count))
	cent := decimal.New(1, -centPlaces)

	parts := make([]decimal.Decimal, n)
	for i := range parts {
		parts[i] = base
		if remainder.GreaterThanOrEqual(cent) {
			parts[i] = parts[i].Add(cent)
			remainder = remainder.Sub(cent)
		}
	}
	// Amounts with sub-cent precision leave a fraction behind; it lands on the last part.
	if !remainder.IsZero() {
		parts[n-1] = parts[n-1].Add(remainder)
	}
	return parts
}

// Percentages returns each part as a percentage of total, rounded to four
// places, with the rounding residue folded into the last entry so the result
// sums to exactly 100. A zero total yields all zeros.
func Percentages(parts []decimal.Decimal, total decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(parts))
	if len(parts) == 0 || total.IsZero() {
		for i := range out {
			out[i] = decimal.Zero
		}
		return out
	}

	assigned := decimal.Zero
	last := -1
	for i, p := range parts {
		out[i] = Percent(p, total)
		assigned = assigned.Add(out[i])
		if !p.IsZero() {
			last = i
		}
	}
	if last >= 0 {
		out[last] = out[last].Add(hundred.Sub(assigned))
	}
	return out
}
