package domain

import "github.com/shopspring/decimal"

// Hundred is the full percentage scale.
var Hundred = decimal.NewFromInt(100)

// Tolerances used across the allocation math. All comparisons against the
// 100% invariant and against zero deltas go through these, never through
// exact equality.
var (
	// SumTolerance bounds acceptable drift of a percentage scope from 100.
	SumTolerance = decimal.NewFromFloat(0.01)
	// DriftTolerance triggers the rounding correction after an edit.
	DriftTolerance = decimal.NewFromFloat(0.001)
	// HoldTolerance is the band inside which a delta is reported as HOLD.
	HoldTolerance = decimal.NewFromFloat(0.01)
)

// SafeParse parses a string into a decimal, returning zero for invalid or
// empty input.
func SafeParse(value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// SafeDiv divides a by b, returning zero when b is zero.
func SafeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}

// PercentOf returns part/whole as a percentage, zero when whole is zero.
func PercentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(Hundred)
}

// ApplyPercent returns percent% of value.
func ApplyPercent(percent, value decimal.Decimal) decimal.Decimal {
	return percent.Div(Hundred).Mul(value)
}

// SumsToHundred reports whether total is within SumTolerance of 100.
func SumsToHundred(total decimal.Decimal) bool {
	return total.Sub(Hundred).Abs().LessThanOrEqual(SumTolerance)
}

// ClampZero floors negative values at zero.
func ClampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
