// Package report renders allocation and projection results for terminal output.
package report

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Formatter formats decimal amounts in a fixed display currency.
type Formatter struct {
	currency *money.Currency
}

// NewFormatter returns a formatter for the given ISO 4217 currency code.
// Unknown codes fall back to EUR.
func NewFormatter(code string) *Formatter {
	cur := money.GetCurrency(code)
	if cur == nil {
		cur = money.GetCurrency(money.EUR)
	}
	return &Formatter{currency: cur}
}

// Format renders an amount as a localized currency string, e.g. "€1,234.56".
func (f *Formatter) Format(amount decimal.Decimal) string {
	minor := amount.Shift(int32(f.currency.Fraction)).Round(0)
	return money.New(minor.IntPart(), f.currency.Code).Display()
}

// SignedFormat renders an amount with an explicit leading sign for positive
// values. Zero renders as "-".
func (f *Formatter) SignedFormat(amount decimal.Decimal) string {
	if amount.IsZero() {
		return "-"
	}
	if amount.IsPositive() {
		return "+" + f.Format(amount)
	}
	return f.Format(amount)
}

// Percent renders a percent value with two decimal places and a trailing sign.
func Percent(p decimal.Decimal) string {
	return p.Round(2).StringFixed(2) + "%"
}
