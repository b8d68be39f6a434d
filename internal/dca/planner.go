package dca

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/folio/internal/domain"
)

// Purchase is one DCA installment: an amount bought at a price.
type Purchase struct {
	Amount decimal.Decimal `json:"amount"`
	Price  decimal.Decimal `json:"price"`
	Shares decimal.Decimal `json:"shares"`
}

// Summary aggregates a sequence of purchases.
type Summary struct {
	Installments  int             `json:"installments"`
	TotalInvested decimal.Decimal `json:"totalInvested"`
	TotalShares   decimal.Decimal `json:"totalShares"`
	AverageCost   decimal.Decimal `json:"averageCost"`
}

// SharesFor returns the share count an amount buys at a price, zero when the
// price is zero.
func SharesFor(amount, price decimal.Decimal) decimal.Decimal {
	return domain.SafeDiv(amount, price)
}

// Summarize totals a purchase history. The average cost is total invested
// over total shares.
func Summarize(purchases []Purchase) Summary {
	invested := lo.Reduce(purchases, func(acc decimal.Decimal, p Purchase, _ int) decimal.Decimal {
		return acc.Add(p.Amount)
	}, decimal.Zero)
	shares := lo.Reduce(purchases, func(acc decimal.Decimal, p Purchase, _ int) decimal.Decimal {
		return acc.Add(p.Shares)
	}, decimal.Zero)

	return Summary{
		Installments:  len(purchases),
		TotalInvested: invested,
		TotalShares:   shares,
		AverageCost:   domain.SafeDiv(invested, shares),
	}
}

// SplitByClassTargets divides a lump sum across the PERCENTAGE class targets,
// each class receiving its share of the combined percentage. SET and OFF
// classes receive nothing.
func SplitByClassTargets(amount decimal.Decimal, targets domain.ClassTargets) map[domain.AssetClass]decimal.Decimal {
	total := decimal.Zero
	for _, class := range domain.AllClasses {
		tgt := targets[class]
		if tgt.TargetMode == domain.ModePercentage && tgt.TargetPercent.IsPositive() {
			total = total.Add(tgt.TargetPercent)
		}
	}

	out := map[domain.AssetClass]decimal.Decimal{}
	if total.IsZero() {
		return out
	}
	for _, class := range domain.AllClasses {
		tgt := targets[class]
		if tgt.TargetMode == domain.ModePercentage && tgt.TargetPercent.IsPositive() {
			out[class] = tgt.TargetPercent.Div(total).Mul(amount)
		}
	}
	return out
}

// PriceSource provides spot prices for tickers.
type PriceSource interface {
	FetchPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error)
}

// Planner builds installments with live or manual prices.
type Planner struct {
	prices PriceSource
}

// NewPlanner creates a Planner. The price source may be nil if every call
// supplies a manual price.
func NewPlanner(prices PriceSource) *Planner {
	return &Planner{prices: prices}
}

// Installment prices one purchase of amount for the given symbol. A positive
// manualPrice skips the price source entirely.
func (p *Planner) Installment(ctx context.Context, symbol string, amount, manualPrice decimal.Decimal) (Purchase, error) {
	price := manualPrice
	if !price.IsPositive() {
		if p.prices == nil {
			return Purchase{}, fmt.Errorf("no price source configured and no manual price for %s", symbol)
		}
		fetched, err := p.prices.FetchPrices(ctx, []string{symbol})
		if err != nil {
			return Purchase{}, fmt.Errorf("fetching price for %s: %w", symbol, err)
		}
		var ok bool
		price, ok = fetched[symbol]
		if !ok || !price.IsPositive() {
			return Purchase{}, fmt.Errorf("no usable price for %s", symbol)
		}
	}

	return Purchase{
		Amount: amount,
		Price:  price,
		Shares: SharesFor(amount, price),
	}, nil
}
