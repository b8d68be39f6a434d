package domain

import "github.com/shopspring/decimal"

// Action is the recommended operation derived from a delta.
type Action string

const (
	// ActionBuy and ActionSell apply to non-cash scopes.
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	// ActionSave (positive cash delta, accumulate cash) and ActionInvest
	// (negative cash delta, cash flows out into other classes) apply to
	// CASH scopes only.
	ActionSave   Action = "SAVE"
	ActionInvest Action = "INVEST"
	// ActionHold means the delta is inside the hold tolerance.
	ActionHold Action = "HOLD"
	// ActionExcluded marks OFF-mode items; their delta is reported as zero.
	ActionExcluded Action = "EXCLUDED"
)

// ActionFor labels a delta for a cash or non-cash scope. Deltas inside the
// hold tolerance map to HOLD.
func ActionFor(delta decimal.Decimal, cash bool) Action {
	if delta.Abs().LessThan(HoldTolerance) {
		return ActionHold
	}
	if cash {
		if delta.IsPositive() {
			return ActionSave
		}
		return ActionInvest
	}
	if delta.IsPositive() {
		return ActionBuy
	}
	return ActionSell
}

// AllocationDelta is the computed per-asset rebalancing row. It is derived
// on every recompute and never persisted.
type AllocationDelta struct {
	AssetID             string          `json:"assetId"`
	AssetName           string          `json:"assetName"`
	AssetClass          AssetClass      `json:"assetClass"`
	CurrentValue        decimal.Decimal `json:"currentValue"`
	CurrentPercent      decimal.Decimal `json:"currentPercent"`
	CurrentPercentClass decimal.Decimal `json:"currentPercentInClass"`
	TargetValue         decimal.Decimal `json:"targetValue"`
	TargetPercent       decimal.Decimal `json:"targetPercent"`
	Delta               decimal.Decimal `json:"delta"`
	DeltaPercent        decimal.Decimal `json:"deltaPercent"`
	Action              Action          `json:"action"`
}

// ClassSummary aggregates one asset class.
type ClassSummary struct {
	AssetClass     AssetClass      `json:"assetClass"`
	TargetMode     TargetMode      `json:"targetMode"`
	TargetPercent  decimal.Decimal `json:"targetPercent"`
	CurrentValue   decimal.Decimal `json:"currentValue"`
	CurrentPercent decimal.Decimal `json:"currentPercent"`
	TargetValue    decimal.Decimal `json:"targetValue"`
	CashAdjustment decimal.Decimal `json:"cashAdjustment"`
	Delta          decimal.Decimal `json:"delta"`
	Action         Action          `json:"action"`
	AssetCount     int             `json:"assetCount"`
}

// PortfolioAllocation is the full derived snapshot: assets, class summaries,
// per-asset deltas and validation results. It is rebuilt from scratch on
// every mutation so deltas can never go stale.
type PortfolioAllocation struct {
	Assets           []Asset           `json:"assets"`
	ClassSummaries   []ClassSummary    `json:"classSummaries"`
	Deltas           []AllocationDelta `json:"deltas"`
	TotalValue       decimal.Decimal   `json:"totalValue"`
	NonCashValue     decimal.Decimal   `json:"nonCashValue"`
	IsValid          bool              `json:"isValid"`
	ValidationErrors []string          `json:"validationErrors,omitempty"`
}
