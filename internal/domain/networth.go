package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// NetWorthEntry is one dated net-worth capture. Dates are normalized to
// midnight UTC; at most one entry exists per day.
type NetWorthEntry struct {
	Date         time.Time                      `json:"date"`
	TotalValue   decimal.Decimal                `json:"totalValue"`
	NonCashValue decimal.Decimal                `json:"nonCashValue"`
	ByClass      map[AssetClass]decimal.Decimal `json:"byClass"`
}
