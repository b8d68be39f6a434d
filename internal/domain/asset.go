package domain

import "github.com/shopspring/decimal"

// AssetClass is the closed set of allocation categories.
type AssetClass string

const (
	ClassStocks     AssetClass = "STOCKS"
	ClassBonds      AssetClass = "BONDS"
	ClassCash       AssetClass = "CASH"
	ClassCrypto     AssetClass = "CRYPTO"
	ClassRealEstate AssetClass = "REAL_ESTATE"
)

// AllClasses lists every asset class in canonical display order.
var AllClasses = []AssetClass{ClassStocks, ClassBonds, ClassCash, ClassCrypto, ClassRealEstate}

// IsCash returns true for the CASH class, the only class whose delta is
// redistributed across the others instead of acted on directly.
func (c AssetClass) IsCash() bool {
	return c == ClassCash
}

// Valid reports whether c is one of the five known classes.
func (c AssetClass) Valid() bool {
	switch c {
	case ClassStocks, ClassBonds, ClassCash, ClassCrypto, ClassRealEstate:
		return true
	}
	return false
}

// SubAssetType is a finer classification carried for display and validation.
// It never influences the allocation math.
type SubAssetType string

const (
	SubTypeETF             SubAssetType = "ETF"
	SubTypeSingleStock     SubAssetType = "SINGLE_STOCK"
	SubTypeBondFund        SubAssetType = "BOND_FUND"
	SubTypeSavingsAccount  SubAssetType = "SAVINGS_ACCOUNT"
	SubTypeCheckingAccount SubAssetType = "CHECKING_ACCOUNT"
	SubTypeCoin            SubAssetType = "COIN"
	SubTypeProperty        SubAssetType = "PROPERTY"
	SubTypeREIT            SubAssetType = "REIT"
	SubTypeOther           SubAssetType = "OTHER"
)

// TargetMode describes how a target is expressed for an asset or a class.
type TargetMode string

const (
	// ModePercentage participates in proportional redistribution; the
	// target is a percent of its scope (class for assets, non-cash
	// portfolio for classes).
	ModePercentage TargetMode = "PERCENTAGE"
	// ModeSet carries an absolute target value and is excluded from the
	// 100% invariant.
	ModeSet TargetMode = "SET"
	// ModeOff excludes the item from targets entirely. It still counts
	// toward current totals.
	ModeOff TargetMode = "OFF"
)

// Asset is a single holding in the portfolio.
//
// TargetPercent is meaningful only in PERCENTAGE mode and is relative to the
// asset's class, not the whole portfolio. TargetValue is meaningful only in
// SET mode. The metadata fields (Ticker through InstitutionCountry) pass
// through the engine untouched.
type Asset struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	AssetClass    AssetClass      `json:"assetClass"`
	SubAssetType  SubAssetType    `json:"subAssetType,omitempty"`
	CurrentValue  decimal.Decimal `json:"currentValue"`
	TargetMode    TargetMode      `json:"targetMode"`
	TargetPercent decimal.Decimal `json:"targetPercent"`
	TargetValue   decimal.Decimal `json:"targetValue"`

	Ticker             string          `json:"ticker,omitempty"`
	ISIN               string          `json:"isin,omitempty"`
	Shares             decimal.Decimal `json:"shares"`
	PricePerShare      decimal.Decimal `json:"pricePerShare"`
	OriginalCurrency   string          `json:"originalCurrency,omitempty"`
	Institution        string          `json:"institution,omitempty"`
	InstitutionCountry string          `json:"institutionCountry,omitempty"`
}

// IsPercentage reports whether the asset participates in percentage
// redistribution.
func (a Asset) IsPercentage() bool { return a.TargetMode == ModePercentage }

// AssetClassTarget is the per-class target configuration, independent of the
// individual assets in the class. In PERCENTAGE mode TargetPercent is
// relative to the non-cash portfolio value.
type AssetClassTarget struct {
	TargetMode    TargetMode      `json:"targetMode"`
	TargetPercent decimal.Decimal `json:"targetPercent"`
}

// ClassTargets maps classes to their target configuration.
type ClassTargets map[AssetClass]AssetClassTarget
