package allocation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/folio/internal/domain"
)

// ComputeAllocation builds the full portfolio snapshot from the current
// asset list and class targets. The result is always a freshly constructed
// value; invariant violations are collected as messages, never raised.
func ComputeAllocation(assets []domain.Asset, targets domain.ClassTargets) domain.PortfolioAllocation {
	f := computeClassFigures(assets, targets)

	errs := validate(assets, targets, f)

	out := make([]domain.Asset, len(assets))
	copy(out, assets)

	return domain.PortfolioAllocation{
		Assets:           out,
		ClassSummaries:   ComputeClassSummaries(assets, targets),
		Deltas:           ComputeDeltas(assets, targets),
		TotalValue:       f.totalValue,
		NonCashValue:     f.nonCashValue,
		IsValid:          len(errs) == 0,
		ValidationErrors: errs,
	}
}

func validate(assets []domain.Asset, targets domain.ClassTargets, f classFigures) []string {
	var errs []string

	for _, class := range domain.AllClasses {
		hasPercentage := false
		for _, a := range assets {
			if a.AssetClass == class && a.IsPercentage() {
				hasPercentage = true
				break
			}
		}
		if hasPercentage && !domain.SumsToHundred(f.percentTotal[class]) {
			errs = append(errs, fmt.Sprintf("%s asset targets sum to %s%%, expected 100%%",
				class, f.percentTotal[class].Round(2)))
		}
	}

	classPercentTotal := decimal.Zero
	hasPercentageClass := false
	for _, class := range domain.AllClasses {
		tgt := classTarget(targets, class)
		if tgt.TargetMode != domain.ModePercentage {
			continue
		}
		hasPercentageClass = true
		classPercentTotal = classPercentTotal.Add(tgt.TargetPercent)
	}
	if hasPercentageClass && !domain.SumsToHundred(classPercentTotal) {
		errs = append(errs, fmt.Sprintf("class targets sum to %s%%, expected 100%%",
			classPercentTotal.Round(2)))
	}

	for _, a := range assets {
		if a.CurrentValue.IsNegative() {
			errs = append(errs, fmt.Sprintf("asset %s (%s) has negative current value %s",
				a.Name, a.ID, a.CurrentValue))
		}
		if !a.AssetClass.Valid() {
			errs = append(errs, fmt.Sprintf("asset %s (%s) has unknown asset class %q",
				a.Name, a.ID, a.AssetClass))
		}
	}

	return errs
}
