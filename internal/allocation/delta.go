package allocation

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/folio/internal/domain"
)

// classFigures holds every per-class number the delta computation needs.
// Computed once per recompute and shared by summaries and per-asset deltas.
type classFigures struct {
	current        map[domain.AssetClass]decimal.Decimal
	targetValue    map[domain.AssetClass]decimal.Decimal
	cashAdjustment map[domain.AssetClass]decimal.Decimal
	delta          map[domain.AssetClass]decimal.Decimal
	percentTotal   map[domain.AssetClass]decimal.Decimal // sum of PERCENTAGE asset targets per class
	totalValue     decimal.Decimal
	nonCashValue   decimal.Decimal
}

// classTarget looks up a class target, treating a missing or blank entry as
// OFF so an unconfigured class never contributes a phantom zero target.
func classTarget(targets domain.ClassTargets, class domain.AssetClass) domain.AssetClassTarget {
	tgt, ok := targets[class]
	if !ok || tgt.TargetMode == "" {
		return domain.AssetClassTarget{TargetMode: domain.ModeOff}
	}
	return tgt
}

func computeClassFigures(assets []domain.Asset, targets domain.ClassTargets) classFigures {
	f := classFigures{
		current:        map[domain.AssetClass]decimal.Decimal{},
		targetValue:    map[domain.AssetClass]decimal.Decimal{},
		cashAdjustment: map[domain.AssetClass]decimal.Decimal{},
		delta:          map[domain.AssetClass]decimal.Decimal{},
		percentTotal:   map[domain.AssetClass]decimal.Decimal{},
	}

	for _, class := range domain.AllClasses {
		f.current[class] = decimal.Zero
		f.targetValue[class] = decimal.Zero
		f.cashAdjustment[class] = decimal.Zero
		f.delta[class] = decimal.Zero
		f.percentTotal[class] = decimal.Zero
	}

	// OFF assets contribute to nothing; SET assets feed the class target in
	// SET mode; PERCENTAGE assets feed the class-internal percent total.
	for _, a := range assets {
		if a.TargetMode == domain.ModeOff {
			continue
		}
		f.current[a.AssetClass] = f.current[a.AssetClass].Add(a.CurrentValue)
		if a.IsPercentage() {
			f.percentTotal[a.AssetClass] = f.percentTotal[a.AssetClass].Add(a.TargetPercent)
		}
	}

	for _, class := range domain.AllClasses {
		f.totalValue = f.totalValue.Add(f.current[class])
		if !class.IsCash() {
			f.nonCashValue = f.nonCashValue.Add(f.current[class])
		}
	}

	setTotals := map[domain.AssetClass]decimal.Decimal{}
	for _, a := range assets {
		if a.TargetMode == domain.ModeSet {
			setTotals[a.AssetClass] = setTotals[a.AssetClass].Add(a.TargetValue)
		}
	}

	for _, class := range domain.AllClasses {
		tgt := classTarget(targets, class)
		switch tgt.TargetMode {
		case domain.ModePercentage:
			f.targetValue[class] = domain.ApplyPercent(tgt.TargetPercent, f.nonCashValue)
		case domain.ModeSet:
			f.targetValue[class] = setTotals[class]
		default:
			f.targetValue[class] = decimal.Zero
		}
	}

	// Cash cross-distribution: the cash delta is realized inside the other
	// classes, proportionally to their share of the non-cash PERCENTAGE
	// targets. Negative cash delta means cash flows out (INVEST).
	cashDelta := decimal.Zero
	if classTarget(targets, domain.ClassCash).TargetMode != domain.ModeOff {
		cashDelta = f.targetValue[domain.ClassCash].Sub(f.current[domain.ClassCash])
	}

	nonCashPercentTotal := decimal.Zero
	for _, class := range domain.AllClasses {
		tgt := classTarget(targets, class)
		if class.IsCash() || tgt.TargetMode != domain.ModePercentage || !tgt.TargetPercent.IsPositive() {
			continue
		}
		nonCashPercentTotal = nonCashPercentTotal.Add(tgt.TargetPercent)
	}
	if !nonCashPercentTotal.IsZero() {
		for _, class := range domain.AllClasses {
			tgt := classTarget(targets, class)
			if class.IsCash() || tgt.TargetMode != domain.ModePercentage || !tgt.TargetPercent.IsPositive() {
				continue
			}
			share := tgt.TargetPercent.Div(nonCashPercentTotal)
			f.cashAdjustment[class] = cashDelta.Neg().Mul(share)
		}
	}

	for _, class := range domain.AllClasses {
		if classTarget(targets, class).TargetMode == domain.ModeOff {
			f.delta[class] = decimal.Zero
			continue
		}
		if class.IsCash() {
			f.delta[class] = cashDelta
			continue
		}
		f.delta[class] = f.targetValue[class].Sub(f.current[class]).Add(f.cashAdjustment[class])
	}

	return f
}

// ComputeClassSummaries aggregates each asset class: current and target
// value, the cash adjustment it receives, the resulting delta and action.
// Summaries come back in canonical class order, one per class that has
// assets or a configured target.
func ComputeClassSummaries(assets []domain.Asset, targets domain.ClassTargets) []domain.ClassSummary {
	f := computeClassFigures(assets, targets)

	counts := lo.CountValuesBy(assets, func(a domain.Asset) domain.AssetClass { return a.AssetClass })

	summaries := make([]domain.ClassSummary, 0, len(domain.AllClasses))
	for _, class := range domain.AllClasses {
		_, hasTarget := targets[class]
		if counts[class] == 0 && !hasTarget {
			continue
		}
		tgt := classTarget(targets, class)

		action := domain.ActionFor(f.delta[class], class.IsCash())
		if tgt.TargetMode == domain.ModeOff {
			action = domain.ActionExcluded
		}

		summaries = append(summaries, domain.ClassSummary{
			AssetClass:     class,
			TargetMode:     tgt.TargetMode,
			TargetPercent:  tgt.TargetPercent,
			CurrentValue:   f.current[class],
			CurrentPercent: domain.PercentOf(f.current[class], f.totalValue),
			TargetValue:    f.targetValue[class],
			CashAdjustment: f.cashAdjustment[class],
			Delta:          f.delta[class],
			Action:         action,
			AssetCount:     counts[class],
		})
	}
	return summaries
}

// ComputeDeltas produces one rebalancing row per asset, in input order.
// PERCENTAGE assets split their class delta proportionally to their target
// percent; SET assets use their own absolute target; OFF assets are
// reported EXCLUDED with a zero delta.
func ComputeDeltas(assets []domain.Asset, targets domain.ClassTargets) []domain.AllocationDelta {
	f := computeClassFigures(assets, targets)

	return lo.Map(assets, func(a domain.Asset, _ int) domain.AllocationDelta {
		row := domain.AllocationDelta{
			AssetID:             a.ID,
			AssetName:           a.Name,
			AssetClass:          a.AssetClass,
			CurrentValue:        a.CurrentValue,
			CurrentPercent:      domain.PercentOf(a.CurrentValue, f.totalValue),
			CurrentPercentClass: domain.PercentOf(a.CurrentValue, f.current[a.AssetClass]),
			TargetPercent:       a.TargetPercent,
		}

		switch a.TargetMode {
		case domain.ModeOff:
			row.TargetValue = decimal.Zero
			row.Delta = decimal.Zero
			row.Action = domain.ActionExcluded
		case domain.ModeSet:
			row.TargetValue = a.TargetValue
			row.Delta = a.TargetValue.Sub(a.CurrentValue)
			row.Action = domain.ActionFor(row.Delta, a.AssetClass.IsCash())
		default:
			classPercent := f.percentTotal[a.AssetClass]
			row.Delta = decimal.Zero
			if !classPercent.IsZero() {
				row.Delta = a.TargetPercent.Div(classPercent).Mul(f.delta[a.AssetClass])
			}
			row.TargetValue = a.CurrentValue.Add(row.Delta)
			row.Action = domain.ActionFor(row.Delta, a.AssetClass.IsCash())
		}

		row.DeltaPercent = domain.PercentOf(row.Delta, a.CurrentValue)
		return row
	})
}
