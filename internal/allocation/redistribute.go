package allocation

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/folio/internal/domain"
)

// Item is one PERCENTAGE-mode participant in a redistribution scope.
// Percent is its current target percent; Basis is the value proportional
// redistribution weights by. Asset-level scopes use the asset's current
// monetary value as Basis so redistribution tracks real money; class-level
// scopes use the class's current target percent.
type Item struct {
	ID      string
	Percent decimal.Decimal
	Basis   decimal.Decimal
}

func sumPercent(items []Item) decimal.Decimal {
	return lo.Reduce(items, func(acc decimal.Decimal, it Item, _ int) decimal.Decimal {
		return acc.Add(it.Percent)
	}, decimal.Zero)
}

// RedistributeEdit sets the edited item's percent to newPercent and rescales
// every other item so the scope still sums to 100. Others receive the
// remaining percentage proportionally to their Basis; a zero basis total
// falls back to an equal split. Residual drift beyond the tolerance is
// absorbed by the item with the smallest Basis. The input slice is never
// mutated.
func RedistributeEdit(items []Item, editedID string, newPercent decimal.Decimal) []Item {
	v := domain.ClampZero(newPercent)
	out := make([]Item, len(items))
	copy(out, items)

	edited := -1
	for i := range out {
		if out[i].ID == editedID {
			edited = i
			break
		}
	}
	if edited < 0 {
		return out
	}
	out[edited].Percent = v

	others := lo.Filter(lo.Range(len(out)), func(i int, _ int) bool { return i != edited })
	if len(others) == 0 {
		return out
	}

	remaining := domain.Hundred.Sub(v)
	basisTotal := lo.Reduce(others, func(acc decimal.Decimal, i int, _ int) decimal.Decimal {
		return acc.Add(out[i].Basis)
	}, decimal.Zero)

	if basisTotal.IsZero() {
		share := remaining.Div(decimal.NewFromInt(int64(len(others))))
		for _, i := range others {
			out[i].Percent = domain.ClampZero(share)
		}
	} else {
		for _, i := range others {
			out[i].Percent = domain.ClampZero(out[i].Basis.Div(basisTotal).Mul(remaining))
		}
	}

	// Absorb float drift into the least economically significant item.
	calculated := v
	for _, i := range others {
		calculated = calculated.Add(out[i].Percent)
	}
	if calculated.Sub(domain.Hundred).Abs().GreaterThan(domain.DriftTolerance) {
		smallest := others[0]
		for _, i := range others[1:] {
			if out[i].Basis.LessThan(out[smallest].Basis) {
				smallest = i
			}
		}
		out[smallest].Percent = domain.ClampZero(
			out[smallest].Percent.Add(domain.Hundred.Sub(calculated)))
	}

	return out
}

// RedistributeAdd shrinks every existing item by a common factor so that the
// scope sums to 100 after an item with newPercent joins. With no existing
// items, or an existing total of zero, nothing is rescaled. The returned
// slice holds only the rescaled existing items; the caller appends the new
// one.
func RedistributeAdd(items []Item, newPercent decimal.Decimal) []Item {
	out := make([]Item, len(items))
	copy(out, items)

	existingTotal := sumPercent(out)
	if len(out) == 0 || existingTotal.IsZero() {
		return out
	}

	p := domain.ClampZero(newPercent)
	factor := domain.Hundred.Sub(p).Div(existingTotal)
	for i := range out {
		out[i].Percent = domain.ClampZero(out[i].Percent.Mul(factor))
	}
	return out
}

// RedistributeDelete removes the item and grows each survivor by its
// proportional share of the freed percentage. A zero remaining total falls
// back to an equal split of the freed percentage.
func RedistributeDelete(items []Item, deletedID string) []Item {
	deleted, ok := lo.Find(items, func(it Item) bool { return it.ID == deletedID })
	remaining := lo.Filter(items, func(it Item, _ int) bool { return it.ID != deletedID })
	out := make([]Item, len(remaining))
	copy(out, remaining)

	if !ok || len(out) == 0 {
		return out
	}

	d := deleted.Percent
	remainingTotal := sumPercent(out)
	if remainingTotal.IsZero() {
		share := d.Div(decimal.NewFromInt(int64(len(out))))
		for i := range out {
			out[i].Percent = out[i].Percent.Add(share)
		}
		return out
	}
	for i := range out {
		out[i].Percent = out[i].Percent.Add(out[i].Percent.Div(remainingTotal).Mul(d))
	}
	return out
}
