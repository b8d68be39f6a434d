package allocation

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/folio/internal/domain"
)

// This file holds the mutation entry points. Each one returns a complete new
// collection so the caller can apply the whole change as a single atomic
// replace; nothing here mutates its input.

func percentItems(assets []domain.Asset, class domain.AssetClass) []Item {
	return lo.FilterMap(assets, func(a domain.Asset, _ int) (Item, bool) {
		if a.AssetClass != class || !a.IsPercentage() {
			return Item{}, false
		}
		return Item{ID: a.ID, Percent: a.TargetPercent, Basis: a.CurrentValue}, true
	})
}

func applyItems(assets []domain.Asset, items []Item) []domain.Asset {
	byID := lo.SliceToMap(items, func(it Item) (string, decimal.Decimal) {
		return it.ID, it.Percent
	})
	out := make([]domain.Asset, len(assets))
	copy(out, assets)
	for i := range out {
		if p, ok := byID[out[i].ID]; ok {
			out[i].TargetPercent = p
		}
	}
	return out
}

// EditAssetTarget sets the asset's target percent and redistributes the
// remaining percentage across its PERCENTAGE-mode class siblings,
// proportionally to their current monetary value. SET and OFF siblings are
// never touched.
func EditAssetTarget(assets []domain.Asset, editedID string, newPercent decimal.Decimal) []domain.Asset {
	edited, ok := lo.Find(assets, func(a domain.Asset) bool { return a.ID == editedID })
	if !ok {
		out := make([]domain.Asset, len(assets))
		copy(out, assets)
		return out
	}

	items := percentItems(assets, edited.AssetClass)
	if !edited.IsPercentage() {
		// Editing a percent on a SET/OFF asset switches it to PERCENTAGE.
		items = append(items, Item{ID: edited.ID, Percent: edited.TargetPercent, Basis: edited.CurrentValue})
	}

	out := applyItems(assets, RedistributeEdit(items, editedID, newPercent))
	for i := range out {
		if out[i].ID == editedID {
			out[i].TargetMode = domain.ModePercentage
			out[i].TargetValue = decimal.Zero
		}
	}
	return out
}

// AddAsset appends the asset, shrinking existing PERCENTAGE targets in its
// class so the class still sums to 100. Non-PERCENTAGE assets are appended
// without redistribution.
func AddAsset(assets []domain.Asset, newAsset domain.Asset) []domain.Asset {
	out := make([]domain.Asset, len(assets))
	copy(out, assets)

	if !newAsset.IsPercentage() {
		return append(out, newAsset)
	}
	items := percentItems(assets, newAsset.AssetClass)
	out = applyItems(out, RedistributeAdd(items, newAsset.TargetPercent))
	newAsset.TargetPercent = domain.ClampZero(newAsset.TargetPercent)
	return append(out, newAsset)
}

// RemoveAsset deletes the asset and hands its freed percentage to the
// surviving PERCENTAGE assets of the same class, each in proportion to its
// own target percent. Removing a SET/OFF asset redistributes nothing.
func RemoveAsset(assets []domain.Asset, deletedID string) []domain.Asset {
	deleted, ok := lo.Find(assets, func(a domain.Asset) bool { return a.ID == deletedID })
	rest := lo.Filter(assets, func(a domain.Asset, _ int) bool { return a.ID != deletedID })
	out := make([]domain.Asset, len(rest))
	copy(out, rest)

	if !ok || !deleted.IsPercentage() {
		return out
	}
	items := percentItems(assets, deleted.AssetClass)
	return applyItems(out, RedistributeDelete(items, deletedID))
}

// EditClassTarget sets one class target percent and redistributes across the
// other PERCENTAGE-mode classes, proportionally to their current target
// percent. SET and OFF classes are never altered.
func EditClassTarget(targets domain.ClassTargets, edited domain.AssetClass, newPercent decimal.Decimal) domain.ClassTargets {
	items := []Item{}
	for _, class := range domain.AllClasses {
		tgt, ok := targets[class]
		if class == edited {
			items = append(items, Item{ID: string(class), Percent: tgt.TargetPercent, Basis: tgt.TargetPercent})
			continue
		}
		if ok && tgt.TargetMode == domain.ModePercentage {
			items = append(items, Item{ID: string(class), Percent: tgt.TargetPercent, Basis: tgt.TargetPercent})
		}
	}

	redistributed := RedistributeEdit(items, string(edited), newPercent)

	out := make(domain.ClassTargets, len(targets))
	for class, tgt := range targets {
		out[class] = tgt
	}
	for _, it := range redistributed {
		class := domain.AssetClass(it.ID)
		tgt := out[class]
		if class != edited && tgt.TargetMode != domain.ModePercentage {
			continue
		}
		tgt.TargetMode = domain.ModePercentage
		tgt.TargetPercent = it.Percent
		out[class] = tgt
	}
	return out
}
