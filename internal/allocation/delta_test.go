package allocation

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/folio/internal/domain"
)

func summaryByClass(summaries []domain.ClassSummary) map[domain.AssetClass]domain.ClassSummary {
	out := make(map[domain.AssetClass]domain.ClassSummary, len(summaries))
	for _, s := range summaries {
		out[s.AssetClass] = s
	}
	return out
}

func deltaByID(deltas []domain.AllocationDelta) map[string]domain.AllocationDelta {
	out := make(map[string]domain.AllocationDelta, len(deltas))
	for _, d := range deltas {
		out[d.AssetID] = d
	}
	return out
}

// cashScenario: stocks hold 35000 against a 0% target, bonds hold nothing
// against a 100% target, cash holds 10000 against a SET target of 5000.
func cashScenario() ([]domain.Asset, domain.ClassTargets) {
	assets := []domain.Asset{
		{ID: "stk", Name: "World ETF", AssetClass: domain.ClassStocks,
			CurrentValue: dec("35000"), TargetMode: domain.ModePercentage, TargetPercent: dec("100")},
		{ID: "bnd", Name: "Agg Bonds", AssetClass: domain.ClassBonds,
			CurrentValue: decimal.Zero, TargetMode: domain.ModePercentage, TargetPercent: dec("100")},
		{ID: "cash", Name: "Savings", AssetClass: domain.ClassCash, SubAssetType: domain.SubTypeSavingsAccount,
			CurrentValue: dec("10000"), TargetMode: domain.ModeSet, TargetValue: dec("5000")},
	}
	targets := domain.ClassTargets{
		domain.ClassStocks: {TargetMode: domain.ModePercentage, TargetPercent: decimal.Zero},
		domain.ClassBonds:  {TargetMode: domain.ModePercentage, TargetPercent: dec("100")},
		domain.ClassCash:   {TargetMode: domain.ModeSet},
	}
	return assets, targets
}

func TestComputeClassSummariesCashCrossDistribution(t *testing.T) {
	assets, targets := cashScenario()
	got := summaryByClass(ComputeClassSummaries(assets, targets))

	cash := got[domain.ClassCash]
	if !cash.Delta.Equal(dec("-5000")) {
		t.Errorf("cash delta = %s, want -5000", cash.Delta)
	}
	if cash.Action != domain.ActionInvest {
		t.Errorf("cash action = %s, want INVEST", cash.Action)
	}

	stocks := got[domain.ClassStocks]
	if !stocks.Delta.Equal(dec("-35000")) {
		t.Errorf("stocks delta = %s, want -35000", stocks.Delta)
	}
	if stocks.Action != domain.ActionSell {
		t.Errorf("stocks action = %s, want SELL", stocks.Action)
	}
	if !stocks.CashAdjustment.IsZero() {
		t.Errorf("stocks cash adjustment = %s, want 0 for a 0%% target", stocks.CashAdjustment)
	}

	bonds := got[domain.ClassBonds]
	if !bonds.Delta.Equal(dec("40000")) {
		t.Errorf("bonds delta = %s, want 40000 (35000 rebalance gap + 5000 cash)", bonds.Delta)
	}
	if !bonds.CashAdjustment.Equal(dec("5000")) {
		t.Errorf("bonds cash adjustment = %s, want 5000", bonds.CashAdjustment)
	}
	if bonds.Action != domain.ActionBuy {
		t.Errorf("bonds action = %s, want BUY", bonds.Action)
	}
}

func TestComputeClassSummariesSaveDirection(t *testing.T) {
	assets := []domain.Asset{
		{ID: "stk", AssetClass: domain.ClassStocks, CurrentValue: dec("20000"),
			TargetMode: domain.ModePercentage, TargetPercent: dec("100")},
		{ID: "cash", AssetClass: domain.ClassCash, CurrentValue: dec("1000"),
			TargetMode: domain.ModeSet, TargetValue: dec("6000")},
	}
	targets := domain.ClassTargets{
		domain.ClassStocks: {TargetMode: domain.ModePercentage, TargetPercent: dec("100")},
		domain.ClassCash:   {TargetMode: domain.ModeSet},
	}

	got := summaryByClass(ComputeClassSummaries(assets, targets))

	cash := got[domain.ClassCash]
	if !cash.Delta.Equal(dec("5000")) || cash.Action != domain.ActionSave {
		t.Errorf("cash = %s/%s, want 5000/SAVE", cash.Delta, cash.Action)
	}

	// The 5000 to be saved is sold out of stocks: target 20000, adjustment -5000.
	stocks := got[domain.ClassStocks]
	if !stocks.CashAdjustment.Equal(dec("-5000")) {
		t.Errorf("stocks cash adjustment = %s, want -5000", stocks.CashAdjustment)
	}
	if !stocks.Delta.Equal(dec("-5000")) {
		t.Errorf("stocks delta = %s, want -5000", stocks.Delta)
	}
}

func TestComputeClassSummariesOffClassExcluded(t *testing.T) {
	assets := []domain.Asset{
		{ID: "re", AssetClass: domain.ClassRealEstate, CurrentValue: dec("250000"),
			TargetMode: domain.ModeOff},
		{ID: "stk", AssetClass: domain.ClassStocks, CurrentValue: dec("10000"),
			TargetMode: domain.ModePercentage, TargetPercent: dec("100")},
	}
	targets := domain.ClassTargets{
		domain.ClassRealEstate: {TargetMode: domain.ModeOff},
		domain.ClassStocks:     {TargetMode: domain.ModePercentage, TargetPercent: dec("100")},
	}

	got := summaryByClass(ComputeClassSummaries(assets, targets))

	re := got[domain.ClassRealEstate]
	if re.Action != domain.ActionExcluded {
		t.Errorf("real estate action = %s, want EXCLUDED", re.Action)
	}
	if !re.Delta.IsZero() {
		t.Errorf("real estate delta = %s, want 0", re.Delta)
	}
	// The OFF asset contributes nothing to class current totals.
	if !re.CurrentValue.IsZero() {
		t.Errorf("real estate current = %s, want 0 (only OFF assets present)", re.CurrentValue)
	}
}

func TestComputeDeltasProportionalSplitWithinClass(t *testing.T) {
	assets := []domain.Asset{
		{ID: "spy", AssetClass: domain.ClassStocks, CurrentValue: dec("6000"),
			TargetMode: domain.ModePercentage, TargetPercent: dec("60")},
		{ID: "vxus", AssetClass: domain.ClassStocks, CurrentValue: dec("2000"),
			TargetMode: domain.ModePercentage, TargetPercent: dec("40")},
		{ID: "bnd", AssetClass: domain.ClassBonds, CurrentValue: dec("2000"),
			TargetMode: domain.ModePercentage, TargetPercent: dec("100")},
	}
	targets := domain.ClassTargets{
		domain.ClassStocks: {TargetMode: domain.ModePercentage, TargetPercent: dec("50")},
		domain.ClassBonds:  {TargetMode: domain.ModePercentage, TargetPercent: dec("50")},
	}

	got := deltaByID(ComputeDeltas(assets, targets))

	// non-cash value 10000; stocks target 5000, current 8000, delta -3000
	// split 60/40 across the two stock holdings.
	if !got["spy"].Delta.Equal(dec("-1800")) {
		t.Errorf("spy delta = %s, want -1800", got["spy"].Delta)
	}
	if !got["vxus"].Delta.Equal(dec("-1200")) {
		t.Errorf("vxus delta = %s, want -1200", got["vxus"].Delta)
	}
	if got["spy"].Action != domain.ActionSell {
		t.Errorf("spy action = %s, want SELL", got["spy"].Action)
	}

	// delta = targetValue - currentValue must hold on every row
	for id, row := range got {
		if !row.TargetValue.Sub(row.CurrentValue).Equal(row.Delta) {
			t.Errorf("%s: delta %s != targetValue-currentValue %s",
				id, row.Delta, row.TargetValue.Sub(row.CurrentValue))
		}
	}

	if !got["bnd"].Delta.Equal(dec("3000")) {
		t.Errorf("bnd delta = %s, want 3000", got["bnd"].Delta)
	}
}

func TestComputeDeltasSetAndOffAssets(t *testing.T) {
	assets := []domain.Asset{
		{ID: "pinned", AssetClass: domain.ClassStocks, CurrentValue: dec("5000"),
			TargetMode: domain.ModeSet, TargetValue: dec("8000")},
		{ID: "ignored", AssetClass: domain.ClassStocks, CurrentValue: dec("999"),
			TargetMode: domain.ModeOff},
	}
	targets := domain.ClassTargets{
		domain.ClassStocks: {TargetMode: domain.ModeSet},
	}

	got := deltaByID(ComputeDeltas(assets, targets))

	pinned := got["pinned"]
	if !pinned.Delta.Equal(dec("3000")) || pinned.Action != domain.ActionBuy {
		t.Errorf("SET asset = %s/%s, want 3000/BUY", pinned.Delta, pinned.Action)
	}

	off := got["ignored"]
	if off.Action != domain.ActionExcluded {
		t.Errorf("OFF asset action = %s, want EXCLUDED", off.Action)
	}
	if !off.Delta.IsZero() || !off.TargetValue.IsZero() {
		t.Errorf("OFF asset delta/target = %s/%s, want 0/0", off.Delta, off.TargetValue)
	}
}

func TestComputeDeltasHoldWithinTolerance(t *testing.T) {
	assets := []domain.Asset{
		{ID: "stk", AssetClass: domain.ClassStocks, CurrentValue: dec("10000"),
			TargetMode: domain.ModePercentage, TargetPercent: dec("100")},
	}
	targets := domain.ClassTargets{
		domain.ClassStocks: {TargetMode: domain.ModePercentage, TargetPercent: dec("100")},
	}

	got := deltaByID(ComputeDeltas(assets, targets))
	if got["stk"].Action != domain.ActionHold {
		t.Errorf("balanced asset action = %s, want HOLD", got["stk"].Action)
	}
	if !got["stk"].Delta.IsZero() {
		t.Errorf("balanced asset delta = %s, want 0", got["stk"].Delta)
	}
}

func TestComputeDeltasZeroClassPercentNoDivision(t *testing.T) {
	// A PERCENTAGE asset whose class percent total is zero must not divide
	// by zero; it simply gets no share.
	assets := []domain.Asset{
		{ID: "stk", AssetClass: domain.ClassStocks, CurrentValue: dec("5000"),
			TargetMode: domain.ModePercentage, TargetPercent: decimal.Zero},
	}
	targets := domain.ClassTargets{
		domain.ClassStocks: {TargetMode: domain.ModePercentage, TargetPercent: dec("100")},
	}

	got := deltaByID(ComputeDeltas(assets, targets))
	if !got["stk"].Delta.IsZero() {
		t.Errorf("zero-percent-total class distributed %s", got["stk"].Delta)
	}
}
