package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestActionFor(t *testing.T) {
	tests := []struct {
		name  string
		delta string
		cash  bool
		want  Action
	}{
		{"non-cash positive", "500", false, ActionBuy},
		{"non-cash negative", "-500", false, ActionSell},
		{"cash positive", "500", true, ActionSave},
		{"cash negative", "-500", true, ActionInvest},
		{"zero", "0", false, ActionHold},
		{"inside hold band", "0.005", false, ActionHold},
		{"inside hold band negative cash", "-0.009", true, ActionHold},
		{"just outside hold band", "0.02", false, ActionBuy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := decimal.NewFromString(tt.delta)
			if got := ActionFor(d, tt.cash); got != tt.want {
				t.Errorf("ActionFor(%s, cash=%v) = %s, want %s", tt.delta, tt.cash, got, tt.want)
			}
		})
	}
}

func TestAssetClassValid(t *testing.T) {
	for _, c := range AllClasses {
		if !c.Valid() {
			t.Errorf("class %s should be valid", c)
		}
	}
	if AssetClass("COMMODITIES").Valid() {
		t.Error("unknown class should not be valid")
	}
	if !ClassCash.IsCash() || ClassStocks.IsCash() {
		t.Error("IsCash misclassifies")
	}
}
