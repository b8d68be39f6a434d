package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mtlprog/folio/internal/domain"
)

func TestXLSXWriterWrite(t *testing.T) {
	alloc := domain.PortfolioAllocation{
		Deltas: []domain.AllocationDelta{
			{AssetName: "VWCE", AssetClass: domain.ClassStocks,
				CurrentValue: dec("25000"), TargetValue: dec("28000"),
				Delta: dec("3000"), Action: domain.ActionBuy},
		},
		ClassSummaries: []domain.ClassSummary{
			{AssetClass: domain.ClassStocks, TargetMode: domain.ModePercentage,
				TargetPercent: dec("100"), CurrentValue: dec("25000"),
				TargetValue: dec("28000"), Delta: dec("3000"), Action: domain.ActionBuy},
		},
	}
	history := []domain.NetWorthEntry{
		{Date: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), TotalValue: dec("25000")},
	}

	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := NewXLSXWriter(path).Write(alloc, history); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if got, _ := f.GetCellValue("Allocation", "A2"); got != "VWCE" {
		t.Errorf("Allocation!A2 = %q, want VWCE", got)
	}
	if got, _ := f.GetCellValue("Allocation", "H2"); got != "BUY" {
		t.Errorf("Allocation!H2 = %q, want BUY", got)
	}
	if got, _ := f.GetCellValue("Classes", "A2"); got != "STOCKS" {
		t.Errorf("Classes!A2 = %q, want STOCKS", got)
	}
	if got, _ := f.GetCellValue("Net Worth", "A2"); got != "2026-08-01" {
		t.Errorf("Net Worth!A2 = %q, want 2026-08-01", got)
	}
}
