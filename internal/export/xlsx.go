package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/mtlprog/folio/internal/domain"
)

// SnapshotWriter writes a full allocation snapshot to some destination.
type SnapshotWriter interface {
	Write(alloc domain.PortfolioAllocation, history []domain.NetWorthEntry) error
}

// XLSXWriter writes the snapshot as an Excel workbook with Allocation,
// Classes and Net Worth sheets.
type XLSXWriter struct {
	Path string
}

// NewXLSXWriter creates a writer targeting the given file path.
func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{Path: path}
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

// Write builds and saves the workbook. Decimal values are written as floats;
// the workbook is a report, not the system of record.
func (w *XLSXWriter) Write(alloc domain.PortfolioAllocation, history []domain.NetWorthEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	const allocationSheet = "Allocation"
	if err := f.SetSheetName("Sheet1", allocationSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	header := []any{"Asset", "Class", "Current Value", "Current %", "Target Value", "Target %", "Delta", "Action"}
	if err := setRow(f, allocationSheet, 1, header); err != nil {
		return fmt.Errorf("writing allocation header: %w", err)
	}
	for i, d := range alloc.Deltas {
		row := []any{
			d.AssetName,
			string(d.AssetClass),
			d.CurrentValue.InexactFloat64(),
			d.CurrentPercent.InexactFloat64(),
			d.TargetValue.InexactFloat64(),
			d.TargetPercent.InexactFloat64(),
			d.Delta.InexactFloat64(),
			string(d.Action),
		}
		if err := setRow(f, allocationSheet, i+2, row); err != nil {
			return fmt.Errorf("writing allocation row %d: %w", i+1, err)
		}
	}

	const classSheet = "Classes"
	if _, err := f.NewSheet(classSheet); err != nil {
		return fmt.Errorf("creating class sheet: %w", err)
	}
	classHeader := []any{"Class", "Mode", "Target %", "Current Value", "Target Value", "Cash Adjustment", "Delta", "Action"}
	if err := setRow(f, classSheet, 1, classHeader); err != nil {
		return fmt.Errorf("writing class header: %w", err)
	}
	for i, cs := range alloc.ClassSummaries {
		row := []any{
			string(cs.AssetClass),
			string(cs.TargetMode),
			cs.TargetPercent.InexactFloat64(),
			cs.CurrentValue.InexactFloat64(),
			cs.TargetValue.InexactFloat64(),
			cs.CashAdjustment.InexactFloat64(),
			cs.Delta.InexactFloat64(),
			string(cs.Action),
		}
		if err := setRow(f, classSheet, i+2, row); err != nil {
			return fmt.Errorf("writing class row %d: %w", i+1, err)
		}
	}

	const netWorthSheet = "Net Worth"
	if _, err := f.NewSheet(netWorthSheet); err != nil {
		return fmt.Errorf("creating net-worth sheet: %w", err)
	}
	if err := setRow(f, netWorthSheet, 1, []any{"Date", "Total", "Non-Cash"}); err != nil {
		return fmt.Errorf("writing net-worth header: %w", err)
	}
	for i, entry := range history {
		row := []any{
			entry.Date.Format("2006-01-02"),
			entry.TotalValue.InexactFloat64(),
			entry.NonCashValue.InexactFloat64(),
		}
		if err := setRow(f, netWorthSheet, i+2, row); err != nil {
			return fmt.Errorf("writing net-worth row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(w.Path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}
