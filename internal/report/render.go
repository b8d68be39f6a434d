package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/folio/internal/domain"
	"github.com/mtlprog/folio/internal/fire"
)

// Renderer writes plain-text reports to an output stream.
type Renderer struct {
	out io.Writer
	fmt *Formatter
}

func NewRenderer(out io.Writer, currency string) *Renderer {
	return &Renderer{out: out, fmt: NewFormatter(currency)}
}

// Allocation prints the class summary table followed by the per-asset delta
// table and any validation warnings.
func (r *Renderer) Allocation(alloc domain.PortfolioAllocation) {
	fmt.Fprintf(r.out, "Total value: %s (excl. cash: %s)\n\n",
		r.fmt.Format(alloc.TotalValue), r.fmt.Format(alloc.NonCashValue))

	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CLASS\tCURRENT\tTARGET\tADJUSTMENT\tDELTA\tACTION")
	for _, cs := range alloc.ClassSummaries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			cs.AssetClass,
			r.fmt.Format(cs.CurrentValue),
			r.fmt.Format(cs.TargetValue),
			r.fmt.SignedFormat(cs.CashAdjustment),
			r.fmt.SignedFormat(cs.Delta),
			cs.Action)
	}
	w.Flush()

	fmt.Fprintln(r.out)
	w = tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ASSET\tCLASS\tCURRENT\tTARGET\tDELTA\tDELTA %\tACTION")
	for _, d := range alloc.Deltas {
		name := d.AssetName
		if name == "" {
			name = d.AssetID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			name,
			d.AssetClass,
			r.fmt.Format(d.CurrentValue),
			r.fmt.Format(d.TargetValue),
			r.fmt.SignedFormat(d.Delta),
			Percent(d.DeltaPercent),
			d.Action)
	}
	w.Flush()

	if !alloc.IsValid {
		fmt.Fprintln(r.out)
		for _, msg := range alloc.ValidationErrors {
			fmt.Fprintf(r.out, "warning: %s\n", msg)
		}
	}
}

// Projection prints the FIRE target and the year-by-year growth table.
func (r *Renderer) Projection(p fire.Projection) {
	fmt.Fprintf(r.out, "FIRE target: %s\n", r.fmt.Format(p.TargetValue))
	if p.Reached {
		fmt.Fprintf(r.out, "Reached in %d years\n\n", p.YearsToFI)
	} else {
		fmt.Fprintf(r.out, "Not reached within %d years\n\n", len(p.Years))
	}

	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "YEAR\tCONTRIBUTION\tGROWTH\tEND VALUE\tREAL VALUE")
	for _, y := range p.Years {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			y.Year,
			r.fmt.Format(y.Contribution),
			r.fmt.Format(y.Growth),
			r.fmt.Format(y.EndValue),
			r.fmt.Format(y.RealEndValue))
	}
	w.Flush()
}

// History prints net worth entries oldest first with the change column.
func (r *Renderer) History(entries []domain.NetWorthEntry) {
	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTOTAL\tEXCL. CASH\tCHANGE")
	for i, e := range entries {
		change := "-"
		if i > 0 {
			change = r.fmt.SignedFormat(e.TotalValue.Sub(entries[i-1].TotalValue))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.Date.Format("2006-01-02"),
			r.fmt.Format(e.TotalValue),
			r.fmt.Format(e.NonCashValue),
			change)
	}
	w.Flush()
}

// Change prints the movement between the two most recent entries.
func (r *Renderer) Change(delta, percent decimal.Decimal, ok bool) {
	if !ok {
		fmt.Fprintln(r.out, "no previous entry to compare against")
		return
	}
	fmt.Fprintf(r.out, "change since last entry: %s (%s)\n",
		r.fmt.SignedFormat(delta), Percent(percent))
}
