package fire

import (
	"github.com/shopspring/decimal"

	"github.com/mtlprog/folio/internal/domain"
)

// maxHorizonYears caps the projection so a portfolio that never reaches the
// target still terminates.
const maxHorizonYears = 100

// defaultWithdrawalRate is the classic 4% safe withdrawal rate.
var defaultWithdrawalRate = decimal.NewFromInt(4)

// Input holds the projection parameters. Rates are percentages (7 means 7%).
type Input struct {
	CurrentValue       decimal.Decimal `json:"currentValue"`
	AnnualContribution decimal.Decimal `json:"annualContribution"`
	AnnualReturn       decimal.Decimal `json:"annualReturn"`
	Inflation          decimal.Decimal `json:"inflation"`
	AnnualExpenses     decimal.Decimal `json:"annualExpenses"`
	WithdrawalRate     decimal.Decimal `json:"withdrawalRate"`
}

// YearRow is one projected year.
type YearRow struct {
	Year         int             `json:"year"`
	StartValue   decimal.Decimal `json:"startValue"`
	Contribution decimal.Decimal `json:"contribution"`
	Growth       decimal.Decimal `json:"growth"`
	EndValue     decimal.Decimal `json:"endValue"`
	RealEndValue decimal.Decimal `json:"realEndValue"`
}

// Projection is the full year-by-year result.
type Projection struct {
	TargetValue decimal.Decimal `json:"targetValue"`
	Years       []YearRow       `json:"years"`
	YearsToFI   int             `json:"yearsToFI"`
	Reached     bool            `json:"reached"`
}

// Project runs the year-by-year simulation until the inflation-adjusted
// portfolio value covers the FI number (annual expenses / withdrawal rate)
// or the horizon runs out. Contributions land at the start of each year and
// compound for that year.
func Project(in Input) Projection {
	rate := in.WithdrawalRate
	if !rate.IsPositive() {
		rate = defaultWithdrawalRate
	}
	target := in.AnnualExpenses.Mul(domain.Hundred).Div(rate)

	out := Projection{TargetValue: target, YearsToFI: -1}

	if in.CurrentValue.GreaterThanOrEqual(target) {
		out.YearsToFI = 0
		out.Reached = true
		return out
	}

	growthFactor := in.AnnualReturn.Div(domain.Hundred)
	inflationFactor := decimal.NewFromInt(1).Add(in.Inflation.Div(domain.Hundred))

	value := in.CurrentValue
	deflator := decimal.NewFromInt(1)

	for year := 1; year <= maxHorizonYears; year++ {
		start := value
		invested := start.Add(in.AnnualContribution)
		growth := invested.Mul(growthFactor)
		value = invested.Add(growth)

		deflator = deflator.Mul(inflationFactor)
		real := domain.SafeDiv(value, deflator)

		out.Years = append(out.Years, YearRow{
			Year:         year,
			StartValue:   start,
			Contribution: in.AnnualContribution,
			Growth:       growth,
			EndValue:     value,
			RealEndValue: real,
		})

		if real.GreaterThanOrEqual(target) {
			out.YearsToFI = year
			out.Reached = true
			break
		}
	}

	return out
}
