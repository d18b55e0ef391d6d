package calculation

import (
	"fmt"

	"github.com/rgehrsitz/fincast/internal/domain"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WarningScanner looks over a finished series for patterns worth reporting.
// Its messages are appended to the result unchanged.
type WarningScanner interface {
	Scan(states []domain.FinancialState) []string
}

// TrendScanner is the default WarningScanner.
type TrendScanner struct{}

// Scan implements WarningScanner.
func (TrendScanner) Scan(states []domain.FinancialState) []string {
	if len(states) == 0 {
		return nil
	}

	var warnings []string
	first := states[0]
	last := states[len(states)-1]

	cash := make([]float64, len(states))
	flows := make([]float64, len(states))
	for i, s := range states {
		cash[i] = s.Cash.InexactFloat64()
		flows[i] = s.CashFlow.InexactFloat64()
	}

	if last.Cash.IsNegative() {
		warnings = append(warnings, fmt.Sprintf("Cash ends the projection overdrawn at $%s", last.Cash.StringFixed(2)))
	} else if lowest := floats.Min(cash); lowest < 0 {
		warnings = append(warnings, fmt.Sprintf("Cash is overdrawn during the projection, reaching $%s at its lowest", decimal.NewFromFloat(lowest).StringFixed(2)))
	}

	if avg := stat.Mean(flows, nil); avg < 0 {
		warnings = append(warnings, fmt.Sprintf("Average cash flow is negative ($%s per period)", decimal.NewFromFloat(avg).StringFixed(2)))
	}

	if last.Investments.LessThan(first.Investments) {
		warnings = append(warnings, "Investment balance shrinks over the projection")
	}

	if last.RetirementSavings.LessThan(first.RetirementSavings) {
		warnings = append(warnings, "Retirement savings fall over the projection")
	}

	return warnings
}
