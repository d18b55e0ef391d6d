package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rgehrsitz/fincast/internal/domain"
	"github.com/shopspring/decimal"
)

// ConsoleFormatter renders a styled report: headline figures, one row per
// calendar year, transitions and warnings.
type ConsoleFormatter struct{}

func (ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(result *domain.EnhancedSimulationResult) ([]byte, error) {
	var buf bytes.Buffer
	s := Summarize(&result.SimulationResult)

	fmt.Fprintln(&buf, TitleStyle.Render("HOUSEHOLD FINANCIAL PROJECTION"))
	fmt.Fprintln(&buf, strings.Repeat("=", 80))
	if s.Periods == 0 {
		fmt.Fprintln(&buf, "No periods simulated.")
		return buf.Bytes(), nil
	}
	fmt.Fprintf(&buf, "%s %s to %s (%d periods)\n", LabelStyle.Render("Horizon:"),
		s.StartDate.Format("2006-01-02"), s.EndDate.Format("2006-01-02"), s.Periods)
	fmt.Fprintf(&buf, "%s %s\n", LabelStyle.Render("Final net worth:"),
		MoneyStyle(s.FinalNetWorth.IsNegative()).Render(FormatCurrency(s.FinalNetWorth)))
	fmt.Fprintf(&buf, "%s %s\n", LabelStyle.Render("Total tax paid:"), FormatCurrency(s.TotalTax))
	if s.TotalInterestSaved.IsPositive() {
		fmt.Fprintf(&buf, "%s %s\n", LabelStyle.Render("Offset interest saved:"), FormatCurrency(s.TotalInterestSaved))
	}
	fmt.Fprintf(&buf, "%s %s\n", LabelStyle.Render("Debt free:"), formatDate(s.DebtFreeDate))

	if s.RetirementDate != nil {
		age := ""
		if s.RetirementAge != nil {
			age = fmt.Sprintf(" at age %d", *s.RetirementAge)
		}
		fmt.Fprintf(&buf, "%s %s%s\n", LabelStyle.Render("Retirement reached:"), formatDate(s.RetirementDate), age)
	} else {
		fmt.Fprintf(&buf, "%s %s\n", LabelStyle.Render("Retirement reached:"), WarningStyle.Render("not within the projection"))
	}

	sustainable := PositiveStyle.Render("yes")
	if !s.IsSustainable {
		sustainable = NegativeStyle.Render("no")
	}
	fmt.Fprintf(&buf, "%s %s\n\n", LabelStyle.Render("Sustainable:"), sustainable)

	c.writeYearlyTable(&buf, result.States)

	if len(result.TransitionPoints) > 0 {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, SectionStyle.Render("TRANSITIONS"))
		for _, point := range result.TransitionPoints {
			label := point.Transition.Label
			if label == "" {
				label = point.Transition.ID
			}
			fmt.Fprintf(&buf, "  %s  %s", point.Date.Format("2006-01-02"), label)
			if point.Summary != "" {
				fmt.Fprintf(&buf, " (%s)", point.Summary)
			}
			fmt.Fprintln(&buf)
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, SectionStyle.Render("WARNINGS"))
		for _, w := range result.Warnings {
			fmt.Fprintf(&buf, "• %s\n", WarningStyle.Render(w))
		}
	}

	return buf.Bytes(), nil
}

// writeYearlyTable prints the last state of each calendar year
func (c ConsoleFormatter) writeYearlyTable(buf *bytes.Buffer, states []domain.FinancialState) {
	const width = 14
	header := fmt.Sprintf("%-12s %*s %*s %*s %*s %*s",
		"Date", width, "Cash", width, "Investments", width, "Retirement", width, "Debt", width, "Net Worth")
	fmt.Fprintln(buf, TableHeaderStyle.Render(header))
	fmt.Fprintln(buf, strings.Repeat("-", 80))

	for _, s := range YearEndStates(states) {
		fmt.Fprintf(buf, "%-12s %*s %*s %*s %*s %*s\n",
			s.Date.Format("2006-01-02"),
			width, formatCompact(s.Cash),
			width, formatCompact(s.Investments),
			width, formatCompact(s.RetirementSavings),
			width, formatCompact(s.LoanBalance),
			width, formatCompact(s.NetWorth))
	}
}

// YearEndStates returns the last state of each calendar year in the series,
// always including the final state
func YearEndStates(states []domain.FinancialState) []domain.FinancialState {
	var out []domain.FinancialState
	for i, s := range states {
		if i == len(states)-1 || states[i+1].Date.Year() != s.Date.Year() {
			out = append(out, s)
		}
	}
	return out
}

// formatCompact renders amounts at or above a thousand as K or M
func formatCompact(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	abs := d.Abs()
	switch {
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1000000)):
		return sign + "$" + abs.Div(decimal.NewFromInt(1000000)).StringFixed(2) + "M"
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1000)):
		return sign + "$" + abs.Div(decimal.NewFromInt(1000)).StringFixed(1) + "K"
	default:
		return sign + "$" + abs.StringFixed(0)
	}
}
