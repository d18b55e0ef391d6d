package compare

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates a formatted table comparing the two runs
func (tf *TableFormatter) Format(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString("TRANSITION IMPACT COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	if compSet.ConfigPath != "" {
		sb.WriteString(fmt.Sprintf("Configuration: %s\n", compSet.ConfigPath))
	}
	if compSet.Result != nil {
		sb.WriteString(fmt.Sprintf("Transitions applied: %d\n", len(compSet.Result.WithTransitions.TransitionPoints)))
	}
	sb.WriteString("\n")

	nameWidth := 20
	numWidth := 14

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, "Run",
		numWidth, "Net Worth",
		numWidth, "Debt",
		numWidth, "Retirement",
		numWidth, "Sustainable"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	sb.WriteString(tf.formatRow(compSet.Base, nameWidth, numWidth))
	sb.WriteString(tf.formatRow(compSet.WithTransitions, nameWidth, numWidth))
	sb.WriteString(strings.Repeat("=", 80) + "\n")

	if result := compSet.Result; result != nil {
		sb.WriteString("\nIMPACT OF TRANSITIONS\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")

		sb.WriteString(fmt.Sprintf("  Final Net Worth:  %s$%s\n",
			tf.deltaSymbol(result.FinalNetWorthDifference),
			tf.formatDecimal(result.FinalNetWorthDifference.Abs())))

		if years := result.RetirementDateDifferenceYears; years != nil {
			sb.WriteString(fmt.Sprintf("  Retirement Date:  %s%s years\n",
				tf.deltaSymbol(*years), years.Abs().StringFixed(1)))
		} else {
			sb.WriteString("  Retirement Date:  n/a\n")
		}

		changed := "unchanged"
		if result.SustainabilityChanged {
			changed = "changed"
		}
		sb.WriteString(fmt.Sprintf("  Sustainability:   %s\n", changed))

		for _, point := range result.WithTransitions.TransitionPoints {
			sb.WriteString(fmt.Sprintf("\n  %s  %s (%s)",
				point.Date.Format("2006-01-02"), point.Transition.Label, point.Summary))
		}
		sb.WriteString("\n")
	}

	if len(compSet.Recommendations) > 0 {
		sb.WriteString("\nRECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, rec := range compSet.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatRow formats a single run row
func (tf *TableFormatter) formatRow(m RunMetrics, nameWidth, numWidth int) string {
	retirement := "not reached"
	if m.RetirementAge != nil {
		retirement = fmt.Sprintf("age %d", *m.RetirementAge)
	}

	sustainable := "no"
	if m.IsSustainable {
		sustainable = "yes"
	}

	return fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, tf.truncate(m.Name, nameWidth),
		numWidth, "$"+tf.formatDecimal(m.FinalNetWorth),
		numWidth, "$"+tf.formatDecimal(m.FinalLoanBalance),
		numWidth, retirement,
		numWidth, sustainable)
}

// formatDecimal formats a decimal for display (in thousands)
func (tf *TableFormatter) formatDecimal(d decimal.Decimal) string {
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000000)) {
		millions := d.Div(decimal.NewFromInt(1000000))
		return millions.StringFixed(2) + "M"
	} else if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000)) {
		thousands := d.Div(decimal.NewFromInt(1000))
		return thousands.StringFixed(1) + "K"
	}
	return d.StringFixed(0)
}

// deltaSymbol returns the sign prefix for a delta
func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	} else if delta.IsNegative() {
		return "-"
	}
	return " "
}

// truncate truncates a string to maxLen
func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// FormatCompact creates a compact single-line summary
func (tf *TableFormatter) FormatCompact(compSet *ComparisonSet) string {
	if compSet.Result == nil {
		return "no comparison"
	}

	change := "="
	diff := compSet.Result.FinalNetWorthDifference
	if diff.IsPositive() {
		change = fmt.Sprintf("+$%s", tf.formatDecimal(diff))
	} else if diff.IsNegative() {
		change = fmt.Sprintf("-$%s", tf.formatDecimal(diff.Abs()))
	}

	return fmt.Sprintf("Net worth: %s | Sustainable: %t -> %t",
		change, compSet.Base.IsSustainable, compSet.WithTransitions.IsSustainable)
}
