package compare

import (
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CSVFormatter formats comparison results as CSV, one row per run
type CSVFormatter struct{}

// Format generates CSV output for comparison results
func (cf *CSVFormatter) Format(compSet *ComparisonSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Run",
		"Final Net Worth",
		"Final Cash",
		"Final Loan Balance",
		"Lifetime Taxes",
		"Interest Saved",
		"Retirement Date",
		"Retirement Age",
		"Debt Free Date",
		"Sustainable",
		"Net Worth Diff",
		"Retirement Diff (Years)",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	if err := writer.Write(cf.formatRow(compSet.Base, "", "")); err != nil {
		return "", err
	}

	netWorthDiff, yearsDiff := "", ""
	if compSet.Result != nil {
		netWorthDiff = compSet.Result.FinalNetWorthDifference.StringFixed(2)
		yearsDiff = formatYears(compSet.Result.RetirementDateDifferenceYears)
	}
	if err := writer.Write(cf.formatRow(compSet.WithTransitions, netWorthDiff, yearsDiff)); err != nil {
		return "", err
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// formatRow formats one run as a CSV row
func (cf *CSVFormatter) formatRow(m RunMetrics, netWorthDiff, yearsDiff string) []string {
	age := ""
	if m.RetirementAge != nil {
		age = strconv.Itoa(*m.RetirementAge)
	}
	return []string{
		m.Name,
		m.FinalNetWorth.StringFixed(2),
		m.FinalCash.StringFixed(2),
		m.FinalLoanBalance.StringFixed(2),
		m.LifetimeTaxes.StringFixed(2),
		m.TotalInterestSaved.StringFixed(2),
		formatDate(m.RetirementDate),
		age,
		formatDate(m.DebtFreeDate),
		strconv.FormatBool(m.IsSustainable),
		netWorthDiff,
		yearsDiff,
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatYears(years *decimal.Decimal) string {
	if years == nil {
		return ""
	}
	return years.StringFixed(2)
}
