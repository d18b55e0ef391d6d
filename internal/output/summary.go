package output

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/rgehrsitz/fincast/internal/domain"
	"github.com/rgehrsitz/fincast/pkg/dateutil"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary condenses a state series into headline figures
type Summary struct {
	Periods   int       `json:"periods"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`

	StartNetWorth decimal.Decimal `json:"startNetWorth"`
	FinalNetWorth decimal.Decimal `json:"finalNetWorth"`
	PeakNetWorth  decimal.Decimal `json:"peakNetWorth"`
	LowestCash    decimal.Decimal `json:"lowestCash"`

	// Annualised growth of net worth between the first and last state. Zero
	// when the first net worth is not positive.
	NetWorthGrowthRate float64 `json:"netWorthGrowthRate"`

	MeanCashFlow   float64 `json:"meanCashFlow"`
	CashFlowStdDev float64 `json:"cashFlowStdDev"`

	TotalTax           decimal.Decimal `json:"totalTax"`
	TotalInterestSaved decimal.Decimal `json:"totalInterestSaved"`

	DebtFreeDate   *time.Time `json:"debtFreeDate"`
	RetirementDate *time.Time `json:"retirementDate"`
	RetirementAge  *int       `json:"retirementAge"`
	IsSustainable  bool       `json:"isSustainable"`
	WarningCount   int        `json:"warningCount"`
}

// Summarize computes the summary of a result. An empty series yields a
// zero summary carrying only the evaluation fields.
func Summarize(result *domain.SimulationResult) Summary {
	s := Summary{
		RetirementDate: result.RetirementDate,
		RetirementAge:  result.RetirementAge,
		IsSustainable:  result.IsSustainable,
		WarningCount:   len(result.Warnings),
	}
	n := len(result.States)
	if n == 0 {
		return s
	}

	netWorth := make([]float64, n)
	cash := make([]float64, n)
	flows := make([]float64, n)
	for i, state := range result.States {
		netWorth[i] = state.NetWorth.InexactFloat64()
		cash[i] = state.Cash.InexactFloat64()
		flows[i] = state.CashFlow.InexactFloat64()
	}

	first, last := result.States[0], result.States[n-1]
	s.Periods = n
	s.StartDate = first.Date
	s.EndDate = last.Date
	s.StartNetWorth = first.NetWorth
	s.FinalNetWorth = last.NetWorth
	s.PeakNetWorth = result.States[floats.MaxIdx(netWorth)].NetWorth
	s.LowestCash = result.States[floats.MinIdx(cash)].Cash
	s.MeanCashFlow = stat.Mean(flows, nil)
	if n > 1 {
		s.CashFlowStdDev = stat.StdDev(flows, nil)
	}
	s.TotalTax = result.TotalTaxPaid()
	s.TotalInterestSaved = result.TotalInterestSaved()
	s.DebtFreeDate = result.DebtFreeDate()

	years := dateutil.YearsBetween(first.Date, last.Date)
	if netWorth[0] > 0 && netWorth[n-1] > 0 && years > 0 {
		s.NetWorthGrowthRate = math.Pow(netWorth[n-1]/netWorth[0], 1/years) - 1
	}
	return s
}

// SummaryFormatter prints the summary as aligned plain text
type SummaryFormatter struct{}

func (SummaryFormatter) Name() string { return "summary" }

func (SummaryFormatter) Format(result *domain.EnhancedSimulationResult) ([]byte, error) {
	s := Summarize(&result.SimulationResult)
	var buf bytes.Buffer

	retirement := "not reached"
	if s.RetirementDate != nil {
		retirement = formatDate(s.RetirementDate)
		if s.RetirementAge != nil {
			retirement = fmt.Sprintf("%s (age %d)", retirement, *s.RetirementAge)
		}
	}

	fmt.Fprintf(&buf, "Periods:              %d\n", s.Periods)
	if s.Periods > 0 {
		fmt.Fprintf(&buf, "Horizon:              %s to %s\n", s.StartDate.Format("2006-01-02"), s.EndDate.Format("2006-01-02"))
	}
	fmt.Fprintf(&buf, "Final net worth:      %s\n", FormatCurrency(s.FinalNetWorth))
	fmt.Fprintf(&buf, "Peak net worth:       %s\n", FormatCurrency(s.PeakNetWorth))
	fmt.Fprintf(&buf, "Net worth growth:     %.2f%% a year\n", s.NetWorthGrowthRate*100)
	fmt.Fprintf(&buf, "Lowest cash:          %s\n", FormatCurrency(s.LowestCash))
	fmt.Fprintf(&buf, "Cash flow:            %.2f mean, %.2f std dev\n", s.MeanCashFlow, s.CashFlowStdDev)
	fmt.Fprintf(&buf, "Total tax:            %s\n", FormatCurrency(s.TotalTax))
	fmt.Fprintf(&buf, "Interest saved:       %s\n", FormatCurrency(s.TotalInterestSaved))
	fmt.Fprintf(&buf, "Debt free:            %s\n", formatDate(s.DebtFreeDate))
	fmt.Fprintf(&buf, "Retirement:           %s\n", retirement)
	fmt.Fprintf(&buf, "Sustainable:          %t\n", s.IsSustainable)
	fmt.Fprintf(&buf, "Warnings:             %d\n", s.WarningCount)
	return buf.Bytes(), nil
}
