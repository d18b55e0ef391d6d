package output

import (
	"bytes"
	"encoding/csv"
	"sort"

	"github.com/rgehrsitz/fincast/internal/domain"
	"github.com/shopspring/decimal"
)

var csvHeader = []string{
	"Date", "Cash", "Investments", "RetirementSavings", "LoanBalance", "OffsetBalance", "NetWorth",
	"GrossIncome", "NetIncome", "TaxPaid", "Expenses", "LoanPayments",
	"InvestmentContribution", "RetirementContribution", "InterestSaved", "CashFlow",
}

// CSVFormatter writes one row per period. Per-loan and per-account balances
// follow the fixed columns, one column per id in sorted order.
type CSVFormatter struct{}

func (CSVFormatter) Name() string { return "csv" }

func (CSVFormatter) Format(result *domain.EnhancedSimulationResult) ([]byte, error) {
	loanIDs := breakdownKeys(result.States, func(s domain.FinancialState) map[string]decimal.Decimal { return s.LoanBalances })
	accountIDs := breakdownKeys(result.States, func(s domain.FinancialState) map[string]decimal.Decimal { return s.AccountBalances })

	header := append([]string{}, csvHeader...)
	for _, id := range loanIDs {
		header = append(header, "Loan:"+id)
	}
	for _, id := range accountIDs {
		header = append(header, "Account:"+id)
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, s := range result.States {
		row := []string{
			s.Date.Format("2006-01-02"),
			s.Cash.StringFixed(2),
			s.Investments.StringFixed(2),
			s.RetirementSavings.StringFixed(2),
			s.LoanBalance.StringFixed(2),
			s.OffsetBalance.StringFixed(2),
			s.NetWorth.StringFixed(2),
			s.GrossIncome.StringFixed(2),
			s.NetIncome.StringFixed(2),
			s.TaxPaid.StringFixed(2),
			s.Expenses.StringFixed(2),
			s.LoanPayments.StringFixed(2),
			s.InvestmentContribution.StringFixed(2),
			s.RetirementContribution.StringFixed(2),
			s.InterestSaved.StringFixed(2),
			s.CashFlow.StringFixed(2),
		}
		for _, id := range loanIDs {
			row = append(row, s.LoanBalances[id].StringFixed(2))
		}
		for _, id := range accountIDs {
			row = append(row, s.AccountBalances[id].StringFixed(2))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// breakdownKeys collects every id that appears in any state's breakdown map
func breakdownKeys(states []domain.FinancialState, pick func(domain.FinancialState) map[string]decimal.Decimal) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, s := range states {
		for id := range pick(s) {
			if !seen[id] {
				seen[id] = true
				keys = append(keys, id)
			}
		}
	}
	sort.Strings(keys)
	return keys
}
