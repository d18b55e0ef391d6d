package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinancialState is the household snapshot at one period boundary. A state
// is never modified after the engine emits it; each period produces a new
// value with freshly allocated breakdown maps.
type FinancialState struct {
	Date time.Time `json:"date"`

	Cash              decimal.Decimal `json:"cash"` // may be negative
	Investments       decimal.Decimal `json:"investments"`
	RetirementSavings decimal.Decimal `json:"retirementSavings"`
	LoanBalance       decimal.Decimal `json:"loanBalance"`
	OffsetBalance     decimal.Decimal `json:"offsetBalance"`
	NetWorth          decimal.Decimal `json:"netWorth"`

	// Flows for the period
	GrossIncome            decimal.Decimal `json:"grossIncome"`
	NetIncome              decimal.Decimal `json:"netIncome"`
	CashFlow               decimal.Decimal `json:"cashFlow"`
	TaxPaid                decimal.Decimal `json:"taxPaid"`
	Expenses               decimal.Decimal `json:"expenses"`
	LoanPayments           decimal.Decimal `json:"loanPayments"`
	InvestmentContribution decimal.Decimal `json:"investmentContribution"`
	RetirementContribution decimal.Decimal `json:"retirementContribution"`
	InterestSaved          decimal.Decimal `json:"interestSaved"`
	DeductibleInterest     decimal.Decimal `json:"deductibleInterest"`

	// Per-entity breakdowns, present only for the multi-entity input shapes
	LoanBalances    map[string]decimal.Decimal `json:"loanBalances,omitempty"`    // loan id -> balance
	OffsetBalances  map[string]decimal.Decimal `json:"offsetBalances,omitempty"`  // loan id -> offset balance
	AccountBalances map[string]decimal.Decimal `json:"accountBalances,omitempty"` // account id -> balance
}

// TotalAssets returns cash + investments + retirement savings + offset.
func (s *FinancialState) TotalAssets() decimal.Decimal {
	return s.Cash.Add(s.Investments).Add(s.RetirementSavings).Add(s.OffsetBalance)
}

// CalculateNetWorth returns total assets minus loan balances.
func (s *FinancialState) CalculateNetWorth() decimal.Decimal {
	return s.TotalAssets().Sub(s.LoanBalance)
}

// IsDebtFree reports whether every loan has been repaid.
func (s *FinancialState) IsDebtFree() bool {
	return !s.LoanBalance.IsPositive()
}

// SumBalances adds up the values of a breakdown map.
func SumBalances(m map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		total = total.Add(v)
	}
	return total
}

// CopyBalances returns an independent copy of a breakdown map. A nil map
// stays nil.
func CopyBalances(m map[string]decimal.Decimal) map[string]decimal.Decimal {
	if m == nil {
		return nil
	}
	out := make(map[string]decimal.Decimal, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
