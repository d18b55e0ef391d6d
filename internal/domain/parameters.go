package domain

import (
	"time"

	"github.com/rgehrsitz/fincast/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// Household describes who the plan is for. It is informational only and
// never affects the projection.
type Household struct {
	Name       string `yaml:"name,omitempty" json:"name,omitempty"`
	Adults     int    `yaml:"adults,omitempty" json:"adults,omitempty"`
	Dependents int    `yaml:"dependents,omitempty" json:"dependents,omitempty"`
}

// IncomeSource is one named stream of income. A source is either recurring
// (optionally bounded by StartDate/EndDate) or a one-off paid on Date.
type IncomeSource struct {
	Amount    decimal.Decimal   `yaml:"amount" json:"amount"`
	Frequency dateutil.Interval `yaml:"frequency" json:"frequency"`
	BeforeTax bool              `yaml:"before_tax" json:"before_tax"`
	StartDate *time.Time        `yaml:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate   *time.Time        `yaml:"end_date,omitempty" json:"end_date,omitempty"`
	OneOff    bool              `yaml:"one_off,omitempty" json:"one_off,omitempty"`
	Date      *time.Time        `yaml:"date,omitempty" json:"date,omitempty"`
}

// ExpenseItem is one itemised expense with the same date-window semantics as
// a recurring IncomeSource.
type ExpenseItem struct {
	Amount    decimal.Decimal   `yaml:"amount" json:"amount"`
	Frequency dateutil.Interval `yaml:"frequency" json:"frequency"`
	StartDate *time.Time        `yaml:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate   *time.Time        `yaml:"end_date,omitempty" json:"end_date,omitempty"`
}

// Loan is one amortising debt, optionally linked to an offset account.
type Loan struct {
	ID               string            `yaml:"id" json:"id"`
	Name             string            `yaml:"name,omitempty" json:"name,omitempty"`
	Principal        decimal.Decimal   `yaml:"principal" json:"principal"`
	InterestRate     decimal.Decimal   `yaml:"interest_rate" json:"interest_rate"`
	Payment          decimal.Decimal   `yaml:"payment" json:"payment"`
	PaymentFrequency dateutil.Interval `yaml:"payment_frequency" json:"payment_frequency"`
	HasOffset        bool              `yaml:"has_offset,omitempty" json:"has_offset,omitempty"`
	OffsetBalance    decimal.Decimal   `yaml:"offset_balance,omitempty" json:"offset_balance,omitempty"`
	AutoPayout       bool              `yaml:"auto_payout,omitempty" json:"auto_payout,omitempty"`
	DebtRecycling    bool              `yaml:"debt_recycling,omitempty" json:"debt_recycling,omitempty"`
}

// RetirementAccount is one tax-advantaged retirement balance funded as a
// fraction of gross income (0.11 means 11%).
type RetirementAccount struct {
	ID               string          `yaml:"id" json:"id"`
	Name             string          `yaml:"name,omitempty" json:"name,omitempty"`
	Balance          decimal.Decimal `yaml:"balance" json:"balance"`
	ContributionRate decimal.Decimal `yaml:"contribution_rate" json:"contribution_rate"`
	ReturnRate       decimal.Decimal `yaml:"return_rate" json:"return_rate"`
}

// InvestmentParameters describes the non-retirement investment portfolio.
type InvestmentParameters struct {
	MonthlyContribution decimal.Decimal `yaml:"monthly_contribution" json:"monthly_contribution"`
	AnnualReturnRate    decimal.Decimal `yaml:"annual_return_rate" json:"annual_return_rate"`
	CurrentBalance      decimal.Decimal `yaml:"current_balance" json:"current_balance"`
}

// RetirementTarget is the goal the retirement evaluator measures against.
type RetirementTarget struct {
	DesiredAnnualIncome decimal.Decimal `yaml:"desired_annual_income" json:"desired_annual_income"`
	TargetAge           int             `yaml:"target_age" json:"target_age"`
	CurrentAge          int             `yaml:"current_age" json:"current_age"`
}

// UserParameters is the complete input for one projection.
//
// Loans and retirement accounts accept two shapes. When the Loans (or
// RetirementAccounts) key is present, even as an empty list, it wins and the
// flat legacy fields are ignored. When it is absent the legacy fields
// describe a single loan (or account). Use CanonicalLoans and
// CanonicalAccounts instead of reading either shape directly.
type UserParameters struct {
	Household Household `yaml:"household,omitempty" json:"household,omitempty"`
	StartDate time.Time `yaml:"start_date" json:"start_date"`

	SimulationYears int `yaml:"simulation_years" json:"simulation_years"`

	CashBalance decimal.Decimal `yaml:"cash_balance" json:"cash_balance"`

	// Income
	AnnualSalary    decimal.Decimal         `yaml:"annual_salary" json:"annual_salary"`
	SalaryFrequency dateutil.Interval       `yaml:"salary_frequency" json:"salary_frequency"`
	IncomeSources   map[string]IncomeSource `yaml:"income_sources,omitempty" json:"income_sources,omitempty"`

	// Expenses
	MonthlyLivingExpenses decimal.Decimal        `yaml:"monthly_living_expenses" json:"monthly_living_expenses"`
	MonthlyHousingCost    decimal.Decimal        `yaml:"monthly_housing_cost" json:"monthly_housing_cost"`
	Expenses              map[string]ExpenseItem `yaml:"expenses,omitempty" json:"expenses,omitempty"`

	// Legacy single loan
	LoanAmount           decimal.Decimal   `yaml:"loan_amount,omitempty" json:"loan_amount,omitempty"`
	LoanInterestRate     decimal.Decimal   `yaml:"loan_interest_rate,omitempty" json:"loan_interest_rate,omitempty"`
	LoanPayment          decimal.Decimal   `yaml:"loan_payment,omitempty" json:"loan_payment,omitempty"`
	LoanPaymentFrequency dateutil.Interval `yaml:"loan_payment_frequency,omitempty" json:"loan_payment_frequency,omitempty"`
	HasOffset            bool              `yaml:"has_offset,omitempty" json:"has_offset,omitempty"`
	OffsetBalance        decimal.Decimal   `yaml:"offset_balance,omitempty" json:"offset_balance,omitempty"`
	AutoPayout           bool              `yaml:"auto_payout,omitempty" json:"auto_payout,omitempty"`
	DebtRecycling        bool              `yaml:"debt_recycling,omitempty" json:"debt_recycling,omitempty"`

	Loans LoanSet `yaml:"loans,omitempty" json:"loans,omitempty"`

	// Legacy single retirement account
	RetirementBalance          decimal.Decimal `yaml:"retirement_balance,omitempty" json:"retirement_balance,omitempty"`
	RetirementContributionRate decimal.Decimal `yaml:"retirement_contribution_rate,omitempty" json:"retirement_contribution_rate,omitempty"`
	RetirementReturnRate       decimal.Decimal `yaml:"retirement_return_rate,omitempty" json:"retirement_return_rate,omitempty"`

	RetirementAccounts AccountSet `yaml:"retirement_accounts,omitempty" json:"retirement_accounts,omitempty"`

	Investment InvestmentParameters `yaml:"investment" json:"investment"`
	TaxRate    decimal.Decimal      `yaml:"tax_rate" json:"tax_rate"`
	Retirement RetirementTarget     `yaml:"retirement" json:"retirement"`
}

// Legacy identifiers assigned when the flat fields are lifted into lists.
const (
	LegacyLoanID    = "primary"
	LegacyAccountID = "retirement"
)

// UsesLoanList reports whether the multi-loan shape is in effect.
func (p *UserParameters) UsesLoanList() bool {
	return p.Loans.Present
}

// UsesAccountList reports whether the multi-account shape is in effect.
func (p *UserParameters) UsesAccountList() bool {
	return p.RetirementAccounts.Present
}

// CanonicalLoans resolves the loan input shape into a single list. The
// legacy loan exists only when LoanAmount is positive.
func (p *UserParameters) CanonicalLoans() []Loan {
	if p.Loans.Present {
		out := make([]Loan, len(p.Loans.Items))
		copy(out, p.Loans.Items)
		return out
	}
	if !p.LoanAmount.IsPositive() {
		return nil
	}
	return []Loan{{
		ID:               LegacyLoanID,
		Principal:        p.LoanAmount,
		InterestRate:     p.LoanInterestRate,
		Payment:          p.LoanPayment,
		PaymentFrequency: p.LoanPaymentFrequency,
		HasOffset:        p.HasOffset,
		OffsetBalance:    p.OffsetBalance,
		AutoPayout:       p.AutoPayout,
		DebtRecycling:    p.DebtRecycling,
	}}
}

// CanonicalAccounts resolves the retirement account input shape into a
// single list. The legacy shape always yields exactly one account.
func (p *UserParameters) CanonicalAccounts() []RetirementAccount {
	if p.RetirementAccounts.Present {
		out := make([]RetirementAccount, len(p.RetirementAccounts.Items))
		copy(out, p.RetirementAccounts.Items)
		return out
	}
	return []RetirementAccount{{
		ID:               LegacyAccountID,
		Balance:          p.RetirementBalance,
		ContributionRate: p.RetirementContributionRate,
		ReturnRate:       p.RetirementReturnRate,
	}}
}

// TotalPeriods is the number of simulation steps for the given interval.
func (p *UserParameters) TotalPeriods(interval dateutil.Interval) int {
	if p.SimulationYears <= 0 {
		return 0
	}
	return p.SimulationYears * dateutil.PeriodsPerYear(interval)
}

// EndDate is the exclusive end of the simulation horizon.
func (p *UserParameters) EndDate() time.Time {
	return p.StartDate.AddDate(p.SimulationYears, 0, 0)
}

// Clone returns a deep copy. Maps, lists and date pointers are duplicated so
// the copy can be patched without touching the original.
func (p UserParameters) Clone() UserParameters {
	out := p
	if p.IncomeSources != nil {
		out.IncomeSources = make(map[string]IncomeSource, len(p.IncomeSources))
		for k, v := range p.IncomeSources {
			out.IncomeSources[k] = v.Clone()
		}
	}
	if p.Expenses != nil {
		out.Expenses = make(map[string]ExpenseItem, len(p.Expenses))
		for k, v := range p.Expenses {
			out.Expenses[k] = v.Clone()
		}
	}
	out.Loans = p.Loans.Clone()
	out.RetirementAccounts = p.RetirementAccounts.Clone()
	return out
}

// Clone copies the source including its date pointers.
func (s IncomeSource) Clone() IncomeSource {
	s.StartDate = cloneTime(s.StartDate)
	s.EndDate = cloneTime(s.EndDate)
	s.Date = cloneTime(s.Date)
	return s
}

// Clone copies the item including its date pointers.
func (e ExpenseItem) Clone() ExpenseItem {
	e.StartDate = cloneTime(e.StartDate)
	e.EndDate = cloneTime(e.EndDate)
	return e
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// activeOn reports whether a recurring window [start, end] covers date.
// Either bound may be nil.
func activeOn(start, end *time.Time, date time.Time) bool {
	if start != nil && date.Before(*start) {
		return false
	}
	if end != nil && date.After(*end) {
		return false
	}
	return true
}

// ActiveOn reports whether the source pays anything in the period starting
// at periodStart and ending before periodEnd. One-off sources match when
// their Date falls inside the period.
func (s IncomeSource) ActiveOn(periodStart, periodEnd time.Time) bool {
	if s.OneOff {
		if s.Date == nil {
			return false
		}
		return !s.Date.Before(periodStart) && s.Date.Before(periodEnd)
	}
	return activeOn(s.StartDate, s.EndDate, periodStart)
}

// ActiveOn reports whether the expense applies at date.
func (e ExpenseItem) ActiveOn(date time.Time) bool {
	return activeOn(e.StartDate, e.EndDate, date)
}
