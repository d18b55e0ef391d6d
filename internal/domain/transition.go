package domain

import (
	"time"

	"github.com/rgehrsitz/fincast/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// LoanPatch overrides selected fields of one loan, addressed by id.
type LoanPatch struct {
	InterestRate     *decimal.Decimal   `yaml:"interest_rate,omitempty" json:"interest_rate,omitempty"`
	Payment          *decimal.Decimal   `yaml:"payment,omitempty" json:"payment,omitempty"`
	PaymentFrequency *dateutil.Interval `yaml:"payment_frequency,omitempty" json:"payment_frequency,omitempty"`
	HasOffset        *bool              `yaml:"has_offset,omitempty" json:"has_offset,omitempty"`
	AutoPayout       *bool              `yaml:"auto_payout,omitempty" json:"auto_payout,omitempty"`
	DebtRecycling    *bool              `yaml:"debt_recycling,omitempty" json:"debt_recycling,omitempty"`
}

// AccountPatch overrides selected fields of one retirement account.
type AccountPatch struct {
	ContributionRate *decimal.Decimal `yaml:"contribution_rate,omitempty" json:"contribution_rate,omitempty"`
	ReturnRate       *decimal.Decimal `yaml:"return_rate,omitempty" json:"return_rate,omitempty"`
}

// ParameterPatch is a sparse override of UserParameters. Nil fields are left
// untouched when the patch is applied. Map and list fields replace the
// whole collection; LoanUpdates and AccountUpdates edit individual entries.
//
// Balances (cash, loan principal, investment balance) are deliberately not
// patchable: once a run starts they are carried by the simulated state.
type ParameterPatch struct {
	AnnualSalary    *decimal.Decimal        `yaml:"annual_salary,omitempty" json:"annual_salary,omitempty"`
	SalaryFrequency *dateutil.Interval      `yaml:"salary_frequency,omitempty" json:"salary_frequency,omitempty"`
	IncomeSources   map[string]IncomeSource `yaml:"income_sources,omitempty" json:"income_sources,omitempty"`

	MonthlyLivingExpenses *decimal.Decimal       `yaml:"monthly_living_expenses,omitempty" json:"monthly_living_expenses,omitempty"`
	MonthlyHousingCost    *decimal.Decimal       `yaml:"monthly_housing_cost,omitempty" json:"monthly_housing_cost,omitempty"`
	Expenses              map[string]ExpenseItem `yaml:"expenses,omitempty" json:"expenses,omitempty"`

	LoanInterestRate     *decimal.Decimal     `yaml:"loan_interest_rate,omitempty" json:"loan_interest_rate,omitempty"`
	LoanPayment          *decimal.Decimal     `yaml:"loan_payment,omitempty" json:"loan_payment,omitempty"`
	LoanPaymentFrequency *dateutil.Interval   `yaml:"loan_payment_frequency,omitempty" json:"loan_payment_frequency,omitempty"`
	HasOffset            *bool                `yaml:"has_offset,omitempty" json:"has_offset,omitempty"`
	AutoPayout           *bool                `yaml:"auto_payout,omitempty" json:"auto_payout,omitempty"`
	DebtRecycling        *bool                `yaml:"debt_recycling,omitempty" json:"debt_recycling,omitempty"`
	Loans                *LoanSet             `yaml:"loans,omitempty" json:"loans,omitempty"`
	LoanUpdates          map[string]LoanPatch `yaml:"loan_updates,omitempty" json:"loan_updates,omitempty"`

	RetirementContributionRate *decimal.Decimal        `yaml:"retirement_contribution_rate,omitempty" json:"retirement_contribution_rate,omitempty"`
	RetirementReturnRate       *decimal.Decimal        `yaml:"retirement_return_rate,omitempty" json:"retirement_return_rate,omitempty"`
	AccountUpdates             map[string]AccountPatch `yaml:"account_updates,omitempty" json:"account_updates,omitempty"`

	InvestmentMonthlyContribution *decimal.Decimal `yaml:"investment_monthly_contribution,omitempty" json:"investment_monthly_contribution,omitempty"`
	InvestmentReturnRate          *decimal.Decimal `yaml:"investment_return_rate,omitempty" json:"investment_return_rate,omitempty"`

	TaxRate             *decimal.Decimal `yaml:"tax_rate,omitempty" json:"tax_rate,omitempty"`
	DesiredAnnualIncome *decimal.Decimal `yaml:"desired_annual_income,omitempty" json:"desired_annual_income,omitempty"`
	TargetRetirementAge *int             `yaml:"target_retirement_age,omitempty" json:"target_retirement_age,omitempty"`
}

// Transition is a dated, labelled set of parameter overrides.
type Transition struct {
	ID            string         `yaml:"id" json:"id"`
	EffectiveDate time.Time      `yaml:"effective_date" json:"effective_date"`
	Label         string         `yaml:"label" json:"label"`
	Changes       ParameterPatch `yaml:"changes" json:"changes"`
}

// SimulationConfiguration pairs base parameters with scheduled transitions.
type SimulationConfiguration struct {
	BaseParameters UserParameters `yaml:"base_parameters" json:"base_parameters"`
	Transitions    []Transition   `yaml:"transitions,omitempty" json:"transitions,omitempty"`
}
