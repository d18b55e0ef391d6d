// Package transform resolves scheduled parameter transitions: it merges
// sparse patches into parameter sets, answers "which parameters apply on this
// date" and partitions a horizon into windows of constant parameters.
package transform

import (
	"fmt"

	"github.com/rgehrsitz/fincast/internal/domain"
	"github.com/shopspring/decimal"
)

// ApplyTransitions validates and applies transitions to base in
// chronological order and returns the final parameter set. Each transition
// is validated against the parameters produced by the ones before it.
func ApplyTransitions(base *domain.UserParameters, transitions []domain.Transition) (*domain.UserParameters, error) {
	if base == nil {
		return nil, fmt.Errorf("base parameters cannot be nil")
	}

	current := base.Clone()
	for _, t := range SortTransitions(transitions) {
		if err := ValidateTransition(&current, t); err != nil {
			return nil, err
		}
		current = ApplyPatch(current, t.Changes)
	}
	return &current, nil
}

// ValidateTransition checks that t can be applied to params: it has a date,
// its rates are above -100% and the loans and accounts it edits exist.
func ValidateTransition(params *domain.UserParameters, t domain.Transition) error {
	name := transitionLabel(t)
	if t.EffectiveDate.IsZero() {
		return NewTransitionError(name, "validate", "effective date is required", nil)
	}

	c := t.Changes
	rates := map[string]*decimal.Decimal{
		"loan_interest_rate":           c.LoanInterestRate,
		"retirement_contribution_rate": c.RetirementContributionRate,
		"retirement_return_rate":       c.RetirementReturnRate,
		"investment_return_rate":       c.InvestmentReturnRate,
		"tax_rate":                     c.TaxRate,
	}
	for field, rate := range rates {
		if rate != nil && rate.LessThanOrEqual(decimal.NewFromInt(-1)) {
			return NewTransitionError(name, "validate", fmt.Sprintf("%s must be greater than -1, got %s", field, rate), nil)
		}
	}

	for field, amount := range map[string]*decimal.Decimal{
		"annual_salary":                   c.AnnualSalary,
		"monthly_living_expenses":         c.MonthlyLivingExpenses,
		"monthly_housing_cost":            c.MonthlyHousingCost,
		"loan_payment":                    c.LoanPayment,
		"investment_monthly_contribution": c.InvestmentMonthlyContribution,
	} {
		if amount != nil && amount.IsNegative() {
			return NewTransitionError(name, "validate", fmt.Sprintf("%s cannot be negative, got %s", field, amount), nil)
		}
	}

	// Updates address loans as they exist after this transition's own list
	// replacement, if any.
	target := *params
	if c.Loans != nil {
		target.Loans = *c.Loans
	}
	loans := make(map[string]bool)
	for _, loan := range target.CanonicalLoans() {
		loans[loan.ID] = true
	}
	for id, update := range c.LoanUpdates {
		if !loans[id] {
			return NewTransitionError(name, "validate", fmt.Sprintf("loan %q not found", id), nil)
		}
		if update.InterestRate != nil && update.InterestRate.LessThanOrEqual(decimal.NewFromInt(-1)) {
			return NewTransitionError(name, "validate", fmt.Sprintf("loan %q interest rate must be greater than -1", id), nil)
		}
	}

	accounts := make(map[string]bool)
	for _, account := range params.CanonicalAccounts() {
		accounts[account.ID] = true
	}
	for id := range c.AccountUpdates {
		if !accounts[id] {
			return NewTransitionError(name, "validate", fmt.Sprintf("retirement account %q not found", id), nil)
		}
	}

	return nil
}

// TransitionError reports a transition that cannot be applied.
type TransitionError struct {
	Transition string
	Operation  string
	Reason     string
	Err        error
}

func (e *TransitionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transition %s (%s): %s: %v", e.Transition, e.Operation, e.Reason, e.Err)
	}
	return fmt.Sprintf("transition %s (%s): %s", e.Transition, e.Operation, e.Reason)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// NewTransitionError creates a new TransitionError.
func NewTransitionError(transition, operation, reason string, err error) error {
	return &TransitionError{
		Transition: transition,
		Operation:  operation,
		Reason:     reason,
		Err:        err,
	}
}
