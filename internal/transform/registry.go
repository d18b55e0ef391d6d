package transform

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rgehrsitz/fincast/internal/domain"
	"github.com/rgehrsitz/fincast/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// TransitionRegistry builds transitions from short string specs, which lets
// the CLI schedule changes without a configuration file.
type TransitionRegistry struct {
	factories map[string]TransitionFactory
}

// TransitionFactory creates a transition from spec parameters.
type TransitionFactory func(params map[string]string) (domain.Transition, error)

// NewTransitionRegistry creates a registry with the built-in transitions.
func NewTransitionRegistry() *TransitionRegistry {
	registry := &TransitionRegistry{
		factories: make(map[string]TransitionFactory),
	}

	registry.Register("salary_change", createSalaryChange)
	registry.Register("expense_change", createExpenseChange)
	registry.Register("investment_change", createInvestmentChange)
	registry.Register("extra_repayment", createExtraRepayment)
	registry.Register("tax_rate_change", createTaxRateChange)
	registry.Register("retirement_contribution_change", createRetirementContributionChange)

	return registry
}

// Register adds a factory under name.
func (r *TransitionRegistry) Register(name string, factory TransitionFactory) {
	r.factories[name] = factory
}

// Create builds a transition by name.
func (r *TransitionRegistry) Create(name string, params map[string]string) (domain.Transition, error) {
	factory, exists := r.factories[name]
	if !exists {
		return domain.Transition{}, fmt.Errorf("unknown transition: %s", name)
	}
	return factory(params)
}

// List returns the registered names in alphabetical order.
func (r *TransitionRegistry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseTransitionSpec parses "name:key=value,key=value", for example
// "salary_change:date=2026-07-01,salary=120000".
func (r *TransitionRegistry) ParseTransitionSpec(spec string) (domain.Transition, error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return domain.Transition{}, fmt.Errorf("invalid transition spec format, expected 'name:params', got: %s", spec)
	}

	name := strings.TrimSpace(parts[0])
	paramsStr := strings.TrimSpace(parts[1])

	params := make(map[string]string)
	if paramsStr != "" {
		for _, pair := range strings.Split(paramsStr, ",") {
			kv := strings.SplitN(pair, "=", 2)
			if len(kv) != 2 {
				return domain.Transition{}, fmt.Errorf("invalid parameter format, expected 'key=value', got: %s", pair)
			}
			params[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}

	return r.Create(name, params)
}

// newTransition reads the parameters every spec shares: a required date and
// an optional label.
func newTransition(kind string, params map[string]string) (domain.Transition, error) {
	dateStr, ok := params["date"]
	if !ok {
		return domain.Transition{}, fmt.Errorf("%s requires 'date' parameter", kind)
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return domain.Transition{}, fmt.Errorf("invalid date format, expected YYYY-MM-DD: %w", err)
	}

	label := params["label"]
	if label == "" {
		label = strings.ReplaceAll(kind, "_", " ")
	}
	return domain.Transition{
		ID:            fmt.Sprintf("%s-%s", kind, dateStr),
		EffectiveDate: date,
		Label:         label,
	}, nil
}

// decimalParam parses an optional decimal; a missing key yields nil.
func decimalParam(params map[string]string, key string) (*decimal.Decimal, error) {
	raw, ok := params[key]
	if !ok {
		return nil, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return &v, nil
}

func createSalaryChange(params map[string]string) (domain.Transition, error) {
	t, err := newTransition("salary_change", params)
	if err != nil {
		return t, err
	}
	salary, err := decimalParam(params, "salary")
	if err != nil {
		return t, err
	}
	if salary == nil {
		return t, fmt.Errorf("salary_change requires 'salary' parameter")
	}
	t.Changes.AnnualSalary = salary

	if raw, ok := params["frequency"]; ok {
		frequency, known := dateutil.ParseInterval(raw)
		if !known {
			return t, fmt.Errorf("unknown frequency: %s", raw)
		}
		t.Changes.SalaryFrequency = &frequency
	}
	return t, nil
}

func createExpenseChange(params map[string]string) (domain.Transition, error) {
	t, err := newTransition("expense_change", params)
	if err != nil {
		return t, err
	}
	if t.Changes.MonthlyLivingExpenses, err = decimalParam(params, "living"); err != nil {
		return t, err
	}
	if t.Changes.MonthlyHousingCost, err = decimalParam(params, "housing"); err != nil {
		return t, err
	}
	if t.Changes.MonthlyLivingExpenses == nil && t.Changes.MonthlyHousingCost == nil {
		return t, fmt.Errorf("expense_change requires 'living' or 'housing' parameter")
	}
	return t, nil
}

func createInvestmentChange(params map[string]string) (domain.Transition, error) {
	t, err := newTransition("investment_change", params)
	if err != nil {
		return t, err
	}
	if t.Changes.InvestmentMonthlyContribution, err = decimalParam(params, "contribution"); err != nil {
		return t, err
	}
	if t.Changes.InvestmentReturnRate, err = decimalParam(params, "return"); err != nil {
		return t, err
	}
	if t.Changes.InvestmentMonthlyContribution == nil && t.Changes.InvestmentReturnRate == nil {
		return t, fmt.Errorf("investment_change requires 'contribution' or 'return' parameter")
	}
	return t, nil
}

// createExtraRepayment sets a new loan payment. Without a 'loan' parameter
// it changes the single legacy loan.
func createExtraRepayment(params map[string]string) (domain.Transition, error) {
	t, err := newTransition("extra_repayment", params)
	if err != nil {
		return t, err
	}
	payment, err := decimalParam(params, "payment")
	if err != nil {
		return t, err
	}
	if payment == nil {
		return t, fmt.Errorf("extra_repayment requires 'payment' parameter")
	}

	loanID, ok := params["loan"]
	if !ok {
		t.Changes.LoanPayment = payment
		return t, nil
	}
	t.Changes.LoanUpdates = map[string]domain.LoanPatch{loanID: {Payment: payment}}
	return t, nil
}

func createTaxRateChange(params map[string]string) (domain.Transition, error) {
	t, err := newTransition("tax_rate_change", params)
	if err != nil {
		return t, err
	}
	rate, err := decimalParam(params, "rate")
	if err != nil {
		return t, err
	}
	if rate == nil {
		return t, fmt.Errorf("tax_rate_change requires 'rate' parameter")
	}
	t.Changes.TaxRate = rate
	return t, nil
}

func createRetirementContributionChange(params map[string]string) (domain.Transition, error) {
	t, err := newTransition("retirement_contribution_change", params)
	if err != nil {
		return t, err
	}
	rate, err := decimalParam(params, "rate")
	if err != nil {
		return t, err
	}
	if rate == nil {
		return t, fmt.Errorf("retirement_contribution_change requires 'rate' parameter")
	}

	accountID, ok := params["account"]
	if !ok {
		t.Changes.RetirementContributionRate = rate
		return t, nil
	}
	t.Changes.AccountUpdates = map[string]domain.AccountPatch{accountID: {ContributionRate: rate}}
	return t, nil
}
