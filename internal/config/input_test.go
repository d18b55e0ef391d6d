package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rgehrsitz/fincast/internal/calculation"
	"github.com/rgehrsitz/fincast/internal/domain"
	"github.com/rgehrsitz/fincast/pkg/dateutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
name: family plan
base_parameters:
  start_date: 2024-01-01
  simulation_years: 10
  cash_balance: "25000"
  annual_salary: "95000"
  salary_frequency: fortnightly
  monthly_living_expenses: "3200"
  monthly_housing_cost: "0"
  loans:
    - id: home
      principal: "450000"
      interest_rate: "0.062"
      payment: "3100"
      payment_frequency: monthly
      has_offset: true
      offset_balance: "15000"
  retirement_accounts:
    - id: super
      balance: "80000"
      contribution_rate: "0.11"
      return_rate: "0.07"
  investment:
    monthly_contribution: "500"
    annual_return_rate: "0.06"
    current_balance: "10000"
  tax_rate: "0.3"
  retirement:
    desired_annual_income: "70000"
    target_age: 60
    current_age: 38
transitions:
  - label: Pay rise
    effective_date: 2026-07-01
    changes:
      annual_salary: "110000"
  - id: refi
    label: Refinance
    effective_date: 2027-01-01
    changes:
      loan_updates:
        home:
          interest_rate: "0.055"
engine:
  interval: month
  withdrawal:
    policy: conservative
`

const sampleJSON = `{
  "base_parameters": {
    "start_date": "2024-01-01T00:00:00Z",
    "simulation_years": 5,
    "cash_balance": 10000,
    "annual_salary": 60000,
    "monthly_living_expenses": 2000,
    "monthly_housing_cost": 1200,
    "investment": {"monthly_contribution": 0, "annual_return_rate": 0.05, "current_balance": 0},
    "tax_rate": 0.25,
    "retirement": {"desired_annual_income": 40000, "target_age": 65, "current_age": 30}
  }
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func validParams() domain.UserParameters {
	return domain.UserParameters{
		StartDate:             time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		SimulationYears:       10,
		CashBalance:           decimal.NewFromInt(5000),
		AnnualSalary:          decimal.NewFromInt(70000),
		MonthlyLivingExpenses: decimal.NewFromInt(2500),
		TaxRate:               decimal.NewFromFloat(0.3),
		Retirement:            domain.RetirementTarget{DesiredAnnualIncome: decimal.NewFromInt(50000), TargetAge: 65, CurrentAge: 35},
	}
}

func TestLoadFromFile_YAML(t *testing.T) {
	path := writeFile(t, "plan.yaml", sampleYAML)

	file, err := NewInputParser().LoadFromFile(path)
	require.NoError(t, err)

	p := file.BaseParameters
	assert.Equal(t, "family plan", file.Name)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), p.StartDate)
	assert.Equal(t, 10, p.SimulationYears)
	assert.True(t, p.AnnualSalary.Equal(decimal.NewFromInt(95000)))
	assert.Equal(t, dateutil.Interval("fortnightly"), p.SalaryFrequency)

	require.True(t, p.Loans.Present)
	require.Len(t, p.Loans.Items, 1)
	assert.Equal(t, "home", p.Loans.Items[0].ID)
	assert.True(t, p.Loans.Items[0].HasOffset)
	require.Len(t, p.RetirementAccounts.Items, 1)

	require.Len(t, file.Transitions, 2)
	assert.NotEmpty(t, file.Transitions[0].ID, "missing ids are generated")
	assert.Equal(t, "refi", file.Transitions[1].ID)
	assert.Contains(t, file.Transitions[1].Changes.LoanUpdates, "home")

	assert.Equal(t, dateutil.Month, file.Engine.Interval)
	assert.Equal(t, "conservative", file.Engine.Withdrawal.Policy)
}

func TestLoadFromFile_JSON(t *testing.T) {
	path := writeFile(t, "plan.json", sampleJSON)

	file, err := NewInputParser().LoadFromFile(path)
	require.NoError(t, err)

	p := file.BaseParameters
	assert.Equal(t, 5, p.SimulationYears)
	assert.True(t, p.TaxRate.Equal(decimal.NewFromFloat(0.25)))
	assert.False(t, p.Loans.Present, "absent loans keep the legacy shape")
	assert.Empty(t, file.Transitions)
}

func TestLoadFromFile_Errors(t *testing.T) {
	parser := NewInputParser()

	_, err := parser.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")

	_, err = parser.LoadFromFile(writeFile(t, "bad.yaml", "base_parameters: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")

	_, err = parser.LoadFromFile(writeFile(t, "bad.json", "{"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse JSON")

	_, err = parser.LoadFromFile(writeFile(t, "zero.yaml", "base_parameters:\n  start_date: 2024-01-01\n  simulation_years: 0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")

	_, err = parser.Parse([]byte(sampleJSON[:len(sampleJSON)-1]+`, "engine": {"interval": "daily"}}`), FormatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine options validation failed")
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatForPath("a.yaml"))
	assert.Equal(t, FormatYAML, FormatForPath("A.YML"))
	assert.Equal(t, FormatJSON, FormatForPath("a.json"))
	assert.Equal(t, FormatJSON, FormatForPath("noext"))
}

func TestValidateParameters(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *domain.UserParameters)
		wantErr string
	}{
		{"valid", func(p *domain.UserParameters) {}, ""},
		{"missing start date", func(p *domain.UserParameters) { p.StartDate = time.Time{} }, "start date is required"},
		{"too many years", func(p *domain.UserParameters) { p.SimulationYears = 101 }, "simulation years"},
		{"negative cash", func(p *domain.UserParameters) { p.CashBalance = decimal.NewFromInt(-1) }, "cash balance cannot be negative"},
		{"rate at -100%", func(p *domain.UserParameters) { p.LoanInterestRate = decimal.NewFromInt(-1) }, "loan interest rate must be greater than -100%"},
		{"negative rate above -100% is fine", func(p *domain.UserParameters) { p.Investment.AnnualReturnRate = decimal.NewFromFloat(-0.2) }, ""},
		{"negative age", func(p *domain.UserParameters) { p.Retirement.CurrentAge = -1 }, "ages cannot be negative"},
		{
			"one-off without a date",
			func(p *domain.UserParameters) {
				p.IncomeSources = map[string]domain.IncomeSource{"bonus": {Amount: decimal.NewFromInt(1), OneOff: true}}
			},
			"one-off income requires a date",
		},
		{
			"loan without id",
			func(p *domain.UserParameters) {
				p.Loans = domain.NewLoanSet(domain.Loan{Principal: decimal.NewFromInt(1)})
			},
			"id is required",
		},
		{
			"duplicate loan ids",
			func(p *domain.UserParameters) {
				p.Loans = domain.NewLoanSet(domain.Loan{ID: "a"}, domain.Loan{ID: "a"})
			},
			`duplicate loan id "a"`,
		},
		{
			"negative account balance",
			func(p *domain.UserParameters) {
				p.RetirementAccounts = domain.NewAccountSet(domain.RetirementAccount{ID: "s", Balance: decimal.NewFromInt(-5)})
			},
			"balance cannot be negative",
		},
	}

	parser := NewInputParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			err := parser.ValidateParameters(&p)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateConfiguration_Transitions(t *testing.T) {
	parser := NewInputParser()
	rate := decimal.NewFromFloat(0.05)
	negative := decimal.NewFromInt(-100)

	cfg := &domain.SimulationConfiguration{
		BaseParameters: validParams(),
		Transitions: []domain.Transition{{
			ID:            "refi",
			EffectiveDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			Changes:       domain.ParameterPatch{LoanUpdates: map[string]domain.LoanPatch{"ghost": {InterestRate: &rate}}},
		}},
	}
	err := parser.ValidateConfiguration(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transition validation failed")
	assert.Contains(t, err.Error(), `loan "ghost" not found`)

	cfg.Transitions[0].Changes = domain.ParameterPatch{AnnualSalary: &negative}
	require.Error(t, parser.ValidateConfiguration(cfg))

	cfg.Transitions[0].Changes = domain.ParameterPatch{TaxRate: &rate}
	cfg.Transitions = append(cfg.Transitions, cfg.Transitions[0])
	err = parser.ValidateConfiguration(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate transition id")

	cfg.Transitions[1].ID = "second"
	assert.NoError(t, parser.ValidateConfiguration(cfg))

	assert.Error(t, parser.ValidateConfiguration(nil))
}

func TestAssignTransitionIDs(t *testing.T) {
	cfg := &domain.SimulationConfiguration{Transitions: []domain.Transition{{}, {ID: "kept"}, {}}}
	AssignTransitionIDs(cfg)

	assert.NotEmpty(t, cfg.Transitions[0].ID)
	assert.Equal(t, "kept", cfg.Transitions[1].ID)
	assert.NotEqual(t, cfg.Transitions[0].ID, cfg.Transitions[2].ID)
}

func TestWarnings(t *testing.T) {
	p := validParams()
	p.SalaryFrequency = "quarterly"
	p.Expenses = map[string]domain.ExpenseItem{"gym": {Amount: decimal.NewFromInt(20), Frequency: "daily"}}

	cfg := &domain.SimulationConfiguration{
		BaseParameters: p,
		Transitions: []domain.Transition{
			{EffectiveDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
			{EffectiveDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
	}

	assert.Equal(t, []string{
		`salary_frequency: unknown frequency "quarterly", using monthly`,
		`expenses.gym: unknown frequency "daily", using monthly`,
		"transitions are not in chronological order; they are applied by effective date",
	}, Warnings(cfg))

	clean := &domain.SimulationConfiguration{BaseParameters: validParams()}
	assert.Empty(t, Warnings(clean))
}

func TestEngineOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    EngineOptions
		wantErr string
	}{
		{"defaults", EngineOptions{}, ""},
		{"weekly", EngineOptions{Interval: "weekly"}, ""},
		{"bad interval", EngineOptions{Interval: "daily"}, "unknown interval"},
		{"brackets without table", EngineOptions{Tax: TaxConfig{Model: "brackets"}}, "at least one bracket"},
		{"unknown tax model", EngineOptions{Tax: TaxConfig{Model: "progressive"}}, "unknown tax model"},
		{
			"unsorted brackets",
			EngineOptions{Tax: TaxConfig{Model: "brackets", Brackets: []calculation.TaxBracket{
				{Min: decimal.NewFromInt(50000), Rate: decimal.NewFromFloat(0.3)},
				{Min: decimal.NewFromInt(10000), Max: decimal.NewFromInt(50000), Rate: decimal.NewFromFloat(0.2)},
			}}},
			"sorted by min",
		},
		{"unknown withdrawal", EngineOptions{Withdrawal: WithdrawalConfig{Policy: "yolo"}}, "unknown withdrawal policy"},
		{"withdrawal rate above one", EngineOptions{Withdrawal: WithdrawalConfig{Rate: decimal.NewFromInt(2)}}, "withdrawal rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEngineOptions_BuildEngine(t *testing.T) {
	engine := EngineOptions{}.BuildEngine()
	assert.Equal(t, dateutil.Month, engine.Interval)
	assert.Nil(t, engine.TaxPolicy, "flat tax reads tax_rate from the parameters")
	assert.Equal(t, "percentage", engine.WithdrawalPolicy.Name())

	engine = EngineOptions{
		Interval: "fortnightly",
		Tax: TaxConfig{Model: "brackets", Brackets: []calculation.TaxBracket{
			{Min: decimal.Zero, Rate: decimal.NewFromFloat(0.2)},
		}},
		Withdrawal: WithdrawalConfig{Policy: "conservative", Rate: decimal.NewFromFloat(0.05)},
	}.BuildEngine()

	assert.Equal(t, dateutil.Fortnight, engine.Interval)
	require.NotNil(t, engine.TaxPolicy)
	assert.Equal(t, "brackets", engine.TaxPolicy.Name())
	income := engine.WithdrawalPolicy.SustainableIncome(decimal.NewFromInt(1000000))
	assert.True(t, income.Equal(decimal.NewFromInt(30000)), "conservative caps the rate at 3%%, got %s", income)
}

func TestEngineOptions_BuildEngineKeepsTaxFreeThreshold(t *testing.T) {
	engine := EngineOptions{
		Tax: TaxConfig{
			Model:            "brackets",
			TaxFreeThreshold: decimal.NewFromInt(10000),
			Brackets:         []calculation.TaxBracket{{Min: decimal.Zero, Rate: decimal.NewFromFloat(0.2)}},
		},
	}.BuildEngine()

	require.NotNil(t, engine.TaxPolicy)
	assert.True(t, engine.TaxPolicy.AnnualTax(decimal.NewFromInt(9000)).IsZero())
	assert.True(t, engine.TaxPolicy.AnnualTax(decimal.NewFromInt(20000)).Equal(decimal.NewFromInt(2000)))
}

func TestFile_JSONWithoutTransitions(t *testing.T) {
	file := &File{
		Name:                    "no changes",
		SimulationConfiguration: domain.SimulationConfiguration{BaseParameters: validParams()},
	}
	file.BaseParameters.Loans = domain.NewLoanSet()

	data, err := json.Marshal(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"transitions":[]`)

	var decoded File
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "no changes", decoded.Name)
	assert.Empty(t, decoded.Transitions)
	assert.True(t, decoded.BaseParameters.Loans.Present)
	assert.True(t, decoded.BaseParameters.AnnualSalary.Equal(decimal.NewFromInt(70000)))

	parsed, err := NewInputParser().Parse(data, FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, parsed.Transitions)
}
