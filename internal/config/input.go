package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rgehrsitz/fincast/internal/domain"
	"github.com/rgehrsitz/fincast/internal/transform"
	"github.com/rgehrsitz/fincast/pkg/dateutil"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Limits on the projection horizon
const (
	MinSimulationYears = 1
	MaxSimulationYears = 100
)

// Format identifies the encoding of a configuration document
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatForPath picks the format from a file extension: .yaml and .yml are
// YAML, everything else is JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// File is a complete configuration document: the simulation inputs plus the
// engine options used to run them.
type File struct {
	Name                           string `yaml:"name,omitempty" json:"name,omitempty"`
	domain.SimulationConfiguration `yaml:",inline"`
	Engine                         EngineOptions `yaml:"engine,omitempty" json:"engine,omitempty"`
}

// fileDocument is the JSON layout of a File. Transitions is always written,
// as [] when there are none.
type fileDocument struct {
	Name           string                `json:"name,omitempty"`
	BaseParameters domain.UserParameters `json:"base_parameters"`
	Transitions    []domain.Transition   `json:"transitions"`
	Engine         EngineOptions         `json:"engine"`
}

// MarshalJSON writes the configuration with named fields rather than an
// inline embedding.
func (f File) MarshalJSON() ([]byte, error) {
	transitions := f.Transitions
	if transitions == nil {
		transitions = []domain.Transition{}
	}
	return json.Marshal(fileDocument{
		Name:           f.Name,
		BaseParameters: f.BaseParameters,
		Transitions:    transitions,
		Engine:         f.Engine,
	})
}

// UnmarshalJSON reads the layout written by MarshalJSON.
func (f *File) UnmarshalJSON(data []byte) error {
	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*f = File{
		Name: doc.Name,
		SimulationConfiguration: domain.SimulationConfiguration{
			BaseParameters: doc.BaseParameters,
			Transitions:    doc.Transitions,
		},
		Engine: doc.Engine,
	}
	return nil
}

// InputParser handles parsing of input configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads configuration from a YAML or JSON file
func (ip *InputParser) LoadFromFile(filename string) (*File, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data, FormatForPath(filename))
}

// Parse decodes, completes and validates a configuration document
func (ip *InputParser) Parse(data []byte, format Format) (*File, error) {
	var file File
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	}

	AssignTransitionIDs(&file.SimulationConfiguration)

	if err := ip.ValidateConfiguration(&file.SimulationConfiguration); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	if err := file.Engine.Validate(); err != nil {
		return nil, fmt.Errorf("engine options validation failed: %w", err)
	}

	return &file, nil
}

// AssignTransitionIDs gives every transition without an id a random one
func AssignTransitionIDs(cfg *domain.SimulationConfiguration) {
	for i := range cfg.Transitions {
		if cfg.Transitions[i].ID == "" {
			cfg.Transitions[i].ID = uuid.New().String()
		}
	}
}

// ValidateConfiguration validates the base parameters and every transition
func (ip *InputParser) ValidateConfiguration(cfg *domain.SimulationConfiguration) error {
	if cfg == nil {
		return fmt.Errorf("configuration is required")
	}
	if err := ip.ValidateParameters(&cfg.BaseParameters); err != nil {
		return fmt.Errorf("base parameters validation failed: %w", err)
	}

	seen := make(map[string]bool, len(cfg.Transitions))
	for _, t := range cfg.Transitions {
		if t.ID != "" && seen[t.ID] {
			return fmt.Errorf("duplicate transition id %q", t.ID)
		}
		seen[t.ID] = true
	}

	if _, err := transform.ApplyTransitions(&cfg.BaseParameters, cfg.Transitions); err != nil {
		return fmt.Errorf("transition validation failed: %w", err)
	}
	return nil
}

// ValidateParameters validates a single parameter set
func (ip *InputParser) ValidateParameters(p *domain.UserParameters) error {
	if p.StartDate.IsZero() {
		return fmt.Errorf("start date is required")
	}
	if p.SimulationYears < MinSimulationYears || p.SimulationYears > MaxSimulationYears {
		return fmt.Errorf("simulation years must be between %d and %d", MinSimulationYears, MaxSimulationYears)
	}

	amounts := map[string]decimal.Decimal{
		"cash balance":                    p.CashBalance,
		"annual salary":                   p.AnnualSalary,
		"monthly living expenses":         p.MonthlyLivingExpenses,
		"monthly housing cost":            p.MonthlyHousingCost,
		"loan amount":                     p.LoanAmount,
		"loan payment":                    p.LoanPayment,
		"offset balance":                  p.OffsetBalance,
		"retirement balance":              p.RetirementBalance,
		"retirement contribution rate":    p.RetirementContributionRate,
		"investment monthly contribution": p.Investment.MonthlyContribution,
		"investment balance":              p.Investment.CurrentBalance,
		"tax rate":                        p.TaxRate,
		"desired annual income":           p.Retirement.DesiredAnnualIncome,
	}
	if err := nonNegative(amounts); err != nil {
		return err
	}

	rates := map[string]decimal.Decimal{
		"loan interest rate":     p.LoanInterestRate,
		"retirement return rate": p.RetirementReturnRate,
		"investment return rate": p.Investment.AnnualReturnRate,
	}
	if err := aboveMinusOne(rates); err != nil {
		return err
	}

	if p.Retirement.CurrentAge < 0 || p.Retirement.TargetAge < 0 {
		return fmt.Errorf("ages cannot be negative")
	}

	for name, source := range p.IncomeSources {
		if err := validateIncomeSource(source); err != nil {
			return fmt.Errorf("income source %s validation failed: %w", name, err)
		}
	}
	for name, item := range p.Expenses {
		if item.Amount.IsNegative() {
			return fmt.Errorf("expense %s: amount cannot be negative", name)
		}
		if item.StartDate != nil && item.EndDate != nil && item.EndDate.Before(*item.StartDate) {
			return fmt.Errorf("expense %s: end date is before start date", name)
		}
	}

	ids := make(map[string]bool)
	for i, loan := range p.Loans.Items {
		if err := validateLoan(loan); err != nil {
			return fmt.Errorf("loan %d (%s) validation failed: %w", i, loan.ID, err)
		}
		if ids[loan.ID] {
			return fmt.Errorf("duplicate loan id %q", loan.ID)
		}
		ids[loan.ID] = true
	}

	ids = make(map[string]bool)
	for i, account := range p.RetirementAccounts.Items {
		if err := validateAccount(account); err != nil {
			return fmt.Errorf("retirement account %d (%s) validation failed: %w", i, account.ID, err)
		}
		if ids[account.ID] {
			return fmt.Errorf("duplicate retirement account id %q", account.ID)
		}
		ids[account.ID] = true
	}

	return nil
}

func validateIncomeSource(source domain.IncomeSource) error {
	if source.Amount.IsNegative() {
		return fmt.Errorf("amount cannot be negative")
	}
	if source.OneOff && source.Date == nil {
		return fmt.Errorf("one-off income requires a date")
	}
	if source.StartDate != nil && source.EndDate != nil && source.EndDate.Before(*source.StartDate) {
		return fmt.Errorf("end date is before start date")
	}
	return nil
}

func validateLoan(loan domain.Loan) error {
	if loan.ID == "" {
		return fmt.Errorf("id is required")
	}
	if err := nonNegative(map[string]decimal.Decimal{
		"principal":      loan.Principal,
		"payment":        loan.Payment,
		"offset balance": loan.OffsetBalance,
	}); err != nil {
		return err
	}
	return aboveMinusOne(map[string]decimal.Decimal{"interest rate": loan.InterestRate})
}

func validateAccount(account domain.RetirementAccount) error {
	if account.ID == "" {
		return fmt.Errorf("id is required")
	}
	if err := nonNegative(map[string]decimal.Decimal{
		"balance":           account.Balance,
		"contribution rate": account.ContributionRate,
	}); err != nil {
		return err
	}
	return aboveMinusOne(map[string]decimal.Decimal{"return rate": account.ReturnRate})
}

// nonNegative reports the first negative amount in name order
func nonNegative(amounts map[string]decimal.Decimal) error {
	for _, name := range sortedKeys(amounts) {
		if amounts[name].IsNegative() {
			return fmt.Errorf("%s cannot be negative", name)
		}
	}
	return nil
}

// aboveMinusOne reports the first rate at or below -100% in name order
func aboveMinusOne(rates map[string]decimal.Decimal) error {
	minusOne := decimal.NewFromInt(-1)
	for _, name := range sortedKeys(rates) {
		if rates[name].LessThanOrEqual(minusOne) {
			return fmt.Errorf("%s must be greater than -100%%", name)
		}
	}
	return nil
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Warnings lists problems that do not stop a run: unrecognised frequencies,
// which fall back to monthly, and transitions listed out of date order,
// which are applied by effective date regardless.
func Warnings(cfg *domain.SimulationConfiguration) []string {
	var warnings []string
	check := func(where string, f dateutil.Interval) {
		if f != "" && !f.Valid() {
			warnings = append(warnings, fmt.Sprintf("%s: unknown frequency %q, using monthly", where, f))
		}
	}

	p := &cfg.BaseParameters
	check("salary_frequency", p.SalaryFrequency)
	check("loan_payment_frequency", p.LoanPaymentFrequency)
	for _, name := range sortedSourceNames(p.IncomeSources) {
		check("income_sources."+name, p.IncomeSources[name].Frequency)
	}
	for _, name := range sortedExpenseNames(p.Expenses) {
		check("expenses."+name, p.Expenses[name].Frequency)
	}
	for _, loan := range p.Loans.Items {
		check("loans."+loan.ID, loan.PaymentFrequency)
	}

	for i := 1; i < len(cfg.Transitions); i++ {
		if cfg.Transitions[i].EffectiveDate.Before(cfg.Transitions[i-1].EffectiveDate) {
			warnings = append(warnings, "transitions are not in chronological order; they are applied by effective date")
			break
		}
	}
	return warnings
}

func sortedSourceNames(m map[string]domain.IncomeSource) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func sortedExpenseNames(m map[string]domain.ExpenseItem) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
