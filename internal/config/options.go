package config

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/fincast/internal/calculation"
	"github.com/rgehrsitz/fincast/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// EngineOptions selects the period length and policies for a run
type EngineOptions struct {
	Interval   dateutil.Interval `yaml:"interval,omitempty" json:"interval,omitempty"`
	Tax        TaxConfig         `yaml:"tax,omitempty" json:"tax,omitempty"`
	Withdrawal WithdrawalConfig  `yaml:"withdrawal,omitempty" json:"withdrawal,omitempty"`
}

// TaxConfig chooses between the flat tax_rate and a marginal bracket table
type TaxConfig struct {
	Model            string                   `yaml:"model,omitempty" json:"model,omitempty"`
	TaxFreeThreshold decimal.Decimal          `yaml:"tax_free_threshold,omitempty" json:"tax_free_threshold,omitempty"`
	Brackets         []calculation.TaxBracket `yaml:"brackets,omitempty" json:"brackets,omitempty"`
}

// WithdrawalConfig chooses the policy used to decide retirement readiness
type WithdrawalConfig struct {
	Policy string          `yaml:"policy,omitempty" json:"policy,omitempty"`
	Rate   decimal.Decimal `yaml:"rate,omitempty" json:"rate,omitempty"`
}

// Validate checks the options. An empty interval means monthly.
func (o EngineOptions) Validate() error {
	if o.Interval != "" && !o.Interval.Valid() {
		return fmt.Errorf("unknown interval %q", o.Interval)
	}

	switch strings.ToLower(o.Tax.Model) {
	case "", "flat":
	case "brackets":
		if len(o.Tax.Brackets) == 0 {
			return fmt.Errorf("bracket tax model requires at least one bracket")
		}
		for i, b := range o.Tax.Brackets {
			if b.Rate.IsNegative() || b.Min.IsNegative() {
				return fmt.Errorf("tax bracket %d: min and rate cannot be negative", i)
			}
			if !b.Max.IsZero() && b.Max.LessThanOrEqual(b.Min) {
				return fmt.Errorf("tax bracket %d: max must be above min", i)
			}
			if i > 0 && b.Min.LessThan(o.Tax.Brackets[i-1].Min) {
				return fmt.Errorf("tax brackets must be sorted by min")
			}
		}
	default:
		return fmt.Errorf("unknown tax model %q", o.Tax.Model)
	}
	if o.Tax.TaxFreeThreshold.IsNegative() {
		return fmt.Errorf("tax free threshold cannot be negative")
	}

	switch strings.ToLower(o.Withdrawal.Policy) {
	case "", "percentage", "conservative":
	default:
		return fmt.Errorf("unknown withdrawal policy %q", o.Withdrawal.Policy)
	}
	if o.Withdrawal.Rate.IsNegative() || o.Withdrawal.Rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("withdrawal rate must be between 0 and 1")
	}
	return nil
}

// BuildEngine returns an engine configured from the options. The flat model
// leaves TaxPolicy unset so each parameter set's own tax_rate applies.
func (o EngineOptions) BuildEngine() *calculation.Engine {
	engine := calculation.NewEngine()
	if o.Interval != "" {
		engine.Interval = o.Interval.Normalize()
	}
	if policy := calculation.NewTaxPolicy(o.Tax.Model, o.Tax.TaxFreeThreshold, o.Tax.Brackets); policy != nil {
		engine.TaxPolicy = policy
	}
	engine.WithdrawalPolicy = calculation.NewWithdrawalPolicy(o.Withdrawal.Policy, o.Withdrawal.Rate)
	return engine
}
