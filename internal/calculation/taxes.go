package calculation

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TaxPolicy computes annual income tax from annual taxable income. The engine
// charges one period's share of the tax on the recurring annual income, plus
// the extra tax a one-off payment adds on top of it in the period it is paid.
type TaxPolicy interface {
	AnnualTax(taxableIncome decimal.Decimal) decimal.Decimal
	Name() string
}

// FlatTax charges a single rate on all taxable income.
type FlatTax struct {
	Rate decimal.Decimal
}

// AnnualTax implements TaxPolicy.
func (f FlatTax) AnnualTax(taxableIncome decimal.Decimal) decimal.Decimal {
	if !taxableIncome.IsPositive() || !f.Rate.IsPositive() {
		return decimal.Zero
	}
	return taxableIncome.Mul(f.Rate)
}

func (FlatTax) Name() string { return "flat" }

// TaxBracket is one marginal band. A zero Max means the band is unbounded.
type TaxBracket struct {
	Min  decimal.Decimal `yaml:"min" json:"min"`
	Max  decimal.Decimal `yaml:"max" json:"max"`
	Rate decimal.Decimal `yaml:"rate" json:"rate"`
}

// BracketTax applies marginal brackets after a tax-free threshold.
type BracketTax struct {
	TaxFreeThreshold decimal.Decimal
	Brackets         []TaxBracket
}

// NewBracketTax returns a policy over the given brackets, which must be
// sorted by Min.
func NewBracketTax(threshold decimal.Decimal, brackets ...TaxBracket) *BracketTax {
	return &BracketTax{TaxFreeThreshold: threshold, Brackets: brackets}
}

// AnnualTax implements TaxPolicy.
func (b *BracketTax) AnnualTax(taxableIncome decimal.Decimal) decimal.Decimal {
	income := taxableIncome.Sub(b.TaxFreeThreshold)
	if !income.IsPositive() {
		return decimal.Zero
	}

	total := decimal.Zero
	for _, bracket := range b.Brackets {
		if income.LessThanOrEqual(bracket.Min) {
			break
		}
		upper := income
		if bracket.Max.IsPositive() {
			upper = decimal.Min(income, bracket.Max)
		}
		inBracket := upper.Sub(bracket.Min)
		if inBracket.IsPositive() {
			total = total.Add(inBracket.Mul(bracket.Rate))
		}
	}
	return total
}

func (*BracketTax) Name() string { return "brackets" }

// NewTaxPolicy returns the policy for a configured tax model. Only
// "brackets" with at least one bracket yields a policy; any other model
// returns nil, which leaves the engine on each parameter set's flat tax_rate.
func NewTaxPolicy(model string, threshold decimal.Decimal, brackets []TaxBracket) TaxPolicy {
	if strings.EqualFold(model, "brackets") && len(brackets) > 0 {
		return NewBracketTax(threshold, brackets...)
	}
	return nil
}
