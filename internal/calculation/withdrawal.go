package calculation

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultWithdrawalRate is the share of net worth assumed to be drawable
// each year without exhausting it.
var DefaultWithdrawalRate = decimal.NewFromFloat(0.04)

// ConservativeWithdrawalRate caps the rate for the "conservative" policy.
var ConservativeWithdrawalRate = decimal.NewFromFloat(0.03)

// WithdrawalPolicy converts net worth into a sustainable annual income.
type WithdrawalPolicy interface {
	SustainableIncome(netWorth decimal.Decimal) decimal.Decimal
	Name() string
}

// PercentageWithdrawal draws a fixed fraction of net worth per year.
type PercentageWithdrawal struct {
	Rate decimal.Decimal
}

// SustainableIncome implements WithdrawalPolicy.
func (p PercentageWithdrawal) SustainableIncome(netWorth decimal.Decimal) decimal.Decimal {
	return netWorth.Mul(p.Rate)
}

func (PercentageWithdrawal) Name() string { return "percentage" }

// NewWithdrawalPolicy returns the named policy: "percentage" (the default for
// unknown names) or "conservative", which caps the rate at 3%. A non-positive
// rate uses DefaultWithdrawalRate.
func NewWithdrawalPolicy(name string, rate decimal.Decimal) WithdrawalPolicy {
	if !rate.IsPositive() {
		rate = DefaultWithdrawalRate
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "conservative":
		return PercentageWithdrawal{Rate: decimal.Min(rate, ConservativeWithdrawalRate)}
	default:
		return PercentageWithdrawal{Rate: rate}
	}
}
