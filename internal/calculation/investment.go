package calculation

import (
	"github.com/shopspring/decimal"
)

// GrowBalance applies one period of return to the balance and to the
// contribution made during the period.
func GrowBalance(balance, contribution, periodRate decimal.Decimal) decimal.Decimal {
	growth := decimal.NewFromInt(1).Add(periodRate)
	return balance.Mul(growth).Add(contribution.Mul(growth))
}
