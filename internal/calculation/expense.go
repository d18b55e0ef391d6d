package calculation

import (
	"time"

	"github.com/rgehrsitz/fincast/internal/domain"
	"github.com/rgehrsitz/fincast/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// CalculatePeriodExpenses returns living costs, housing costs and any
// itemised expenses active at date, converted to one period.
func CalculatePeriodExpenses(params *domain.UserParameters, date time.Time, interval dateutil.Interval) decimal.Decimal {
	monthly := params.MonthlyLivingExpenses.Add(params.MonthlyHousingCost)
	total := dateutil.PaymentToPeriod(monthly, dateutil.Month, interval)

	for _, item := range params.Expenses {
		if !item.ActiveOn(date) {
			continue
		}
		total = total.Add(dateutil.PaymentToPeriod(item.Amount, item.Frequency, interval))
	}
	return total
}
