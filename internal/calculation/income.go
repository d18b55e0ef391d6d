package calculation

import (
	"time"

	"github.com/rgehrsitz/fincast/internal/domain"
	"github.com/rgehrsitz/fincast/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// PeriodIncome is the income earned in one period.
type PeriodIncome struct {
	Gross         decimal.Decimal // everything received before tax
	Taxable       decimal.Decimal // the part of Gross that is subject to income tax
	OneOffTaxable decimal.Decimal // the part of Taxable paid by one-off sources
}

// CalculatePeriodIncome returns the income for the period [start, end). When
// income sources are configured they replace the flat salary; otherwise the
// annual salary is spread evenly across the periods of a year.
func CalculatePeriodIncome(params *domain.UserParameters, start, end time.Time, interval dateutil.Interval) PeriodIncome {
	if len(params.IncomeSources) == 0 {
		salary := salaryForPeriod(params, interval)
		return PeriodIncome{Gross: salary, Taxable: salary, OneOffTaxable: decimal.Zero}
	}

	income := PeriodIncome{Gross: decimal.Zero, Taxable: decimal.Zero, OneOffTaxable: decimal.Zero}
	for _, source := range params.IncomeSources {
		if !source.ActiveOn(start, end) {
			continue
		}
		amount := source.Amount
		if !source.OneOff {
			amount = dateutil.PaymentToPeriod(source.Amount, source.Frequency, interval)
		}
		income.Gross = income.Gross.Add(amount)
		if source.BeforeTax {
			income.Taxable = income.Taxable.Add(amount)
			if source.OneOff {
				income.OneOffTaxable = income.OneOffTaxable.Add(amount)
			}
		}
	}
	return income
}

// AnnualGrossIncome returns the annualised recurring taxable income in effect
// at date. It is the tax base for a period starting at date; one-off sources
// are left out and taxed once in the period that pays them.
func AnnualGrossIncome(params *domain.UserParameters, date time.Time) decimal.Decimal {
	if len(params.IncomeSources) == 0 {
		return params.AnnualSalary
	}
	total := decimal.Zero
	for _, source := range params.IncomeSources {
		if source.OneOff || !source.BeforeTax {
			continue
		}
		if !source.ActiveOn(date, date) {
			continue
		}
		total = total.Add(dateutil.PaymentToPeriod(source.Amount, source.Frequency, dateutil.Year))
	}
	return total
}

// salaryForPeriod converts the flat salary into one period's pay. The pay
// frequency only describes how the salary is paid out; the amount per
// period depends on the simulation interval.
func salaryForPeriod(params *domain.UserParameters, interval dateutil.Interval) decimal.Decimal {
	frequency := params.SalaryFrequency.Normalize()
	perPayment := params.AnnualSalary.Div(decimal.NewFromInt(int64(dateutil.PeriodsPerYear(frequency))))
	return dateutil.PaymentToPeriod(perPayment, frequency, interval)
}
