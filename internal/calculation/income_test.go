package calculation

import (
	"testing"
	"time"

	"github.com/rgehrsitz/fincast/internal/domain"
	"github.com/rgehrsitz/fincast/pkg/dateutil"
	"github.com/stretchr/testify/assert"
)

func TestCalculatePeriodIncome_Salary(t *testing.T) {
	tests := []struct {
		name      string
		frequency dateutil.Interval
		interval  dateutil.Interval
		want      float64
	}{
		{"monthly pay, monthly periods", dateutil.Month, dateutil.Month, 6500},
		{"fortnightly pay, monthly periods", dateutil.Fortnight, dateutil.Month, 6500},
		{"unset frequency", "", dateutil.Month, 6500},
		{"monthly pay, weekly periods", dateutil.Month, dateutil.Week, 1500},
		{"weekly pay, yearly periods", dateutil.Week, dateutil.Year, 78000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &domain.UserParameters{AnnualSalary: d(78000), SalaryFrequency: tt.frequency}
			end := dateutil.AdvanceDate(jan2024, tt.interval)
			income := CalculatePeriodIncome(p, jan2024, end, tt.interval)
			assertMoney(t, tt.want, income.Gross)
			assert.True(t, income.Gross.Equal(income.Taxable), "salary is fully taxable")
		})
	}
}

func TestCalculatePeriodIncome_Sources(t *testing.T) {
	ends := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	starts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	payday := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)

	p := &domain.UserParameters{
		AnnualSalary: d(999999),
		IncomeSources: map[string]domain.IncomeSource{
			"contract": {Amount: d(5000), Frequency: dateutil.Month, BeforeTax: true, EndDate: &ends},
			"pension":  {Amount: d(1200), Frequency: dateutil.Month, BeforeTax: true, StartDate: &starts},
			"gift":     {Amount: d(300), Frequency: dateutil.Month},
			"bonus":    {Amount: d(10000), OneOff: true, Date: &payday, BeforeTax: true},
		},
	}

	tests := []struct {
		name        string
		month       time.Month
		wantGross   float64
		wantTaxable float64
	}{
		{"january", time.January, 5300, 5000},
		{"march adds the pension", time.March, 6500, 6200},
		{"april pays the bonus", time.April, 16500, 16200},
		{"july drops the contract", time.July, 1500, 1200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Date(2024, tt.month, 1, 0, 0, 0, 0, time.UTC)
			income := CalculatePeriodIncome(p, start, dateutil.AdvanceDate(start, dateutil.Month), dateutil.Month)
			assertMoney(t, tt.wantGross, income.Gross)
			assertMoney(t, tt.wantTaxable, income.Taxable)
		})
	}
}

func TestCalculatePeriodIncome_OneOffBoundaries(t *testing.T) {
	payday := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	p := &domain.UserParameters{IncomeSources: map[string]domain.IncomeSource{
		"bonus": {Amount: d(1000), OneOff: true, Date: &payday},
	}}

	jan := CalculatePeriodIncome(p, jan2024, payday, dateutil.Month)
	feb := CalculatePeriodIncome(p, payday, dateutil.AdvanceDate(payday, dateutil.Month), dateutil.Month)

	assert.True(t, jan.Gross.IsZero(), "the period end is exclusive")
	assertMoney(t, 1000, feb.Gross)
}

func TestAnnualGrossIncome(t *testing.T) {
	ended := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	payday := jan2024

	assertMoney(t, 90000, AnnualGrossIncome(&domain.UserParameters{AnnualSalary: d(90000)}, jan2024))

	p := &domain.UserParameters{IncomeSources: map[string]domain.IncomeSource{
		"salary": {Amount: d(3000), Frequency: dateutil.Fortnight, BeforeTax: true},
		"old":    {Amount: d(100), Frequency: dateutil.Week, BeforeTax: true, EndDate: &ended},
		"rent":   {Amount: d(2000), Frequency: dateutil.Month},
		"bonus":  {Amount: d(5000), OneOff: true, Date: &payday, BeforeTax: true},
	}}
	assertMoney(t, 78000, AnnualGrossIncome(p, jan2024))
}

func TestCalculatePeriodExpenses(t *testing.T) {
	from := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	p := &domain.UserParameters{
		MonthlyLivingExpenses: d(3000),
		MonthlyHousingCost:    d(1500),
		Expenses: map[string]domain.ExpenseItem{
			"school": {Amount: d(260), Frequency: dateutil.Week, StartDate: &from},
			"rates":  {Amount: d(2400), Frequency: dateutil.Year},
		},
	}

	assertMoney(t, 4700, CalculatePeriodExpenses(p, jan2024, dateutil.Month))
	assertMoney(t, 4700+260*52/12.0, CalculatePeriodExpenses(p, from, dateutil.Month))
	assertMoney(t, (4500*12+2400)/52.0, CalculatePeriodExpenses(p, jan2024, dateutil.Week))
}

func TestCalculatePeriodIncome_OneOffTaxable(t *testing.T) {
	payday := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	p := &domain.UserParameters{IncomeSources: map[string]domain.IncomeSource{
		"salary": {Amount: d(4000), Frequency: dateutil.Month, BeforeTax: true},
		"bonus":  {Amount: d(3000), OneOff: true, Date: &payday, BeforeTax: true},
		"gift":   {Amount: d(500), OneOff: true, Date: &payday},
	}}

	income := CalculatePeriodIncome(p, jan2024, dateutil.AdvanceDate(jan2024, dateutil.Month), dateutil.Month)
	assertMoney(t, 7500, income.Gross)
	assertMoney(t, 7000, income.Taxable)
	assertMoney(t, 3000, income.OneOffTaxable)

	flat := CalculatePeriodIncome(&domain.UserParameters{AnnualSalary: d(60000)}, jan2024, payday, dateutil.Month)
	assert.True(t, flat.OneOffTaxable.IsZero())
}
