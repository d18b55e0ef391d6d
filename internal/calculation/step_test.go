package calculation

import (
	"testing"
	"time"

	"github.com/rgehrsitz/fincast/internal/domain"
	"github.com/rgehrsitz/fincast/pkg/dateutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jan2024 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func d(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// mortgageParams is a single legacy loan of $400,000 at 6% repaid at $3,000 a
// month by a household earning $80,000 taxed at 30%.
func mortgageParams() domain.UserParameters {
	return domain.UserParameters{
		StartDate:        jan2024,
		SimulationYears:  1,
		CashBalance:      d(10000),
		AnnualSalary:     d(80000),
		LoanAmount:       d(400000),
		LoanInterestRate: d(0.06),
		LoanPayment:      d(3000),
		TaxRate:          d(0.3),
		Retirement: domain.RetirementTarget{
			DesiredAnnualIncome: d(60000),
			TargetAge:           60,
			CurrentAge:          40,
		},
	}
}

func firstPeriod() Period {
	return Period{Start: jan2024, End: dateutil.AdvanceDate(jan2024, dateutil.Month)}
}

func step(t *testing.T, p domain.UserParameters) domain.FinancialState {
	t.Helper()
	e := NewEngine()
	return e.Step(InitialState(&p), &p, firstPeriod())
}

func assertNetWorthIdentity(t *testing.T, s domain.FinancialState) {
	t.Helper()
	want := s.Cash.Add(s.Investments).Add(s.RetirementSavings).Add(s.OffsetBalance).Sub(s.LoanBalance)
	assert.True(t, s.NetWorth.Equal(want), "net worth %s != %s on %s", s.NetWorth, want, s.Date.Format("2006-01-02"))
}

func TestInitialState(t *testing.T) {
	p := mortgageParams()
	p.Investment.CurrentBalance = d(5000)
	p.RetirementBalance = d(20000)

	s := InitialState(&p)
	assert.Equal(t, jan2024, s.Date)
	assert.True(t, s.LoanBalance.Equal(d(400000)))
	assert.True(t, s.RetirementSavings.Equal(d(20000)))
	assert.True(t, s.NetWorth.Equal(d(10000+5000+20000-400000)))
	assert.Nil(t, s.LoanBalances, "legacy shape has no per-loan breakdown")
	assert.Nil(t, s.AccountBalances)
}

func TestStep_LegacyMortgageFirstMonth(t *testing.T) {
	s := step(t, mortgageParams())

	assert.Equal(t, jan2024, s.Date)
	assertMoney(t, 398947.02, s.LoanBalance)
	assertMoney(t, 3000, s.LoanPayments)
	assertMoney(t, 6666.67, s.GrossIncome)
	assertMoney(t, 2000, s.TaxPaid)
	assertMoney(t, 4666.67, s.NetIncome)
	assertMoney(t, 11666.67, s.Cash)
	assertMoney(t, 1666.67, s.CashFlow)
	assert.True(t, s.InterestSaved.IsZero())
	assertNetWorthIdentity(t, s)
}

func TestStep_OffsetScenarios(t *testing.T) {
	t.Run("empty offset and no surplus saves nothing", func(t *testing.T) {
		p := mortgageParams()
		p.CashBalance = d(3000)
		p.HasOffset = true
		s := step(t, p)
		assert.True(t, s.InterestSaved.IsZero())
	})

	t.Run("offset balance reduces interest", func(t *testing.T) {
		p := mortgageParams()
		p.HasOffset = true
		p.OffsetBalance = d(50000)
		s := step(t, p)

		// interest on 350,000 rather than 400,000
		assertMoney(t, 243.38, s.InterestSaved)
		assertMoney(t, 400000-1296.36, s.LoanBalance)
	})

	t.Run("surplus cash is swept into the offset", func(t *testing.T) {
		p := mortgageParams()
		p.HasOffset = true
		s := step(t, p)

		assert.True(t, s.Cash.IsZero(), "all positive cash moves to the offset")
		assertMoney(t, 11666.67, s.OffsetBalance)
		assertNetWorthIdentity(t, s)
	})
}

func TestStep_ShortfallsNeverFail(t *testing.T) {
	t.Run("partial loan payment", func(t *testing.T) {
		p := mortgageParams()
		p.CashBalance = d(1000)
		p.AnnualSalary = decimal.Zero
		s := step(t, p)

		assert.True(t, s.LoanPayments.Equal(d(1000)))
		assert.True(t, s.LoanBalance.Equal(d(400000)), "payment below interest leaves the balance unchanged")
		assert.True(t, s.Cash.IsZero())
	})

	t.Run("negative cash pays nothing", func(t *testing.T) {
		p := mortgageParams()
		p.CashBalance = d(-500)
		p.AnnualSalary = decimal.Zero
		s := step(t, p)

		assert.True(t, s.LoanPayments.IsZero())
		assert.True(t, s.Cash.Equal(d(-500)))
		assertNetWorthIdentity(t, s)
	})

	t.Run("expenses drive cash negative", func(t *testing.T) {
		p := mortgageParams()
		p.LoanAmount = decimal.Zero
		p.CashBalance = decimal.Zero
		p.AnnualSalary = decimal.Zero
		p.MonthlyLivingExpenses = d(2500)
		s := step(t, p)

		assert.True(t, s.Cash.Equal(d(-2500)))
		assert.True(t, s.CashFlow.Equal(d(-2500)))
	})
}

func TestStep_InvestmentContribution(t *testing.T) {
	base := domain.UserParameters{
		StartDate: jan2024,
		Investment: domain.InvestmentParameters{
			MonthlyContribution: d(500),
			CurrentBalance:      d(1000),
		},
	}

	t.Run("skipped unless cash strictly covers it", func(t *testing.T) {
		p := base
		p.CashBalance = d(500)
		s := step(t, p)
		assert.True(t, s.InvestmentContribution.IsZero())
		assert.True(t, s.Investments.Equal(d(1000)))
		assert.True(t, s.Cash.Equal(d(500)))
	})

	t.Run("made in full when affordable", func(t *testing.T) {
		p := base
		p.CashBalance = d(501)
		s := step(t, p)
		assert.True(t, s.InvestmentContribution.Equal(d(500)))
		assert.True(t, s.Investments.Equal(d(1500)))
		assert.True(t, s.Cash.Equal(d(1)))
		assert.True(t, s.CashFlow.Equal(d(-500)))
	})
}

func TestStep_RetirementAccounts(t *testing.T) {
	p := domain.UserParameters{
		StartDate:    jan2024,
		AnnualSalary: d(120000),
		RetirementAccounts: domain.NewAccountSet(
			domain.RetirementAccount{ID: "super", Balance: d(50000), ContributionRate: d(0.1)},
			domain.RetirementAccount{ID: "ira", Balance: d(10000), ContributionRate: d(0.05)},
		),
	}
	s := step(t, p)

	require.Len(t, s.AccountBalances, 2)
	assert.True(t, s.AccountBalances["super"].Equal(d(51000)))
	assert.True(t, s.AccountBalances["ira"].Equal(d(10500)))
	assert.True(t, s.RetirementSavings.Equal(d(61500)))
	assert.True(t, s.RetirementContribution.Equal(d(1500)))
}

func TestStep_EmptyListsOverrideLegacyFields(t *testing.T) {
	p := mortgageParams()
	p.Loans = domain.NewLoanSet()
	p.RetirementBalance = d(80000)
	p.RetirementAccounts = domain.NewAccountSet()
	s := step(t, p)

	assert.True(t, s.LoanBalance.IsZero(), "an empty loan list means no loans")
	assert.True(t, s.RetirementSavings.IsZero())
	assert.NotNil(t, s.LoanBalances)
	assert.Empty(t, s.LoanBalances)
	assert.NotNil(t, s.AccountBalances)
}

func TestStep_MultiLoanSweepTargetsLargestBalance(t *testing.T) {
	p := domain.UserParameters{
		StartDate:   jan2024,
		CashBalance: d(10000),
		Loans: domain.NewLoanSet(
			domain.Loan{ID: "car", Principal: d(20000), InterestRate: d(0.08), Payment: d(500), HasOffset: true},
			domain.Loan{ID: "home", Principal: d(300000), InterestRate: d(0.06), Payment: d(2000), HasOffset: true},
			domain.Loan{ID: "card", Principal: d(5000), InterestRate: d(0.2), Payment: d(200)},
		),
	}
	s := step(t, p)

	assert.True(t, s.OffsetBalances["car"].IsZero())
	assert.True(t, s.OffsetBalances["home"].IsPositive())
	assert.True(t, s.Cash.IsZero())
	assert.True(t, s.LoanPayments.Equal(d(2700)))
	assert.True(t, s.LoanBalance.Equal(domain.SumBalances(s.LoanBalances)))
	assert.True(t, s.OffsetBalance.Equal(domain.SumBalances(s.OffsetBalances)))
	assertNetWorthIdentity(t, s)
}

func TestStep_SweepIsCappedAtLoanBalance(t *testing.T) {
	p := domain.UserParameters{
		StartDate:   jan2024,
		CashBalance: d(50000),
		Loans: domain.NewLoanSet(
			domain.Loan{ID: "car", Principal: d(10000), Payment: d(1000), HasOffset: true},
		),
	}
	s := step(t, p)

	assert.True(t, s.LoanBalances["car"].Equal(d(9000)))
	assert.True(t, s.OffsetBalances["car"].Equal(d(9000)))
	assert.True(t, s.Cash.Equal(d(40000)))
}

func TestStep_AutoPayout(t *testing.T) {
	p := domain.UserParameters{
		StartDate:   jan2024,
		CashBalance: d(50000),
		Loans: domain.NewLoanSet(domain.Loan{
			ID:            "car",
			Principal:     d(10000),
			InterestRate:  d(0.06),
			Payment:       d(100),
			HasOffset:     true,
			OffsetBalance: d(9000),
			AutoPayout:    true,
		}),
	}
	before := InitialState(&p)
	s := step(t, p)

	assert.True(t, s.LoanBalances["car"].IsZero())
	assert.True(t, s.OffsetBalances["car"].IsZero())
	assert.True(t, s.LoanBalance.IsZero())
	assertNetWorthIdentity(t, s)

	// paying out only costs the month's interest
	interest := before.NetWorth.Sub(s.NetWorth)
	assertMoney(t, 1000*0.0048675506, interest)
}

func TestStep_DebtRecyclingReducesTax(t *testing.T) {
	plain := mortgageParams()
	recycled := mortgageParams()
	recycled.DebtRecycling = true

	a := step(t, plain)
	b := step(t, recycled)

	assertMoney(t, 1947.02, b.DeductibleInterest)
	assertMoney(t, (6666.67-1947.02)*0.3, b.TaxPaid)
	assert.True(t, b.TaxPaid.LessThan(a.TaxPaid))
	assert.True(t, a.DeductibleInterest.IsZero())
}

func TestStep_IncomeSources(t *testing.T) {
	bonusDay := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	p := domain.UserParameters{
		StartDate:    jan2024,
		AnnualSalary: d(999999), // replaced by the sources
		TaxRate:      d(0.5),
		IncomeSources: map[string]domain.IncomeSource{
			"salary": {Amount: d(3000), Frequency: dateutil.Month, BeforeTax: true},
			"rent":   {Amount: d(1000), Frequency: dateutil.Month},
			"bonus":  {Amount: d(2000), OneOff: true, Date: &bonusDay, BeforeTax: true},
		},
	}
	s := step(t, p)

	assert.True(t, s.GrossIncome.Equal(d(6000)))
	assert.True(t, s.TaxPaid.Equal(d(2500)), "after-tax rent is not taxed")
	assert.True(t, s.NetIncome.Equal(d(3500)))
}

func TestStep_ItemisedExpenses(t *testing.T) {
	ends := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	p := domain.UserParameters{
		StartDate:             jan2024,
		MonthlyLivingExpenses: d(2000),
		MonthlyHousingCost:    d(1500),
		Expenses: map[string]domain.ExpenseItem{
			"insurance": {Amount: d(1200), Frequency: dateutil.Year},
			"daycare":   {Amount: d(900), Frequency: dateutil.Month, EndDate: &ends},
		},
	}
	s := step(t, p)
	assert.True(t, s.Expenses.Equal(d(3600)))
}

func TestStep_CarriesLoansDroppedFromConfiguration(t *testing.T) {
	p := domain.UserParameters{
		StartDate:   jan2024,
		CashBalance: d(100000),
		Loans: domain.NewLoanSet(
			domain.Loan{ID: "home", Principal: d(300000), InterestRate: d(0.06), Payment: d(2000)},
		),
	}
	previous := InitialState(&p)
	previous.LoanBalances["car"] = d(7000)
	previous.OffsetBalances["car"] = decimal.Zero

	e := NewEngine()
	s := e.Step(previous, &p, firstPeriod())

	assert.True(t, s.LoanBalances["car"].Equal(d(7000)), "dropped loans keep their balance")
	assert.True(t, s.LoanBalance.Equal(s.LoanBalances["car"].Add(s.LoanBalances["home"])))
}

func TestStep_DoesNotMutateInput(t *testing.T) {
	p := domain.UserParameters{
		StartDate:   jan2024,
		CashBalance: d(10000),
		Loans: domain.NewLoanSet(
			domain.Loan{ID: "home", Principal: d(300000), InterestRate: d(0.06), Payment: d(2000), HasOffset: true},
		),
	}
	previous := InitialState(&p)
	e := NewEngine()
	next := e.Step(previous, &p, firstPeriod())

	assert.True(t, previous.LoanBalances["home"].Equal(d(300000)))
	assert.True(t, previous.OffsetBalances["home"].IsZero())
	next.LoanBalances["home"] = decimal.Zero
	assert.True(t, previous.LoanBalances["home"].Equal(d(300000)), "each state owns its maps")
}

func TestStep_WeeklyInterval(t *testing.T) {
	p := domain.UserParameters{
		StartDate:             jan2024,
		AnnualSalary:          d(52000),
		MonthlyLivingExpenses: d(1300),
	}
	e := NewEngine()
	e.Interval = dateutil.Week
	s := e.Step(InitialState(&p), &p, Period{Start: jan2024, End: jan2024.AddDate(0, 0, 7)})

	assertMoney(t, 1000, s.GrossIncome)
	assertMoney(t, 300, s.Expenses)
}
