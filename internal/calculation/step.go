package calculation

import (
	"sort"
	"time"

	"github.com/rgehrsitz/fincast/internal/domain"
	"github.com/rgehrsitz/fincast/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// Period is the window one step covers. End is exclusive.
type Period struct {
	Start time.Time
	End   time.Time
}

// loanPosition tracks one loan through a step. Loans that were dropped from
// the configuration by a transition are carried with configured=false: they
// keep their balances but are no longer repaid.
type loanPosition struct {
	loan       domain.Loan
	balance    decimal.Decimal
	offset     decimal.Decimal
	configured bool
}

// InitialState builds the opening position from the parameters. It is the
// starting point of a run and is not part of the emitted series.
func InitialState(params *domain.UserParameters) domain.FinancialState {
	s := domain.FinancialState{
		Date:              params.StartDate,
		Cash:              params.CashBalance,
		Investments:       params.Investment.CurrentBalance,
		RetirementSavings: decimal.Zero,
		LoanBalance:       decimal.Zero,
		OffsetBalance:     decimal.Zero,
	}

	if params.UsesLoanList() {
		s.LoanBalances = make(map[string]decimal.Decimal)
		s.OffsetBalances = make(map[string]decimal.Decimal)
	}
	for _, loan := range params.CanonicalLoans() {
		s.LoanBalance = s.LoanBalance.Add(loan.Principal)
		s.OffsetBalance = s.OffsetBalance.Add(loan.OffsetBalance)
		if s.LoanBalances != nil {
			s.LoanBalances[loan.ID] = loan.Principal
			s.OffsetBalances[loan.ID] = loan.OffsetBalance
		}
	}

	if params.UsesAccountList() {
		s.AccountBalances = make(map[string]decimal.Decimal)
	}
	for _, account := range params.CanonicalAccounts() {
		s.RetirementSavings = s.RetirementSavings.Add(account.Balance)
		if s.AccountBalances != nil {
			s.AccountBalances[account.ID] = account.Balance
		}
	}

	s.NetWorth = s.CalculateNetWorth()
	return s
}

// Step advances current by one period under params. The phases run in a
// fixed order: expenses, loan repayments, tax and net income, investment
// contribution, retirement accounts, offset sweep, auto-payout, totals.
// Shortfalls never fail: cash may go negative, loan payments shrink to the
// cash on hand and unaffordable investment contributions are skipped.
func (e *Engine) Step(current domain.FinancialState, params *domain.UserParameters, period Period) domain.FinancialState {
	interval := e.interval()
	periodsPerYear := decimal.NewFromInt(int64(dateutil.PeriodsPerYear(interval)))
	cash := current.Cash

	// 1. Expenses
	income := CalculatePeriodIncome(params, period.Start, period.End, interval)
	expenses := CalculatePeriodExpenses(params, period.Start, interval)
	cash = cash.Sub(expenses)

	// 2. Loans
	positions := loanPositions(current, params)
	loanPayments := decimal.Zero
	interestSaved := decimal.Zero
	deductible := decimal.Zero
	for i := range positions {
		p := &positions[i]
		if !p.configured || !p.balance.IsPositive() {
			continue
		}
		due := dateutil.PaymentToPeriod(p.loan.Payment, p.loan.PaymentFrequency, interval)
		payment := due
		if cash.LessThan(due) {
			payment = decimal.Max(cash, decimal.Zero)
		}
		res := ProcessLoan(LoanInput{
			Balance:       p.balance,
			OffsetBalance: p.offset,
			PeriodRate:    dateutil.AnnualRateToPeriodRate(p.loan.InterestRate, interval),
			Payment:       payment,
			HasOffset:     p.loan.HasOffset,
			DebtRecycling: p.loan.DebtRecycling,
		})
		cash = cash.Sub(res.PaymentMade)
		p.balance = res.Balance
		loanPayments = loanPayments.Add(res.PaymentMade)
		interestSaved = interestSaved.Add(res.InterestSaved)
		deductible = deductible.Add(res.DeductibleInterest)
	}

	// 3. Tax, after loans so deductible interest lands in the same period.
	// A one-off payment is charged the extra annual tax it adds on top of
	// the recurring income, in full, in the period it is paid.
	policy := e.taxPolicy(params)
	annualTaxable := decimal.Max(AnnualGrossIncome(params, period.Start).Sub(deductible.Mul(periodsPerYear)), decimal.Zero)
	recurringTax := policy.AnnualTax(annualTaxable)
	tax := recurringTax.Div(periodsPerYear)
	if income.OneOffTaxable.IsPositive() {
		tax = tax.Add(policy.AnnualTax(annualTaxable.Add(income.OneOffTaxable)).Sub(recurringTax))
	}
	netIncome := income.Gross.Sub(tax)
	cash = cash.Add(netIncome)

	// 4. Investment contribution, all or nothing
	contribution := dateutil.PaymentToPeriod(params.Investment.MonthlyContribution, dateutil.Month, interval)
	invested := decimal.Zero
	if contribution.IsPositive() && cash.GreaterThan(contribution) {
		invested = contribution
		cash = cash.Sub(invested)
	}
	investments := GrowBalance(current.Investments, invested, dateutil.AnnualRateToPeriodRate(params.Investment.AnnualReturnRate, interval))

	// 5. Retirement accounts
	accounts, retirementContribution := growAccounts(current, params, income.Gross, interval)

	// 6. Offset sweep
	for i := range positions {
		p := &positions[i]
		if p.offset.GreaterThan(p.balance) {
			cash = cash.Add(p.offset.Sub(p.balance))
			p.offset = p.balance
		}
	}
	if cash.IsPositive() {
		if t := sweepTarget(positions); t >= 0 {
			p := &positions[t]
			moved := decimal.Min(cash, p.balance.Sub(p.offset))
			if moved.IsPositive() {
				p.offset = p.offset.Add(moved)
				cash = cash.Sub(moved)
			}
		}
	}

	// 6b. Auto-payout
	for i := range positions {
		p := &positions[i]
		if !p.configured || !p.loan.AutoPayout || !p.balance.IsPositive() {
			continue
		}
		if p.offset.GreaterThanOrEqual(p.balance) {
			cash = cash.Add(p.offset.Sub(p.balance))
			p.balance = decimal.Zero
			p.offset = decimal.Zero
		}
	}

	// 7. Totals
	next := domain.FinancialState{
		Date:                   period.Start,
		Cash:                   cash,
		Investments:            investments,
		RetirementSavings:      decimal.Zero,
		LoanBalance:            decimal.Zero,
		OffsetBalance:          decimal.Zero,
		GrossIncome:            income.Gross,
		NetIncome:              netIncome,
		TaxPaid:                tax,
		Expenses:               expenses,
		LoanPayments:           loanPayments,
		InvestmentContribution: invested,
		RetirementContribution: retirementContribution,
		InterestSaved:          interestSaved,
		DeductibleInterest:     deductible,
	}

	if params.UsesLoanList() {
		next.LoanBalances = make(map[string]decimal.Decimal, len(positions))
		next.OffsetBalances = make(map[string]decimal.Decimal, len(positions))
	}
	for _, p := range positions {
		next.LoanBalance = next.LoanBalance.Add(p.balance)
		next.OffsetBalance = next.OffsetBalance.Add(p.offset)
		if next.LoanBalances != nil {
			next.LoanBalances[p.loan.ID] = p.balance
			next.OffsetBalances[p.loan.ID] = p.offset
		}
	}

	for _, a := range accounts {
		next.RetirementSavings = next.RetirementSavings.Add(a.balance)
	}
	if params.UsesAccountList() {
		next.AccountBalances = make(map[string]decimal.Decimal, len(accounts))
		for _, a := range accounts {
			next.AccountBalances[a.id] = a.balance
		}
	}

	next.NetWorth = next.CalculateNetWorth()
	next.CashFlow = netIncome.Sub(expenses).Sub(loanPayments).Sub(invested)
	return next
}

func (e *Engine) taxPolicy(params *domain.UserParameters) TaxPolicy {
	if e.TaxPolicy != nil {
		return e.TaxPolicy
	}
	return FlatTax{Rate: params.TaxRate}
}

// loanPositions lines up the configured loans with the balances carried in
// current. A loan id seen for the first time starts from its principal.
func loanPositions(current domain.FinancialState, params *domain.UserParameters) []loanPosition {
	configured := params.CanonicalLoans()
	positions := make([]loanPosition, 0, len(configured))

	if !params.UsesLoanList() {
		for _, loan := range configured {
			positions = append(positions, loanPosition{
				loan:       loan,
				balance:    current.LoanBalance,
				offset:     current.OffsetBalance,
				configured: true,
			})
		}
		return positions
	}

	balances, offsets := current.LoanBalances, current.OffsetBalances
	if balances == nil && (!current.LoanBalance.IsZero() || !current.OffsetBalance.IsZero()) {
		// switching from the single-loan shape: the old loan keeps its legacy id
		balances = map[string]decimal.Decimal{domain.LegacyLoanID: current.LoanBalance}
		offsets = map[string]decimal.Decimal{domain.LegacyLoanID: current.OffsetBalance}
	}

	seen := make(map[string]bool, len(configured))
	for _, loan := range configured {
		seen[loan.ID] = true
		balance, ok := balances[loan.ID]
		if !ok {
			balance = loan.Principal
		}
		offset, ok := offsets[loan.ID]
		if !ok {
			offset = loan.OffsetBalance
		}
		positions = append(positions, loanPosition{loan: loan, balance: balance, offset: offset, configured: true})
	}

	var carried []string
	for id := range balances {
		if !seen[id] {
			carried = append(carried, id)
		}
	}
	sort.Strings(carried)
	for _, id := range carried {
		positions = append(positions, loanPosition{
			loan:    domain.Loan{ID: id},
			balance: balances[id],
			offset:  offsets[id],
		})
	}
	return positions
}

// sweepTarget picks the offset-enabled loan with the largest balance, the
// first listed on ties. It returns -1 when no loan can take a deposit.
func sweepTarget(positions []loanPosition) int {
	target := -1
	for i, p := range positions {
		if !p.configured || !p.loan.HasOffset || !p.balance.IsPositive() {
			continue
		}
		if target < 0 || p.balance.GreaterThan(positions[target].balance) {
			target = i
		}
	}
	return target
}

type accountPosition struct {
	id      string
	balance decimal.Decimal
}

// growAccounts funds and grows every retirement account. Accounts dropped
// from the configuration keep their balance without growth.
func growAccounts(current domain.FinancialState, params *domain.UserParameters, gross decimal.Decimal, interval dateutil.Interval) ([]accountPosition, decimal.Decimal) {
	configured := params.CanonicalAccounts()
	positions := make([]accountPosition, 0, len(configured))
	contributed := decimal.Zero

	balances := current.AccountBalances
	if params.UsesAccountList() && balances == nil && !current.RetirementSavings.IsZero() {
		balances = map[string]decimal.Decimal{domain.LegacyAccountID: current.RetirementSavings}
	}

	seen := make(map[string]bool, len(configured))
	for _, account := range configured {
		seen[account.ID] = true
		balance := current.RetirementSavings
		if params.UsesAccountList() {
			var ok bool
			if balance, ok = balances[account.ID]; !ok {
				balance = account.Balance
			}
		}
		contribution := decimal.Max(account.ContributionRate.Mul(gross), decimal.Zero)
		contributed = contributed.Add(contribution)
		positions = append(positions, accountPosition{
			id:      account.ID,
			balance: GrowBalance(balance, contribution, dateutil.AnnualRateToPeriodRate(account.ReturnRate, interval)),
		})
	}

	if !params.UsesAccountList() {
		return positions, contributed
	}

	var carried []string
	for id := range balances {
		if !seen[id] {
			carried = append(carried, id)
		}
	}
	sort.Strings(carried)
	for _, id := range carried {
		positions = append(positions, accountPosition{id: id, balance: balances[id]})
	}
	return positions, contributed
}
