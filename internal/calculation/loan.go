package calculation

import (
	"github.com/shopspring/decimal"
)

// LoanInput is one loan's position at the start of a period.
type LoanInput struct {
	Balance       decimal.Decimal
	OffsetBalance decimal.Decimal
	PeriodRate    decimal.Decimal
	Payment       decimal.Decimal // amount actually paid this period
	HasOffset     bool
	DebtRecycling bool
}

// LoanResult is the outcome of one period of repayment.
type LoanResult struct {
	Balance            decimal.Decimal
	Interest           decimal.Decimal
	PrincipalPaid      decimal.Decimal
	PaymentMade        decimal.Decimal
	InterestSaved      decimal.Decimal
	DeductibleInterest decimal.Decimal
}

// ProcessLoan charges one period of interest and applies the payment to
// interest first, then principal. A payment smaller than the interest pays
// what it can and the rest of the interest is not added to the balance.
func ProcessLoan(in LoanInput) LoanResult {
	if !in.Balance.IsPositive() {
		return LoanResult{
			Balance:            decimal.Zero,
			Interest:           decimal.Zero,
			PrincipalPaid:      decimal.Zero,
			PaymentMade:        decimal.Zero,
			InterestSaved:      decimal.Zero,
			DeductibleInterest: decimal.Zero,
		}
	}

	fullInterest := in.Balance.Mul(in.PeriodRate)
	interest := fullInterest
	if in.HasOffset {
		interest = decimal.Max(in.Balance.Sub(in.OffsetBalance), decimal.Zero).Mul(in.PeriodRate)
	}

	payment := decimal.Max(in.Payment, decimal.Zero)
	principal := decimal.Max(payment.Sub(interest), decimal.Zero)
	if principal.GreaterThan(in.Balance) {
		principal = in.Balance
	}

	paid := payment
	if payment.GreaterThanOrEqual(interest) {
		paid = interest.Add(principal)
	}

	deductible := decimal.Zero
	if in.DebtRecycling {
		deductible = interest
	}

	return LoanResult{
		Balance:            in.Balance.Sub(principal),
		Interest:           interest,
		PrincipalPaid:      principal,
		PaymentMade:        paid,
		InterestSaved:      fullInterest.Sub(interest),
		DeductibleInterest: deductible,
	}
}
