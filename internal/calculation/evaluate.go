package calculation

import (
	"fmt"
	"time"

	"github.com/rgehrsitz/fincast/internal/domain"
	"github.com/rgehrsitz/fincast/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// ConsecutiveNegativeCashFlowLimit is the run length of negative cash flow
// periods that makes a projection unsustainable.
const ConsecutiveNegativeCashFlowLimit = 3

// Sustainability warnings, one per trigger.
const (
	WarningDebtGrowing      = "Total debt is higher at the end of the projection than at the start"
	WarningNegativeCashFlow = "Cash flow is negative for three or more consecutive periods"
	WarningNegativeNetWorth = "Net worth is negative at the end of the projection"
)

// FindRetirementDate returns the date of the earliest state whose net worth
// supports desiredAnnualIncome under the withdrawal policy, and the age
// reached by then. Both are nil when the goal is never met.
func FindRetirementDate(states []domain.FinancialState, desiredAnnualIncome decimal.Decimal, currentAge int, policy WithdrawalPolicy) (*time.Time, *int) {
	if len(states) == 0 {
		return nil, nil
	}
	if policy == nil {
		policy = PercentageWithdrawal{Rate: DefaultWithdrawalRate}
	}

	start := states[0].Date
	for i := range states {
		if policy.SustainableIncome(states[i].NetWorth).LessThan(desiredAnnualIncome) {
			continue
		}
		date := states[i].Date
		age := currentAge + dateutil.WholeYearsBetween(start, date)
		return &date, &age
	}
	return nil, nil
}

// CheckSustainability applies the three sustainability rules to a series and
// returns the verdict with one warning per failed rule.
func CheckSustainability(states []domain.FinancialState) (bool, []string) {
	if len(states) == 0 {
		return true, nil
	}

	var warnings []string
	first := states[0]
	last := states[len(states)-1]

	if last.LoanBalance.GreaterThan(first.LoanBalance) {
		warnings = append(warnings, WarningDebtGrowing)
	}

	if longestNegativeRun(states) >= ConsecutiveNegativeCashFlowLimit {
		warnings = append(warnings, WarningNegativeCashFlow)
	}

	if last.NetWorth.IsNegative() {
		warnings = append(warnings, WarningNegativeNetWorth)
	}

	return len(warnings) == 0, warnings
}

func longestNegativeRun(states []domain.FinancialState) int {
	longest, run := 0, 0
	for _, s := range states {
		if s.CashFlow.IsNegative() {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	return longest
}

// RetirementAdvisory returns the advisory for a missed or late retirement
// goal, or "" when the goal is met within a year of the target age.
func RetirementAdvisory(retirementAge *int, target domain.RetirementTarget, years int) string {
	income := target.DesiredAnnualIncome.StringFixed(0)
	if retirementAge == nil {
		return fmt.Sprintf("Retirement at age %d with an annual income of $%s is not achievable within the %d-year projection",
			target.TargetAge, income, years)
	}
	if *retirementAge > target.TargetAge+1 {
		return fmt.Sprintf("Retirement with an annual income of $%s is delayed to age %d, %d years past the target age of %d",
			income, *retirementAge, *retirementAge-target.TargetAge, target.TargetAge)
	}
	return ""
}
