package compare

import (
	"fmt"
	"time"

	"github.com/rgehrsitz/fincast/internal/domain"
	"github.com/shopspring/decimal"
)

// RunMetrics holds the headline figures of one projection run
type RunMetrics struct {
	Name string `json:"name"`

	FinalNetWorth      decimal.Decimal `json:"finalNetWorth"`
	FinalCash          decimal.Decimal `json:"finalCash"`
	FinalLoanBalance   decimal.Decimal `json:"finalLoanBalance"`
	LifetimeTaxes      decimal.Decimal `json:"lifetimeTaxes"`
	TotalInterestSaved decimal.Decimal `json:"totalInterestSaved"`

	RetirementDate *time.Time `json:"retirementDate,omitempty"`
	RetirementAge  *int       `json:"retirementAge,omitempty"`
	DebtFreeDate   *time.Time `json:"debtFreeDate,omitempty"`
	IsSustainable  bool       `json:"isSustainable"`
	WarningCount   int        `json:"warningCount"`
}

// ComparisonSet is a comparison result with metrics and recommendations
// ready for display
type ComparisonSet struct {
	Result          *domain.ComparisonResult `json:"result"`
	Base            RunMetrics               `json:"base"`
	WithTransitions RunMetrics               `json:"withTransitions"`
	Recommendations []string                 `json:"recommendations"`
	ConfigPath      string                   `json:"configPath,omitempty"`
}

// MetricsCalculator extracts key metrics from simulation results
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateMetrics computes the metrics for one run
func (mc *MetricsCalculator) CalculateMetrics(name string, result *domain.SimulationResult) RunMetrics {
	metrics := RunMetrics{
		Name:               name,
		FinalNetWorth:      result.FinalNetWorth(),
		FinalCash:          decimal.Zero,
		FinalLoanBalance:   decimal.Zero,
		LifetimeTaxes:      result.TotalTaxPaid(),
		TotalInterestSaved: result.TotalInterestSaved(),
		RetirementDate:     result.RetirementDate,
		RetirementAge:      result.RetirementAge,
		DebtFreeDate:       result.DebtFreeDate(),
		IsSustainable:      result.IsSustainable,
		WarningCount:       len(result.Warnings),
	}

	if final := result.FinalState(); final != nil {
		metrics.FinalCash = final.Cash
		metrics.FinalLoanBalance = final.LoanBalance
	}

	return metrics
}

// GenerateRecommendations describes what the transitions changed, most
// significant first
func GenerateRecommendations(compSet *ComparisonSet) []string {
	recommendations := []string{}
	result := compSet.Result
	if result == nil {
		return recommendations
	}

	if years := result.RetirementDateDifferenceYears; years != nil && !years.Round(1).IsZero() {
		if years.IsNegative() {
			recommendations = append(recommendations,
				"Earlier Retirement: transitions bring retirement forward by "+years.Abs().StringFixed(1)+" years")
		} else {
			recommendations = append(recommendations,
				"Later Retirement: transitions delay retirement by "+years.StringFixed(1)+" years")
		}
	} else if compSet.Base.RetirementDate == nil && compSet.WithTransitions.RetirementDate != nil {
		recommendations = append(recommendations,
			"Retirement Reached: transitions make retirement achievable within the projection")
	} else if compSet.Base.RetirementDate != nil && compSet.WithTransitions.RetirementDate == nil {
		recommendations = append(recommendations,
			"Retirement Lost: retirement is no longer achievable within the projection")
	}

	diff := result.FinalNetWorthDifference
	if diff.IsPositive() {
		recommendations = append(recommendations,
			"Net Worth: transitions add $"+diff.StringFixed(0)+" to final net worth")
	} else if diff.IsNegative() {
		recommendations = append(recommendations,
			"Net Worth: transitions reduce final net worth by $"+diff.Abs().StringFixed(0))
	}

	if result.SustainabilityChanged {
		if compSet.WithTransitions.IsSustainable {
			recommendations = append(recommendations, "Sustainability: transitions make the plan sustainable")
		} else {
			recommendations = append(recommendations, "Sustainability: transitions make the plan unsustainable")
		}
	}

	taxDiff := compSet.WithTransitions.LifetimeTaxes.Sub(compSet.Base.LifetimeTaxes)
	if !taxDiff.Round(0).IsZero() {
		verb := "raise"
		if taxDiff.IsNegative() {
			verb = "lower"
		}
		recommendations = append(recommendations,
			fmt.Sprintf("Taxes: transitions %s lifetime taxes by $%s", verb, taxDiff.Abs().StringFixed(0)))
	}

	return recommendations
}
