package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SimulationResult is the output of one projection run.
type SimulationResult struct {
	States         []FinancialState `json:"states"`
	RetirementDate *time.Time       `json:"retirementDate"`
	RetirementAge  *int             `json:"retirementAge"`
	IsSustainable  bool             `json:"isSustainable"`
	Warnings       []string         `json:"warnings"`
}

// FinalState returns the last state of the series, or nil for an empty run.
func (r *SimulationResult) FinalState() *FinancialState {
	if len(r.States) == 0 {
		return nil
	}
	return &r.States[len(r.States)-1]
}

// FinalNetWorth returns the net worth of the last state, zero for an empty run.
func (r *SimulationResult) FinalNetWorth() decimal.Decimal {
	if s := r.FinalState(); s != nil {
		return s.NetWorth
	}
	return decimal.Zero
}

// TotalTaxPaid sums tax across the series.
func (r *SimulationResult) TotalTaxPaid() decimal.Decimal {
	total := decimal.Zero
	for _, s := range r.States {
		total = total.Add(s.TaxPaid)
	}
	return total
}

// TotalInterestSaved sums offset interest savings across the series.
func (r *SimulationResult) TotalInterestSaved() decimal.Decimal {
	total := decimal.Zero
	for _, s := range r.States {
		total = total.Add(s.InterestSaved)
	}
	return total
}

// DebtFreeDate returns the date of the first state with no loan balance, or
// nil if debt remains at the end of the run.
func (r *SimulationResult) DebtFreeDate() *time.Time {
	for i := range r.States {
		if r.States[i].IsDebtFree() {
			d := r.States[i].Date
			return &d
		}
	}
	return nil
}

// TransitionPoint records where a transition took effect in a realized run.
type TransitionPoint struct {
	Date       time.Time  `json:"date"`
	StateIndex int        `json:"stateIndex"`
	Transition Transition `json:"transition"`
	Summary    string     `json:"summary"`
}

// ParameterPeriod is a window of the horizon during which one effective
// parameter set applies. End is exclusive.
type ParameterPeriod struct {
	Start         time.Time      `json:"start"`
	End           time.Time      `json:"end"`
	Label         string         `json:"label"`
	TransitionIDs []string       `json:"transitionIds,omitempty"`
	Parameters    UserParameters `json:"parameters"`
}

// EnhancedSimulationResult adds transition bookkeeping to a SimulationResult.
type EnhancedSimulationResult struct {
	SimulationResult
	TransitionPoints []TransitionPoint `json:"transitionPoints"`
	Periods          []ParameterPeriod `json:"periods"`
}

// ComparisonResult pairs a transition-aware run with a base-only run.
type ComparisonResult struct {
	WithTransitions EnhancedSimulationResult `json:"withTransitions"`
	BaseOnly        SimulationResult         `json:"baseOnly"`

	// RetirementDateDifferenceYears is nil unless both runs reach retirement.
	RetirementDateDifferenceYears *decimal.Decimal `json:"retirementDateDifferenceYears"`
	FinalNetWorthDifference       decimal.Decimal  `json:"finalNetWorthDifference"`
	SustainabilityChanged         bool             `json:"sustainabilityChanged"`
}
