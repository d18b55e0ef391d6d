package calculation

import (
	"context"
	"fmt"
	"time"

	"github.com/rgehrsitz/fincast/internal/domain"
	"github.com/rgehrsitz/fincast/internal/transform"
	"github.com/rgehrsitz/fincast/pkg/dateutil"
)

// Engine runs household projections. The zero value is usable; NewEngine
// fills in the default policies.
type Engine struct {
	// TaxPolicy overrides the flat rate from UserParameters.TaxRate when set.
	TaxPolicy        TaxPolicy
	WithdrawalPolicy WithdrawalPolicy
	WarningScanner   WarningScanner
	Interval         dateutil.Interval
	Logger           Logger
}

// NewEngine creates an engine with monthly periods, a 4% withdrawal rule and
// the default warning scanner.
func NewEngine() *Engine {
	return &Engine{
		WithdrawalPolicy: PercentageWithdrawal{Rate: DefaultWithdrawalRate},
		WarningScanner:   TrendScanner{},
		Interval:         dateutil.DefaultInterval,
		Logger:           NopLogger{},
	}
}

// SetLogger sets the logger; nil restores the no-op logger.
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = l
}

// RunSimulation projects params over its whole horizon without transitions.
func (e *Engine) RunSimulation(ctx context.Context, params domain.UserParameters) (*domain.SimulationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.log().Debugf("running %d-year projection from %s", params.SimulationYears, params.StartDate.Format("2006-01-02"))
	states := e.project(&params, func(time.Time) *domain.UserParameters { return &params }, nil)
	result := e.evaluate(states, &params, &params)
	e.log().Infof("projection complete: %d periods, sustainable=%t", len(result.States), result.IsSustainable)
	return &result, nil
}

// RunSimulationWithTransitions projects the base parameters and applies each
// transition from the first period dated on or after its effective date.
// The horizon and starting balances always come from the base parameters.
func (e *Engine) RunSimulationWithTransitions(ctx context.Context, cfg *domain.SimulationConfiguration) (*domain.EnhancedSimulationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("simulation configuration is nil")
	}

	resolver := transform.NewResolver(cfg)
	transitions := resolver.Transitions()
	base := &cfg.BaseParameters

	e.log().Debugf("running %d-year projection from %s with %d transitions",
		base.SimulationYears, base.StartDate.Format("2006-01-02"), len(transitions))

	var points []domain.TransitionPoint
	next := 0
	states := e.project(base, resolver.ParametersAt, func(i int, date time.Time) {
		for next < len(transitions) && !transitions[next].EffectiveDate.After(date) {
			t := transitions[next]
			e.log().Debugf("transition %q takes effect at period %d (%s)", t.Label, i, date.Format("2006-01-02"))
			points = append(points, domain.TransitionPoint{
				Date:       date,
				StateIndex: i,
				Transition: t,
				Summary:    transform.DescribeChanges(t.Changes),
			})
			next++
		}
	})

	final := base
	if len(states) > 0 {
		final = resolver.ParametersAt(states[len(states)-1].Date)
	}

	result := &domain.EnhancedSimulationResult{
		SimulationResult: e.evaluate(states, base, final),
		TransitionPoints: points,
		Periods:          transform.BuildParameterPeriods(cfg),
	}
	e.log().Infof("projection complete: %d periods, %d transitions applied, sustainable=%t",
		len(result.States), len(points), result.IsSustainable)
	return result, nil
}

// project folds Step over the horizon of base. paramsAt supplies the
// effective parameters for each period start; onPeriod, if set, is called
// before each step.
func (e *Engine) project(base *domain.UserParameters, paramsAt func(time.Time) *domain.UserParameters, onPeriod func(i int, date time.Time)) []domain.FinancialState {
	interval := e.interval()
	n := base.TotalPeriods(interval)
	states := make([]domain.FinancialState, 0, n)

	current := InitialState(base)
	for i := 0; i < n; i++ {
		period := Period{
			Start: dateutil.AddPeriods(base.StartDate, interval, i),
			End:   dateutil.AddPeriods(base.StartDate, interval, i+1),
		}
		if onPeriod != nil {
			onPeriod(i, period.Start)
		}
		current = e.Step(current, paramsAt(period.Start), period)
		states = append(states, current)
	}
	return states
}

// evaluate attaches the retirement and sustainability verdicts to a series.
// base supplies the current age; final supplies the retirement goal in
// effect at the end of the horizon.
func (e *Engine) evaluate(states []domain.FinancialState, base, final *domain.UserParameters) domain.SimulationResult {
	result := domain.SimulationResult{States: states, Warnings: []string{}}

	result.RetirementDate, result.RetirementAge = FindRetirementDate(
		states, final.Retirement.DesiredAnnualIncome, base.Retirement.CurrentAge, e.WithdrawalPolicy)

	sustainable, warnings := CheckSustainability(states)
	result.IsSustainable = sustainable
	result.Warnings = append(result.Warnings, warnings...)

	if e.WarningScanner != nil {
		result.Warnings = append(result.Warnings, e.WarningScanner.Scan(states)...)
	}

	if advisory := RetirementAdvisory(result.RetirementAge, final.Retirement, base.SimulationYears); advisory != "" {
		result.Warnings = append(result.Warnings, advisory)
	}

	for _, w := range warnings {
		e.log().Warnf("%s", w)
	}
	return result
}

func (e *Engine) interval() dateutil.Interval {
	return e.Interval.Normalize()
}

func (e *Engine) log() Logger {
	if e.Logger == nil {
		return NopLogger{}
	}
	return e.Logger
}
