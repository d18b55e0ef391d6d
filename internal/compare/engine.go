package compare

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/fincast/internal/calculation"
	"github.com/rgehrsitz/fincast/internal/domain"
	"github.com/rgehrsitz/fincast/pkg/dateutil"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// RunComparisonSimulation runs cfg with and without its transitions and
// measures the difference. The two runs share nothing and execute
// concurrently.
func RunComparisonSimulation(ctx context.Context, engine *calculation.Engine, cfg *domain.SimulationConfiguration) (*domain.ComparisonResult, error) {
	if cfg == nil {
		return nil, fmt.Errorf("simulation configuration is nil")
	}
	if engine == nil {
		engine = calculation.NewEngine()
	}

	var (
		withTransitions *domain.EnhancedSimulationResult
		baseOnly        *domain.SimulationResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := engine.RunSimulationWithTransitions(gctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to run simulation with transitions: %w", err)
		}
		withTransitions = res
		return nil
	})
	g.Go(func() error {
		res, err := engine.RunSimulation(gctx, cfg.BaseParameters.Clone())
		if err != nil {
			return fmt.Errorf("failed to run base simulation: %w", err)
		}
		baseOnly = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &domain.ComparisonResult{
		WithTransitions:         *withTransitions,
		BaseOnly:                *baseOnly,
		FinalNetWorthDifference: withTransitions.FinalNetWorth().Sub(baseOnly.FinalNetWorth()),
		SustainabilityChanged:   withTransitions.IsSustainable != baseOnly.IsSustainable,
	}

	if withTransitions.RetirementDate != nil && baseOnly.RetirementDate != nil {
		years := decimal.NewFromFloat(dateutil.YearsBetween(*baseOnly.RetirementDate, *withTransitions.RetirementDate))
		result.RetirementDateDifferenceYears = &years
	}

	return result, nil
}

// CompareEngine orchestrates comparison runs and their presentation metrics
type CompareEngine struct {
	CalcEngine        *calculation.Engine
	MetricsCalculator *MetricsCalculator
}

// NewCompareEngine creates a new comparison engine
func NewCompareEngine(calcEngine *calculation.Engine) *CompareEngine {
	if calcEngine == nil {
		calcEngine = calculation.NewEngine()
	}
	return &CompareEngine{
		CalcEngine:        calcEngine,
		MetricsCalculator: NewMetricsCalculator(),
	}
}

// Compare runs the comparison for cfg and assembles a ComparisonSet
func (ce *CompareEngine) Compare(ctx context.Context, cfg *domain.SimulationConfiguration) (*ComparisonSet, error) {
	result, err := RunComparisonSimulation(ctx, ce.CalcEngine, cfg)
	if err != nil {
		return nil, err
	}

	compSet := &ComparisonSet{
		Result:          result,
		Base:            ce.MetricsCalculator.CalculateMetrics("Base only", &result.BaseOnly),
		WithTransitions: ce.MetricsCalculator.CalculateMetrics("With transitions", &result.WithTransitions.SimulationResult),
	}
	compSet.Recommendations = GenerateRecommendations(compSet)

	return compSet, nil
}
