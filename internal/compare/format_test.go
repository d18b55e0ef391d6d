package compare

import (
	"encoding/csv"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/rgehrsitz/fincast/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleComparisonSet() *ComparisonSet {
	age := 58
	retired := jan2024.AddDate(14, 0, 0)
	return &ComparisonSet{
		ConfigPath: "/path/to/plan.yaml",
		Result: &domain.ComparisonResult{
			WithTransitions: domain.EnhancedSimulationResult{
				TransitionPoints: []domain.TransitionPoint{
					{Date: jan2024.AddDate(1, 0, 0), Transition: domain.Transition{ID: "raise", Label: "Promotion"}, Summary: "annual_salary: 120000"},
				},
			},
			RetirementDateDifferenceYears: dec(-1.5),
			FinalNetWorthDifference:       decimal.NewFromInt(250000),
			SustainabilityChanged:         false,
		},
		Base: RunMetrics{
			Name:          "Base only",
			FinalNetWorth: decimal.NewFromInt(1200000),
			IsSustainable: true,
		},
		WithTransitions: RunMetrics{
			Name:           "With transitions",
			FinalNetWorth:  decimal.NewFromInt(1450000),
			RetirementDate: &retired,
			RetirementAge:  &age,
			IsSustainable:  true,
		},
		Recommendations: []string{"Net Worth: transitions add $250000 to final net worth"},
	}
}

func TestTableFormatter_Format(t *testing.T) {
	out := (&TableFormatter{}).Format(sampleComparisonSet())

	for _, want := range []string{
		"TRANSITION IMPACT COMPARISON",
		"Configuration: /path/to/plan.yaml",
		"Transitions applied: 1",
		"Base only",
		"$1.20M",
		"age 58",
		"not reached",
		"Final Net Worth:  +$250.0K",
		"Retirement Date:  -1.5 years",
		"Sustainability:   unchanged",
		"2025-01-01  Promotion (annual_salary: 120000)",
		"RECOMMENDATIONS",
	} {
		assert.Contains(t, out, want)
	}
}

func TestTableFormatter_Format_NoResult(t *testing.T) {
	out := (&TableFormatter{}).Format(&ComparisonSet{})
	assert.Contains(t, out, "TRANSITION IMPACT COMPARISON")
	assert.NotContains(t, out, "IMPACT OF TRANSITIONS")
	assert.NotContains(t, out, "RECOMMENDATIONS")
}

func TestTableFormatter_FormatDecimal(t *testing.T) {
	tf := &TableFormatter{}
	tests := []struct {
		in   int64
		want string
	}{
		{500, "500"},
		{1500, "1.5K"},
		{-25000, "-25.0K"},
		{2500000, "2.50M"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tf.formatDecimal(decimal.NewFromInt(tt.in)))
	}
}

func TestTableFormatter_FormatCompact(t *testing.T) {
	tf := &TableFormatter{}
	assert.Equal(t, "Net worth: +$250.0K | Sustainable: true -> true", tf.FormatCompact(sampleComparisonSet()))
	assert.Equal(t, "no comparison", tf.FormatCompact(&ComparisonSet{}))
}

func TestCSVFormatter_Format(t *testing.T) {
	out, err := (&CSVFormatter{}).Format(sampleComparisonSet())
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "Run", records[0][0])
	assert.Equal(t, []string{"Base only", "1200000.00", "0.00", "0.00", "0.00", "0.00", "", "", "", "true", "", ""}, records[1])
	assert.Equal(t, "With transitions", records[2][0])
	assert.Equal(t, "2038-01-01", records[2][6])
	assert.Equal(t, "58", records[2][7])
	assert.Equal(t, "250000.00", records[2][10])
	assert.Equal(t, "-1.50", records[2][11])
}

func TestJSONFormatter_Format(t *testing.T) {
	for _, pretty := range []bool{false, true} {
		out, err := (&JSONFormatter{Pretty: pretty}).Format(sampleComparisonSet())
		require.NoError(t, err)
		assert.Equal(t, pretty, strings.Contains(out, "\n  "))

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		assert.Contains(t, decoded, "result")
		assert.Contains(t, decoded, "recommendations")
		assert.Equal(t, "/path/to/plan.yaml", decoded["configPath"])

		delta, ok := decoded["delta"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "250000", delta["finalNetWorth"])
		assert.Equal(t, "-1.5", delta["retirementYears"])
		assert.Equal(t, false, delta["sustainabilityChanged"])
		assert.Equal(t, float64(1), delta["transitionsApplied"])
	}
}

func TestJSONFormatter_FormatWithoutResult(t *testing.T) {
	compSet := sampleComparisonSet()
	compSet.Result = nil
	compSet.WithTransitions.LifetimeTaxes = decimal.NewFromInt(40000)
	compSet.Base.LifetimeTaxes = decimal.NewFromInt(35000)

	out, err := (&JSONFormatter{}).Format(compSet)
	require.NoError(t, err)

	var decoded struct {
		Delta struct {
			FinalNetWorth   decimal.Decimal  `json:"finalNetWorth"`
			LifetimeTaxes   decimal.Decimal  `json:"lifetimeTaxes"`
			RetirementYears *decimal.Decimal `json:"retirementYears"`
		} `json:"delta"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.True(t, decoded.Delta.FinalNetWorth.Equal(decimal.NewFromInt(250000)))
	assert.True(t, decoded.Delta.LifetimeTaxes.Equal(decimal.NewFromInt(5000)))
	assert.Nil(t, decoded.Delta.RetirementYears)
}
