package compare

import (
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// JSONFormatter writes a comparison set with the run-to-run deltas lifted
// to the top level, so consumers need not dig into the raw result.
type JSONFormatter struct {
	Pretty bool
}

type comparisonDelta struct {
	FinalNetWorth         decimal.Decimal  `json:"finalNetWorth"`
	LifetimeTaxes         decimal.Decimal  `json:"lifetimeTaxes"`
	RetirementYears       *decimal.Decimal `json:"retirementYears,omitempty"`
	SustainabilityChanged bool             `json:"sustainabilityChanged"`
	TransitionsApplied    int              `json:"transitionsApplied"`
}

type comparisonReport struct {
	*ComparisonSet
	Delta comparisonDelta `json:"delta"`
}

func (jf *JSONFormatter) Format(compSet *ComparisonSet) (string, error) {
	report := comparisonReport{
		ComparisonSet: compSet,
		Delta: comparisonDelta{
			FinalNetWorth: compSet.WithTransitions.FinalNetWorth.Sub(compSet.Base.FinalNetWorth),
			LifetimeTaxes: compSet.WithTransitions.LifetimeTaxes.Sub(compSet.Base.LifetimeTaxes),
		},
	}
	if r := compSet.Result; r != nil {
		report.Delta.FinalNetWorth = r.FinalNetWorthDifference
		report.Delta.RetirementYears = r.RetirementDateDifferenceYears
		report.Delta.SustainabilityChanged = r.SustainabilityChanged
		report.Delta.TransitionsApplied = len(r.WithTransitions.TransitionPoints)
	}

	var data []byte
	var err error
	if jf.Pretty {
		data, err = json.MarshalIndent(report, "", "  ")
	} else {
		data, err = json.Marshal(report)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
