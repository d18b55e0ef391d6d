package output

import (
	json "github.com/goccy/go-json"
	"github.com/rgehrsitz/fincast/internal/domain"
)

// JSONFormatter writes the full result together with its summary
type JSONFormatter struct {
	Pretty bool
}

func (JSONFormatter) Name() string { return "json" }

type jsonReport struct {
	Summary Summary `json:"summary"`
	*domain.EnhancedSimulationResult
}

func (f JSONFormatter) Format(result *domain.EnhancedSimulationResult) ([]byte, error) {
	report := jsonReport{
		Summary:                  Summarize(&result.SimulationResult),
		EnhancedSimulationResult: result,
	}
	if f.Pretty {
		return json.MarshalIndent(report, "", "  ")
	}
	return json.Marshal(report)
}
