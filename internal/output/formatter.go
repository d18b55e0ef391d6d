// Package output renders projection results for people and for other tools.
package output

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rgehrsitz/fincast/internal/domain"
	"github.com/shopspring/decimal"
)

// Formatter renders a projection result
type Formatter interface {
	Name() string
	Format(result *domain.EnhancedSimulationResult) ([]byte, error)
}

// FormatterFunc adapts a function to the Formatter interface
type FormatterFunc struct {
	ID string
	F  func(result *domain.EnhancedSimulationResult) ([]byte, error)
}

func (f FormatterFunc) Name() string { return f.ID }

func (f FormatterFunc) Format(result *domain.EnhancedSimulationResult) ([]byte, error) {
	return f.F(result)
}

var formatters = map[string]func() Formatter{
	"console": func() Formatter { return ConsoleFormatter{} },
	"table":   func() Formatter { return ConsoleFormatter{} },
	"csv":     func() Formatter { return CSVFormatter{} },
	"json":    func() Formatter { return JSONFormatter{Pretty: true} },
	"summary": func() Formatter { return SummaryFormatter{} },
	"chart":   func() Formatter { return ChartFormatter{Width: 72, Height: 14} },
}

// GetFormatterByName returns the formatter registered under name
func GetFormatterByName(name string) (Formatter, error) {
	factory, ok := formatters[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unsupported format: %s (available: %s)", name, strings.Join(AvailableFormats(), ", "))
	}
	return factory(), nil
}

// AvailableFormats lists the registered format names in order
func AvailableFormats() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Enhance wraps a plain result so it can be passed to a Formatter
func Enhance(result *domain.SimulationResult) *domain.EnhancedSimulationResult {
	if result == nil {
		return &domain.EnhancedSimulationResult{}
	}
	return &domain.EnhancedSimulationResult{SimulationResult: *result}
}

// WriteFormatted renders result and writes it to a timestamped file in the
// working directory, returning the file name
func WriteFormatted(f Formatter, result *domain.EnhancedSimulationResult, ext string) (string, error) {
	data, err := f.Format(result)
	if err != nil {
		return "", fmt.Errorf("failed to format %s output: %w", f.Name(), err)
	}
	filename := fmt.Sprintf("fincast_report_%s.%s", time.Now().Format("20060102_150405"), ext)
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return filename, nil
}

// FormatCurrency formats an amount as dollars with two decimals
func FormatCurrency(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-$" + amount.Abs().StringFixed(2)
	}
	return "$" + amount.StringFixed(2)
}

// FormatPercentage formats a fraction (0.05) as a percentage (5.00%)
func FormatPercentage(fraction decimal.Decimal) string {
	return fraction.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Format("2006-01-02")
}
