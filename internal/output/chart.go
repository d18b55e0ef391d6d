package output

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/fincast/internal/domain"
)

// Series is one line on a chart
type Series struct {
	Name   string
	Points []float64
}

// ASCIIChart draws one or more series as a character grid with a y axis
type ASCIIChart struct {
	Title  string
	Series []Series
	Width  int
	Height int
}

const yAxisWidth = 12

var seriesChars = []rune{'●', '■', '▲', '♦'}

// Render returns the chart as text
func (c *ASCIIChart) Render() string {
	var out strings.Builder
	if c.Title != "" {
		out.WriteString(TitleStyle.Render(c.Title))
		out.WriteString("\n\n")
	}

	minVal, maxVal, ok := c.bounds()
	if !ok || c.Height < 2 || c.Width <= yAxisWidth+1 {
		out.WriteString("No data to display\n")
		return out.String()
	}

	chartWidth := c.Width - yAxisWidth
	grid := make([][]rune, c.Height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", chartWidth))
	}

	for idx, series := range c.Series {
		char := seriesChars[idx%len(seriesChars)]
		prevX, prevY := -1, -1
		for i, p := range series.Points {
			x := 0
			if len(series.Points) > 1 {
				x = int(float64(i) / float64(len(series.Points)-1) * float64(chartWidth-1))
			}
			y := c.Height - 1 - int((p-minVal)/(maxVal-minVal)*float64(c.Height-1))
			if prevX >= 0 {
				drawLine(grid, prevX, prevY, x, y, char)
			}
			grid[y][x] = char
			prevX, prevY = x, y
		}
	}

	axis := lipgloss.NewStyle().Foreground(ColorMuted).Width(yAxisWidth).Align(lipgloss.Right)
	for i, row := range grid {
		value := maxVal - float64(i)/float64(c.Height-1)*(maxVal-minVal)
		out.WriteString(axis.Render(chartValue(value)))
		out.WriteString(" │ ")
		out.WriteString(string(row))
		out.WriteString("\n")
	}
	out.WriteString(strings.Repeat(" ", yAxisWidth))
	out.WriteString(" └")
	out.WriteString(strings.Repeat("─", chartWidth))
	out.WriteString("\n")

	if len(c.Series) > 1 {
		for idx, series := range c.Series {
			fmt.Fprintf(&out, "%c %s  ", seriesChars[idx%len(seriesChars)], series.Name)
		}
		out.WriteString("\n")
	}
	return out.String()
}

// bounds returns the padded range across all series
func (c *ASCIIChart) bounds() (float64, float64, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range c.Series {
		for _, p := range s.Points {
			lo = math.Min(lo, p)
			hi = math.Max(hi, p)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0, false
	}
	if hi == lo {
		hi, lo = hi+1, lo-1
	}
	pad := (hi - lo) * 0.1
	return lo - pad, hi + pad, true
}

// drawLine joins two grid cells with Bresenham's algorithm
func drawLine(grid [][]rune, x0, y0, x1, y1 int, char rune) {
	dx, dy := abs(x1-x0), abs(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		if grid[y0][x0] == ' ' {
			grid[y0][x0] = char
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func chartValue(v float64) string {
	switch a := math.Abs(v); {
	case a >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case a >= 1e3:
		return fmt.Sprintf("%.0fK", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

// ChartFormatter plots net worth, cash and debt over the projection
type ChartFormatter struct {
	Width  int
	Height int
}

func (ChartFormatter) Name() string { return "chart" }

func (f ChartFormatter) Format(result *domain.EnhancedSimulationResult) ([]byte, error) {
	netWorth := make([]float64, len(result.States))
	cash := make([]float64, len(result.States))
	debt := make([]float64, len(result.States))
	for i, s := range result.States {
		netWorth[i] = s.NetWorth.InexactFloat64()
		cash[i] = s.Cash.InexactFloat64()
		debt[i] = s.LoanBalance.InexactFloat64()
	}

	chart := &ASCIIChart{
		Title:  "Net worth, cash and debt",
		Width:  f.Width,
		Height: f.Height,
		Series: []Series{
			{Name: "Net worth", Points: netWorth},
			{Name: "Cash", Points: cash},
			{Name: "Debt", Points: debt},
		},
	}
	var buf bytes.Buffer
	buf.WriteString(chart.Render())
	return buf.Bytes(), nil
}
