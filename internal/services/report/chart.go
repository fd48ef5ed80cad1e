package report

import (
	"bytes"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/peerscope/internal/models"
)

// RenderChart renders a PNG bar chart of one ratio: a bar per company with a
// defined value, then the benchmark bar. Returns raw PNG bytes.
func (s *Service) RenderChart(table *models.PeerComparisonTable, ratio models.RatioName) ([]byte, error) {
	if table == nil {
		return nil, fmt.Errorf("no table to chart")
	}
	if !models.IsRatioName(string(ratio)) {
		return nil, fmt.Errorf("unknown ratio %q", ratio)
	}

	companyStyle := chart.Style{
		FillColor:   drawing.ColorFromHex("2563eb"), // blue-600
		StrokeColor: drawing.ColorFromHex("1d4ed8"),
		StrokeWidth: 1,
	}
	benchmarkStyle := chart.Style{
		FillColor:   drawing.ColorFromHex("9ca3af"), // gray-400
		StrokeColor: drawing.ColorFromHex("6b7280"),
		StrokeWidth: 1,
	}

	var bars []chart.Value
	for _, c := range table.Columns {
		if v, ok := c.Value(ratio).Get(); ok {
			bars = append(bars, chart.Value{Label: c.Symbol, Value: v, Style: companyStyle})
		}
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no company has a value for %s", ratio)
	}
	if v, ok := table.Benchmark.Get(ratio).Get(); ok {
		bars = append(bars, chart.Value{Label: "Benchmark", Value: v, Style: benchmarkStyle})
	}

	lo, hi := valueRange(bars)
	graph := chart.BarChart{
		Title:    string(ratio),
		Width:    900,
		Height:   400,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		// bars grow from zero so negative ratios point down
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// valueRange spans zero and every bar, never collapsing to a point
func valueRange(bars []chart.Value) (float64, float64) {
	lo, hi := 0.0, 0.0
	for _, b := range bars {
		lo = math.Min(lo, b.Value)
		hi = math.Max(hi, b.Value)
	}
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = 1
	}
	if hi > 0 {
		hi += pad
	}
	if lo < 0 {
		lo -= pad
	}
	if hi == lo {
		hi = lo + 1
	}
	return lo, hi
}
