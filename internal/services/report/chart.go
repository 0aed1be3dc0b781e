package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/dkmcgowan/maplebook/internal/models"
)

// RenderACBChart renders a PNG line chart of a cost-basis audit trail.
// Two series: ACB Per Unit (blue solid) and Running Quantity (gray dashed).
// Returns raw PNG bytes.
func RenderACBChart(result *models.ACBResult) ([]byte, error) {
	if len(result.Entries) < 2 {
		return nil, fmt.Errorf("need at least 2 ledger entries, got %d", len(result.Entries))
	}

	xValues := make([]time.Time, len(result.Entries))
	acbY := make([]float64, len(result.Entries))
	qtyY := make([]float64, len(result.Entries))

	for i, e := range result.Entries {
		xValues[i] = e.Date
		acbY[i] = e.ACBPerUnit
		qtyY[i] = e.RunningQuantity
	}

	acbSeries := chart.TimeSeries{
		Name: "ACB Per Unit",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: acbY,
	}

	qtySeries := chart.TimeSeries{
		Name: "Running Quantity",
		YAxis: chart.YAxisSecondary,
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: qtyY,
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s Adjusted Cost Base", result.Symbol),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.2f", f)
				}
				return ""
			},
		},
		YAxisSecondary: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			acbSeries,
			qtySeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
