package record

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/olivierh59500/specks/internal/stats"
)

// RenderEnergyChart plots kinetic energy against tick as PNG
func RenderEnergyChart(w io.Writer, h *stats.History) error {
	if h.Len() < 2 {
		return errors.Errorf("need at least 2 samples to plot, have %d", h.Len())
	}

	energies := h.Energies()
	lo, hi := energies[0], energies[0]
	for _, e := range energies {
		lo = min(lo, e)
		hi = max(hi, e)
	}
	yRange := &chart.ContinuousRange{Min: lo, Max: hi}
	if hi == lo {
		// A flat series has no range to scale to
		yRange = &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}

	graph := chart.Chart{
		Title:  "Kinetic energy",
		Width:  1024,
		Height: 512,
		XAxis: chart.XAxis{
			Name:  "tick",
			Style: chart.Style{FontSize: 10.0},
		},
		YAxis: chart.YAxis{
			Name:  "energy",
			Style: chart.Style{FontSize: 10.0},
			Range: yRange,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "kinetic energy",
				XValues: h.Ticks(),
				YValues: energies,
				Style: chart.Style{
					StrokeColor: drawing.Color{R: 49, G: 130, B: 189, A: 255},
					StrokeWidth: 2.0,
				},
			},
		},
	}
	return errors.Wrap(graph.Render(chart.PNG, w), "rendering chart")
}

// WriteEnergyChart writes the energy chart to a PNG file
func WriteEnergyChart(path string, h *stats.History) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating chart %s", path)
	}
	if err := RenderEnergyChart(f, h); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "closing chart %s", path)
}
