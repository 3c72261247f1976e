package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/i474232898/modis-temperature/internal/temperature"
)

// ErrNoSuccessfulEstimates is returned when a history holds nothing to plot.
var ErrNoSuccessfulEstimates = errors.New("no successful estimates to plot")

// HistoryPlot writes a PNG with the min, avg and max series of a watch point.
// Estimates that are not successful are left out.
func HistoryPlot(w io.Writer, name string, estimates []temperature.PointEstimate) error {
	minPts := make(plotter.XYs, 0, len(estimates))
	avgPts := make(plotter.XYs, 0, len(estimates))
	maxPts := make(plotter.XYs, 0, len(estimates))
	for _, e := range estimates {
		if !e.Outcome.OK() {
			continue
		}
		x := float64(e.Timestamp.Unix())
		minPts = append(minPts, plotter.XY{X: x, Y: e.Outcome.MinC})
		avgPts = append(avgPts, plotter.XY{X: x, Y: e.Outcome.AvgC})
		maxPts = append(maxPts, plotter.XY{X: x, Y: e.Outcome.MaxC})
	}
	if len(avgPts) == 0 {
		return ErrNoSuccessfulEstimates
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - estimated temperature", name)
	p.X.Label.Text = "Time (UTC)"
	p.Y.Label.Text = "Temperature (°C)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "01-02 15:04"}

	series := []struct {
		label string
		pts   plotter.XYs
		color color.Color
	}{
		{"min", minPts, color.RGBA{R: 49, G: 54, B: 149, A: 255}},
		{"avg", avgPts, color.RGBA{R: 60, G: 60, B: 60, A: 255}},
		{"max", maxPts, color.RGBA{R: 165, G: 0, B: 38, A: 255}},
	}
	for _, s := range series {
		line, err := plotter.NewLine(s.pts)
		if err != nil {
			return err
		}
		line.Color = s.color
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.label, line)
	}
	p.Legend.Top = true

	wt, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("render plot: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}
