// Package report renders finished episodes: motion-profile PNGs through
// gonum/plot and an interactive episode page through go-echarts.
package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/sprasad796/Stop-And-Go/internal/motion"
	"github.com/sprasad796/Stop-And-Go/internal/sim"
	"github.com/sprasad796/Stop-And-Go/internal/units"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ErrNoProfiles is returned when a result carries no motion profiles to plot.
var ErrNoProfiles = errors.New("no motion profiles")

// Plot size shared by every profile PNG.
const (
	plotWidth  = 14 * vg.Inch
	plotHeight = 6 * vg.Inch
)

// Units selects how speeds are shown. PPS needs the frame resolution.
type Units struct {
	Speed      string
	Resolution float64
}

func (u Units) speed(mps float64) float64 {
	if u.Speed == units.PPS {
		return units.SpeedToPixels(mps, u.Resolution)
	}
	return units.ConvertSpeed(mps, u.Speed)
}

func (u Units) label() string {
	return units.Label(u.Speed)
}

// SpeedPlot draws speed against time for every car with a profile.
func SpeedPlot(cars []sim.CarSummary, u Units) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Speed vs Time"
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = fmt.Sprintf("Speed (%s)", u.label())
	err := addProfileLines(p, cars, func(e motion.Entry) float64 { return u.speed(e.Speed) })
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DistancePlot draws cumulative distance against time for every car.
func DistancePlot(cars []sim.CarSummary) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Distance vs Time"
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Distance (px)"
	err := addProfileLines(p, cars, func(e motion.Entry) float64 { return e.Distance })
	if err != nil {
		return nil, err
	}
	return p, nil
}

func addProfileLines(p *plot.Plot, cars []sim.CarSummary, y func(motion.Entry) float64) error {
	n := 0
	for i, c := range cars {
		if c.Profile == nil || c.Profile.Len() == 0 {
			continue
		}
		pts := make(plotter.XYs, c.Profile.Len())
		for j, e := range c.Profile.Entries {
			pts[j].X = e.Time
			pts[j].Y = y(e)
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("car %d: %w", c.Sequence, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(carLabel(c), line)
		n++
	}
	if n == 0 {
		return ErrNoProfiles
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	p.Add(plotter.NewGrid())
	return nil
}

func carLabel(c sim.CarSummary) string {
	return fmt.Sprintf("car %d (%s)", c.Sequence, c.Turn)
}

// WritePNG encodes p as a PNG of the standard report size.
func WritePNG(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(plotWidth, plotHeight, "png")
	if err != nil {
		return fmt.Errorf("encode plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write plot: %w", err)
	}
	return nil
}
