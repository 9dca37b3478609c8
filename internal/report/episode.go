package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/sprasad796/Stop-And-Go/internal/geometry"
	"github.com/sprasad796/Stop-And-Go/internal/sim"
)

// EpisodePage builds the interactive page for one episode: recorded speed
// per car, car centres over the window and time held at the stop.
func EpisodePage(r *sim.Result, u Units) *components.Page {
	page := components.NewPage()
	page.SetPageTitle(episodeTitle(r))
	page.AddCharts(speedChart(r, u), trajectoryChart(r), waitChart(r))
	return page
}

// RenderEpisode writes the episode page as HTML.
func RenderEpisode(w io.Writer, r *sim.Result, u Units) error {
	if err := EpisodePage(r, u).Render(w); err != nil {
		return fmt.Errorf("render episode %s: %w", r.ID, err)
	}
	return nil
}

func episodeTitle(r *sim.Result) string {
	return fmt.Sprintf("Stop-sign episode %d", r.Seed)
}

func windowSubtitle(r *sim.Result) string {
	return fmt.Sprintf("frames %d-%d, reference %d, %d ticks", r.Window.Start, r.Window.End, r.Window.Reference, r.Ticks)
}

// seriesByCar groups the recorded frames into one slice of points per car.
func seriesByCar(r *sim.Result, point func(f sim.Frame, i int) interface{}) map[int][]interface{} {
	out := make(map[int][]interface{}, len(r.Cars))
	for _, f := range r.Frames {
		for i, c := range f.Cars {
			if c.Ended {
				continue
			}
			out[c.Sequence] = append(out[c.Sequence], point(f, i))
		}
	}
	return out
}

func speedChart(r *sim.Result, u Units) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: episodeTitle(r), Theme: "dark", Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Recorded speed", Subtitle: windowSubtitle(r)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Time (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: fmt.Sprintf("Speed (%s)", u.label())}),
	)

	points := seriesByCar(r, func(f sim.Frame, i int) interface{} {
		return []interface{}{f.Time, u.speed(f.Cars[i].Speed)}
	})
	for _, c := range r.Cars {
		data := make([]opts.LineData, 0, len(points[c.Sequence]))
		for _, p := range points[c.Sequence] {
			data = append(data, opts.LineData{Value: p})
		}
		line.AddSeries(carLabel(c), data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	}
	return line
}

func trajectoryChart(r *sim.Result) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "720px", Height: "720px"}),
		charts.WithTitleOpts(opts.Title{Title: "Trajectories", Subtitle: fmt.Sprintf("camera %s", r.Camera.Mode)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "x (px)", NameLocation: "middle", NameGap: 25}),
		// Frame y grows downwards.
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "y (px)", Inverse: opts.Bool(true)}),
	)

	points := seriesByCar(r, func(f sim.Frame, i int) interface{} {
		c := f.Cars[i].Center
		return []interface{}{c.X, c.Y}
	})
	for _, c := range r.Cars {
		data := make([]opts.ScatterData, 0, len(points[c.Sequence]))
		for _, p := range points[c.Sequence] {
			data = append(data, opts.ScatterData{Value: p})
		}
		scatter.AddSeries(carLabel(c), data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	}

	if len(r.Frames) > 0 {
		stops := make([]opts.ScatterData, 0, geometry.NumApproaches)
		for path, p := range r.Frames[0].StopLines {
			stops = append(stops, opts.ScatterData{Name: fmt.Sprintf("path %d", path+1), Value: []interface{}{p.X, p.Y}, Symbol: "rect"})
		}
		scatter.AddSeries("stop lines", stops, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))
	}
	scatter.AddSeries("camera", []opts.ScatterData{{Value: []interface{}{r.Camera.X, r.Camera.Y}, Symbol: "diamond"}},
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}))
	return scatter
}

func waitChart(r *sim.Result) *charts.Bar {
	x := make([]string, len(r.Cars))
	stop := make([]opts.BarData, len(r.Cars))
	wait := make([]opts.BarData, len(r.Cars))
	for i, c := range r.Cars {
		x[i] = carLabel(c)
		stop[i] = opts.BarData{Value: c.StopDuration}
		wait[i] = opts.BarData{Value: c.WaitS}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Time at the stop",
			Subtitle: fmt.Sprintf("mean wait %.2f s, max queue %d, %d clamps", r.Stats.MeanWaitS, r.Stats.MaxQueue, r.Stats.Clamps),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Seconds"}),
	)
	bar.SetXAxis(x).
		AddSeries("sampled stop", stop).
		AddSeries("held", wait,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}
