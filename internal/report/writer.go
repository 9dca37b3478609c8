package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sprasad796/Stop-And-Go/internal/fsutil"
	"github.com/sprasad796/Stop-And-Go/internal/monitoring"
	"github.com/sprasad796/Stop-And-Go/internal/sim"
	"gonum.org/v1/plot"
)

// File names written into each episode directory.
const (
	SpeedPNG    = "speed.png"
	DistancePNG = "distance.png"
	EpisodeHTML = "episode.html"
	SummaryJSON = "summary.json"
)

// Writer records every finished episode as a directory of charts under Dir.
type Writer struct {
	fs    fsutil.FileSystem
	dir   string
	units Units
	log   *monitoring.Logger
}

// NewWriter returns a Writer rooted at dir. A nil fs writes to disk.
func NewWriter(fs fsutil.FileSystem, dir string, u Units, log *monitoring.Logger) *Writer {
	if fs == nil {
		fs = fsutil.OSFileSystem{}
	}
	return &Writer{fs: fs, dir: dir, units: u, log: log}
}

// EpisodeDir is where the charts for r are written.
func (w *Writer) EpisodeDir(r *sim.Result) string {
	return filepath.Join(w.dir, fmt.Sprintf("seed-%d-%s", r.Seed, r.ID.String()[:8]))
}

// Record writes the profile plots, the episode page and a JSON summary.
func (w *Writer) Record(ctx context.Context, r *sim.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := w.EpisodeDir(r)
	if err := w.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	speed, err := SpeedPlot(r.Cars, w.units)
	switch {
	case errors.Is(err, ErrNoProfiles):
		w.log.Warnf("episode %s has no profiles, skipping plots", r.ID)
	case err != nil:
		return err
	default:
		if err := w.writePlot(filepath.Join(dir, SpeedPNG), speed); err != nil {
			return err
		}
		distance, err := DistancePlot(r.Cars)
		if err != nil {
			return err
		}
		if err := w.writePlot(filepath.Join(dir, DistancePNG), distance); err != nil {
			return err
		}
	}

	var page bytes.Buffer
	if err := RenderEpisode(&page, r, w.units); err != nil {
		return err
	}
	if err := w.fs.WriteFile(filepath.Join(dir, EpisodeHTML), page.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write episode page: %w", err)
	}

	summary, err := json.MarshalIndent(struct {
		ID            string           `json:"id"`
		Seed          uint64           `json:"seed"`
		Window        sim.Window       `json:"window"`
		Camera        sim.CameraPose   `json:"camera"`
		Ticks         int              `json:"ticks"`
		Regenerations int              `json:"regenerations"`
		Cars          []sim.CarSummary `json:"cars"`
		Stats         sim.Stats        `json:"stats"`
	}{r.ID.String(), r.Seed, r.Window, r.Camera, r.Ticks, r.Regenerations, r.Cars, r.Stats}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := w.fs.WriteFile(filepath.Join(dir, SummaryJSON), summary, 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	w.log.Debugf("wrote report for episode %s to %s", r.ID, dir)
	return nil
}

func (w *Writer) writePlot(path string, p *plot.Plot) (err error) {
	f, err := w.fs.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return WritePNG(f, p)
}
