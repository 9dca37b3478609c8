package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/sprasad796/Stop-And-Go/internal/config"
	"github.com/sprasad796/Stop-And-Go/internal/monitoring"
	"github.com/sprasad796/Stop-And-Go/internal/timeutil"
)

// Recorder consumes finished episodes, e.g. the SQLite store or the chart
// writer.
type Recorder interface {
	Record(ctx context.Context, r *Result) error
}

// RunnerOptions controls a batch of episodes.
type RunnerOptions struct {
	Episodes  int  // Defaults to 1
	Realtime  bool // Sleep one tick duration per tick
	Clock     timeutil.Clock
	Recorders []Recorder
}

// Runner runs episodes one after another with consecutive seeds.
type Runner struct {
	cfg  *config.SimConfig
	opts RunnerOptions
	log  *monitoring.Logger
}

// NewRunner returns a runner for a validated configuration. log may be nil.
func NewRunner(cfg *config.SimConfig, opts RunnerOptions, log *monitoring.Logger) *Runner {
	if opts.Episodes <= 0 {
		opts.Episodes = 1
	}
	if opts.Clock == nil {
		opts.Clock = timeutil.RealClock{}
	}
	return &Runner{cfg: cfg, opts: opts, log: log}
}

// Run runs every episode and hands each result to the recorders. It stops at
// the first error or when ctx is cancelled.
func (r *Runner) Run(ctx context.Context) ([]*Result, error) {
	var pace func(time.Duration)
	if r.opts.Realtime {
		pace = r.opts.Clock.Sleep
	}

	base := r.cfg.GetSeed()
	results := make([]*Result, 0, r.opts.Episodes)
	for i := 0; i < r.opts.Episodes; i++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		seed := base + uint64(i)
		started := r.opts.Clock.Now()

		ep, err := NewEpisode(r.cfg.WithSeed(seed), r.log.With(fmt.Sprintf("seed=%d", seed)))
		if err != nil {
			return results, fmt.Errorf("episode %d: %w", i, err)
		}
		res, err := ep.Run(ctx, pace)
		if err != nil {
			return results, fmt.Errorf("episode %d (seed %d): %w", i, seed, err)
		}
		for _, rec := range r.opts.Recorders {
			if err := rec.Record(ctx, res); err != nil {
				return results, fmt.Errorf("record episode %s: %w", res.ID, err)
			}
		}

		r.log.Infof("episode %d seed=%d id=%s ticks=%d frames=%d regen=%d wait=%.2fs queue=%d clamps=%d (%s)",
			i, seed, res.ID, res.Ticks, len(res.Frames), res.Regenerations,
			res.Stats.MeanWaitS, res.Stats.MaxQueue, res.Stats.Clamps,
			r.opts.Clock.Since(started).Round(time.Millisecond))
		results = append(results, res)
	}
	return results, nil
}
