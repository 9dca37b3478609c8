// Package sim drives the intersection one fixed tick at a time. An Episode
// owns every car, the arbitrator and the following-distance enforcer; a
// tick is always arbitration, then car updates in sequence order, then the
// enforcer. Resetting means building a new Episode.
package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sprasad796/Stop-And-Go/internal/config"
	"github.com/sprasad796/Stop-And-Go/internal/following"
	"github.com/sprasad796/Stop-And-Go/internal/geometry"
	"github.com/sprasad796/Stop-And-Go/internal/intersection"
	"github.com/sprasad796/Stop-And-Go/internal/monitoring"
	"github.com/sprasad796/Stop-And-Go/internal/motion"
	"github.com/sprasad796/Stop-And-Go/internal/vehicle"
	"gonum.org/v1/gonum/spatial/r2"
)

// ErrEpisodeStalled is returned when cars are still running at the tick cap.
var ErrEpisodeStalled = errors.New("episode stalled")

// samplerStream is the PCG stream used for every episode draw.
const samplerStream uint64 = 1

// Frame is everything a renderer needs for one tick.
type Frame struct {
	Tick      int                            `json:"tick"`
	Time      float64                        `json:"time_s"`
	Cars      []vehicle.Snapshot             `json:"cars"`
	StopLines [geometry.NumApproaches]r2.Vec `json:"stop_lines"`
	Camera    CameraPose                     `json:"camera"`
}

// Episode is one simulation run from the initial poses until every car has
// left the frame.
type Episode struct {
	ID            uuid.UUID
	Seed          uint64
	Window        Window
	Layout        geometry.Layout
	Cars          []*vehicle.State
	Clock         Clock
	Regenerations int

	camera   Camera
	refSeq   int
	arb      *intersection.Arbitrator
	enf      *following.Enforcer
	maxTicks int
	log      *monitoring.Logger

	frames    []Frame
	refSnap   *vehicle.Snapshot
	clamps    int
	waitTicks []int
	speeds    [][]float64
	exitTicks []int
}

// NewEpisode samples a fresh episode from cfg. Profiles that cannot cover
// the recording window are regenerated up to max_regenerations times.
func NewEpisode(cfg *config.SimConfig, log *monitoring.Logger) (*Episode, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := motion.NewSampler(cfg.GetSeed(), samplerStream)
	l := geometry.NewLayout(cfg)

	var lastErr error
	for regen := 0; regen <= cfg.GetMaxRegenerations(); regen++ {
		e, err := generate(cfg, l, s, log)
		if err == nil {
			e.Regenerations = regen
			return e, nil
		}
		if !errors.Is(err, ErrFrameBounds) {
			return nil, err
		}
		lastErr = err
		log.Debugf("seed %d: regenerating (%d): %v", cfg.GetSeed(), regen+1, err)
	}
	return nil, fmt.Errorf("seed %d: gave up after %d regenerations: %w",
		cfg.GetSeed(), cfg.GetMaxRegenerations(), lastErr)
}

// generate draws the window, stop durations, turns and profiles in that
// order and places the cars.
func generate(cfg *config.SimConfig, l geometry.Layout, s *motion.Sampler, log *monitoring.Logger) (*Episode, error) {
	n := cfg.GetNumCars()
	w := SampleWindow(cfg, s)

	stops := make([]float64, n)
	for i := range stops {
		d, err := s.StopDuration(cfg.GetStopDuration(), cfg.GetMaxSampleAttempts())
		if err != nil {
			return nil, fmt.Errorf("car %d: %w", i+1, err)
		}
		stops[i] = d
	}

	turns := make([]geometry.Turn, n)
	for i := range turns {
		t, err := turnFor(cfg.Car(i+1).Turn, s)
		if err != nil {
			return nil, fmt.Errorf("car %d: %w", i+1, err)
		}
		turns[i] = t
	}

	gen := motion.NewGenerator(s, log)
	profiles := make([]*motion.Profile, n)
	for i := range profiles {
		p, err := gen.Generate(motion.ParamsFromConfig(cfg, cfg.Car(i+1), stops[i]))
		if err != nil {
			return nil, fmt.Errorf("car %d: %w", i+1, err)
		}
		profiles[i] = p
	}
	if err := w.CheckProfiles(profiles, cfg.GetReferenceCar(), cfg.GetTickStepS(), cfg.GetEndMarginS()); err != nil {
		return nil, err
	}

	e := &Episode{
		ID:        uuid.New(),
		Seed:      cfg.GetSeed(),
		Window:    w,
		Layout:    l,
		Clock:     Clock{Step: cfg.GetTickStepS()},
		camera:    CameraFromConfig(cfg),
		refSeq:    cfg.GetReferenceCar(),
		arb:       intersection.NewArbitrator(l, log),
		enf:       following.NewEnforcer(cfg.GetFollowingDistancePx(), log),
		maxTicks:  cfg.GetMaxEpisodeTicks(),
		log:       log,
		waitTicks: make([]int, n),
		speeds:    make([][]float64, n),
		exitTicks: make([]int, n),
	}
	e.Cars = make([]*vehicle.State, n)
	for i := range e.Cars {
		e.Cars[i] = vehicle.New(i+1, l, profiles[i], turns[i])
		e.exitTicks[i] = -1
	}
	return e, nil
}

func turnFor(name string, s *motion.Sampler) (geometry.Turn, error) {
	if name == config.TurnRandom {
		return geometry.Turns[s.IntN(len(geometry.Turns))], nil
	}
	t, err := geometry.ParseTurn(name)
	if err != nil {
		return t, fmt.Errorf("%w: %v", config.ErrConfiguration, err)
	}
	return t, nil
}

// Done reports whether every car has left the frame.
func (e *Episode) Done() bool {
	for _, c := range e.Cars {
		if !c.Ended {
			return false
		}
	}
	return true
}

// Camera returns the episode's camera selection.
func (e *Episode) Camera() Camera { return e.camera }

// Snapshot captures the frame for the current tick without a resolved
// camera.
func (e *Episode) Snapshot() Frame {
	f := Frame{
		Tick:      e.Clock.Tick,
		Time:      e.Clock.Time(),
		Cars:      make([]vehicle.Snapshot, len(e.Cars)),
		StopLines: e.Layout.StopLines,
	}
	for i, c := range e.Cars {
		f.Cars[i] = c.Snapshot()
	}
	return f
}

// Step runs one tick and reports whether any car is still running.
func (e *Episode) Step() bool {
	if e.Done() {
		return false
	}
	tick := e.Clock.Tick
	if e.Window.Contains(tick) {
		e.frames = append(e.frames, e.Snapshot())
	}
	if tick == e.Window.Reference {
		snap := e.Cars[e.refSeq-1].Snapshot()
		e.refSnap = &snap
	}

	e.arb.Evaluate(e.Cars)
	for i, c := range e.Cars {
		if !c.Ended && c.ForcedStop() {
			e.waitTicks[i]++
		}
		c.Update(e.Layout)
	}
	e.clamps += e.enf.Apply(e.Cars)

	for i, c := range e.Cars {
		switch {
		case !c.Ended:
			e.speeds[i] = append(e.speeds[i], c.Speed)
		case e.exitTicks[i] < 0:
			e.exitTicks[i] = tick + 1
			e.log.Debugf("car %d left the frame at tick %d", c.Sequence, tick+1)
		}
	}
	e.Clock.Advance()
	return !e.Done()
}

// Run steps the episode to completion. pace, when non-nil, is called after
// every tick with the tick duration.
func (e *Episode) Run(ctx context.Context, pace func(time.Duration)) (*Result, error) {
	for !e.Done() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.Clock.Tick >= e.maxTicks {
			return nil, fmt.Errorf("%w: %d car(s) still running after %d ticks",
				ErrEpisodeStalled, e.running(), e.maxTicks)
		}
		e.Step()
		if pace != nil {
			pace(e.Clock.Duration())
		}
	}
	return e.result(), nil
}

func (e *Episode) running() int {
	n := 0
	for _, c := range e.Cars {
		if !c.Ended {
			n++
		}
	}
	return n
}

// result resolves the camera and stamps it into every recorded frame.
func (e *Episode) result() *Result {
	ref := e.Cars[e.refSeq-1].Snapshot()
	if e.refSnap != nil {
		ref = *e.refSnap
	}
	pose := e.camera.resolve(e.Layout, ref)
	for i := range e.frames {
		e.frames[i].Camera = pose
	}

	r := &Result{
		ID:            e.ID,
		Seed:          e.Seed,
		Window:        e.Window,
		Camera:        pose,
		Ticks:         e.Clock.Tick,
		Regenerations: e.Regenerations,
		Frames:        e.frames,
		Cars:          make([]CarSummary, len(e.Cars)),
	}
	for i, c := range e.Cars {
		r.Cars[i] = CarSummary{
			Sequence:     c.Sequence,
			Turn:         c.Turn,
			StopDuration: c.StopDuration,
			Kinematics:   c.Profile.Kinematics,
			Attempts:     c.Profile.Attempts,
			WaitS:        float64(e.waitTicks[i]) * e.Clock.Step,
			MeanSpeed:    mean(e.speeds[i]),
			ExitTick:     e.exitTicks[i],
			Profile:      c.Profile,
		}
	}
	r.Stats = summarize(r.Cars, e.arb.MaxQueue(), e.clamps)
	return r
}
