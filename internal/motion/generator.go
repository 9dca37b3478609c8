package motion

import (
	"fmt"
	"math"

	"github.com/sprasad796/Stop-And-Go/internal/config"
	"github.com/sprasad796/Stop-And-Go/internal/monitoring"
	"github.com/sprasad796/Stop-And-Go/internal/units"
)

// windowEpsilon keeps float noise in phase end times from adding a tick.
const windowEpsilon = 1e-9

// Params are the inputs of one profile generation.
type Params struct {
	DistBeforeStopM float64
	DistAfterStopM  float64
	Decel           config.Gaussian
	Accel           config.Gaussian
	SpeedBefore     config.Gaussian
	SpeedAfter      config.Gaussian
	StopDuration    float64 // Pre-sampled, seconds

	Step         float64 // Tick step (s)
	Resolution   float64 // px per metre
	FrameWidthPx float64 // PAST_SIM runs until the car has covered this
	MaxAttempts  int
}

// ParamsFromConfig builds generation parameters for one car.
func ParamsFromConfig(cfg *config.SimConfig, car config.CarParams, stopDuration float64) Params {
	return Params{
		DistBeforeStopM: car.DistBeforeStopM,
		DistAfterStopM:  car.DistAfterStopM,
		Decel:           car.Decel,
		Accel:           car.Accel,
		SpeedBefore:     car.SpeedBefore,
		SpeedAfter:      car.SpeedAfter,
		StopDuration:    stopDuration,
		Step:            cfg.GetTickStepS(),
		Resolution:      cfg.GetResolutionPxPerM(),
		FrameWidthPx:    cfg.GetFrameWidthPx(),
		MaxAttempts:     cfg.GetMaxSampleAttempts(),
	}
}

func badParam(format string, v ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{config.ErrConfiguration}, v...)...)
}

// Validate checks the parameters lie in the sampler's domain.
func (p Params) Validate() error {
	if p.DistBeforeStopM <= 0 || p.DistAfterStopM <= 0 {
		return badParam("distances must be positive (before=%v, after=%v)", p.DistBeforeStopM, p.DistAfterStopM)
	}
	for name, g := range map[string]config.Gaussian{
		"decel":        p.Decel,
		"accel":        p.Accel,
		"speed before": p.SpeedBefore,
		"speed after":  p.SpeedAfter,
	} {
		if g.StdDev <= 0 || math.IsNaN(g.Mean) {
			return badParam("%s stddev must be positive, got %v", name, g.StdDev)
		}
	}
	if p.StopDuration <= 0 {
		return badParam("stop duration must be positive, got %v", p.StopDuration)
	}
	if p.Step <= 0 {
		return badParam("tick step must be positive, got %v", p.Step)
	}
	if p.Resolution <= 0 {
		return badParam("resolution must be positive, got %v", p.Resolution)
	}
	if p.FrameWidthPx <= 0 {
		return badParam("frame width must be positive, got %v", p.FrameWidthPx)
	}
	if p.MaxAttempts <= 0 {
		return badParam("max attempts must be positive, got %d", p.MaxAttempts)
	}
	return nil
}

// Generator samples kinematics and builds profiles.
type Generator struct {
	sampler *Sampler
	log     *monitoring.Logger
}

// NewGenerator returns a generator drawing from s. log may be nil.
func NewGenerator(s *Sampler, log *monitoring.Logger) *Generator {
	return &Generator{sampler: s, log: log}
}

// Generate samples kinematics for p and builds the profile.
func (g *Generator) Generate(p Params) (*Profile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	k, attempts, err := g.sampler.SampleKinematics(p)
	if err != nil {
		return nil, err
	}
	prof := Build(p, k)
	prof.Attempts = attempts
	g.log.Debugf("profile: decel=%.3f accel=%.3f v0=%.3f v1=%.3f stop=%.2fs ticks=%d draws=%d",
		k.Decel, k.Accel, k.SpeedBefore, k.SpeedAfter, p.StopDuration, prof.Len(), attempts)
	return prof, nil
}

// builder accumulates entries on the tick grid. Distances are kept in
// metres internally and converted on emission.
type builder struct {
	p       Params
	entries []Entry
	cum     float64 // metres
}

func (b *builder) next() int { return len(b.entries) }

func (b *builder) emit(ph Phase, cum, speed, accel float64) {
	tick := b.next()
	prev := 0.0
	if tick > 0 {
		prev = b.entries[tick-1].Distance
	}
	dist := units.Round4(units.MetersToPixels(cum, b.p.Resolution))
	step := 0.0
	if tick > 0 {
		step = units.Round4(dist - prev)
	}
	b.entries = append(b.entries, Entry{
		Tick:         tick,
		Time:         units.TickTime(tick, b.p.Step),
		Phase:        ph,
		StepDistance: step,
		Distance:     dist,
		Speed:        units.Round4(speed),
		Acceleration: units.Round4(accel),
	})
	b.cum = cum
}

// inWindow reports whether the next tick starts before end.
func (b *builder) inWindow(end float64) bool {
	return float64(b.next())*b.p.Step < end-windowEpsilon
}

// Build lays out the phase timeline for accepted kinematics. It is
// deterministic; all randomness lives in the sampler.
func Build(p Params, k Kinematics) *Profile {
	b := &builder{p: p}
	dt := p.Step

	stopDist := k.StopDistance()
	cruiseDist := p.DistBeforeStopM - stopDist
	decelTime := k.SpeedBefore / -k.Decel
	accelTime := k.SpeedAfter / k.Accel

	end := cruiseDist / k.SpeedBefore
	for b.inWindow(end) {
		b.emit(PhaseCruise, k.SpeedBefore*float64(b.next())*dt, k.SpeedBefore, 0)
	}

	// Each later phase measures its elapsed time from the last tick of the
	// phase before it.
	base, start := b.cum, b.next()-1
	end += decelTime
	for b.inWindow(end) {
		tau := math.Min(float64(b.next()-start)*dt, decelTime)
		v := math.Max(0, k.SpeedBefore+k.Decel*tau)
		b.emit(PhaseDecel, base+k.SpeedBefore*tau+0.5*k.Decel*tau*tau, v, k.Decel)
	}

	end += p.StopDuration
	if !b.inWindow(end) {
		// A stop that ends before the next tick still holds the car for one.
		end = float64(b.next()+1) * dt
	}
	for b.inWindow(end) {
		b.emit(PhaseStop, b.cum, 0, 0)
	}

	base, start = b.cum, b.next()-1
	end += accelTime - dt
	for b.inWindow(end) {
		// The window closes one tick early, so tau stays below accelTime.
		tau := math.Min(float64(b.next()-start)*dt, accelTime)
		b.emit(PhaseAccel, base+0.5*k.Accel*tau*tau, k.Accel*tau, k.Accel)
	}

	remaining := p.DistAfterStopM + p.DistBeforeStopM - b.cum
	end += math.Max(0, remaining)/k.SpeedAfter - dt
	for b.inWindow(end) {
		b.emit(PhaseCruiseAfter, b.cum+k.SpeedAfter*dt, k.SpeedAfter, 0)
	}

	for units.MetersToPixels(b.cum, p.Resolution) <= p.FrameWidthPx {
		b.emit(PhasePastSim, b.cum+k.SpeedAfter*dt, k.SpeedAfter, 0)
	}

	return &Profile{
		Entries:      b.entries,
		Step:         dt,
		Resolution:   p.Resolution,
		Kinematics:   k,
		StopDuration: p.StopDuration,
	}
}
