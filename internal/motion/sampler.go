package motion

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/sprasad796/Stop-And-Go/internal/config"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrSimulationDivergence is returned when rejection sampling does not
// converge within its attempt cap.
var ErrSimulationDivergence = errors.New("simulation divergence")

// Sampling domain for the kinematic draws.
const (
	MaxDecel           = -4.0 // Hardest braking accepted (m/s²), inclusive
	MinDecel           = -1.0 // Gentlest braking accepted (m/s²), exclusive
	MinAccel           = 0.5  // m/s², exclusive
	MaxAccel           = 10.0 // m/s², exclusive
	StopSpeedThreshold = 1.0  // Sampled speeds must exceed this (m/s)
)

// Sampler draws every random quantity of an episode from one seeded PCG
// stream, so an episode is reproducible from its seed alone.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler returns a sampler seeded with (seed, stream).
func NewSampler(seed, stream uint64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewPCG(seed, stream))}
}

// Normal draws from N(g.Mean, g.StdDev²).
func (s *Sampler) Normal(g config.Gaussian) float64 {
	return distuv.Normal{Mu: g.Mean, Sigma: g.StdDev, Src: s.rng}.Rand()
}

// IntN draws uniformly from [0, n).
func (s *Sampler) IntN(n int) int {
	return s.rng.IntN(n)
}

// StopDuration draws a positive stop duration in seconds.
func (s *Sampler) StopDuration(g config.Gaussian, maxAttempts int) (float64, error) {
	for i := 0; i < maxAttempts; i++ {
		if d := s.Normal(g); d > 0 {
			return d, nil
		}
	}
	return 0, fmt.Errorf("stop duration after %d draws: %w", maxAttempts, ErrSimulationDivergence)
}

// drawCounter enforces a shared attempt budget across all draws of one car.
type drawCounter struct {
	s        *Sampler
	attempts int
	max      int
}

func (d *drawCounter) draw(g config.Gaussian, name string, accept func(float64) bool) (float64, error) {
	for {
		if d.attempts >= d.max {
			return 0, fmt.Errorf("%s not accepted after %d draws: %w", name, d.attempts, ErrSimulationDivergence)
		}
		d.attempts++
		if v := d.s.Normal(g); accept(v) {
			return v, nil
		}
	}
}

// SampleKinematics draws decel, accel and both speeds until the implied
// stopping distance fits before the stop line. Every draw counts against
// maxAttempts.
func (s *Sampler) SampleKinematics(p Params) (Kinematics, int, error) {
	dc := &drawCounter{s: s, max: p.MaxAttempts}
	for {
		var k Kinematics
		var err error
		if k.Decel, err = dc.draw(p.Decel, "deceleration", func(v float64) bool {
			return v >= MaxDecel && v < MinDecel
		}); err != nil {
			return Kinematics{}, dc.attempts, err
		}
		if k.Accel, err = dc.draw(p.Accel, "acceleration", func(v float64) bool {
			return v > MinAccel && v < MaxAccel
		}); err != nil {
			return Kinematics{}, dc.attempts, err
		}
		if k.SpeedBefore, err = dc.draw(p.SpeedBefore, "speed before stop", aboveThreshold); err != nil {
			return Kinematics{}, dc.attempts, err
		}
		if k.SpeedAfter, err = dc.draw(p.SpeedAfter, "speed after stop", aboveThreshold); err != nil {
			return Kinematics{}, dc.attempts, err
		}
		if k.StopDistance() < p.DistBeforeStopM {
			return k, dc.attempts, nil
		}
	}
}

func aboveThreshold(v float64) bool { return v > StopSpeedThreshold }
