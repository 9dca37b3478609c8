// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"testing"

	"github.com/sprasad796/Stop-And-Go/internal/config"
	"github.com/sprasad796/Stop-And-Go/internal/geometry"
	"github.com/sprasad796/Stop-And-Go/internal/motion"
)

// Tolerance is the float tolerance used by geometry assertions.
const Tolerance = 1e-9

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// Config returns a validated default simulator configuration.
func Config(t testing.TB) *config.SimConfig {
	t.Helper()
	cfg := config.EmptySimConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	return cfg
}

// Layout returns the default intersection layout.
func Layout(t testing.TB) geometry.Layout {
	t.Helper()
	return geometry.NewLayout(Config(t))
}

// Kinematics are fixed draws matching the default Gaussian means.
func Kinematics() motion.Kinematics {
	return motion.Kinematics{Decel: -2, Accel: 2, SpeedBefore: 5, SpeedAfter: 5}
}

// Profile builds a deterministic profile from the default car parameters,
// the fixed Kinematics and the given stop duration.
func Profile(t testing.TB, stopDuration float64) *motion.Profile {
	t.Helper()
	cfg := Config(t)
	p := motion.ParamsFromConfig(cfg, cfg.Car(1), stopDuration)
	if err := p.Validate(); err != nil {
		t.Fatalf("profile params invalid: %v", err)
	}
	return motion.Build(p, Kinematics())
}
