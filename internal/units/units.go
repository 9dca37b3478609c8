// Package units provides shared constants and validation for speed units
// and the pixel/metre conversions used by the simulator.
package units

import (
	"strings"

	"gonum.org/v1/gonum/floats/scalar"
)

// Unit constants
const (
	MPS  = "mps"
	MPH  = "mph"
	KMPH = "kmph"
	KPH  = "kph"
	// PPS is pixels per second; it only makes sense together with a resolution.
	PPS = "pps"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{MPS, MPH, KMPH, KPH, PPS}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// ConvertSpeed converts a speed from meters per second to the target units.
// PPS conversions need a resolution, see SpeedToPixels; here they fall back to m/s.
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPH:
		return speedMPS * 2.23694 // m/s to mph
	case KMPH, KPH:
		return speedMPS * 3.6 // m/s to km/h
	case MPS:
		return speedMPS // no conversion needed
	default:
		return speedMPS // default to m/s if unknown unit
	}
}

// Label returns the axis label used in reports for a unit.
func Label(unit string) string {
	switch unit {
	case MPH:
		return "mph"
	case KMPH, KPH:
		return "km/h"
	case PPS:
		return "px/s"
	default:
		return "m/s"
	}
}

// MetersToPixels converts a distance using a pixels-per-metre resolution.
func MetersToPixels(m, resolution float64) float64 {
	return m * resolution
}

// PixelsToMeters is the inverse of MetersToPixels. A zero resolution yields 0.
func PixelsToMeters(px, resolution float64) float64 {
	if resolution == 0 {
		return 0
	}
	return px / resolution
}

// SpeedToPixels converts m/s into px/s.
func SpeedToPixels(mps, resolution float64) float64 {
	return mps * resolution
}

// Round4 rounds to four decimal places, the precision of every emitted
// motion-profile field.
func Round4(x float64) float64 {
	return scalar.Round(x, 4)
}

// RoundTime rounds a time key in seconds to two decimals.
func RoundTime(t float64) float64 {
	return scalar.Round(t, 2)
}

// TickTime returns the time in seconds of a tick index for a fixed step.
func TickTime(tick int, step float64) float64 {
	return RoundTime(float64(tick) * step)
}
