package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/sprasad796/Stop-And-Go/internal/config"
	"github.com/sprasad796/Stop-And-Go/internal/motion"
	"github.com/sprasad796/Stop-And-Go/internal/units"
)

// ErrFrameBounds is returned when the sampled profiles cannot cover the
// recording window. Episodes recover by regenerating every profile.
var ErrFrameBounds = errors.New("frame bounds")

// Window is the span of ticks recorded for an episode.
type Window struct {
	Start     int `json:"start"`
	Reference int `json:"reference"` // Tick at which the camera is resolved
	End       int `json:"end"`       // Exclusive
}

// Contains reports whether a tick is recorded.
func (w Window) Contains(tick int) bool {
	return tick >= w.Start && tick < w.End
}

// Len is the number of recorded ticks.
func (w Window) Len() int { return w.End - w.Start }

// SampleWindow draws the window start uniformly from start ± dev.
func SampleWindow(cfg *config.SimConfig, s *motion.Sampler) Window {
	dev := cfg.GetStartFrameDev()
	start := cfg.GetStartFrame() - dev + s.IntN(2*dev+1)
	return Window{
		Start:     start,
		Reference: start + cfg.GetReferenceFrames(),
		End:       start + cfg.GetSpanFrames(),
	}
}

// CheckProfiles verifies that every profile outlasts the window end by the
// margin and that the reference car has pulled away by its own last entry
// less the margin. profiles is indexed by sequence - 1.
func (w Window) CheckProfiles(profiles []*motion.Profile, refSeq int, step, marginS float64) error {
	endT := units.TickTime(w.End, step)
	for i, p := range profiles {
		if last := p.LastTime() - marginS; last < endT {
			return fmt.Errorf("%w: car %d profile ends at %.2fs, window needs %.2fs",
				ErrFrameBounds, i+1, p.LastTime(), endT+marginS)
		}
	}
	ref := profiles[refSeq-1]
	tick := max(ref.Len()-1-int(math.Round(marginS/step)), 0)
	if ph := ref.At(tick).Phase; !ph.AfterStop() {
		return fmt.Errorf("%w: reference car %d is in %s at tick %d", ErrFrameBounds, refSeq, ph, tick)
	}
	return nil
}
