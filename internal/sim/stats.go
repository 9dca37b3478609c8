package sim

import (
	"github.com/google/uuid"
	"github.com/sprasad796/Stop-And-Go/internal/geometry"
	"github.com/sprasad796/Stop-And-Go/internal/motion"
	"gonum.org/v1/gonum/stat"
)

// Result is a finished episode.
type Result struct {
	ID            uuid.UUID    `json:"id"`
	Seed          uint64       `json:"seed"`
	Window        Window       `json:"window"`
	Camera        CameraPose   `json:"camera"`
	Ticks         int          `json:"ticks"`
	Regenerations int          `json:"regenerations"`
	Frames        []Frame      `json:"frames"`
	Cars          []CarSummary `json:"cars"`
	Stats         Stats        `json:"stats"`
}

// CarSummary is what one car sampled and how it fared.
type CarSummary struct {
	Sequence     int               `json:"sequence"`
	Turn         geometry.Turn     `json:"turn"`
	StopDuration float64           `json:"stop_duration_s"`
	Kinematics   motion.Kinematics `json:"kinematics"`
	Attempts     int               `json:"attempts"`
	WaitS        float64           `json:"wait_s"`     // Time held by the arbitrator
	MeanSpeed    float64           `json:"mean_speed"` // m/s over the ticks the car was in frame
	ExitTick     int               `json:"exit_tick"`  // -1 if the car never left
	Profile      *motion.Profile   `json:"-"`
}

// Stats are episode-level aggregates.
type Stats struct {
	MeanWaitS float64 `json:"mean_wait_s"`
	MaxQueue  int     `json:"max_queue"`
	Clamps    int     `json:"clamps"`
	MeanSpeed float64 `json:"mean_speed"`
}

func summarize(cars []CarSummary, maxQueue, clamps int) Stats {
	waits := make([]float64, len(cars))
	speeds := make([]float64, len(cars))
	for i, c := range cars {
		waits[i] = c.WaitS
		speeds[i] = c.MeanSpeed
	}
	return Stats{
		MeanWaitS: mean(waits),
		MaxQueue:  maxQueue,
		Clamps:    clamps,
		MeanSpeed: mean(speeds),
	}
}

// mean is stat.Mean with an empty sample mapped to zero.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}
