package sim

import (
	"github.com/sprasad796/Stop-And-Go/internal/config"
	"github.com/sprasad796/Stop-And-Go/internal/geometry"
	"github.com/sprasad796/Stop-And-Go/internal/vehicle"
)

// Camera selects where the recorded view is centred. It is chosen once per
// run; the concrete types are FixedFrame, FixedPosition and FollowReference.
type Camera interface {
	// Mode is the configuration name of the camera.
	Mode() string
	resolve(l geometry.Layout, ref vehicle.Snapshot) CameraPose
}

// FixedFrame views the whole frame from its centre.
type FixedFrame struct{}

// FixedPosition views the frame from a configured point.
type FixedPosition struct {
	X, Y float64
}

// FollowReference centres on the reference car as it was at the window's
// reference tick.
type FollowReference struct{}

// CameraPose is a resolved camera.
type CameraPose struct {
	Mode    string  `json:"mode"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"` // Radians
}

func (FixedFrame) Mode() string      { return config.CameraFixedFrame }
func (FixedPosition) Mode() string   { return config.CameraFixedPosition }
func (FollowReference) Mode() string { return config.CameraFollow }

func (c FixedFrame) resolve(l geometry.Layout, _ vehicle.Snapshot) CameraPose {
	return CameraPose{Mode: c.Mode(), X: l.Mid.X, Y: l.Mid.Y}
}

func (c FixedPosition) resolve(geometry.Layout, vehicle.Snapshot) CameraPose {
	return CameraPose{Mode: c.Mode(), X: c.X, Y: c.Y}
}

func (c FollowReference) resolve(_ geometry.Layout, ref vehicle.Snapshot) CameraPose {
	return CameraPose{Mode: c.Mode(), X: ref.Center.X, Y: ref.Center.Y, Heading: ref.Heading}
}

// CameraFromConfig returns the camera for a validated configuration.
func CameraFromConfig(cfg *config.SimConfig) Camera {
	switch cfg.GetCameraMode() {
	case config.CameraFixedPosition:
		x, y := cfg.GetCameraPosition()
		return FixedPosition{X: x, Y: y}
	case config.CameraFollow:
		return FollowReference{}
	default:
		return FixedFrame{}
	}
}
