package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sprasad796/Stop-And-Go/internal/units"
)

// DefaultConfigPath is the path to the canonical simulator defaults file.
const DefaultConfigPath = "config/stopsim.defaults.json"

// ErrConfiguration is wrapped by every validation failure. A configuration
// error is fatal and is reported before any episode starts.
var ErrConfiguration = errors.New("configuration error")

// Camera modes.
const (
	CameraFixedFrame    = "fixed_frame"
	CameraFixedPosition = "fixed_position"
	CameraFollow        = "follow"
)

// Turn names accepted in per-car configuration. An empty turn means the
// turn is sampled uniformly at episode build time.
const (
	TurnRandom = ""
	TurnNone   = "none"
	TurnLeft   = "left"
	TurnRight  = "right"
)

// Car count bounds. The layout has four approaches and the right-of-way
// table only relates distinct approaches.
const (
	MinCars = 3
	MaxCars = 4
)

// Gaussian is a (mean, stddev) pair for a sampled kinematic parameter.
type Gaussian struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

// CarConfig holds the per-car kinematic parameters. Keys in the "cars" map
// are "car1".."carN" matching the car sequence number.
type CarConfig struct {
	DistBeforeStopM *float64  `json:"dist_before_stop_m,omitempty"`
	DistAfterStopM  *float64  `json:"dist_after_stop_m,omitempty"`
	Decel           *Gaussian `json:"decel_mpss,omitempty"`
	Accel           *Gaussian `json:"accel_mpss,omitempty"`
	SpeedBefore     *Gaussian `json:"speed_before_mps,omitempty"`
	SpeedAfter      *Gaussian `json:"speed_after_mps,omitempty"`
	Turn            *string   `json:"turn,omitempty"`
}

// CarParams is a CarConfig with every default resolved.
type CarParams struct {
	Sequence        int
	DistBeforeStopM float64
	DistAfterStopM  float64
	Decel           Gaussian
	Accel           Gaussian
	SpeedBefore     Gaussian
	SpeedAfter      Gaussian
	Turn            string
}

// SimConfig is the root simulator configuration. Every field is optional;
// the Get* accessors supply defaults for anything the JSON omits, so
// partial configs are safe.
type SimConfig struct {
	// Frame and timing
	FrameWidthPx     *float64 `json:"frame_width_px,omitempty"`
	FrameHeightPx    *float64 `json:"frame_height_px,omitempty"`
	TickStepS        *float64 `json:"tick_step_s,omitempty"`
	ResolutionPxPerM *float64 `json:"resolution_px_per_m,omitempty"`
	NumCars          *int     `json:"num_cars,omitempty"`
	Seed             *uint64  `json:"seed,omitempty"`
	ReferenceCar     *int     `json:"reference_car,omitempty"`

	// Intersection layout
	LaneBufferPx     *float64 `json:"lane_buffer_px,omitempty"`
	StopLineOffsetPx *float64 `json:"stop_line_offset_px,omitempty"`
	StopAreaHalfPx   *float64 `json:"stop_area_half_px,omitempty"`
	CarWidthPx       *float64 `json:"car_width_px,omitempty"`
	CarLengthPx      *float64 `json:"car_length_px,omitempty"`
	BoundaryOffsetPx *float64 `json:"boundary_offset_px,omitempty"`
	ExitOffsetPx     *float64 `json:"exit_offset_px,omitempty"`
	SafetyBufferPx   *float64 `json:"safety_buffer_px,omitempty"`

	// Rules
	FollowingDistancePx *float64  `json:"following_distance_px,omitempty"`
	StopDuration        *Gaussian `json:"stop_duration_s,omitempty"`
	MaxSampleAttempts   *int      `json:"max_sample_attempts,omitempty"`

	// Episode window
	StartFrame       *int     `json:"start_frame,omitempty"`
	StartFrameDev    *int     `json:"start_frame_dev,omitempty"`
	ReferenceFrames  *int     `json:"reference_frames,omitempty"`
	SpanFrames       *int     `json:"span_frames,omitempty"`
	EndMarginS       *float64 `json:"end_margin_s,omitempty"`
	MaxRegenerations *int     `json:"max_regenerations,omitempty"`
	MaxEpisodeTicks  *int     `json:"max_episode_ticks,omitempty"`

	// Camera
	CameraMode *string  `json:"camera_mode,omitempty"`
	CameraX    *float64 `json:"camera_x,omitempty"`
	CameraY    *float64 `json:"camera_y,omitempty"`

	// Reporting
	SpeedUnits *string `json:"speed_units,omitempty"`
	LogLevel   *string `json:"log_level,omitempty"`

	Cars map[string]*CarConfig `json:"cars,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptySimConfig returns a SimConfig with all fields set to nil.
// Use LoadSimConfig to load actual values from the defaults file.
func EmptySimConfig() *SimConfig {
	return &SimConfig{}
}

// LoadSimConfig loads a SimConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
func LoadSimConfig(path string) (*SimConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := ParseSimConfig(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseSimConfig decodes and validates a JSON document.
func ParseSimConfig(data []byte) (*SimConfig, error) {
	cfg := EmptySimConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *SimConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadSimConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

func invalid(format string, v ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, v...))
}

// Validate checks that the configuration values are valid.
func (c *SimConfig) Validate() error {
	if c.GetFrameWidthPx() <= 0 || c.GetFrameHeightPx() <= 0 {
		return invalid("frame dimensions must be positive, got %gx%g", c.GetFrameWidthPx(), c.GetFrameHeightPx())
	}
	if c.GetTickStepS() <= 0 {
		return invalid("tick_step_s must be positive, got %g", c.GetTickStepS())
	}
	if c.GetResolutionPxPerM() <= 0 {
		return invalid("resolution_px_per_m must be positive, got %g", c.GetResolutionPxPerM())
	}
	n := c.GetNumCars()
	if n < MinCars || n > MaxCars {
		return invalid("num_cars must be between %d and %d, got %d", MinCars, MaxCars, n)
	}
	if ref := c.GetReferenceCar(); ref < 1 || ref > n {
		return invalid("reference_car must be between 1 and %d, got %d", n, ref)
	}
	if c.GetFollowingDistancePx() < 0 {
		return invalid("following_distance_px must be non-negative, got %g", c.GetFollowingDistancePx())
	}
	if sd := c.GetStopDuration(); sd.StdDev <= 0 {
		return invalid("stop_duration_s stddev must be positive, got %g", sd.StdDev)
	}
	if c.GetMaxSampleAttempts() <= 0 {
		return invalid("max_sample_attempts must be positive, got %d", c.GetMaxSampleAttempts())
	}
	if c.GetCarWidthPx() <= 0 || c.GetCarLengthPx() <= 0 {
		return invalid("car dimensions must be positive")
	}
	if half := c.GetStopAreaHalfPx(); half <= 0 || 2*half >= c.GetFrameWidthPx() || 2*half >= c.GetFrameHeightPx() {
		return invalid("stop_area_half_px must fit inside the frame, got %g", half)
	}
	if c.GetLaneBufferPx() <= 0 || c.GetLaneBufferPx()/2 >= c.GetStopAreaHalfPx() {
		return invalid("lane_buffer_px must be positive and inside the stop area, got %g", c.GetLaneBufferPx())
	}

	if c.GetSpanFrames() <= 0 {
		return invalid("span_frames must be positive, got %d", c.GetSpanFrames())
	}
	if rf := c.GetReferenceFrames(); rf < 0 || rf >= c.GetSpanFrames() {
		return invalid("reference_frames must be in [0, span_frames), got %d", rf)
	}
	if c.GetStartFrameDev() < 0 || c.GetStartFrame()-c.GetStartFrameDev() < 0 {
		return invalid("start_frame - start_frame_dev must be non-negative")
	}
	if c.GetMaxRegenerations() <= 0 {
		return invalid("max_regenerations must be positive, got %d", c.GetMaxRegenerations())
	}
	if c.GetMaxEpisodeTicks() <= c.GetStartFrame()+c.GetStartFrameDev()+c.GetSpanFrames() {
		return invalid("max_episode_ticks must exceed the latest possible window end")
	}
	if c.GetEndMarginS() < 0 {
		return invalid("end_margin_s must be non-negative, got %g", c.GetEndMarginS())
	}

	switch c.GetCameraMode() {
	case CameraFixedFrame, CameraFollow:
	case CameraFixedPosition:
		if c.CameraX == nil || c.CameraY == nil {
			return invalid("camera_mode %q requires camera_x and camera_y", CameraFixedPosition)
		}
	default:
		return invalid("unknown camera_mode %q", c.GetCameraMode())
	}

	if !units.IsValid(c.GetSpeedUnits()) {
		return invalid("speed_units must be one of %s, got %q", units.GetValidUnitsString(), c.GetSpeedUnits())
	}

	for key := range c.Cars {
		seq, err := carSequence(key)
		if err != nil {
			return invalid("%v", err)
		}
		if seq > n {
			return invalid("cars.%s configured but num_cars is %d", key, n)
		}
	}
	for seq := 1; seq <= n; seq++ {
		if err := c.Car(seq).validate(); err != nil {
			return err
		}
	}
	return nil
}

func carSequence(key string) (int, error) {
	if !strings.HasPrefix(key, "car") {
		return 0, fmt.Errorf("car key %q must look like car<N>", key)
	}
	seq, err := strconv.Atoi(strings.TrimPrefix(key, "car"))
	if err != nil || seq < 1 {
		return 0, fmt.Errorf("car key %q must look like car<N>", key)
	}
	return seq, nil
}

func (p CarParams) validate() error {
	if p.DistBeforeStopM <= 0 || p.DistAfterStopM <= 0 {
		return invalid("car%d distances must be positive", p.Sequence)
	}
	for name, g := range map[string]Gaussian{
		"decel_mpss":       p.Decel,
		"accel_mpss":       p.Accel,
		"speed_before_mps": p.SpeedBefore,
		"speed_after_mps":  p.SpeedAfter,
	} {
		if g.StdDev <= 0 {
			return invalid("car%d %s stddev must be positive, got %g", p.Sequence, name, g.StdDev)
		}
	}
	if p.Decel.Mean >= 0 {
		return invalid("car%d decel_mpss mean must be negative, got %g", p.Sequence, p.Decel.Mean)
	}
	switch p.Turn {
	case TurnRandom, TurnNone, TurnLeft, TurnRight:
	default:
		return invalid("car%d turn must be one of none, left, right or empty, got %q", p.Sequence, p.Turn)
	}
	return nil
}

// Car returns the resolved parameters for a car sequence number.
func (c *SimConfig) Car(seq int) CarParams {
	p := CarParams{
		Sequence:        seq,
		DistBeforeStopM: 232,
		DistAfterStopM:  250,
		Decel:           Gaussian{Mean: -2, StdDev: 0.5},
		Accel:           Gaussian{Mean: 2, StdDev: 0.5},
		SpeedBefore:     Gaussian{Mean: 5, StdDev: 1},
		SpeedAfter:      Gaussian{Mean: 5, StdDev: 1},
		Turn:            TurnRandom,
	}
	cc, ok := c.Cars["car"+strconv.Itoa(seq)]
	if !ok || cc == nil {
		return p
	}
	if cc.DistBeforeStopM != nil {
		p.DistBeforeStopM = *cc.DistBeforeStopM
	}
	if cc.DistAfterStopM != nil {
		p.DistAfterStopM = *cc.DistAfterStopM
	}
	if cc.Decel != nil {
		p.Decel = *cc.Decel
	}
	if cc.Accel != nil {
		p.Accel = *cc.Accel
	}
	if cc.SpeedBefore != nil {
		p.SpeedBefore = *cc.SpeedBefore
	}
	if cc.SpeedAfter != nil {
		p.SpeedAfter = *cc.SpeedAfter
	}
	if cc.Turn != nil {
		p.Turn = *cc.Turn
	}
	return p
}

// CarKeys returns the configured car keys in sequence order.
func (c *SimConfig) CarKeys() []string {
	keys := make([]string, 0, len(c.Cars))
	for k := range c.Cars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetFrameWidthPx returns the frame width or the default.
func (c *SimConfig) GetFrameWidthPx() float64 {
	if c.FrameWidthPx == nil {
		return 512
	}
	return *c.FrameWidthPx
}

// GetFrameHeightPx returns the frame height or the default.
func (c *SimConfig) GetFrameHeightPx() float64 {
	if c.FrameHeightPx == nil {
		return 512
	}
	return *c.FrameHeightPx
}

// GetTickStepS returns the fixed tick step in seconds or the default.
func (c *SimConfig) GetTickStepS() float64 {
	if c.TickStepS == nil {
		return 0.1
	}
	return *c.TickStepS
}

// GetResolutionPxPerM returns the pixel-per-metre resolution or the default.
func (c *SimConfig) GetResolutionPxPerM() float64 {
	if c.ResolutionPxPerM == nil {
		return 1.0
	}
	return *c.ResolutionPxPerM
}

// GetNumCars returns the number of cars or the default.
func (c *SimConfig) GetNumCars() int {
	if c.NumCars == nil {
		return 4
	}
	return *c.NumCars
}

// GetSeed returns the random seed or the default.
func (c *SimConfig) GetSeed() uint64 {
	if c.Seed == nil {
		return 1
	}
	return *c.Seed
}

// GetReferenceCar returns the reference car sequence or the default.
func (c *SimConfig) GetReferenceCar() int {
	if c.ReferenceCar == nil {
		return 1
	}
	return *c.ReferenceCar
}

// GetLaneBufferPx returns the spacing between opposing lanes or the default.
func (c *SimConfig) GetLaneBufferPx() float64 {
	if c.LaneBufferPx == nil {
		return 12
	}
	return *c.LaneBufferPx
}

// GetStopLineOffsetPx returns the stop line distance from the frame centre or the default.
func (c *SimConfig) GetStopLineOffsetPx() float64 {
	if c.StopLineOffsetPx == nil {
		return 19
	}
	return *c.StopLineOffsetPx
}

// GetStopAreaHalfPx returns half the stop area side or the default.
func (c *SimConfig) GetStopAreaHalfPx() float64 {
	if c.StopAreaHalfPx == nil {
		return 20
	}
	return *c.StopAreaHalfPx
}

// GetCarWidthPx returns the car width or the default.
func (c *SimConfig) GetCarWidthPx() float64 {
	if c.CarWidthPx == nil {
		return 6
	}
	return *c.CarWidthPx
}

// GetCarLengthPx returns the car length or the default.
func (c *SimConfig) GetCarLengthPx() float64 {
	if c.CarLengthPx == nil {
		return 8
	}
	return *c.CarLengthPx
}

// GetBoundaryOffsetPx returns the frame exit tolerance or the default.
func (c *SimConfig) GetBoundaryOffsetPx() float64 {
	if c.BoundaryOffsetPx == nil {
		return 2
	}
	return *c.BoundaryOffsetPx
}

// GetExitOffsetPx returns the clearance past the stop area used when a turn completes.
func (c *SimConfig) GetExitOffsetPx() float64 {
	if c.ExitOffsetPx == nil {
		return 2
	}
	return *c.ExitOffsetPx
}

// GetSafetyBufferPx returns the centre-crossing buffer or the default.
func (c *SimConfig) GetSafetyBufferPx() float64 {
	if c.SafetyBufferPx == nil {
		return 1
	}
	return *c.SafetyBufferPx
}

// GetFollowingDistancePx returns the following distance threshold or the default.
func (c *SimConfig) GetFollowingDistancePx() float64 {
	if c.FollowingDistancePx == nil {
		return 25
	}
	return *c.FollowingDistancePx
}

// GetStopDuration returns the stop-sign dwell distribution or the default.
func (c *SimConfig) GetStopDuration() Gaussian {
	if c.StopDuration == nil {
		return Gaussian{Mean: 0.5, StdDev: 0.2}
	}
	return *c.StopDuration
}

// GetMaxSampleAttempts returns the rejection sampling cap or the default.
func (c *SimConfig) GetMaxSampleAttempts() int {
	if c.MaxSampleAttempts == nil {
		return 10000
	}
	return *c.MaxSampleAttempts
}

// GetStartFrame returns the mean window start frame or the default.
func (c *SimConfig) GetStartFrame() int {
	if c.StartFrame == nil {
		return 400
	}
	return *c.StartFrame
}

// GetStartFrameDev returns the window start deviation or the default.
func (c *SimConfig) GetStartFrameDev() int {
	if c.StartFrameDev == nil {
		return 150
	}
	return *c.StartFrameDev
}

// GetReferenceFrames returns the offset of the reference frame from the window start.
func (c *SimConfig) GetReferenceFrames() int {
	if c.ReferenceFrames == nil {
		return 39
	}
	return *c.ReferenceFrames
}

// GetSpanFrames returns the number of recorded frames per episode or the default.
func (c *SimConfig) GetSpanFrames() int {
	if c.SpanFrames == nil {
		return 250
	}
	return *c.SpanFrames
}

// GetEndMarginS returns the profile tail margin required past the window end.
func (c *SimConfig) GetEndMarginS() float64 {
	if c.EndMarginS == nil {
		return 2.0
	}
	return *c.EndMarginS
}

// GetMaxRegenerations returns how many times an episode may be regenerated.
func (c *SimConfig) GetMaxRegenerations() int {
	if c.MaxRegenerations == nil {
		return 20
	}
	return *c.MaxRegenerations
}

// GetMaxEpisodeTicks returns the tick cap for a single episode or the default.
func (c *SimConfig) GetMaxEpisodeTicks() int {
	if c.MaxEpisodeTicks == nil {
		return 6000
	}
	return *c.MaxEpisodeTicks
}

// GetCameraMode returns the camera mode or the default.
func (c *SimConfig) GetCameraMode() string {
	if c.CameraMode == nil || *c.CameraMode == "" {
		return CameraFixedFrame
	}
	return *c.CameraMode
}

// GetCameraPosition returns the fixed camera position. Only meaningful when
// the camera mode is fixed_position.
func (c *SimConfig) GetCameraPosition() (x, y float64) {
	if c.CameraX != nil {
		x = *c.CameraX
	}
	if c.CameraY != nil {
		y = *c.CameraY
	}
	return x, y
}

// GetSpeedUnits returns the report speed units or the default.
func (c *SimConfig) GetSpeedUnits() string {
	if c.SpeedUnits == nil || *c.SpeedUnits == "" {
		return units.MPS
	}
	return *c.SpeedUnits
}

// GetLogLevel returns the log level name or the default.
func (c *SimConfig) GetLogLevel() string {
	if c.LogLevel == nil || *c.LogLevel == "" {
		return "info"
	}
	return *c.LogLevel
}

// WithSeed returns a shallow copy of the config with the seed replaced.
func (c *SimConfig) WithSeed(seed uint64) *SimConfig {
	cp := *c
	cp.Seed = &seed
	return &cp
}
