package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sprasad796/Stop-And-Go/internal/geometry"
	"github.com/sprasad796/Stop-And-Go/internal/motion"
	"github.com/sprasad796/Stop-And-Go/internal/sim"
	"github.com/sprasad796/Stop-And-Go/internal/vehicle"
	"gonum.org/v1/gonum/spatial/r2"
)

// ErrNotFound is returned when an episode does not exist.
var ErrNotFound = errors.New("not found")

// Episode is the stored summary of one simulated episode.
type Episode struct {
	ID            uuid.UUID      `json:"episode_id"`
	Seed          uint64         `json:"seed"`
	Window        sim.Window     `json:"window"`
	Ticks         int            `json:"ticks"`
	Regenerations int            `json:"regenerations"`
	Camera        sim.CameraPose `json:"camera"`
	Stats         sim.Stats      `json:"stats"`
	CreatedAt     int64          `json:"created_at"`
}

// Car is the stored per-car parameters and outcome of an episode.
type Car struct {
	Sequence     int               `json:"sequence"`
	Turn         geometry.Turn     `json:"turn"`
	StopDuration float64           `json:"stop_duration_s"`
	Kinematics   motion.Kinematics `json:"kinematics"`
	Attempts     int               `json:"attempts"`
	WaitS        float64           `json:"wait_s"`
	MeanSpeed    float64           `json:"mean_speed_mps"`
	ExitTick     int               `json:"exit_tick"`
}

// EpisodeStore persists episodes, their cars and their recorded frames.
type EpisodeStore struct {
	db *DB
}

// NewEpisodeStore creates a new EpisodeStore.
func NewEpisodeStore(db *DB) *EpisodeStore {
	return &EpisodeStore{db: db}
}

// Record implements sim.Recorder.
func (s *EpisodeStore) Record(ctx context.Context, r *sim.Result) error {
	return s.Insert(ctx, r)
}

// Insert stores a finished episode in one transaction.
func (s *EpisodeStore) Insert(ctx context.Context, r *sim.Result) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	id := r.ID.String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin episode %s: %w", id, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO episodes (
			episode_id, seed, window_start, window_reference, window_end,
			ticks, regenerations, camera_mode, camera_x, camera_y, camera_heading,
			mean_wait_s, max_queue, clamps, mean_speed_mps, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, int64(r.Seed), r.Window.Start, r.Window.Reference, r.Window.End,
		r.Ticks, r.Regenerations, r.Camera.Mode, r.Camera.X, r.Camera.Y, r.Camera.Heading,
		r.Stats.MeanWaitS, r.Stats.MaxQueue, r.Stats.Clamps, r.Stats.MeanSpeed, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert episode %s: %w", id, err)
	}

	for _, c := range r.Cars {
		k := c.Kinematics
		_, err := tx.ExecContext(ctx, `
			INSERT INTO episode_cars (
				episode_id, sequence, turn, stop_duration_s, decel_mpss, accel_mpss,
				speed_before_mps, speed_after_mps, attempts, wait_s, mean_speed_mps, exit_tick
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, c.Sequence, c.Turn.String(), c.StopDuration, k.Decel, k.Accel,
			k.SpeedBefore, k.SpeedAfter, c.Attempts, c.WaitS, c.MeanSpeed, c.ExitTick,
		)
		if err != nil {
			return fmt.Errorf("insert car %d of episode %s: %w", c.Sequence, id, err)
		}
	}

	if len(r.Frames) > 0 {
		for path, p := range r.Frames[0].StopLines {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO episode_stop_lines (episode_id, path, x, y) VALUES (?, ?, ?, ?)`,
				id, path, p.X, p.Y); err != nil {
				return fmt.Errorf("insert stop line %d of episode %s: %w", path, id, err)
			}
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO episode_frames (
			episode_id, tick, time_s, sequence, x, y, center_x, center_y, heading,
			direction, speed_mps, speed_pps, accel_mpss, phase, turn,
			width_px, length_px, boundary_json, ended
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare frame insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range r.Frames {
		for _, c := range f.Cars {
			boundary, err := json.Marshal(c.Boundary)
			if err != nil {
				return fmt.Errorf("encode boundary: %w", err)
			}
			_, err = stmt.ExecContext(ctx,
				id, f.Tick, f.Time, c.Sequence, c.X, c.Y, c.Center.X, c.Center.Y, c.Heading,
				int(c.Direction), c.Speed, c.SpeedPPS, c.Acceleration, string(c.Phase), c.Turn.String(),
				c.Width, c.Length, string(boundary), c.Ended,
			)
			if err != nil {
				return fmt.Errorf("insert frame %d car %d: %w", f.Tick, c.Sequence, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit episode %s: %w", id, err)
	}
	return nil
}

const episodeColumns = `
	episode_id, seed, window_start, window_reference, window_end,
	ticks, regenerations, camera_mode, camera_x, camera_y, camera_heading,
	mean_wait_s, max_queue, clamps, mean_speed_mps, created_at`

func scanEpisode(row interface{ Scan(...any) error }) (*Episode, error) {
	var (
		e    Episode
		id   string
		seed int64
	)
	err := row.Scan(
		&id, &seed, &e.Window.Start, &e.Window.Reference, &e.Window.End,
		&e.Ticks, &e.Regenerations, &e.Camera.Mode, &e.Camera.X, &e.Camera.Y, &e.Camera.Heading,
		&e.Stats.MeanWaitS, &e.Stats.MaxQueue, &e.Stats.Clamps, &e.Stats.MeanSpeed, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if e.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("episode id %q: %w", id, err)
	}
	e.Seed = uint64(seed)
	return &e, nil
}

// List returns the most recent episodes, newest first. limit <= 0 returns all.
func (s *EpisodeStore) List(ctx context.Context, limit int) ([]*Episode, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+episodeColumns+` FROM episodes ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query episodes: %w", err)
	}
	defer rows.Close()

	var out []*Episode
	for rows.Next() {
		e, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Get returns one episode.
func (s *EpisodeStore) Get(ctx context.Context, id uuid.UUID) (*Episode, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+episodeColumns+` FROM episodes WHERE episode_id = ?`, id.String())
	e, err := scanEpisode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("episode %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan episode: %w", err)
	}
	return e, nil
}

// Cars returns the cars of an episode in sequence order.
func (s *EpisodeStore) Cars(ctx context.Context, id uuid.UUID) ([]Car, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sequence, turn, stop_duration_s, decel_mpss, accel_mpss,
		       speed_before_mps, speed_after_mps, attempts, wait_s, mean_speed_mps, exit_tick
		FROM episode_cars WHERE episode_id = ? ORDER BY sequence`, id.String())
	if err != nil {
		return nil, fmt.Errorf("query cars: %w", err)
	}
	defer rows.Close()

	var cars []Car
	for rows.Next() {
		var (
			c    Car
			turn string
		)
		if err := rows.Scan(&c.Sequence, &turn, &c.StopDuration, &c.Kinematics.Decel, &c.Kinematics.Accel,
			&c.Kinematics.SpeedBefore, &c.Kinematics.SpeedAfter, &c.Attempts, &c.WaitS, &c.MeanSpeed, &c.ExitTick); err != nil {
			return nil, fmt.Errorf("scan car: %w", err)
		}
		if c.Turn, err = geometry.ParseTurn(turn); err != nil {
			return nil, err
		}
		cars = append(cars, c)
	}
	return cars, rows.Err()
}

// Frames reloads the recorded frames of an episode for replay.
func (s *EpisodeStore) Frames(ctx context.Context, id uuid.UUID) ([]sim.Frame, error) {
	ep, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	stopLines, err := s.stopLines(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT tick, time_s, sequence, x, y, center_x, center_y, heading,
		       direction, speed_mps, speed_pps, accel_mpss, phase, turn,
		       width_px, length_px, boundary_json, ended
		FROM episode_frames WHERE episode_id = ? ORDER BY tick, sequence`, id.String())
	if err != nil {
		return nil, fmt.Errorf("query frames: %w", err)
	}
	defer rows.Close()

	var frames []sim.Frame
	for rows.Next() {
		var (
			tick      int
			timeS     float64
			c         vehicle.Snapshot
			direction int
			phase     string
			turn      string
			boundary  string
		)
		if err := rows.Scan(&tick, &timeS, &c.Sequence, &c.X, &c.Y, &c.Center.X, &c.Center.Y, &c.Heading,
			&direction, &c.Speed, &c.SpeedPPS, &c.Acceleration, &phase, &turn,
			&c.Width, &c.Length, &boundary, &c.Ended); err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		c.Direction = geometry.Direction(direction)
		if c.Phase, err = motion.ParsePhase(phase); err != nil {
			return nil, err
		}
		if c.Turn, err = geometry.ParseTurn(turn); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(boundary), &c.Boundary); err != nil {
			return nil, fmt.Errorf("decode boundary at tick %d: %w", tick, err)
		}

		if n := len(frames); n == 0 || frames[n-1].Tick != tick {
			frames = append(frames, sim.Frame{Tick: tick, Time: timeS, StopLines: stopLines, Camera: ep.Camera})
		}
		last := &frames[len(frames)-1]
		last.Cars = append(last.Cars, c)
	}
	return frames, rows.Err()
}

func (s *EpisodeStore) stopLines(ctx context.Context, id uuid.UUID) ([geometry.NumApproaches]r2.Vec, error) {
	var out [geometry.NumApproaches]r2.Vec
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, x, y FROM episode_stop_lines WHERE episode_id = ? ORDER BY path`, id.String())
	if err != nil {
		return out, fmt.Errorf("query stop lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			path int
			p    r2.Vec
		)
		if err := rows.Scan(&path, &p.X, &p.Y); err != nil {
			return out, fmt.Errorf("scan stop line: %w", err)
		}
		if path < 0 || path >= geometry.NumApproaches {
			return out, fmt.Errorf("stop line path %d out of range", path)
		}
		out[path] = p
	}
	return out, rows.Err()
}

// Delete removes an episode and everything recorded for it.
func (s *EpisodeStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM episodes WHERE episode_id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete episode %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("episode %s: %w", id, ErrNotFound)
	}
	return nil
}
