// Package history records per-run statistics samples in SQLite.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"worldmorph/internal/morph"
)

// ErrRunNotFound is returned when a run id has no row.
var ErrRunNotFound = errors.New("run not found")

// RunInfo describes a run when it starts.
type RunInfo struct {
	Preset string
	Width  int
	Height int
	Seed   int64
	Params morph.Params
}

// Run is a stored run header.
type Run struct {
	ID        int64
	StartedAt time.Time
	Samples   int
	RunInfo
}

// Sample is one statistics snapshot of a run.
type Sample struct {
	Cycle    uint64
	TimeStep float64
	Stats    morph.Statistics
}

// Store is a SQLite-backed recorder. It is safe for concurrent use.
type Store struct {
	mu  sync.Mutex
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path and initializes its schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// StartRun inserts a run header and returns its id.
func (s *Store) StartRun(ctx context.Context, info RunInfo) (int64, error) {
	params, err := json.Marshal(info.Params)
	if err != nil {
		return 0, fmt.Errorf("encoding params: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (preset, width, height, seed, params, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		info.Preset, info.Width, info.Height, info.Seed, string(params), s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return res.LastInsertId()
}

// Record stores the statistics of run at the cycle reported by st.
// Recording the same cycle twice replaces the earlier sample.
func (s *Store) Record(ctx context.Context, runID int64, st morph.Status, stats morph.Statistics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO samples (
			run_id, cycle, time_step, terrain_cells, alpha_crystals, beta_crystals,
			human_settlements, thunderstorm_cells, average_mantle_energy,
			average_temperature, total_stored_energy
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, int64(st.CycleCount), st.TimeStep, stats.TerrainCells, stats.AlphaCrystals, stats.BetaCrystals,
		stats.HumanSettlements, stats.ThunderstormCells, stats.AverageMantleEnergy,
		stats.AverageTemperature, stats.TotalStoredEnergy)
	if err != nil {
		return fmt.Errorf("failed to record sample for run %d: %w", runID, err)
	}
	return nil
}

// Runs lists every run, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.preset, r.width, r.height, r.seed, r.params, r.started_at,
		       (SELECT COUNT(*) FROM samples WHERE run_id = r.id)
		FROM runs r ORDER BY r.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Run returns the header of a single run.
func (s *Store) Run(ctx context.Context, id int64) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT r.id, r.preset, r.width, r.height, r.seed, r.params, r.started_at,
		       (SELECT COUNT(*) FROM samples WHERE run_id = r.id)
		FROM runs r WHERE r.id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	return r, err
}

// Samples returns the samples of a run ordered by cycle.
func (s *Store) Samples(ctx context.Context, runID int64) ([]Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT cycle, time_step, terrain_cells, alpha_crystals, beta_crystals,
		       human_settlements, thunderstorm_cells, average_mantle_energy,
		       average_temperature, total_stored_energy
		FROM samples WHERE run_id = ? ORDER BY cycle`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var (
			sm    Sample
			cycle int64
		)
		if err := rows.Scan(&cycle, &sm.TimeStep, &sm.Stats.TerrainCells, &sm.Stats.AlphaCrystals,
			&sm.Stats.BetaCrystals, &sm.Stats.HumanSettlements, &sm.Stats.ThunderstormCells,
			&sm.Stats.AverageMantleEnergy, &sm.Stats.AverageTemperature, &sm.Stats.TotalStoredEnergy); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		sm.Cycle = uint64(cycle)
		out = append(out, sm)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r       Run
		params  string
		started string
	)
	if err := sc.Scan(&r.ID, &r.Preset, &r.Width, &r.Height, &r.Seed, &params, &started, &r.Samples); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("failed to scan run: %w", err)
	}
	if err := json.Unmarshal([]byte(params), &r.Params); err != nil {
		return Run{}, fmt.Errorf("decoding params of run %d: %w", r.ID, err)
	}
	t, err := time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return Run{}, fmt.Errorf("parsing start time of run %d: %w", r.ID, err)
	}
	r.StartedAt = t
	return r, nil
}
