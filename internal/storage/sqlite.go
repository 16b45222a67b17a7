// Package storage provides SQLite-based persistence for save slots and run
// telemetry. Uses the pure-Go modernc.org/sqlite driver to avoid CGO
// dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/horde/internal/runner"
	"github.com/vovakirdan/horde/internal/sim"
)

// ErrSlotNotFound is returned when a named save slot does not exist.
var ErrSlotNotFound = errors.New("storage: save slot not found")

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// SaveSlot describes one stored save without its payload.
type SaveSlot struct {
	ID        int64
	SaveID    string
	Name      string
	Scenario  string
	Elapsed   float64
	CreatedAt time.Time
}

// RunRecord is one finished run.
type RunRecord struct {
	ID        int64
	RunID     string
	Scenario  string
	Seed      int64
	Frames    uint64
	Kills     int
	Score     int
	Elapsed   float64 // simulated seconds
	AvgMs     float64
	MaxMs     float64
	Overruns  int64
	EndReason string
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS save_slots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			save_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL UNIQUE,
			scenario TEXT NOT NULL,
			elapsed REAL NOT NULL DEFAULT 0,
			data BLOB NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			scenario TEXT NOT NULL,
			seed INTEGER NOT NULL DEFAULT 0,
			frames INTEGER NOT NULL DEFAULT 0,
			kills INTEGER NOT NULL DEFAULT 0,
			score INTEGER NOT NULL DEFAULT 0,
			elapsed REAL NOT NULL DEFAULT 0,
			avg_ms REAL NOT NULL DEFAULT 0,
			max_ms REAL NOT NULL DEFAULT 0,
			overruns INTEGER NOT NULL DEFAULT 0,
			end_reason TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_scenario ON runs(scenario);
		CREATE INDEX IF NOT EXISTS idx_runs_top ON runs(scenario, score DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// parseTime handles both driver representations of DATETIME.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// PutSave stores snap under name, replacing any save with the same name.
// Returns the new save id.
func (s *Store) PutSave(name, scenario string, snap sim.SaveSnapshot) (string, error) {
	data, err := msgpack.Marshal(&snap)
	if err != nil {
		return "", fmt.Errorf("storage: cannot encode save: %w", err)
	}
	saveID := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO save_slots (save_id, name, scenario, elapsed, data)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   save_id = excluded.save_id,
		   scenario = excluded.scenario,
		   elapsed = excluded.elapsed,
		   data = excluded.data,
		   created_at = CURRENT_TIMESTAMP`,
		saveID, name, scenario, float64(snap.ElapsedSeconds), data,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save slot %q: %w", name, err)
	}
	return saveID, nil
}

// GetSave loads the save stored under name.
func (s *Store) GetSave(name string) (SaveSlot, sim.SaveSnapshot, error) {
	var slot SaveSlot
	var snap sim.SaveSnapshot
	var data []byte
	var createdAt any

	err := s.db.QueryRow(
		`SELECT id, save_id, name, scenario, elapsed, data, created_at
		 FROM save_slots WHERE name = ?`,
		name,
	).Scan(&slot.ID, &slot.SaveID, &slot.Name, &slot.Scenario, &slot.Elapsed, &data, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return slot, snap, fmt.Errorf("%w: %q", ErrSlotNotFound, name)
	}
	if err != nil {
		return slot, snap, fmt.Errorf("storage: cannot query save slot: %w", err)
	}
	slot.CreatedAt = parseTime(createdAt)

	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return slot, snap, fmt.Errorf("storage: cannot decode save %q: %w", name, err)
	}
	return slot, snap, nil
}

// ListSaves returns every save slot, newest first.
func (s *Store) ListSaves() ([]SaveSlot, error) {
	rows, err := s.db.Query(
		`SELECT id, save_id, name, scenario, elapsed, created_at
		 FROM save_slots
		 ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query save slots: %w", err)
	}
	defer rows.Close()

	var slots []SaveSlot
	for rows.Next() {
		var slot SaveSlot
		var createdAt any
		if err := rows.Scan(&slot.ID, &slot.SaveID, &slot.Name, &slot.Scenario, &slot.Elapsed, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		slot.CreatedAt = parseTime(createdAt)
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return slots, nil
}

// DeleteSave removes the save stored under name.
func (s *Store) DeleteSave(name string) error {
	res, err := s.db.Exec("DELETE FROM save_slots WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("storage: cannot delete save slot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %q", ErrSlotNotFound, name)
	}
	return nil
}

// SaveRun records a finished run. A missing RunID is generated.
// Returns the ID of the inserted record.
func (s *Store) SaveRun(r RunRecord) (int64, error) {
	if r.RunID == "" {
		r.RunID = uuid.NewString()
	}
	res, err := s.db.Exec(
		`INSERT INTO runs
		 (run_id, scenario, seed, frames, kills, score, elapsed, avg_ms, max_ms, overruns, end_reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Scenario, r.Seed, int64(r.Frames), r.Kills, r.Score,
		r.Elapsed, r.AvgMs, r.MaxMs, r.Overruns, r.EndReason,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// RecordRun implements runner.Recorder.
func (s *Store) RecordRun(stats runner.RunStats) error {
	_, err := s.SaveRun(RunRecord{
		RunID:     stats.RunID,
		Scenario:  stats.Scenario,
		Seed:      stats.Seed,
		Frames:    stats.Frames,
		Kills:     int(stats.Kills),
		Score:     int(stats.Score),
		Elapsed:   stats.ElapsedSeconds,
		AvgMs:     stats.AvgMs,
		MaxMs:     stats.MaxMs,
		Overruns:  int64(stats.Overruns),
		EndReason: string(stats.EndReason),
	})
	return err
}

var _ runner.Recorder = (*Store)(nil)

const runColumns = `id, run_id, scenario, seed, frames, kills, score, elapsed,
	avg_ms, max_ms, overruns, end_reason, created_at`

func scanRun(scan func(dest ...any) error) (RunRecord, error) {
	var r RunRecord
	var frames int64
	var createdAt any
	err := scan(&r.ID, &r.RunID, &r.Scenario, &r.Seed, &frames, &r.Kills, &r.Score, &r.Elapsed,
		&r.AvgMs, &r.MaxMs, &r.Overruns, &r.EndReason, &createdAt)
	r.Frames = uint64(frames)
	r.CreatedAt = parseTime(createdAt)
	return r, err
}

func (s *Store) queryRuns(query string, args ...any) ([]RunRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		r, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return runs, nil
}

// TopRuns retrieves the best runs of a scenario by score.
func (s *Store) TopRuns(scenario string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.queryRuns(
		`SELECT `+runColumns+` FROM runs
		 WHERE scenario = ?
		 ORDER BY score DESC, id ASC
		 LIMIT ?`,
		scenario, limit,
	)
}

// RecentRuns retrieves the most recent runs across scenarios.
func (s *Store) RecentRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryRuns(
		`SELECT `+runColumns+` FROM runs
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
}

// RunByID retrieves a run by its run id. Returns nil if none matches.
func (s *Store) RunByID(runID string) (*RunRecord, error) {
	r, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query run: %w", err)
	}
	return &r, nil
}

// ScenarioStats contains aggregated statistics for a scenario.
type ScenarioStats struct {
	Scenario  string
	Runs      int
	BestScore int
	AvgScore  float64
	MaxFrames int64
	WorstMs   float64
	LastRun   time.Time
}

// AllScenarioStats aggregates every scenario that has recorded runs.
func (s *Store) AllScenarioStats() (map[string]*ScenarioStats, error) {
	rows, err := s.db.Query(
		`SELECT scenario, COUNT(*), MAX(score), AVG(score), MAX(frames), MAX(max_ms), MAX(created_at)
		 FROM runs
		 GROUP BY scenario`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get scenario stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*ScenarioStats)
	for rows.Next() {
		var st ScenarioStats
		var lastRun any
		if err := rows.Scan(&st.Scenario, &st.Runs, &st.BestScore, &st.AvgScore, &st.MaxFrames, &st.WorstMs, &lastRun); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastRun = parseTime(lastRun)
		stats[st.Scenario] = &st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return stats, nil
}

// ClearRuns deletes all runs of a scenario.
func (s *Store) ClearRuns(scenario string) error {
	if _, err := s.db.Exec("DELETE FROM runs WHERE scenario = ?", scenario); err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}
