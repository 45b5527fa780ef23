package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"StockScreener/internal/model"
)

// SQLiteRecorder persists the execution log to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets a dashboard read while a run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id          TEXT NOT NULL UNIQUE,
			slot            TEXT NOT NULL,
			started_at      INTEGER NOT NULL,
			elapsed_ms      INTEGER,
			status          TEXT NOT NULL,
			tier            TEXT,
			attempts        INTEGER,
			recommendations INTEGER,
			delivered       INTEGER,
			result_path     TEXT,
			error           TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS attempts (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL,
			tier       TEXT NOT NULL,
			outcome    TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			elapsed_ms INTEGER,
			error      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_run ON attempts(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordAttempt(runID string, a model.ExecutionAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO attempts
		(run_id, tier, outcome, started_at, elapsed_ms, error)
		VALUES (?,?,?,?,?,?)`,
		runID, a.Tier, string(a.Outcome), a.StartedAt.UnixMilli(), a.Elapsed.Milliseconds(), a.Error,
	)
	return err
}

func (r *SQLiteRecorder) RecordRun(run *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO runs
		(run_id, slot, started_at, elapsed_ms, status, tier, attempts,
		 recommendations, delivered, result_path, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		run.RunID, string(run.Slot), run.StartedAt.UnixMilli(), run.Elapsed.Milliseconds(),
		string(run.Status), run.Tier, run.Attempts, run.Recommendations,
		run.Delivered, run.ResultPath, run.Error,
	)
	return err
}

// RecentRuns returns up to limit runs, newest first.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT run_id, slot, started_at, elapsed_ms, status,
		tier, attempts, recommendations, delivered, result_path, error
		FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			rec       RunRecord
			slot      string
			status    string
			startedMs int64
			elapsedMs int64
		)
		if err := rows.Scan(&rec.RunID, &slot, &startedMs, &elapsedMs, &status,
			&rec.Tier, &rec.Attempts, &rec.Recommendations, &rec.Delivered,
			&rec.ResultPath, &rec.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.Slot = model.TimeSlot(slot)
		rec.Status = RunStatus(status)
		rec.StartedAt = time.UnixMilli(startedMs)
		rec.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}

// AttemptsFor returns the tier attempts recorded for a run in insertion order.
func (r *SQLiteRecorder) AttemptsFor(runID string) ([]model.ExecutionAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT tier, outcome, started_at, elapsed_ms, error
		FROM attempts WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []model.ExecutionAttempt
	for rows.Next() {
		var (
			a         model.ExecutionAttempt
			outcome   string
			startedMs int64
			elapsedMs int64
		)
		if err := rows.Scan(&a.Tier, &outcome, &startedMs, &elapsedMs, &a.Error); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.Outcome = model.AttemptOutcome(outcome)
		a.StartedAt = time.UnixMilli(startedMs)
		a.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
