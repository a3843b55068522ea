// Package history keeps a SQLite ledger of plot runs triggered by the server and the CLI.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iafilius/SolveTrends/src/analysis"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Run statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// WeekdayStat is the per-weekday snapshot stored with a run.
type WeekdayStat struct {
	Weekday string  `json:"weekday"`
	Count   int     `json:"count"`
	Rolling float64 `json:"rolling_minutes"`
	Median  float64 `json:"median_minutes"`
}

// StatsFrom keeps the ledger columns of each weekday summary.
func StatsFrom(sums []analysis.WeekdaySummary) []WeekdayStat {
	var out []WeekdayStat
	for _, s := range sums {
		out = append(out, WeekdayStat{Weekday: string(s.Weekday), Count: s.Count, Rolling: s.Rolling, Median: s.Median})
	}
	return out
}

// Run is one ledger entry.
type Run struct {
	ID          string        `json:"id"`
	Trigger     string        `json:"trigger"`
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  time.Time     `json:"finished_at"`
	Status      string        `json:"status"`
	Error       string        `json:"error,omitempty"`
	Loaded      int           `json:"loaded"`
	Valid       int           `json:"valid"`
	LatestSolve time.Time     `json:"latest_solve,omitempty"`
	Outputs     []string      `json:"outputs,omitempty"`
	Weekdays    []WeekdayStat `json:"weekdays,omitempty"`
}

// Store wraps SQLite access for run data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			trigger_kind TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT NOT NULL,
			loaded INTEGER NOT NULL,
			valid INTEGER NOT NULL,
			latest_solve TEXT NOT NULL,
			outputs TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_weekday_stats (
			run_id TEXT NOT NULL,
			weekday TEXT NOT NULL,
			count INTEGER NOT NULL,
			rolling REAL NOT NULL,
			median REAL NOT NULL,
			PRIMARY KEY (run_id, weekday)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// Record stores a run and its weekday snapshot. An empty ID is replaced by a new UUID,
// which is returned.
func (s *Store) Record(ctx context.Context, run Run) (id string, err error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, trigger_kind, started_at, finished_at, status, error, loaded, valid, latest_solve, outputs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Trigger,
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
		run.Status,
		run.Error,
		run.Loaded,
		run.Valid,
		formatTime(run.LatestSolve),
		strings.Join(run.Outputs, "\n"),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	for _, ws := range run.Weekdays {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO run_weekday_stats (run_id, weekday, count, rolling, median) VALUES (?, ?, ?, ?, ?)`,
			run.ID, ws.Weekday, ws.Count, ws.Rolling, ws.Median,
		); err != nil {
			return "", fmt.Errorf("insert weekday stats: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return "", err
	}
	return run.ID, nil
}

// Recent returns up to limit runs, newest first, with their weekday snapshots.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, trigger_kind, started_at, finished_at, status, error, loaded, valid, latest_solve, outputs
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished, latest, outputs string
		if err := rows.Scan(&r.ID, &r.Trigger, &started, &finished, &r.Status, &r.Error, &r.Loaded, &r.Valid, &latest, &outputs); err != nil {
			return nil, err
		}
		if r.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if r.FinishedAt, err = parseTime(finished); err != nil {
			return nil, err
		}
		if r.LatestSolve, err = parseTime(latest); err != nil {
			return nil, err
		}
		if outputs != "" {
			r.Outputs = strings.Split(outputs, "\n")
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range runs {
		stats, err := s.weekdayStats(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Weekdays = stats
	}
	return runs, nil
}

// weekdayOrder sorts Mon..Sun in SQL.
const weekdayOrder = `CASE weekday WHEN 'Mon' THEN 0 WHEN 'Tue' THEN 1 WHEN 'Wed' THEN 2 WHEN 'Thu' THEN 3 WHEN 'Fri' THEN 4 WHEN 'Sat' THEN 5 WHEN 'Sun' THEN 6 ELSE 7 END`

func (s *Store) weekdayStats(ctx context.Context, runID string) ([]WeekdayStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT weekday, count, rolling, median FROM run_weekday_stats WHERE run_id = ? ORDER BY `+weekdayOrder, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []WeekdayStat
	for rows.Next() {
		var ws WeekdayStat
		if err := rows.Scan(&ws.Weekday, &ws.Count, &ws.Rolling, &ws.Median); err != nil {
			return nil, err
		}
		out = append(out, ws)
	}
	return out, rows.Err()
}
