// Package history keeps a local sqlite log of scenario runs so past results
// survive across CLI invocations without any remote store configured.
package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/chatterwise/chatcheck/internal/scenario"
)

const schema = `CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	scenario_id TEXT NOT NULL,
	scenario_name TEXT NOT NULL,
	total_cases INTEGER NOT NULL,
	passed_cases INTEGER NOT NULL,
	failed_cases INTEGER NOT NULL,
	success_rate REAL NOT NULL,
	avg_response_ms REAL NOT NULL,
	ran_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_ran_at ON runs (ran_at DESC);`

// Record is one persisted run summary.
type Record struct {
	ID            string    `db:"id"`
	ScenarioID    string    `db:"scenario_id"`
	ScenarioName  string    `db:"scenario_name"`
	TotalCases    int       `db:"total_cases"`
	PassedCases   int       `db:"passed_cases"`
	FailedCases   int       `db:"failed_cases"`
	SuccessRate   float64   `db:"success_rate"`
	AvgResponseMs float64   `db:"avg_response_ms"`
	RanAt         time.Time `db:"ran_at"`
}

// Store is a sqlite-backed run log.
type Store struct {
	db *sqlx.DB
}

// DefaultPath returns ~/.chatcheck/history.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".chatcheck", "history.db"), nil
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to bootstrap history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append records one completed run.
func (s *Store) Append(ctx context.Context, sc *scenario.Scenario, report scenario.RunReport) error {
	rec := Record{
		ID:            uuid.NewString(),
		ScenarioID:    sc.ID,
		ScenarioName:  sc.Name,
		TotalCases:    report.TotalCases,
		PassedCases:   report.PassedCases,
		FailedCases:   report.FailedCases,
		SuccessRate:   report.SuccessRatePercent,
		AvgResponseMs: report.AvgResponseTimeMs,
		RanAt:         report.RanAt.UTC(),
	}
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO runs
		(id, scenario_id, scenario_name, total_cases, passed_cases, failed_cases, success_rate, avg_response_ms, ran_at)
		VALUES (:id, :scenario_id, :scenario_name, :total_cases, :passed_cases, :failed_cases, :success_rate, :avg_response_ms, :ran_at)`,
		rec)
	if err != nil {
		return fmt.Errorf("failed to append run history: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []Record
	err := s.db.SelectContext(ctx, &records,
		`SELECT * FROM runs ORDER BY ran_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read run history: %w", err)
	}
	return records, nil
}
