package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chatterwise/chatcheck/internal/scenario"
)

// PostgresStore talks to the scenarios table over a direct connection, for
// deployments that skip the Supabase API layer.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const postgresSchema = `CREATE TABLE IF NOT EXISTS test_scenarios (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL DEFAULT '',
	chatbot_id TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	test_cases JSONB NOT NULL DEFAULT '[]',
	status TEXT NOT NULL DEFAULT 'draft',
	last_run_at TIMESTAMPTZ,
	last_run_report JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// NewPostgresStore opens a connection pool, verifies connectivity, and
// bootstraps the schema.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to bootstrap schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) LoadScenario(ctx context.Context, id string) (*scenario.Scenario, error) {
	row := s.pool.QueryRow(ctx, `SELECT id, user_id, chatbot_id, name, description, test_cases, status,
		last_run_at, last_run_report, created_at, updated_at
		FROM test_scenarios WHERE id = $1`, id)

	sc, err := scanScenario(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load scenario: %w", err)
	}
	return sc, nil
}

func (s *PostgresStore) ListScenarios(ctx context.Context) ([]scenario.Scenario, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, user_id, chatbot_id, name, description, test_cases, status,
		last_run_at, last_run_report, created_at, updated_at
		FROM test_scenarios ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	defer rows.Close()

	var out []scenario.Scenario
	for rows.Next() {
		sc, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}
		out = append(out, *sc)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SaveRunResult(ctx context.Context, id string, cases []scenario.TestCase, report scenario.RunReport, ranAt time.Time) error {
	casesJSON, err := json.Marshal(cases)
	if err != nil {
		return fmt.Errorf("failed to encode test cases: %w", err)
	}
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode run report: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `UPDATE test_scenarios
		SET test_cases = $2, last_run_report = $3, last_run_at = $4, status = $5, updated_at = $4
		WHERE id = $1`,
		id, casesJSON, reportJSON, ranAt, string(scenario.StatusActive))
	if err != nil {
		return fmt.Errorf("failed to save run result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScenario(row rowScanner) (*scenario.Scenario, error) {
	var (
		sc         scenario.Scenario
		status     string
		casesJSON  []byte
		reportJSON []byte
	)
	err := row.Scan(&sc.ID, &sc.UserID, &sc.ChatbotID, &sc.Name, &sc.Description,
		&casesJSON, &status, &sc.LastRunAt, &reportJSON, &sc.CreatedAt, &sc.UpdatedAt)
	if err != nil {
		return nil, err
	}

	sc.Status = scenario.ScenarioStatus(status)
	if len(casesJSON) > 0 {
		if err := json.Unmarshal(casesJSON, &sc.TestCases); err != nil {
			return nil, fmt.Errorf("malformed test_cases column: %w", err)
		}
	}
	if len(reportJSON) > 0 {
		var rep scenario.RunReport
		if err := json.Unmarshal(reportJSON, &rep); err != nil {
			return nil, fmt.Errorf("malformed last_run_report column: %w", err)
		}
		sc.LastRunReport = &rep
	}
	return &sc, nil
}
