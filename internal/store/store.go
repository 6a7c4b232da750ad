// Package store persists scenarios and their run results. Implementations
// exist for Supabase (PostgREST), direct Postgres, and in-memory use.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/chatterwise/chatcheck/internal/scenario"
)

// ErrNotFound is returned when a scenario id does not exist.
var ErrNotFound = errors.New("scenario not found")

// Store is the scenario storage collaborator. SaveRunResult writes the
// updated cases, the report, lastRunAt, and status=active as one atomic
// update so readers never see cases from one run paired with a report from
// another.
type Store interface {
	LoadScenario(ctx context.Context, id string) (*scenario.Scenario, error)
	ListScenarios(ctx context.Context) ([]scenario.Scenario, error)
	SaveRunResult(ctx context.Context, id string, cases []scenario.TestCase, report scenario.RunReport, ranAt time.Time) error
}
