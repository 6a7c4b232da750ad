package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chatterwise/chatcheck/internal/scenario"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs tests and
// file-based local runs, where the scenario comes from a YAML file rather
// than a remote table.
type MemoryStore struct {
	mu        sync.Mutex
	scenarios map[string]scenario.Scenario
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{scenarios: make(map[string]scenario.Scenario)}
}

// Put inserts or replaces a scenario.
func (s *MemoryStore) Put(sc scenario.Scenario) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenarios[sc.ID] = cloneScenario(sc)
}

func (s *MemoryStore) LoadScenario(ctx context.Context, id string) (*scenario.Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.scenarios[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneScenario(sc)
	return &out, nil
}

func (s *MemoryStore) ListScenarios(ctx context.Context) ([]scenario.Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]scenario.Scenario, 0, len(s.scenarios))
	for _, sc := range s.scenarios {
		out = append(out, cloneScenario(sc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) SaveRunResult(ctx context.Context, id string, cases []scenario.TestCase, report scenario.RunReport, ranAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.scenarios[id]
	if !ok {
		return ErrNotFound
	}

	sc.TestCases = append([]scenario.TestCase(nil), cases...)
	rep := report
	sc.LastRunReport = &rep
	at := ranAt
	sc.LastRunAt = &at
	sc.Status = scenario.StatusActive
	sc.UpdatedAt = ranAt
	s.scenarios[id] = sc
	return nil
}

func cloneScenario(sc scenario.Scenario) scenario.Scenario {
	out := sc
	out.TestCases = append([]scenario.TestCase(nil), sc.TestCases...)
	if sc.LastRunReport != nil {
		rep := *sc.LastRunReport
		out.LastRunReport = &rep
	}
	if sc.LastRunAt != nil {
		at := *sc.LastRunAt
		out.LastRunAt = &at
	}
	return out
}
