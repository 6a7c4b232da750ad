package store

import (
	"context"
	"time"

	"github.com/chatterwise/chatcheck/internal/cache"
	"github.com/chatterwise/chatcheck/internal/scenario"
)

// CachedStore wraps another Store with a read-through TTL cache on
// LoadScenario. Saves invalidate the cached entry so a reload after a run
// reflects the new results. ListScenarios is never cached; it backs
// interactive listings where staleness is more confusing than latency.
type CachedStore struct {
	inner Store
	cache *cache.TTL[string, scenario.Scenario]
}

// NewCachedStore wraps inner with the given cache lifetime. now is optional
// and defaults to time.Now.
func NewCachedStore(inner Store, ttl time.Duration, now func() time.Time) *CachedStore {
	return &CachedStore{
		inner: inner,
		cache: cache.NewTTL[string, scenario.Scenario](ttl, now),
	}
}

func (s *CachedStore) LoadScenario(ctx context.Context, id string) (*scenario.Scenario, error) {
	if sc, ok := s.cache.Get(id); ok {
		out := cloneScenario(sc)
		return &out, nil
	}

	sc, err := s.inner.LoadScenario(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(id, cloneScenario(*sc))
	return sc, nil
}

func (s *CachedStore) ListScenarios(ctx context.Context) ([]scenario.Scenario, error) {
	return s.inner.ListScenarios(ctx)
}

func (s *CachedStore) SaveRunResult(ctx context.Context, id string, cases []scenario.TestCase, report scenario.RunReport, ranAt time.Time) error {
	err := s.inner.SaveRunResult(ctx, id, cases, report, ranAt)
	s.cache.Invalidate(id)
	return err
}
