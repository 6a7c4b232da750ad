package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatterwise/chatcheck/internal/scenario"
)

func seedScenario() scenario.Scenario {
	return scenario.Scenario{
		ID:        "sc-1",
		ChatbotID: "bot-1",
		Name:      "support bot",
		Status:    scenario.StatusDraft,
		TestCases: []scenario.TestCase{
			{ID: "c1", InputMessage: "Hi"},
			{ID: "c2", InputMessage: "What are your hours?", ExpectedResponseHint: "9 AM to 5 PM"},
		},
	}
}

func TestMemoryStore_LoadScenario(t *testing.T) {
	s := NewMemoryStore()
	s.Put(seedScenario())

	sc, err := s.LoadScenario(context.Background(), "sc-1")
	require.NoError(t, err)
	assert.Equal(t, "support bot", sc.Name)
	assert.Len(t, sc.TestCases, 2)

	_, err = s.LoadScenario(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_LoadReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	s.Put(seedScenario())

	sc, err := s.LoadScenario(context.Background(), "sc-1")
	require.NoError(t, err)
	sc.TestCases[0].Status = scenario.CasePassed
	sc.Name = "mutated"

	again, err := s.LoadScenario(context.Background(), "sc-1")
	require.NoError(t, err)
	assert.Equal(t, "support bot", again.Name)
	assert.Equal(t, scenario.CaseStatus(""), again.TestCases[0].Status)
}

func TestMemoryStore_SaveRunResult(t *testing.T) {
	s := NewMemoryStore()
	s.Put(seedScenario())

	ranAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []scenario.TestCase{
		{ID: "c1", InputMessage: "Hi", Status: scenario.CasePassed, ResponseTimeMs: 100},
		{ID: "c2", InputMessage: "What are your hours?", Status: scenario.CaseFailed, ResponseTimeMs: 200},
	}
	rep := scenario.RunReport{TotalCases: 2, PassedCases: 1, FailedCases: 1, SuccessRatePercent: 50, AvgResponseTimeMs: 150, RanAt: ranAt}

	require.NoError(t, s.SaveRunResult(context.Background(), "sc-1", cases, rep, ranAt))

	sc, err := s.LoadScenario(context.Background(), "sc-1")
	require.NoError(t, err)
	assert.Equal(t, scenario.StatusActive, sc.Status)
	assert.Equal(t, cases, sc.TestCases)
	require.NotNil(t, sc.LastRunReport)
	assert.Equal(t, rep, *sc.LastRunReport)
	require.NotNil(t, sc.LastRunAt)
	assert.Equal(t, ranAt, *sc.LastRunAt)

	err = s.SaveRunResult(context.Background(), "nope", cases, rep, ranAt)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ListScenarios(t *testing.T) {
	s := NewMemoryStore()
	a := seedScenario()
	a.ID, a.Name = "sc-b", "beta"
	b := seedScenario()
	b.ID, b.Name = "sc-a", "alpha"
	s.Put(a)
	s.Put(b)

	list, err := s.ListScenarios(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "beta", list[1].Name)
}
