package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatterwise/chatcheck/internal/scenario"
	"github.com/chatterwise/chatcheck/internal/store"
)

func passed(ms int64) scenario.TestCase {
	return scenario.TestCase{Status: scenario.CasePassed, ResponseTimeMs: ms}
}

func failed(ms int64) scenario.TestCase {
	return scenario.TestCase{Status: scenario.CaseFailed, ResponseTimeMs: ms}
}

func TestCompute(t *testing.T) {
	ranAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		cases      []scenario.TestCase
		wantPassed int
		wantFailed int
		wantRate   float64
		wantAvgMs  float64
	}{
		{
			name:       "all passed",
			cases:      []scenario.TestCase{passed(100), passed(300)},
			wantPassed: 2,
			wantRate:   100,
			wantAvgMs:  200,
		},
		{
			name:       "mixed",
			cases:      []scenario.TestCase{passed(100), failed(200), failed(600)},
			wantPassed: 1,
			wantFailed: 2,
			wantRate:   100.0 / 3,
			wantAvgMs:  300,
		},
		{
			name:       "all failed",
			cases:      []scenario.TestCase{failed(50)},
			wantFailed: 1,
			wantRate:   0,
			wantAvgMs:  50,
		},
		{
			name: "empty produces zeroes, not a division by zero",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := Compute(tt.cases, ranAt)

			assert.Equal(t, len(tt.cases), rep.TotalCases)
			assert.Equal(t, tt.wantPassed, rep.PassedCases)
			assert.Equal(t, tt.wantFailed, rep.FailedCases)
			assert.InDelta(t, tt.wantRate, rep.SuccessRatePercent, 0.001)
			assert.InDelta(t, tt.wantAvgMs, rep.AvgResponseTimeMs, 0.001)
			assert.Equal(t, ranAt, rep.RanAt)

			// Totals identity holds for every report.
			assert.Equal(t, rep.TotalCases, rep.PassedCases+rep.FailedCases)
		})
	}
}

func TestAggregator_FinalizePersists(t *testing.T) {
	mem := store.NewMemoryStore()
	mem.Put(scenario.Scenario{
		ID:        "sc-1",
		ChatbotID: "bot-1",
		Name:      "support bot",
		Status:    scenario.StatusDraft,
	})

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	agg := NewAggregator(mem, func() time.Time { return now })

	cases := []scenario.TestCase{passed(120), failed(80)}
	rep, err := agg.Finalize(context.Background(), "sc-1", cases)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.TotalCases)

	sc, err := mem.LoadScenario(context.Background(), "sc-1")
	require.NoError(t, err)

	// Cases, report, lastRunAt, and status land together.
	assert.Equal(t, scenario.StatusActive, sc.Status)
	require.NotNil(t, sc.LastRunReport)
	assert.Equal(t, rep, *sc.LastRunReport)
	require.NotNil(t, sc.LastRunAt)
	assert.Equal(t, now, *sc.LastRunAt)
	assert.Len(t, sc.TestCases, 2)
}

type failingStore struct {
	store.Store
}

func (f failingStore) SaveRunResult(ctx context.Context, id string, cases []scenario.TestCase, report scenario.RunReport, ranAt time.Time) error {
	return errors.New("connection refused")
}

func TestAggregator_FinalizeReturnsReportOnSaveFailure(t *testing.T) {
	agg := NewAggregator(failingStore{}, nil)

	cases := []scenario.TestCase{passed(100)}
	rep, err := agg.Finalize(context.Background(), "sc-1", cases)

	// The caller still gets the computed report so results are not lost.
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save run result")
	assert.Equal(t, 1, rep.TotalCases)
	assert.Equal(t, 1, rep.PassedCases)
}
