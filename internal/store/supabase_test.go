package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatterwise/chatcheck/internal/scenario"
)

func newSupabaseStore(t *testing.T, handler http.HandlerFunc) *SupabaseStore {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	s, err := NewSupabaseStore(SupabaseConfig{URL: server.URL, Key: "test-key"})
	require.NoError(t, err)
	return s
}

func TestSupabaseStore_LoadScenario(t *testing.T) {
	var gotReq *http.Request
	s := newSupabaseStore(t, func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		_, _ = w.Write([]byte(`[{
			"id": "sc-1",
			"chatbot_id": "bot-1",
			"name": "support bot",
			"status": "active",
			"test_cases": [
				{"id": "c1", "input_message": "Hi"},
				{"id": "c2", "input_message": "What are your hours?", "expected_response": "9 AM to 5 PM"}
			],
			"last_run_report": {"total_cases": 2, "passed_cases": 2, "failed_cases": 0, "success_rate_percent": 100}
		}]`))
	})

	sc, err := s.LoadScenario(context.Background(), "sc-1")
	require.NoError(t, err)

	assert.Equal(t, "/rest/v1/test_scenarios", gotReq.URL.Path)
	assert.Equal(t, "eq.sc-1", gotReq.URL.Query().Get("id"))
	assert.Equal(t, "test-key", gotReq.Header.Get("apikey"))
	assert.Equal(t, "Bearer test-key", gotReq.Header.Get("Authorization"))

	assert.Equal(t, "support bot", sc.Name)
	assert.Equal(t, scenario.StatusActive, sc.Status)
	require.Len(t, sc.TestCases, 2)
	assert.Equal(t, "What are your hours?", sc.TestCases[1].InputMessage)
	require.NotNil(t, sc.LastRunReport)
	assert.Equal(t, 2, sc.LastRunReport.PassedCases)
}

func TestSupabaseStore_LoadScenarioNotFound(t *testing.T) {
	s := newSupabaseStore(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := s.LoadScenario(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSupabaseStore_LoadScenarioAPIError(t *testing.T) {
	s := newSupabaseStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "JWT expired"}`))
	})

	_, err := s.LoadScenario(context.Background(), "sc-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "JWT expired")
}

func TestSupabaseStore_SaveRunResult(t *testing.T) {
	var gotReq *http.Request
	var gotBody map[string]interface{}
	s := newSupabaseStore(t, func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`[{"id": "sc-1"}]`))
	})

	ranAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []scenario.TestCase{{ID: "c1", InputMessage: "Hi", Status: scenario.CasePassed}}
	rep := scenario.RunReport{TotalCases: 1, PassedCases: 1, SuccessRatePercent: 100, RanAt: ranAt}

	require.NoError(t, s.SaveRunResult(context.Background(), "sc-1", cases, rep, ranAt))

	assert.Equal(t, http.MethodPatch, gotReq.Method)
	assert.Equal(t, "eq.sc-1", gotReq.URL.Query().Get("id"))
	assert.Equal(t, "return=representation", gotReq.Header.Get("Prefer"))

	// The patch carries cases, report, lastRunAt, and status in one write.
	assert.Equal(t, "active", gotBody["status"])
	assert.NotNil(t, gotBody["test_cases"])
	assert.NotNil(t, gotBody["last_run_report"])
	assert.NotNil(t, gotBody["last_run_at"])
}

func TestSupabaseStore_SaveRunResultNoRowMatched(t *testing.T) {
	s := newSupabaseStore(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	err := s.SaveRunResult(context.Background(), "missing", nil, scenario.RunReport{}, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSupabaseStore_ListScenarios(t *testing.T) {
	s := newSupabaseStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "name", r.URL.Query().Get("order"))
		_, _ = w.Write([]byte(`[
			{"id": "sc-1", "chatbot_id": "bot-1", "name": "alpha", "status": "draft", "test_cases": []},
			{"id": "sc-2", "chatbot_id": "bot-1", "name": "beta", "status": "active", "test_cases": []}
		]`))
	})

	list, err := s.ListScenarios(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, scenario.StatusActive, list[1].Status)
}
