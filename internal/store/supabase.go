package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chatterwise/chatcheck/internal/scenario"
)

const scenarioTable = "test_scenarios"

// SupabaseConfig configures a SupabaseStore.
type SupabaseConfig struct {
	// URL is the Supabase project URL, e.g. https://xyz.supabase.co.
	URL string
	// Key is the anon or service role API key.
	Key string
	// Timeout bounds each request. Zero means 30 seconds.
	Timeout time.Duration
}

// SupabaseStore reads and writes scenarios through the PostgREST API of the
// test_scenarios table.
type SupabaseStore struct {
	baseURL    string
	key        string
	httpClient *http.Client
}

// scenarioRow mirrors the test_scenarios columns. Cases and report are
// jsonb columns holding the scenario.TestCase / scenario.RunReport shapes.
type scenarioRow struct {
	ID            string              `json:"id"`
	UserID        string              `json:"user_id,omitempty"`
	ChatbotID     string              `json:"chatbot_id"`
	Name          string              `json:"name"`
	Description   string              `json:"description,omitempty"`
	TestCases     []scenario.TestCase `json:"test_cases"`
	Status        string              `json:"status"`
	LastRunAt     *time.Time          `json:"last_run_at,omitempty"`
	LastRunReport *scenario.RunReport `json:"last_run_report,omitempty"`
	CreatedAt     time.Time           `json:"created_at,omitempty"`
	UpdatedAt     time.Time           `json:"updated_at,omitempty"`
}

type runResultPatch struct {
	TestCases     []scenario.TestCase `json:"test_cases"`
	Status        string              `json:"status"`
	LastRunAt     time.Time           `json:"last_run_at"`
	LastRunReport scenario.RunReport  `json:"last_run_report"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func NewSupabaseStore(cfg SupabaseConfig) (*SupabaseStore, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("supabase url is required")
	}
	if cfg.Key == "" {
		return nil, fmt.Errorf("supabase key is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SupabaseStore{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		key:        cfg.Key,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (s *SupabaseStore) LoadScenario(ctx context.Context, id string) (*scenario.Scenario, error) {
	query := url.Values{}
	query.Set("id", "eq."+id)
	query.Set("select", "*")
	query.Set("limit", "1")

	body, err := s.do(ctx, http.MethodGet, query, nil, "")
	if err != nil {
		return nil, err
	}

	var rows []scenarioRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse scenario response: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	sc := rows[0].toScenario()
	return &sc, nil
}

func (s *SupabaseStore) ListScenarios(ctx context.Context) ([]scenario.Scenario, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("order", "name")

	body, err := s.do(ctx, http.MethodGet, query, nil, "")
	if err != nil {
		return nil, err
	}

	var rows []scenarioRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse scenario list: %w", err)
	}
	out := make([]scenario.Scenario, len(rows))
	for i, row := range rows {
		out[i] = row.toScenario()
	}
	return out, nil
}

// SaveRunResult patches the whole run result in one request; PostgREST
// applies the update atomically per row.
func (s *SupabaseStore) SaveRunResult(ctx context.Context, id string, cases []scenario.TestCase, report scenario.RunReport, ranAt time.Time) error {
	patch := runResultPatch{
		TestCases:     cases,
		Status:        string(scenario.StatusActive),
		LastRunAt:     ranAt,
		LastRunReport: report,
		UpdatedAt:     ranAt,
	}
	payload, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("failed to encode run result: %w", err)
	}

	query := url.Values{}
	query.Set("id", "eq."+id)

	body, err := s.do(ctx, http.MethodPatch, query, payload, "return=representation")
	if err != nil {
		return err
	}

	// With return=representation an empty array means no row matched.
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err == nil && len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SupabaseStore) do(ctx context.Context, method string, query url.Values, payload []byte, prefer string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", s.baseURL, scenarioTable, query.Encode())

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read supabase response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("supabase api error (status %d): %s", resp.StatusCode, supabaseErrorMessage(body))
	}
	return body, nil
}

func supabaseErrorMessage(body []byte) string {
	var apiErr struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return apiErr.Message
	}
	return string(body)
}

func (r scenarioRow) toScenario() scenario.Scenario {
	sc := scenario.Scenario{
		ID:            r.ID,
		UserID:        r.UserID,
		ChatbotID:     r.ChatbotID,
		Name:          r.Name,
		Description:   r.Description,
		TestCases:     r.TestCases,
		Status:        scenario.ScenarioStatus(r.Status),
		LastRunAt:     r.LastRunAt,
		LastRunReport: r.LastRunReport,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if sc.Status == "" {
		sc.Status = scenario.StatusDraft
	}
	return sc
}
