// Package scenario defines the data model shared by the runner, the report
// aggregator, and the scenario stores.
package scenario

import "time"

// CaseStatus is the execution state of a single test case.
type CaseStatus string

const (
	CasePending CaseStatus = "pending"
	CaseRunning CaseStatus = "running"
	CasePassed  CaseStatus = "passed"
	CaseFailed  CaseStatus = "failed"
)

// ScenarioStatus is the lifecycle state of a scenario.
type ScenarioStatus string

const (
	StatusDraft    ScenarioStatus = "draft"
	StatusActive   ScenarioStatus = "active"
	StatusArchived ScenarioStatus = "archived"
)

// TestCase is one input message plus its optional expectation and the
// result fields populated by the most recent run.
type TestCase struct {
	ID                   string     `json:"id" yaml:"id"`
	InputMessage         string     `json:"input_message" yaml:"message"`
	ExpectedResponseHint string     `json:"expected_response,omitempty" yaml:"expect_contains,omitempty"`
	Status               CaseStatus `json:"status" yaml:"-"`
	ActualResponse       string     `json:"actual_response,omitempty" yaml:"-"`
	ResponseTimeMs       int64      `json:"response_time_ms,omitempty" yaml:"-"`
	ExecutedAt           *time.Time `json:"executed_at,omitempty" yaml:"-"`
}

// RunReport holds the aggregate statistics of one scenario run.
type RunReport struct {
	TotalCases         int       `json:"total_cases"`
	PassedCases        int       `json:"passed_cases"`
	FailedCases        int       `json:"failed_cases"`
	SuccessRatePercent float64   `json:"success_rate_percent"`
	AvgResponseTimeMs  float64   `json:"avg_response_time_ms"`
	RanAt              time.Time `json:"ran_at"`
}

// Scenario is a named, ordered set of test cases targeting one chatbot.
// TestCases order is execution order and must be preserved across runs.
type Scenario struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id,omitempty"`
	ChatbotID     string         `json:"chatbot_id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	TestCases     []TestCase     `json:"test_cases"`
	Status        ScenarioStatus `json:"status"`
	LastRunAt     *time.Time     `json:"last_run_at,omitempty"`
	LastRunReport *RunReport     `json:"last_run_report,omitempty"`
	CreatedAt     time.Time      `json:"created_at,omitempty"`
	UpdatedAt     time.Time      `json:"updated_at,omitempty"`
}

// ResetResults clears prior run state from every case so a fresh run starts
// from pending with no result fields populated.
func (s *Scenario) ResetResults() {
	for i := range s.TestCases {
		s.TestCases[i].Status = CasePending
		s.TestCases[i].ActualResponse = ""
		s.TestCases[i].ResponseTimeMs = 0
		s.TestCases[i].ExecutedAt = nil
	}
}
