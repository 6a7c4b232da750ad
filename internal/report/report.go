// Package report turns executed test cases into a run report and persists
// the run result.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/chatterwise/chatcheck/internal/scenario"
	"github.com/chatterwise/chatcheck/internal/store"
)

// Compute builds a RunReport from the executed case list. Statistics are
// order-independent sums and means; an empty list yields a zeroed report
// rather than a division by zero.
func Compute(cases []scenario.TestCase, ranAt time.Time) scenario.RunReport {
	report := scenario.RunReport{
		TotalCases: len(cases),
		RanAt:      ranAt,
	}
	if report.TotalCases == 0 {
		return report
	}

	var totalMs int64
	for _, tc := range cases {
		if tc.Status == scenario.CasePassed {
			report.PassedCases++
		}
		totalMs += tc.ResponseTimeMs
	}
	report.FailedCases = report.TotalCases - report.PassedCases
	report.SuccessRatePercent = float64(report.PassedCases) / float64(report.TotalCases) * 100
	report.AvgResponseTimeMs = float64(totalMs) / float64(report.TotalCases)
	return report
}

// Aggregator finalizes a run: it computes the report and writes cases,
// report, lastRunAt, and status=active onto the scenario as one save.
type Aggregator struct {
	store store.Store
	now   func() time.Time
}

// NewAggregator builds an Aggregator. now is optional and defaults to
// time.Now.
func NewAggregator(s store.Store, now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{store: s, now: now}
}

// Finalize computes the report and persists the run result. The report is
// returned even when the save fails; the save error comes back separately so
// the caller can warn that results were not stored without losing them.
func (a *Aggregator) Finalize(ctx context.Context, scenarioID string, cases []scenario.TestCase) (scenario.RunReport, error) {
	ranAt := a.now()
	rep := Compute(cases, ranAt)

	if err := a.store.SaveRunResult(ctx, scenarioID, cases, rep, ranAt); err != nil {
		return rep, fmt.Errorf("failed to save run result: %w", err)
	}
	return rep, nil
}
