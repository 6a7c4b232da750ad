// Package runner executes a scenario's test cases sequentially against a
// chatbot endpoint and records per-case results.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chatterwise/chatcheck/internal/scenario"
)

const (
	// DefaultPacing is the fixed delay between cases. It keeps a run from
	// hammering the downstream endpoint; nothing adaptive about it.
	DefaultPacing = 500 * time.Millisecond

	// DefaultCallerTag labels runner traffic in endpoint telemetry.
	DefaultCallerTag = "test-scenario"
)

// Precondition violations abort a run before any network activity.
var (
	ErrNoCases           = errors.New("scenario has no test cases")
	ErrMissingEndpointID = errors.New("scenario has no chatbot id")
)

// Sender delivers one message to a chatbot endpoint. *chatbot.Client
// satisfies it.
type Sender interface {
	Send(ctx context.Context, endpointID, message, callerTag string) (string, error)
}

// Config configures a Runner.
type Config struct {
	// Pacing is the inter-case delay. Zero means DefaultPacing; negative
	// disables pacing (used by tests).
	Pacing time.Duration
	// CallerTag overrides DefaultCallerTag.
	CallerTag string
	// Now overrides the clock, for tests.
	Now func() time.Time
	// OnCaseUpdate, when set, is invoked after each case transition
	// (running, then its terminal status) so a live view can follow along.
	OnCaseUpdate func(index int, tc scenario.TestCase)
	Logger       *slog.Logger
}

// Runner replays scenarios case by case. Safe for concurrent use across
// different scenarios; overlapping runs of the same scenario are rejected
// with ErrRunInProgress.
type Runner struct {
	sender    Sender
	pacing    time.Duration
	callerTag string
	now       func() time.Time
	onUpdate  func(int, scenario.TestCase)
	logger    *slog.Logger
	locks     *runLock
}

// New builds a Runner around a Sender.
func New(sender Sender, cfg Config) *Runner {
	pacing := cfg.Pacing
	if pacing == 0 {
		pacing = DefaultPacing
	}
	callerTag := cfg.CallerTag
	if callerTag == "" {
		callerTag = DefaultCallerTag
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		sender:    sender,
		pacing:    pacing,
		callerTag: callerTag,
		now:       now,
		onUpdate:  cfg.OnCaseUpdate,
		logger:    logger,
		locks:     newRunLock(),
	}
}

// Run executes every test case of sc in order and returns the updated case
// list. An individual case failure never aborts the loop; only precondition
// violations, an in-flight run of the same scenario, or context cancellation
// do. The input scenario's cases are not mutated.
func (r *Runner) Run(ctx context.Context, sc *scenario.Scenario) ([]scenario.TestCase, error) {
	if len(sc.TestCases) == 0 {
		return nil, ErrNoCases
	}
	if sc.ChatbotID == "" {
		return nil, ErrMissingEndpointID
	}

	if err := r.locks.acquire(sc.ID); err != nil {
		return nil, err
	}
	defer r.locks.release(sc.ID)

	r.logger.Info("starting scenario run", "scenario", sc.Name, "cases", len(sc.TestCases))

	cases := make([]scenario.TestCase, len(sc.TestCases))
	copy(cases, sc.TestCases)

	for i := range cases {
		// Cancellation is checked between cases, never mid-call; the
		// client's own timeout bounds the in-flight request.
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run cancelled before case %q: %w", cases[i].ID, err)
		}

		r.runCase(ctx, &cases[i], sc.ChatbotID, i)

		if i < len(cases)-1 && r.pacing > 0 {
			if err := sleep(ctx, r.pacing); err != nil {
				return nil, fmt.Errorf("run cancelled after case %q: %w", cases[i].ID, err)
			}
		}
	}

	return cases, nil
}

func (r *Runner) runCase(ctx context.Context, tc *scenario.TestCase, chatbotID string, index int) {
	tc.Status = scenario.CaseRunning
	tc.ActualResponse = ""
	tc.ResponseTimeMs = 0
	tc.ExecutedAt = nil
	r.notify(index, *tc)

	start := r.now()
	reply, err := r.sender.Send(ctx, chatbotID, tc.InputMessage, r.callerTag)
	tc.ResponseTimeMs = r.now().Sub(start).Milliseconds()

	if err != nil {
		// The prefix keeps a transport failure distinguishable from a
		// legitimate bot reply in the stored result.
		tc.ActualResponse = "Error: " + err.Error()
		tc.Status = scenario.CaseFailed
		r.logger.Warn("case failed with transport error", "case", tc.ID, "error", err)
	} else {
		tc.ActualResponse = reply
		if Evaluate(tc.ExpectedResponseHint, reply) {
			tc.Status = scenario.CasePassed
		} else {
			tc.Status = scenario.CaseFailed
		}
	}

	executed := r.now()
	tc.ExecutedAt = &executed
	r.logger.Debug("case finished", "case", tc.ID, "status", string(tc.Status), "ms", tc.ResponseTimeMs)
	r.notify(index, *tc)
}

func (r *Runner) notify(index int, tc scenario.TestCase) {
	if r.onUpdate != nil {
		r.onUpdate(index, tc)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
