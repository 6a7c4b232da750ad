package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/chatterwise/chatcheck/internal/dsl"
	"github.com/chatterwise/chatcheck/internal/history"
	"github.com/chatterwise/chatcheck/internal/report"
	"github.com/chatterwise/chatcheck/internal/runner"
	"github.com/chatterwise/chatcheck/internal/scenario"
	"github.com/chatterwise/chatcheck/internal/store"
)

// RunFlags holds the flags for the run command
type RunFlags struct {
	Remote    bool
	Pacing    time.Duration
	ChatbotID string
	NoHistory bool
}

type scenarioResult struct {
	Name   string
	Report scenario.RunReport
	// SaveErr is set when the run finished but persisting its result failed.
	SaveErr error
}

// NewRunCmd creates a new run command
func NewRunCmd() *cobra.Command {
	flags := &RunFlags{Pacing: runner.DefaultPacing}

	cmd := &cobra.Command{
		Use:   "run [file_or_scenario_id...]",
		Short: "Run test scenarios against a chatbot endpoint",
		Long: `Run one or more test scenarios against a chatbot endpoint.

By default each argument is a scenario YAML file. With --remote, arguments
are scenario ids loaded from the configured scenario store, and run results
are written back to it.

Examples:
  chatcheck run support-bot.yaml
  chatcheck run scenarios/*.yaml
  chatcheck run --remote 4f9c21aa-77f2-4f44-a9c7-0f6f6f6b2a10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(cmd.Context(), flags, args)
		},
	}

	cmd.Flags().BoolVar(&flags.Remote, "remote", false, "Treat arguments as scenario ids in the configured store")
	cmd.Flags().DurationVar(&flags.Pacing, "pacing", flags.Pacing, "Delay between test cases")
	cmd.Flags().StringVar(&flags.ChatbotID, "chatbot-id", "", "Override the scenario's chatbot id")
	cmd.Flags().BoolVar(&flags.NoHistory, "no-history", false, "Skip writing the local run history")

	return cmd
}

func runScenarios(ctx context.Context, flags *RunFlags, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("please specify at least one scenario file or id")
	}

	cfg := LoadConfig()
	client, err := cfg.NewChatClient()
	if err != nil {
		return err
	}

	var (
		scenarioStore store.Store
		closeStore    = func() {}
	)
	if flags.Remote {
		scenarioStore, closeStore, err = cfg.NewRemoteStore(ctx)
		if err != nil {
			return err
		}
	} else {
		scenarioStore = store.NewMemoryStore()
	}
	defer closeStore()

	hist := openHistory(cfg, flags.NoHistory)
	if hist != nil {
		defer func() { _ = hist.Close() }()
	}

	run := runner.New(client, runner.Config{
		Pacing:       flags.Pacing,
		Logger:       Logger,
		OnCaseUpdate: printCaseUpdate,
	})
	aggregator := report.NewAggregator(scenarioStore, nil)

	var results []scenarioResult
	for _, arg := range args {
		sc, err := loadScenario(ctx, scenarioStore, flags, arg)
		if err != nil {
			return err
		}

		result, err := runOne(ctx, run, aggregator, hist, sc)
		if err != nil {
			return fmt.Errorf("scenario %q: %w", sc.Name, err)
		}
		results = append(results, result)
	}

	printFinalSummary(results)

	failed := 0
	for _, r := range results {
		failed += r.Report.FailedCases
	}
	if failed > 0 {
		return fmt.Errorf("%d test case(s) failed", failed)
	}
	return nil
}

// loadScenario resolves one run argument into a scenario. Local files are
// seeded into the store so the aggregator has a row to update.
func loadScenario(ctx context.Context, s store.Store, flags *RunFlags, arg string) (*scenario.Scenario, error) {
	var sc *scenario.Scenario
	if flags.Remote {
		loaded, err := s.LoadScenario(ctx, arg)
		if err != nil {
			return nil, fmt.Errorf("failed to load scenario %q: %w", arg, err)
		}
		sc = loaded
	} else {
		data, err := os.ReadFile(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read scenario file: %w", err)
		}
		parsed, err := dsl.ParseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", arg, err)
		}
		sc = parsed
	}

	if flags.ChatbotID != "" {
		sc.ChatbotID = flags.ChatbotID
	}

	if mem, ok := s.(*store.MemoryStore); ok {
		mem.Put(*sc)
	}
	sc.ResetResults()
	return sc, nil
}

func runOne(ctx context.Context, run *runner.Runner, aggregator *report.Aggregator, hist *history.Store, sc *scenario.Scenario) (scenarioResult, error) {
	fmt.Printf("%s %s (%d cases)\n", color.New(color.Bold).Sprint("Running"), sc.Name, len(sc.TestCases))

	cases, err := run.Run(ctx, sc)
	if err != nil {
		return scenarioResult{}, err
	}

	result := scenarioResult{Name: sc.Name}
	result.Report, result.SaveErr = aggregator.Finalize(ctx, sc.ID, cases)
	if result.SaveErr != nil {
		fmt.Printf("%s results were not saved: %v\n", color.YellowString("!"), result.SaveErr)
	}

	if hist != nil {
		if err := hist.Append(ctx, sc, result.Report); err != nil {
			Logger.Warn("failed to record run history", "scenario", sc.Name, "error", err)
		}
	}

	printReport(result.Report)
	return result, nil
}

func openHistory(cfg Config, disabled bool) *history.Store {
	if disabled {
		return nil
	}
	path := cfg.HistoryPath
	if path == "" {
		var err error
		path, err = history.DefaultPath()
		if err != nil {
			Logger.Warn("run history disabled", "error", err)
			return nil
		}
	}
	hist, err := history.Open(path)
	if err != nil {
		Logger.Warn("run history disabled", "path", path, "error", err)
		return nil
	}
	return hist
}

func printCaseUpdate(index int, tc scenario.TestCase) {
	switch tc.Status {
	case scenario.CasePassed:
		fmt.Printf("  %s %s (%dms)\n", color.GreenString("✓"), tc.InputMessage, tc.ResponseTimeMs)
	case scenario.CaseFailed:
		fmt.Printf("  %s %s (%dms)\n", color.RedString("✗"), tc.InputMessage, tc.ResponseTimeMs)
		fmt.Printf("      expected: %q\n", tc.ExpectedResponseHint)
		fmt.Printf("      got:      %q\n", tc.ActualResponse)
	}
}

func printReport(rep scenario.RunReport) {
	fmt.Printf("  %d/%d passed (%.0f%%), avg %.0fms\n\n",
		rep.PassedCases, rep.TotalCases, rep.SuccessRatePercent, rep.AvgResponseTimeMs)
}

// printFinalSummary prints the aggregated results of all scenarios
func printFinalSummary(results []scenarioResult) {
	totalCases := 0
	passedCases := 0
	failedCases := 0
	passedScenarios := 0

	for _, r := range results {
		totalCases += r.Report.TotalCases
		passedCases += r.Report.PassedCases
		failedCases += r.Report.FailedCases
		if r.Report.FailedCases == 0 && r.Report.TotalCases > 0 {
			passedScenarios++
		}
	}

	fmt.Println("=== Final Summary ===")
	fmt.Printf("Total Scenarios: %d\n", len(results))
	fmt.Printf("%s Passed Scenarios: %d\n", color.GreenString("✓"), passedScenarios)
	fmt.Printf("%s Failed Scenarios: %d\n", color.RedString("✗"), len(results)-passedScenarios)
	fmt.Printf("\nTotal Cases: %d\n", totalCases)
	fmt.Printf("%s Passed Cases: %d\n", color.GreenString("✓"), passedCases)
	fmt.Printf("%s Failed Cases: %d\n", color.RedString("✗"), failedCases)
}
