package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chatterwise/chatcheck/internal/history"
)

// NewHistoryCmd creates a new history command
func NewHistoryCmd() *cobra.Command {
	limit := 20

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs from the local history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", limit, "Maximum number of runs to display")
	return cmd
}

func runHistory(cmd *cobra.Command, limit int) error {
	cfg := LoadConfig()
	path := cfg.HistoryPath
	if path == "" {
		var err error
		path, err = history.DefaultPath()
		if err != nil {
			return err
		}
	}

	hist, err := history.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = hist.Close() }()

	records, err := hist.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RAN AT\tSCENARIO\tPASSED\tFAILED\tSUCCESS\tAVG MS")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.0f%%\t%.0f\n",
			rec.RanAt.Local().Format("2006-01-02 15:04:05"),
			rec.ScenarioName, rec.PassedCases, rec.FailedCases, rec.SuccessRate, rec.AvgResponseMs)
	}
	return w.Flush()
}
