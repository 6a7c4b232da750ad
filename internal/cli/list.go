package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewListCmd creates a new list command
func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scenarios in the configured store",
		Long: `List the scenarios stored remotely, with their status and last run result.

Examples:
  chatcheck list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd)
		},
	}
}

func runList(cmd *cobra.Command) error {
	cfg := LoadConfig()
	scenarioStore, closeStore, err := cfg.NewRemoteStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	scenarios, err := scenarioStore.ListScenarios(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list scenarios: %w", err)
	}

	if len(scenarios) == 0 {
		fmt.Println("No scenarios found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tCASES\tLAST RUN\tSUCCESS")
	for _, sc := range scenarios {
		lastRun := "-"
		success := "-"
		if sc.LastRunAt != nil {
			lastRun = sc.LastRunAt.Local().Format("2006-01-02 15:04")
		}
		if sc.LastRunReport != nil {
			success = fmt.Sprintf("%.0f%%", sc.LastRunReport.SuccessRatePercent)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			sc.ID, sc.Name, sc.Status, len(sc.TestCases), lastRun, success)
	}
	return w.Flush()
}
