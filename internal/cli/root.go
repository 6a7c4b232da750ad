package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates a new root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chatcheck",
		Short: "ChatterWise scenario test runner",
		Long:  `chatcheck replays conversation test scenarios against a ChatterWise chatbot endpoint and reports pass/fail results.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Check if debug flag is set
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				_ = os.Setenv("CHATCHECK_LOG", "DEBUG")
			}

			// Initialize logging after potentially setting the debug env var
			InitLogging()
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	cmd.AddCommand(
		NewRunCmd(),
		NewValidateCmd(),
		NewListCmd(),
		NewHistoryCmd(),
		NewVersionCmd(),
	)

	return cmd
}
