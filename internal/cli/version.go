package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// DefaultVersion is overridden at build time via -ldflags.
var DefaultVersion = "dev"

// NewVersionCmd creates a new version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of chatcheck",
		Run: func(cmd *cobra.Command, args []string) {
			version := os.Getenv("CHATCHECK_VERSION")
			if version == "" {
				version = DefaultVersion
			}
			fmt.Printf("chatcheck %s\n", version)
		},
	}
}
