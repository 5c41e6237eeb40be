package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agewise-dev/agewise/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "agewise",
		Short:   "Point-in-time aged receivables reconstruction",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newReportCommand())
	rootCmd.AddCommand(newConnectionsCommand())

	return rootCmd
}
