package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "tally",
		Short:   "Import bank statement CSVs into a deduplicated, categorized ledger",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("dir", ".", "project directory")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newDetectCommand())
	rootCmd.AddCommand(newFormatsCommand())
	rootCmd.AddCommand(newAccountsCommand())
	rootCmd.AddCommand(newTransactionsCommand())
	rootCmd.AddCommand(newCategoriesCommand())

	return rootCmd
}
