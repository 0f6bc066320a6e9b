package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/categories"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/store"
)

const rulesFile = "rules/categorization-rules.yaml"

func newInitCommand() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new tally project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.Context(), absDir, userID)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "owner of imported transactions (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runInit(ctx context.Context, dir, userID string) error {
	dirs := []string{
		"data",
		"rules",
		"logs",
		"reports",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(userID)
	cfg.Import.RulesFile = rulesFile
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Write empty categorization rules.
	if err := os.WriteFile(filepath.Join(dir, rulesFile), []byte("rules: []\n"), 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}

	gitignore := "data/\nreports/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	st, err := store.Open(filepath.Join(dir, cfg.Database.Path))
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	defer st.Close()

	if err := st.SeedCategories(ctx, userID, categories.Defaults()); err != nil {
		return fmt.Errorf("seeding categories: %w", err)
	}

	pterm.Success.Printf("Initialized tally project at %s\n", dir)
	return nil
}
