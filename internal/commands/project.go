package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tally-dev/tally/internal/categorize"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

// flagKeys maps command flags onto the configuration keys they override.
var flagKeys = map[string]string{
	"min-valid":            "import.min_valid_fraction",
	"reference-tiebreaker": "import.reference_tiebreaker",
	"default-format":       "import.default_format",
}

// project is an initialized tally directory and its effective configuration.
type project struct {
	root string
	cfg  *config.Config
}

// loadProject reads tally.yaml from --dir, applying TALLY_* environment
// overrides and any bound flags.
func loadProject(cmd *cobra.Command) (*project, error) {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return nil, err
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(root, config.FileName))
	v.SetEnvPrefix("TALLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading %s (run 'tally init' first): %w", config.FileName, err)
	}

	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}

	cfg := config.Default("")
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.FileName, err)
	}

	return &project{root: root, cfg: cfg}, nil
}

func (p *project) path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.root, rel)
}

// openStore opens the project database and brings the configured accounts
// into it.
func (p *project) openStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Open(p.path(p.cfg.Database.Path))
	if err != nil {
		return nil, err
	}

	for _, a := range p.cfg.Accounts {
		opening, err := a.Opening()
		if err != nil {
			st.Close()
			return nil, err
		}
		acc := model.Account{
			ID:             a.ID,
			UserID:         p.cfg.User.ID,
			Name:           a.Name,
			Format:         a.Format,
			OpeningBalance: opening,
		}
		if err := st.EnsureAccount(ctx, acc); err != nil {
			st.Close()
			return nil, fmt.Errorf("syncing account %s: %w", a.ID, err)
		}
	}
	return st, nil
}

// engine builds the categorization engine, user rules first.
func (p *project) engine() (*categorize.Engine, error) {
	if p.cfg.Import.RulesFile == "" {
		return categorize.Default(), nil
	}
	rules, err := categorize.LoadRules(p.path(p.cfg.Import.RulesFile))
	if err != nil {
		return nil, err
	}
	return categorize.WithUserRules(rules), nil
}
