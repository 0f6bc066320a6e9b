package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file.
const FileName = "tally.yaml"

// Config represents the top-level tally.yaml configuration.
type Config struct {
	User     UserConfig     `yaml:"user" mapstructure:"user"`
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Import   ImportConfig   `yaml:"import" mapstructure:"import"`
	Accounts []Account      `yaml:"accounts,omitempty" mapstructure:"accounts"`
}

// UserConfig identifies the owner of imported transactions.
type UserConfig struct {
	ID string `yaml:"id" mapstructure:"id"`
}

// DatabaseConfig locates the SQLite database, relative to the project root.
type DatabaseConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ImportConfig controls detection, validation and deduplication.
type ImportConfig struct {
	DefaultFormat       string  `yaml:"default_format" mapstructure:"default_format"`
	MinValidFraction    float64 `yaml:"min_valid_fraction" mapstructure:"min_valid_fraction"`
	ReferenceTiebreaker bool    `yaml:"reference_tiebreaker" mapstructure:"reference_tiebreaker"`
	RulesFile           string  `yaml:"rules_file,omitempty" mapstructure:"rules_file"`
}

// Account declares an import destination.
type Account struct {
	ID             string `yaml:"id" mapstructure:"id"`
	Name           string `yaml:"name" mapstructure:"name"`
	OpeningBalance string `yaml:"opening_balance" mapstructure:"opening_balance"`
	Format         string `yaml:"format,omitempty" mapstructure:"format"`
}

// Opening parses the account's opening balance. Blank means zero.
func (a Account) Opening() (decimal.Decimal, error) {
	if a.OpeningBalance == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(a.OpeningBalance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing opening balance of %s: %w", a.ID, err)
	}
	return d, nil
}

// Account returns the declared account with the given ID.
func (c *Config) Account(id string) (Account, bool) {
	for _, a := range c.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}

// Validate reports configuration errors.
func (c *Config) Validate() error {
	if c.User.ID == "" {
		return fmt.Errorf("user.id is required")
	}
	if c.Import.MinValidFraction < 0 || c.Import.MinValidFraction > 1 {
		return fmt.Errorf("import.min_valid_fraction must be between 0 and 1, got %v", c.Import.MinValidFraction)
	}
	seen := make(map[string]bool, len(c.Accounts))
	for _, a := range c.Accounts {
		if a.ID == "" {
			return fmt.Errorf("account %q has no id", a.Name)
		}
		if seen[a.ID] {
			return fmt.Errorf("duplicate account id %q", a.ID)
		}
		seen[a.ID] = true
		if _, err := a.Opening(); err != nil {
			return err
		}
	}
	return nil
}

// Load reads a tally.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(userID string) *Config {
	return &Config{
		User: UserConfig{ID: userID},
		Database: DatabaseConfig{
			Path: "data/tally.db",
		},
		Import: ImportConfig{
			DefaultFormat:    "anz",
			MinValidFraction: 0.5,
		},
	}
}
