package categorize

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// RuleConfig is one entry of a categorization rules file.
type RuleConfig struct {
	Category   string   `yaml:"category"`
	Keywords   []string `yaml:"keywords,omitempty"`
	Pattern    string   `yaml:"pattern,omitempty"`
	InflowOnly bool     `yaml:"inflow_only,omitempty"`
}

// RulesFile is the top-level shape of a rules YAML file.
type RulesFile struct {
	Rules []RuleConfig `yaml:"rules"`
}

// ParseRules decodes YAML rule definitions into compiled rules, preserving
// their order.
func ParseRules(data []byte) ([]Rule, error) {
	var f RulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}

	rules := make([]Rule, 0, len(f.Rules))
	for i, rc := range f.Rules {
		if rc.Category == "" {
			return nil, fmt.Errorf("rule %d: category is required", i+1)
		}
		var re *regexp.Regexp
		switch {
		case rc.Pattern != "" && len(rc.Keywords) > 0:
			return nil, fmt.Errorf("rule %d: use keywords or pattern, not both", i+1)
		case rc.Pattern != "":
			var err error
			if re, err = regexp.Compile(rc.Pattern); err != nil {
				return nil, fmt.Errorf("rule %d: compiling pattern: %w", i+1, err)
			}
		case len(rc.Keywords) > 0:
			re = Keywords(rc.Keywords...)
		default:
			return nil, fmt.Errorf("rule %d: keywords or pattern is required", i+1)
		}
		rules = append(rules, Rule{Category: rc.Category, Pattern: re, InflowOnly: rc.InflowOnly})
	}
	return rules, nil
}

// LoadRules reads a rules file. A missing file yields no rules.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	return ParseRules(data)
}
