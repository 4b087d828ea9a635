package classify

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// LoadRuleSet parses a rule set from YAML. The set is not validated here;
// NewRegistry validates on construction.
func LoadRuleSet(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("failed to parse rule set: %w", err)
	}
	return &rs, nil
}

// LoadRuleSetFile reads and parses a rule set from a YAML file on disk,
// for deployments that override the built-in tables.
func LoadRuleSetFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule set file: %w", err)
	}
	return LoadRuleSet(data)
}

// DefaultRuleSet returns the built-in classification tables.
func DefaultRuleSet() (*RuleSet, error) {
	return LoadRuleSet(defaultRulesYAML)
}

// NewDefaultRegistry builds a Registry from the built-in tables, or from the
// file at path when path is non-empty.
func NewDefaultRegistry(path string) (*Registry, error) {
	var (
		rs  *RuleSet
		err error
	)
	if path != "" {
		rs, err = LoadRuleSetFile(path)
	} else {
		rs, err = DefaultRuleSet()
	}
	if err != nil {
		return nil, err
	}
	return NewRegistry(rs)
}
