// Package classify implements the deterministic document classification
// engine: filename keyword matching, type-to-folder placement resolution,
// and the live keyword registry that the learning loop mutates.
package classify

import (
	"fmt"
	"strings"

	"github.com/cloo-solutions/intakeiq/internal/domain"
)

// PatternRule is one ordered filename rule. Rules are evaluated in
// declaration order and the first keyword hit wins; order is the tie-break,
// not a score.
type PatternRule struct {
	Keywords  []string     `yaml:"keywords"`
	ExcludeIf []string     `yaml:"exclude_if,omitempty"`
	FileType  string       `yaml:"file_type"`
	Category  string       `yaml:"category"`
	Folder    string       `yaml:"folder"`
	Level     domain.Level `yaml:"level"`
}

// TypeMapping is one row of the canonical file-type table. FileType is a
// unique, case-insensitive key. Keywords seed the live keyword set that the
// learning loop appends to.
type TypeMapping struct {
	FileType    string       `yaml:"file_type"`
	Category    string       `yaml:"category"`
	Folder      string       `yaml:"folder"`
	Level       domain.Level `yaml:"level"`
	Description string       `yaml:"description,omitempty"`
	Keywords    []string     `yaml:"keywords,omitempty"`
}

// CategoryDefault is the placement used when a specific file type is unknown
// but its category is.
type CategoryDefault struct {
	Category string       `yaml:"category"`
	Folder   string       `yaml:"folder"`
	Level    domain.Level `yaml:"level"`
}

// RuleSet is the full static rule configuration: the two disjoint folder-key
// enumerations, the ordered pattern rules, the type mapping table, and the
// per-category fallbacks.
type RuleSet struct {
	ClientFolders    []string          `yaml:"client_folders"`
	ProjectFolders   []string          `yaml:"project_folders"`
	Rules            []PatternRule     `yaml:"rules"`
	TypeMappings     []TypeMapping     `yaml:"type_mappings"`
	CategoryDefaults []CategoryDefault `yaml:"category_defaults"`
}

// Validate checks the rule set's configuration-time invariants. A violation
// here is a deployment error, not a runtime classification error.
func (rs *RuleSet) Validate() error {
	clientFolders := make(map[string]bool, len(rs.ClientFolders))
	for _, f := range rs.ClientFolders {
		if f == "" {
			return fmt.Errorf("client folder key cannot be empty")
		}
		clientFolders[f] = true
	}

	projectFolders := make(map[string]bool, len(rs.ProjectFolders))
	for _, f := range rs.ProjectFolders {
		if f == "" {
			return fmt.Errorf("project folder key cannot be empty")
		}
		if clientFolders[f] {
			return fmt.Errorf("folder key %q appears in both client and project enumerations", f)
		}
		projectFolders[f] = true
	}

	if !clientFolders[domain.FallbackFolder] {
		return fmt.Errorf("client folder enumeration must include the %q fallback", domain.FallbackFolder)
	}

	checkPlacement := func(what, folder string, level domain.Level) error {
		switch level {
		case domain.LevelClient:
			if !clientFolders[folder] {
				return fmt.Errorf("%s: folder %q is not a valid client-level folder key", what, folder)
			}
		case domain.LevelProject:
			if !projectFolders[folder] {
				return fmt.Errorf("%s: folder %q is not a valid project-level folder key", what, folder)
			}
		default:
			return fmt.Errorf("%s: invalid level %q", what, level)
		}
		return nil
	}

	for i, rule := range rs.Rules {
		what := fmt.Sprintf("rule %d (%s)", i, rule.FileType)
		if len(rule.Keywords) == 0 {
			return fmt.Errorf("%s: at least one keyword is required", what)
		}
		if rule.FileType == "" || rule.Category == "" {
			return fmt.Errorf("%s: file type and category are required", what)
		}
		if err := checkPlacement(what, rule.Folder, rule.Level); err != nil {
			return err
		}
	}

	seen := make(map[string]bool, len(rs.TypeMappings))
	for i, m := range rs.TypeMappings {
		what := fmt.Sprintf("type mapping %d (%s)", i, m.FileType)
		if m.FileType == "" || m.Category == "" {
			return fmt.Errorf("%s: file type and category are required", what)
		}
		key := strings.ToLower(m.FileType)
		if seen[key] {
			return fmt.Errorf("%s: duplicate file type key", what)
		}
		seen[key] = true
		if err := checkPlacement(what, m.Folder, m.Level); err != nil {
			return err
		}
	}

	seenCategories := make(map[string]bool, len(rs.CategoryDefaults))
	for i, cd := range rs.CategoryDefaults {
		what := fmt.Sprintf("category default %d (%s)", i, cd.Category)
		if cd.Category == "" {
			return fmt.Errorf("%s: category is required", what)
		}
		if seenCategories[cd.Category] {
			return fmt.Errorf("%s: duplicate category", what)
		}
		seenCategories[cd.Category] = true
		if err := checkPlacement(what, cd.Folder, cd.Level); err != nil {
			return err
		}
	}

	return nil
}
