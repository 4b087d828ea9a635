package classify

import (
	"strings"
	"sync"

	"github.com/cloo-solutions/intakeiq/internal/domain"
)

// MatchConfidence is the fixed confidence reported for filename rule hits.
const MatchConfidence = 0.85

// Match is the result of a successful filename classification.
type Match struct {
	FileType   string
	Category   string
	Folder     string
	Level      domain.Level
	Confidence float64
}

// Registry holds the live classification tables: the immutable ordered
// pattern rules and type mappings, plus the mutable per-type keyword sets
// that the learning loop appends to. It is shared by reference between the
// matcher, the resolver, and the learning service; keyword mutation is the
// only write path and is guarded by the mutex.
type Registry struct {
	rules            []PatternRule
	mappings         []TypeMapping
	mappingIndex     map[string]int // lowercase file type -> mappings index
	categoryDefaults map[string]domain.Placement

	mu       sync.RWMutex
	keywords map[string][]string // lowercase file type -> keyword set, in order
}

// NewRegistry builds a Registry from a validated rule set.
func NewRegistry(rs *RuleSet) (*Registry, error) {
	if err := rs.Validate(); err != nil {
		return nil, err
	}

	r := &Registry{
		rules:            normalizeRules(rs.Rules),
		mappings:         rs.TypeMappings,
		mappingIndex:     make(map[string]int, len(rs.TypeMappings)),
		categoryDefaults: make(map[string]domain.Placement, len(rs.CategoryDefaults)),
		keywords:         make(map[string][]string, len(rs.TypeMappings)),
	}

	for i, m := range rs.TypeMappings {
		key := strings.ToLower(m.FileType)
		r.mappingIndex[key] = i
		for _, kw := range m.Keywords {
			r.keywords[key] = appendKeyword(r.keywords[key], kw)
		}
	}

	for _, cd := range rs.CategoryDefaults {
		r.categoryDefaults[cd.Category] = domain.Placement{Folder: cd.Folder, Level: cd.Level}
	}

	return r, nil
}

// Match classifies a raw filename against the ordered pattern rules, then
// against the live per-type keyword sets. Returns nil when nothing matches
// so the caller can defer to the content classifier.
//
// Matching is unanchored substring matching on the normalized name; a
// keyword inside a longer word still counts. That mirrors the behavior the
// product depends on today and must not change without a product decision.
func (r *Registry) Match(fileName string) *Match {
	normalized := NormalizeFileName(fileName)
	if normalized == "" {
		return nil
	}

	for _, rule := range r.rules {
		for _, keyword := range rule.Keywords {
			if !strings.Contains(normalized, keyword) {
				continue
			}
			// Exclusions apply per keyword: a later keyword in the same
			// rule can still match even after this one is excluded.
			if containsAny(normalized, rule.ExcludeIf) {
				continue
			}
			return &Match{
				FileType:   rule.FileType,
				Category:   rule.Category,
				Folder:     rule.Folder,
				Level:      rule.Level,
				Confidence: MatchConfidence,
			}
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.mappings {
		for _, keyword := range r.keywords[strings.ToLower(m.FileType)] {
			if strings.Contains(normalized, keyword) {
				return &Match{
					FileType:   m.FileType,
					Category:   m.Category,
					Folder:     m.Folder,
					Level:      m.Level,
					Confidence: MatchConfidence,
				}
			}
		}
	}

	return nil
}

// ResolveFolder maps (fileType, category) to a placement. Resolution order:
// exact case-insensitive type mapping, then the category default, then the
// global miscellaneous/client fallback. Total and deterministic.
func (r *Registry) ResolveFolder(fileType, category string) domain.Placement {
	if idx, ok := r.mappingIndex[strings.ToLower(fileType)]; ok {
		m := r.mappings[idx]
		return domain.Placement{Folder: m.Folder, Level: m.Level}
	}
	return r.ResolveFolderForCategory(category)
}

// ResolveFolderForCategory performs only the category-default and global
// fallback tiers of placement resolution.
func (r *Registry) ResolveFolderForCategory(category string) domain.Placement {
	if category != "" {
		if placement, ok := r.categoryDefaults[category]; ok {
			return placement
		}
	}
	return domain.FallbackPlacement()
}

// MappingFor returns the type mapping for a file type, if one exists.
func (r *Registry) MappingFor(fileType string) (TypeMapping, bool) {
	idx, ok := r.mappingIndex[strings.ToLower(fileType)]
	if !ok {
		return TypeMapping{}, false
	}
	return r.mappings[idx], true
}

// FileTypes returns the canonical file types in declaration order.
func (r *Registry) FileTypes() []string {
	types := make([]string, len(r.mappings))
	for i, m := range r.mappings {
		types[i] = m.FileType
	}
	return types
}

// AddKeyword appends a learned keyword to a file type's live keyword set.
// Returns false when the file type is unknown or the keyword is already
// present. Safe for concurrent use.
func (r *Registry) AddKeyword(fileType, keyword string) bool {
	key := strings.ToLower(fileType)
	if _, ok := r.mappingIndex[key]; !ok {
		return false
	}
	keyword = normalizeKeyword(keyword)
	if keyword == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.keywords[key] {
		if existing == keyword {
			return false
		}
	}
	r.keywords[key] = append(r.keywords[key], keyword)
	return true
}

// RemoveKeyword removes a keyword from a file type's live keyword set,
// reverting a promotion. Returns false when it was not present.
func (r *Registry) RemoveKeyword(fileType, keyword string) bool {
	key := strings.ToLower(fileType)
	keyword = normalizeKeyword(keyword)

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.keywords[key] {
		if existing == keyword {
			r.keywords[key] = append(r.keywords[key][:i], r.keywords[key][i+1:]...)
			return true
		}
	}
	return false
}

// Keywords returns a copy of a file type's live keyword set.
func (r *Registry) Keywords(fileType string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.keywords[strings.ToLower(fileType)]
	out := make([]string, len(set))
	copy(out, set)
	return out
}

// NormalizeFileName lowercases the name and replaces underscore, hyphen and
// dot separators with spaces. Percent-encoded separators such as %20 are
// deliberately not decoded; that is a known, preserved limitation.
func NormalizeFileName(fileName string) string {
	normalized := strings.ToLower(fileName)
	normalized = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(normalized)
	return strings.TrimSpace(normalized)
}

func normalizeRules(rules []PatternRule) []PatternRule {
	out := make([]PatternRule, len(rules))
	for i, rule := range rules {
		out[i] = rule
		out[i].Keywords = normalizeKeywords(rule.Keywords)
		out[i].ExcludeIf = normalizeKeywords(rule.ExcludeIf)
	}
	return out
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if normalized := normalizeKeyword(kw); normalized != "" {
			out = append(out, normalized)
		}
	}
	return out
}

func normalizeKeyword(keyword string) string {
	return strings.TrimSpace(strings.ToLower(keyword))
}

func appendKeyword(set []string, keyword string) []string {
	keyword = normalizeKeyword(keyword)
	if keyword == "" {
		return set
	}
	for _, existing := range set {
		if existing == keyword {
			return set
		}
	}
	return append(set, keyword)
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
