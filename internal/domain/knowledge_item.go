package domain

import (
	"fmt"
	"strings"
	"time"
)

// SourceType identifies where a knowledge fact came from.
type SourceType string

const (
	SourceDocument     SourceType = "document"
	SourceAIExtraction SourceType = "ai_extraction"
	SourceDataLibrary  SourceType = "data_library"
	SourceManual       SourceType = "manual"
	SourceChecklist    SourceType = "checklist"
)

// Source priority ranks used when resolving duplicate facts. Lower rank wins.
// Unknown source types sort after every known one rather than being rejected,
// so a fact with a bad source is still dedupable; it just never wins.
const sourceRankUnknown = 5

func (s SourceType) rank() int {
	switch s {
	case SourceDocument:
		return 0
	case SourceAIExtraction:
		return 1
	case SourceDataLibrary:
		return 2
	case SourceManual:
		return 3
	case SourceChecklist:
		return 4
	}
	return sourceRankUnknown
}

// HigherPriorityThan reports whether facts from s should be preferred over
// facts from other when both sit at the same field path.
func (s SourceType) HigherPriorityThan(other SourceType) bool {
	return s.rank() < other.rank()
}

// IsValidSourceType checks if a SourceType is one of the known sources.
func IsValidSourceType(s SourceType) bool {
	return s.rank() != sourceRankUnknown
}

// KnowledgeItemStatus represents the review status of a knowledge fact.
type KnowledgeItemStatus string

const (
	KnowledgeItemStatusActive   KnowledgeItemStatus = "active"
	KnowledgeItemStatusPending  KnowledgeItemStatus = "pending_review"
	KnowledgeItemStatusArchived KnowledgeItemStatus = "archived"
)

// CustomFieldPrefix marks non-canonical, ad hoc field paths.
const CustomFieldPrefix = "custom."

// KnowledgeItem is one extracted fact about a client or project. The
// consolidation engine reads these; it never mutates them directly.
type KnowledgeItem struct {
	ID                 string
	OrgID              string
	FieldPath          string
	IsCanonical        bool
	Category           string
	Label              string
	Value              Value
	ValueType          ValueKind
	SourceType         SourceType
	SourceDocumentID   string
	SourceDocumentName string
	Status             KnowledgeItemStatus
	AddedAt            time.Time
}

// KnowledgeItemPatch is a partial update to a stored fact. Nil fields are
// left untouched. Reclassifying a custom fact sets FieldPath and IsCanonical.
type KnowledgeItemPatch struct {
	FieldPath   *string
	IsCanonical *bool
	Status      *KnowledgeItemStatus
	Value       *Value
}

// IsCustomField reports whether the item lives under the custom.* namespace.
func (k *KnowledgeItem) IsCustomField() bool {
	return strings.HasPrefix(k.FieldPath, CustomFieldPrefix)
}

// ValidateKnowledgeItem validates a KnowledgeItem instance
func ValidateKnowledgeItem(k *KnowledgeItem) error {
	if k == nil {
		return fmt.Errorf("knowledge item cannot be nil")
	}

	if k.ID == "" {
		return fmt.Errorf("knowledge item ID is required")
	}

	if k.OrgID == "" {
		return fmt.Errorf("knowledge item OrgID is required")
	}

	if k.FieldPath == "" {
		return fmt.Errorf("knowledge item FieldPath is required")
	}

	if !IsValidSourceType(k.SourceType) {
		return fmt.Errorf("knowledge item SourceType is invalid: %s", k.SourceType)
	}

	if !isValidKnowledgeItemStatus(k.Status) {
		return fmt.Errorf("knowledge item Status is invalid: %s", k.Status)
	}

	return nil
}

func isValidKnowledgeItemStatus(s KnowledgeItemStatus) bool {
	switch s {
	case KnowledgeItemStatusActive, KnowledgeItemStatusPending, KnowledgeItemStatusArchived:
		return true
	}
	return false
}
