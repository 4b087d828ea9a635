// Package consolidate detects duplicate and conflicting knowledge facts in a
// snapshot of the knowledge bank. Everything here is a pure read-only query;
// recommendations are applied by the caller, never by this package.
package consolidate

import (
	"fmt"
	"sort"

	"github.com/cloo-solutions/intakeiq/internal/domain"
)

// DuplicateRecommendation proposes which fact to keep for a colliding field
// path and which to remove.
type DuplicateRecommendation struct {
	FieldPath string
	KeepID    string
	RemoveIDs []string
	Reason    string
}

// ConflictDetection flags a field path recorded with more than one distinct
// value. Conflicts are always surfaced for human decision, never resolved
// automatically.
type ConflictDetection struct {
	FieldPath   string
	ItemIDs     []string
	Values      []domain.Value
	Description string
}

// DetectDuplicates groups facts by field path and, for every collision,
// recommends keeping the fact from the highest-priority source (most recent
// wins within a source). Collision alone triggers a recommendation; whether
// the colliding values agree is DetectConflicts' concern.
func DetectDuplicates(items []domain.KnowledgeItem) []DuplicateRecommendation {
	groups, order := groupByFieldPath(items)

	var recommendations []DuplicateRecommendation
	for _, fieldPath := range order {
		group := groups[fieldPath]
		if len(group) < 2 {
			continue
		}

		sorted := make([]domain.KnowledgeItem, len(group))
		copy(sorted, group)
		sort.SliceStable(sorted, func(i, j int) bool {
			a, b := sorted[i], sorted[j]
			if a.SourceType != b.SourceType {
				return a.SourceType.HigherPriorityThan(b.SourceType)
			}
			return a.AddedAt.After(b.AddedAt)
		})

		keep := sorted[0]
		removeIDs := make([]string, 0, len(sorted)-1)
		for _, item := range sorted[1:] {
			removeIDs = append(removeIDs, item.ID)
		}

		recommendations = append(recommendations, DuplicateRecommendation{
			FieldPath: fieldPath,
			KeepID:    keep.ID,
			RemoveIDs: removeIDs,
			Reason: fmt.Sprintf("%d facts recorded at %s; keeping the %s-sourced fact",
				len(sorted), fieldPath, keep.SourceType),
		})
	}

	return recommendations
}

// DetectConflicts groups facts by field path and flags any group holding more
// than one structurally distinct value. A null against a non-null value is a
// conflict, not missing data.
func DetectConflicts(items []domain.KnowledgeItem) []ConflictDetection {
	groups, order := groupByFieldPath(items)

	var conflicts []ConflictDetection
	for _, fieldPath := range order {
		group := groups[fieldPath]
		if len(group) < 2 {
			continue
		}

		var distinct []domain.Value
		for _, item := range group {
			found := false
			for _, v := range distinct {
				if v.Equal(item.Value) {
					found = true
					break
				}
			}
			if !found {
				distinct = append(distinct, item.Value)
			}
		}

		if len(distinct) < 2 {
			continue
		}

		itemIDs := make([]string, len(group))
		for i, item := range group {
			itemIDs[i] = item.ID
		}

		conflicts = append(conflicts, ConflictDetection{
			FieldPath: fieldPath,
			ItemIDs:   itemIDs,
			Values:    distinct,
			Description: fmt.Sprintf("%d distinct values recorded at %s across %d facts",
				len(distinct), fieldPath, len(group)),
		})
	}

	return conflicts
}

// CustomItemsForReclassification returns facts that are both flagged
// non-canonical and parked under the custom.* namespace. Facts failing
// either condition stay out: a non-canonical flag on a canonical-looking
// path is a data problem, not a reclassification candidate.
func CustomItemsForReclassification(items []domain.KnowledgeItem) []domain.KnowledgeItem {
	var out []domain.KnowledgeItem
	for _, item := range items {
		if !item.IsCanonical && item.IsCustomField() {
			out = append(out, item)
		}
	}
	return out
}

// groupByFieldPath buckets items by field path, remembering first-appearance
// order so output is deterministic for a given input ordering.
func groupByFieldPath(items []domain.KnowledgeItem) (map[string][]domain.KnowledgeItem, []string) {
	groups := make(map[string][]domain.KnowledgeItem)
	var order []string
	for _, item := range items {
		if _, ok := groups[item.FieldPath]; !ok {
			order = append(order, item.FieldPath)
		}
		groups[item.FieldPath] = append(groups[item.FieldPath], item)
	}
	return groups, order
}
