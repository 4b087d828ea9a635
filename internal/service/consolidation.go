package service

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/intakeiq/internal/consolidate"
	"github.com/cloo-solutions/intakeiq/internal/domain"
	"github.com/cloo-solutions/intakeiq/internal/telemetry"
)

// ConsolidationReview is the full review payload for one organization.
type ConsolidationReview struct {
	Duplicates  []consolidate.DuplicateRecommendation
	Conflicts   []consolidate.ConflictDetection
	CustomItems []domain.KnowledgeItem
}

// ApplyResult reports what an apply pass changed.
type ApplyResult struct {
	RecommendationsApplied int
	ItemsRemoved           int64
}

// ConsolidationService surfaces duplicate, conflict, and reclassification
// recommendations over an organization's knowledge items, and applies accepted
// duplicate removals transactionally.
type ConsolidationService struct {
	knowledgeRepo KnowledgeItemRepositoryInterface
	txRunner      TxRunner
}

func NewConsolidationService(knowledgeRepo KnowledgeItemRepositoryInterface, txRunner TxRunner) *ConsolidationService {
	return &ConsolidationService{
		knowledgeRepo: knowledgeRepo,
		txRunner:      txRunner,
	}
}

// Review computes the consolidation view without changing anything.
func (s *ConsolidationService) Review(ctx context.Context, orgID string) (*ConsolidationReview, error) {
	ctx, span := telemetry.StartSpan(ctx, "ConsolidationService.Review", telemetry.SpanAttributes{
		OrgID:     orgID,
		Operation: "consolidation_review",
	})
	defer span.End()

	items, err := s.knowledgeRepo.ListByOrg(ctx, orgID)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("listing knowledge items: %w", err)
	}

	return &ConsolidationReview{
		Duplicates:  consolidate.DetectDuplicates(items),
		Conflicts:   consolidate.DetectConflicts(items),
		CustomItems: consolidate.CustomItemsForReclassification(items),
	}, nil
}

// Duplicates computes only the duplicate recommendations.
func (s *ConsolidationService) Duplicates(ctx context.Context, orgID string) ([]consolidate.DuplicateRecommendation, error) {
	items, err := s.knowledgeRepo.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("listing knowledge items: %w", err)
	}
	return consolidate.DetectDuplicates(items), nil
}

// Conflicts computes only the conflict detections.
func (s *ConsolidationService) Conflicts(ctx context.Context, orgID string) ([]consolidate.ConflictDetection, error) {
	items, err := s.knowledgeRepo.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("listing knowledge items: %w", err)
	}
	return consolidate.DetectConflicts(items), nil
}

// ApplyDuplicates recomputes the duplicate recommendations inside a
// transaction and removes the losers, so items changed between review and
// apply are re-evaluated rather than deleted on stale advice. When fieldPaths
// is non-empty only recommendations for those paths are applied.
func (s *ConsolidationService) ApplyDuplicates(ctx context.Context, orgID string, fieldPaths []string) (*ApplyResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "ConsolidationService.ApplyDuplicates", telemetry.SpanAttributes{
		OrgID:     orgID,
		Operation: "consolidation_apply",
	})
	defer span.End()

	selected := make(map[string]bool, len(fieldPaths))
	for _, p := range fieldPaths {
		selected[p] = true
	}

	var result ApplyResult
	err := s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		items, err := repos.KnowledgeItems().ListByOrg(ctx, orgID)
		if err != nil {
			return fmt.Errorf("listing knowledge items: %w", err)
		}

		var removeIDs []string
		for _, rec := range consolidate.DetectDuplicates(items) {
			if len(selected) > 0 && !selected[rec.FieldPath] {
				continue
			}
			removeIDs = append(removeIDs, rec.RemoveIDs...)
			result.RecommendationsApplied++
		}
		if len(removeIDs) == 0 {
			return nil
		}

		removed, err := repos.KnowledgeItems().DeleteMany(ctx, removeIDs)
		if err != nil {
			return fmt.Errorf("removing duplicates: %w", err)
		}
		result.ItemsRemoved = removed
		return nil
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return &result, nil
}
