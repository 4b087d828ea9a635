package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cloo-solutions/intakeiq/internal/classify"
	"github.com/cloo-solutions/intakeiq/internal/domain"
	"github.com/cloo-solutions/intakeiq/internal/telemetry"
)

// LearningService runs the correction loop: manual reclassifications feed
// per-(keyword, fileType) counters, counters hitting the promotion threshold
// turn into live keywords, and reviewers can undo or dismiss what was learned.
type LearningService struct {
	learningRepo LearningRepositoryInterface
	registry     *classify.Registry
	uuidGen      UUIDGenerator
	now          func() time.Time
}

func NewLearningService(learningRepo LearningRepositoryInterface, registry *classify.Registry, uuidGen UUIDGenerator) *LearningService {
	return &LearningService{
		learningRepo: learningRepo,
		registry:     registry,
		uuidGen:      uuidGen,
		now:          time.Now,
	}
}

// RecordCorrection processes one manual reclassification. Every candidate
// keyword extracted from the filename gets its counter bumped toward
// correctedFileType; counters that land exactly on the threshold promote.
// Returns the learning events created by this correction, usually none.
func (s *LearningService) RecordCorrection(ctx context.Context, fileName, correctedFileType string) ([]*domain.LearningEvent, error) {
	ctx, span := telemetry.StartSpan(ctx, "LearningService.RecordCorrection", telemetry.SpanAttributes{
		FileType:  correctedFileType,
		Operation: "record_correction",
	})
	defer span.End()

	if _, ok := s.registry.MappingFor(correctedFileType); !ok {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, fmt.Sprintf("unknown file type: %s", correctedFileType))
	}

	var promoted []*domain.LearningEvent
	for _, keyword := range classify.ExtractCandidateKeywords(fileName) {
		count, err := s.learningRepo.IncrementCorrection(ctx, keyword, correctedFileType)
		if err != nil {
			span.SetError(err)
			return nil, fmt.Errorf("incrementing correction for %q: %w", keyword, err)
		}
		if count != domain.PromotionThreshold {
			continue
		}

		event, err := s.promote(ctx, keyword, correctedFileType, count)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		if event != nil {
			promoted = append(promoted, event)
		}
	}
	return promoted, nil
}

// promote turns a counter that just reached the threshold into a live keyword
// and an active learning event. Pairs that already have a non-undone event are
// skipped so a keyword cannot be promoted twice.
func (s *LearningService) promote(ctx context.Context, keyword, fileType string, count int) (*domain.LearningEvent, error) {
	exists, err := s.learningRepo.HasEvent(ctx, keyword, fileType)
	if err != nil {
		return nil, fmt.Errorf("checking existing event: %w", err)
	}
	if exists {
		return nil, nil
	}

	event := domain.NewLearningEvent(s.uuidGen.NewString(), keyword, fileType, count, s.now().UTC())
	if err := s.learningRepo.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("creating learning event: %w", err)
	}

	if !s.registry.AddKeyword(fileType, keyword) {
		// Already present in the shipped rules or added by a racing
		// correction; the event still records the promotion.
		log.Printf("learning: keyword %q already live for %q", keyword, fileType)
	}
	log.Printf("learning: promoted keyword %q -> %q after %d corrections", keyword, fileType, count)
	return event, nil
}

// Undo reverts a promotion: the event is marked undone and the keyword leaves
// the live rules. Undoing an already-undone event fails with a precondition
// error.
func (s *LearningService) Undo(ctx context.Context, eventID string) (*domain.LearningEvent, error) {
	ctx, span := telemetry.StartSpan(ctx, "LearningService.Undo", telemetry.SpanAttributes{
		Operation: "undo_learning",
	})
	defer span.End()

	event, err := s.learningRepo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.State == domain.LearningEventUndone {
		return nil, domain.ErrEventAlreadyUndone
	}

	err = s.learningRepo.UpdateEventState(ctx, eventID,
		[]domain.LearningEventState{domain.LearningEventActive, domain.LearningEventDismissed},
		domain.LearningEventUndone,
	)
	if err != nil {
		// A concurrent undo won the state transition.
		if errors.Is(err, domain.ErrLearningEventNotFound) {
			return nil, domain.ErrEventAlreadyUndone
		}
		span.SetError(err)
		return nil, err
	}

	s.registry.RemoveKeyword(event.TargetFileType, event.Keyword)
	event.State = domain.LearningEventUndone
	event.UpdatedAt = s.now().UTC()
	log.Printf("learning: undid keyword %q for %q", event.Keyword, event.TargetFileType)
	return event, nil
}

// Dismiss hides an event from the review surface without touching the live
// keyword. Dismissing an already-dismissed event succeeds; dismissing an
// undone one is a precondition failure.
func (s *LearningService) Dismiss(ctx context.Context, eventID string) (*domain.LearningEvent, error) {
	event, err := s.learningRepo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	switch event.State {
	case domain.LearningEventDismissed:
		return event, nil
	case domain.LearningEventUndone:
		return nil, domain.ErrEventAlreadyUndone
	}

	err = s.learningRepo.UpdateEventState(ctx, eventID,
		[]domain.LearningEventState{domain.LearningEventActive},
		domain.LearningEventDismissed,
	)
	if err != nil {
		if errors.Is(err, domain.ErrLearningEventNotFound) {
			// Re-read: a concurrent call may have dismissed or undone it.
			current, getErr := s.learningRepo.GetEvent(ctx, eventID)
			if getErr != nil {
				return nil, getErr
			}
			if current.State == domain.LearningEventDismissed {
				return current, nil
			}
			return nil, domain.ErrEventAlreadyUndone
		}
		return nil, err
	}

	event.State = domain.LearningEventDismissed
	event.UpdatedAt = s.now().UTC()
	return event, nil
}

// DismissAll dismisses every active event, returning how many changed.
func (s *LearningService) DismissAll(ctx context.Context) (int64, error) {
	return s.learningRepo.DismissAll(ctx)
}

// ListEvents returns learning events for review, newest first.
func (s *LearningService) ListEvents(ctx context.Context, includeDismissed bool) ([]*domain.LearningEvent, error) {
	return s.learningRepo.ListEvents(ctx, includeDismissed)
}

// Stats aggregates the learning history.
func (s *LearningService) Stats(ctx context.Context) (*domain.LearningStats, error) {
	return s.learningRepo.Stats(ctx, s.now().UTC())
}

// Rehydrate reapplies every non-undone learned keyword to the registry. Called
// once at startup, before the server accepts traffic.
func (s *LearningService) Rehydrate(ctx context.Context) (int, error) {
	events, err := s.learningRepo.ListActiveKeywords(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading learned keywords: %w", err)
	}

	applied := 0
	for _, e := range events {
		if s.registry.AddKeyword(e.TargetFileType, e.Keyword) {
			applied++
		} else {
			log.Printf("learning: skipped rehydrating %q for %q", e.Keyword, e.TargetFileType)
		}
	}
	if applied > 0 {
		log.Printf("learning: rehydrated %d learned keywords", applied)
	}
	return applied, nil
}
