package domain

import (
	"fmt"
	"time"
)

// PromotionThreshold is the number of independent human corrections that must
// agree on a (keyword, fileType) pair before the keyword joins the live rules.
const PromotionThreshold = 3

// LearningEventState represents the lifecycle state of a learned keyword.
type LearningEventState string

const (
	// LearningEventActive means the keyword was promoted and is matching.
	LearningEventActive LearningEventState = "active"
	// LearningEventDismissed hides the event from review; the keyword stays live.
	LearningEventDismissed LearningEventState = "dismissed"
	// LearningEventUndone means the promotion was reverted and the keyword removed.
	LearningEventUndone LearningEventState = "undone"
)

// LearningEvent records one promoted keyword and the corrections behind it.
type LearningEvent struct {
	ID              string
	Keyword         string
	TargetFileType  string
	CorrectionCount int
	State           LearningEventState
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewLearningEvent creates a LearningEvent in the active state.
func NewLearningEvent(id, keyword, targetFileType string, correctionCount int, createdAt time.Time) *LearningEvent {
	return &LearningEvent{
		ID:              id,
		Keyword:         keyword,
		TargetFileType:  targetFileType,
		CorrectionCount: correctionCount,
		State:           LearningEventActive,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}

// LearningStats aggregates the learning history for the review surface.
type LearningStats struct {
	TotalLearned          int
	ThisWeek              int
	ThisMonth             int
	FileTypesWithLearning int
}

// KeywordCorrection is the per-(keyword, fileType) correction counter that
// feeds promotion. It exists only until the pair is promoted or abandoned.
type KeywordCorrection struct {
	Keyword         string
	TargetFileType  string
	CorrectionCount int
	UpdatedAt       time.Time
}

// ValidateLearningEvent validates a LearningEvent instance
func ValidateLearningEvent(e *LearningEvent) error {
	if e == nil {
		return fmt.Errorf("learning event cannot be nil")
	}

	if e.ID == "" {
		return fmt.Errorf("learning event ID is required")
	}

	if e.Keyword == "" {
		return fmt.Errorf("learning event Keyword is required")
	}

	if e.TargetFileType == "" {
		return fmt.Errorf("learning event TargetFileType is required")
	}

	if e.CorrectionCount < PromotionThreshold {
		return fmt.Errorf("learning event CorrectionCount must be at least %d", PromotionThreshold)
	}

	if !isValidLearningEventState(e.State) {
		return fmt.Errorf("learning event State is invalid: %s", e.State)
	}

	return nil
}

func isValidLearningEventState(s LearningEventState) bool {
	switch s {
	case LearningEventActive, LearningEventDismissed, LearningEventUndone:
		return true
	}
	return false
}
