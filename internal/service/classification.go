package service

import (
	"context"

	"github.com/cloo-solutions/intakeiq/internal/classify"
	"github.com/cloo-solutions/intakeiq/internal/domain"
	"github.com/cloo-solutions/intakeiq/internal/telemetry"
)

// ContentGuess is what the external content classifier returns when the
// filename rules miss.
type ContentGuess struct {
	FileType   string
	Category   string
	Confidence float64
}

// ContentClassifier is the LLM-backed collaborator consulted after the
// filename rules. It is optional; the pipeline degrades without it.
type ContentClassifier interface {
	ClassifyContent(ctx context.Context, fileName string) (*ContentGuess, error)
}

// ClassificationResult reports a classification and which tier produced it.
type ClassificationResult struct {
	Matched        bool
	Classification domain.Classification
}

// ClassificationService runs the tiered classification pipeline: filename
// pattern rules first, the content classifier second, and placement
// resolution over whichever tier hit.
type ClassificationService struct {
	registry          *classify.Registry
	contentClassifier ContentClassifier
}

func NewClassificationService(registry *classify.Registry, contentClassifier ContentClassifier) *ClassificationService {
	return &ClassificationService{
		registry:          registry,
		contentClassifier: contentClassifier,
	}
}

// MatchFileName runs only the deterministic filename tier. Used by the
// dry-run endpoint and the one-off CLI command.
func (s *ClassificationService) MatchFileName(fileName string) *classify.Match {
	return s.registry.Match(fileName)
}

// ResolvePlacement exposes the resolver for callers holding an externally
// supplied (fileType, category) pair.
func (s *ClassificationService) ResolvePlacement(fileType, category string) domain.Placement {
	return s.registry.ResolveFolder(fileType, category)
}

// HasContentClassifier reports whether the content tier is configured.
func (s *ClassificationService) HasContentClassifier() bool {
	return s.contentClassifier != nil
}

// Classify runs the full pipeline over a filename. Matched is false when
// every tier missed; the document then needs human review.
func (s *ClassificationService) Classify(ctx context.Context, fileName string) (*ClassificationResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "ClassificationService.Classify", telemetry.SpanAttributes{
		Operation: "classify",
	})
	defer span.End()

	if match := s.registry.Match(fileName); match != nil {
		placement := s.registry.ResolveFolder(match.FileType, match.Category)
		return &ClassificationResult{
			Matched: true,
			Classification: domain.Classification{
				FileType:   match.FileType,
				Category:   match.Category,
				Folder:     placement.Folder,
				Level:      placement.Level,
				Confidence: match.Confidence,
				Source:     domain.ClassifiedByPattern,
			},
		}, nil
	}

	if s.contentClassifier == nil {
		return &ClassificationResult{Matched: false}, nil
	}

	guess, err := s.contentClassifier.ClassifyContent(ctx, fileName)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if guess == nil || guess.FileType == "" {
		return &ClassificationResult{Matched: false}, nil
	}

	placement := s.registry.ResolveFolder(guess.FileType, guess.Category)
	return &ClassificationResult{
		Matched: true,
		Classification: domain.Classification{
			FileType:   guess.FileType,
			Category:   guess.Category,
			Folder:     placement.Folder,
			Level:      placement.Level,
			Confidence: guess.Confidence,
			Source:     domain.ClassifiedByContent,
		},
	}, nil
}

// ManualClassification builds the classification recorded when a human files
// a document by hand. Placement still goes through the resolver so manual
// choices land in valid folders.
func (s *ClassificationService) ManualClassification(fileType, category string) domain.Classification {
	if category == "" {
		if mapping, ok := s.registry.MappingFor(fileType); ok {
			category = mapping.Category
		}
	}
	placement := s.registry.ResolveFolder(fileType, category)
	return domain.Classification{
		FileType:   fileType,
		Category:   category,
		Folder:     placement.Folder,
		Level:      placement.Level,
		Confidence: 1.0,
		Source:     domain.ClassifiedByManual,
	}
}

// KnownFileTypes lists the canonical file types, for the content
// classifier's prompt and the review UI's pickers.
func (s *ClassificationService) KnownFileTypes() []string {
	return s.registry.FileTypes()
}
