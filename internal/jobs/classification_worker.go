package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/cloo-solutions/intakeiq/internal/domain"
)

const (
	// DefaultBatchSize is how many pending documents one poll picks up
	DefaultBatchSize = 25
)

// DocumentSource provides the documents awaiting classification
type DocumentSource interface {
	ListByStatus(ctx context.Context, status domain.DocumentStatus, limit int) ([]*domain.Document, error)
}

// DocumentClassifier retries classification for a parked document
type DocumentClassifier interface {
	ClassifyPending(ctx context.Context, doc *domain.Document) (*domain.Document, error)
}

// ClassificationWorker drains documents parked in pending_classification,
// typically because the content classifier was unavailable at upload time.
type ClassificationWorker struct {
	documents  DocumentSource
	classifier DocumentClassifier
	batchSize  int
}

// NewClassificationWorker creates a new ClassificationWorker instance
func NewClassificationWorker(documents DocumentSource, classifier DocumentClassifier) *ClassificationWorker {
	return &ClassificationWorker{
		documents:  documents,
		classifier: classifier,
		batchSize:  DefaultBatchSize,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *ClassificationWorker) ProcessJobs(ctx context.Context) error {
	docs, err := w.documents.ListByStatus(ctx, domain.DocumentStatusPendingClassification, w.batchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch pending documents: %w", err)
	}

	if len(docs) == 0 {
		return nil
	}

	log.Printf("Classifying %d pending documents", len(docs))

	for _, doc := range docs {
		updated, err := w.classifier.ClassifyPending(ctx, doc)
		if err != nil {
			log.Printf("Error classifying document %s: %v", doc.ID, err)
			continue
		}
		if updated.Status == domain.DocumentStatusClassified {
			log.Printf("Document %s classified as %q", updated.ID, updated.FileType)
		}
	}

	return nil
}
