package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cloo-solutions/intakeiq/internal/domain"
	"github.com/cloo-solutions/intakeiq/internal/pagination"
	"github.com/cloo-solutions/intakeiq/internal/telemetry"
)

// StorageClientInterface is the presigned-URL storage surface the document
// service needs. Implemented by storage.S3Client.
type StorageClientInterface interface {
	GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error)
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
	DeleteObject(ctx context.Context, key string) error
	HeadObject(ctx context.Context, key string) (*ObjectMetadata, error)
}

// ObjectMetadata describes an object already in storage.
type ObjectMetadata struct {
	ContentLength int64
	ContentType   string
	ETag          string
}

// DocumentService owns the intake pipeline: presigned uploads, classification
// on completion, and manual reclassification feeding the learning loop.
type DocumentService struct {
	documentRepo DocumentRepositoryInterface
	storage      StorageClientInterface
	classifier   *ClassificationService
	learning     *LearningService
	uuidGen      UUIDGenerator
	now          func() time.Time
}

func NewDocumentService(
	documentRepo DocumentRepositoryInterface,
	storage StorageClientInterface,
	classifier *ClassificationService,
	learning *LearningService,
) *DocumentService {
	return &DocumentService{
		documentRepo: documentRepo,
		storage:      storage,
		classifier:   classifier,
		learning:     learning,
		uuidGen:      &DefaultUUIDGenerator{},
		now:          time.Now,
	}
}

func NewDocumentServiceWithUUIDGen(
	documentRepo DocumentRepositoryInterface,
	storage StorageClientInterface,
	classifier *ClassificationService,
	learning *LearningService,
	uuidGen UUIDGenerator,
) *DocumentService {
	s := NewDocumentService(documentRepo, storage, classifier, learning)
	s.uuidGen = uuidGen
	return s
}

type InitUploadInput struct {
	OrgID       string
	ClientID    string
	ProjectID   string
	FileName    string
	ContentType string
}

type InitUploadResult struct {
	DocumentID string
	StorageKey string
	UploadURL  string
}

// InitUpload issues a presigned upload URL and records the document in
// pending_upload. Classification waits until the upload is confirmed.
func (s *DocumentService) InitUpload(ctx context.Context, input InitUploadInput) (*InitUploadResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.InitUpload", telemetry.SpanAttributes{
		OrgID:     input.OrgID,
		Operation: "init_upload",
	})
	defer span.End()

	if input.FileName == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "file name is required")
	}
	if input.ClientID == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "client ID is required")
	}

	documentID := s.uuidGen.NewString()
	storageKey := buildStorageKey(input.OrgID, documentID, input.FileName)

	uploadURL, err := s.storage.GenerateUploadURL(ctx, storageKey, input.ContentType)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}

	now := s.now().UTC()
	doc := &domain.Document{
		ID:          documentID,
		OrgID:       input.OrgID,
		ClientID:    input.ClientID,
		ProjectID:   input.ProjectID,
		FileName:    input.FileName,
		ContentType: input.ContentType,
		StorageKey:  storageKey,
		Status:      domain.DocumentStatusPendingUpload,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := domain.ValidateDocument(doc); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid document", err)
	}
	if err := s.documentRepo.Create(ctx, doc); err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}

	return &InitUploadResult{
		DocumentID: documentID,
		StorageKey: storageKey,
		UploadURL:  uploadURL,
	}, nil
}

// CompleteUpload verifies the payload landed in storage and runs the
// classification pipeline. A miss with the content classifier available
// parks the document in needs_review; a miss without it parks the document in
// pending_classification for the background worker to retry.
func (s *DocumentService) CompleteUpload(ctx context.Context, documentID string) (*domain.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.CompleteUpload", telemetry.SpanAttributes{
		DocumentID: documentID,
		Operation:  "complete_upload",
	})
	defer span.End()

	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status != domain.DocumentStatusPendingUpload {
		return nil, domain.NewDomainError(domain.ErrCodePreconditionFailed,
			fmt.Sprintf("document is %s, expected %s", doc.Status, domain.DocumentStatusPendingUpload))
	}

	meta, err := s.storage.HeadObject(ctx, doc.StorageKey)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to verify uploaded file: %w", err)
	}
	doc.SizeBytes = meta.ContentLength
	if doc.ContentType == "" {
		doc.ContentType = meta.ContentType
	}

	return s.classifyAndStore(ctx, doc)
}

// ClassifyPending re-runs the pipeline for a document the worker picked up.
func (s *DocumentService) ClassifyPending(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	return s.classifyAndStore(ctx, doc)
}

func (s *DocumentService) classifyAndStore(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	result, err := s.classifier.Classify(ctx, doc.FileName)
	if err != nil {
		// Content classifier failure: keep the document retryable.
		doc.Status = domain.DocumentStatusPendingClassification
		doc.UpdatedAt = s.now().UTC()
		if updateErr := s.documentRepo.UpdateClassification(ctx, doc); updateErr != nil {
			return nil, updateErr
		}
		return doc, nil
	}

	switch {
	case result.Matched:
		doc.ApplyClassification(result.Classification, s.now().UTC())
	case s.classifier.HasContentClassifier():
		// Both tiers ran and missed; only a human can file this one.
		doc.Status = domain.DocumentStatusNeedsReview
		doc.UpdatedAt = s.now().UTC()
	default:
		doc.Status = domain.DocumentStatusPendingClassification
		doc.UpdatedAt = s.now().UTC()
	}
	if err := s.documentRepo.UpdateClassification(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

type ReclassifyInput struct {
	DocumentID string
	FileType   string
	Category   string
}

// Reclassify applies a human's classification to a document and feeds the
// correction into the learning loop. The learning side is best-effort: a
// failed counter update never loses the reclassification itself.
func (s *DocumentService) Reclassify(ctx context.Context, input ReclassifyInput) (*domain.Document, []*domain.LearningEvent, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Reclassify", telemetry.SpanAttributes{
		DocumentID: input.DocumentID,
		FileType:   input.FileType,
		Operation:  "reclassify",
	})
	defer span.End()

	if input.FileType == "" {
		return nil, nil, domain.NewDomainError(domain.ErrCodeValidation, "file type is required")
	}

	doc, err := s.documentRepo.GetByID(ctx, input.DocumentID)
	if err != nil {
		return nil, nil, err
	}

	previousFileType := doc.FileType
	classification := s.classifier.ManualClassification(input.FileType, input.Category)
	doc.ApplyClassification(classification, s.now().UTC())
	if err := s.documentRepo.UpdateClassification(ctx, doc); err != nil {
		span.SetError(err)
		return nil, nil, err
	}

	// Corrections only count when the human actually changed the answer.
	var promoted []*domain.LearningEvent
	if previousFileType != classification.FileType {
		promoted, err = s.learning.RecordCorrection(ctx, doc.FileName, classification.FileType)
		if err != nil {
			telemetry.CaptureError(ctx, err)
			promoted = nil
		}
	}
	return doc, promoted, nil
}

func (s *DocumentService) GetByID(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.documentRepo.GetByID(ctx, documentID)
}

func (s *DocumentService) List(ctx context.Context, orgID string, cursor *pagination.Cursor, limit int) (*DocumentPageResult, error) {
	return s.documentRepo.ListByOrgWithCursor(ctx, orgID, cursor, limit)
}

func (s *DocumentService) GetDownloadURL(ctx context.Context, documentID string) (string, error) {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return "", err
	}
	url, err := s.storage.GenerateDownloadURL(ctx, doc.StorageKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate download URL: %w", err)
	}
	return url, nil
}

func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteObject(ctx, doc.StorageKey); err != nil {
		return fmt.Errorf("failed to delete from storage: %w", err)
	}
	return s.documentRepo.Delete(ctx, documentID)
}

func buildStorageKey(orgID, documentID, fileName string) string {
	return fmt.Sprintf("%s/%s/%s", orgID, documentID, fileName)
}
