package domain

import (
	"fmt"
	"time"
)

// DocumentStatus tracks a document through upload and classification.
type DocumentStatus string

const (
	// DocumentStatusPendingUpload means the upload URL was issued but the
	// payload has not been confirmed in storage yet.
	DocumentStatusPendingUpload DocumentStatus = "pending_upload"
	// DocumentStatusPendingClassification means the filename rules missed and
	// the content classifier was unavailable; the background worker retries.
	DocumentStatusPendingClassification DocumentStatus = "pending_classification"
	// DocumentStatusClassified means the document has a file type and folder.
	DocumentStatusClassified DocumentStatus = "classified"
	// DocumentStatusNeedsReview means every classification tier missed and a
	// human has to file the document manually.
	DocumentStatusNeedsReview DocumentStatus = "needs_review"
)

// ClassifierSource records which tier produced a document's classification.
type ClassifierSource string

const (
	ClassifiedByPattern ClassifierSource = "pattern"
	ClassifiedByContent ClassifierSource = "content"
	ClassifiedByManual  ClassifierSource = "manual"
)

// Classification is the outcome attached to a document once any tier hits.
type Classification struct {
	FileType   string
	Category   string
	Folder     string
	Level      Level
	Confidence float64
	Source     ClassifierSource
}

// Document represents an uploaded file moving through the intake pipeline.
type Document struct {
	ID           string
	OrgID        string
	ClientID     string
	ProjectID    string
	FileName     string
	ContentType  string
	SizeBytes    int64
	StorageKey   string
	Status       DocumentStatus
	FileType     string
	Category     string
	Folder       string
	Level        Level
	Confidence   float64
	ClassifiedBy ClassifierSource
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ApplyClassification stamps a classification outcome onto the document.
func (d *Document) ApplyClassification(c Classification, now time.Time) {
	d.FileType = c.FileType
	d.Category = c.Category
	d.Folder = c.Folder
	d.Level = c.Level
	d.Confidence = c.Confidence
	d.ClassifiedBy = c.Source
	d.Status = DocumentStatusClassified
	d.UpdatedAt = now
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}

	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	if d.OrgID == "" {
		return fmt.Errorf("document OrgID is required")
	}

	if d.ClientID == "" {
		return fmt.Errorf("document ClientID is required")
	}

	if d.FileName == "" {
		return fmt.Errorf("document FileName is required")
	}

	if !isValidDocumentStatus(d.Status) {
		return fmt.Errorf("document Status is invalid: %s", d.Status)
	}

	return nil
}

func isValidDocumentStatus(s DocumentStatus) bool {
	switch s {
	case DocumentStatusPendingUpload, DocumentStatusPendingClassification,
		DocumentStatusClassified, DocumentStatusNeedsReview:
		return true
	}
	return false
}
