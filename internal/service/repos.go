package service

import (
	"context"
	"time"

	"github.com/cloo-solutions/intakeiq/internal/domain"
	"github.com/cloo-solutions/intakeiq/internal/pagination"
)

// DocumentPageResult is a cursor-paginated page of documents.
type DocumentPageResult struct {
	Items      []*domain.Document
	NextCursor string
	HasMore    bool
}

// DocumentRepositoryInterface defines the document persistence operations the
// services need. The concrete implementation lives in the repository package.
type DocumentRepositoryInterface interface {
	Create(ctx context.Context, d *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateClassification(ctx context.Context, d *domain.Document) error
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error
	ListByStatus(ctx context.Context, status domain.DocumentStatus, limit int) ([]*domain.Document, error)
	ListByOrgWithCursor(ctx context.Context, orgID string, cursor *pagination.Cursor, limit int) (*DocumentPageResult, error)
	Delete(ctx context.Context, id string) error
}

// KnowledgeItemRepositoryInterface defines knowledge item persistence.
type KnowledgeItemRepositoryInterface interface {
	Create(ctx context.Context, k *domain.KnowledgeItem) error
	GetByID(ctx context.Context, id string) (*domain.KnowledgeItem, error)
	ListByOrg(ctx context.Context, orgID string) ([]domain.KnowledgeItem, error)
	ListByFieldPath(ctx context.Context, orgID, fieldPath string) ([]domain.KnowledgeItem, error)
	Patch(ctx context.Context, id string, patch domain.KnowledgeItemPatch) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}

// LearningRepositoryInterface defines correction counter and learning event
// persistence.
type LearningRepositoryInterface interface {
	IncrementCorrection(ctx context.Context, keyword, targetFileType string) (int, error)
	CreateEvent(ctx context.Context, e *domain.LearningEvent) error
	GetEvent(ctx context.Context, id string) (*domain.LearningEvent, error)
	HasEvent(ctx context.Context, keyword, targetFileType string) (bool, error)
	ListEvents(ctx context.Context, includeDismissed bool) ([]*domain.LearningEvent, error)
	ListActiveKeywords(ctx context.Context) ([]*domain.LearningEvent, error)
	UpdateEventState(ctx context.Context, id string, from []domain.LearningEventState, to domain.LearningEventState) error
	DismissAll(ctx context.Context) (int64, error)
	Stats(ctx context.Context, now time.Time) (*domain.LearningStats, error)
}

// ClientRepositoryInterface defines client persistence.
type ClientRepositoryInterface interface {
	Create(ctx context.Context, c *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	ListByOrg(ctx context.Context, orgID string) ([]*domain.Client, error)
}

// ProjectRepositoryInterface defines project persistence.
type ProjectRepositoryInterface interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	ListByClient(ctx context.Context, clientID string) ([]*domain.Project, error)
}
