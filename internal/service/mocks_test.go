package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cloo-solutions/intakeiq/internal/classify"
	"github.com/cloo-solutions/intakeiq/internal/domain"
	"github.com/cloo-solutions/intakeiq/internal/pagination"
	"github.com/stretchr/testify/mock"
)

// MockLearningRepository is a mock implementation of LearningRepositoryInterface
type MockLearningRepository struct {
	mock.Mock
}

func (m *MockLearningRepository) IncrementCorrection(ctx context.Context, keyword, targetFileType string) (int, error) {
	args := m.Called(ctx, keyword, targetFileType)
	return args.Int(0), args.Error(1)
}

func (m *MockLearningRepository) CreateEvent(ctx context.Context, e *domain.LearningEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockLearningRepository) GetEvent(ctx context.Context, id string) (*domain.LearningEvent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LearningEvent), args.Error(1)
}

func (m *MockLearningRepository) HasEvent(ctx context.Context, keyword, targetFileType string) (bool, error) {
	args := m.Called(ctx, keyword, targetFileType)
	return args.Bool(0), args.Error(1)
}

func (m *MockLearningRepository) ListEvents(ctx context.Context, includeDismissed bool) ([]*domain.LearningEvent, error) {
	args := m.Called(ctx, includeDismissed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LearningEvent), args.Error(1)
}

func (m *MockLearningRepository) ListActiveKeywords(ctx context.Context) ([]*domain.LearningEvent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LearningEvent), args.Error(1)
}

func (m *MockLearningRepository) UpdateEventState(ctx context.Context, id string, from []domain.LearningEventState, to domain.LearningEventState) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *MockLearningRepository) DismissAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLearningRepository) Stats(ctx context.Context, now time.Time) (*domain.LearningStats, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LearningStats), args.Error(1)
}

// MockKnowledgeItemRepository is a mock implementation of KnowledgeItemRepositoryInterface
type MockKnowledgeItemRepository struct {
	mock.Mock
}

func (m *MockKnowledgeItemRepository) Create(ctx context.Context, k *domain.KnowledgeItem) error {
	args := m.Called(ctx, k)
	return args.Error(0)
}

func (m *MockKnowledgeItemRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeItem), args.Error(1)
}

func (m *MockKnowledgeItemRepository) ListByOrg(ctx context.Context, orgID string) ([]domain.KnowledgeItem, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.KnowledgeItem), args.Error(1)
}

func (m *MockKnowledgeItemRepository) ListByFieldPath(ctx context.Context, orgID, fieldPath string) ([]domain.KnowledgeItem, error) {
	args := m.Called(ctx, orgID, fieldPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.KnowledgeItem), args.Error(1)
}

func (m *MockKnowledgeItemRepository) Patch(ctx context.Context, id string, patch domain.KnowledgeItemPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *MockKnowledgeItemRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockKnowledgeItemRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

// MockDocumentRepository is a mock implementation of DocumentRepositoryInterface
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) UpdateClassification(ctx context.Context, d *domain.Document) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockDocumentRepository) ListByStatus(ctx context.Context, status domain.DocumentStatus, limit int) ([]*domain.Document, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListByOrgWithCursor(ctx context.Context, orgID string, cursor *pagination.Cursor, limit int) (*DocumentPageResult, error) {
	args := m.Called(ctx, orgID, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DocumentPageResult), args.Error(1)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockStorageClient is a mock implementation of StorageClientInterface
type MockStorageClient struct {
	mock.Mock
}

func (m *MockStorageClient) GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorageClient) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockStorageClient) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorageClient) HeadObject(ctx context.Context, key string) (*ObjectMetadata, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ObjectMetadata), args.Error(1)
}

// MockContentClassifier is a mock implementation of ContentClassifier
type MockContentClassifier struct {
	mock.Mock
}

func (m *MockContentClassifier) ClassifyContent(ctx context.Context, fileName string) (*ContentGuess, error) {
	args := m.Called(ctx, fileName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ContentGuess), args.Error(1)
}

// sequenceUUIDGenerator returns deterministic IDs for assertions
type sequenceUUIDGenerator struct {
	n int
}

func (g *sequenceUUIDGenerator) NewString() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

// MockUUIDGenerator returns a fixed list of IDs
type MockUUIDGenerator struct {
	uuids     []string
	callCount int
}

func NewMockUUIDGenerator(uuids ...string) *MockUUIDGenerator {
	return &MockUUIDGenerator{uuids: uuids}
}

func (m *MockUUIDGenerator) NewString() string {
	if m.callCount < len(m.uuids) {
		uuid := m.uuids[m.callCount]
		m.callCount++
		return uuid
	}
	return "default-uuid"
}

// fakeTxRunner runs the callback against the given repositories without a
// real transaction
type fakeTxRunner struct {
	knowledgeItems KnowledgeItemRepositoryInterface
	documents      DocumentRepositoryInterface
	learning       LearningRepositoryInterface
}

func (r *fakeTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	return fn(r)
}

func (r *fakeTxRunner) KnowledgeItems() KnowledgeItemRepositoryInterface { return r.knowledgeItems }
func (r *fakeTxRunner) Documents() DocumentRepositoryInterface          { return r.documents }
func (r *fakeTxRunner) Learning() LearningRepositoryInterface           { return r.learning }

// newTestRegistry builds a small registry used across the service tests.
func newTestRegistry() *classify.Registry {
	rs := &classify.RuleSet{
		ClientFolders:  []string{"financials", "identification", "miscellaneous"},
		ProjectFolders: []string{"valuation"},
		Rules: []classify.PatternRule{
			{
				Keywords: []string{"bank statement"},
				FileType: "Bank Statement",
				Category: "Financial",
				Folder:   "financials",
				Level:    domain.LevelClient,
			},
		},
		TypeMappings: []classify.TypeMapping{
			{
				FileType: "Bank Statement",
				Category: "Financial",
				Folder:   "financials",
				Level:    domain.LevelClient,
				Keywords: []string{"bank statement"},
			},
			{
				FileType: "Passport",
				Category: "Identity",
				Folder:   "identification",
				Level:    domain.LevelClient,
				Keywords: []string{"passport"},
			},
			{
				FileType: "Valuation Report",
				Category: "Property",
				Folder:   "valuation",
				Level:    domain.LevelProject,
			},
		},
		CategoryDefaults: []classify.CategoryDefault{
			{Category: "Financial", Folder: "financials", Level: domain.LevelClient},
		},
	}
	registry, err := classify.NewRegistry(rs)
	if err != nil {
		panic(err)
	}
	return registry
}
