package service

import (
	"context"
	"time"

	"github.com/cloo-solutions/intakeiq/internal/domain"
)

// KnowledgeItemService owns CRUD over the extracted facts the consolidation
// engine works on.
type KnowledgeItemService struct {
	knowledgeRepo KnowledgeItemRepositoryInterface
	uuidGen       UUIDGenerator
	now           func() time.Time
}

func NewKnowledgeItemService(knowledgeRepo KnowledgeItemRepositoryInterface, uuidGen UUIDGenerator) *KnowledgeItemService {
	return &KnowledgeItemService{
		knowledgeRepo: knowledgeRepo,
		uuidGen:       uuidGen,
		now:           time.Now,
	}
}

type CreateKnowledgeItemInput struct {
	OrgID              string
	FieldPath          string
	IsCanonical        bool
	Category           string
	Label              string
	Value              domain.Value
	ValueType          string
	SourceType         domain.SourceType
	SourceDocumentID   string
	SourceDocumentName string
}

func (s *KnowledgeItemService) Create(ctx context.Context, input CreateKnowledgeItemInput) (*domain.KnowledgeItem, error) {
	valueType := domain.ValueKind(input.ValueType)
	if valueType == "" {
		valueType = input.Value.Kind
	}
	item := &domain.KnowledgeItem{
		ID:                 s.uuidGen.NewString(),
		OrgID:              input.OrgID,
		FieldPath:          input.FieldPath,
		IsCanonical:        input.IsCanonical,
		Category:           input.Category,
		Label:              input.Label,
		Value:              input.Value,
		ValueType:          valueType,
		SourceType:         input.SourceType,
		SourceDocumentID:   input.SourceDocumentID,
		SourceDocumentName: input.SourceDocumentName,
		Status:             domain.KnowledgeItemStatusActive,
		AddedAt:            s.now().UTC(),
	}
	if err := domain.ValidateKnowledgeItem(item); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid knowledge item", err)
	}
	if err := s.knowledgeRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *KnowledgeItemService) GetByID(ctx context.Context, id string) (*domain.KnowledgeItem, error) {
	return s.knowledgeRepo.GetByID(ctx, id)
}

func (s *KnowledgeItemService) ListByOrg(ctx context.Context, orgID string) ([]domain.KnowledgeItem, error) {
	return s.knowledgeRepo.ListByOrg(ctx, orgID)
}

func (s *KnowledgeItemService) ListByFieldPath(ctx context.Context, orgID, fieldPath string) ([]domain.KnowledgeItem, error) {
	return s.knowledgeRepo.ListByFieldPath(ctx, orgID, fieldPath)
}

// Patch applies a partial update. Reclassifying a custom item to a canonical
// field path goes through here: set FieldPath and IsCanonical together.
func (s *KnowledgeItemService) Patch(ctx context.Context, id string, patch domain.KnowledgeItemPatch) (*domain.KnowledgeItem, error) {
	if err := s.knowledgeRepo.Patch(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.knowledgeRepo.GetByID(ctx, id)
}

func (s *KnowledgeItemService) Delete(ctx context.Context, id string) error {
	return s.knowledgeRepo.Delete(ctx, id)
}
