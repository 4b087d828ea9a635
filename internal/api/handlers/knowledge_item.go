package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cloo-solutions/intakeiq/internal/api"
	"github.com/cloo-solutions/intakeiq/internal/api/middleware"
	"github.com/cloo-solutions/intakeiq/internal/domain"
	"github.com/cloo-solutions/intakeiq/internal/service"
	"github.com/go-chi/chi/v5"
)

type KnowledgeItemService interface {
	Create(ctx context.Context, input service.CreateKnowledgeItemInput) (*domain.KnowledgeItem, error)
	GetByID(ctx context.Context, id string) (*domain.KnowledgeItem, error)
	ListByOrg(ctx context.Context, orgID string) ([]domain.KnowledgeItem, error)
	ListByFieldPath(ctx context.Context, orgID, fieldPath string) ([]domain.KnowledgeItem, error)
	Patch(ctx context.Context, id string, patch domain.KnowledgeItemPatch) (*domain.KnowledgeItem, error)
	Delete(ctx context.Context, id string) error
}

type KnowledgeItemHandler struct {
	svc KnowledgeItemService
}

func NewKnowledgeItemHandler(svc KnowledgeItemService) *KnowledgeItemHandler {
	return &KnowledgeItemHandler{svc: svc}
}

type CreateKnowledgeItemRequest struct {
	FieldPath          string          `json:"field_path"`
	IsCanonical        bool            `json:"is_canonical"`
	Category           string          `json:"category"`
	Label              string          `json:"label"`
	Value              json.RawMessage `json:"value"`
	ValueType          string          `json:"value_type"`
	SourceType         string          `json:"source_type"`
	SourceDocumentID   string          `json:"source_document_id"`
	SourceDocumentName string          `json:"source_document_name"`
}

type PatchKnowledgeItemRequest struct {
	FieldPath   *string          `json:"field_path"`
	IsCanonical *bool            `json:"is_canonical"`
	Status      *string          `json:"status"`
	Value       *json.RawMessage `json:"value"`
}

type KnowledgeItemResponse struct {
	ID                 string       `json:"id"`
	OrgID              string       `json:"org_id"`
	FieldPath          string       `json:"field_path"`
	IsCanonical        bool         `json:"is_canonical"`
	Category           string       `json:"category,omitempty"`
	Label              string       `json:"label,omitempty"`
	Value              domain.Value `json:"value"`
	ValueType          string       `json:"value_type,omitempty"`
	SourceType         string       `json:"source_type"`
	SourceDocumentID   string       `json:"source_document_id,omitempty"`
	SourceDocumentName string       `json:"source_document_name,omitempty"`
	Status             string       `json:"status"`
	AddedAt            string       `json:"added_at"`
}

func knowledgeItemToResponse(k *domain.KnowledgeItem) *KnowledgeItemResponse {
	return &KnowledgeItemResponse{
		ID:                 k.ID,
		OrgID:              k.OrgID,
		FieldPath:          k.FieldPath,
		IsCanonical:        k.IsCanonical,
		Category:           k.Category,
		Label:              k.Label,
		Value:              k.Value,
		ValueType:          string(k.ValueType),
		SourceType:         string(k.SourceType),
		SourceDocumentID:   k.SourceDocumentID,
		SourceDocumentName: k.SourceDocumentName,
		Status:             string(k.Status),
		AddedAt:            k.AddedAt.UTC().Format(time.RFC3339),
	}
}

func (h *KnowledgeItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrgID(r.Context())
	if orgID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateKnowledgeItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FieldPath == "" {
		api.Error(w, http.StatusBadRequest, "field_path is required")
		return
	}
	sourceType := domain.SourceType(req.SourceType)
	if !domain.IsValidSourceType(sourceType) {
		api.Error(w, http.StatusBadRequest, "invalid source_type")
		return
	}

	var value domain.Value
	if len(req.Value) > 0 {
		if err := json.Unmarshal(req.Value, &value); err != nil {
			api.Error(w, http.StatusBadRequest, "invalid value")
			return
		}
	}

	item, err := h.svc.Create(r.Context(), service.CreateKnowledgeItemInput{
		OrgID:              orgID,
		FieldPath:          req.FieldPath,
		IsCanonical:        req.IsCanonical,
		Category:           req.Category,
		Label:              req.Label,
		Value:              value,
		ValueType:          req.ValueType,
		SourceType:         sourceType,
		SourceDocumentID:   req.SourceDocumentID,
		SourceDocumentName: req.SourceDocumentName,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, knowledgeItemToResponse(item))
}

func (h *KnowledgeItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	item, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, knowledgeItemToResponse(item))
}

func (h *KnowledgeItemHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrgID(r.Context())
	if orgID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var items []domain.KnowledgeItem
	var err error
	if fieldPath := r.URL.Query().Get("field_path"); fieldPath != "" {
		items, err = h.svc.ListByFieldPath(r.Context(), orgID, fieldPath)
	} else {
		items, err = h.svc.ListByOrg(r.Context(), orgID)
	}
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]*KnowledgeItemResponse, 0, len(items))
	for i := range items {
		resp = append(resp, knowledgeItemToResponse(&items[i]))
	}
	api.Success(w, http.StatusOK, resp)
}

func (h *KnowledgeItemHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	var req PatchKnowledgeItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := domain.KnowledgeItemPatch{
		FieldPath:   req.FieldPath,
		IsCanonical: req.IsCanonical,
	}
	if req.Status != nil {
		status := domain.KnowledgeItemStatus(*req.Status)
		patch.Status = &status
	}
	if req.Value != nil {
		var value domain.Value
		if err := json.Unmarshal(*req.Value, &value); err != nil {
			api.Error(w, http.StatusBadRequest, "invalid value")
			return
		}
		patch.Value = &value
	}

	item, err := h.svc.Patch(r.Context(), id, patch)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, knowledgeItemToResponse(item))
}

func (h *KnowledgeItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusNoContent, nil)
}
