package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cloo-solutions/intakeiq/internal/api"
	"github.com/cloo-solutions/intakeiq/internal/api/middleware"
	"github.com/cloo-solutions/intakeiq/internal/domain"
	"github.com/cloo-solutions/intakeiq/internal/pagination"
	"github.com/cloo-solutions/intakeiq/internal/service"
	"github.com/go-chi/chi/v5"
)

type DocumentService interface {
	InitUpload(ctx context.Context, input service.InitUploadInput) (*service.InitUploadResult, error)
	CompleteUpload(ctx context.Context, documentID string) (*domain.Document, error)
	Reclassify(ctx context.Context, input service.ReclassifyInput) (*domain.Document, []*domain.LearningEvent, error)
	GetByID(ctx context.Context, documentID string) (*domain.Document, error)
	List(ctx context.Context, orgID string, cursor *pagination.Cursor, limit int) (*service.DocumentPageResult, error)
	GetDownloadURL(ctx context.Context, documentID string) (string, error)
	Delete(ctx context.Context, documentID string) error
}

type DocumentHandler struct {
	svc DocumentService
}

func NewDocumentHandler(svc DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

type InitUploadRequest struct {
	ClientID    string `json:"client_id"`
	ProjectID   string `json:"project_id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

type InitUploadResponse struct {
	DocumentID string `json:"document_id"`
	StorageKey string `json:"storage_key"`
	UploadURL  string `json:"upload_url"`
}

type ReclassifyRequest struct {
	FileType string `json:"file_type"`
	Category string `json:"category"`
}

type DocumentResponse struct {
	ID           string  `json:"id"`
	OrgID        string  `json:"org_id"`
	ClientID     string  `json:"client_id"`
	ProjectID    string  `json:"project_id,omitempty"`
	FileName     string  `json:"file_name"`
	ContentType  string  `json:"content_type,omitempty"`
	SizeBytes    int64   `json:"size_bytes,omitempty"`
	Status       string  `json:"status"`
	FileType     string  `json:"file_type,omitempty"`
	Category     string  `json:"category,omitempty"`
	Folder       string  `json:"folder,omitempty"`
	Level        string  `json:"level,omitempty"`
	Confidence   float64 `json:"confidence,omitempty"`
	ClassifiedBy string  `json:"classified_by,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

type ReclassifyResponse struct {
	Document        *DocumentResponse `json:"document"`
	LearnedKeywords []string          `json:"learned_keywords,omitempty"`
}

type DocumentListResponse struct {
	Items      []*DocumentResponse `json:"items"`
	NextCursor string              `json:"next_cursor,omitempty"`
	HasMore    bool                `json:"has_more"`
}

func documentToResponse(d *domain.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:           d.ID,
		OrgID:        d.OrgID,
		ClientID:     d.ClientID,
		ProjectID:    d.ProjectID,
		FileName:     d.FileName,
		ContentType:  d.ContentType,
		SizeBytes:    d.SizeBytes,
		Status:       string(d.Status),
		FileType:     d.FileType,
		Category:     d.Category,
		Folder:       d.Folder,
		Level:        string(d.Level),
		Confidence:   d.Confidence,
		ClassifiedBy: string(d.ClassifiedBy),
		CreatedAt:    d.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    d.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *DocumentHandler) InitUpload(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrgID(r.Context())
	if orgID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req InitUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FileName == "" {
		api.Error(w, http.StatusBadRequest, "file_name is required")
		return
	}
	if req.ClientID == "" {
		api.Error(w, http.StatusBadRequest, "client_id is required")
		return
	}

	result, err := h.svc.InitUpload(r.Context(), service.InitUploadInput{
		OrgID:       orgID,
		ClientID:    req.ClientID,
		ProjectID:   req.ProjectID,
		FileName:    req.FileName,
		ContentType: req.ContentType,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, &InitUploadResponse{
		DocumentID: result.DocumentID,
		StorageKey: result.StorageKey,
		UploadURL:  result.UploadURL,
	})
}

func (h *DocumentHandler) CompleteUpload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	doc, err := h.svc.CompleteUpload(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, documentToResponse(doc))
}

func (h *DocumentHandler) Reclassify(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	var req ReclassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FileType == "" {
		api.Error(w, http.StatusBadRequest, "file_type is required")
		return
	}

	doc, promoted, err := h.svc.Reclassify(r.Context(), service.ReclassifyInput{
		DocumentID: id,
		FileType:   req.FileType,
		Category:   req.Category,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := &ReclassifyResponse{Document: documentToResponse(doc)}
	for _, e := range promoted {
		resp.LearnedKeywords = append(resp.LearnedKeywords, e.Keyword)
	}
	api.Success(w, http.StatusOK, resp)
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	doc, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, documentToResponse(doc))
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrgID(r.Context())
	if orgID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			api.Error(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	cursor, err := pagination.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid cursor")
		return
	}

	page, err := h.svc.List(r.Context(), orgID, cursor, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := &DocumentListResponse{
		Items:      make([]*DocumentResponse, 0, len(page.Items)),
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}
	for _, d := range page.Items {
		resp.Items = append(resp.Items, documentToResponse(d))
	}
	api.Success(w, http.StatusOK, resp)
}

func (h *DocumentHandler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	url, err := h.svc.GetDownloadURL(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"download_url": url})
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
