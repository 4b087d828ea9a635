package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cloo-solutions/intakeiq/internal/api"
	"github.com/cloo-solutions/intakeiq/internal/api/middleware"
	"github.com/cloo-solutions/intakeiq/internal/consolidate"
	"github.com/cloo-solutions/intakeiq/internal/domain"
	"github.com/cloo-solutions/intakeiq/internal/service"
)

type ConsolidationService interface {
	Review(ctx context.Context, orgID string) (*service.ConsolidationReview, error)
	Duplicates(ctx context.Context, orgID string) ([]consolidate.DuplicateRecommendation, error)
	Conflicts(ctx context.Context, orgID string) ([]consolidate.ConflictDetection, error)
	ApplyDuplicates(ctx context.Context, orgID string, fieldPaths []string) (*service.ApplyResult, error)
}

type ConsolidationHandler struct {
	svc ConsolidationService
}

func NewConsolidationHandler(svc ConsolidationService) *ConsolidationHandler {
	return &ConsolidationHandler{svc: svc}
}

type DuplicateRecommendationResponse struct {
	FieldPath string   `json:"field_path"`
	KeepID    string   `json:"keep_id"`
	RemoveIDs []string `json:"remove_ids"`
	Reason    string   `json:"reason"`
}

type ConflictDetectionResponse struct {
	FieldPath   string   `json:"field_path"`
	ItemIDs     []string `json:"item_ids"`
	Values      []string `json:"values"`
	Description string   `json:"description"`
}

type CustomItemResponse struct {
	ID        string `json:"id"`
	FieldPath string `json:"field_path"`
	Label     string `json:"label"`
	Category  string `json:"category"`
}

type ConsolidationReviewResponse struct {
	Duplicates  []DuplicateRecommendationResponse `json:"duplicates"`
	Conflicts   []ConflictDetectionResponse       `json:"conflicts"`
	CustomItems []CustomItemResponse              `json:"custom_items"`
}

func duplicatesToResponse(recs []consolidate.DuplicateRecommendation) []DuplicateRecommendationResponse {
	out := make([]DuplicateRecommendationResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, DuplicateRecommendationResponse(rec))
	}
	return out
}

func conflictsToResponse(dets []consolidate.ConflictDetection) []ConflictDetectionResponse {
	out := make([]ConflictDetectionResponse, 0, len(dets))
	for _, det := range dets {
		values := make([]string, 0, len(det.Values))
		for _, v := range det.Values {
			values = append(values, v.String())
		}
		out = append(out, ConflictDetectionResponse{
			FieldPath:   det.FieldPath,
			ItemIDs:     det.ItemIDs,
			Values:      values,
			Description: det.Description,
		})
	}
	return out
}

func customItemsToResponse(items []domain.KnowledgeItem) []CustomItemResponse {
	out := make([]CustomItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, CustomItemResponse{
			ID:        item.ID,
			FieldPath: item.FieldPath,
			Label:     item.Label,
			Category:  item.Category,
		})
	}
	return out
}

func (h *ConsolidationHandler) Review(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrgID(r.Context())
	if orgID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	review, err := h.svc.Review(r.Context(), orgID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, &ConsolidationReviewResponse{
		Duplicates:  duplicatesToResponse(review.Duplicates),
		Conflicts:   conflictsToResponse(review.Conflicts),
		CustomItems: customItemsToResponse(review.CustomItems),
	})
}

func (h *ConsolidationHandler) Duplicates(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrgID(r.Context())
	if orgID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	recs, err := h.svc.Duplicates(r.Context(), orgID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, duplicatesToResponse(recs))
}

func (h *ConsolidationHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrgID(r.Context())
	if orgID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	dets, err := h.svc.Conflicts(r.Context(), orgID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, conflictsToResponse(dets))
}

type ApplyDuplicatesRequest struct {
	FieldPaths []string `json:"field_paths"`
}

type ApplyDuplicatesResponse struct {
	RecommendationsApplied int   `json:"recommendations_applied"`
	ItemsRemoved           int64 `json:"items_removed"`
}

func (h *ConsolidationHandler) ApplyDuplicates(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrgID(r.Context())
	if orgID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ApplyDuplicatesRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	result, err := h.svc.ApplyDuplicates(r.Context(), orgID, req.FieldPaths)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, &ApplyDuplicatesResponse{
		RecommendationsApplied: result.RecommendationsApplied,
		ItemsRemoved:           result.ItemsRemoved,
	})
}
