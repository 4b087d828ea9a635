package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/cloo-solutions/intakeiq/internal/api"
	"github.com/cloo-solutions/intakeiq/internal/domain"
	"github.com/go-chi/chi/v5"
)

type LearningService interface {
	ListEvents(ctx context.Context, includeDismissed bool) ([]*domain.LearningEvent, error)
	Undo(ctx context.Context, eventID string) (*domain.LearningEvent, error)
	Dismiss(ctx context.Context, eventID string) (*domain.LearningEvent, error)
	DismissAll(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*domain.LearningStats, error)
}

type LearningHandler struct {
	svc LearningService
}

func NewLearningHandler(svc LearningService) *LearningHandler {
	return &LearningHandler{svc: svc}
}

type LearningEventResponse struct {
	ID              string `json:"id"`
	Keyword         string `json:"keyword"`
	TargetFileType  string `json:"target_file_type"`
	CorrectionCount int    `json:"correction_count"`
	State           string `json:"state"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

func learningEventToResponse(e *domain.LearningEvent) *LearningEventResponse {
	return &LearningEventResponse{
		ID:              e.ID,
		Keyword:         e.Keyword,
		TargetFileType:  e.TargetFileType,
		CorrectionCount: e.CorrectionCount,
		State:           string(e.State),
		CreatedAt:       e.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *LearningHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	includeDismissed := r.URL.Query().Get("include_dismissed") == "true"

	events, err := h.svc.ListEvents(r.Context(), includeDismissed)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]*LearningEventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, learningEventToResponse(e))
	}
	api.Success(w, http.StatusOK, resp)
}

func (h *LearningHandler) Undo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	event, err := h.svc.Undo(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, learningEventToResponse(event))
}

func (h *LearningHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	event, err := h.svc.Dismiss(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, learningEventToResponse(event))
}

func (h *LearningHandler) DismissAll(w http.ResponseWriter, r *http.Request) {
	dismissed, err := h.svc.DismissAll(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]int64{"dismissed": dismissed})
}

type LearningStatsResponse struct {
	TotalLearned          int `json:"total_learned"`
	ThisWeek              int `json:"this_week"`
	ThisMonth             int `json:"this_month"`
	FileTypesWithLearning int `json:"file_types_with_learning"`
}

func (h *LearningHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, &LearningStatsResponse{
		TotalLearned:          stats.TotalLearned,
		ThisWeek:              stats.ThisWeek,
		ThisMonth:             stats.ThisMonth,
		FileTypesWithLearning: stats.FileTypesWithLearning,
	})
}
