package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cloo-solutions/intakeiq/internal/api"
	"github.com/cloo-solutions/intakeiq/internal/domain"
	"github.com/cloo-solutions/intakeiq/internal/service"
)

type ClassifyService interface {
	Classify(ctx context.Context, fileName string) (*service.ClassificationResult, error)
	ResolvePlacement(fileType, category string) domain.Placement
	KnownFileTypes() []string
}

// ClassifyHandler exposes the pipeline as a dry run: nothing is stored,
// callers just see how a filename would be filed.
type ClassifyHandler struct {
	svc ClassifyService
}

func NewClassifyHandler(svc ClassifyService) *ClassifyHandler {
	return &ClassifyHandler{svc: svc}
}

type ClassifyRequest struct {
	FileName string `json:"file_name"`
}

type ClassifyResponse struct {
	Matched        bool                   `json:"matched"`
	Classification *ClassificationPayload `json:"classification,omitempty"`
}

type ClassificationPayload struct {
	FileType   string  `json:"file_type"`
	Category   string  `json:"category"`
	Folder     string  `json:"folder"`
	Level      string  `json:"level"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

func (h *ClassifyHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FileName == "" {
		api.Error(w, http.StatusBadRequest, "file_name is required")
		return
	}

	result, err := h.svc.Classify(r.Context(), req.FileName)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := &ClassifyResponse{Matched: result.Matched}
	if result.Matched {
		c := result.Classification
		resp.Classification = &ClassificationPayload{
			FileType:   c.FileType,
			Category:   c.Category,
			Folder:     c.Folder,
			Level:      string(c.Level),
			Confidence: c.Confidence,
			Source:     string(c.Source),
		}
	}
	api.Success(w, http.StatusOK, resp)
}

type PlacementRequest struct {
	FileType string `json:"file_type"`
	Category string `json:"category"`
}

type PlacementResponse struct {
	Folder string `json:"folder"`
	Level  string `json:"level"`
}

func (h *ClassifyHandler) ResolvePlacement(w http.ResponseWriter, r *http.Request) {
	var req PlacementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	placement := h.svc.ResolvePlacement(req.FileType, req.Category)
	api.Success(w, http.StatusOK, &PlacementResponse{
		Folder: placement.Folder,
		Level:  string(placement.Level),
	})
}

func (h *ClassifyHandler) FileTypes(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, map[string][]string{"file_types": h.svc.KnownFileTypes()})
}
