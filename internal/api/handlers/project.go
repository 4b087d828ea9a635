package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cloo-solutions/intakeiq/internal/api"
	"github.com/cloo-solutions/intakeiq/internal/api/middleware"
	"github.com/cloo-solutions/intakeiq/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	ListByClient(ctx context.Context, clientID string) ([]*domain.Project, error)
}

type ProjectHandler struct {
	repo ProjectRepository
}

func NewProjectHandler(repo ProjectRepository) *ProjectHandler {
	return &ProjectHandler{repo: repo}
}

type CreateProjectRequest struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
}

type ProjectResponse struct {
	ID        string `json:"id"`
	OrgID     string `json:"org_id"`
	ClientID  string `json:"client_id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

func projectToResponse(p *domain.Project) *ProjectResponse {
	return &ProjectResponse{
		ID:        p.ID,
		OrgID:     p.OrgID,
		ClientID:  p.ClientID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrgID(r.Context())
	if orgID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.ClientID == "" {
		api.Error(w, http.StatusBadRequest, "client_id is required")
		return
	}

	project := &domain.Project{
		ID:        uuid.NewString(),
		OrgID:     orgID,
		ClientID:  req.ClientID,
		Name:      req.Name,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.repo.Create(r.Context(), project); err != nil {
		api.Error(w, http.StatusInternalServerError, "failed to create project")
		return
	}

	api.Success(w, http.StatusCreated, projectToResponse(project))
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrgID(r.Context())
	if orgID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	projectID := chi.URLParam(r, "id")
	project, err := h.repo.GetByID(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, domain.ErrProjectNotFound) {
			api.Error(w, http.StatusNotFound, "project not found")
			return
		}
		api.Error(w, http.StatusInternalServerError, "failed to get project")
		return
	}

	if project.OrgID != orgID {
		api.Error(w, http.StatusNotFound, "project not found")
		return
	}

	api.Success(w, http.StatusOK, projectToResponse(project))
}

func (h *ProjectHandler) ListByClient(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrgID(r.Context())
	if orgID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	clientID := chi.URLParam(r, "clientID")
	projects, err := h.repo.ListByClient(r.Context(), clientID)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "failed to list projects")
		return
	}

	responses := make([]*ProjectResponse, len(projects))
	for i, p := range projects {
		responses[i] = projectToResponse(p)
	}

	api.Success(w, http.StatusOK, responses)
}
