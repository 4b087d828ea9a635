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

type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	ListByOrg(ctx context.Context, orgID string) ([]*domain.Client, error)
}

type ClientHandler struct {
	repo ClientRepository
}

func NewClientHandler(repo ClientRepository) *ClientHandler {
	return &ClientHandler{repo: repo}
}

type CreateClientRequest struct {
	Name string `json:"name"`
}

type ClientResponse struct {
	ID        string `json:"id"`
	OrgID     string `json:"org_id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

func clientToResponse(c *domain.Client) *ClientResponse {
	return &ClientResponse{
		ID:        c.ID,
		OrgID:     c.OrgID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrgID(r.Context())
	if orgID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	client := &domain.Client{
		ID:        uuid.NewString(),
		OrgID:     orgID,
		Name:      req.Name,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.repo.Create(r.Context(), client); err != nil {
		api.Error(w, http.StatusInternalServerError, "failed to create client")
		return
	}

	api.Success(w, http.StatusCreated, clientToResponse(client))
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrgID(r.Context())
	if orgID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	clientID := chi.URLParam(r, "id")
	client, err := h.repo.GetByID(r.Context(), clientID)
	if err != nil {
		if errors.Is(err, domain.ErrClientNotFound) {
			api.Error(w, http.StatusNotFound, "client not found")
			return
		}
		api.Error(w, http.StatusInternalServerError, "failed to get client")
		return
	}

	if client.OrgID != orgID {
		api.Error(w, http.StatusNotFound, "client not found")
		return
	}

	api.Success(w, http.StatusOK, clientToResponse(client))
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrgID(r.Context())
	if orgID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	clients, err := h.repo.ListByOrg(r.Context(), orgID)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "failed to list clients")
		return
	}

	responses := make([]*ClientResponse, len(clients))
	for i, c := range clients {
		responses[i] = clientToResponse(c)
	}

	api.Success(w, http.StatusOK, responses)
}
