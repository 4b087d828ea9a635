package server

import (
	"net/http"

	"github.com/cloo-solutions/intakeiq/internal/api"
	"github.com/cloo-solutions/intakeiq/internal/api/handlers"
	"github.com/cloo-solutions/intakeiq/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	AuthValidator        middleware.AuthValidator
	DocumentHandler      *handlers.DocumentHandler
	ClassifyHandler      *handlers.ClassifyHandler
	ConsolidationHandler *handlers.ConsolidationHandler
	LearningHandler      *handlers.LearningHandler
	KnowledgeItemHandler *handlers.KnowledgeItemHandler
	ClientHandler        *handlers.ClientHandler
	ProjectHandler       *handlers.ProjectHandler
	AuthHandler          *handlers.AuthHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.AuthValidator))

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", cfg.DocumentHandler.InitUpload)
			r.Get("/", cfg.DocumentHandler.List)
			r.Get("/{id}", cfg.DocumentHandler.Get)
			r.Post("/{id}/complete", cfg.DocumentHandler.CompleteUpload)
			r.Post("/{id}/reclassify", cfg.DocumentHandler.Reclassify)
			r.Get("/{id}/download", cfg.DocumentHandler.DownloadURL)
			r.Delete("/{id}", cfg.DocumentHandler.Delete)
		})

		r.Route("/classify", func(r chi.Router) {
			r.Post("/", cfg.ClassifyHandler.Classify)
			r.Post("/placement", cfg.ClassifyHandler.ResolvePlacement)
			r.Get("/file-types", cfg.ClassifyHandler.FileTypes)
		})

		r.Route("/consolidation", func(r chi.Router) {
			r.Get("/review", cfg.ConsolidationHandler.Review)
			r.Get("/duplicates", cfg.ConsolidationHandler.Duplicates)
			r.Get("/conflicts", cfg.ConsolidationHandler.Conflicts)
			r.Post("/duplicates/apply", cfg.ConsolidationHandler.ApplyDuplicates)
		})

		r.Route("/learning", func(r chi.Router) {
			r.Get("/events", cfg.LearningHandler.ListEvents)
			r.Post("/events/{id}/undo", cfg.LearningHandler.Undo)
			r.Post("/events/{id}/dismiss", cfg.LearningHandler.Dismiss)
			r.Post("/events/dismiss-all", cfg.LearningHandler.DismissAll)
			r.Get("/stats", cfg.LearningHandler.Stats)
		})

		r.Route("/knowledge-items", func(r chi.Router) {
			r.Post("/", cfg.KnowledgeItemHandler.Create)
			r.Get("/", cfg.KnowledgeItemHandler.List)
			r.Get("/{id}", cfg.KnowledgeItemHandler.Get)
			r.Patch("/{id}", cfg.KnowledgeItemHandler.Patch)
			r.Delete("/{id}", cfg.KnowledgeItemHandler.Delete)
		})

		r.Route("/clients", func(r chi.Router) {
			r.Post("/", cfg.ClientHandler.Create)
			r.Get("/", cfg.ClientHandler.List)
			r.Get("/{id}", cfg.ClientHandler.Get)
			r.Get("/{clientID}/projects", cfg.ProjectHandler.ListByClient)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", cfg.ProjectHandler.Create)
			r.Get("/{id}", cfg.ProjectHandler.Get)
		})
	})

	r.Post("/orgs", cfg.AuthHandler.CreateOrg)
	r.Post("/apikeys", cfg.AuthHandler.CreateAPIKey)

	return r
}
