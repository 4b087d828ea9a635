package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/intakeiq/internal/api/handlers"
	"github.com/cloo-solutions/intakeiq/internal/classify"
	"github.com/cloo-solutions/intakeiq/internal/config"
	"github.com/cloo-solutions/intakeiq/internal/database"
	"github.com/cloo-solutions/intakeiq/internal/domain"
	"github.com/cloo-solutions/intakeiq/internal/jobs"
	"github.com/cloo-solutions/intakeiq/internal/openai"
	"github.com/cloo-solutions/intakeiq/internal/pagination"
	"github.com/cloo-solutions/intakeiq/internal/repository"
	"github.com/cloo-solutions/intakeiq/internal/server"
	"github.com/cloo-solutions/intakeiq/internal/service"
	"github.com/cloo-solutions/intakeiq/internal/storage"
	"github.com/cloo-solutions/intakeiq/internal/telemetry"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the intakeiq API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.SentryDSN != "" {
		environment := cfg.SentryEnvironment
		if environment == "" {
			environment = "development"
		}

		sampleRate := cfg.SentryTracesSampleRate
		if sampleRate == 0 {
			// Default to 10% sampling in production, 100% in development
			sampleRate = 0.1
			if environment == "development" {
				sampleRate = 1.0
			}
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	registry, err := classify.NewDefaultRegistry(cfg.RulesPath)
	if err != nil {
		return fmt.Errorf("failed to load classification rules: %w", err)
	}

	documentRepo := repository.NewDocumentRepository(pool)
	knowledgeItemRepo := repository.NewKnowledgeItemRepository(pool)
	learningRepo := repository.NewLearningRepository(pool)
	orgRepo := repository.NewOrgRepository(pool)
	apiKeyRepo := repository.NewAPIKeyRepository(pool)
	clientRepo := repository.NewClientRepository(pool)
	projectRepo := repository.NewProjectRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	if cfg.InitOrgName != "" {
		if err := bootstrapInitialOrg(ctx, cfg, orgRepo, apiKeyRepo); err != nil {
			return fmt.Errorf("failed to bootstrap initial org: %w", err)
		}
	}

	var storageClient service.StorageClientInterface
	if cfg.HasS3() {
		s3Config := storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		}
		s3Client, err := storage.NewS3Client(ctx, s3Config)
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		storageClient = &S3StorageAdapter{client: s3Client}
	}

	var contentClassifier service.ContentClassifier
	if cfg.HasOpenAI() {
		contentClassifier = openai.NewClient(cfg.OpenAIAPIKey, registry.FileTypes())
		log.Println("content classifier enabled")
	}

	uuidGen := &service.DefaultUUIDGenerator{}

	classificationSvc := service.NewClassificationService(registry, contentClassifier)
	learningSvc := service.NewLearningService(learningRepo, registry, uuidGen)
	consolidationSvc := service.NewConsolidationService(knowledgeItemRepo, txRunner)
	knowledgeItemSvc := service.NewKnowledgeItemService(knowledgeItemRepo, uuidGen)
	authSvc := service.NewAuthService(orgRepo, apiKeyRepo, uuidGen)

	if applied, err := learningSvc.Rehydrate(ctx); err != nil {
		return fmt.Errorf("failed to rehydrate learned keywords: %w", err)
	} else if applied > 0 {
		log.Printf("applied %d learned keywords", applied)
	}

	var documentSvc *service.DocumentService
	if storageClient != nil {
		documentSvc = service.NewDocumentService(documentRepo, storageClient, classificationSvc, learningSvc)
	}

	var classificationWorker *jobs.Worker
	if documentSvc != nil && contentClassifier != nil {
		processor := jobs.NewClassificationWorker(documentRepo, documentSvc)
		classificationWorker = jobs.NewWorker(processor, time.Duration(cfg.ClassifyInterval)*time.Second)
		go classificationWorker.Start(ctx)
		log.Println("classification worker started")
	}

	var documentHandler *handlers.DocumentHandler
	if documentSvc != nil {
		documentHandler = handlers.NewDocumentHandler(documentSvc)
	} else {
		documentHandler = handlers.NewDocumentHandler(&NoOpDocumentService{})
	}

	routerCfg := server.RouterConfig{
		AuthValidator:        authSvc,
		DocumentHandler:      documentHandler,
		ClassifyHandler:      handlers.NewClassifyHandler(classificationSvc),
		ConsolidationHandler: handlers.NewConsolidationHandler(consolidationSvc),
		LearningHandler:      handlers.NewLearningHandler(learningSvc),
		KnowledgeItemHandler: handlers.NewKnowledgeItemHandler(knowledgeItemSvc),
		ClientHandler:        handlers.NewClientHandler(clientRepo),
		ProjectHandler:       handlers.NewProjectHandler(projectRepo),
		AuthHandler:          handlers.NewAuthHandler(authSvc),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if classificationWorker != nil {
		classificationWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

type S3StorageAdapter struct {
	client *storage.S3Client
}

func (a *S3StorageAdapter) GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error) {
	return a.client.GenerateUploadURL(ctx, key, contentType)
}

func (a *S3StorageAdapter) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	return a.client.GenerateDownloadURL(ctx, key)
}

func (a *S3StorageAdapter) DeleteObject(ctx context.Context, key string) error {
	return a.client.DeleteObject(ctx, key)
}

func (a *S3StorageAdapter) HeadObject(ctx context.Context, key string) (*service.ObjectMetadata, error) {
	meta, err := a.client.HeadObject(ctx, key)
	if err != nil {
		return nil, err
	}
	return &service.ObjectMetadata{
		ContentLength: meta.ContentLength,
		ContentType:   meta.ContentType,
		ETag:          meta.ETag,
	}, nil
}

// NoOpDocumentService answers document routes when S3 is not configured.
type NoOpDocumentService struct{}

var errStorageNotConfigured = fmt.Errorf("document service not configured: S3_ENDPOINT required")

func (s *NoOpDocumentService) InitUpload(ctx context.Context, input service.InitUploadInput) (*service.InitUploadResult, error) {
	return nil, errStorageNotConfigured
}

func (s *NoOpDocumentService) CompleteUpload(ctx context.Context, documentID string) (*domain.Document, error) {
	return nil, errStorageNotConfigured
}

func (s *NoOpDocumentService) Reclassify(ctx context.Context, input service.ReclassifyInput) (*domain.Document, []*domain.LearningEvent, error) {
	return nil, nil, errStorageNotConfigured
}

func (s *NoOpDocumentService) GetByID(ctx context.Context, documentID string) (*domain.Document, error) {
	return nil, errStorageNotConfigured
}

func (s *NoOpDocumentService) List(ctx context.Context, orgID string, cursor *pagination.Cursor, limit int) (*service.DocumentPageResult, error) {
	return nil, errStorageNotConfigured
}

func (s *NoOpDocumentService) GetDownloadURL(ctx context.Context, documentID string) (string, error) {
	return "", errStorageNotConfigured
}

func (s *NoOpDocumentService) Delete(ctx context.Context, documentID string) error {
	return errStorageNotConfigured
}

func bootstrapInitialOrg(ctx context.Context, cfg *config.Config, orgRepo *repository.OrgRepository, apiKeyRepo *repository.APIKeyRepository) error {
	org, err := orgRepo.GetByName(ctx, cfg.InitOrgName)
	if err != nil && !errors.Is(err, domain.ErrOrgNotFound) {
		return fmt.Errorf("failed to check existing org: %w", err)
	}

	uuidGen := &service.DefaultUUIDGenerator{}
	authSvc := service.NewAuthService(orgRepo, apiKeyRepo, uuidGen)

	if org == nil {
		org, err = authSvc.CreateOrg(ctx, cfg.InitOrgName)
		if err != nil {
			return fmt.Errorf("failed to create org: %w", err)
		}
		log.Printf("bootstrap: created organization '%s' (id: %s)", org.Name, org.ID)
	} else {
		log.Printf("bootstrap: organization '%s' already exists (id: %s)", org.Name, org.ID)
	}

	if cfg.InitAPIKey != "" {
		if !service.IsValidAPIToken(cfg.InitAPIKey) {
			return fmt.Errorf("invalid INTAKEIQ_INIT_API_KEY format (expected 'iqk_<64 hex chars>')")
		}

		existingKey, err := authSvc.GetAPIKeyByHash(ctx, cfg.InitAPIKey)
		if err == nil && existingKey != nil {
			log.Printf("bootstrap: API key already exists (id: %s)", existingKey.ID)
			return nil
		}

		if err := authSvc.CreateAPIKeyWithToken(ctx, org.ID, "bootstrap", cfg.InitAPIKey); err != nil {
			return fmt.Errorf("failed to create API key: %w", err)
		}
		log.Printf("bootstrap: created API key")
	}

	return nil
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	// Get migration version and status
	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
