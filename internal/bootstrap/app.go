// Package bootstrap builds the application object graph from configuration.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"onboarding-backend/internal/analysis"
	"onboarding-backend/internal/docgen"
	"onboarding-backend/internal/employees"
	"onboarding-backend/internal/esign"
	"onboarding-backend/internal/filebin"
	"onboarding-backend/internal/generation"
	"onboarding-backend/internal/shared/config"
	"onboarding-backend/internal/shared/server"
	"onboarding-backend/internal/shared/storage/db"
	"onboarding-backend/internal/shared/storage/object"
	localstore "onboarding-backend/internal/shared/storage/object/local"
	s3store "onboarding-backend/internal/shared/storage/object/s3"
	"onboarding-backend/internal/shared/telemetry"
	"onboarding-backend/internal/signing"
	"onboarding-backend/internal/steps"
	"onboarding-backend/internal/templates"
)

// App holds the wired application.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.Store

	Docgen  *docgen.Client
	ESign   *esign.Client
	Filebin *filebin.Client

	GenerationRepo    generation.Repo
	GenerationService *generation.Service
	SigningService    *signing.Service
}

// Build prepares dependencies and the router. A database is optional; when
// DATABASE_URL is unset or unreachable the generated-documents index runs in
// memory.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB := buildDB(ctx, cfg)
	var repo generation.Repo
	if sqlDB != nil {
		repo = &generation.PGRepo{DB: sqlDB}
	} else {
		repo = generation.NewMemoryRepo()
	}

	docgenClient := docgen.New(docgen.Config{
		AccessToken:  cfg.Foxit.AccessToken,
		TokenURL:     cfg.Foxit.TokenURL,
		ClientID:     cfg.Foxit.ClientID,
		ClientSecret: cfg.Foxit.ClientSecret,
		Scope:        cfg.Foxit.Scope,
		GenerateURL:  cfg.Foxit.GenerateURL,
		AnalyzeURL:   cfg.Foxit.AnalyzeURL,
	})
	esignClient := esign.New(esign.Config{
		BaseURL:         cfg.ESign.BaseURL,
		AccessToken:     cfg.ESign.AccessToken,
		TokenURL:        cfg.ESign.TokenURL,
		ClientID:        cfg.ESign.ClientID,
		ClientSecret:    cfg.ESign.ClientSecret,
		Scope:           cfg.ESign.Scope,
		ExternalBaseURL: cfg.ExternalBaseURL,
	})
	filebinClient := filebin.New(filebin.Config{
		BaseURL: cfg.FilebinBaseURL,
		Bin:     cfg.FilebinBin,
	})

	templateStore := templates.NewStore(cfg.TemplatesDir)
	employeeStore := employees.NewStore(cfg.EmployeeDataDir)

	genSvc := generation.NewService(docgenClient, templateStore, employeeStore, store, repo)
	signSvc := signing.NewService(esignClient, filebinClient, genSvc, employeeStore, cfg.ESign.DemoSignerEmail)

	router := server.NewRouter(cfg, server.Deps{
		Steps:      steps.NewHandler(),
		Employees:  employees.NewHandler(employeeStore),
		Generation: generation.NewHandler(genSvc),
		Signing:    signing.NewHandler(signSvc),
		Analysis:   analysis.NewHandler(docgenClient, templateStore),
		Filebin:    filebin.NewHandler(filebinClient),
		Store:      store,
		PublicDir:  cfg.PublicDir,
	})

	return &App{
		Config:            cfg,
		Router:            router,
		DB:                sqlDB,
		Store:             store,
		Docgen:            docgenClient,
		ESign:             esignClient,
		Filebin:           filebinClient,
		GenerationRepo:    repo,
		GenerationService: genSvc,
		SigningService:    signSvc,
	}, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return nil, fmt.Errorf("build s3 store: %w", err)
		}
		return store, nil
	default:
		return localstore.New(cfg.OutputDir), nil
	}
}

// buildDB connects and migrates when DATABASE_URL is set; failures fall back
// to the in-memory index so the demo keeps working.
func buildDB(ctx context.Context, cfg config.Config) *sql.DB {
	if cfg.DatabaseURL == "" {
		return nil
	}

	conn, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		telemetry.Warn("bootstrap.db.connect-failed", map[string]any{"error": err.Error()})
		return nil
	}
	if err := db.RunMigrations(ctx, conn); err != nil {
		telemetry.Warn("bootstrap.db.migrate-failed", map[string]any{"error": err.Error()})
		_ = conn.Close()
		return nil
	}
	return conn
}
