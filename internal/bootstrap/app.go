package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"coverage-backend/internal/assessments"
	"coverage-backend/internal/queue"
	"coverage-backend/internal/reports"
	"coverage-backend/internal/services/health"
	"coverage-backend/internal/shared/config"
	"coverage-backend/internal/shared/server"
	"coverage-backend/internal/shared/storage/db"
	"coverage-backend/internal/shared/storage/object"
	localstore "coverage-backend/internal/shared/storage/object/local"
	s3store "coverage-backend/internal/shared/storage/object/s3"
)

// App holds shared dependencies for the HTTP and worker entry points.
type App struct {
	Config             config.Config
	Router             *gin.Engine
	DB                 *sql.DB
	Store              object.Store
	Queue              queue.Client
	Reports            *reports.Service
	AssessmentsRepo    assessments.Repo
	AssessmentsService *assessments.Service
	AssessmentHandler  *assessments.Handler
	Health             *health.Service
}

// Build prepares dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}
	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            app.Config,
		AssessmentHandler: app.AssessmentHandler,
		Health:            app.Health,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		sqlDB, err = db.Shared(ctx, cfg.DatabaseURL, db.RuntimeOptions())
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.RuntimeOptions())
	}
	if err != nil {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if cfg.IsDevLike() {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.QueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.QueueURL, cfg.AWSRegion)
}

func buildServices(app *App) error {
	var repo assessments.Repo
	if app.DB != nil {
		repo = &assessments.PGRepo{DB: app.DB}
	} else {
		repo = assessments.NewMemoryRepo()
	}

	app.Reports = reports.NewService(app.Store)
	app.AssessmentsRepo = repo
	app.AssessmentsService = assessments.NewService(repo, app.Reports, app.Queue)
	app.AssessmentHandler = assessments.NewHandler(app.AssessmentsService)
	app.Health = health.NewService(app.DB)

	if app.AssessmentHandler == nil || app.AssessmentsService == nil {
		return errors.New("failed to initialize handlers")
	}
	return nil
}
