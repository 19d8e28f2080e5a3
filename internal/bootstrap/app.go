package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/datastore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Sanjit42/naming-service/internal/config"
	"github.com/Sanjit42/naming-service/internal/database"
	"github.com/Sanjit42/naming-service/internal/domain"
	"github.com/Sanjit42/naming-service/internal/events"
	"github.com/Sanjit42/naming-service/internal/handler"
	"github.com/Sanjit42/naming-service/internal/importer"
	"github.com/Sanjit42/naming-service/internal/logger"
	"github.com/Sanjit42/naming-service/internal/metrics"
	"github.com/Sanjit42/naming-service/internal/repository"
	"github.com/Sanjit42/naming-service/internal/repository/memstore"
	"github.com/Sanjit42/naming-service/internal/schema"
	"github.com/Sanjit42/naming-service/internal/service"
	"github.com/Sanjit42/naming-service/internal/watcher"
	"github.com/Sanjit42/naming-service/pkg/rosterexcel"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Echo *echo.Echo
	DB   *sql.DB

	DataStoreClient *datastore.Client
	Publisher       *events.Publisher
	Index           *database.InternIndex
	Metrics         *metrics.Metrics
	Layout          *rosterexcel.Layout

	Store   domain.InternStore
	Batches domain.BatchStore
	Roster  *service.RosterService
	Imports *service.ImportService
}

func NewApp() *App {
	return &App{
		Echo: echo.New(),
	}
}

// LoadConfig loads the environment and starts logging. A missing .env file
// is not an error.
func (a *App) LoadConfig(ctx context.Context) {
	err := config.LoadEnvConfig()
	logger.InitLogging(config.DefaultEnvConfig.LOG_FILE_PATH, config.DefaultEnvConfig.LOG_LEVEL)
	if err != nil {
		logger.DebugLog(ctx, "no .env file loaded: %v", err)
		return
	}
	logger.InfoLog(ctx, "Environment variables loaded successfully")
}

// Initialize loads the configuration, wires every dependency and mounts the HTTP routes.
func (a *App) Initialize(ctx context.Context) error {
	a.LoadConfig(ctx)
	if err := a.Build(ctx); err != nil {
		return err
	}

	a.RegisterMiddlewares()
	a.RegisterRoutes()
	return nil
}

// Build wires stores, search, history, events and services from
// config.DefaultEnvConfig, which must already be loaded.
func (a *App) Build(ctx context.Context) error {
	cfg := config.DefaultEnvConfig

	layout, err := rosterexcel.LoadLayout(cfg.EXPORT_LAYOUT_FILE)
	if err != nil {
		return fmt.Errorf("failed to load export layout: %w", err)
	}
	a.Layout = layout
	a.Metrics = metrics.New()

	if err := a.initStore(ctx); err != nil {
		return err
	}
	finder, err := a.initSearch(ctx)
	if err != nil {
		return err
	}
	recorder, err := a.initHistory(ctx)
	if err != nil {
		return err
	}

	validator := importer.NewRowValidator(schema.Default)
	a.Roster = service.NewRosterService(a.Store, a.Batches, validator, finder).WithMetrics(a.Metrics)

	opts := []service.ImportOption{
		service.WithRecorder(recorder),
		service.WithImportMetrics(a.Metrics),
	}
	if a.Index != nil {
		a.Roster.WithIndex(a.Index)
		opts = append(opts, service.WithIndexer(a.Index))
	}
	if cfg.NATS_URL != "" {
		pub, err := events.Connect(cfg.NATS_URL, cfg.NATS_SUBJECT)
		if err != nil {
			return fmt.Errorf("failed to initialize event publisher: %w", err)
		}
		a.Publisher = pub
		opts = append(opts, service.WithPublisher(pub))
		logger.InfoLog(ctx, "Publishing import events on %s", cfg.NATS_SUBJECT)
	}
	a.Imports = service.NewImportService(validator, a.Store, opts...)
	return nil
}

func (a *App) initStore(ctx context.Context) error {
	cfg := config.DefaultEnvConfig

	switch cfg.STORE_BACKEND {
	case config.StoreMemory:
		store := memstore.New()
		a.Store, a.Batches = store, store
		logger.InfoLog(ctx, "Using in-memory store")
		return nil

	case config.StorePostgres:
		db, err := database.NewPostgresDB(ctx, database.ConfigFromEnv())
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		a.DB = db
		a.Store = repository.NewInternRepository(db)
		a.Batches = repository.NewBatchRepository(db)
		logger.InfoLog(ctx, "Database connection established successfully")
		return nil
	}
	return fmt.Errorf("unknown store backend %q", cfg.STORE_BACKEND)
}

// initSearch returns the finder searches run against.
func (a *App) initSearch(ctx context.Context) (domain.Finder, error) {
	cfg := config.DefaultEnvConfig

	switch cfg.SEARCH_BACKEND {
	case config.SearchStore:
		return a.Store, nil

	case config.SearchElastic:
		client, err := database.NewElasticSearchClient(cfg.ELASTIC_URL)
		if err != nil {
			return nil, err
		}
		idx := database.NewInternIndex(client, cfg.ELASTIC_INDEX)
		if err := idx.EnsureIndex(ctx); err != nil {
			return nil, fmt.Errorf("failed to prepare search index: %w", err)
		}
		a.Index = idx
		logger.InfoLog(ctx, "Searching Elasticsearch index %s", cfg.ELASTIC_INDEX)
		return idx, nil
	}
	return nil, fmt.Errorf("unknown search backend %q", cfg.SEARCH_BACKEND)
}

// initHistory returns where import runs are recorded. Without a Datastore
// project the history lives in memory.
func (a *App) initHistory(ctx context.Context) (domain.ImportRunRecorder, error) {
	cfg := config.DefaultEnvConfig

	if cfg.DATASTORE_PROJECT_ID == "" {
		if r, ok := a.Store.(domain.ImportRunRecorder); ok {
			return r, nil
		}
		return memstore.New(), nil
	}

	client, err := datastore.NewClient(ctx, cfg.DATASTORE_PROJECT_ID)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize datastore: %w", err)
	}
	a.DataStoreClient = client
	logger.InfoLog(ctx, "Recording import runs in Datastore project %s", cfg.DATASTORE_PROJECT_ID)
	return database.NewDatastoreClient(client), nil
}

// Reindexer returns a reindexer for the configured search index, or nil
// when searches run against the store.
func (a *App) Reindexer() *service.Reindexer {
	if a.Index == nil {
		return nil
	}
	return service.NewReindexer(a.Store, a.Index, 500, 4)
}

// Inbox returns a watcher importing files dropped into the configured inbox.
// A file whose header is rejected counts as failed.
func (a *App) Inbox() (*watcher.Inbox, error) {
	cfg := config.DefaultEnvConfig
	return watcher.New(watcher.Config{
		Dir:      cfg.INBOX_DIR,
		Pattern:  cfg.INBOX_PATTERN,
		Debounce: cfg.INBOX_DEBOUNCE,
	}, func(ctx context.Context, name string, r io.Reader) error {
		out, err := a.Imports.ImportFile(ctx, name, r)
		if err != nil {
			return err
		}
		if !out.Result.HeaderAccepted {
			return fmt.Errorf("rejected header columns %v", out.Result.InvalidHeader)
		}
		return nil
	})
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

func (a *App) RegisterRoutes() {
	handler.RegisterRoutes(a.Echo,
		handler.NewInternHandler(a.Roster, a.Layout),
		handler.NewImportHandler(a.Imports, a.Layout),
		handler.NewBatchHandler(a.Roster),
	)
	a.Echo.GET("/metrics", echo.WrapHandler(a.Metrics.Handler()))
}

// Run serves HTTP until ctx is done, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.InfoLog(ctx, "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return a.Echo.Shutdown(shutdownCtx)
}

// Close releases every connection opened by Build.
func (a *App) Close() {
	if a.Publisher != nil {
		a.Publisher.Close()
	}
	if a.DataStoreClient != nil {
		a.DataStoreClient.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
