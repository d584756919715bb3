package container

import (
	"context"
	"fmt"
	"time"

	"gotasks/adapters/datareadiness"
	"gotasks/adapters/datareadiness/coercer"
	"gotasks/adapters/excel"
	"gotasks/adapters/gsheets"
	"gotasks/adapters/memory"
	"gotasks/adapters/postgres"
	"gotasks/app"
	"gotasks/domain/task"
	"gotasks/internal"
	"gotasks/internal/config"
	"gotasks/internal/dates"
	"gotasks/internal/importer"
	"gotasks/internal/matching"
	"gotasks/internal/metrics"
	"gotasks/ports"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB       *sqlx.DB
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	// Import engine
	Matcher  *matching.ColumnMatcher
	Profiler *datareadiness.ColumnProfiler
	Pipeline *importer.Pipeline
	Reader   *excel.Reader
	Sheets   ports.SheetSource

	// Repositories (data access layer)
	UserRepo ports.UserRepository
	TaskRepo ports.TaskRepository

	// Services
	ImportService *app.ImportService
	TaskService   *app.TaskService
	UserService   *app.UserService
	FetchService  *app.SheetFetchService
}

// New creates a new dependency injection container with the import engine
// wired. Repositories and services are added by InitWithDatabase or InitInMemory.
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}

	if cfg.Metrics.Enabled {
		c.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		c.Metrics = metrics.New(c.Registry)
	}

	synonyms, err := matching.NewSynonymTable(matching.DefaultSynonyms)
	if err != nil {
		return nil, fmt.Errorf("failed to build synonym table: %w", err)
	}
	c.Matcher = matching.NewColumnMatcher(synonyms, matching.NewFuzzyMatcher(cfg.Import.FuzzyMinSimilarity))
	c.Profiler = datareadiness.NewColumnProfiler(
		coercer.NewTypeCoercer(coercer.DefaultCoercionConfig()),
		cfg.Import.SampleRows,
	)
	c.Pipeline = importer.NewPipeline(
		dates.NewParser(),
		task.NewValidator(),
		importer.WithLogger(logger),
		importer.WithMaxReturnedTasks(cfg.Import.MaxReturnedTasks),
	)
	c.Reader = excel.NewReader(logger)
	c.Sheets = gsheets.NewClient(cfg.Google, logger)
	c.FetchService = app.NewSheetFetchService(c.Sheets, logger)

	return c, nil
}

// InitWithDatabase initializes components that require database access
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	c.DB = db

	// Test database connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	c.UserRepo = postgres.NewUserRepository(db)
	c.TaskRepo = postgres.NewTaskRepository(db)
	c.initServices()

	c.Logger.Info("[Container] initialized with database connection")
	return nil
}

// InitInMemory wires services against an in-memory task store. Used by the
// CLI and by tests; there is no user repository in this mode.
func (c *Container) InitInMemory() *memory.TaskRepository {
	repo := memory.NewTaskRepository()
	c.TaskRepo = repo
	c.initServices()

	c.Logger.Debug("[Container] initialized with in-memory task store")
	return repo
}

func (c *Container) initServices() {
	validator := task.NewValidator()
	c.ImportService = app.NewImportService(c.Matcher, c.Profiler, c.Pipeline, c.Reader, c.TaskRepo, c.Metrics, c.Logger)
	c.TaskService = app.NewTaskService(c.TaskRepo, validator, c.Logger)
	if c.UserRepo != nil {
		c.UserService = app.NewUserService(c.UserRepo)
	}
}

// HealthCheck pings the database when one is configured
func (c *Container) HealthCheck(ctx context.Context) error {
	if c.DB == nil {
		return nil
	}
	return c.DB.PingContext(ctx)
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	var firstErr error
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			firstErr = fmt.Errorf("failed to close database: %w", err)
		}
	}
	// stderr sync errors are expected on some platforms
	_ = c.Logger.Sync()
	return firstErr
}
