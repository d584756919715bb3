package main

import (
	"context"
	stderrors "errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gotasks/internal"
	"gotasks/internal/config"
	"gotasks/internal/container"
	"gotasks/internal/errors"
	"gotasks/internal/migration"
	"gotasks/ui"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
)

// initDatabase connects to PostgreSQL, applies the pool settings and runs migrations
func initDatabase(ctx context.Context, appConfig *config.Config, logger *internal.Logger) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to connect to database")
	}

	db.SetMaxOpenConns(appConfig.Database.MaxOpenConns)
	db.SetMaxIdleConns(appConfig.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(appConfig.Database.ConnMaxLifetime) * time.Second)

	migrator := migration.NewRunner(logger)
	if err := migrator.Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}

	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.Logging.Level))
	internal.DefaultLogger = logger
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := initDatabase(ctx, appConfig, logger)
	if err != nil {
		logger.Error("Failed to initialize database: %v", err)
		os.Exit(1)
	}

	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		logger.Error("Failed to create application container: %v", err)
		os.Exit(1)
	}
	defer appContainer.Shutdown(context.Background())

	if err := appContainer.InitWithDatabase(db); err != nil {
		logger.Error("Failed to initialize container: %v", err)
		os.Exit(1)
	}

	if appConfig.Server.SingleUserMode {
		user, err := appContainer.UserService.EnsureDefaultUser(ctx)
		if err != nil {
			logger.Error("Failed to provision default user: %v", err)
			os.Exit(1)
		}
		logger.Info("Single-user mode as %s", user.Email)
	}

	var gatherer prometheus.Gatherer
	if appConfig.Metrics.Enabled {
		gatherer = appContainer.Registry
	}

	server := ui.NewServer(ui.Options{
		Imports:        appContainer.ImportService,
		Tasks:          appContainer.TaskService,
		Users:          appContainer.UserService,
		Sheets:         appContainer.FetchService,
		Metrics:        appContainer.Metrics,
		Gatherer:       gatherer,
		HealthCheck:    appContainer.HealthCheck,
		SingleUserMode: appConfig.Server.SingleUserMode,
		MaxUploadMB:    appConfig.Import.MaxUploadMB,
		Logger:         logger,
	})

	httpServer := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting gotasks server on port %s", appConfig.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}
