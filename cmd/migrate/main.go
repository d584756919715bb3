package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"gotasks/internal"
	"gotasks/internal/config"
	"gotasks/internal/migration"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using system environment variables")
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Logging.Level))
	defer logger.Sync()

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	runner := migration.NewRunner(logger)
	if err := runner.Run(ctx, db); err != nil {
		return err
	}

	logger.Info("[Migration] version %s complete", runner.Version())
	return nil
}
