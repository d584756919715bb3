package migration

import (
	"context"

	"gotasks/domain/core"
	"gotasks/internal"
	"gotasks/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// step is one idempotent schema statement
type step struct {
	name string
	sql  string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
	steps   []step
	logger  *internal.Logger
}

// NewRunner creates a new migration runner
func NewRunner(logger *internal.Logger) *MigrationRunner {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &MigrationRunner{
		version: "1.0.0",
		steps:   schemaSteps,
		logger:  logger,
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Steps returns the names of the migration steps in execution order
func (r *MigrationRunner) Steps() []string {
	names := make([]string, len(r.steps))
	for i, s := range r.steps {
		names[i] = s.name
	}
	return names
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for _, s := range r.steps {
		if _, err := db.ExecContext(ctx, s.sql); err != nil {
			return errors.Wrapf(errors.WithCode(errors.CodeDatabaseError, err), "failed to %s", s.name)
		}
		r.logger.Debug("[Migration] %s", s.name)
	}

	if err := r.insertDefaultUser(ctx, db); err != nil {
		r.logger.Warn("[Migration] failed to insert default user: %v", err)
	}

	r.logger.Info("[Migration] schema %s applied (%d steps)", r.version, len(r.steps))
	return nil
}

func (r *MigrationRunner) insertDefaultUser(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, is_active)
		VALUES ($1, 'default@gotasks.local', 'Default User', true)
		ON CONFLICT (id) DO NOTHING
	`, core.DefaultUserID.String())
	return err
}

var schemaSteps = []step{
	{"create users table", `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			name VARCHAR(100) NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`},
	{"create categories table", `
		CREATE TABLE IF NOT EXISTS categories (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name VARCHAR(50) NOT NULL,
			color VARCHAR(7) NOT NULL DEFAULT '#3B82F6',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			UNIQUE (user_id, name)
		)`},
	{"create tasks table", `
		CREATE TABLE IF NOT EXISTS tasks (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			category_id UUID REFERENCES categories(id) ON DELETE SET NULL,
			title VARCHAR(200) NOT NULL,
			description TEXT,
			due_date TIMESTAMP WITH TIME ZONE,
			priority VARCHAR(10) NOT NULL DEFAULT 'MEDIUM'
				CHECK (priority IN ('LOW', 'MEDIUM', 'HIGH', 'URGENT')),
			status VARCHAR(15) NOT NULL DEFAULT 'TODO'
				CHECK (status IN ('TODO', 'IN_PROGRESS', 'COMPLETED', 'CANCELLED')),
			completed BOOLEAN NOT NULL DEFAULT false,
			estimated_time INTEGER CHECK (estimated_time > 0),
			position INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			completed_at TIMESTAMP WITH TIME ZONE
		)`},
	{"create tags table", `
		CREATE TABLE IF NOT EXISTS tags (
			id UUID PRIMARY KEY,
			name VARCHAR(50) UNIQUE NOT NULL
		)`},
	{"create task_tags table", `
		CREATE TABLE IF NOT EXISTS task_tags (
			task_id UUID NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
			tag_id UUID NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
			PRIMARY KEY (task_id, tag_id)
		)`},
	{"create indexes", `
		CREATE INDEX IF NOT EXISTS idx_tasks_user_created ON tasks(user_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_tasks_user_status ON tasks(user_id, status);
		CREATE INDEX IF NOT EXISTS idx_tasks_category ON tasks(category_id);
		CREATE INDEX IF NOT EXISTS idx_task_tags_tag ON task_tags(tag_id)`},
}
