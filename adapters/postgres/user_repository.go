package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gotasks/domain/core"
	"gotasks/models"
	"gotasks/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var defaultUserID = uuid.MustParse(string(core.DefaultUserID))

// UserRepositoryImpl implements UserRepository for PostgreSQL
type UserRepositoryImpl struct {
	db *sqlx.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sqlx.DB) ports.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// GetOrCreateDefaultUser gets the default user or creates it if it doesn't exist
func (r *UserRepositoryImpl) GetOrCreateDefaultUser(ctx context.Context) (*models.User, error) {
	user, err := r.GetUserByID(ctx, defaultUserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, core.ErrUserNotFound) {
		return nil, err
	}

	created := models.User{
		ID:       defaultUserID,
		Email:    "default@gotasks.local",
		Name:     "Default User",
		IsActive: true,
	}

	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, email, name, is_active, created_at, updated_at)
		VALUES (:id, :email, :name, :is_active, NOW(), NOW())
	`, created)

	if err != nil {
		// Another process may have created it first
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return r.GetUserByID(ctx, defaultUserID)
		}
		return nil, err
	}

	return r.GetUserByID(ctx, defaultUserID)
}

// GetUserByID retrieves a user by their ID
func (r *UserRepositoryImpl) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `
		SELECT id, email, name, is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`, userID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetTaskStats aggregates the user's task counts
func (r *UserRepositoryImpl) GetTaskStats(ctx context.Context, userID uuid.UUID) (*models.UserTaskStats, error) {
	var stats models.UserTaskStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			COUNT(*) AS total_tasks,
			COUNT(*) FILTER (WHERE completed) AS completed_tasks,
			COUNT(*) FILTER (WHERE NOT completed AND due_date < NOW()) AS overdue_tasks
		FROM tasks
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
