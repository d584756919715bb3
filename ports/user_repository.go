package ports

import (
	"context"

	"gotasks/models"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// GetOrCreateDefaultUser gets the single-user-mode account, creating it on first use
	GetOrCreateDefaultUser(ctx context.Context) (*models.User, error)

	// GetUserByID retrieves a user by their ID
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)

	// GetTaskStats aggregates the user's task counts
	GetTaskStats(ctx context.Context, userID uuid.UUID) (*models.UserTaskStats, error)
}
