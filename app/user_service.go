package app

import (
	"context"

	"gotasks/domain/core"
	"gotasks/internal/errors"
	"gotasks/models"
	"gotasks/ports"

	"github.com/google/uuid"
)

// UserService exposes account information
type UserService struct {
	repo ports.UserRepository
}

// Profile is a user with their task statistics
type Profile struct {
	User           *models.User          `json:"user"`
	Stats          *models.UserTaskStats `json:"stats"`
	CompletionRate float64               `json:"completionRate"`
}

// NewUserService creates a user service
func NewUserService(repo ports.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// EnsureDefaultUser creates the single-user-mode account if it is missing
func (s *UserService) EnsureDefaultUser(ctx context.Context) (*models.User, error) {
	user, err := s.repo.GetOrCreateDefaultUser(ctx)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	return user, nil
}

// Profile returns the user and their task statistics
func (s *UserService) Profile(ctx context.Context, userID core.UserID) (*Profile, error) {
	id, err := uuid.Parse(userID.String())
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, repoError(err)
	}

	stats, err := s.repo.GetTaskStats(ctx, id)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}

	return &Profile{
		User:           user,
		Stats:          stats,
		CompletionRate: stats.CompletionRate(),
	}, nil
}
