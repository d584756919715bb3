package app

import (
	"context"
	stderrors "errors"
	"strings"

	"gotasks/domain/core"
	"gotasks/domain/task"
	"gotasks/internal"
	"gotasks/internal/errors"
	"gotasks/ports"
)

// TaskService handles task CRUD on behalf of a user
type TaskService struct {
	repo      ports.TaskRepository
	validator *task.Validator
	logger    *internal.Logger
}

// NewTaskService creates a task service
func NewTaskService(repo ports.TaskRepository, validator *task.Validator, logger *internal.Logger) *TaskService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &TaskService{
		repo:      repo,
		validator: validator,
		logger:    logger,
	}
}

// List returns the user's tasks matching filter
func (s *TaskService) List(ctx context.Context, userID core.UserID, filter task.Filter) ([]*task.Task, error) {
	tasks, err := s.repo.ListTasks(ctx, userID, filter)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}
	return tasks, nil
}

// Get returns one of the user's tasks
func (s *TaskService) Get(ctx context.Context, userID core.UserID, id core.TaskID) (*task.Task, error) {
	t, err := s.repo.GetTask(ctx, userID, id)
	if err != nil {
		return nil, repoError(err)
	}
	return t, nil
}

// Create validates draft and stores it. Missing priority and status default
// to MEDIUM and TODO.
func (s *TaskService) Create(ctx context.Context, userID core.UserID, draft *task.Draft) (*task.Task, error) {
	draft.UserID = userID
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Category = strings.TrimSpace(draft.Category)
	if draft.Priority == "" {
		draft.Priority = task.PriorityMedium
	}
	if draft.Status == "" {
		draft.Status = task.StatusTodo
	}

	if reasons := s.validator.Validate(draft); len(reasons) > 0 {
		return nil, errors.ValidationError(strings.Join(reasons, "; "))
	}

	created, err := s.repo.CreateTask(ctx, draft)
	if err != nil {
		return nil, repoError(err)
	}

	s.logger.Debug("[Tasks] created %s for user %s", created.ID, userID)
	return created, nil
}

// Delete removes the selected tasks and returns how many were removed
func (s *TaskService) Delete(ctx context.Context, userID core.UserID, selector task.DeleteSelector) (int64, error) {
	if selector.IsEmpty() {
		return 0, errors.InvalidInput("ids, status or all is required")
	}

	deleted, err := s.repo.DeleteTasks(ctx, userID, selector)
	if err != nil {
		return 0, errors.WithCode(errors.CodeDatabaseError, err)
	}

	s.logger.Info("[Tasks] deleted %d tasks for user %s", deleted, userID)
	return deleted, nil
}

func repoError(err error) error {
	if stderrors.Is(err, core.ErrNotFound) {
		return errors.WithCode(errors.CodeNotFound, err)
	}
	return errors.WithCode(errors.CodeDatabaseError, err)
}
