package ports

import (
	"context"

	"gotasks/domain/core"
	"gotasks/domain/task"
)

// TaskWriter persists one validated draft. Implementations resolve the
// draft's category and tags by name, creating them when missing.
type TaskWriter interface {
	CreateTask(ctx context.Context, draft *task.Draft) (*task.Task, error)
}

// TaskRepository defines the interface for task data operations
type TaskRepository interface {
	TaskWriter

	// GetTask returns one of the user's tasks or core.ErrTaskNotFound
	GetTask(ctx context.Context, userID core.UserID, id core.TaskID) (*task.Task, error)

	// ListTasks returns the user's tasks, most recently created first
	ListTasks(ctx context.Context, userID core.UserID, filter task.Filter) ([]*task.Task, error)

	// DeleteTasks removes the selected tasks and returns how many were deleted
	DeleteTasks(ctx context.Context, userID core.UserID, selector task.DeleteSelector) (int64, error)
}
