package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account that owns tasks and categories
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	IsActive  bool      `json:"isActive" db:"is_active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// UserTaskStats summarizes a user's task list
type UserTaskStats struct {
	TotalTasks     int `json:"totalTasks" db:"total_tasks"`
	CompletedTasks int `json:"completedTasks" db:"completed_tasks"`
	OverdueTasks   int `json:"overdueTasks" db:"overdue_tasks"`
}

// CompletionRate is the share of completed tasks, 0 for an empty list
func (s UserTaskStats) CompletionRate() float64 {
	if s.TotalTasks == 0 {
		return 0
	}
	return float64(s.CompletedTasks) / float64(s.TotalTasks)
}
