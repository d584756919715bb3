package task

import (
	"strings"
	"time"

	"gotasks/domain/core"
)

// Priority is the task urgency level
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Priorities lists valid priorities, lowest first
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// ParsePriority upper-cases and trims s and reports whether it names a priority
func ParsePriority(s string) (Priority, bool) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Priorities {
		if p == known {
			return p, true
		}
	}
	return "", false
}

// Status is the task workflow state
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// Statuses lists valid statuses
var Statuses = []Status{StatusTodo, StatusInProgress, StatusCompleted, StatusCancelled}

var statusAliases = map[string]Status{
	"TODO":        StatusTodo,
	"TO_DO":       StatusTodo,
	"OPEN":        StatusTodo,
	"NEW":         StatusTodo,
	"NOT_STARTED": StatusTodo,
	"IN_PROGRESS": StatusInProgress,
	"INPROGRESS":  StatusInProgress,
	"DOING":       StatusInProgress,
	"STARTED":     StatusInProgress,
	"ACTIVE":      StatusInProgress,
	"COMPLETED":   StatusCompleted,
	"COMPLETE":    StatusCompleted,
	"DONE":        StatusCompleted,
	"FINISHED":    StatusCompleted,
	"CANCELLED":   StatusCancelled,
	"CANCELED":    StatusCancelled,
}

// ParseStatus normalizes free-form status text ("in progress", "Done") to a Status
func ParseStatus(s string) (Status, bool) {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	st, ok := statusAliases[key]
	return st, ok
}

// Category groups a user's tasks
type Category struct {
	ID     core.CategoryID `json:"id" db:"id"`
	UserID core.UserID     `json:"userId" db:"user_id"`
	Name   string          `json:"name" db:"name"`
	Color  string          `json:"color" db:"color"`
}

// Tag is a global label shared between tasks
type Tag struct {
	ID   core.TagID `json:"id" db:"id"`
	Name string     `json:"name" db:"name"`
}

// Task is a persisted task record
type Task struct {
	ID            core.TaskID      `json:"id"`
	UserID        core.UserID      `json:"userId"`
	CategoryID    *core.CategoryID `json:"categoryId,omitempty"`
	Category      *Category        `json:"category,omitempty"`
	Title         string           `json:"title"`
	Description   *string          `json:"description,omitempty"`
	DueDate       *time.Time       `json:"dueDate,omitempty"`
	Priority      Priority         `json:"priority"`
	Status        Status           `json:"status"`
	Completed     bool             `json:"completed"`
	EstimatedTime *int             `json:"estimatedTime,omitempty"`
	Position      int              `json:"position"`
	Tags          []Tag            `json:"tags"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
	CompletedAt   *time.Time       `json:"completedAt,omitempty"`
}

// Draft is a normalized task awaiting validation and persistence.
// Imported rows and API-created tasks both pass through it.
type Draft struct {
	UserID        core.UserID `json:"-" validate:"required"`
	Title         string      `json:"title" validate:"required,max=200"`
	Description   string      `json:"description,omitempty"`
	DueDate       *time.Time  `json:"dueDate,omitempty"`
	Priority      Priority    `json:"priority" validate:"required,oneof=LOW MEDIUM HIGH URGENT"`
	Status        Status      `json:"status" validate:"required,oneof=TODO IN_PROGRESS COMPLETED CANCELLED"`
	Completed     bool        `json:"completed"`
	Category      string      `json:"category,omitempty" validate:"max=50"`
	CategoryID    string      `json:"categoryId,omitempty" validate:"omitempty,uuid"`
	EstimatedTime *int        `json:"estimatedTime,omitempty" validate:"omitnil,min=1"`
	Tags          []string    `json:"tags,omitempty" validate:"dive,required,max=50"`
}

// Summary is the compact task view returned by imports
type Summary struct {
	ID       core.TaskID `json:"id"`
	Title    string      `json:"title"`
	Priority Priority    `json:"priority"`
	Status   Status      `json:"status"`
	DueDate  *time.Time  `json:"dueDate,omitempty"`
}

// Summarize returns the compact view of t
func (t *Task) Summarize() Summary {
	return Summary{
		ID:       t.ID,
		Title:    t.Title,
		Priority: t.Priority,
		Status:   t.Status,
		DueDate:  t.DueDate,
	}
}

// Filter narrows task listings
type Filter struct {
	Status     *Status
	CategoryID *core.CategoryID
}

// DeleteSelector selects tasks for bulk deletion. Exactly one criterion applies,
// checked in the order IDs, Status, All.
type DeleteSelector struct {
	IDs    []core.TaskID
	Status *Status
	All    bool
}

// IsEmpty reports whether no criterion was given
func (s DeleteSelector) IsEmpty() bool {
	return len(s.IDs) == 0 && s.Status == nil && !s.All
}
