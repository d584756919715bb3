// Package memory holds in-process repositories for dry runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gotasks/domain/core"
	"gotasks/domain/task"
	"gotasks/ports"
)

// TaskRepository is a mutex-guarded in-memory ports.TaskRepository
type TaskRepository struct {
	mu         sync.RWMutex
	tasks      map[core.TaskID]*task.Task
	categories map[string]*task.Category // keyed by user + name
	tags       map[string]task.Tag
	positions  map[core.UserID]int
	now        func() time.Time
}

var _ ports.TaskRepository = (*TaskRepository)(nil)

// NewTaskRepository creates an empty repository
func NewTaskRepository() *TaskRepository {
	return &TaskRepository{
		tasks:      make(map[core.TaskID]*task.Task),
		categories: make(map[string]*task.Category),
		tags:       make(map[string]task.Tag),
		positions:  make(map[core.UserID]int),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func categoryKey(userID core.UserID, name string) string {
	return userID.String() + "\x00" + name
}

// CreateTask stores the draft, creating its category and tags by name
func (r *TaskRepository) CreateTask(ctx context.Context, draft *task.Draft) (*task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	t := &task.Task{
		ID:            core.TaskID(core.NewID()),
		UserID:        draft.UserID,
		Title:         draft.Title,
		DueDate:       draft.DueDate,
		Priority:      draft.Priority,
		Status:        draft.Status,
		Completed:     draft.Completed,
		EstimatedTime: draft.EstimatedTime,
		Position:      r.positions[draft.UserID],
		Tags:          []task.Tag{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if draft.Description != "" {
		desc := draft.Description
		t.Description = &desc
	}
	if draft.Completed {
		t.CompletedAt = &now
	}

	switch {
	case draft.CategoryID != "":
		cat := r.findCategory(draft.UserID, core.CategoryID(draft.CategoryID))
		if cat == nil {
			return nil, core.ErrCategoryNotFound
		}
		t.CategoryID, t.Category = &cat.ID, cat
	case draft.Category != "":
		key := categoryKey(draft.UserID, draft.Category)
		cat, ok := r.categories[key]
		if !ok {
			cat = &task.Category{
				ID:     core.CategoryID(core.NewID()),
				UserID: draft.UserID,
				Name:   draft.Category,
				Color:  "#3B82F6",
			}
			r.categories[key] = cat
		}
		t.CategoryID, t.Category = &cat.ID, cat
	}

	for _, name := range draft.Tags {
		tag, ok := r.tags[name]
		if !ok {
			tag = task.Tag{ID: core.TagID(core.NewID()), Name: name}
			r.tags[name] = tag
		}
		t.Tags = append(t.Tags, tag)
	}

	r.positions[draft.UserID]++
	r.tasks[t.ID] = t
	return cloneTask(t), nil
}

func (r *TaskRepository) findCategory(userID core.UserID, id core.CategoryID) *task.Category {
	for _, c := range r.categories {
		if c.ID == id && c.UserID == userID {
			return c
		}
	}
	return nil
}

// GetTask returns one of the user's tasks
func (r *TaskRepository) GetTask(ctx context.Context, userID core.UserID, id core.TaskID) (*task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return nil, core.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

// ListTasks returns the user's tasks, newest first
func (r *TaskRepository) ListTasks(ctx context.Context, userID core.UserID, filter task.Filter) ([]*task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*task.Task, 0)
	for _, t := range r.tasks {
		if t.UserID != userID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *filter.CategoryID) {
			continue
		}
		out = append(out, cloneTask(t))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Position > out[j].Position
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteTasks removes the selected tasks
func (r *TaskRepository) DeleteTasks(ctx context.Context, userID core.UserID, selector task.DeleteSelector) (int64, error) {
	if selector.IsEmpty() {
		return 0, fmt.Errorf("no delete criteria given")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make(map[core.TaskID]bool, len(selector.IDs))
	for _, id := range selector.IDs {
		ids[id] = true
	}

	var deleted int64
	for id, t := range r.tasks {
		if t.UserID != userID {
			continue
		}
		var match bool
		switch {
		case len(ids) > 0:
			match = ids[id]
		case selector.Status != nil:
			match = t.Status == *selector.Status
		default:
			match = selector.All
		}
		if match {
			delete(r.tasks, id)
			deleted++
		}
	}
	return deleted, nil
}

// Len returns how many tasks are stored
func (r *TaskRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

func cloneTask(t *task.Task) *task.Task {
	c := *t
	c.Tags = append([]task.Tag{}, t.Tags...)
	if t.Category != nil {
		cat := *t.Category
		c.Category = &cat
	}
	return &c
}
