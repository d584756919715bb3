package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"gotasks/domain/core"
	"gotasks/domain/task"
	"gotasks/ports"
)

const defaultCategoryColor = "#3B82F6"

// taskRepository implements ports.TaskRepository for PostgreSQL
type taskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new PostgreSQL task repository
func NewTaskRepository(db *sqlx.DB) ports.TaskRepository {
	return &taskRepository{db: db}
}

type taskRow struct {
	ID            string         `db:"id"`
	UserID        string         `db:"user_id"`
	CategoryID    sql.NullString `db:"category_id"`
	CategoryName  sql.NullString `db:"category_name"`
	CategoryColor sql.NullString `db:"category_color"`
	Title         string         `db:"title"`
	Description   sql.NullString `db:"description"`
	DueDate       sql.NullTime   `db:"due_date"`
	Priority      string         `db:"priority"`
	Status        string         `db:"status"`
	Completed     bool           `db:"completed"`
	EstimatedTime sql.NullInt64  `db:"estimated_time"`
	Position      int            `db:"position"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
	CompletedAt   sql.NullTime   `db:"completed_at"`
}

type taskTagRow struct {
	TaskID string `db:"task_id"`
	TagID  string `db:"tag_id"`
	Name   string `db:"name"`
}

const selectTasks = `
	SELECT t.id, t.user_id, t.category_id, c.name AS category_name, c.color AS category_color,
		t.title, t.description, t.due_date, t.priority, t.status, t.completed,
		t.estimated_time, t.position, t.created_at, t.updated_at, t.completed_at
	FROM tasks t
	LEFT JOIN categories c ON c.id = t.category_id`

func (row *taskRow) toDomain() *task.Task {
	t := &task.Task{
		ID:        core.TaskID(row.ID),
		UserID:    core.UserID(row.UserID),
		Title:     row.Title,
		Priority:  task.Priority(row.Priority),
		Status:    task.Status(row.Status),
		Completed: row.Completed,
		Position:  row.Position,
		Tags:      []task.Tag{},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.CategoryID.Valid {
		id := core.CategoryID(row.CategoryID.String)
		t.CategoryID = &id
		t.Category = &task.Category{
			ID:     id,
			UserID: t.UserID,
			Name:   row.CategoryName.String,
			Color:  row.CategoryColor.String,
		}
	}
	if row.Description.Valid {
		desc := row.Description.String
		t.Description = &desc
	}
	if row.DueDate.Valid {
		due := row.DueDate.Time.UTC()
		t.DueDate = &due
	}
	if row.EstimatedTime.Valid {
		est := int(row.EstimatedTime.Int64)
		t.EstimatedTime = &est
	}
	if row.CompletedAt.Valid {
		at := row.CompletedAt.Time
		t.CompletedAt = &at
	}
	return t
}

// CreateTask inserts the draft, its category and tags in one transaction
func (r *taskRepository) CreateTask(ctx context.Context, draft *task.Draft) (*task.Task, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var categoryID sql.NullString
	switch {
	case draft.CategoryID != "":
		var id string
		err := tx.GetContext(ctx, &id, `SELECT id FROM categories WHERE id = $1 AND user_id = $2`, draft.CategoryID, draft.UserID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrCategoryNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get category: %w", err)
		}
		categoryID = sql.NullString{String: id, Valid: true}
	case draft.Category != "":
		id, err := connectOrCreateCategory(ctx, tx, draft.UserID, draft.Category)
		if err != nil {
			return nil, err
		}
		categoryID = sql.NullString{String: id, Valid: true}
	}

	var position int
	if err := tx.GetContext(ctx, &position, `SELECT COALESCE(MAX(position), -1) + 1 FROM tasks WHERE user_id = $1`, draft.UserID); err != nil {
		return nil, fmt.Errorf("failed to compute task position: %w", err)
	}

	now := time.Now().UTC()
	row := taskRow{
		ID:         core.NewID().String(),
		UserID:     draft.UserID.String(),
		CategoryID: categoryID,
		Title:      draft.Title,
		Priority:   string(draft.Priority),
		Status:     string(draft.Status),
		Completed:  draft.Completed,
		Position:   position,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if draft.Description != "" {
		row.Description = sql.NullString{String: draft.Description, Valid: true}
	}
	if draft.DueDate != nil {
		row.DueDate = sql.NullTime{Time: *draft.DueDate, Valid: true}
	}
	if draft.EstimatedTime != nil {
		row.EstimatedTime = sql.NullInt64{Int64: int64(*draft.EstimatedTime), Valid: true}
	}
	if draft.Completed {
		row.CompletedAt = sql.NullTime{Time: now, Valid: true}
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO tasks (
			id, user_id, category_id, title, description, due_date, priority, status,
			completed, estimated_time, position, created_at, updated_at, completed_at
		) VALUES (
			:id, :user_id, :category_id, :title, :description, :due_date, :priority, :status,
			:completed, :estimated_time, :position, :created_at, :updated_at, :completed_at
		)`, row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation
			return nil, core.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}

	for _, name := range draft.Tags {
		tagID, err := connectOrCreateTag(ctx, tx, name)
		if err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO task_tags (task_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, row.ID, tagID); err != nil {
			return nil, fmt.Errorf("failed to link tag %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit task: %w", err)
	}

	return r.GetTask(ctx, draft.UserID, core.TaskID(row.ID))
}

func connectOrCreateCategory(ctx context.Context, tx *sqlx.Tx, userID core.UserID, name string) (string, error) {
	var id string
	err := tx.GetContext(ctx, &id, `
		INSERT INTO categories (id, user_id, name, color)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`, core.NewID().String(), userID, name, defaultCategoryColor)
	if err != nil {
		return "", fmt.Errorf("failed to upsert category %q: %w", name, err)
	}
	return id, nil
}

func connectOrCreateTag(ctx context.Context, tx *sqlx.Tx, name string) (string, error) {
	var id string
	err := tx.GetContext(ctx, &id, `
		INSERT INTO tags (id, name) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`, core.NewID().String(), name)
	if err != nil {
		return "", fmt.Errorf("failed to upsert tag %q: %w", name, err)
	}
	return id, nil
}

// GetTask retrieves one of the user's tasks by ID
func (r *taskRepository) GetTask(ctx context.Context, userID core.UserID, id core.TaskID) (*task.Task, error) {
	var row taskRow
	err := r.db.GetContext(ctx, &row, selectTasks+` WHERE t.id = $1 AND t.user_id = $2`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	tasks := []*task.Task{row.toDomain()}
	if err := r.attachTags(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks[0], nil
}

// ListTasks returns the user's tasks, newest first
func (r *taskRepository) ListTasks(ctx context.Context, userID core.UserID, filter task.Filter) ([]*task.Task, error) {
	conditions := []string{"t.user_id = $1"}
	args := []interface{}{userID}

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, string(*filter.CategoryID))
		conditions = append(conditions, fmt.Sprintf("t.category_id = $%d", len(args)))
	}

	query := selectTasks + " WHERE " + strings.Join(conditions, " AND ") + " ORDER BY t.created_at DESC"

	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]*task.Task, 0, len(rows)) // empty slice, not nil, for JSON
	for i := range rows {
		tasks = append(tasks, rows[i].toDomain())
	}
	if err := r.attachTags(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) attachTags(ctx context.Context, tasks []*task.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	ids := make([]string, len(tasks))
	byID := make(map[core.TaskID]*task.Task, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID.String()
		byID[t.ID] = t
	}

	var rows []taskTagRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT tt.task_id, tg.id AS tag_id, tg.name
		FROM task_tags tt
		JOIN tags tg ON tg.id = tt.tag_id
		WHERE tt.task_id = ANY($1)
		ORDER BY tg.name`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load tags: %w", err)
	}

	for _, row := range rows {
		if t, ok := byID[core.TaskID(row.TaskID)]; ok {
			t.Tags = append(t.Tags, task.Tag{ID: core.TagID(row.TagID), Name: row.Name})
		}
	}
	return nil
}

// DeleteTasks removes tasks by IDs, by status, or all of the user's tasks
func (r *taskRepository) DeleteTasks(ctx context.Context, userID core.UserID, selector task.DeleteSelector) (int64, error) {
	var (
		result sql.Result
		err    error
	)

	switch {
	case len(selector.IDs) > 0:
		ids := make([]string, len(selector.IDs))
		for i, id := range selector.IDs {
			ids[i] = id.String()
		}
		result, err = r.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = $1 AND id = ANY($2)`, userID, pq.Array(ids))
	case selector.Status != nil:
		result, err = r.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = $1 AND status = $2`, userID, string(*selector.Status))
	case selector.All:
		result, err = r.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = $1`, userID)
	default:
		return 0, fmt.Errorf("no delete criteria given")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks: %w", err)
	}

	return result.RowsAffected()
}
