package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"race-weekend-api/internal/database"
	"race-weekend-api/internal/models"
	"race-weekend-api/internal/query"
	"race-weekend-api/pkg/logger"
)

// TaskPatch carries a partial update; nil fields are left untouched.
// AssigneeID uses a double pointer so "set to team-wide" (null) is
// distinguishable from "not provided".
type TaskPatch struct {
	Title       *string
	Description *string
	Category    *string
	Priority    *int
	Completed   *bool
	DueAt       *time.Time
	AssigneeID  **int64
}

// GetTaskByID loads a task row. Returns (nil, nil) when absent.
func GetTaskByID(ctx context.Context, id int64) (*models.Task, error) {
	db := database.DB(ctx)
	if db == nil {
		return nil, sql.ErrConnDone
	}
	var t models.Task
	err := db.QueryRowContext(ctx,
		`SELECT id, event_id, assignee_id, title, description, category, priority, completed, due_at, created_at
		 FROM tasks WHERE id = $1`, id).
		Scan(&t.ID, &t.EventID, &t.AssigneeID, &t.Title, &t.Description, &t.Category,
			&t.Priority, &t.Completed, &t.DueAt, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Error(ctx, "Repository GetTaskByID failed", "error", err, "id", id)
		return nil, err
	}
	return &t, nil
}

// CreateTask inserts a task and fills in its id and created_at.
func CreateTask(ctx context.Context, t *models.Task) error {
	db := database.DB(ctx)
	if db == nil {
		return sql.ErrConnDone
	}
	err := db.QueryRowContext(ctx,
		`INSERT INTO tasks (event_id, assignee_id, title, description, category, priority, completed, due_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`,
		t.EventID, t.AssigneeID, t.Title, t.Description, t.Category, t.Priority, t.Completed, t.DueAt).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		logger.Error(ctx, "Repository CreateTask failed", "error", err)
		return err
	}
	return nil
}

// UpdateTask applies a partial update and returns the fresh row.
func UpdateTask(ctx context.Context, id int64, patch TaskPatch) (*models.Task, error) {
	db := database.DB(ctx)
	if db == nil {
		return nil, sql.ErrConnDone
	}
	sets := []string{}
	args := []interface{}{}
	add := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.Priority != nil {
		add("priority", *patch.Priority)
	}
	if patch.Completed != nil {
		add("completed", *patch.Completed)
	}
	if patch.DueAt != nil {
		add("due_at", *patch.DueAt)
	}
	if patch.AssigneeID != nil {
		add("assignee_id", *patch.AssigneeID)
	}
	if len(sets) > 0 {
		args = append(args, id)
		q := fmt.Sprintf("UPDATE tasks SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
		if _, err := db.ExecContext(ctx, q, args...); err != nil {
			logger.Error(ctx, "Repository UpdateTask failed", "error", err, "id", id)
			return nil, err
		}
	}
	return GetTaskByID(ctx, id)
}

// DeleteTask removes a task by id.
func DeleteTask(ctx context.Context, id int64) error {
	db := database.DB(ctx)
	if db == nil {
		return sql.ErrConnDone
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		logger.Error(ctx, "Repository DeleteTask failed", "error", err, "id", id)
		return err
	}
	return nil
}

// ListTasks executes the filtered, sorted, paginated list query scoped
// to what the principal may see.
func ListTasks(ctx context.Context, principalID int64, params query.Params) ([]models.Task, error) {
	db := database.DB(ctx)
	if db == nil {
		return nil, sql.ErrConnDone
	}
	q, args := params.SQL(principalID)
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		logger.Error(ctx, "Repository ListTasks failed", "error", err)
		return nil, err
	}
	defer rows.Close()
	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.EventID, &t.AssigneeID, &t.Title, &t.Description, &t.Category,
			&t.Priority, &t.Completed, &t.DueAt, &t.CreatedAt); err != nil {
			logger.Error(ctx, "Repository scan task failed", "error", err)
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
