package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pomtime/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type Task struct {
	ID              uuid.UUID  `db:"id"`
	UserID          string     `db:"user_id"`
	Title           string     `db:"title"`
	Start           time.Time  `db:"start_time"`
	End             time.Time  `db:"end_time"`
	DurationMinutes int        `db:"duration_minutes"`
	Points          int        `db:"points"`
	Recurring       bool       `db:"recurring"`
	Completed       bool       `db:"completed"`
	CompletedAt     *time.Time `db:"completed_at"`
}

func (t *Task) toModel() *model.Task {
	return &model.Task{
		ID:              t.ID,
		UserID:          t.UserID,
		Title:           t.Title,
		Start:           t.Start,
		End:             t.End,
		DurationMinutes: t.DurationMinutes,
		Points:          t.Points,
		Recurring:       t.Recurring,
		Completed:       t.Completed,
		CompletedAt:     t.CompletedAt,
	}
}

func (r *Repository) CreateTask(ctx context.Context, task *model.Task) error {
	query, args, err := squirrel.
		Insert("tasks").
		SetMap(map[string]interface{}{
			"id":               task.ID,
			"user_id":          task.UserID,
			"title":            task.Title,
			"start_time":       task.Start,
			"end_time":         task.End,
			"duration_minutes": task.DurationMinutes,
			"points":           task.Points,
			"recurring":        task.Recurring,
			"completed":        task.Completed,
			"completed_at":     task.CompletedAt,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build task insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	return nil
}

func (r *Repository) GetTaskByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task Task
	query, args, err := squirrel.
		Select("*").
		From("tasks").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &task, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return task.toModel(), nil
}

func (r *Repository) GetTasksByUser(ctx context.Context, userID string) ([]*model.Task, error) {
	query, args, err := squirrel.
		Select("*").
		From("tasks").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("start_time ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var tasks []Task
	err = r.db.SelectContext(ctx, &tasks, query, args...)
	if err != nil {
		return nil, err
	}

	out := make([]*model.Task, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].toModel()
	}

	return out, nil
}

func (r *Repository) UpdateTask(ctx context.Context, task *model.Task) error {
	query, args, err := squirrel.
		Update("tasks").
		SetMap(map[string]interface{}{
			"title":            task.Title,
			"start_time":       task.Start,
			"end_time":         task.End,
			"duration_minutes": task.DurationMinutes,
			"points":           task.Points,
			"recurring":        task.Recurring,
		}).
		Where(squirrel.Eq{"id": task.ID, "user_id": task.UserID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *Repository) DeleteTask(ctx context.Context, userID string, id uuid.UUID) error {
	query, args, err := squirrel.
		Delete("tasks").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// MarkTaskCompleted flips a task to completed, conditioned on it still
// being open so a double-complete cannot credit twice.
func (r *Repository) MarkTaskCompleted(ctx context.Context, id uuid.UUID, at time.Time) error {
	query, args, err := squirrel.
		Update("tasks").
		Set("completed", true).
		Set("completed_at", at).
		Where(squirrel.Eq{"id": id, "completed": false}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAlreadyCompleted
	}

	return nil
}
