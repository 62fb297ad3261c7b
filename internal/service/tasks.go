package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pomtime/internal/model"
	"pomtime/internal/repository"

	"github.com/google/uuid"
)

type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{
		repo: repo,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, userID string, task *model.Task) (*model.Task, error) {
	if task.Title == "" {
		return nil, fmt.Errorf("task title is required")
	}

	task.ID = uuid.New()
	task.UserID = userID
	task.Completed = false
	task.CompletedAt = nil

	if task.DurationMinutes == 0 && !task.End.IsZero() {
		task.DurationMinutes = int(task.End.Sub(task.Start) / time.Minute)
	}
	if task.Points == 0 {
		task.Points = task.DurationMinutes / 30
	}

	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

func (s *TaskService) GetTasks(ctx context.Context, userID string) ([]*model.Task, error) {
	tasks, err := s.repo.GetTasksByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, userID string, task *model.Task) error {
	existing, err := s.repo.GetTaskByID(ctx, task.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	if existing.UserID != userID {
		return ErrTaskNotFound
	}
	if existing.Completed {
		return ErrAlreadyCompleted
	}

	task.UserID = userID
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

func (s *TaskService) DeleteTask(ctx context.Context, userID string, id uuid.UUID) error {
	err := s.repo.DeleteTask(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}
