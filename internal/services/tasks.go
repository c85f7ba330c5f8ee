package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"task-signup/backend/internal/models"
	"task-signup/backend/internal/repositories"
)

type TaskService interface {
	CreateTask(ctx context.Context, name, status string) (*models.Task, error)
	GetTasks(ctx context.Context) ([]models.Task, error)
}

type TaskServiceImpl struct {
	repo      repositories.TaskRepository
	opTimeout time.Duration
}

func NewTaskService(repo repositories.TaskRepository, opTimeout time.Duration) *TaskServiceImpl {
	return &TaskServiceImpl{repo: repo, opTimeout: opTimeout}
}

// CreateTask stores a new task unless one with the same name exists, in which
// case it returns repositories.ErrDuplicate. An empty status becomes
// models.DefaultTaskStatus.
func (s *TaskServiceImpl) CreateTask(ctx context.Context, name, status string) (*models.Task, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name", ErrMissingField)
	}
	if status == "" {
		status = models.DefaultTaskStatus
	}

	ctx, cancel := withOpTimeout(ctx, s.opTimeout)
	defer cancel()

	_, err := s.repo.FindTaskByName(ctx, name)
	switch {
	case err == nil:
		return nil, repositories.ErrDuplicate
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, fmt.Errorf("failed to look up task: %w", err)
	}

	task := &models.Task{Name: name, Status: status}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

func (s *TaskServiceImpl) GetTasks(ctx context.Context) ([]models.Task, error) {
	ctx, cancel := withOpTimeout(ctx, s.opTimeout)
	defer cancel()

	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}
