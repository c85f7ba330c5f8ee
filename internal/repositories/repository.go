// Package repositories persists tasks and users in one of the supported
// backends. Every backend enforces uniqueness of task names and usernames
// at the storage level and reports conflicts as ErrDuplicate.
package repositories

import (
	"context"
	"errors"

	"task-signup/backend/internal/models"
)

var (
	ErrDuplicate = errors.New("record already exists")
	ErrNotFound  = errors.New("record not found")
)

const (
	TasksCollection = "tasks"
	UsersCollection = "users"
)

type TaskRepository interface {
	FindTaskByName(ctx context.Context, name string) (*models.Task, error)
	// CreateTask assigns ID and CreatedAt on success.
	CreateTask(ctx context.Context, task *models.Task) error
	ListTasks(ctx context.Context) ([]models.Task, error)
}

type UserRepository interface {
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	// CreateUser assigns ID and CreatedAt on success.
	CreateUser(ctx context.Context, user *models.User) error
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUserByUsername(ctx context.Context, username string) error
}

// Store bundles both repositories over one backend connection.
type Store interface {
	Tasks() TaskRepository
	Users() UserRepository
	Name() string
	Health(ctx context.Context) error
	Close(ctx context.Context) error
}
