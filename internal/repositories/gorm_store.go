package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"task-signup/backend/internal/database"
	"task-signup/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// GormStore keeps tasks and users in a relational database (postgres or
// sqlite). Unique indexes come from the model tags via Migrate.
type GormStore struct {
	pool *database.DatabasePool
}

func NewGormStore(pool *database.DatabasePool) *GormStore {
	return &GormStore{pool: pool}
}

func (s *GormStore) Migrate() error {
	return s.pool.Migrate(&models.Task{}, &models.User{})
}

func (s *GormStore) Tasks() TaskRepository { return (*gormTaskRepository)(s) }
func (s *GormStore) Users() UserRepository { return (*gormUserRepository)(s) }
func (s *GormStore) Name() string          { return s.pool.DB.Dialector.Name() }

func (s *GormStore) Health(ctx context.Context) error {
	return s.pool.HealthContext(ctx)
}

func (s *GormStore) Close(context.Context) error {
	return s.pool.Close()
}

func (s *GormStore) db(ctx context.Context) *gorm.DB {
	return s.pool.DB.WithContext(ctx)
}

func newRowID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

type gormTaskRepository GormStore

func (r *gormTaskRepository) FindTaskByName(ctx context.Context, name string) (*models.Task, error) {
	var task models.Task
	err := (*GormStore)(r).db(ctx).Where("name = ?", name).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &task, nil
}

func (r *gormTaskRepository) CreateTask(ctx context.Context, task *models.Task) error {
	id, err := newRowID()
	if err != nil {
		return err
	}

	row := models.Task{
		ID:        id,
		Name:      task.Name,
		Status:    task.Status,
		CreatedAt: time.Now().UTC(),
	}

	if err := (*GormStore)(r).db(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert task: %w", err)
	}

	*task = row
	return nil
}

func (r *gormTaskRepository) ListTasks(ctx context.Context) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	if err := (*GormStore)(r).db(ctx).Order("created_at asc").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

type gormUserRepository GormStore

func (r *gormUserRepository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := (*GormStore)(r).db(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (r *gormUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	id, err := newRowID()
	if err != nil {
		return err
	}

	row := models.User{
		ID:        id,
		Username:  user.Username,
		Password:  user.Password,
		CreatedAt: time.Now().UTC(),
	}

	if err := (*GormStore)(r).db(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	*user = row
	return nil
}

func (r *gormUserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := (*GormStore)(r).db(ctx).Order("created_at asc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *gormUserRepository) DeleteUserByUsername(ctx context.Context, username string) error {
	result := (*GormStore)(r).db(ctx).Where("username = ?", username).Delete(&models.User{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats reports connection pool usage for /metrics.
func (s *GormStore) Stats() map[string]interface{} {
	return s.pool.Stats()
}
