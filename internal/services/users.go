package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"task-signup/backend/internal/models"
	"task-signup/backend/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher turns a submitted password into the value persisted on the
// user record.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// PlainHasher persists passwords as submitted.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) { return password, nil }

type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

type UserService interface {
	Signup(ctx context.Context, username, password string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, username string) error
}

type UserServiceImpl struct {
	repo      repositories.UserRepository
	hasher    PasswordHasher
	opTimeout time.Duration
}

// NewUserService wires the user rules to repo. A nil hasher stores
// passwords verbatim.
func NewUserService(repo repositories.UserRepository, hasher PasswordHasher, opTimeout time.Duration) *UserServiceImpl {
	if hasher == nil {
		hasher = PlainHasher{}
	}
	return &UserServiceImpl{repo: repo, hasher: hasher, opTimeout: opTimeout}
}

func (s *UserServiceImpl) Signup(ctx context.Context, username, password string) (*models.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("%w: username", ErrMissingField)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password", ErrMissingField)
	}

	ctx, cancel := withOpTimeout(ctx, s.opTimeout)
	defer cancel()

	_, err := s.repo.FindUserByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, repositories.ErrDuplicate
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	stored, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Username: username, Password: stored}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *UserServiceImpl) GetUsers(ctx context.Context) ([]models.User, error) {
	ctx, cancel := withOpTimeout(ctx, s.opTimeout)
	defer cancel()

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// DeleteUser removes the user named username, or returns
// repositories.ErrNotFound when there is none.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, username string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: username", ErrMissingField)
	}

	ctx, cancel := withOpTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.repo.DeleteUserByUsername(ctx, username); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
