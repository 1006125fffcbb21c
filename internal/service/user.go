package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pixmint/pixmint/internal/metrics"
	"github.com/pixmint/pixmint/internal/model"
	"github.com/pixmint/pixmint/internal/repository"
)

// Service errors.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("user already exists")
	ErrEmailRequired = errors.New("email is required")
)

// UserService handles user business logic for the direct CRUD path.
type UserService struct {
	store   UserStore
	metrics metrics.Recorder
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		store:   store,
		metrics: recorder,
	}
}

// CreateUserInput defines input for creating a user via the API.
type CreateUserInput struct {
	Email         string
	Username      *string
	FirstName     string
	LastName      string
	PhotoURL      *string
	ExternalID    *string
	CreditBalance int64
}

// CreateUser validates and stores a new user record.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:            newRecordID(),
		ExternalID:    input.ExternalID,
		Email:         email,
		Username:      input.Username,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		PhotoURL:      input.PhotoURL,
		CreditBalance: input.CreditBalance,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserCreated()

	return user, nil
}

// ListUsers returns the full user listing.
func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateUserInput defines a partial update; nil fields are left untouched.
type UpdateUserInput struct {
	Email         *string
	Username      *string
	FirstName     *string
	LastName      *string
	PhotoURL      *string
	CreditBalance *int64
}

// UpdateUser merges the given fields over the stored record.
func (s *UserService) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*model.User, error) {
	patch := repository.UserPatch{
		Username:      input.Username,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		PhotoURL:      input.PhotoURL,
		CreditBalance: input.CreditBalance,
	}

	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if email == "" {
			return nil, ErrEmailRequired
		}
		patch.Email = &email
	}

	user, err := s.store.UpdateUser(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.metrics.IncUserUpdated()

	return user, nil
}

// DeleteUser removes a user by record id.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.metrics.IncUserDeleted()

	return nil
}

// normalizeEmail lowercases and trims an email address. Applied on every
// write path so uniqueness is case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
