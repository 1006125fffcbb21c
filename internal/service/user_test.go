package service

import (
	"context"
	"errors"
	"testing"

	"github.com/pixmint/pixmint/internal/testutil"
)

func TestUserService_CreateUser(t *testing.T) {
	store := testutil.NewMemUserStore()
	svc := NewUserService(store, nil)

	user, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email:     "A@B.com",
		FirstName: "A",
		LastName:  "B",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if user.ID == "" {
		t.Error("expected a generated record id")
	}
	if user.Email != "a@b.com" {
		t.Errorf("expected normalized email a@b.com, got %q", user.Email)
	}
	if user.CreditBalance != 0 {
		t.Errorf("expected default credit balance 0, got %d", user.CreditBalance)
	}
}

func TestUserService_CreateUser_MissingEmail(t *testing.T) {
	store := testutil.NewMemUserStore()
	svc := NewUserService(store, nil)

	_, err := svc.CreateUser(context.Background(), CreateUserInput{FirstName: "A"})
	if !errors.Is(err, ErrEmailRequired) {
		t.Errorf("expected ErrEmailRequired, got %v", err)
	}
	if store.Len() != 0 {
		t.Error("invalid input must not mutate the store")
	}
}

func TestUserService_CreateUser_DuplicateEmail(t *testing.T) {
	store := testutil.NewMemUserStore()
	svc := NewUserService(store, nil)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, CreateUserInput{Email: "a@b.com"}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	// Case differences collapse under normalization.
	_, err := svc.CreateUser(ctx, CreateUserInput{Email: "A@B.COM"})
	if !errors.Is(err, ErrDuplicateUser) {
		t.Errorf("expected ErrDuplicateUser, got %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("duplicate create must not add a record, got %d", store.Len())
	}
}

func TestUserService_UpdateUser(t *testing.T) {
	store := testutil.NewMemUserStore()
	svc := NewUserService(store, nil)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, CreateUserInput{Email: "a@b.com", FirstName: "A", LastName: "B"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	balance := int64(10)
	updated, err := svc.UpdateUser(ctx, user.ID, UpdateUserInput{CreditBalance: &balance})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if updated.CreditBalance != 10 {
		t.Errorf("expected credit balance 10, got %d", updated.CreditBalance)
	}
	if updated.Email != "a@b.com" {
		t.Errorf("partial update must not change email, got %q", updated.Email)
	}
}

func TestUserService_UpdateUser_NotFound(t *testing.T) {
	svc := NewUserService(testutil.NewMemUserStore(), nil)

	_, err := svc.UpdateUser(context.Background(), "missing", UpdateUserInput{})
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_DeleteUser(t *testing.T) {
	store := testutil.NewMemUserStore()
	svc := NewUserService(store, nil)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, CreateUserInput{Email: "a@b.com"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	err = svc.DeleteUser(ctx, user.ID)
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("second delete should report ErrUserNotFound, got %v", err)
	}
}
