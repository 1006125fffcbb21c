// Package testutil provides helpers shared by unit and integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/pixmint/pixmint/internal/migrations"
	"github.com/pixmint/pixmint/internal/model"
	"github.com/pixmint/pixmint/internal/repository"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// OpenTestRepository connects to the database named by DATABASE_URL, applies
// migrations, truncates both tables, and returns a repository. The test is
// skipped when DATABASE_URL is unset.
func OpenTestRepository(t testing.TB) (context.Context, *repository.Repository) {
	t.Helper()

	databaseURL := RequireEnv(t, "DATABASE_URL")
	ctx := context.Background()

	if err := migrations.Up(ctx, databaseURL); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	repo, err := repository.New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(repo.Close)

	if _, err := repo.Pool().Exec(ctx, "TRUNCATE users, images"); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}

	return ctx, repo
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a user record with sensible defaults.
func NewTestUser(t testing.TB, email string) *model.User {
	t.Helper()
	now := time.Now().UTC()
	return &model.User{
		ID:        UniqueID("user"),
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestImage creates an image record with sensible defaults.
func NewTestImage(t testing.TB, title string) *model.Image {
	t.Helper()
	now := time.Now().UTC()
	return &model.Image{
		ID:                 UniqueID("img"),
		Title:              title,
		TransformationType: "fill",
		PublicID:           UniqueID("pub"),
		SecureURL:          "https://cdn.example.com/" + title + ".png",
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// StrPtr returns a pointer to the given string.
func StrPtr(s string) *string {
	return &s
}
