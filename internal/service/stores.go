// Package service provides business logic for the application.
package service

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/pixmint/pixmint/internal/model"
	"github.com/pixmint/pixmint/internal/repository"
)

// UserStore is the persistence surface the user service and reconciler need.
// *repository.Repository satisfies it; tests substitute an in-memory fake.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	UpdateUser(ctx context.Context, id string, patch repository.UserPatch) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
	UpsertUserByExternalID(ctx context.Context, draft *model.User, patch repository.UserPatch) (*model.User, error)
	DeleteUserByExternalID(ctx context.Context, externalID string) (bool, error)
}

// ImageStore is the persistence surface the image service needs.
type ImageStore interface {
	CreateImage(ctx context.Context, img *model.Image) error
	GetImageByID(ctx context.Context, id string) (*model.Image, error)
	ListImages(ctx context.Context) ([]*model.Image, error)
	UpdateImage(ctx context.Context, id string, patch repository.ImagePatch) (*model.Image, error)
	DeleteImage(ctx context.Context, id string) error
}

// newRecordID generates a ULID for new records.
func newRecordID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
