package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pixmint/pixmint/internal/metrics"
	"github.com/pixmint/pixmint/internal/model"
	"github.com/pixmint/pixmint/internal/repository"
)

// Image service errors.
var (
	ErrImageNotFound = errors.New("image not found")
	ErrInvalidImage  = errors.New("image is missing required fields")
)

// ImageService handles image business logic. Images are only ever written
// through this path; there is no event-driven mutation.
type ImageService struct {
	store   ImageStore
	metrics metrics.Recorder
}

// NewImageService creates a new ImageService.
func NewImageService(store ImageStore, recorder metrics.Recorder) *ImageService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ImageService{
		store:   store,
		metrics: recorder,
	}
}

// CreateImageInput defines input for creating an image.
type CreateImageInput struct {
	Title              string
	TransformationType string
	PublicID           string
	SecureURL          string
	Width              *int
	Height             *int
	Config             map[string]any
	TransformationURL  *string
	AspectRatio        *string
	Color              *string
	Prompt             *string
	AuthorID           *string
}

// CreateImage validates and stores a new image record. The author reference
// is stored as given; whether the user exists is deliberately not checked.
func (s *ImageService) CreateImage(ctx context.Context, input CreateImageInput) (*model.Image, error) {
	if input.Title == "" || input.TransformationType == "" || input.PublicID == "" || input.SecureURL == "" {
		return nil, ErrInvalidImage
	}

	now := time.Now().UTC()
	img := &model.Image{
		ID:                 newRecordID(),
		Title:              input.Title,
		TransformationType: input.TransformationType,
		PublicID:           input.PublicID,
		SecureURL:          input.SecureURL,
		Width:              input.Width,
		Height:             input.Height,
		Config:             input.Config,
		TransformationURL:  input.TransformationURL,
		AspectRatio:        input.AspectRatio,
		Color:              input.Color,
		Prompt:             input.Prompt,
		AuthorID:           input.AuthorID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.store.CreateImage(ctx, img); err != nil {
		return nil, fmt.Errorf("failed to create image: %w", err)
	}

	s.metrics.IncImageCreated()

	return img, nil
}

// ListImages returns the full image listing.
func (s *ImageService) ListImages(ctx context.Context) ([]*model.Image, error) {
	images, err := s.store.ListImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return images, nil
}

// UpdateImageInput defines a partial update; nil fields are left untouched.
type UpdateImageInput struct {
	Title              *string
	TransformationType *string
	PublicID           *string
	SecureURL          *string
	Width              *int
	Height             *int
	Config             map[string]any
	TransformationURL  *string
	AspectRatio        *string
	Color              *string
	Prompt             *string
	AuthorID           *string
}

// UpdateImage merges the given fields over the stored record.
func (s *ImageService) UpdateImage(ctx context.Context, id string, input UpdateImageInput) (*model.Image, error) {
	patch := repository.ImagePatch{
		Title:              input.Title,
		TransformationType: input.TransformationType,
		PublicID:           input.PublicID,
		SecureURL:          input.SecureURL,
		Width:              input.Width,
		Height:             input.Height,
		Config:             input.Config,
		TransformationURL:  input.TransformationURL,
		AspectRatio:        input.AspectRatio,
		Color:              input.Color,
		Prompt:             input.Prompt,
		AuthorID:           input.AuthorID,
	}

	img, err := s.store.UpdateImage(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to update image: %w", err)
	}

	s.metrics.IncImageUpdated()

	return img, nil
}

// DeleteImage removes an image by id. Deleting a user never cascades here;
// orphaned author references are left in place.
func (s *ImageService) DeleteImage(ctx context.Context, id string) error {
	if err := s.store.DeleteImage(ctx, id); err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			return ErrImageNotFound
		}
		return fmt.Errorf("failed to delete image: %w", err)
	}

	s.metrics.IncImageDeleted()

	return nil
}
