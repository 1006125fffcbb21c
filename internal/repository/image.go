package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pixmint/pixmint/internal/model"
)

// ErrImageNotFound is returned when an image id does not exist.
var ErrImageNotFound = errors.New("image not found")

const imageColumns = `id, title, transformation_type, public_id, secure_url, width, height, config, transformation_url, aspect_ratio, color, prompt, author_id, created_at, updated_at`

// ImagePatch describes a field-level merge over a stored image.
type ImagePatch struct {
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

// CreateImage inserts a new image. Images carry no uniqueness constraints and
// the author reference is stored without validation.
func (r *Repository) CreateImage(ctx context.Context, img *model.Image) error {
	query := `
		INSERT INTO images (id, title, transformation_type, public_id, secure_url, width, height, config, transformation_url, aspect_ratio, color, prompt, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.pool.Exec(ctx, query,
		img.ID,
		img.Title,
		img.TransformationType,
		img.PublicID,
		img.SecureURL,
		img.Width,
		img.Height,
		img.Config,
		img.TransformationURL,
		img.AspectRatio,
		img.Color,
		img.Prompt,
		img.AuthorID,
		img.CreatedAt,
		img.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}

	return nil
}

// GetImageByID retrieves an image by id.
func (r *Repository) GetImageByID(ctx context.Context, id string) (*model.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images WHERE id = $1`

	img, err := scanImage(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to get image by ID: %w", err)
	}

	return img, nil
}

// ListImages returns the full image listing without pagination.
func (r *Repository) ListImages(ctx context.Context) ([]*model.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	var images []*model.Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating images: %w", err)
	}

	return images, nil
}

// UpdateImage merges the given fields over the stored record and returns the
// result. A nil Config leaves the stored payload untouched.
func (r *Repository) UpdateImage(ctx context.Context, id string, patch ImagePatch) (*model.Image, error) {
	query := `
		UPDATE images SET
			title = COALESCE($2, title),
			transformation_type = COALESCE($3, transformation_type),
			public_id = COALESCE($4, public_id),
			secure_url = COALESCE($5, secure_url),
			width = COALESCE($6, width),
			height = COALESCE($7, height),
			config = COALESCE($8, config),
			transformation_url = COALESCE($9, transformation_url),
			aspect_ratio = COALESCE($10, aspect_ratio),
			color = COALESCE($11, color),
			prompt = COALESCE($12, prompt),
			author_id = COALESCE($13, author_id),
			updated_at = $14
		WHERE id = $1
		RETURNING ` + imageColumns

	var config any
	if patch.Config != nil {
		config = patch.Config
	}

	img, err := scanImage(r.pool.QueryRow(ctx, query,
		id,
		patch.Title,
		patch.TransformationType,
		patch.PublicID,
		patch.SecureURL,
		patch.Width,
		patch.Height,
		config,
		patch.TransformationURL,
		patch.AspectRatio,
		patch.Color,
		patch.Prompt,
		patch.AuthorID,
		time.Now().UTC(),
	))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to update image: %w", err)
	}

	return img, nil
}

// DeleteImage removes an image by id.
func (r *Repository) DeleteImage(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrImageNotFound
	}

	return nil
}

// scanImage scans a single row into an Image model.
func scanImage(row pgx.Row) (*model.Image, error) {
	var img model.Image
	err := row.Scan(
		&img.ID,
		&img.Title,
		&img.TransformationType,
		&img.PublicID,
		&img.SecureURL,
		&img.Width,
		&img.Height,
		&img.Config,
		&img.TransformationURL,
		&img.AspectRatio,
		&img.Color,
		&img.Prompt,
		&img.AuthorID,
		&img.CreatedAt,
		&img.UpdatedAt,
	)
	return &img, err
}
