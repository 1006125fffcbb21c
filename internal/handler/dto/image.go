package dto

import (
	"time"

	"github.com/pixmint/pixmint/internal/model"
)

// CreateImageRequest represents the request body for creating an image.
type CreateImageRequest struct {
	Title              string         `json:"title"`
	TransformationType string         `json:"transformationType"`
	PublicID           string         `json:"publicId"`
	SecureURL          string         `json:"secureUrl"`
	Width              *int           `json:"width,omitempty"`
	Height             *int           `json:"height,omitempty"`
	Config             map[string]any `json:"config,omitempty"`
	TransformationURL  *string        `json:"transformationUrl,omitempty"`
	AspectRatio        *string        `json:"aspectRatio,omitempty"`
	Color              *string        `json:"color,omitempty"`
	Prompt             *string        `json:"prompt,omitempty"`
	AuthorID           *string        `json:"author,omitempty"`
}

// UpdateImageRequest represents a partial update; absent fields are untouched.
type UpdateImageRequest struct {
	Title              *string        `json:"title,omitempty"`
	TransformationType *string        `json:"transformationType,omitempty"`
	PublicID           *string        `json:"publicId,omitempty"`
	SecureURL          *string        `json:"secureUrl,omitempty"`
	Width              *int           `json:"width,omitempty"`
	Height             *int           `json:"height,omitempty"`
	Config             map[string]any `json:"config,omitempty"`
	TransformationURL  *string        `json:"transformationUrl,omitempty"`
	AspectRatio        *string        `json:"aspectRatio,omitempty"`
	Color              *string        `json:"color,omitempty"`
	Prompt             *string        `json:"prompt,omitempty"`
	AuthorID           *string        `json:"author,omitempty"`
}

// ImageResponse represents an image in API responses.
type ImageResponse struct {
	ID                 string         `json:"id"`
	Title              string         `json:"title"`
	TransformationType string         `json:"transformationType"`
	PublicID           string         `json:"publicId"`
	SecureURL          string         `json:"secureUrl"`
	Width              *int           `json:"width,omitempty"`
	Height             *int           `json:"height,omitempty"`
	Config             map[string]any `json:"config,omitempty"`
	TransformationURL  *string        `json:"transformationUrl,omitempty"`
	AspectRatio        *string        `json:"aspectRatio,omitempty"`
	Color              *string        `json:"color,omitempty"`
	Prompt             *string        `json:"prompt,omitempty"`
	AuthorID           *string        `json:"author,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

// ImageListResponse represents the full image listing.
type ImageListResponse struct {
	Data []ImageResponse `json:"data"`
}

// ToImageResponse converts an Image model to ImageResponse DTO.
func ToImageResponse(img *model.Image) *ImageResponse {
	return &ImageResponse{
		ID:                 img.ID,
		Title:              img.Title,
		TransformationType: img.TransformationType,
		PublicID:           img.PublicID,
		SecureURL:          img.SecureURL,
		Width:              img.Width,
		Height:             img.Height,
		Config:             img.Config,
		TransformationURL:  img.TransformationURL,
		AspectRatio:        img.AspectRatio,
		Color:              img.Color,
		Prompt:             img.Prompt,
		AuthorID:           img.AuthorID,
		CreatedAt:          img.CreatedAt,
		UpdatedAt:          img.UpdatedAt,
	}
}

// ToImageListResponse converts a slice of Image models to ImageListResponse.
func ToImageListResponse(images []*model.Image) *ImageListResponse {
	responses := make([]ImageResponse, len(images))
	for i, img := range images {
		responses[i] = *ToImageResponse(img)
	}
	return &ImageListResponse{Data: responses}
}
