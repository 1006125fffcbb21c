package model

import "time"

// Image is a generated transformation artifact. AuthorID is a soft reference
// to a User; it is stored as-is and never validated against the users table.
type Image struct {
	ID                 string         `json:"id"`
	Title              string         `json:"title"`
	TransformationType string         `json:"transformation_type"`
	PublicID           string         `json:"public_id"`
	SecureURL          string         `json:"secure_url"`
	Width              *int           `json:"width,omitempty"`
	Height             *int           `json:"height,omitempty"`
	Config             map[string]any `json:"config,omitempty"`
	TransformationURL  *string        `json:"transformation_url,omitempty"`
	AspectRatio        *string        `json:"aspect_ratio,omitempty"`
	Color              *string        `json:"color,omitempty"`
	Prompt             *string        `json:"prompt,omitempty"`
	AuthorID           *string        `json:"author_id,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}
