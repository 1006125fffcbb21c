// Package model defines domain entities for the application.
package model

import "time"

// User is a locally persisted account record. Records are written by two
// independent paths: the CRUD API and the identity-provider event stream.
// Optional fields are pointers; uniqueness applies only to non-nil values.
type User struct {
	ID            string    `json:"id"`
	ExternalID    *string   `json:"external_id,omitempty"`
	Email         string    `json:"email"`
	Username      *string   `json:"username,omitempty"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	PhotoURL      *string   `json:"photo_url,omitempty"`
	CreditBalance int64     `json:"credit_balance"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
