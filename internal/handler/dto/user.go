// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/pixmint/pixmint/internal/model"
)

// CreateUserRequest represents the request body for creating a user.
type CreateUserRequest struct {
	Email         string  `json:"email"`
	Username      *string `json:"username,omitempty"`
	FirstName     string  `json:"firstName"`
	LastName      string  `json:"lastName"`
	PhotoURL      *string `json:"photo,omitempty"`
	ExternalID    *string `json:"externalId,omitempty"`
	CreditBalance int64   `json:"creditBalance,omitempty"`
}

// UpdateUserRequest represents a partial update; absent fields are untouched.
type UpdateUserRequest struct {
	Email         *string `json:"email,omitempty"`
	Username      *string `json:"username,omitempty"`
	FirstName     *string `json:"firstName,omitempty"`
	LastName      *string `json:"lastName,omitempty"`
	PhotoURL      *string `json:"photo,omitempty"`
	CreditBalance *int64  `json:"creditBalance,omitempty"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID            string    `json:"id"`
	ExternalID    *string   `json:"externalId,omitempty"`
	Email         string    `json:"email"`
	Username      *string   `json:"username,omitempty"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	PhotoURL      *string   `json:"photo,omitempty"`
	CreditBalance int64     `json:"creditBalance"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// UserListResponse represents the full user listing.
type UserListResponse struct {
	Data []UserResponse `json:"data"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// MessageResponse carries a confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// EventAckResponse acknowledges a handled event delivery.
type EventAckResponse struct {
	Message string        `json:"message"`
	User    *UserResponse `json:"user,omitempty"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:            user.ID,
		ExternalID:    user.ExternalID,
		Email:         user.Email,
		Username:      user.Username,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		PhotoURL:      user.PhotoURL,
		CreditBalance: user.CreditBalance,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
}

// ToUserListResponse converts a slice of User models to UserListResponse.
func ToUserListResponse(users []*model.User) *UserListResponse {
	responses := make([]UserResponse, len(users))
	for i, user := range users {
		responses[i] = *ToUserResponse(user)
	}
	return &UserListResponse{Data: responses}
}
