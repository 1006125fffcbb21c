package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pixmint/pixmint/internal/handler/dto"
	"github.com/pixmint/pixmint/internal/service"
)

// UserHandler handles user CRUD requests.
type UserHandler struct {
	service *service.UserService
	logger  *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		service: svc,
		logger:  logger.With("handler", "user"),
	}
}

// List handles GET /api/v1/users. The listing is unpaginated and returns
// every record.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list users")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserListResponse(users))
}

// Create handles POST /api/v1/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	user, err := h.service.CreateUser(r.Context(), service.CreateUserInput{
		Email:         req.Email,
		Username:      req.Username,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		PhotoURL:      req.PhotoURL,
		ExternalID:    req.ExternalID,
		CreditBalance: req.CreditBalance,
	})
	if err != nil {
		h.writeUserError(w, err, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// Update handles PUT /api/v1/users?id={id}. The target id travels out of
// band in the query string, never in the body.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "id query parameter is required")
		return
	}

	var req dto.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, service.UpdateUserInput{
		Email:         req.Email,
		Username:      req.Username,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		PhotoURL:      req.PhotoURL,
		CreditBalance: req.CreditBalance,
	})
	if err != nil {
		h.writeUserError(w, err, "failed to update user")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Delete handles DELETE /api/v1/users?id={id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "id query parameter is required")
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		h.writeUserError(w, err, "failed to delete user")
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "user deleted"})
}

// writeUserError maps service errors onto HTTP status codes.
func (h *UserHandler) writeUserError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrEmailRequired):
		writeError(w, http.StatusBadRequest, "EMAIL_REQUIRED", "email is required")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
	case errors.Is(err, service.ErrDuplicateUser):
		writeError(w, http.StatusConflict, "USER_EXISTS", "a user with that email, username, or external id already exists")
	default:
		h.logger.Error(logMsg, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", logMsg)
	}
}
