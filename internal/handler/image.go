package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pixmint/pixmint/internal/handler/dto"
	"github.com/pixmint/pixmint/internal/service"
)

// ImageHandler handles image CRUD requests.
type ImageHandler struct {
	service *service.ImageService
	logger  *slog.Logger
}

// NewImageHandler creates a new ImageHandler.
func NewImageHandler(svc *service.ImageService, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{
		service: svc,
		logger:  logger.With("handler", "image"),
	}
}

// List handles GET /api/v1/images.
func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	images, err := h.service.ListImages(r.Context())
	if err != nil {
		h.logger.Error("failed to list images", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list images")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToImageListResponse(images))
}

// Create handles POST /api/v1/images.
func (h *ImageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	img, err := h.service.CreateImage(r.Context(), service.CreateImageInput{
		Title:              req.Title,
		TransformationType: req.TransformationType,
		PublicID:           req.PublicID,
		SecureURL:          req.SecureURL,
		Width:              req.Width,
		Height:             req.Height,
		Config:             req.Config,
		TransformationURL:  req.TransformationURL,
		AspectRatio:        req.AspectRatio,
		Color:              req.Color,
		Prompt:             req.Prompt,
		AuthorID:           req.AuthorID,
	})
	if err != nil {
		h.writeImageError(w, err, "failed to create image")
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToImageResponse(img))
}

// Update handles PUT /api/v1/images?id={id}.
func (h *ImageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "id query parameter is required")
		return
	}

	var req dto.UpdateImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	img, err := h.service.UpdateImage(r.Context(), id, service.UpdateImageInput{
		Title:              req.Title,
		TransformationType: req.TransformationType,
		PublicID:           req.PublicID,
		SecureURL:          req.SecureURL,
		Width:              req.Width,
		Height:             req.Height,
		Config:             req.Config,
		TransformationURL:  req.TransformationURL,
		AspectRatio:        req.AspectRatio,
		Color:              req.Color,
		Prompt:             req.Prompt,
		AuthorID:           req.AuthorID,
	})
	if err != nil {
		h.writeImageError(w, err, "failed to update image")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToImageResponse(img))
}

// Delete handles DELETE /api/v1/images?id={id}.
func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "id query parameter is required")
		return
	}

	if err := h.service.DeleteImage(r.Context(), id); err != nil {
		h.writeImageError(w, err, "failed to delete image")
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "image deleted"})
}

func (h *ImageHandler) writeImageError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrInvalidImage):
		writeError(w, http.StatusBadRequest, "INVALID_IMAGE", "title, transformationType, publicId, and secureUrl are required")
	case errors.Is(err, service.ErrImageNotFound):
		writeError(w, http.StatusNotFound, "IMAGE_NOT_FOUND", "image not found")
	default:
		h.logger.Error(logMsg, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", logMsg)
	}
}
