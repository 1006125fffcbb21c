package handler

import (
	"log/slog"
	"net/http"
	"testing"

	"github.com/pixmint/pixmint/internal/handler/dto"
	"github.com/pixmint/pixmint/internal/service"
	"github.com/pixmint/pixmint/internal/testutil"
)

func newImageHandler(t *testing.T) *ImageHandler {
	t.Helper()
	svc := service.NewImageService(testutil.NewMemImageStore(), nil)
	return NewImageHandler(svc, slog.Default())
}

func validImageRequest() dto.CreateImageRequest {
	return dto.CreateImageRequest{
		Title:              "sunset",
		TransformationType: "restore",
		PublicID:           "pix/sunset",
		SecureURL:          "https://cdn.example.com/sunset.png",
	}
}

func TestImageHandler_CRUDRoundTrip(t *testing.T) {
	handler := newImageHandler(t)

	rec := doJSON(t, handler.Create, http.MethodPost, "/api/v1/images", validImageRequest())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created dto.ImageResponse
	decodeBody(t, rec, &created)
	if created.ID == "" {
		t.Fatal("expected an id in the create response")
	}

	rec = doJSON(t, handler.List, http.MethodGet, "/api/v1/images", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var list dto.ImageListResponse
	decodeBody(t, rec, &list)
	if len(list.Data) != 1 || list.Data[0].ID != created.ID {
		t.Fatalf("expected listing to contain the created image, got %+v", list.Data)
	}

	prompt := "a golden sunset"
	rec = doJSON(t, handler.Update, http.MethodPut, "/api/v1/images?id="+created.ID, dto.UpdateImageRequest{
		Prompt: &prompt,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated dto.ImageResponse
	decodeBody(t, rec, &updated)
	if updated.Prompt == nil || *updated.Prompt != prompt {
		t.Error("expected prompt to be updated")
	}
	if updated.Title != "sunset" {
		t.Errorf("partial update must not change title, got %q", updated.Title)
	}

	rec = doJSON(t, handler.Delete, http.MethodDelete, "/api/v1/images?id="+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, handler.Delete, http.MethodDelete, "/api/v1/images?id="+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 on repeated delete, got %d", rec.Code)
	}
}

func TestImageHandler_Create_MissingRequired(t *testing.T) {
	handler := newImageHandler(t)

	req := validImageRequest()
	req.SecureURL = ""

	rec := doJSON(t, handler.Create, http.MethodPost, "/api/v1/images", req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing secureUrl, got %d", rec.Code)
	}
}

func TestImageHandler_Update_MissingID(t *testing.T) {
	handler := newImageHandler(t)

	rec := doJSON(t, handler.Update, http.MethodPut, "/api/v1/images", dto.UpdateImageRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without id parameter, got %d", rec.Code)
	}
}
