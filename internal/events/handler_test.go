package events

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/padmasana/studio/internal/media"
)

type mockService struct {
	createFn   func(context.Context, EventInput, *media.UploadInput) (*Event, error)
	addPhotoFn func(context.Context, string, media.UploadInput, PhotoInput) (*Photo, error)
}

func (m *mockService) List(context.Context, ListOptions) ([]Event, int, error) {
	return nil, 0, nil
}

func (m *mockService) Get(context.Context, string) (*Event, error) { return nil, nil }

func (m *mockService) Create(ctx context.Context, in EventInput, cover *media.UploadInput) (*Event, error) {
	return m.createFn(ctx, in, cover)
}

func (m *mockService) Update(context.Context, string, EventInput, *media.UploadInput) (*Event, error) {
	return nil, nil
}

func (m *mockService) Delete(context.Context, string) error { return nil }

func (m *mockService) AddPhoto(ctx context.Context, id string, up media.UploadInput, meta PhotoInput) (*Photo, error) {
	return m.addPhotoFn(ctx, id, up, meta)
}

func (m *mockService) RemovePhoto(context.Context, string, string) error { return nil }

func (m *mockService) Gallery(context.Context) ([]GalleryItem, error) { return nil, nil }

// multipartRequest builds a form body with valid event fields and the
// given number of file parts under one field name.
func multipartRequest(t *testing.T, target, fileField string, fileCount int) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("title", "Morning Flow")
	w.WriteField("description", "A gentle start to the day.")
	w.WriteField("date", "2026-09-01")
	w.WriteField("category", "class")
	for i := 0; i < fileCount; i++ {
		part, err := w.CreateFormFile(fileField, fmt.Sprintf("file%d.png", i))
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		part.Write([]byte("payload"))
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestCreateEventRejectsTooManyFiles(t *testing.T) {
	called := false
	svc := &mockService{
		createFn: func(context.Context, EventInput, *media.UploadInput) (*Event, error) {
			called = true
			return &Event{}, nil
		},
	}
	h := NewEventHandler(svc, newTestPipeline(t))

	req := multipartRequest(t, "/api/events", "image", 11)
	c := echo.New().NewContext(req, httptest.NewRecorder())

	err := h.CreateEvent(c)
	assertAppError(t, err, http.StatusBadRequest, "too_many_files")
	if called {
		t.Error("service ran despite the oversized file batch")
	}
}

func TestAddPhotoRejectsTooManyFiles(t *testing.T) {
	called := false
	svc := &mockService{
		addPhotoFn: func(context.Context, string, media.UploadInput, PhotoInput) (*Photo, error) {
			called = true
			return &Photo{}, nil
		},
	}
	h := NewEventHandler(svc, newTestPipeline(t))

	req := multipartRequest(t, "/api/events/E1/photos", "photo", 11)
	c := echo.New().NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("E1")

	err := h.AddPhoto(c)
	assertAppError(t, err, http.StatusBadRequest, "too_many_files")
	if called {
		t.Error("service ran despite the oversized file batch")
	}
}

func TestAddPhotoWithinFileCeilingPassesThrough(t *testing.T) {
	svc := &mockService{
		addPhotoFn: func(_ context.Context, id string, up media.UploadInput, _ PhotoInput) (*Photo, error) {
			return &Photo{EventID: id, Path: "events/E1/photos/" + up.Filename}, nil
		},
	}
	h := NewEventHandler(svc, newTestPipeline(t))

	req := multipartRequest(t, "/api/events/E1/photos", "photo", 1)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("E1")

	if err := h.AddPhoto(c); err != nil {
		t.Fatalf("AddPhoto: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
}
