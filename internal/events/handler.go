package events

import (
	"mime/multipart"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/padmasana/studio/internal/apperror"
	"github.com/padmasana/studio/internal/media"
	"github.com/padmasana/studio/internal/web"
)

// EventHandler translates HTTP requests into service calls.
type EventHandler struct {
	service  EventService
	pipeline *media.Pipeline
}

func NewEventHandler(service EventService, pipeline *media.Pipeline) *EventHandler {
	return &EventHandler{service: service, pipeline: pipeline}
}

// ListEvents handles GET /api/events with optional category, search,
// from/to date, page, and limit query parameters.
func (h *EventHandler) ListEvents(c echo.Context) error {
	opts := ListOptions{
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
	}
	if from := c.QueryParam("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return apperror.NewValidation("from must be an ISO date (YYYY-MM-DD)")
		}
		opts.From = t
	}
	if to := c.QueryParam("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return apperror.NewValidation("to must be an ISO date (YYYY-MM-DD)")
		}
		opts.To = t
	}
	echo.QueryParamsBinder(c).Int("page", &opts.Page).Int("limit", &opts.Limit)
	opts.Normalize()

	events, total, err := h.service.List(c.Request().Context(), opts)
	if err != nil {
		return err
	}
	if events == nil {
		events = []Event{}
	}
	return web.Paged(c, http.StatusOK, events, web.Pagination{
		Page:  opts.Page,
		Limit: opts.Limit,
		Total: total,
		Pages: web.PageCount(total, opts.Limit),
	})
}

// GetEvent handles GET /api/events/:id.
func (h *EventHandler) GetEvent(c echo.Context) error {
	event, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return web.Data(c, http.StatusOK, event)
}

// CreateEvent handles POST /api/events. The body is multipart form data
// with the event fields and an optional "image" cover file.
func (h *EventHandler) CreateEvent(c echo.Context) error {
	var input EventInput
	if err := c.Bind(&input); err != nil {
		return apperror.NewBadRequest("invalid event payload")
	}
	if err := h.checkUploadCount(c); err != nil {
		return err
	}

	cover, cleanup, err := optionalFormUpload(c, "image")
	if err != nil {
		return err
	}
	defer cleanup()

	event, err := h.service.Create(c.Request().Context(), input, cover)
	if err != nil {
		return err
	}
	return web.DataMessage(c, http.StatusCreated, event, "Event created")
}

// UpdateEvent handles PUT /api/events/:id.
func (h *EventHandler) UpdateEvent(c echo.Context) error {
	var input EventInput
	if err := c.Bind(&input); err != nil {
		return apperror.NewBadRequest("invalid event payload")
	}
	if err := h.checkUploadCount(c); err != nil {
		return err
	}

	cover, cleanup, err := optionalFormUpload(c, "image")
	if err != nil {
		return err
	}
	defer cleanup()

	event, err := h.service.Update(c.Request().Context(), c.Param("id"), input, cover)
	if err != nil {
		return err
	}
	return web.DataMessage(c, http.StatusOK, event, "Event updated")
}

// DeleteEvent handles DELETE /api/events/:id.
func (h *EventHandler) DeleteEvent(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return web.Message(c, http.StatusOK, "Event deleted")
}

// AddPhoto handles POST /api/events/:id/photos with a required "photo"
// file and optional title/description fields.
func (h *EventHandler) AddPhoto(c echo.Context) error {
	var meta PhotoInput
	if err := c.Bind(&meta); err != nil {
		return apperror.NewBadRequest("invalid photo payload")
	}
	if err := h.checkUploadCount(c); err != nil {
		return err
	}

	upload, cleanup, err := requiredFormUpload(c, "photo")
	if err != nil {
		return err
	}
	defer cleanup()

	photo, err := h.service.AddPhoto(c.Request().Context(), c.Param("id"), *upload, meta)
	if err != nil {
		return err
	}
	return web.DataMessage(c, http.StatusCreated, photo, "Photo added")
}

// DeletePhoto handles DELETE /api/events/:eventID/photos/:photoID.
func (h *EventHandler) DeletePhoto(c echo.Context) error {
	err := h.service.RemovePhoto(c.Request().Context(), c.Param("id"), c.Param("photoID"))
	if err != nil {
		return err
	}
	return web.Message(c, http.StatusOK, "Photo deleted")
}

// Gallery handles GET /api/photos and GET /api/gallery: every photo
// across all events, newest first.
func (h *EventHandler) Gallery(c echo.Context) error {
	items, err := h.service.Gallery(c.Request().Context())
	if err != nil {
		return err
	}
	if items == nil {
		items = []GalleryItem{}
	}
	return web.Data(c, http.StatusOK, items)
}

// --- Multipart helpers ---

// checkUploadCount counts every file part in the multipart body and
// enforces the per-request ceiling before any file is opened. Requests
// without a multipart body pass through.
func (h *EventHandler) checkUploadCount(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	n := 0
	for _, files := range form.File {
		n += len(files)
	}
	return h.pipeline.CheckFileCount(n)
}

// optionalFormUpload opens the named file field if present. The cleanup
// func closes the underlying file and is safe when no file was sent.
func optionalFormUpload(c echo.Context, field string) (*media.UploadInput, func(), error) {
	file, err := c.FormFile(field)
	if err != nil {
		// Absent field or no multipart body at all: not an error here.
		return nil, func() {}, nil
	}
	return openFormFile(file)
}

// requiredFormUpload opens the named file field or fails with 400.
func requiredFormUpload(c echo.Context, field string) (*media.UploadInput, func(), error) {
	file, err := c.FormFile(field)
	if err != nil {
		return nil, nil, apperror.NewInvalidUpload("missing file field: " + field)
	}
	return openFormFile(file)
}

func openFormFile(file *multipart.FileHeader) (*media.UploadInput, func(), error) {
	src, err := file.Open()
	if err != nil {
		return nil, nil, apperror.NewInvalidUpload("could not read uploaded file")
	}
	in := &media.UploadInput{
		Filename: file.Filename,
		MimeType: file.Header.Get("Content-Type"),
		Size:     file.Size,
		Content:  src,
	}
	return in, func() { src.Close() }, nil
}
