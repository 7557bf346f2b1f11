package contacts

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/padmasana/studio/internal/apperror"
	"github.com/padmasana/studio/internal/web"
)

// ContactHandler translates HTTP requests into service calls.
type ContactHandler struct {
	service ContactService
}

func NewContactHandler(service ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

// Submit handles POST /api/contact, the public form endpoint.
func (h *ContactHandler) Submit(c echo.Context) error {
	var input ContactInput
	if err := c.Bind(&input); err != nil {
		return apperror.NewBadRequest("invalid contact payload")
	}

	contact, err := h.service.Submit(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return web.DataMessage(c, http.StatusCreated, contact, "Thank you, we will be in touch")
}

// List handles GET /api/contacts with an optional status filter.
func (h *ContactHandler) List(c echo.Context) error {
	contacts, err := h.service.List(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return err
	}
	if contacts == nil {
		contacts = []Contact{}
	}
	return web.Data(c, http.StatusOK, contacts)
}

// SetStatus handles PATCH /api/contacts/:id/status.
func (h *ContactHandler) SetStatus(c echo.Context) error {
	var body struct {
		Status string `json:"status" form:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return apperror.NewBadRequest("invalid status payload")
	}

	contact, err := h.service.SetStatus(c.Request().Context(), c.Param("id"), body.Status)
	if err != nil {
		return err
	}
	return web.DataMessage(c, http.StatusOK, contact, "Status updated")
}
