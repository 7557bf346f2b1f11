// Package web holds the JSON response envelope shared by every handler.
// Success responses are {"success":true,"data":...,"message":...}; error
// responses are rendered centrally by the app's error handler.
package web

import "github.com/labstack/echo/v4"

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// Pagination describes the page window of a list response.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type pagedEnvelope struct {
	Success    bool       `json:"success"`
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Data writes a success envelope carrying a payload.
func Data(c echo.Context, status int, data any) error {
	return c.JSON(status, envelope{Success: true, Data: data})
}

// DataMessage writes a success envelope carrying a payload and a
// human-readable message.
func DataMessage(c echo.Context, status int, data any, message string) error {
	return c.JSON(status, envelope{Success: true, Data: data, Message: message})
}

// Message writes a success envelope with no payload.
func Message(c echo.Context, status int, message string) error {
	return c.JSON(status, envelope{Success: true, Message: message})
}

// Paged writes a success envelope for a list payload with its pagination
// window.
func Paged(c echo.Context, status int, data any, p Pagination) error {
	return c.JSON(status, pagedEnvelope{Success: true, Data: data, Pagination: p})
}

// PageCount computes how many pages a total spans at a given limit.
func PageCount(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pages
}
