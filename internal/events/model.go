// Package events manages the studio's schedule: workshops, classes, and
// retreats, each with an optional cover image and a gallery of photos.
package events

import (
	"strings"
	"time"

	"github.com/padmasana/studio/internal/apperror"
	"github.com/padmasana/studio/internal/media"
)

// Event is a scheduled studio offering.
type Event struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Date        time.Time             `json:"date"`
	Category    string                `json:"category"`
	Image       *media.AssetManifest  `json:"image,omitempty"`
	Photos      []Photo               `json:"photos,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// Photo is one gallery image attached to an event. Path is relative to
// the media root.
type Photo struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	Path        string    `json:"path"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// GalleryItem is a photo flattened with its owning event's details for
// the site-wide gallery view.
type GalleryItem struct {
	Photo
	EventTitle    string `json:"event_title"`
	EventCategory string `json:"event_category"`
}

// EventInput is the mutable payload for creating or updating an event.
// Date arrives as a string so the handler can bind multipart form fields
// directly.
type EventInput struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Date        string `json:"date" form:"date"`
	Category    string `json:"category" form:"category"`
}

// PhotoInput carries optional metadata alongside a photo upload.
type PhotoInput struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
}

// dateLayouts are the accepted formats for the event date field.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// Validate checks the input and returns the parsed date and normalized
// category. The category must be empty (defaults to general) or one of
// the known set.
func (in *EventInput) Validate() (time.Time, string, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))

	if len(in.Title) < 3 {
		return time.Time{}, "", apperror.NewValidation("title must be at least 3 characters")
	}
	if len(in.Description) < 10 {
		return time.Time{}, "", apperror.NewValidation("description must be at least 10 characters")
	}

	var (
		date time.Time
		err  error
	)
	for _, layout := range dateLayouts {
		if date, err = time.Parse(layout, in.Date); err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, "", apperror.NewValidation("date must be an ISO date (YYYY-MM-DD)")
	}

	category := in.Category
	if category == "" {
		category = media.CategoryGeneral
	} else if media.NormalizeCategory(category) != category {
		return time.Time{}, "", apperror.NewValidation("category must be one of: " + strings.Join(media.Categories, ", "))
	}

	return date, category, nil
}

// ListOptions holds the filters and page window for event listing.
type ListOptions struct {
	Category string
	Search   string
	From     time.Time
	To       time.Time
	Page     int
	Limit    int
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Normalize clamps the page window to sane bounds.
func (o *ListOptions) Normalize() {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = defaultPageLimit
	}
	if o.Limit > maxPageLimit {
		o.Limit = maxPageLimit
	}
}

// Offset returns the SQL offset for the current page.
func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}
