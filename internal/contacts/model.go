// Package contacts stores inquiries submitted through the public contact
// form and the small admin workflow for triaging them.
package contacts

import (
	"net/mail"
	"strings"
	"time"

	"github.com/padmasana/studio/internal/apperror"
)

// Contact lifecycle statuses. New submissions start as "new"; the admin
// marks them read and eventually archives them.
const (
	StatusNew      = "new"
	StatusRead     = "read"
	StatusArchived = "archived"
)

// Statuses is the allowed status set, in lifecycle order.
var Statuses = []string{StatusNew, StatusRead, StatusArchived}

// ValidStatus reports whether s is a known contact status.
func ValidStatus(s string) bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Contact is one submitted inquiry.
type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ContactInput is the public form payload.
type ContactInput struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Phone   string `json:"phone" form:"phone"`
	Message string `json:"message" form:"message"`
}

const (
	minMessageLen = 10
	maxMessageLen = 5000
)

// Validate trims the input and checks the required fields.
func (in *ContactInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Message = strings.TrimSpace(in.Message)

	if in.Name == "" {
		return apperror.NewValidation("name is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return apperror.NewValidation("a valid email address is required")
	}
	if len(in.Message) < minMessageLen {
		return apperror.NewValidation("message must be at least 10 characters")
	}
	if len(in.Message) > maxMessageLen {
		return apperror.NewValidation("message is too long")
	}
	return nil
}
