package contacts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/padmasana/studio/internal/apperror"
	"github.com/padmasana/studio/internal/sanitize"
)

// ContactService defines the business logic contract for contact
// submissions.
type ContactService interface {
	Submit(ctx context.Context, input ContactInput) (*Contact, error)
	List(ctx context.Context, status string) ([]Contact, error)
	SetStatus(ctx context.Context, id, status string) (*Contact, error)
}

type contactService struct {
	repo ContactRepository
}

// NewContactService creates a contact service with the given repository.
func NewContactService(repo ContactRepository) ContactService {
	return &contactService{repo: repo}
}

// Submit validates and stores a public form submission. Free-text fields
// are stripped of markup before they touch the database.
func (s *contactService) Submit(ctx context.Context, input ContactInput) (*Contact, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	contact := &Contact{
		ID:        uuid.NewString(),
		Name:      sanitize.Text(input.Name),
		Email:     input.Email,
		Phone:     sanitize.Text(input.Phone),
		Message:   sanitize.Text(input.Message),
		Status:    StatusNew,
		CreatedAt: time.Now().UTC(),
	}
	if contact.Name == "" || len(contact.Message) < minMessageLen {
		// Input that was only markup fails validation after stripping.
		return nil, apperror.NewValidation("message must contain plain text")
	}

	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("storing contact: %w", err))
	}

	slog.Info("contact submitted", slog.String("contact_id", contact.ID))
	return contact, nil
}

// List returns submissions newest first, optionally filtered by status.
func (s *contactService) List(ctx context.Context, status string) ([]Contact, error) {
	if status != "" && !ValidStatus(status) {
		return nil, apperror.NewValidation("status must be one of: " + strings.Join(Statuses, ", "))
	}
	contacts, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing contacts: %w", err))
	}
	return contacts, nil
}

// SetStatus moves a submission to a new lifecycle status and returns the
// updated record.
func (s *contactService) SetStatus(ctx context.Context, id, status string) (*Contact, error) {
	if !ValidStatus(status) {
		return nil, apperror.NewValidation("status must be one of: " + strings.Join(Statuses, ", "))
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if appErr, ok := err.(*apperror.AppError); ok {
			return nil, appErr
		}
		return nil, apperror.NewInternal(fmt.Errorf("updating contact status: %w", err))
	}

	contact, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if appErr, ok := err.(*apperror.AppError); ok {
			return nil, appErr
		}
		return nil, apperror.NewInternal(fmt.Errorf("reloading contact: %w", err))
	}

	slog.Info("contact status changed",
		slog.String("contact_id", id),
		slog.String("status", status),
	)
	return contact, nil
}
