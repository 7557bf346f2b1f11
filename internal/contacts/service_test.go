package contacts

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/padmasana/studio/internal/apperror"
)

type mockRepo struct {
	createFn       func(ctx context.Context, contact *Contact) error
	findFn         func(ctx context.Context, id string) (*Contact, error)
	listFn         func(ctx context.Context, status string) ([]Contact, error)
	updateStatusFn func(ctx context.Context, id, status string) error
}

func (m *mockRepo) Create(ctx context.Context, contact *Contact) error {
	return m.createFn(ctx, contact)
}

func (m *mockRepo) FindByID(ctx context.Context, id string) (*Contact, error) {
	return m.findFn(ctx, id)
}

func (m *mockRepo) List(ctx context.Context, status string) ([]Contact, error) {
	return m.listFn(ctx, status)
}

func (m *mockRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return m.updateStatusFn(ctx, id, status)
}

func assertAppError(t *testing.T, err error, wantCode int, wantType string) {
	t.Helper()
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error %v is not an AppError", err)
	}
	if appErr.Code != wantCode || appErr.Type != wantType {
		t.Errorf("got %d/%s, want %d/%s", appErr.Code, appErr.Type, wantCode, wantType)
	}
}

func validInput() ContactInput {
	return ContactInput{
		Name:    "Asha Verma",
		Email:   "asha@example.com",
		Phone:   "+31 6 1234 5678",
		Message: "I would like to join the beginners course in October.",
	}
}

func TestSubmitStoresSanitizedContact(t *testing.T) {
	var stored *Contact
	repo := &mockRepo{
		createFn: func(_ context.Context, contact *Contact) error {
			stored = contact
			return nil
		},
	}
	svc := NewContactService(repo)

	in := validInput()
	in.Message = "Hello <script>alert(1)</script> I would like to join the course."
	contact, err := svc.Submit(context.Background(), in)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if stored == nil || stored.ID != contact.ID {
		t.Fatal("contact was not persisted")
	}
	if strings.Contains(contact.Message, "<script>") {
		t.Errorf("message not sanitized: %q", contact.Message)
	}
	if contact.Status != StatusNew {
		t.Errorf("status = %q, want %q", contact.Status, StatusNew)
	}
	if contact.Email != "asha@example.com" {
		t.Errorf("email = %q", contact.Email)
	}
}

func TestSubmitValidation(t *testing.T) {
	repo := &mockRepo{
		createFn: func(context.Context, *Contact) error {
			t.Error("repo must not be called for invalid input")
			return nil
		},
	}
	svc := NewContactService(repo)

	tests := []struct {
		name   string
		mutate func(*ContactInput)
	}{
		{"missing name", func(in *ContactInput) { in.Name = "  " }},
		{"bad email", func(in *ContactInput) { in.Email = "not-an-email" }},
		{"short message", func(in *ContactInput) { in.Message = "hi" }},
		{"oversized message", func(in *ContactInput) { in.Message = strings.Repeat("a", 5001) }},
		{"markup-only message", func(in *ContactInput) { in.Message = "<b></b><i></i><script>xx</script>" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := svc.Submit(context.Background(), in)
			assertAppError(t, err, 400, "validation_error")
		})
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	repo := &mockRepo{
		listFn: func(_ context.Context, status string) ([]Contact, error) {
			return []Contact{{ID: "C1", Status: status}}, nil
		},
	}
	svc := NewContactService(repo)

	if _, err := svc.List(context.Background(), "spam"); err == nil {
		t.Error("unknown status filter accepted")
	}

	contacts, err := svc.List(context.Background(), StatusRead)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(contacts) != 1 || contacts[0].Status != StatusRead {
		t.Errorf("contacts = %+v", contacts)
	}
}

func TestSetStatus(t *testing.T) {
	current := &Contact{ID: "C1", Status: StatusNew}
	repo := &mockRepo{
		updateStatusFn: func(_ context.Context, id, status string) error {
			if id != "C1" {
				return apperror.NewNotFound("contact not found")
			}
			current.Status = status
			return nil
		},
		findFn: func(context.Context, string) (*Contact, error) { return current, nil },
	}
	svc := NewContactService(repo)

	contact, err := svc.SetStatus(context.Background(), "C1", StatusArchived)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if contact.Status != StatusArchived {
		t.Errorf("status = %q", contact.Status)
	}

	_, err = svc.SetStatus(context.Background(), "C1", "deleted")
	assertAppError(t, err, 400, "validation_error")

	_, err = svc.SetStatus(context.Background(), "missing", StatusRead)
	assertAppError(t, err, 404, "not_found")
}
