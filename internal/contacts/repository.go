package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/padmasana/studio/internal/apperror"
)

// ContactRepository defines the data access contract for contact
// submissions.
type ContactRepository interface {
	Create(ctx context.Context, contact *Contact) error
	FindByID(ctx context.Context, id string) (*Contact, error)
	List(ctx context.Context, status string) ([]Contact, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// contactRepository implements ContactRepository with MariaDB queries.
type contactRepository struct {
	db *sql.DB
}

// NewContactRepository creates a repository backed by the given DB pool.
func NewContactRepository(db *sql.DB) ContactRepository {
	return &contactRepository{db: db}
}

// Create inserts a contact submission.
func (r *contactRepository) Create(ctx context.Context, contact *Contact) error {
	query := `INSERT INTO contacts (id, name, email, phone, message, status, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		contact.ID, contact.Name, contact.Email, contact.Phone,
		contact.Message, contact.Status, contact.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting contact: %w", err)
	}
	return nil
}

// FindByID retrieves a single submission.
func (r *contactRepository) FindByID(ctx context.Context, id string) (*Contact, error) {
	query := `SELECT id, name, email, phone, message, status, created_at
	          FROM contacts WHERE id = ?`

	c := &Contact{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Message, &c.Status, &c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("contact not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying contact: %w", err)
	}
	return c, nil
}

// List returns submissions newest first, optionally filtered by status.
func (r *contactRepository) List(ctx context.Context, status string) ([]Contact, error) {
	query := `SELECT id, name, email, phone, message, status, created_at FROM contacts`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Message, &c.Status, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning contact row: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// UpdateStatus moves a submission through its lifecycle.
func (r *contactRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE contacts SET status = ? WHERE id = ?`, status, id,
	)
	if err != nil {
		return fmt.Errorf("updating contact status: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperror.NewNotFound("contact not found")
	}
	return nil
}
