package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/padmasana/studio/internal/apperror"
	"github.com/padmasana/studio/internal/media"
)

// EventRepository defines the data access contract for events and their
// photos. All SQL lives in the concrete implementation.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	FindByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, opts ListOptions) ([]Event, int, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id string) error

	AddPhoto(ctx context.Context, photo *Photo) error
	FindPhoto(ctx context.Context, eventID, photoID string) (*Photo, error)
	ListPhotos(ctx context.Context, eventID string) ([]Photo, error)
	DeletePhoto(ctx context.Context, eventID, photoID string) error
	ListAllPhotos(ctx context.Context) ([]GalleryItem, error)
}

// eventRepository implements EventRepository with MariaDB queries.
type eventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a repository backed by the given DB pool.
func NewEventRepository(db *sql.DB) EventRepository {
	return &eventRepository{db: db}
}

const eventColumns = `id, title, description, date, category, image, created_at, updated_at`

// Create inserts a new event row.
func (r *eventRepository) Create(ctx context.Context, event *Event) error {
	query := `INSERT INTO events (id, title, description, date, category, image, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.Title, event.Description, event.Date, event.Category,
		manifestColumn(event.Image), event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

// FindByID retrieves an event with its photos.
func (r *eventRepository) FindByID(ctx context.Context, id string) (*Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = ?`

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("event not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying event by id: %w", err)
	}

	photos, err := r.ListPhotos(ctx, id)
	if err != nil {
		return nil, err
	}
	event.Photos = photos
	return event, nil
}

// List returns events matching the filters, newest date first, with the
// total count for pagination. The search filter uses the FULLTEXT index
// on title and description.
func (r *eventRepository) List(ctx context.Context, opts ListOptions) ([]Event, int, error) {
	var (
		conds []string
		args  []any
	)
	if opts.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, opts.Category)
	}
	if opts.Search != "" {
		conds = append(conds, "MATCH(title, description) AGAINST (? IN NATURAL LANGUAGE MODE)")
		args = append(args, opts.Search)
	}
	if !opts.From.IsZero() {
		conds = append(conds, "date >= ?")
		args = append(args, opts.From)
	}
	if !opts.To.IsZero() {
		conds = append(conds, "date <= ?")
		args = append(args, opts.To)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting events: %w", err)
	}

	query := `SELECT ` + eventColumns + ` FROM events` + where +
		` ORDER BY date DESC, created_at DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, opts.Limit, opts.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning event row: %w", err)
		}
		events = append(events, *event)
	}
	return events, total, rows.Err()
}

// Update modifies an event's fields and manifest.
func (r *eventRepository) Update(ctx context.Context, event *Event) error {
	query := `UPDATE events SET title = ?, description = ?, date = ?, category = ?,
	          image = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		event.Title, event.Description, event.Date, event.Category,
		manifestColumn(event.Image), event.UpdatedAt, event.ID,
	)
	if err != nil {
		return fmt.Errorf("updating event: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperror.NewNotFound("event not found")
	}
	return nil
}

// Delete removes an event. FK CASCADE removes its photo rows.
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperror.NewNotFound("event not found")
	}
	return nil
}

// --- Photos ---

// AddPhoto inserts a gallery photo row for an event.
func (r *eventRepository) AddPhoto(ctx context.Context, photo *Photo) error {
	query := `INSERT INTO event_photos (id, event_id, path, title, description, created_at)
	          VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		photo.ID, photo.EventID, photo.Path, photo.Title, photo.Description, photo.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting event photo: %w", err)
	}
	return nil
}

// FindPhoto retrieves a single photo scoped to its event.
func (r *eventRepository) FindPhoto(ctx context.Context, eventID, photoID string) (*Photo, error) {
	query := `SELECT id, event_id, path, title, description, created_at
	          FROM event_photos WHERE id = ? AND event_id = ?`

	p := &Photo{}
	err := r.db.QueryRowContext(ctx, query, photoID, eventID).Scan(
		&p.ID, &p.EventID, &p.Path, &p.Title, &p.Description, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("photo not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying event photo: %w", err)
	}
	return p, nil
}

// ListPhotos returns an event's photos, newest first.
func (r *eventRepository) ListPhotos(ctx context.Context, eventID string) ([]Photo, error) {
	query := `SELECT id, event_id, path, title, description, created_at
	          FROM event_photos WHERE event_id = ? ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("listing event photos: %w", err)
	}
	defer rows.Close()

	var photos []Photo
	for rows.Next() {
		var p Photo
		if err := rows.Scan(&p.ID, &p.EventID, &p.Path, &p.Title, &p.Description, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning photo row: %w", err)
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

// DeletePhoto removes a photo row scoped to its event.
func (r *eventRepository) DeletePhoto(ctx context.Context, eventID, photoID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM event_photos WHERE id = ? AND event_id = ?`, photoID, eventID,
	)
	if err != nil {
		return fmt.Errorf("deleting event photo: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperror.NewNotFound("photo not found")
	}
	return nil
}

// ListAllPhotos returns every photo across all events joined with its
// event's title and category, newest first. Feeds the site-wide gallery.
func (r *eventRepository) ListAllPhotos(ctx context.Context) ([]GalleryItem, error) {
	query := `SELECT p.id, p.event_id, p.path, p.title, p.description, p.created_at,
	                 e.title, e.category
	          FROM event_photos p
	          INNER JOIN events e ON e.id = p.event_id
	          ORDER BY p.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing gallery photos: %w", err)
	}
	defer rows.Close()

	var items []GalleryItem
	for rows.Next() {
		var item GalleryItem
		if err := rows.Scan(
			&item.ID, &item.EventID, &item.Path, &item.Title, &item.Description,
			&item.CreatedAt, &item.EventTitle, &item.EventCategory,
		); err != nil {
			return nil, fmt.Errorf("scanning gallery row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// --- Manifest column helpers ---

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanEvent reads one event row, decoding the image column into a
// manifest. The column may hold structured JSON, a legacy bare path
// string, or NULL.
func scanEvent(s scanner) (*Event, error) {
	var (
		event Event
		image sql.NullString
	)
	err := s.Scan(
		&event.ID, &event.Title, &event.Description, &event.Date,
		&event.Category, &image, &event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if image.Valid && image.String != "" {
		m := &media.AssetManifest{}
		if err := json.Unmarshal([]byte(image.String), m); err != nil {
			// Oldest rows stored the raw path without JSON quoting.
			m = &media.AssetManifest{Original: image.String}
			slog.Warn("event image column held unquoted path", "event_id", event.ID)
		}
		event.Image = m
	}
	return &event, nil
}

// manifestColumn serializes a manifest for storage, or NULL when absent.
func manifestColumn(m *media.AssetManifest) any {
	if m == nil {
		return nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return string(data)
}
