package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/padmasana/studio/internal/apperror"
	"github.com/padmasana/studio/internal/media"
	"github.com/padmasana/studio/internal/sanitize"
)

// Invalidator drops cached list and detail responses whose fingerprint
// contains a path fragment. Satisfied by httpcache.ResponseCache.
type Invalidator interface {
	Invalidate(ctx context.Context, substring string) (int, error)
}

// EventService defines the business logic contract for events. Handlers
// call these methods and never touch the repository or pipeline directly.
type EventService interface {
	List(ctx context.Context, opts ListOptions) ([]Event, int, error)
	Get(ctx context.Context, id string) (*Event, error)
	Create(ctx context.Context, input EventInput, cover *media.UploadInput) (*Event, error)
	Update(ctx context.Context, id string, input EventInput, cover *media.UploadInput) (*Event, error)
	Delete(ctx context.Context, id string) error

	AddPhoto(ctx context.Context, eventID string, upload media.UploadInput, meta PhotoInput) (*Photo, error)
	RemovePhoto(ctx context.Context, eventID, photoID string) error
	Gallery(ctx context.Context) ([]GalleryItem, error)
}

type eventService struct {
	repo     EventRepository
	pipeline *media.Pipeline
	cache    Invalidator
}

// NewEventService creates an event service with the given dependencies.
func NewEventService(repo EventRepository, pipeline *media.Pipeline, cache Invalidator) EventService {
	return &eventService{repo: repo, pipeline: pipeline, cache: cache}
}

func (s *eventService) List(ctx context.Context, opts ListOptions) ([]Event, int, error) {
	opts.Normalize()
	events, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, 0, apperror.NewInternal(fmt.Errorf("listing events: %w", err))
	}
	return events, total, nil
}

func (s *eventService) Get(ctx context.Context, id string) (*Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapRepoErr(err, "finding event")
	}
	return event, nil
}

// Create validates the input, ingests the optional cover upload, and
// persists the event. A failed insert rolls the ingested files back.
func (s *eventService) Create(ctx context.Context, input EventInput, cover *media.UploadInput) (*Event, error) {
	date, category, err := input.Validate()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	event := &Event{
		ID:          uuid.NewString(),
		Title:       sanitize.Text(input.Title),
		Description: sanitize.Text(input.Description),
		Date:        date,
		Category:    category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if cover != nil {
		manifest, err := s.pipeline.Ingest(ctx, *cover, media.Destination{
			Category: category,
			EntityID: event.ID,
			Kind:     media.KindCover,
		})
		if err != nil {
			return nil, err
		}
		event.Image = manifest
	}

	if err := s.repo.Create(ctx, event); err != nil {
		s.pipeline.DeleteManifest(ctx, event.Image)
		return nil, apperror.NewInternal(fmt.Errorf("creating event: %w", err))
	}

	s.invalidate(ctx, "/api/events")
	slog.Info("event created",
		slog.String("event_id", event.ID),
		slog.String("category", event.Category),
		slog.Bool("has_cover", event.Image != nil),
	)
	return event, nil
}

// Update replaces an event's fields and, when a new cover is uploaded,
// its image. The old cover's files are removed only after the new
// manifest is safely persisted, so a failure partway leaves the previous
// image intact.
func (s *eventService) Update(ctx context.Context, id string, input EventInput, cover *media.UploadInput) (*Event, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapRepoErr(err, "finding event")
	}

	date, category, err := input.Validate()
	if err != nil {
		return nil, err
	}

	event := &Event{
		ID:          existing.ID,
		Title:       sanitize.Text(input.Title),
		Description: sanitize.Text(input.Description),
		Date:        date,
		Category:    category,
		Image:       existing.Image,
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   time.Now().UTC(),
	}

	var oldImage *media.AssetManifest
	if cover != nil {
		manifest, err := s.pipeline.Ingest(ctx, *cover, media.Destination{
			Category: category,
			EntityID: event.ID,
			Kind:     media.KindCover,
		})
		if err != nil {
			return nil, err
		}
		oldImage = existing.Image
		event.Image = manifest
	}

	if err := s.repo.Update(ctx, event); err != nil {
		if cover != nil {
			s.pipeline.DeleteManifest(ctx, event.Image)
		}
		return nil, wrapRepoErr(err, "updating event")
	}

	if oldImage != nil {
		s.pipeline.DeleteManifest(ctx, oldImage)
	}

	s.invalidate(ctx, "/api/events")
	slog.Info("event updated",
		slog.String("event_id", event.ID),
		slog.Bool("cover_replaced", cover != nil),
	)
	event.Photos = existing.Photos
	return event, nil
}

// Delete removes the event row and then its entire media subtree. A
// failed file sweep is logged but does not resurrect the record.
func (s *eventService) Delete(ctx context.Context, id string) error {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return wrapRepoErr(err, "finding event")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return wrapRepoErr(err, "deleting event")
	}

	// The manifest may reference files under a previous category dir if
	// the event was recategorized, so remove those by recorded path; the
	// tree sweep below only covers the current category.
	s.pipeline.DeleteManifest(ctx, event.Image)
	if err := s.pipeline.DeleteEntityTree(ctx, event.Category, id); err != nil {
		slog.Warn("event media sweep failed",
			slog.String("event_id", id),
			slog.Any("error", err),
		)
	}

	s.invalidate(ctx, "/api/events", "/api/photos", "/api/gallery")
	slog.Info("event deleted", slog.String("event_id", id))
	return nil
}

// AddPhoto ingests a gallery photo for an event. Photos keep their
// original file only; no variants are generated.
func (s *eventService) AddPhoto(ctx context.Context, eventID string, upload media.UploadInput, meta PhotoInput) (*Photo, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return nil, wrapRepoErr(err, "finding event")
	}

	manifest, err := s.pipeline.Ingest(ctx, upload, media.Destination{
		Category: event.Category,
		EntityID: eventID,
		Kind:     media.KindPhotos,
	})
	if err != nil {
		return nil, err
	}

	photo := &Photo{
		ID:          uuid.NewString(),
		EventID:     eventID,
		Path:        manifest.Original,
		Title:       sanitize.Text(meta.Title),
		Description: sanitize.Text(meta.Description),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.AddPhoto(ctx, photo); err != nil {
		s.pipeline.DeleteManifest(ctx, manifest)
		return nil, apperror.NewInternal(fmt.Errorf("adding photo: %w", err))
	}

	s.invalidate(ctx, "/api/events", "/api/photos", "/api/gallery")
	slog.Info("event photo added",
		slog.String("event_id", eventID),
		slog.String("photo_id", photo.ID),
	)
	return photo, nil
}

// RemovePhoto deletes a photo row and its file.
func (s *eventService) RemovePhoto(ctx context.Context, eventID, photoID string) error {
	photo, err := s.repo.FindPhoto(ctx, eventID, photoID)
	if err != nil {
		return wrapRepoErr(err, "finding photo")
	}

	if err := s.repo.DeletePhoto(ctx, eventID, photoID); err != nil {
		return wrapRepoErr(err, "deleting photo")
	}

	s.pipeline.DeleteManifest(ctx, &media.AssetManifest{Original: photo.Path})
	s.invalidate(ctx, "/api/events", "/api/photos", "/api/gallery")
	slog.Info("event photo removed",
		slog.String("event_id", eventID),
		slog.String("photo_id", photoID),
	)
	return nil
}

func (s *eventService) Gallery(ctx context.Context) ([]GalleryItem, error) {
	items, err := s.repo.ListAllPhotos(ctx)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing gallery: %w", err))
	}
	return items, nil
}

// invalidate drops cached responses touching the given path fragments.
// Cache trouble degrades to stale reads for one TTL, so it only warns.
func (s *eventService) invalidate(ctx context.Context, fragments ...string) {
	for _, fragment := range fragments {
		if _, err := s.cache.Invalidate(ctx, fragment); err != nil {
			slog.Warn("cache invalidation failed",
				slog.String("fragment", fragment),
				slog.Any("error", err),
			)
		}
	}
}

// wrapRepoErr passes AppErrors through untouched and wraps raw repository
// failures as internal errors.
func wrapRepoErr(err error, context string) error {
	if appErr, ok := err.(*apperror.AppError); ok {
		return appErr
	}
	return apperror.NewInternal(fmt.Errorf("%s: %w", context, err))
}
