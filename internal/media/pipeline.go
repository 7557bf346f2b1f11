package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/padmasana/studio/internal/apperror"
)

// sniffLen is how many leading bytes are read for magic-byte validation
// before anything touches disk.
const sniffLen = 512

// UploadInput is one file taken from a multipart request.
type UploadInput struct {
	Filename string
	MimeType string
	Size     int64
	Content  io.Reader
}

// Destination names where an ingested asset lands.
type Destination struct {
	Category string
	EntityID string
	Kind     Kind

	// LegacyName stores the cover under the fixed name "cover.<ext>" so a
	// re-upload overwrites in place. New call sites should leave this off
	// and rely on unique names plus delete-after-success replacement.
	LegacyName bool
}

// Pipeline ingests uploads: it validates them, stages them in the temp
// area, generates variants for cover images, and moves everything into
// final placement, returning a manifest of relative paths.
type Pipeline struct {
	placer   *Placer
	maxSize  int64
	maxFiles int
}

// NewPipeline creates an upload pipeline over the given placer.
func NewPipeline(placer *Placer, maxSize int64, maxFiles int) *Pipeline {
	return &Pipeline{placer: placer, maxSize: maxSize, maxFiles: maxFiles}
}

// Placer exposes the pipeline's placer for callers that need path policy
// (entity deletion, static serving).
func (p *Pipeline) Placer() *Placer {
	return p.placer
}

// CheckFileCount validates the number of files in one request against the
// per-request ceiling.
func (p *Pipeline) CheckFileCount(n int) error {
	if n > p.maxFiles {
		return apperror.NewTooManyFiles(
			fmt.Sprintf("at most %d files can be uploaded at once", p.maxFiles))
	}
	return nil
}

// Ingest validates and stores one upload, returning its manifest.
//
// Constraints are enforced before any disk write: declared MIME type must be
// an accepted image type, the magic bytes must match it, and the size must
// be within the ceiling. The file is then streamed to the temp area,
// variants are generated there (cover kind only), and finally the original
// and its variants are renamed into their placement directory. Any failure
// after staging removes the staged files best-effort; validation failures
// leave no files behind at all.
func (p *Pipeline) Ingest(ctx context.Context, in UploadInput, dest Destination) (*AssetManifest, error) {
	if !AllowedMimeTypes[in.MimeType] {
		return nil, apperror.NewInvalidUpload("unsupported file type: " + in.MimeType)
	}
	if in.Size > p.maxSize {
		return nil, apperror.NewPayloadTooLarge(
			fmt.Sprintf("file too large; maximum size is %d MB", p.maxSize/(1024*1024)))
	}

	// Sniff the leading bytes before creating any file so a spoofed
	// Content-Type never reaches disk.
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(in.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, apperror.NewInternal(fmt.Errorf("reading upload: %w", err))
	}
	head = head[:n]
	if !ValidMagicBytes(head, in.MimeType) {
		return nil, apperror.NewInvalidUpload("file content does not match declared type")
	}

	name := UniqueName(in.Filename)
	if dest.Kind == KindCover && dest.LegacyName {
		name = CoverName(in.Filename)
	}

	tempPath, err := p.stage(head, in.Content, dest, name)
	if err != nil {
		return nil, err
	}
	staged := []string{tempPath}

	// Cover images get resized derivatives generated beside the staged
	// original before anything moves into place.
	variantTemp := map[string]string{}
	if dest.Kind == KindCover {
		variantTemp, err = GenerateVariants(tempPath)
		if err != nil {
			RemoveFiles(staged)
			return nil, apperror.NewInvalidUpload("uploaded file is not a decodable image")
		}
		for _, v := range variantTemp {
			staged = append(staged, v)
		}
	}

	finalDir := p.placer.Dir(dest.Category, dest.EntityID, dest.Kind)
	if err := p.placer.Ensure(finalDir); err != nil {
		RemoveFiles(staged)
		return nil, apperror.NewStorageFailure(err)
	}

	manifest, moved, err := p.place(tempPath, variantTemp, finalDir)
	if err != nil {
		RemoveFiles(staged)
		RemoveFiles(moved)
		return nil, apperror.NewStorageFailure(err)
	}

	slog.Info("asset ingested",
		slog.String("entity_id", dest.EntityID),
		slog.String("kind", string(dest.Kind)),
		slog.String("original", manifest.Original),
		slog.Int("variants", len(manifest.Variants)),
	)
	return manifest, nil
}

// stage streams the upload into the temp area, enforcing the byte ceiling
// on actual received bytes, not just the declared size.
func (p *Pipeline) stage(head []byte, rest io.Reader, dest Destination, name string) (string, error) {
	tempDir := p.placer.TempDir(dest.Category, dest.EntityID)
	if err := p.placer.Ensure(tempDir); err != nil {
		return "", apperror.NewStorageFailure(err)
	}

	tempPath := filepath.Join(tempDir, name)
	f, err := os.Create(tempPath)
	if err != nil {
		return "", apperror.NewStorageFailure(fmt.Errorf("creating temp file: %w", err))
	}

	written, err := writeCapped(f, head, rest, p.maxSize)
	closeErr := f.Close()

	switch {
	case err != nil:
		RemoveFiles([]string{tempPath})
		return "", err
	case closeErr != nil:
		RemoveFiles([]string{tempPath})
		return "", apperror.NewStorageFailure(fmt.Errorf("closing temp file: %w", closeErr))
	case written == 0:
		RemoveFiles([]string{tempPath})
		return "", apperror.NewInvalidUpload("uploaded file is empty")
	}
	return tempPath, nil
}

// writeCapped writes head then copies rest, failing once the ceiling is
// exceeded.
func writeCapped(w io.Writer, head []byte, rest io.Reader, maxSize int64) (int64, error) {
	if int64(len(head)) > maxSize {
		return 0, apperror.NewPayloadTooLarge(
			fmt.Sprintf("file too large; maximum size is %d MB", maxSize/(1024*1024)))
	}
	if _, err := w.Write(head); err != nil {
		return 0, apperror.NewStorageFailure(fmt.Errorf("writing upload: %w", err))
	}

	remaining := maxSize - int64(len(head))
	n, err := io.Copy(w, io.LimitReader(rest, remaining+1))
	if err != nil {
		return 0, apperror.NewStorageFailure(fmt.Errorf("writing upload: %w", err))
	}
	if n > remaining {
		return 0, apperror.NewPayloadTooLarge(
			fmt.Sprintf("file too large; maximum size is %d MB", maxSize/(1024*1024)))
	}
	return int64(len(head)) + n, nil
}

// place renames the staged original and its variants into the final
// directory and builds the manifest of root-relative paths. Returns the
// final paths moved so far so the caller can clean up on partial failure.
func (p *Pipeline) place(tempPath string, variantTemp map[string]string, finalDir string) (*AssetManifest, []string, error) {
	var moved []string

	finalOriginal := filepath.Join(finalDir, filepath.Base(tempPath))
	if err := os.Rename(tempPath, finalOriginal); err != nil {
		return nil, moved, fmt.Errorf("placing original: %w", err)
	}
	moved = append(moved, finalOriginal)

	relOriginal, err := p.placer.Rel(finalOriginal)
	if err != nil {
		return nil, moved, err
	}

	manifest := &AssetManifest{
		Original: relOriginal,
		Variants: make(map[string]string, len(variantTemp)),
	}

	for label, vTemp := range variantTemp {
		vFinal := filepath.Join(finalDir, filepath.Base(vTemp))
		if err := os.Rename(vTemp, vFinal); err != nil {
			return nil, moved, fmt.Errorf("placing %s variant: %w", label, err)
		}
		moved = append(moved, vFinal)

		rel, err := p.placer.Rel(vFinal)
		if err != nil {
			return nil, moved, err
		}
		manifest.Variants[label] = rel
	}

	return manifest, moved, nil
}

// DeleteManifest removes every file a manifest references, best-effort.
// Called when an owning entity is deleted or its asset replaced.
func (p *Pipeline) DeleteManifest(ctx context.Context, m *AssetManifest) {
	if m == nil {
		return
	}
	abs := make([]string, 0, len(m.Variants)+1)
	for _, rel := range m.Paths() {
		abs = append(abs, p.placer.Abs(rel))
	}
	RemoveFiles(abs)
}

// DeleteEntityTree removes an entity's entire cover subtree and its photo
// directory from disk. Used when the owning entity is deleted.
func (p *Pipeline) DeleteEntityTree(ctx context.Context, category, entityID string) error {
	if entityID == "" {
		return nil
	}
	for _, dir := range []string{
		p.placer.EntityDir(category, entityID),
		filepath.Dir(p.placer.PhotosDir(entityID)),
	} {
		if err := os.RemoveAll(dir); err != nil {
			return apperror.NewStorageFailure(fmt.Errorf("removing %s: %w", dir, err))
		}
	}
	return nil
}
