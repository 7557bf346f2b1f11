package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Kind identifies which asset slot of an owning entity a file belongs to.
type Kind string

const (
	// KindCover is an entity's single cover image, stored under a
	// category-scoped directory and resized into variants.
	KindCover Kind = "cover"

	// KindPhotos is an entity's gallery photo collection. Photos keep
	// their original resolution and get no variants.
	KindPhotos Kind = "photos"
)

// Placer decides where assets live on disk relative to a configured root.
// It owns directory creation and relative-path bookkeeping; it never reads
// or writes file contents.
//
// Layout:
//
//	<root>/events/<category>/<entityID>/cover/<file>
//	<root>/events/<entityID>/photos/<file>
//	<root>/temp/<category>/<entityID or "temp">/<file>
//	<root>/cache/          (reserved)
type Placer struct {
	root string
}

// NewPlacer creates a Placer anchored at the given root directory.
func NewPlacer(root string) *Placer {
	return &Placer{root: root}
}

// Root returns the placer's root directory.
func (p *Placer) Root() string {
	return p.root
}

// EnsureBase creates the root directory tree: the events dir with one
// subdirectory per category, the temp area, and the reserved cache dir.
// Idempotent; safe to call on every startup.
func (p *Placer) EnsureBase() error {
	dirs := []string{
		p.root,
		filepath.Join(p.root, "events"),
		filepath.Join(p.root, "temp"),
		filepath.Join(p.root, "cache"),
	}
	for _, c := range Categories {
		dirs = append(dirs, filepath.Join(p.root, "events", c))
	}
	for _, dir := range dirs {
		if err := p.Ensure(dir); err != nil {
			return err
		}
	}
	return nil
}

// Dir returns the placement directory for an entity's assets of the given
// kind. Unknown categories fall back to "general". Cover assets are scoped
// by category so re-categorized entities get distinct directories; photo
// collections are keyed by entity ID alone.
func (p *Placer) Dir(category, entityID string, kind Kind) string {
	if kind == KindPhotos {
		return filepath.Join(p.root, "events", entityID, "photos")
	}
	return filepath.Join(p.root, "events", NormalizeCategory(category), entityID, "cover")
}

// EntityDir returns the directory subtree holding every cover asset of one
// entity within a category. Deleting the entity removes this subtree.
func (p *Placer) EntityDir(category, entityID string) string {
	return filepath.Join(p.root, "events", NormalizeCategory(category), entityID)
}

// PhotosDir returns the directory holding an entity's photo collection.
func (p *Placer) PhotosDir(entityID string) string {
	return filepath.Join(p.root, "events", entityID, "photos")
}

// TempDir returns the staging directory for in-progress uploads. Files are
// written here first and renamed into their final placement only after
// validation and variant generation succeed.
func (p *Placer) TempDir(category, entityID string) string {
	if entityID == "" {
		entityID = "temp"
	}
	return filepath.Join(p.root, "temp", NormalizeCategory(category), entityID)
}

// Ensure creates the directory and all parents if absent. Idempotent, and
// safe for concurrent callers racing on the same path: losing the
// create race is still success.
func (p *Placer) Ensure(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}

// Rel expresses an absolute path under the root as a relative path with
// forward-slash separators, the form stored in database records.
func (p *Placer) Rel(abs string) (string, error) {
	rel, err := filepath.Rel(p.root, abs)
	if err != nil {
		return "", fmt.Errorf("relativizing %s: %w", abs, err)
	}
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path %s escapes asset root", abs)
	}
	return filepath.ToSlash(rel), nil
}

// Abs resolves a stored relative path back to an absolute path under
// the root.
func (p *Placer) Abs(rel string) string {
	return filepath.Join(p.root, filepath.FromSlash(rel))
}

// UniqueName generates a collision-resistant filename preserving the
// original's extension.
func UniqueName(originalName string) string {
	return "upload_" + uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
}

// CoverName returns the legacy fixed cover filename, so a re-upload
// overwrites the cover in place. Callers relying on keeping the previous
// cover around until the new one lands must not use this mode.
func CoverName(originalName string) string {
	return "cover" + strings.ToLower(filepath.Ext(originalName))
}
