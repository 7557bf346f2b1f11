package media

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestPlacerDir(t *testing.T) {
	p := NewPlacer("/srv/uploads")

	got := p.Dir("workshop", "e1", KindCover)
	want := filepath.Join("/srv/uploads", "events", "workshop", "e1", "cover")
	if got != want {
		t.Errorf("cover dir: got %q, want %q", got, want)
	}

	// Unknown category falls back to general.
	got = p.Dir("nonsense", "e1", KindCover)
	want = filepath.Join("/srv/uploads", "events", "general", "e1", "cover")
	if got != want {
		t.Errorf("fallback dir: got %q, want %q", got, want)
	}

	// Photo collections are keyed by entity alone, no category segment.
	got = p.Dir("workshop", "e1", KindPhotos)
	want = filepath.Join("/srv/uploads", "events", "e1", "photos")
	if got != want {
		t.Errorf("photos dir: got %q, want %q", got, want)
	}
}

func TestPlacerTempDir(t *testing.T) {
	p := NewPlacer("/srv/uploads")

	got := p.TempDir("retreat", "e9")
	want := filepath.Join("/srv/uploads", "temp", "retreat", "e9")
	if got != want {
		t.Errorf("temp dir: got %q, want %q", got, want)
	}

	// Entities without an ID yet stage under "temp".
	got = p.TempDir("", "")
	want = filepath.Join("/srv/uploads", "temp", "general", "temp")
	if got != want {
		t.Errorf("unowned temp dir: got %q, want %q", got, want)
	}
}

func TestPlacerRel(t *testing.T) {
	p := NewPlacer(t.TempDir())

	abs := filepath.Join(p.Root(), "events", "workshop", "e1", "cover", "a.png")
	rel, err := p.Rel(abs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rel != "events/workshop/e1/cover/a.png" {
		t.Errorf("got %q", rel)
	}
	if strings.Contains(rel, "\\") {
		t.Errorf("relative path must use forward slashes, got %q", rel)
	}

	if _, err := p.Rel("/somewhere/else/a.png"); err == nil {
		t.Error("expected error for path outside root")
	}

	if p.Abs(rel) != abs {
		t.Errorf("Abs round-trip: got %q, want %q", p.Abs(rel), abs)
	}
}

func TestPlacerEnsureIdempotent(t *testing.T) {
	p := NewPlacer(t.TempDir())
	dir := p.Dir("class", "e2", KindCover)

	if err := p.Ensure(dir); err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if err := p.Ensure(dir); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Fatalf("directory missing after ensure: %v", err)
	}
}

func TestPlacerEnsureConcurrent(t *testing.T) {
	p := NewPlacer(t.TempDir())
	dir := p.Dir("class", "e3", KindCover)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- p.Ensure(dir)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent ensure failed: %v", err)
		}
	}
}

func TestPlacerEnsureBase(t *testing.T) {
	p := NewPlacer(t.TempDir())
	if err := p.EnsureBase(); err != nil {
		t.Fatalf("ensure base: %v", err)
	}
	for _, sub := range []string{"events", "temp", "cache", "events/workshop", "events/gallery"} {
		if _, err := os.Stat(filepath.Join(p.Root(), filepath.FromSlash(sub))); err != nil {
			t.Errorf("missing base dir %s: %v", sub, err)
		}
	}
}

func TestFilenames(t *testing.T) {
	a := UniqueName("photo.JPG")
	b := UniqueName("photo.JPG")
	if a == b {
		t.Error("unique names collided")
	}
	if !strings.HasPrefix(a, "upload_") || !strings.HasSuffix(a, ".jpg") {
		t.Errorf("unexpected unique name %q", a)
	}

	if got := CoverName("team.PNG"); got != "cover.png" {
		t.Errorf("cover name: got %q", got)
	}
}
