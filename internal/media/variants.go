package media

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	// Register the WebP decoder; imaging registers JPEG/PNG/GIF itself.
	_ "golang.org/x/image/webp"
)

// variantQuality is the JPEG quality used for every generated variant.
const variantQuality = 80

// VariantSize is one target box for derivative generation.
type VariantSize struct {
	Label  string
	Width  int
	Height int
}

// VariantSizes is the fixed set of derivatives generated for cover images,
// smallest first.
var VariantSizes = []VariantSize{
	{Label: "thumbnail", Width: 150, Height: 150},
	{Label: "preview", Width: 300, Height: 300},
	{Label: "medium", Width: 600, Height: 600},
	{Label: "large", Width: 1200, Height: 1200},
}

// VariantPath returns the sibling path a derivative of the given label is
// written to: <basename>_<label><ext>.
func VariantPath(originalPath, label string) string {
	dir := filepath.Dir(originalPath)
	ext := filepath.Ext(originalPath)
	base := filepath.Base(originalPath)
	base = base[:len(base)-len(ext)]
	return filepath.Join(dir, fmt.Sprintf("%s_%s%s", base, label, ext))
}

// GenerateVariants produces the configured resized derivatives of the source
// image, written beside it. Each variant exactly fills its target box:
// the source is scaled and center-cropped, then re-encoded as JPEG.
// The decode/encode round trip does not carry EXIF or other metadata
// into the derivatives; only the untouched original keeps it.
//
// Per-label failures are logged and that label omitted from the result; the
// call errors only if the source itself cannot be opened, after removing any
// derivatives already written. Callers treat a partial result as success.
func GenerateVariants(sourcePath string) (map[string]string, error) {
	src, err := imaging.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("opening source image %s: %w", sourcePath, err)
	}

	variants := make(map[string]string)
	for _, size := range VariantSizes {
		outPath := VariantPath(sourcePath, size.Label)
		if err := writeVariant(src, size, outPath); err != nil {
			slog.Warn("variant generation failed",
				slog.String("source", sourcePath),
				slog.String("label", size.Label),
				slog.Any("error", err),
			)
			continue
		}
		variants[size.Label] = outPath
	}
	return variants, nil
}

// writeVariant resizes with center-crop fit and encodes one derivative.
// The output keeps the original's extension in its name but is always
// JPEG-encoded at fixed quality, matching what clients expect to fetch.
func writeVariant(src image.Image, size VariantSize, outPath string) error {
	resized := imaging.Fill(src, size.Width, size.Height, imaging.Center, imaging.Lanczos)

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating variant file: %w", err)
	}
	defer f.Close()

	if err := imaging.Encode(f, resized, imaging.JPEG, imaging.JPEGQuality(variantQuality)); err != nil {
		os.Remove(outPath)
		return fmt.Errorf("encoding variant: %w", err)
	}
	return nil
}

// RemoveFiles deletes the given files best-effort, logging failures instead
// of raising them. Used for cleanup after partial upload failures.
func RemoveFiles(paths []string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			slog.Warn("cleanup failed",
				slog.String("path", p),
				slog.Any("error", err),
			)
		}
	}
}
