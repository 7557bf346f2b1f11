// Package media implements the asset ingestion pipeline: upload validation,
// filesystem placement, and multi-resolution variant generation. Uploaded
// originals live under a configured root with relative paths recorded in the
// database, always using forward slashes regardless of host OS.
package media

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// AssetManifest records one uploaded original and its generated derivatives.
// Original is always present; Variants may be any subset of the configured
// size labels, because per-label generation failures are tolerated.
//
// The manifest serializes as a flat object: {"original": ..., "thumbnail":
// ..., "preview": ...}. Historical records stored the manifest as a bare
// string path; UnmarshalJSON accepts both forms during the migration window,
// and MarshalJSON always emits the structured form.
type AssetManifest struct {
	Original string
	Variants map[string]string
}

// MarshalJSON emits the flattened structured form.
func (m AssetManifest) MarshalJSON() ([]byte, error) {
	flat := make(map[string]string, len(m.Variants)+1)
	flat["original"] = m.Original
	for label, path := range m.Variants {
		flat[label] = path
	}
	return json.Marshal(flat)
}

// UnmarshalJSON accepts either the structured object form or the legacy
// bare-string form (the path of the original with no variants).
func (m *AssetManifest) UnmarshalJSON(data []byte) error {
	var legacy string
	if err := json.Unmarshal(data, &legacy); err == nil {
		m.Original = legacy
		m.Variants = nil
		return nil
	}

	var flat map[string]string
	if err := json.Unmarshal(data, &flat); err != nil {
		return fmt.Errorf("manifest is neither a path string nor an object: %w", err)
	}

	m.Original = flat["original"]
	m.Variants = make(map[string]string)
	for label, path := range flat {
		if label == "original" {
			continue
		}
		m.Variants[label] = path
	}
	return nil
}

// Paths returns every relative path the manifest references, original first.
// Used when deleting or replacing an asset.
func (m *AssetManifest) Paths() []string {
	paths := make([]string, 0, len(m.Variants)+1)
	if m.Original != "" {
		paths = append(paths, m.Original)
	}
	for _, p := range m.Variants {
		paths = append(paths, p)
	}
	return paths
}

// --- Categories ---

// Categories is the fixed set of event categories used for placement.
var Categories = []string{"workshop", "class", "retreat", "general", "gallery"}

// CategoryGeneral is the fallback for unknown or absent categories.
const CategoryGeneral = "general"

// NormalizeCategory maps unknown or empty category values to "general".
func NormalizeCategory(category string) string {
	for _, c := range Categories {
		if category == c {
			return c
		}
	}
	return CategoryGeneral
}

// --- MIME type validation ---

// AllowedMimeTypes defines which MIME types are accepted for upload.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// MimeToExtension maps MIME types to file extensions.
var MimeToExtension = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ExtensionFor returns the canonical extension for a MIME type, falling
// back to the extension of the supplied filename.
func ExtensionFor(mimeType, filename string) string {
	if ext, ok := MimeToExtension[mimeType]; ok {
		return ext
	}
	return strings.ToLower(filepath.Ext(filename))
}

// ValidMagicBytes checks that the file content's magic bytes match the
// declared MIME type. Prevents uploading non-image files with a spoofed
// Content-Type header.
func ValidMagicBytes(data []byte, declaredMIME string) bool {
	if len(data) < 4 {
		return false
	}
	switch declaredMIME {
	case "image/jpeg":
		return len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF
	case "image/png":
		return len(data) >= 8 &&
			data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 &&
			data[4] == 0x0D && data[5] == 0x0A && data[6] == 0x1A && data[7] == 0x0A
	case "image/gif":
		return len(data) >= 6 && string(data[:3]) == "GIF"
	case "image/webp":
		return len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP"
	default:
		return false
	}
}
