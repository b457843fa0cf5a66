// Package validation runs the size and type pre-checks a file must pass before
// it is queued. Content itself is never inspected beyond type sniffing.
package validation

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/dmitrijs2005/mediavault/internal/client/models"
	"github.com/dmitrijs2005/mediavault/internal/common"
	"github.com/dmitrijs2005/mediavault/internal/filex"
)

// sniffLen is how much of a file is read for type detection.
const sniffLen = 3072

// DefaultAllowedTypes is the media the gallery can display.
var DefaultAllowedTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"video/mp4",
	"video/webm",
	"video/quicktime",
}

// Validator checks files against a size ceiling and a type allow-list.
// A zero MaxSize disables the size ceiling; an empty AllowedTypes allows any type.
type Validator struct {
	MaxSize      int64
	AllowedTypes []string
}

// Validate returns an error wrapping common.ErrInvalidInput when f is rejected.
func (v Validator) Validate(f models.FileSpec) error {
	switch {
	case f.Open == nil:
		return fmt.Errorf("%w: %s: File has no source", common.ErrInvalidInput, f.Name)
	case f.Size <= 0:
		return fmt.Errorf("%w: %s: File is empty", common.ErrInvalidInput, f.Name)
	case v.MaxSize > 0 && f.Size > v.MaxSize:
		return fmt.Errorf("%w: %s: File too large (max %s)", common.ErrInvalidInput, f.Name, formatSize(v.MaxSize))
	case len(v.AllowedTypes) > 0 && !slices.Contains(v.AllowedTypes, baseType(f.ContentType)):
		return fmt.Errorf("%w: %s: File type not supported", common.ErrInvalidInput, f.Name)
	}
	return nil
}

// DetectContentType sniffs the first bytes of r. When the content is not
// recognized as anything specific the type is inferred from name's extension.
func DetectContentType(r io.ReaderAt, name string) string {
	buf := make([]byte, sniffLen)
	n, _ := r.ReadAt(buf, 0)
	if n > 0 {
		if mt := mimetype.Detect(buf[:n]); mt != nil {
			detected := baseType(mt.String())
			if detected != filex.DefaultMimeType && detected != "text/plain" {
				return detected
			}
		}
	}
	return filex.InferMimeType(name)
}

// WithContentType returns f with ContentType filled in by sniffing its source,
// unless one is already set.
func WithContentType(f models.FileSpec) (models.FileSpec, error) {
	if f.ContentType != "" || f.Open == nil {
		return f, nil
	}
	src, err := f.Open()
	if err != nil {
		return f, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer src.Close()

	f.ContentType = DetectContentType(src, f.Name)
	return f, nil
}

func baseType(ct string) string {
	mt, _, _ := strings.Cut(ct, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

func formatSize(n int64) string {
	if n >= common.MiB && n%common.MiB == 0 {
		return fmt.Sprintf("%dMB", n/common.MiB)
	}
	return fmt.Sprintf("%d bytes", n)
}
