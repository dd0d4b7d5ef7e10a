// Package selector obtains the path of the image a user wants restored.
// An empty path with a nil error means the user cancelled.
package selector

import (
	"context"
	"path/filepath"
	"strings"
)

// Selector returns an absolute image path, or "" when nothing was chosen
type Selector interface {
	Select(ctx context.Context) (string, error)
}

// ImageExtensions are the extensions offered by default
var ImageExtensions = []string{".jpg", ".jpeg", ".png"}

// Filter restricts selectable files by extension. AllFiles disables the
// restriction; the file must still decode later.
type Filter struct {
	Extensions []string
	AllFiles   bool
}

// DefaultFilter accepts the common image extensions
func DefaultFilter() Filter {
	exts := make([]string, len(ImageExtensions))
	copy(exts, ImageExtensions)
	return Filter{Extensions: exts}
}

// Match reports whether path passes the filter (case-insensitive)
func (f Filter) Match(path string) bool {
	if path == "" {
		return false
	}
	if f.AllFiles {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range f.Extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// Static selects a path fixed up front, such as a command line argument
type Static struct {
	Path string
}

// Select returns the configured path made absolute, or "" if none was given
func (s Static) Select(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.Path == "" {
		return "", nil
	}
	return filepath.Abs(s.Path)
}

var _ Selector = Static{}
