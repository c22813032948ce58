package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// ErrInvalidID is returned by DirStore for ids that are not safe file names.
var ErrInvalidID = errors.New("invalid media id")

// Sink stores the bytes of a referenced part and returns the handle that
// becomes the reference's PreviewRef.
type Sink interface {
	Put(id, format string, data []byte) (string, error)
}

// DirStore writes parts unchanged under Dir/images. The returned handle is
// the path relative to Dir, using forward slashes.
type DirStore struct {
	Dir string
}

var safeID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Put writes data to Dir/images/<id>.<ext>.
func (s DirStore) Put(id, format string, data []byte) (string, error) {
	if !safeID.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	dir := filepath.Join(s.Dir, "images")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating media directory: %w", err)
	}

	name := id + "." + Extension(format)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return "images/" + name, nil
}
