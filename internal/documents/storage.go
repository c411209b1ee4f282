package documents

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrInvalidDateFormat indicates a date that does not parse as a
	// YYYY-MM-DD calendar date.
	ErrInvalidDateFormat = errors.New("documents: invalid date format")
	// ErrStorageUnavailable indicates the storage backend rejected a write
	// or directory creation.
	ErrStorageUnavailable = errors.New("documents: storage unavailable")
	// ErrSourceNotFound indicates the source file vanished between selection
	// and copy.
	ErrSourceNotFound = errors.New("documents: source file not found")
)

// Storage is the backend capability behind the document store. Keys are
// slash-separated relative paths; Save returns the backend-specific stored
// location (an absolute filesystem path, an object URL).
type Storage interface {
	// Exists reports whether an object is already stored under the key.
	Exists(ctx context.Context, key string) (bool, error)
	// Save writes the reader's bytes under the key and returns the stored
	// location. Existing objects must not be overwritten by callers; the
	// document store probes with Exists first.
	Save(ctx context.Context, key string, source io.Reader) (string, error)
	// EnsureDir makes sure the directory chain for the key prefix exists and
	// returns its location. Backends without directories return the prefix
	// location unchanged.
	EnsureDir(ctx context.Context, dir string) (string, error)
}
