// Package storage abstracts where uploaded photos live. One backend is
// constructed at startup from configuration.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a stored object does not exist.
var ErrNotFound = errors.New("storage: object not found")

// Store is a photo blob backend. Keys are slash-separated paths scoped by
// organization, e.g. "org-id/photos/uuid.jpg".
type Store interface {
	// Name identifies the backend, e.g. "s3".
	Name() string
	// Upload writes an object and returns nothing; the key is the caller's.
	Upload(ctx context.Context, key string, contentType string, body io.Reader) error
	// Download opens an object for reading. The caller closes the reader.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
	// List returns the keys under a prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	// URL returns a browser-usable URL for the object, presigned where the
	// backend supports it.
	URL(ctx context.Context, key string) (string, error)
}
