package storage

import (
	"context"
	"io"
)

// Storage stores and retrieves uploaded files by relative path.
type Storage interface {
	Save(ctx context.Context, path string, content io.Reader) error
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error
}
