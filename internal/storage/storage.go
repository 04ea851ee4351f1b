package storage

import (
	"context"
	"io"
)

// ObjectStore is where file bytes physically live. The database only
// records an opaque path per file; all three operations address objects
// by that path. Delete must be idempotent: removing a missing object is
// a success, because queued deletions are retried.
type ObjectStore interface {
	Save(ctx context.Context, path string, data io.Reader, size int64, contentType string) error
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}
