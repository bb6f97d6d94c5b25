package object

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when a storage key does not exist.
var ErrNotFound = errors.New("object not found")

// Info describes a stored object.
type Info struct {
	Key     string
	ModTime time.Time
}

// Store is the contract for the generated-document output store. Keys are
// flat file names; implementations must reject traversal attempts.
type Store interface {
	Save(ctx context.Context, key string, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context) ([]Info, error)
}
