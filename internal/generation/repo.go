package generation

import (
	"context"
	"errors"
)

// ErrNoDocument signals that the index holds nothing for the query.
var ErrNoDocument = errors.New("no generated document")

// Repo defines persistence operations for the generated-documents index.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	LatestByStep(ctx context.Context, stepSlug string) (Document, error)
	Recent(ctx context.Context, limit int) ([]Document, error)
}
