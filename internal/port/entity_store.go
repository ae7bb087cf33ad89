package port

import (
	"context"

	"github.com/rl1809/jewelry-store/internal/core/domain"
)

type EntityStore interface {
	// List returns every record of the kind
	List(ctx context.Context, kind domain.Kind) ([]domain.Record, error)

	// Get finds a record by its id field, then by the backend's native id.
	// Returns domain.ErrNotFound when neither lookup matches
	Get(ctx context.Context, kind domain.Kind, id string) (domain.Record, error)

	// Insert persists the record as given and returns it with any
	// backend-generated fields added
	Insert(ctx context.Context, kind domain.Kind, record domain.Record) (domain.Record, error)

	// Update shallow-merges patch into the matching record and returns the result
	Update(ctx context.Context, kind domain.Kind, id string, patch domain.Record) (domain.Record, error)

	// Remove deletes the first matching record
	Remove(ctx context.Context, kind domain.Kind, id string) error

	// Backend names the storage engine: "mongodb", "mysql" or "file"
	Backend() string

	// Live is false when the store is the JSON-file fallback
	Live() bool

	Close(ctx context.Context) error
}
