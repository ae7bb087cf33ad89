package port

import (
	"context"

	"github.com/rl1809/jewelry-store/internal/core/domain"
)

type CacheRepository interface {
	// GetRecords returns cached records for key, found is false on a miss
	GetRecords(ctx context.Context, key string) (records []domain.Record, found bool, err error)

	// SetRecords caches records under key and registers key with the kind
	SetRecords(ctx context.Context, kind domain.Kind, key string, records []domain.Record) error

	// InvalidateKind drops every key registered for the kind
	InvalidateKind(ctx context.Context, kind domain.Kind) error
}
