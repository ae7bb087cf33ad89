package port

import (
	"context"

	"github.com/rl1809/jewelry-store/internal/core/domain"
)

type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error
}

// ReadObserver is notified when a read degrades to empty or sample data.
type ReadObserver interface {
	DegradedRead(kind string)
}
