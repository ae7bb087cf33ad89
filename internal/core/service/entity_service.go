package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/jewelry-store/internal/core/domain"
	"github.com/rl1809/jewelry-store/internal/port"
)

// EntityService applies the storefront's record rules for one kind on top of
// the selected store: id and timestamp stamping, read degradation and order
// events.
type EntityService struct {
	kind     domain.Kind
	store    port.EntityStore
	events   port.EventPublisher
	observer port.ReadObserver
	ids      *domain.IDGenerator
	now      func() time.Time
	logger   *zap.Logger
}

func NewEntityService(kind domain.Kind, store port.EntityStore, events port.EventPublisher, observer port.ReadObserver, ids *domain.IDGenerator, logger *zap.Logger) *EntityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ids == nil {
		ids = domain.NewIDGenerator(nil)
	}
	return &EntityService{
		kind:     kind,
		store:    store,
		events:   events,
		observer: observer,
		ids:      ids,
		now:      time.Now,
		logger:   logger.With(zap.String("kind", string(kind))),
	}
}

func (s *EntityService) Kind() domain.Kind {
	return s.kind
}

// List never fails. A store error yields the sample catalog for products and
// an empty list for every other kind.
func (s *EntityService) List(ctx context.Context) []domain.Record {
	records, err := s.store.List(ctx, s.kind)
	if err != nil {
		s.degraded("list", err)
		if s.kind == domain.KindProducts {
			return domain.SampleProducts()
		}
		return []domain.Record{}
	}
	if records == nil {
		records = []domain.Record{}
	}
	return records
}

// Get returns domain.ErrNotFound both for a missing record and for a store
// that cannot be read.
func (s *EntityService) Get(ctx context.Context, id string) (domain.Record, error) {
	record, err := s.store.Get(ctx, s.kind, id)
	if err == nil {
		return record, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotFound
	}

	s.degraded("get", err)
	if s.kind == domain.KindProducts {
		for _, p := range domain.SampleProducts() {
			if p.ID() == id {
				return p, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

// generatedIDAttempts bounds retries when a generated id is already taken.
const generatedIDAttempts = 3

// Create stores a new record. A caller-supplied id must be unused in the
// collection, else domain.ErrConflict; a generated id that collides is
// replaced with the next one.
func (s *EntityService) Create(ctx context.Context, payload domain.Record) (domain.Record, error) {
	record := payload.Clone()
	delete(record, domain.FieldNativeID)

	callerID := record.ID()
	if len(callerID) > domain.MaxIDLength {
		return nil, fmt.Errorf("id longer than %d characters: %w", domain.MaxIDLength, domain.ErrInvalidRecord)
	}
	record[domain.FieldCreatedAt] = domain.Timestamp(s.now())

	if s.kind == domain.KindOrders {
		if status, ok := record[domain.FieldStatus]; !ok || status == nil || status == "" {
			record[domain.FieldStatus] = string(domain.OrderStatusPending)
		}
	}

	var (
		stored domain.Record
		err    error
	)
	if callerID != "" {
		record[domain.FieldID] = callerID
		stored, err = s.insertUnique(ctx, record)
	} else {
		for attempt := 0; attempt < generatedIDAttempts; attempt++ {
			record[domain.FieldID] = s.ids.Next()
			stored, err = s.insertUnique(ctx, record)
			if !errors.Is(err, domain.ErrConflict) {
				break
			}
		}
	}
	if errors.Is(err, domain.ErrConflict) {
		return nil, domain.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", s.kind, err)
	}

	s.publish(ctx, domain.OrderCreated, stored)
	return stored, nil
}

// insertUnique refuses an id that already resolves to a record. Backends
// enforce the same rule atomically on insert.
func (s *EntityService) insertUnique(ctx context.Context, record domain.Record) (domain.Record, error) {
	_, err := s.store.Get(ctx, s.kind, record.ID())
	switch {
	case err == nil:
		return nil, domain.ErrConflict
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}
	return s.store.Insert(ctx, s.kind, record)
}

// Update merges patch into the record. id and _id cannot be changed.
func (s *EntityService) Update(ctx context.Context, id string, patch domain.Record) (domain.Record, error) {
	if !s.kind.Updatable() {
		return nil, domain.ErrUnsupported
	}

	for field := range patch {
		if !domain.ValidFieldName(field) {
			return nil, fmt.Errorf("field %q: %w", field, domain.ErrInvalidRecord)
		}
	}

	update := patch.Clone()
	delete(update, domain.FieldID)
	delete(update, domain.FieldNativeID)
	update[domain.FieldUpdatedAt] = domain.Timestamp(s.now())

	merged, err := s.store.Update(ctx, s.kind, id, update)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update %s %s: %w", s.kind, id, err)
	}

	s.publish(ctx, domain.OrderUpdated, merged)
	return merged, nil
}

func (s *EntityService) Delete(ctx context.Context, id string) error {
	if !s.kind.Deletable() {
		return domain.ErrUnsupported
	}

	err := s.store.Remove(ctx, s.kind, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", s.kind, id, err)
	}
	return nil
}

func (s *EntityService) degraded(op string, err error) {
	s.logger.Warn("store read failed, serving degraded result", zap.String("op", op), zap.Error(err))
	if s.observer != nil {
		s.observer.DegradedRead(string(s.kind))
	}
}

// publish emits an order event; failures are logged and never fail the write.
func (s *EntityService) publish(ctx context.Context, eventType domain.OrderEventType, order domain.Record) {
	if s.kind != domain.KindOrders || s.events == nil {
		return
	}

	event := domain.OrderEvent{
		EventID:   uuid.New().String(),
		Type:      eventType,
		OrderID:   order.ID(),
		Status:    order.Text(domain.FieldStatus),
		Timestamp: s.now(),
		Order:     order,
	}
	if err := s.events.PublishOrderEvent(ctx, event); err != nil {
		s.logger.Error("failed to publish order event",
			zap.String("order_id", event.OrderID),
			zap.String("type", string(eventType)),
			zap.Error(err))
	}
}
