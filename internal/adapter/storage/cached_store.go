package storage

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/rl1809/jewelry-store/internal/core/domain"
	"github.com/rl1809/jewelry-store/internal/port"
)

// CachedStore is a read-through cache in front of another EntityStore. Cache
// errors never fail a request; they are logged and the wrapped store answers.
//
// Each kind carries a write generation. A read only fills the cache if no
// write to the kind finished while it was reading, so a slow read cannot put
// back data an invalidation just removed. The guard is per process: a write
// from another instance can still leave a stale entry for up to the TTL.
type CachedStore struct {
	next   port.EntityStore
	cache  port.CacheRepository
	logger *zap.Logger

	mu   sync.Mutex
	gens map[domain.Kind]uint64
}

func NewCachedStore(next port.EntityStore, cache port.CacheRepository, logger *zap.Logger) *CachedStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedStore{next: next, cache: cache, logger: logger, gens: make(map[domain.Kind]uint64)}
}

func (c *CachedStore) List(ctx context.Context, kind domain.Kind) ([]domain.Record, error) {
	key := ListKey(kind)
	if records, ok := c.fromCache(ctx, key); ok {
		return records, nil
	}

	gen := c.generation(kind)
	records, err := c.next.List(ctx, kind)
	if err != nil {
		return nil, err
	}

	c.toCache(ctx, kind, gen, key, records)
	return records, nil
}

func (c *CachedStore) Get(ctx context.Context, kind domain.Kind, id string) (domain.Record, error) {
	key := RecordKey(kind, id)
	if records, ok := c.fromCache(ctx, key); ok && len(records) == 1 {
		return records[0], nil
	}

	gen := c.generation(kind)
	record, err := c.next.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	c.toCache(ctx, kind, gen, key, []domain.Record{record})
	return record, nil
}

func (c *CachedStore) Insert(ctx context.Context, kind domain.Kind, record domain.Record) (domain.Record, error) {
	stored, err := c.next.Insert(ctx, kind, record)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, kind)
	return stored, nil
}

func (c *CachedStore) Update(ctx context.Context, kind domain.Kind, id string, patch domain.Record) (domain.Record, error) {
	merged, err := c.next.Update(ctx, kind, id, patch)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, kind)
	return merged, nil
}

func (c *CachedStore) Remove(ctx context.Context, kind domain.Kind, id string) error {
	if err := c.next.Remove(ctx, kind, id); err != nil {
		return err
	}
	c.invalidate(ctx, kind)
	return nil
}

func (c *CachedStore) Backend() string { return c.next.Backend() }

func (c *CachedStore) Live() bool { return c.next.Live() }

func (c *CachedStore) Close(ctx context.Context) error { return c.next.Close(ctx) }

func (c *CachedStore) fromCache(ctx context.Context, key string) ([]domain.Record, bool) {
	records, found, err := c.cache.GetRecords(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if found {
		c.logger.Debug("cache hit", zap.String("key", key))
	}
	return records, found
}

func (c *CachedStore) generation(kind domain.Kind) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[kind]
}

// toCache stores records read at generation gen, unless a write has since
// moved the kind on.
func (c *CachedStore) toCache(ctx context.Context, kind domain.Kind, gen uint64, key string, records []domain.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gens[kind] != gen {
		c.logger.Debug("skipping cache fill after concurrent write", zap.String("key", key))
		return
	}
	if err := c.cache.SetRecords(ctx, kind, key, records); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *CachedStore) invalidate(ctx context.Context, kind domain.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gens[kind]++
	if err := c.cache.InvalidateKind(ctx, kind); err != nil {
		c.logger.Warn("cache invalidation failed", zap.String("kind", string(kind)), zap.Error(err))
	}
}
