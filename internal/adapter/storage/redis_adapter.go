package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/jewelry-store/internal/core/domain"
)

const (
	cacheKeyPrefix  = "catalog:"
	defaultCacheTTL = 5 * time.Minute
)

// KEYS[1] is the registry set of a kind; every member and the set itself are
// dropped in one round trip.
var invalidateKindScript = redis.NewScript(`
local registry = KEYS[1]
local keys = redis.call('SMEMBERS', registry)

for _, key in ipairs(keys) do
	redis.call('DEL', key)
end

redis.call('DEL', registry)
return #keys
`)

type RedisAdapter struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAdapter(client *redis.Client, ttl time.Duration) *RedisAdapter {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisAdapter{client: client, ttl: ttl}
}

func ListKey(kind domain.Kind) string {
	return cacheKeyPrefix + string(kind) + ":list"
}

func RecordKey(kind domain.Kind, id string) string {
	return cacheKeyPrefix + string(kind) + ":id:" + id
}

func registryKey(kind domain.Kind) string {
	return cacheKeyPrefix + string(kind) + ":keys"
}

func (r *RedisAdapter) GetRecords(ctx context.Context, key string) ([]domain.Record, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var records []domain.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return records, true, nil
}

func (r *RedisAdapter) SetRecords(ctx context.Context, kind domain.Kind, key string, records []domain.Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode cached %s: %w", key, err)
	}

	registry := registryKey(kind)
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, r.ttl)
	pipe.SAdd(ctx, registry, key)
	pipe.Expire(ctx, registry, r.ttl)

	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisAdapter) InvalidateKind(ctx context.Context, kind domain.Kind) error {
	return invalidateKindScript.Run(ctx, r.client, []string{registryKey(kind)}).Err()
}
