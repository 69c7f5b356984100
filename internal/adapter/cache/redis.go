package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries as plain string keys. Both keys expire after ttl
// so redis evicts entries the read-through would refetch anyway.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	vals, err := s.client.MGet(ctx, key, TimeKey(key)).Result()
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis mget %s: %w", key, err)
	}
	payload, ok1 := vals[0].(string)
	rawTime, ok2 := vals[1].(string)
	if !ok1 || !ok2 {
		return Entry{}, false, nil
	}
	ms, err := strconv.ParseInt(rawTime, 10, 64)
	if err != nil {
		return Entry{}, false, fmt.Errorf("parse %s: %w", TimeKey(key), err)
	}
	return Entry{Payload: []byte(payload), StoredAt: fromMillis(ms)}, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, e Entry) error {
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, key, e.Payload, s.ttl)
		p.Set(ctx, TimeKey(key), strconv.FormatInt(toMillis(e.StoredAt), 10), s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key, TimeKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.client.Close() }
