// Package cache persists upstream reference payloads between restarts.
//
// Every strategy keeps two values per resource: the payload under the
// resource key and the time it was stored, in epoch milliseconds, under
// "<key>_time".
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/congress-dashboard/internal/config"
	"github.com/redis/go-redis/v9"
)

// Entry is a cached payload and the time it was written.
type Entry struct {
	Payload  []byte
	StoredAt time.Time
}

// Store is a cache strategy.
type Store interface {
	// Get returns the entry for key. ok is false when either half of the
	// entry is missing.
	Get(ctx context.Context, key string) (entry Entry, ok bool, err error)
	Set(ctx context.Context, key string, entry Entry) error
	// Delete removes both halves of the entry for key. Deleting a missing
	// key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// TimeKey is the companion key holding an entry's stored time.
func TimeKey(key string) string { return key + "_time" }

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

// NopStore never holds anything; every lookup is a miss.
type NopStore struct{}

func (NopStore) Get(context.Context, string) (Entry, bool, error) { return Entry{}, false, nil }
func (NopStore) Set(context.Context, string, Entry) error         { return nil }
func (NopStore) Delete(context.Context, string) error             { return nil }
func (NopStore) Close() error                                     { return nil }

// Open builds the strategy named by cfg.CacheBackend.
func Open(cfg *config.Config, logger *slog.Logger) (Store, error) {
	switch cfg.CacheBackend {
	case config.CacheBackendNone:
		logger.Info("reference cache disabled")
		return NopStore{}, nil
	case config.CacheBackendSQLite:
		s, err := OpenSQLite(cfg.CacheSQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("reference cache opened", "backend", "sqlite", "path", cfg.CacheSQLitePath)
		return s, nil
	case config.CacheBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		logger.Info("reference cache opened", "backend", "redis", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		return NewRedisStore(client, cfg.CacheTTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}
