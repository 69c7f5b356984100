package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/congress-dashboard/internal/domain"
	"github.com/couchcryptid/congress-dashboard/internal/observability"
	"github.com/jonboulle/clockwork"
)

// DefaultTTL is how long a stored payload stays fresh.
const DefaultTTL = 24 * time.Hour

// ErrInvalidPayload is returned when the source answers with a body that is
// not JSON. Such bodies are never stored.
var ErrInvalidPayload = errors.New("source returned a non-JSON payload")

// Fetcher returns the raw payload of an upstream resource.
type Fetcher interface {
	Fetch(ctx context.Context, res domain.Resource) ([]byte, error)
}

// ReadThrough serves resources from a Store while they are fresh and
// refetches them from the source otherwise.
//
// Store failures never fail a fetch: they are logged and the source is used.
// When the source fails and an expired entry exists, the expired payload is
// served with a warning. Only well-formed JSON is stored; consumers that reject
// a stored payload call Invalidate so the next fetch goes to the source.
type ReadThrough struct {
	source  Fetcher
	store   Store
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewReadThrough wraps source with store. A nil clock uses the real clock and
// a non-positive ttl uses DefaultTTL.
func NewReadThrough(source Fetcher, store Store, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *ReadThrough {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ReadThrough{
		source:  source,
		store:   store,
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch returns the cached payload for res if now - storedAt < ttl.
func (r *ReadThrough) Fetch(ctx context.Context, res domain.Resource) ([]byte, error) {
	entry, ok, err := r.store.Get(ctx, res.Key)
	switch {
	case err != nil:
		r.lookup(res, "error")
		r.logger.Warn("cache read failed", "resource", res.Key, "error", err)
	case !ok:
		r.lookup(res, "miss")
	case r.fresh(entry):
		r.lookup(res, "hit")
		return entry.Payload, nil
	default:
		r.lookup(res, "stale")
	}

	payload, fetchErr := r.source.Fetch(ctx, res)
	if fetchErr == nil && !json.Valid(payload) {
		fetchErr = fmt.Errorf("%s: %w", res.Key, ErrInvalidPayload)
	}
	if fetchErr != nil {
		if ok && err == nil {
			r.logger.Warn("serving expired cache entry", "resource", res.Key,
				"stored_at", entry.StoredAt, "error", fetchErr)
			return entry.Payload, nil
		}
		return nil, fetchErr
	}

	if err := r.store.Set(ctx, res.Key, Entry{Payload: payload, StoredAt: r.clock.Now()}); err != nil {
		r.logger.Warn("cache write failed", "resource", res.Key, "error", err)
	}
	return payload, nil
}

// Invalidate drops the stored entry for res.
func (r *ReadThrough) Invalidate(ctx context.Context, res domain.Resource) error {
	if err := r.store.Delete(ctx, res.Key); err != nil {
		return err
	}
	r.lookup(res, "invalidated")
	r.logger.Warn("cache entry invalidated", "resource", res.Key)
	return nil
}

func (r *ReadThrough) fresh(e Entry) bool {
	return r.clock.Since(e.StoredAt) < r.ttl
}

func (r *ReadThrough) lookup(res domain.Resource, result string) {
	r.metrics.CacheLookups.WithLabelValues(res.Key, result).Inc()
}
