package geodata

import (
	"context"
	"time"
)

// Load retry bounds: start at 200ms, double each attempt, cap at 5s.
const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// LoadWithRetry calls Load until it succeeds or ctx is cancelled. It
// returns the last load error when ctx ends first.
func (s *Store) LoadWithRetry(ctx context.Context) error {
	backoff := initialBackoff
	for {
		err := s.Load(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		s.logger.Warn("retrying geo data load", "backoff", backoff)
		if !sleepWithContext(ctx, backoff) {
			return err
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
}

func nextBackoff(current, limit time.Duration) time.Duration {
	next := current * 2
	if next > limit {
		return limit
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
