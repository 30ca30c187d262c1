// Package retry provides the bounded linear-backoff policy shared by every
// network boundary: embedding calls, vector-store calls and the remote file
// listing all retry through the same Policy.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func NewPolicy(maxAttempts int, baseDelay time.Duration) Policy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay < 0 {
		baseDelay = 0
	}
	return Policy{MaxAttempts: maxAttempts, BaseDelay: baseDelay}
}

// Do runs op until it succeeds or MaxAttempts is exhausted, sleeping
// BaseDelay, 2*BaseDelay, ... between attempts. Context cancellation stops
// the wait immediately.
func (p Policy) Do(ctx context.Context, op func() error) error {
	b := backoff.WithContext(
		backoff.WithMaxRetries(&linearBackOff{base: p.BaseDelay}, uint64(p.MaxAttempts-1)),
		ctx,
	)
	return backoff.Retry(op, b)
}

// linearBackOff implements backoff.BackOff with delays growing linearly in
// the attempt number.
type linearBackOff struct {
	base    time.Duration
	attempt int
}

func (l *linearBackOff) NextBackOff() time.Duration {
	l.attempt++
	return time.Duration(l.attempt) * l.base
}

func (l *linearBackOff) Reset() { l.attempt = 0 }
