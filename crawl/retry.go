package crawl

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/webmark/webmark"
)

// Retry defaults.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 1 * time.Second
	DefaultJitterMax   = 500 * time.Millisecond
)

// Retry wraps fallible operations with bounded exponential backoff. Only
// transient failures are retried; validation and fatal provider errors
// surface immediately. A server wait hint (429 Retry-After) overrides the
// computed backoff for that attempt.
type Retry struct {
	// MaxAttempts is the total attempt budget. Zero means the default (3).
	MaxAttempts int

	// BaseDelay seeds the exponential backoff. Zero means the default (1s).
	BaseDelay time.Duration

	// JitterMax bounds the uniform jitter added to each delay. Zero means
	// the default (500ms).
	JitterMax time.Duration

	// Sleep waits for the backoff delay. Nil uses a context-aware timer.
	// Tests inject a no-op.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Do runs op, retrying transient failures until success or the attempt
// budget is exhausted. Exhaustion returns the last error annotated with the
// attempt count.
func (r *Retry) Do(ctx context.Context, op func(ctx context.Context) error) error {
	maxAttempts := r.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	baseDelay := r.BaseDelay
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	jitterMax := r.JitterMax
	if jitterMax <= 0 {
		jitterMax = DefaultJitterMax
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !webmark.IsRetryable(err) {
			return err
		}
		if attempt == maxAttempts-1 {
			break
		}

		delay := baseDelay<<attempt + time.Duration(rand.Int64N(int64(jitterMax)))
		if hint := webmark.RetryAfter(err); hint > 0 {
			delay = hint
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}

	return webmark.Errorf(webmark.ErrorCode(lastErr), "%s (after %d attempts)",
		webmark.ErrorMessage(lastErr), maxAttempts)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
