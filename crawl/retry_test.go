package crawl_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webmark/webmark"
	"github.com/webmark/webmark/crawl"
)

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func TestRetry(t *testing.T) {
	t.Parallel()

	t.Run("returns immediately on success", func(t *testing.T) {
		t.Parallel()

		attempts := 0
		r := &crawl.Retry{Sleep: noSleep}
		err := r.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("transient failure exhausts the attempt budget", func(t *testing.T) {
		t.Parallel()

		attempts := 0
		r := &crawl.Retry{MaxAttempts: 3, Sleep: noSleep}
		err := r.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return webmark.Errorf(webmark.EUNAVAILABLE, "server error 503")
		})

		require.Error(t, err)
		assert.Equal(t, 3, attempts)
		assert.Equal(t, webmark.EUNAVAILABLE, webmark.ErrorCode(err))
		assert.Contains(t, webmark.ErrorMessage(err), "after 3 attempts")
	})

	t.Run("fatal failure makes exactly one attempt", func(t *testing.T) {
		t.Parallel()

		attempts := 0
		r := &crawl.Retry{MaxAttempts: 3, Sleep: noSleep}
		err := r.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return webmark.Errorf(webmark.ENOTFOUND, "page not found")
		})

		require.Error(t, err)
		assert.Equal(t, 1, attempts)
		assert.Equal(t, webmark.ENOTFOUND, webmark.ErrorCode(err))
	})

	t.Run("recovers when a later attempt succeeds", func(t *testing.T) {
		t.Parallel()

		attempts := 0
		r := &crawl.Retry{MaxAttempts: 3, Sleep: noSleep}
		err := r.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			if attempts < 3 {
				return webmark.Errorf(webmark.EUNAVAILABLE, "timeout")
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("backoff grows exponentially", func(t *testing.T) {
		t.Parallel()

		var delays []time.Duration
		r := &crawl.Retry{
			MaxAttempts: 3,
			BaseDelay:   100 * time.Millisecond,
			JitterMax:   time.Nanosecond,
			Sleep: func(ctx context.Context, d time.Duration) error {
				delays = append(delays, d)
				return nil
			},
		}
		_ = r.Do(context.Background(), func(ctx context.Context) error {
			return webmark.Errorf(webmark.EUNAVAILABLE, "busy")
		})

		require.Len(t, delays, 2)
		assert.GreaterOrEqual(t, delays[0], 100*time.Millisecond)
		assert.Less(t, delays[0], 150*time.Millisecond)
		assert.GreaterOrEqual(t, delays[1], 200*time.Millisecond)
	})

	t.Run("honors a server wait hint", func(t *testing.T) {
		t.Parallel()

		var delays []time.Duration
		r := &crawl.Retry{
			MaxAttempts: 2,
			BaseDelay:   time.Millisecond,
			Sleep: func(ctx context.Context, d time.Duration) error {
				delays = append(delays, d)
				return nil
			},
		}
		_ = r.Do(context.Background(), func(ctx context.Context) error {
			e := webmark.Errorf(webmark.EUNAVAILABLE, "rate limited")
			e.RetryAfter = 7 * time.Second
			return e
		})

		require.Len(t, delays, 1)
		assert.Equal(t, 7*time.Second, delays[0])
	})

	t.Run("stops when the context is canceled during backoff", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		attempts := 0
		r := &crawl.Retry{
			MaxAttempts: 3,
			Sleep: func(ctx context.Context, d time.Duration) error {
				cancel()
				return ctx.Err()
			},
		}
		err := r.Do(ctx, func(ctx context.Context) error {
			attempts++
			return webmark.Errorf(webmark.EUNAVAILABLE, "busy")
		})

		require.Error(t, err)
		assert.Equal(t, 1, attempts)
	})
}
