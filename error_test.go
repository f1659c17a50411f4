package webmark_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webmark/webmark"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	t.Run("carries code, message, and a correlation ID", func(t *testing.T) {
		t.Parallel()

		err := webmark.Errorf(webmark.ENOTFOUND, "page %q not found", "https://example.com")

		assert.Equal(t, webmark.ENOTFOUND, err.Code)
		assert.Equal(t, `page "https://example.com" not found`, err.Message)
		assert.Len(t, err.ID, 8)
	})

	t.Run("each error gets a distinct ID", func(t *testing.T) {
		t.Parallel()

		a := webmark.Errorf(webmark.EINTERNAL, "x")
		b := webmark.Errorf(webmark.EINTERNAL, "x")
		assert.NotEqual(t, a.ID, b.ID)
	})
}

func TestErrorCode(t *testing.T) {
	t.Parallel()

	t.Run("nil error has no code", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", webmark.ErrorCode(nil))
	})

	t.Run("application errors report their code", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, webmark.EINVALID, webmark.ErrorCode(webmark.Errorf(webmark.EINVALID, "bad input")))
	})

	t.Run("wrapped application errors report their code", func(t *testing.T) {
		t.Parallel()
		wrapped := fmt.Errorf("fetching: %w", webmark.Errorf(webmark.EUNAVAILABLE, "timeout"))
		assert.Equal(t, webmark.EUNAVAILABLE, webmark.ErrorCode(wrapped))
	})

	t.Run("non-application errors are internal", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, webmark.EINTERNAL, webmark.ErrorCode(errors.New("boom")))
	})
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	t.Run("application errors surface their message", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "bad input", webmark.ErrorMessage(webmark.Errorf(webmark.EINVALID, "bad input")))
	})

	t.Run("non-application errors are masked", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Internal error.", webmark.ErrorMessage(errors.New("secret detail")))
	})

	t.Run("nil error has no message", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", webmark.ErrorMessage(nil))
	})
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want bool
	}{
		{webmark.EUNAVAILABLE, true},
		{webmark.EINVALID, false},
		{webmark.ENOTFOUND, false},
		{webmark.ECONFLICT, false},
		{webmark.EINTERNAL, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, webmark.IsRetryable(webmark.Errorf(tt.code, "x")))
		})
	}

	t.Run("nil is not retryable", func(t *testing.T) {
		t.Parallel()
		assert.False(t, webmark.IsRetryable(nil))
	})
}

func TestRetryAfter(t *testing.T) {
	t.Parallel()

	t.Run("returns the attached hint", func(t *testing.T) {
		t.Parallel()

		err := webmark.Errorf(webmark.EUNAVAILABLE, "rate limited")
		err.RetryAfter = 30 * time.Second
		assert.Equal(t, 30*time.Second, webmark.RetryAfter(err))
	})

	t.Run("zero without a hint", func(t *testing.T) {
		t.Parallel()
		assert.Zero(t, webmark.RetryAfter(errors.New("boom")))
	})
}

func TestErrorID(t *testing.T) {
	t.Parallel()

	err := webmark.Errorf(webmark.EINTERNAL, "x")
	require.Len(t, webmark.ErrorID(err), 8)
	assert.Equal(t, "", webmark.ErrorID(errors.New("boom")))
}
