package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryableErrorClassification(t *testing.T) {
	cases := []struct {
		msg       string
		retryable bool
	}{
		{"429 rate limit exceeded", true},
		{"request timed out", true},
		{"503 Service Unavailable", true},
		{"502 Bad Gateway", true},
		{"connection reset by peer", true},
		{"model overloaded, please retry", true},
		{"ECONNRESET", true},

		{"401 Unauthorized", false},
		{"invalid api key", false},
		{"403 Forbidden", false},
		// Auth denial wins even over transient wording.
		{"401 timeout", false},

		{"400 invalid schema", false},
		{"validation failed on field 'name'", false},
		// The timeout escape clause for bad-request wording.
		{"400 timeout validating schema", true},

		{"something inexplicable", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.retryable, IsRetryableError(errors.New(tc.msg)), "message: %q", tc.msg)
	}
	assert.False(t, IsRetryableError(nil))
}

func fastOpts() RetryOptions {
	return RetryOptions{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestWithRetrySucceedsAfterTransientFailure(t *testing.T) {
	attempts := 0
	got, err := WithRetry(context.Background(), fastOpts(), func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("429 rate limit")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, attempts)
}

func TestWithRetryStopsOnTerminalError(t *testing.T) {
	terminal := errors.New("401 Unauthorized")
	attempts := 0
	_, err := WithRetry(context.Background(), fastOpts(), func() (int, error) {
		attempts++
		return 0, terminal
	})
	assert.Equal(t, terminal, err, "original error propagates unchanged")
	assert.Equal(t, 1, attempts)
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	transient := errors.New("503 Service Unavailable")
	attempts := 0
	_, err := WithRetry(context.Background(), fastOpts(), func() (int, error) {
		attempts++
		return 0, transient
	})
	assert.Equal(t, transient, err)
	assert.Equal(t, 3, attempts, "initial try plus MaxRetries")
}

func TestWithRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithRetry(ctx, RetryOptions{MaxRetries: 5, BaseDelay: time.Minute, MaxDelay: time.Minute},
		func() (int, error) { return 0, errors.New("timeout") })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithRetryNoRetriesOnSuccess(t *testing.T) {
	attempts := 0
	got, err := WithRetry(context.Background(), fastOpts(), func() (int, error) {
		attempts++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, attempts)
}
