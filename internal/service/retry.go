package service

import (
	"context"
	"math/rand"
	"regexp"
	"strings"
	"time"
)

// RetryOptions tunes WithRetry. Zero values fall back to the defaults.
type RetryOptions struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryOptions allows two retries,
// one second base delay, ten second cap.
var DefaultRetryOptions = RetryOptions{
	MaxRetries: 2,
	BaseDelay:  time.Second,
	MaxDelay:   10 * time.Second,
}

var (
	// Never retried, even when the message also smells transient.
	authErrRe = regexp.MustCompile(`401|403|unauthorized|forbidden|invalid api key|invalid x-api-key`)
	// Not retried unless the message also mentions a timeout.
	badRequestRe = regexp.MustCompile(`400|invalid request|validation|schema`)
	// Transient upstream conditions worth another attempt.
	retryableRe = regexp.MustCompile(`rate.?limit|429|timeout|timed out|deadline|5\d\d|internal server error|service unavailable|bad gateway|connection (reset|refused)|econnreset|socket hang up|network|overloaded|capacity`)
)

// IsRetryableError classifies an error message. Auth failures are terminal
// regardless of wording; validation failures are terminal unless the message
// mentions a timeout.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if authErrRe.MatchString(msg) {
		return false
	}
	if badRequestRe.MatchString(msg) && !strings.Contains(msg, "timeout") {
		return false
	}
	return retryableRe.MatchString(msg)
}

// WithRetry runs fn, retrying retryable failures with exponential backoff
// and uniform jitter in [0.8, 1.2]. The original error is returned unchanged
// once attempts are exhausted or the failure is classified terminal.
func WithRetry[T any](ctx context.Context, opts RetryOptions, fn func() (T, error)) (T, error) {
	if opts.MaxRetries == 0 && opts.BaseDelay == 0 && opts.MaxDelay == 0 {
		opts = DefaultRetryOptions
	}

	var zero T
	var lastErr error
	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRetryableError(err) || attempt == opts.MaxRetries {
			return zero, err
		}

		delay := opts.BaseDelay << attempt
		if delay > opts.MaxDelay {
			delay = opts.MaxDelay
		}
		jitter := 0.8 + rand.Float64()*0.4
		delay = time.Duration(float64(delay) * jitter)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
	return zero, lastErr
}
