package upstream

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// retryConfig controls the exponential backoff applied to transient
// upstream failures.
type retryConfig struct {
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	multiplier     float64
	jitterFraction float64
}

func defaultRetryConfig() retryConfig {
	return retryConfig{
		maxAttempts:    3,
		initialBackoff: 500 * time.Millisecond,
		maxBackoff:     10 * time.Second,
		multiplier:     2.0,
		jitterFraction: 0.25,
	}
}

// statusError marks an HTTP status failure so the retry loop can separate
// transient server trouble from permanent responses.
type statusError struct {
	url  string
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("upstream: GET %s: status %d", e.url, e.code)
}

// transient reports whether the status is worth retrying.
func (e *statusError) transient() bool {
	switch e.code {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// isTransient returns true when the error chain points at a retryable
// condition: a transient HTTP status, a network timeout, or a dropped
// connection.
func isTransient(err error) bool {
	if err == nil {
		return false
	}

	var se *statusError
	if errors.As(err, &se) {
		return se.transient()
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// withRetry runs fn up to cfg.maxAttempts times, sleeping with jittered
// exponential backoff between transient failures. Context cancellation
// stops retries immediately.
func withRetry(ctx context.Context, cfg retryConfig, fn func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < cfg.maxAttempts; attempt++ {
		body, err := fn(ctx)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil || !isTransient(err) || attempt >= cfg.maxAttempts-1 {
			break
		}

		delay := computeBackoff(attempt, cfg)
		zap.L().Debug("upstream: retrying after transient failure",
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, lastErr
		case <-timer.C:
		}
	}
	return nil, lastErr
}

func computeBackoff(attempt int, cfg retryConfig) time.Duration {
	delay := float64(cfg.initialBackoff) * math.Pow(cfg.multiplier, float64(attempt))
	if delay > float64(cfg.maxBackoff) {
		delay = float64(cfg.maxBackoff)
	}
	if cfg.jitterFraction > 0 {
		jitter := delay * cfg.jitterFraction
		delay += (rand.Float64()*2 - 1) * jitter
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}
