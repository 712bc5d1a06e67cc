// Package resilience holds the retry and circuit-breaker primitives shared by
// every external call the aggregator and agent panel make: market providers,
// sentiment providers, and LLM adapters all go through the same two layers.
package resilience

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"net/http"
	"time"

	"github.com/zurychhh/alpha-machine/errs"
	"github.com/zurychhh/alpha-machine/observability"
)

// RetryConfig controls exponential backoff with jitter.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig matches the design's default: 3 attempts (1 call plus 2
// retries), 0.5-1.0s initial delay, 8s cap.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:     2,
	InitialBackoff: 750 * time.Millisecond,
	MaxBackoff:     8 * time.Second,
}

// httpStatusCoder is satisfied by errors that carry the HTTP status code
// that produced them; providers/ errors implement this so Classify can
// route 4xx to BadInput without a type dependency on that package.
type httpStatusCoder interface {
	HTTPStatus() int
}

// Classify maps a raw error onto the error-kind taxonomy: context
// cancellation/deadline and network errors are Transient, a status-carrying
// error is classified via ClassifyHTTPStatus, an *errs.Error keeps its own
// Kind, and any other error is treated as Transient.
func Classify(err error) errs.Kind {
	if err == nil {
		return errs.Unknown
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Transient
	}
	var coder httpStatusCoder
	if errors.As(err, &coder) {
		return ClassifyHTTPStatus(coder.HTTPStatus())
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return errs.Transient
	}
	var e *errs.Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return errs.Transient
}

// ClassifyHTTPStatus maps an HTTP status code onto the taxonomy: 429 and 5xx
// are transient (retry-eligible); other 4xx are bad input and fail the chain
// immediately without retrying.
func ClassifyHTTPStatus(code int) errs.Kind {
	switch {
	case code == http.StatusTooManyRequests:
		return errs.Transient
	case code >= 500:
		return errs.Transient
	case code >= 400:
		return errs.BadInput
	default:
		return errs.Unknown
	}
}

// WithRetry runs fn, retrying on errors classified as Transient with doubling
// backoff plus up to 20% jitter. Non-transient errors (per Classify) return
// immediately without consuming a retry attempt, matching the design's "fail
// immediately and move the chain to the next provider" rule for non-transient
// classes.
func WithRetry(ctx context.Context, config RetryConfig, op string, fn func() error) error {
	var lastErr error
	backoff := config.InitialBackoff

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			jitter := time.Duration(rand.Int63n(int64(backoff) / 5))
			select {
			case <-ctx.Done():
				return errs.New(errs.Transient, op, ctx.Err())
			case <-time.After(backoff + jitter):
			}

			backoff *= 2
			if backoff > config.MaxBackoff {
				backoff = config.MaxBackoff
			}
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if Classify(err) != errs.Transient {
			return err
		}

		if attempt < config.MaxRetries {
			observability.Warn("retry attempt failed", "op", op, "attempt", attempt+1, "max", config.MaxRetries, "error", err)
		}
	}

	return errs.New(errs.Transient, op, lastErr)
}
