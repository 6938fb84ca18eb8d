package engine

import (
	"context"
	"errors"
	"time"

	"github.com/mamadbah2/repricer/internal/domain/models"
	"github.com/mamadbah2/repricer/internal/service/pricing"
)

// RetryPolicy bounds the attempts made on one row before it is skipped
// for the cycle.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// Do runs fn up to MaxAttempts times with a fixed backoff between
// attempts. Skip outcomes and configuration errors are final; retrying
// them would only re-read the same broken state.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !Retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Backoff):
		}
	}
	return err
}

// Retryable reports whether another attempt could change the outcome.
func Retryable(err error) bool {
	if errors.Is(err, pricing.ErrNoValidOffer) {
		return false
	}
	var confErr *models.ConfigurationError
	if errors.As(err, &confErr) {
		return false
	}
	return true
}
