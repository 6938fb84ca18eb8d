package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mamadbah2/repricer/internal/domain/models"
	"github.com/mamadbah2/repricer/internal/service/pricing"
)

func TestRetryPolicySucceedsAfterTransientFailures(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, Backoff: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("feed timeout")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestRetryPolicyExhaustsAttempts(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond}

	calls := 0
	wantErr := errors.New("still down")
	err := policy.Do(context.Background(), func() error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestRetryPolicyStopsOnSkip(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, Backoff: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		return pricing.ErrNoValidOffer
	})
	if !errors.Is(err, pricing.ErrNoValidOffer) {
		t.Fatalf("err = %v", err)
	}
	if calls != 1 {
		t.Fatalf("skip outcome retried %d times", calls)
	}
}

func TestRetryPolicyStopsOnConfigurationError(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, Backoff: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		return &models.ConfigurationError{Field: "discount_max", Reason: "below discount_min"}
	})
	var confErr *models.ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("err = %v", err)
	}
	if calls != 1 {
		t.Fatalf("configuration error retried %d times", calls)
	}
}

func TestRetryPolicyHonorsContext(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 10, Backoff: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := policy.Do(ctx, func() error { return errors.New("flaky") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRetryableWrappedSourceError(t *testing.T) {
	err := &pricing.SourceUnavailableError{Source: models.SourceG2G, Err: errors.New("503")}
	if !Retryable(err) {
		t.Fatalf("source outage must be retryable")
	}
	if Retryable(pricing.ErrNoValidOffer) {
		t.Fatalf("no-valid-offer must not be retryable")
	}
}
