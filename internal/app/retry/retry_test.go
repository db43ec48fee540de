package retry

import (
	"blinkpay/blink-debit-client-go/internal/app/classifier"
	"blinkpay/blink-debit-client-go/internal/app/validation"
	"blinkpay/blink-debit-client-go/internal/models"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestRetrier(maxAttempts int) (*Retrier, *[]time.Duration) {
	var delays []time.Duration

	r := New(Policy{MaxAttempts: maxAttempts, BaseDelay: 10 * time.Millisecond, MaxDelay: time.Second}, nil)
	r.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}

	return r, &delays
}

func TestDo_RetriesRetryableUntilSuccess(t *testing.T) {
	r, delays := newTestRetrier(5)

	calls := 0
	err := r.Do(context.Background(), "test", func(context.Context) error {
		calls++
		if calls < 3 {
			return &classifier.ClassifiedError{Kind: classifier.KindServerError, Status: 503}
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, calls)
	require.Equal(t, []time.Duration{20 * time.Millisecond, 40 * time.Millisecond}, *delays)
}

func TestDo_StopsOnTerminalError(t *testing.T) {
	terminal := []error{
		&classifier.ClassifiedError{Kind: classifier.KindRateLimitExceeded, Status: 429},
		&classifier.ClassifiedError{Kind: classifier.KindServiceError, Status: 422},
		validation.Amount(nil),
		errors.New("plain"),
	}

	for _, want := range terminal {
		r, delays := newTestRetrier(5)

		calls := 0
		err := r.Do(context.Background(), "test", func(context.Context) error {
			calls++
			return want
		})

		require.Equal(t, want, err)
		require.Equal(t, 1, calls)
		require.Empty(t, *delays)
	}
}

func TestDo_GivesUpAfterMaxAttempts(t *testing.T) {
	r, _ := newTestRetrier(5)

	calls := 0
	err := r.Do(context.Background(), "test", func(context.Context) error {
		calls++
		return &classifier.ClassifiedError{Kind: classifier.KindRequestTimeout, Status: 408}
	})

	require.True(t, classifier.IsKind(err, classifier.KindRequestTimeout))
	require.Equal(t, 5, calls)
}

func TestDo_StopsWhenContextDone(t *testing.T) {
	r, _ := newTestRetrier(5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := r.Do(ctx, "test", func(context.Context) error {
		calls++
		return &classifier.ClassifiedError{Kind: classifier.KindTransportFailure}
	})

	require.True(t, classifier.IsKind(err, classifier.KindTransportFailure))
	require.Equal(t, 1, calls)
}

func TestValue(t *testing.T) {
	r, _ := newTestRetrier(3)

	calls := 0
	amount, err := Value(context.Background(), r, "test", func(context.Context) (*models.Amount, error) {
		calls++
		if calls == 1 {
			return nil, &classifier.ClassifiedError{Kind: classifier.KindServerError, Status: 500}
		}
		return models.NewAmount("1.00"), nil
	})

	require.NoError(t, err)
	require.Equal(t, "1.00", amount.Total)
}

func TestPolicy_Delay(t *testing.T) {
	p := DefaultPolicy()

	for attempt := 1; attempt <= 10; attempt++ {
		d := p.Delay(attempt)
		require.LessOrEqual(t, d, p.MaxDelay)
		require.GreaterOrEqual(t, d, min(p.MaxDelay, time.Duration(1<<attempt)*p.BaseDelay))
	}
}

func TestPolicy_DelayLargeAttempts(t *testing.T) {
	p := DefaultPolicy()

	for _, attempt := range []int{36, 37, 40, 63, 64, 1000} {
		require.Equal(t, p.MaxDelay, p.Delay(attempt), "attempt %d", attempt)
	}

	uncapped := Policy{BaseDelay: time.Second}
	for _, attempt := range []int{40, 63, 1000} {
		require.Positive(t, uncapped.Delay(attempt), "attempt %d", attempt)
	}
}

func TestIsRetryable(t *testing.T) {
	err := &classifier.ClassifiedError{Kind: classifier.KindServerError}
	require.True(t, IsRetryable(err))
	require.True(t, IsRetryable(errors.Join(errors.New("context"), err)))
	require.False(t, IsRetryable(validation.Pcr(nil)))
	require.False(t, IsRetryable(nil))
}
