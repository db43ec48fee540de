package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"golang.org/x/exp/slog"
)

// Policy bounds how often and how far apart an operation is re-attempted.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxJitter   time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 5,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		MaxJitter:   100 * time.Millisecond,
	}
}

// Delay is the wait before re-attempt number attempt (1-based):
// 2^attempt * BaseDelay plus jitter, capped at MaxDelay.
func (p Policy) Delay(attempt int) time.Duration {
	backoff := p.BaseDelay
	for i := 0; i < attempt && backoff > 0; i++ {
		if backoff > math.MaxInt64/2 || (p.MaxDelay > 0 && backoff >= p.MaxDelay) {
			break
		}
		backoff *= 2
	}
	if p.MaxJitter > 0 {
		jitter := time.Duration(rand.Int63n(int64(p.MaxJitter)))
		if backoff > math.MaxInt64-jitter {
			backoff = math.MaxInt64
		} else {
			backoff += jitter
		}
	}
	if p.MaxDelay > 0 && backoff > p.MaxDelay {
		backoff = p.MaxDelay
	}

	return backoff
}

type retryable interface {
	Retryable() bool
}

// IsRetryable reports whether any error in err's chain declares itself
// retryable.
func IsRetryable(err error) bool {
	var r retryable
	return errors.As(err, &r) && r.Retryable()
}

type Retrier struct {
	policy Policy
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

func New(policy Policy, logger *slog.Logger) *Retrier {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Retrier{
		policy: policy,
		logger: logger.With(slog.String("component", "retry")),
		sleep:  sleep,
	}
}

// Do runs fn until it succeeds, fails with a non-retryable error, the
// attempts run out or ctx is done. The last error is returned.
func (r *Retrier) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}

		if !IsRetryable(err) {
			return err
		}
		if attempt >= r.policy.MaxAttempts {
			r.logger.Warn("giving up after retries",
				slog.String("op", op),
				slog.Int("attempts", attempt),
				slog.Any("err", err),
			)
			return err
		}

		delay := r.policy.Delay(attempt)
		r.logger.Debug("retrying",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.Any("err", err),
		)

		if serr := r.sleep(ctx, delay); serr != nil {
			return err
		}
	}
}

// Value is Do for operations that produce a result.
func Value[T any](ctx context.Context, r *Retrier, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := r.Do(ctx, op, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}

		out = v
		return nil
	})

	return out, err
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
