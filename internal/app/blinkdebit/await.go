package blinkdebit

import (
	"blinkpay/blink-debit-client-go/internal/app/retry"
	"blinkpay/blink-debit-client-go/internal/models"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

const defaultPollInterval = time.Second

var (
	ErrAwaitTimeout    = errors.New("timed out waiting for status")
	ErrConsentTerminal = errors.New("consent reached a terminal status")
	ErrPaymentRejected = errors.New("payment was rejected")
)

// await polls get until done reports completion, done fails, a
// non-retryable error occurs or maxWait elapses. The last value seen is
// returned with any error.
func await[T any](ctx context.Context, c *Client, what string, maxWait time.Duration, get func(ctx context.Context) (T, error), done func(T) (bool, error)) (T, error) {
	waitCtx, cancel := context.WithTimeout(ctx, maxWait)
	defer cancel()

	interval := c.pollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last T
	for {
		v, err := get(waitCtx)
		switch {
		case err == nil:
			last = v
			ok, derr := done(v)
			if derr != nil {
				return last, derr
			}
			if ok {
				return last, nil
			}
		case ctx.Err() != nil:
			return last, err
		case waitCtx.Err() == nil && !retry.IsRetryable(err):
			return last, err
		default:
			c.logger.Warn("status poll failed", slog.String("awaiting", what), slog.Any("err", err))
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-waitCtx.Done():
			return last, fmt.Errorf("%w: %s not reached within %s", ErrAwaitTimeout, what, maxWait)
		case <-ticker.C:
		}
	}
}

func consentAuthorised(consent *models.Consent) (bool, error) {
	switch {
	case consent.Status == models.ConsentStatusAuthorised:
		return true, nil
	case consent.Status == models.ConsentStatusConsumed || consent.Status.Terminal():
		return false, fmt.Errorf("%w: consent %s is %s", ErrConsentTerminal, consent.ConsentID, consent.Status)
	}

	return false, nil
}

// AwaitAuthorisedSingleConsent waits until the consent is Authorised.
func (c *Client) AwaitAuthorisedSingleConsent(ctx context.Context, consentID uuid.UUID, maxWait time.Duration) (*models.Consent, error) {
	return await(ctx, c, "authorised single consent", maxWait, func(ctx context.Context) (*models.Consent, error) {
		return c.GetSingleConsent(ctx, consentID)
	}, consentAuthorised)
}

func (c *Client) AwaitAuthorisedEnduringConsent(ctx context.Context, consentID uuid.UUID, maxWait time.Duration) (*models.Consent, error) {
	return await(ctx, c, "authorised enduring consent", maxWait, func(ctx context.Context) (*models.Consent, error) {
		return c.GetEnduringConsent(ctx, consentID)
	}, consentAuthorised)
}

// AwaitSuccessfulQuickPayment waits until the quick payment's consent has
// been consumed by its payment.
func (c *Client) AwaitSuccessfulQuickPayment(ctx context.Context, quickPaymentID uuid.UUID, maxWait time.Duration) (*models.QuickPaymentResponse, error) {
	return await(ctx, c, "successful quick payment", maxWait, func(ctx context.Context) (*models.QuickPaymentResponse, error) {
		return c.GetQuickPayment(ctx, quickPaymentID)
	}, func(qp *models.QuickPaymentResponse) (bool, error) {
		status := qp.Consent.Status
		if status == models.ConsentStatusConsumed {
			return true, nil
		}
		if status.Terminal() {
			return false, fmt.Errorf("%w: quick payment %s is %s", ErrConsentTerminal, quickPaymentID, status)
		}
		return false, nil
	})
}

// AwaitSuccessfulPayment waits until the payment has settled.
func (c *Client) AwaitSuccessfulPayment(ctx context.Context, paymentID uuid.UUID, maxWait time.Duration) (*models.Payment, error) {
	return await(ctx, c, "successful payment", maxWait, func(ctx context.Context) (*models.Payment, error) {
		return c.GetPayment(ctx, paymentID)
	}, func(p *models.Payment) (bool, error) {
		switch p.Status {
		case models.PaymentStatusAcceptedSettlementCompleted:
			return true, nil
		case models.PaymentStatusRejected:
			return false, fmt.Errorf("%w: payment %s", ErrPaymentRejected, paymentID)
		}
		return false, nil
	})
}
