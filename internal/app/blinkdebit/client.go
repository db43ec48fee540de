// Package blinkdebit wires transport, token supply, retry and the individual
// services into one client for the Blink Debit API.
package blinkdebit

import (
	"blinkpay/blink-debit-client-go/internal/app/auth"
	"blinkpay/blink-debit-client-go/internal/app/classifier"
	"blinkpay/blink-debit-client-go/internal/app/retry"
	"blinkpay/blink-debit-client-go/internal/app/services"
	"blinkpay/blink-debit-client-go/internal/app/transport"
	"blinkpay/blink-debit-client-go/internal/config"
	"blinkpay/blink-debit-client-go/internal/models"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/ksuid"
	"golang.org/x/exp/slog"
)

type Client struct {
	consents      *services.ConsentService
	quickPayments *services.QuickPaymentService
	payments      *services.PaymentService
	refunds       *services.RefundService
	metadata      *services.MetadataService

	retrier      *retry.Retrier
	pollInterval time.Duration
	logger       *slog.Logger
	closers      []func() error
}

// New builds a client from cfg. Tokens are cached in redis when a token
// cache address is configured and in memory otherwise.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg.API.ClientID == "" || cfg.API.ClientSecret == "" {
		return nil, fmt.Errorf("client id and client secret are required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	tr := transport.NewHTTPTransport(cfg.API.URL, transport.Options{
		Timeout:               cfg.Transport.Timeout,
		MaxConnections:        cfg.Transport.MaxConnections,
		MaxIdleTime:           cfg.Transport.MaxIdleTime,
		MaxLifeTime:           cfg.Transport.MaxLifeTime,
		PendingAcquireTimeout: cfg.Transport.PendingAcquireTimeout,
	})

	var (
		store   auth.TokenStore = auth.NewMemoryStore()
		closers []func() error
	)
	if cfg.TokenCache.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.TokenCache.Addr,
			Password: cfg.TokenCache.Password,
			DB:       cfg.TokenCache.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("failed to connect to token cache: %w", err)
		}

		store = auth.NewRedisStore(rdb)
		closers = append(closers, rdb.Close)
	}

	tokens := auth.NewCachingSupplier(cfg.API.ClientID, auth.NewClientCredentials(cfg.API.ClientID, cfg.API.ClientSecret, tr), store, logger)

	var retrier *retry.Retrier
	if cfg.Retry.Enabled {
		policy := retry.DefaultPolicy()
		if cfg.Retry.MaxAttempts > 0 {
			policy.MaxAttempts = cfg.Retry.MaxAttempts
		}
		retrier = retry.New(policy, logger)
	}

	c := NewWithCollaborators(tr, tokens, retrier, logger)
	c.closers = closers
	return c, nil
}

// NewWithCollaborators builds a client over an existing transport and token
// supplier. A nil retrier disables retries.
func NewWithCollaborators(tr transport.Transport, tokens auth.TokenSupplier, retrier *retry.Retrier, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		consents:      services.NewConsentService(tr, tokens, logger),
		quickPayments: services.NewQuickPaymentService(tr, tokens, logger),
		payments:      services.NewPaymentService(tr, tokens, logger),
		refunds:       services.NewRefundService(tr, tokens, logger),
		metadata:      services.NewMetadataService(tr, tokens, logger),
		retrier:       retrier,
		pollInterval:  defaultPollInterval,
		logger:        logger,
	}
}

func (c *Client) Close() error {
	var firstErr error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// pinned fixes the correlation id and idempotency key across retries of one
// logical request. Caller supplied options still win.
func pinned(opts []services.CallOption) []services.CallOption {
	return append([]services.CallOption{
		services.WithCorrelationID(uuid.NewString()),
		services.WithIdempotencyKey(ksuid.New().String()),
	}, opts...)
}

func do[T any](ctx context.Context, c *Client, op string, opts []services.CallOption, fn func(ctx context.Context, opts []services.CallOption) (T, error)) (T, error) {
	opts = pinned(opts)
	if c.retrier == nil {
		return fn(ctx, opts)
	}

	return retry.Value(ctx, c.retrier, op, func(ctx context.Context) (T, error) {
		return fn(ctx, opts)
	})
}

func doNoContent(ctx context.Context, c *Client, op string, opts []services.CallOption, fn func(ctx context.Context, opts []services.CallOption) error) error {
	_, err := do(ctx, c, op, opts, func(ctx context.Context, opts []services.CallOption) (struct{}, error) {
		return struct{}{}, fn(ctx, opts)
	})

	return err
}

func (c *Client) CreateSingleConsent(ctx context.Context, req *models.SingleConsentRequest, opts ...services.CallOption) (*models.CreateConsentResponse, error) {
	return do(ctx, c, "create_single_consent", opts, func(ctx context.Context, opts []services.CallOption) (*models.CreateConsentResponse, error) {
		return c.consents.CreateSingleConsent(ctx, req, opts...)
	})
}

func (c *Client) GetSingleConsent(ctx context.Context, consentID uuid.UUID, opts ...services.CallOption) (*models.Consent, error) {
	return do(ctx, c, "get_single_consent", opts, func(ctx context.Context, opts []services.CallOption) (*models.Consent, error) {
		return c.consents.GetSingleConsent(ctx, consentID, opts...)
	})
}

func (c *Client) RevokeSingleConsent(ctx context.Context, consentID uuid.UUID, opts ...services.CallOption) error {
	return doNoContent(ctx, c, "revoke_single_consent", opts, func(ctx context.Context, opts []services.CallOption) error {
		return c.consents.RevokeSingleConsent(ctx, consentID, opts...)
	})
}

func (c *Client) CreateEnduringConsent(ctx context.Context, req *models.EnduringConsentRequest, opts ...services.CallOption) (*models.CreateConsentResponse, error) {
	return do(ctx, c, "create_enduring_consent", opts, func(ctx context.Context, opts []services.CallOption) (*models.CreateConsentResponse, error) {
		return c.consents.CreateEnduringConsent(ctx, req, opts...)
	})
}

func (c *Client) GetEnduringConsent(ctx context.Context, consentID uuid.UUID, opts ...services.CallOption) (*models.Consent, error) {
	return do(ctx, c, "get_enduring_consent", opts, func(ctx context.Context, opts []services.CallOption) (*models.Consent, error) {
		return c.consents.GetEnduringConsent(ctx, consentID, opts...)
	})
}

func (c *Client) RevokeEnduringConsent(ctx context.Context, consentID uuid.UUID, opts ...services.CallOption) error {
	return doNoContent(ctx, c, "revoke_enduring_consent", opts, func(ctx context.Context, opts []services.CallOption) error {
		return c.consents.RevokeEnduringConsent(ctx, consentID, opts...)
	})
}

func (c *Client) CreateQuickPayment(ctx context.Context, req *models.QuickPaymentRequest, opts ...services.CallOption) (*models.CreateQuickPaymentResponse, error) {
	return do(ctx, c, "create_quick_payment", opts, func(ctx context.Context, opts []services.CallOption) (*models.CreateQuickPaymentResponse, error) {
		return c.quickPayments.CreateQuickPayment(ctx, req, opts...)
	})
}

func (c *Client) GetQuickPayment(ctx context.Context, quickPaymentID uuid.UUID, opts ...services.CallOption) (*models.QuickPaymentResponse, error) {
	return do(ctx, c, "get_quick_payment", opts, func(ctx context.Context, opts []services.CallOption) (*models.QuickPaymentResponse, error) {
		return c.quickPayments.GetQuickPayment(ctx, quickPaymentID, opts...)
	})
}

func (c *Client) RevokeQuickPayment(ctx context.Context, quickPaymentID uuid.UUID, opts ...services.CallOption) error {
	return doNoContent(ctx, c, "revoke_quick_payment", opts, func(ctx context.Context, opts []services.CallOption) error {
		return c.quickPayments.RevokeQuickPayment(ctx, quickPaymentID, opts...)
	})
}

func (c *Client) CreatePayment(ctx context.Context, req *models.PaymentRequest, opts ...services.CallOption) (*models.PaymentResponse, error) {
	return do(ctx, c, "create_payment", opts, func(ctx context.Context, opts []services.CallOption) (*models.PaymentResponse, error) {
		return c.payments.CreatePayment(ctx, req, opts...)
	})
}

func (c *Client) CreateWestpacPayment(ctx context.Context, req *models.PaymentRequest, opts ...services.CallOption) (*models.PaymentResponse, error) {
	return do(ctx, c, "create_westpac_payment", opts, func(ctx context.Context, opts []services.CallOption) (*models.PaymentResponse, error) {
		return c.payments.CreateWestpacPayment(ctx, req, opts...)
	})
}

func (c *Client) GetPayment(ctx context.Context, paymentID uuid.UUID, opts ...services.CallOption) (*models.Payment, error) {
	return do(ctx, c, "get_payment", opts, func(ctx context.Context, opts []services.CallOption) (*models.Payment, error) {
		return c.payments.GetPayment(ctx, paymentID, opts...)
	})
}

func (c *Client) CreateRefund(ctx context.Context, detail models.RefundDetail, opts ...services.CallOption) (*models.RefundResponse, error) {
	return do(ctx, c, "create_refund", opts, func(ctx context.Context, opts []services.CallOption) (*models.RefundResponse, error) {
		return c.refunds.CreateRefund(ctx, detail, opts...)
	})
}

func (c *Client) GetRefund(ctx context.Context, refundID uuid.UUID, opts ...services.CallOption) (*models.Refund, error) {
	return do(ctx, c, "get_refund", opts, func(ctx context.Context, opts []services.CallOption) (*models.Refund, error) {
		return c.refunds.GetRefund(ctx, refundID, opts...)
	})
}

// GetMeta retries only the request itself. Once a stream is handed out its
// element failures are final.
func (c *Client) GetMeta(ctx context.Context, opts ...services.CallOption) *classifier.Stream[models.BankMetadata] {
	var s *classifier.Stream[models.BankMetadata]
	_ = doNoContent(ctx, c, "get_meta", opts, func(ctx context.Context, opts []services.CallOption) error {
		s = c.metadata.GetMeta(ctx, opts...)
		return s.Err()
	})

	return s
}
