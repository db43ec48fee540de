package services

import (
	"blinkpay/blink-debit-client-go/internal/app/auth"
	"blinkpay/blink-debit-client-go/internal/app/classifier"
	"blinkpay/blink-debit-client-go/internal/app/transport"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
	"golang.org/x/exp/slog"
)

const basePath = "/payments/v1"

const (
	headerAuthorization     = "Authorization"
	headerRequestID         = "request-id"
	headerCorrelationID     = "x-correlation-id"
	headerIdempotencyKey    = "idempotency-key"
	headerCustomerIP        = "x-customer-ip"
	headerCustomerUserAgent = "x-customer-user-agent"
)

type callOptions struct {
	correlationID     string
	idempotencyKey    string
	customerIP        string
	customerUserAgent string
}

// CallOption adjusts the headers of a single call.
type CallOption func(*callOptions)

// WithCorrelationID sets the x-correlation-id header. A random UUID is used
// when it is not set.
func WithCorrelationID(id string) CallOption {
	return func(o *callOptions) {
		o.correlationID = id
	}
}

// WithIdempotencyKey overrides the generated idempotency-key of a POST.
// Retries of the same logical request should reuse the key.
func WithIdempotencyKey(key string) CallOption {
	return func(o *callOptions) {
		o.idempotencyKey = key
	}
}

func WithCustomerIP(ip string) CallOption {
	return func(o *callOptions) {
		o.customerIP = ip
	}
}

func WithCustomerUserAgent(userAgent string) CallOption {
	return func(o *callOptions) {
		o.customerUserAgent = userAgent
	}
}

// invalidator is implemented by token suppliers that cache tokens.
type invalidator interface {
	Invalidate(ctx context.Context) error
}

type apiClient struct {
	transport transport.Transport
	tokens    auth.TokenSupplier
	logger    *slog.Logger
}

func newAPIClient(t transport.Transport, tokens auth.TokenSupplier, logger *slog.Logger, service string) *apiClient {
	if logger == nil {
		logger = slog.Default()
	}

	return &apiClient{
		transport: t,
		tokens:    tokens,
		logger:    logger.With(slog.String("service", service)),
	}
}

// exchange is one sent request and what came back for it.
type exchange struct {
	method        string
	path          string
	requestID     string
	correlationID string
	resp          *transport.Response
	err           error
}

func (e *exchange) attrs() []any {
	attrs := []any{
		slog.String("method", e.method),
		slog.String("path", e.path),
		slog.String("request_id", e.requestID),
		slog.String("correlation_id", e.correlationID),
	}
	if e.resp != nil {
		attrs = append(attrs, slog.Int("status", e.resp.StatusCode))
	}

	return attrs
}

// send acquires a token, encodes body and performs the request. The returned
// error is a pre-flight failure: nothing was sent.
func (c *apiClient) send(ctx context.Context, method, path string, body any, opts []CallOption) (*exchange, error) {
	o := callOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.correlationID == "" {
		o.correlationID = uuid.NewString()
	}

	token, err := c.tokens.AcquireToken(ctx, o.correlationID)
	if err != nil {
		c.logger.Warn("failed to acquire access token",
			slog.String("correlation_id", o.correlationID),
			slog.String("path", path),
			slog.Any("err", err),
		)
		return nil, fmt.Errorf("%w: %v", auth.ErrTokenUnavailable, err)
	}

	var payload []byte
	if body != nil {
		payload, err = sonic.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	ex := &exchange{
		method:        method,
		path:          path,
		requestID:     uuid.NewString(),
		correlationID: o.correlationID,
	}

	header := map[string]string{
		headerAuthorization: "Bearer " + token,
		headerRequestID:     ex.requestID,
		headerCorrelationID: ex.correlationID,
	}
	if method == http.MethodPost {
		if o.idempotencyKey == "" {
			o.idempotencyKey = ksuid.New().String()
		}
		header[headerIdempotencyKey] = o.idempotencyKey
	}
	if o.customerIP != "" {
		header[headerCustomerIP] = o.customerIP
	}
	if o.customerUserAgent != "" {
		header[headerCustomerUserAgent] = o.customerUserAgent
	}

	ex.resp, ex.err = c.transport.Send(ctx, &transport.Request{
		Method: method,
		Path:   path,
		Header: header,
		Body:   payload,
	})

	return ex, nil
}

// finish annotates and logs the outcome of an exchange.
func (c *apiClient) finish(ctx context.Context, ex *exchange, err error) error {
	if err == nil {
		c.logger.Debug("call succeeded", ex.attrs()...)
		return nil
	}

	err = classifier.WithCorrelationID(err, ex.correlationID)

	attrs := ex.attrs()
	var ce *classifier.ClassifiedError
	if errors.As(err, &ce) {
		attrs = append(attrs,
			slog.String("kind", ce.Kind.String()),
			slog.Bool("retryable", ce.Retryable()),
		)

		if ce.Kind == classifier.KindUnauthorised {
			c.dropToken(ctx, ex.correlationID)
		}
	}
	attrs = append(attrs, slog.Any("err", err))

	c.logger.Warn("call failed", attrs...)
	return err
}

// dropToken forgets a cached token the API has rejected so the next call
// fetches a fresh one.
func (c *apiClient) dropToken(ctx context.Context, correlationID string) {
	inv, ok := c.tokens.(invalidator)
	if !ok {
		return
	}

	if err := inv.Invalidate(ctx); err != nil {
		c.logger.Warn("failed to invalidate access token", slog.String("correlation_id", correlationID), slog.Any("err", err))
	}
}

// call performs a request whose 2xx response carries a body of type T.
func call[T any](ctx context.Context, c *apiClient, method, path string, body any, opts []CallOption) (*T, error) {
	ex, err := c.send(ctx, method, path, body, opts)
	if err != nil {
		return nil, err
	}

	out, err := classifier.Decode[T](ex.resp, ex.err)
	if err = c.finish(ctx, ex, err); err != nil {
		return nil, err
	}

	return out, nil
}

// callNoContent performs a request whose 2xx response body is ignored.
func callNoContent(ctx context.Context, c *apiClient, method, path string, opts []CallOption) error {
	ex, err := c.send(ctx, method, path, nil, opts)
	if err != nil {
		return err
	}

	return c.finish(ctx, ex, classifier.ClassifyResponse(ex.resp, ex.err))
}

// stream performs a request whose 2xx response is a JSON array of T.
func stream[T any](ctx context.Context, c *apiClient, path string, opts []CallOption) *classifier.Stream[T] {
	ex, err := c.send(ctx, http.MethodGet, path, nil, opts)
	if err != nil {
		return classifier.FailedStream[T](err)
	}

	s := classifier.NewStream[T](ex.resp, ex.err).Annotate(ex.correlationID)
	_ = c.finish(ctx, ex, s.Err())
	return s.OnFailure(func(err error) {
		c.logger.Warn("stream element failed", append(ex.attrs(),
			slog.String("kind", classifier.KindServiceError.String()),
			slog.Any("err", err),
		)...)
	})
}
