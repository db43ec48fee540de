package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

var ErrNoResponse = errors.New("no response received")

type Request struct {
	Method string
	Path   string
	Header map[string]string
	Body   []byte
}

type Response struct {
	StatusCode int
	Header     map[string]string
	Body       []byte
}

// Transport sends one request and returns the raw response. A non-nil error
// means no response was received.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

type Options struct {
	Timeout               time.Duration
	MaxConnections        int
	MaxIdleTime           time.Duration
	MaxLifeTime           time.Duration
	PendingAcquireTimeout time.Duration
}

// HTTPTransport is a fasthttp-backed Transport bound to one base URL. The
// underlying client is built once and shared by every call.
type HTTPTransport struct {
	baseURL string
	timeout time.Duration
	client  *fasthttp.Client
}

func NewHTTPTransport(baseURL string, opts Options) *HTTPTransport {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: opts.Timeout,
		client: &fasthttp.Client{
			Name:                "blink-debit-client-go",
			MaxConnsPerHost:     opts.MaxConnections,
			MaxIdleConnDuration: opts.MaxIdleTime,
			MaxConnDuration:     opts.MaxLifeTime,
			MaxConnWaitTimeout:  opts.PendingAcquireTimeout,
		},
	}
}

func (t *HTTPTransport) Send(ctx context.Context, r *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("request %s %s not sent: %w", r.Method, r.Path, err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	release := func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}

	req.SetRequestURI(t.baseURL + r.Path)
	req.Header.SetMethod(r.Method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	for k, v := range r.Header {
		req.Header.Set(k, v)
	}
	if r.Body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(r.Body)
	}

	// Context deadlines are enforced through ctx.Done below.
	deadline := time.Now().Add(t.timeout)

	done := make(chan error, 1)
	go func() {
		done <- t.client.DoDeadline(req, resp, deadline)
	}()

	select {
	case <-ctx.Done():
		// req and resp stay owned by the in-flight call until it returns.
		go func() {
			<-done
			release()
		}()
		return nil, fmt.Errorf("request %s %s cancelled: %w", r.Method, r.Path, ctx.Err())
	case err := <-done:
		defer release()
		if cerr := ctx.Err(); cerr != nil {
			return nil, fmt.Errorf("request %s %s cancelled: %w", r.Method, r.Path, cerr)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to send request %s %s: %w", r.Method, r.Path, err)
		}

		out := &Response{
			StatusCode: resp.StatusCode(),
			Header:     make(map[string]string),
			Body:       append([]byte(nil), resp.Body()...),
		}
		resp.Header.VisitAll(func(key, value []byte) {
			out.Header[string(key)] = string(value)
		})

		return out, nil
	}
}
