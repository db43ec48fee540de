package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Post("/echo", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("x-seen-content-type", r.Header.Get("Content-Type"))
		w.Header().Set("x-seen-request-id", r.Header.Get("request-id"))
		w.WriteHeader(http.StatusCreated)
		w.Write(body)
	})
	r.Get("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestSend(t *testing.T) {
	srv := newTestServer(t)
	tr := NewHTTPTransport(srv.URL+"/", Options{})

	resp, err := tr.Send(context.Background(), &Request{
		Method: http.MethodPost,
		Path:   "/echo",
		Header: map[string]string{"request-id": "abc"},
		Body:   []byte(`{"ok":true}`),
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, `{"ok":true}`, string(resp.Body))
	require.Equal(t, "application/json", resp.Header["X-Seen-Content-Type"])
	require.Equal(t, "abc", resp.Header["X-Seen-Request-Id"])
}

func TestSend_ContextDeadline(t *testing.T) {
	srv := newTestServer(t)
	tr := NewHTTPTransport(srv.URL, Options{Timeout: 5 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := tr.Send(ctx, &Request{Method: http.MethodGet, Path: "/slow"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestSend_AlreadyCancelled(t *testing.T) {
	tr := NewHTTPTransport("http://127.0.0.1:1", Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.Send(ctx, &Request{Method: http.MethodGet, Path: "/"})
	require.True(t, errors.Is(err, context.Canceled))
}

func TestSend_ConnectionRefused(t *testing.T) {
	tr := NewHTTPTransport("http://127.0.0.1:1", Options{Timeout: time.Second})

	_, err := tr.Send(context.Background(), &Request{Method: http.MethodGet, Path: "/"})
	require.Error(t, err)
}
