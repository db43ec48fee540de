package classifier

import (
	"blinkpay/blink-debit-client-go/internal/app/transport"
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

// Stream iterates a JSON array response one element at a time. It is finite
// and cannot be restarted. Elements yielded before a failure stand; the
// failure is reported by Err once Next returns false.
type Stream[T any] struct {
	raw           []json.RawMessage
	pos           int
	status        int
	item          T
	err           error
	correlationID string
	onFailure     func(error)
}

// NewStream classifies the exchange and prepares the element iterator.
func NewStream[T any](resp *transport.Response, transportErr error) *Stream[T] {
	s := &Stream[T]{}
	if err := ClassifyResponse(resp, transportErr); err != nil {
		s.err = err
		return s
	}

	s.status = resp.StatusCode
	if emptyBody(resp.Body) {
		s.err = emptyBodyError(resp.StatusCode)
		return s
	}
	if err := sonic.Unmarshal(resp.Body, &s.raw); err != nil {
		s.err = &ClassifiedError{
			Kind:    KindServiceError,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("Failed to decode response body: %v", err),
			Err:     err,
		}
	}

	return s
}

// FailedStream returns a stream that yields nothing and reports err.
func FailedStream[T any](err error) *Stream[T] {
	return &Stream[T]{err: err}
}

// Annotate attaches a correlation identifier to any failure the stream
// reports.
func (s *Stream[T]) Annotate(correlationID string) *Stream[T] {
	s.correlationID = correlationID
	if s.err != nil {
		s.err = WithCorrelationID(s.err, correlationID)
	}

	return s
}

// OnFailure registers fn to be called once with the error of an element that
// fails to decode. Failures of the initial exchange are not reported to fn.
func (s *Stream[T]) OnFailure(fn func(error)) *Stream[T] {
	s.onFailure = fn
	return s
}

func (s *Stream[T]) Next() bool {
	if s.err != nil || s.pos >= len(s.raw) {
		return false
	}

	var item T
	if err := sonic.Unmarshal(s.raw[s.pos], &item); err != nil {
		s.err = WithCorrelationID(&ClassifiedError{
			Kind:    KindServiceError,
			Status:  s.status,
			Message: fmt.Sprintf("Failed to decode element %d: %v", s.pos, err),
			Err:     err,
		}, s.correlationID)
		s.raw = nil
		if s.onFailure != nil {
			s.onFailure(s.err)
		}
		return false
	}

	s.item = item
	s.pos++
	return true
}

func (s *Stream[T]) Item() T {
	return s.item
}

func (s *Stream[T]) Err() error {
	return s.err
}

// Collect drains the stream. Items decoded before a failure are returned
// together with the error.
func (s *Stream[T]) Collect() ([]T, error) {
	var items []T
	for s.Next() {
		items = append(items, s.Item())
	}

	return items, s.Err()
}
