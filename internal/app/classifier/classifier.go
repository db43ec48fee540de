package classifier

import (
	"blinkpay/blink-debit-client-go/internal/app/transport"
	"blinkpay/blink-debit-client-go/internal/models"
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
)

// Classify maps a completed exchange onto the error taxonomy. It returns nil
// for a 2xx status and a *ClassifiedError for everything else. A non-nil
// transportErr always classifies as KindTransportFailure regardless of status.
func Classify(statusCode int, body *models.ErrorBody, transportErr error) error {
	if transportErr == nil && statusCode >= 200 && statusCode < 300 {
		return nil
	}

	return classify(statusCode, body, transportErr)
}

func classify(statusCode int, body *models.ErrorBody, transportErr error) *ClassifiedError {
	if transportErr != nil {
		return &ClassifiedError{
			Kind:    KindTransportFailure,
			Message: transportMessage(transportErr),
			Err:     transportErr,
		}
	}

	ce := &ClassifiedError{
		Kind:   kindForStatus(statusCode),
		Status: statusCode,
	}
	if body != nil {
		ce.Message = strings.TrimSpace(body.Message)
		ce.Code = body.Code
	}
	if ce.Message == "" {
		ce.Message = ce.Kind.DefaultMessage()
	}

	return ce
}

func kindForStatus(statusCode int) ErrorKind {
	switch statusCode {
	case http.StatusUnauthorized:
		return KindUnauthorised
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindResourceNotFound
	case http.StatusRequestTimeout:
		return KindRequestTimeout
	case http.StatusUnprocessableEntity:
		return KindServiceError
	case http.StatusTooManyRequests:
		return KindRateLimitExceeded
	case http.StatusNotImplemented:
		return KindNotImplemented
	}

	// 1xx and 3xx are never part of the API contract and are treated as
	// client errors, like any unlisted 4xx.
	if statusCode >= 500 {
		return KindServerError
	}

	return KindClientError
}

func transportMessage(err error) string {
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}

	return KindTransportFailure.DefaultMessage()
}

// ClassifyResponse decodes the structured error body of resp, when there is
// one, and classifies the exchange.
func ClassifyResponse(resp *transport.Response, transportErr error) error {
	if transportErr == nil && resp == nil {
		transportErr = transport.ErrNoResponse
	}
	if transportErr != nil {
		return Classify(0, nil, transportErr)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	return Classify(resp.StatusCode, decodeErrorBody(resp.Body), nil)
}

func decodeErrorBody(data []byte) *models.ErrorBody {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var body models.ErrorBody
	if err := sonic.Unmarshal(data, &body); err != nil {
		return nil
	}

	return &body
}

// emptyBody reports whether a 2xx body carries no value. A JSON null counts
// as empty.
func emptyBody(body []byte) bool {
	body = bytes.TrimSpace(body)
	return len(body) == 0 || bytes.Equal(body, []byte("null"))
}

func emptyBodyError(status int) *ClassifiedError {
	return &ClassifiedError{
		Kind:    KindServiceError,
		Status:  status,
		Message: "Response body is empty",
	}
}

// Decode classifies the exchange and decodes a 2xx body into T. An empty,
// null or malformed 2xx body is a KindServiceError.
func Decode[T any](resp *transport.Response, transportErr error) (*T, error) {
	if err := ClassifyResponse(resp, transportErr); err != nil {
		return nil, err
	}

	if emptyBody(resp.Body) {
		return nil, emptyBodyError(resp.StatusCode)
	}

	var out T
	if err := sonic.Unmarshal(resp.Body, &out); err != nil {
		return nil, &ClassifiedError{
			Kind:    KindServiceError,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("Failed to decode response body: %v", err),
			Err:     err,
		}
	}

	return &out, nil
}
