package classifier

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindUnauthorised ErrorKind = iota + 1
	KindForbidden
	KindResourceNotFound
	KindRequestTimeout
	KindServiceError
	KindRateLimitExceeded
	KindNotImplemented
	KindClientError
	KindServerError
	KindTransportFailure
)

var kindNames = map[ErrorKind]string{
	KindUnauthorised:      "Unauthorised",
	KindForbidden:         "Forbidden",
	KindResourceNotFound:  "ResourceNotFound",
	KindRequestTimeout:    "RequestTimeout",
	KindServiceError:      "ServiceError",
	KindRateLimitExceeded: "RateLimitExceeded",
	KindNotImplemented:    "NotImplemented",
	KindClientError:       "ClientError",
	KindServerError:       "ServerError",
	KindTransportFailure:  "TransportFailure",
}

var defaultMessages = map[ErrorKind]string{
	KindUnauthorised:      "Unauthorised access to the Blink Debit API",
	KindForbidden:         "Access to the requested resource is forbidden",
	KindResourceNotFound:  "The requested resource was not found",
	KindRequestTimeout:    "The request timed out",
	KindServiceError:      "The Blink Debit API could not process the request",
	KindRateLimitExceeded: "Rate limit exceeded",
	KindNotImplemented:    "The requested operation is not implemented",
	KindClientError:       "The request was rejected by the Blink Debit API",
	KindServerError:       "The Blink Debit API encountered an internal error",
	KindTransportFailure:  "No response was received from the Blink Debit API",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Retryable reports whether the same operation may be attempted again.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindRequestTimeout, KindServerError, KindTransportFailure:
		return true
	}

	return false
}

// DefaultMessage is used when the API does not supply a message.
func (k ErrorKind) DefaultMessage() string {
	return defaultMessages[k]
}

// ClassifiedError is the outcome of a failed HTTP exchange.
type ClassifiedError struct {
	Kind          ErrorKind
	Status        int
	Message       string
	Code          string
	CorrelationID string
	Err           error
}

func (e *ClassifiedError) Error() string {
	msg := e.Kind.String()
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.CorrelationID != "" {
		msg += fmt.Sprintf(" [correlation id %s]", e.CorrelationID)
	}

	return msg + ": " + e.Message
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

func (e *ClassifiedError) Retryable() bool {
	return e.Kind.Retryable()
}

// WithCorrelationID returns err with the correlation identifier attached when
// err is a ClassifiedError. Other errors are returned unchanged.
func WithCorrelationID(err error, correlationID string) error {
	var ce *ClassifiedError
	if !errors.As(err, &ce) {
		return err
	}

	annotated := *ce
	annotated.CorrelationID = correlationID
	return &annotated
}

// IsKind reports whether err is a ClassifiedError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *ClassifiedError
	return errors.As(err, &ce) && ce.Kind == kind
}
