package classifier

import (
	"blinkpay/blink-debit-client-go/internal/app/transport"
	"blinkpay/blink-debit-client-go/internal/models"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify_StatusTable(t *testing.T) {
	cases := []struct {
		status    int
		kind      ErrorKind
		retryable bool
	}{
		{401, KindUnauthorised, false},
		{403, KindForbidden, false},
		{404, KindResourceNotFound, false},
		{408, KindRequestTimeout, true},
		{422, KindServiceError, false},
		{429, KindRateLimitExceeded, false},
		{501, KindNotImplemented, false},
		{400, KindClientError, false},
		{409, KindClientError, false},
		{500, KindServerError, true},
		{502, KindServerError, true},
		{503, KindServerError, true},
		{599, KindServerError, true},
	}

	for _, c := range cases {
		t.Run(fmt.Sprint(c.status), func(t *testing.T) {
			err := Classify(c.status, nil, nil)

			var ce *ClassifiedError
			require.True(t, errors.As(err, &ce))
			require.Equal(t, c.kind, ce.Kind)
			require.Equal(t, c.retryable, ce.Retryable())
			require.Equal(t, c.status, ce.Status)
			require.Equal(t, c.kind.DefaultMessage(), ce.Message)
		})
	}
}

func TestClassify_Totality(t *testing.T) {
	for status := 100; status <= 599; status++ {
		err := Classify(status, nil, nil)
		if status >= 200 && status < 300 {
			require.NoError(t, err, "status %d", status)
			continue
		}

		var ce *ClassifiedError
		require.True(t, errors.As(err, &ce), "status %d", status)
		require.NotEmpty(t, ce.Message, "status %d", status)
		require.Contains(t, kindNames, ce.Kind, "status %d", status)
	}

	err := Classify(0, nil, transport.ErrNoResponse)
	require.True(t, IsKind(err, KindTransportFailure))
}

func TestErrorKind_RetryableSet(t *testing.T) {
	retryable := map[ErrorKind]bool{
		KindRequestTimeout:   true,
		KindServerError:      true,
		KindTransportFailure: true,
	}

	for kind := range kindNames {
		require.Equal(t, retryable[kind], kind.Retryable(), kind.String())
	}
}

func TestClassifyResponse_UsesErrorBodyMessage(t *testing.T) {
	t.Run("request timeout", func(t *testing.T) {
		err := ClassifyResponse(&transport.Response{StatusCode: 408, Body: []byte(`{"message":"timed out"}`)}, nil)

		var ce *ClassifiedError
		require.True(t, errors.As(err, &ce))
		require.Equal(t, KindRequestTimeout, ce.Kind)
		require.Equal(t, "timed out", ce.Message)
		require.True(t, ce.Retryable())
	})

	t.Run("rate limited", func(t *testing.T) {
		err := ClassifyResponse(&transport.Response{StatusCode: 429, Body: []byte(`{"message":"too many requests"}`)}, nil)

		var ce *ClassifiedError
		require.True(t, errors.As(err, &ce))
		require.Equal(t, KindRateLimitExceeded, ce.Kind)
		require.Equal(t, "too many requests", ce.Message)
		require.False(t, ce.Retryable())
	})

	t.Run("full error body", func(t *testing.T) {
		body := `{"timestamp":"2026-01-01T00:00:00Z","status":422,"error":"Unprocessable Entity","message":"Consent is not authorised","path":"/payments/v1/payments","code":"CONSENT_NOT_AUTHORISED"}`
		err := ClassifyResponse(&transport.Response{StatusCode: 422, Body: []byte(body)}, nil)

		var ce *ClassifiedError
		require.True(t, errors.As(err, &ce))
		require.Equal(t, KindServiceError, ce.Kind)
		require.Equal(t, "Consent is not authorised", ce.Message)
		require.Equal(t, "CONSENT_NOT_AUTHORISED", ce.Code)
	})

	t.Run("non json body falls back to default", func(t *testing.T) {
		err := ClassifyResponse(&transport.Response{StatusCode: 503, Body: []byte("<html>bad gateway</html>")}, nil)

		var ce *ClassifiedError
		require.True(t, errors.As(err, &ce))
		require.Equal(t, KindServerError, ce.Kind)
		require.Equal(t, KindServerError.DefaultMessage(), ce.Message)
	})

	t.Run("success", func(t *testing.T) {
		require.NoError(t, ClassifyResponse(&transport.Response{StatusCode: 204}, nil))
	})
}

func TestClassifyResponse_TransportFailure(t *testing.T) {
	cancelled := fmt.Errorf("request GET /x cancelled: %w", context.Canceled)
	err := ClassifyResponse(nil, cancelled)

	var ce *ClassifiedError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, KindTransportFailure, ce.Kind)
	require.True(t, ce.Retryable())
	require.ErrorIs(t, err, context.Canceled)

	err = ClassifyResponse(nil, nil)
	require.True(t, IsKind(err, KindTransportFailure))
	require.ErrorIs(t, err, transport.ErrNoResponse)
}

func TestDecode(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		resp := &transport.Response{StatusCode: 201, Body: []byte(`{"consent_id":"2f1a1b4e-3b5d-4a8e-9d5c-2b8e1c0d6f7a","redirect_uri":"https://bank/auth"}`)}
		out, err := Decode[models.CreateConsentResponse](resp, nil)
		require.NoError(t, err)
		require.Equal(t, "2f1a1b4e-3b5d-4a8e-9d5c-2b8e1c0d6f7a", out.ConsentID.String())
		require.Equal(t, "https://bank/auth", out.RedirectURI)
	})

	t.Run("empty body", func(t *testing.T) {
		_, err := Decode[models.Consent](&transport.Response{StatusCode: 200}, nil)
		require.True(t, IsKind(err, KindServiceError))
	})

	t.Run("null body", func(t *testing.T) {
		out, err := Decode[models.Consent](&transport.Response{StatusCode: 200, Body: []byte(`null`)}, nil)
		require.Nil(t, out)
		require.True(t, IsKind(err, KindServiceError))
	})

	t.Run("malformed body", func(t *testing.T) {
		_, err := Decode[models.Consent](&transport.Response{StatusCode: 200, Body: []byte(`{"consent_id":`)}, nil)
		require.True(t, IsKind(err, KindServiceError))
	})

	t.Run("error status", func(t *testing.T) {
		_, err := Decode[models.Consent](&transport.Response{StatusCode: 404}, nil)
		require.True(t, IsKind(err, KindResourceNotFound))
	})
}

func TestWithCorrelationID(t *testing.T) {
	original := Classify(500, nil, nil)
	annotated := WithCorrelationID(original, "corr-1")

	var ce *ClassifiedError
	require.True(t, errors.As(annotated, &ce))
	require.Equal(t, "corr-1", ce.CorrelationID)
	require.Contains(t, annotated.Error(), "corr-1")

	var orig *ClassifiedError
	require.True(t, errors.As(original, &orig))
	require.Empty(t, orig.CorrelationID)

	plain := errors.New("plain")
	require.Equal(t, plain, WithCorrelationID(plain, "corr-1"))
}

func TestStream(t *testing.T) {
	t.Run("yields every element", func(t *testing.T) {
		resp := &transport.Response{StatusCode: 200, Body: []byte(`[{"name":"PNZ"},{"name":"BNZ"}]`)}
		items, err := NewStream[models.BankMetadata](resp, nil).Collect()
		require.NoError(t, err)
		require.Len(t, items, 2)
		require.Equal(t, models.BankPNZ, items[0].Name)
		require.Equal(t, models.BankBNZ, items[1].Name)
	})

	t.Run("keeps delivered elements on failure", func(t *testing.T) {
		resp := &transport.Response{StatusCode: 200, Body: []byte(`[{"name":"PNZ"},{"name":7}]`)}
		s := NewStream[models.BankMetadata](resp, nil).Annotate("corr-2")

		require.True(t, s.Next())
		require.Equal(t, models.BankPNZ, s.Item().Name)
		require.False(t, s.Next())
		require.False(t, s.Next())

		var ce *ClassifiedError
		require.True(t, errors.As(s.Err(), &ce))
		require.Equal(t, KindServiceError, ce.Kind)
		require.Equal(t, "corr-2", ce.CorrelationID)
	})

	t.Run("reports element failure once", func(t *testing.T) {
		resp := &transport.Response{StatusCode: 200, Body: []byte(`[{"name":"PNZ"},{"name":7}]`)}

		var reported []error
		s := NewStream[models.BankMetadata](resp, nil).Annotate("corr-3").OnFailure(func(err error) {
			reported = append(reported, err)
		})

		items, err := s.Collect()
		require.Len(t, items, 1)
		require.False(t, s.Next())
		require.Len(t, reported, 1)
		require.Equal(t, err, reported[0])
	})

	t.Run("exchange failure is not reported", func(t *testing.T) {
		called := false
		s := NewStream[models.BankMetadata](&transport.Response{StatusCode: 500}, nil).OnFailure(func(error) {
			called = true
		})

		require.False(t, s.Next())
		require.Error(t, s.Err())
		require.False(t, called)
	})

	t.Run("classified status", func(t *testing.T) {
		resp := &transport.Response{StatusCode: 401, Body: []byte(`{"message":"bad token"}`)}
		s := NewStream[models.BankMetadata](resp, nil)
		require.False(t, s.Next())

		var ce *ClassifiedError
		require.True(t, errors.As(s.Err(), &ce))
		require.Equal(t, KindUnauthorised, ce.Kind)
		require.Equal(t, "bad token", ce.Message)
	})

	t.Run("null or empty body", func(t *testing.T) {
		for _, body := range []string{"null", " null\n", ""} {
			items, err := NewStream[models.BankMetadata](&transport.Response{StatusCode: 200, Body: []byte(body)}, nil).Collect()
			require.Empty(t, items)

			var ce *ClassifiedError
			require.True(t, errors.As(err, &ce), "body %q", body)
			require.Equal(t, KindServiceError, ce.Kind)
			require.Equal(t, "Response body is empty", ce.Message)
		}
	})

	t.Run("empty array", func(t *testing.T) {
		items, err := NewStream[models.BankMetadata](&transport.Response{StatusCode: 200, Body: []byte(`[]`)}, nil).Collect()
		require.NoError(t, err)
		require.Empty(t, items)
	})

	t.Run("not an array", func(t *testing.T) {
		s := NewStream[models.BankMetadata](&transport.Response{StatusCode: 200, Body: []byte(`{}`)}, nil)
		require.False(t, s.Next())
		require.True(t, IsKind(s.Err(), KindServiceError))
	})
}
