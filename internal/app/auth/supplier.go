package auth

import (
	"blinkpay/blink-debit-client-go/internal/app/classifier"
	"blinkpay/blink-debit-client-go/internal/app/transport"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
)

const tokenPath = "/oauth2/token"

var ErrTokenUnavailable = errors.New("access token unavailable")

// TokenSupplier provides the bearer token for an outbound call.
type TokenSupplier interface {
	AcquireToken(ctx context.Context, correlationID string) (string, error)
}

// TokenFetcher obtains a fresh token together with its lifetime.
type TokenFetcher interface {
	FetchToken(ctx context.Context, correlationID string) (*Token, error)
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}

func (t *Token) Lifetime() time.Duration {
	return time.Duration(t.ExpiresIn) * time.Second
}

type tokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GrantType    string `json:"grant_type"`
}

// ClientCredentials fetches tokens with the OAuth2 client credentials grant.
type ClientCredentials struct {
	clientID     string
	clientSecret string
	transport    transport.Transport
}

func NewClientCredentials(clientID, clientSecret string, t transport.Transport) *ClientCredentials {
	return &ClientCredentials{
		clientID:     clientID,
		clientSecret: clientSecret,
		transport:    t,
	}
}

func (c *ClientCredentials) ClientID() string {
	return c.clientID
}

func (c *ClientCredentials) FetchToken(ctx context.Context, correlationID string) (*Token, error) {
	payload, err := sonic.Marshal(tokenRequest{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		GrantType:    "client_credentials",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token request: %w", err)
	}

	resp, err := c.transport.Send(ctx, &transport.Request{
		Method: http.MethodPost,
		Path:   tokenPath,
		Header: map[string]string{"x-correlation-id": correlationID},
		Body:   payload,
	})

	token, err := classifier.Decode[Token](resp, err)
	if err != nil {
		return nil, classifier.WithCorrelationID(err, correlationID)
	}

	if token.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned no access token")
	}

	return token, nil
}

func (c *ClientCredentials) AcquireToken(ctx context.Context, correlationID string) (string, error) {
	token, err := c.FetchToken(ctx, correlationID)
	if err != nil {
		return "", err
	}

	return token.AccessToken, nil
}

// Static always supplies the same token.
type Static string

func (s Static) AcquireToken(context.Context, string) (string, error) {
	if s == "" {
		return "", ErrTokenUnavailable
	}

	return string(s), nil
}
