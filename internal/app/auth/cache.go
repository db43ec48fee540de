package auth

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/exp/slog"
)

// expirySkew is subtracted from a token's lifetime so that a cached token is
// never presented in its final seconds.
const expirySkew = 30 * time.Second

// CachingSupplier serves tokens from a TokenStore and fetches a new one only
// when the stored token is missing or expired.
type CachingSupplier struct {
	key     string
	fetcher TokenFetcher
	store   TokenStore
	logger  *slog.Logger
	now     func() time.Time

	mu sync.Mutex
}

func NewCachingSupplier(key string, fetcher TokenFetcher, store TokenStore, logger *slog.Logger) *CachingSupplier {
	if logger == nil {
		logger = slog.Default()
	}

	return &CachingSupplier{
		key:     key,
		fetcher: fetcher,
		store:   store,
		logger:  logger.With(slog.String("component", "token_cache")),
		now:     time.Now,
	}
}

func (s *CachingSupplier) AcquireToken(ctx context.Context, correlationID string) (string, error) {
	if token, ok := s.cached(ctx, correlationID); ok {
		return token, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have refreshed the token while we waited.
	if token, ok := s.cached(ctx, correlationID); ok {
		return token, nil
	}

	token, err := s.fetcher.FetchToken(ctx, correlationID)
	if err != nil {
		return "", err
	}

	ttl := s.ttl(token)
	if ttl > 0 {
		if err := s.store.Set(ctx, s.key, token.AccessToken, ttl); err != nil {
			s.logger.Warn("failed to store access token", slog.String("correlation_id", correlationID), slog.Any("err", err))
		}
	}

	return token.AccessToken, nil
}

// Invalidate drops the stored token, e.g. after the API rejected it.
func (s *CachingSupplier) Invalidate(ctx context.Context) error {
	return s.store.Delete(ctx, s.key)
}

func (s *CachingSupplier) cached(ctx context.Context, correlationID string) (string, bool) {
	token, ok, err := s.store.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("failed to read cached access token", slog.String("correlation_id", correlationID), slog.Any("err", err))
		return "", false
	}

	return token, ok
}

// ttl prefers the exp claim of a JWT access token and falls back to
// expires_in for opaque tokens.
func (s *CachingSupplier) ttl(token *Token) time.Duration {
	lifetime := token.Lifetime()

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token.AccessToken, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			lifetime = exp.Time.Sub(s.now())
		}
	}

	return lifetime - expirySkew
}
