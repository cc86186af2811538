package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the lifetime of minted tokens when none is configured.
const DefaultTokenTTL = time.Minute

// TokenSourceConfig configures a TokenSource.
type TokenSourceConfig struct {
	// Secret is the HS256 signing key. Required.
	Secret []byte

	// Issuer is written to the iss claim.
	Issuer string

	// Subject is written to the sub claim.
	// Default: "warmup"
	Subject string

	// Audience is written to the aud claim when set.
	Audience string

	// TTL is the token lifetime.
	// Default: DefaultTokenTTL
	TTL time.Duration
}

// WarmUpClaim is set to true in every token minted by a TokenSource.
const WarmUpClaim = "warmup"

type warmUpClaims struct {
	WarmUp bool `json:"warmup"`
	jwt.RegisteredClaims
}

// TokenSource mints HS256 bearer tokens and reuses each token until half of
// its lifetime has passed.
type TokenSource struct {
	config TokenSourceConfig
	now    func() time.Time

	mu      sync.Mutex
	token   string
	renewAt time.Time
}

// NewTokenSource creates a token source.
func NewTokenSource(config TokenSourceConfig) (*TokenSource, error) {
	if len(config.Secret) == 0 {
		return nil, ErrMissingSecret
	}
	if config.Subject == "" {
		config.Subject = "warmup"
	}
	if config.TTL <= 0 {
		config.TTL = DefaultTokenTTL
	}
	return &TokenSource{config: config, now: time.Now}, nil
}

// Token returns a signed token valid for at least half the configured TTL.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.token != "" && now.Before(s.renewAt) {
		return s.token, nil
	}

	claims := warmUpClaims{
		WarmUp: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   s.config.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TTL)),
		},
	}
	if s.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.config.Audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.config.Secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}

	s.token = signed
	s.renewAt = now.Add(s.config.TTL / 2)
	return signed, nil
}
