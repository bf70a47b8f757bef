package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is the only error callers of Verify should branch on. The
// wrapped cause is meant for server-side logs.
var ErrInvalidToken = errors.New("invalid token")

type TokenConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
	TTL        time.Duration
}

type Identity struct {
	Subject   string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

type tokenClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type TokenCodec struct {
	key      []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

type CodecOption func(*TokenCodec)

// WithClock replaces time.Now for both issuing and verifying.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

func NewTokenCodec(cfg TokenConfig, opts ...CodecOption) (*TokenCodec, error) {
	if strings.TrimSpace(cfg.SigningKey) == "" {
		return nil, errors.New("token signing key is required")
	}
	if strings.TrimSpace(cfg.Issuer) == "" || strings.TrimSpace(cfg.Audience) == "" {
		return nil, errors.New("token issuer and audience are required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	codec := &TokenCodec{
		key:      []byte(cfg.SigningKey),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.TTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(codec)
	}

	return codec, nil
}

// IssuedToken is a signed token together with the claims callers need to
// report back, so they never recompute the expiry.
type IssuedToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

func (c *TokenCodec) Issue(subject string, role string) (string, error) {
	issued, err := c.IssueToken(subject, role)
	if err != nil {
		return "", err
	}

	return issued.Token, nil
}

func (c *TokenCodec) IssueToken(subject string, role string) (IssuedToken, error) {
	if strings.TrimSpace(subject) == "" {
		return IssuedToken{}, errors.New("token subject is required")
	}

	now := c.now().UTC()
	claims := tokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("sign token: %w", err)
	}

	// NumericDate truncates to whole seconds; report what the token carries.
	return IssuedToken{
		Token:     signed,
		ID:        claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Verify checks signature, issuer, audience and expiry, and the role claim
// when requiredRole is not empty.
func (c *TokenCodec) Verify(tokenString string, requiredRole string) (*Identity, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if requiredRole != "" && claims.Role != requiredRole {
		return nil, fmt.Errorf("%w: role %q required", ErrInvalidToken, requiredRole)
	}

	return &Identity{
		Subject:   claims.Subject,
		Role:      claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
