package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultTokenTTL = time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoSigningKey = errors.New("no signing key configured")
	errEmptySubject = errors.New("token subject is empty")
)

// Claims defines JWT claims for webhook and API tokens.
type Claims struct {
	jwt.RegisteredClaims
	DeviceID string `json:"device_id,omitempty"`
}

// TokenService signs and verifies HS256 tokens. Without a secret it hands out the
// static token (possibly empty) and verification is disabled.
type TokenService struct {
	secret  []byte
	static  string
	subject string
	ttl     time.Duration
	now     func() time.Time
}

// NewTokenService returns an issuer for subject. ttl <= 0 means one hour.
func NewTokenService(secret, subject string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), subject: subject, ttl: ttl, now: time.Now}
}

// NewWebhookTokens mints per-request JWTs for deviceID when secret is set, otherwise
// returns the static token.
func NewWebhookTokens(static, secret, deviceID string, ttl time.Duration) *TokenService {
	s := NewTokenService(secret, deviceID, ttl)
	s.static = strings.TrimSpace(static)
	return s
}

// Enabled reports whether tokens are signed and verified.
func (s *TokenService) Enabled() bool { return len(s.secret) > 0 }

// Token implements delivery.TokenSource.
func (s *TokenService) Token() (string, error) {
	if !s.Enabled() {
		return s.static, nil
	}
	return s.Issue(s.subject)
}

// Issue signs a token for subject.
func (s *TokenService) Issue(subject string) (string, error) {
	if !s.Enabled() {
		return "", ErrNoSigningKey
	}
	if strings.TrimSpace(subject) == "" {
		return "", errEmptySubject
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		DeviceID: s.subject,
	})
	return token.SignedString(s.secret)
}

// ParseToken verifies accessToken and returns its subject.
func (s *TokenService) ParseToken(accessToken string) (string, error) {
	if !s.Enabled() {
		return "", ErrNoSigningKey
	}
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
