// Package auth issues and verifies bearer tokens whose subject is the user's email.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"travel-review-service/internal/apperror"
)

// IdentityResolver turns a bearer token into the caller's identity (email).
// Implementations return an Unauthorized apperror for bad tokens.
type IdentityResolver interface {
	ResolveIdentity(token string) (string, error)
}

// TokenIssuer mints a token for an identity.
type TokenIssuer interface {
	Issue(identity string) (string, error)
}

// Claims are the access-token claims. Subject carries the email.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var (
	_ IdentityResolver = (*TokenManager)(nil)
	_ TokenIssuer      = (*TokenManager)(nil)
)

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (m *TokenManager) Issue(identity string) (string, error) {
	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (m *TokenManager) ResolveIdentity(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", apperror.Unauthorized("Missing token")
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperror.Unauthorized("Token has expired")
		}
		return "", apperror.Unauthorized("Invalid token")
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", apperror.Unauthorized("Invalid token")
	}
	return claims.Subject, nil
}
