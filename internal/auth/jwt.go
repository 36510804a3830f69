// Package auth provides session tokens, the verified caller context, and the
// GitHub OAuth login used to obtain a session.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. User visits /auth/github/login → redirected to GitHub
//  2. GitHub calls back /auth/github/callback with a code
//  3. Server exchanges the code for the GitHub profile
//  4. Server issues a signed session token (JWT) carrying the subject and
//     display name, stored in an HttpOnly cookie
//  5. On later requests, middleware verifies the token and puts a Caller on
//     the request context
//
// No database row is written at login: role records are created only when a
// role is assigned, so a brand new user simply has no row and resolves to
// the default "user" role.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "hypeshelf"

// DefaultSessionTTL is used when NewTokenService is given a zero TTL.
const DefaultSessionTTL = 24 * time.Hour

// TokenService issues and verifies HS256 session tokens.
// It implements Verifier.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

var _ Verifier = (*TokenService)(nil)

// NewTokenService creates a TokenService with the given secret and session
// lifetime. The secret should be at least 32 bytes of random data in
// production, e.g. JWT_SECRET=$(openssl rand -hex 32).
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL is the lifetime of tokens issued by Generate.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// claims is the JWT payload. "sub" holds the caller subject; name and
// nickname carry the display name so the service never needs a profile
// lookup to attribute a recommendation.
type claims struct {
	Name     string `json:"name,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	jwt.RegisteredClaims
}

// Generate signs a session token for c with the service's TTL.
func (s *TokenService) Generate(c Caller) (string, error) {
	return s.GenerateWithDuration(c, s.ttl)
}

// GenerateWithDuration signs a session token with a custom lifetime.
// Used in tests (negative durations produce already-expired tokens).
func (s *TokenService) GenerateWithDuration(c Caller, d time.Duration) (string, error) {
	if c.Subject == "" {
		return "", errors.New("auth: caller subject must not be empty")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Name:     c.Name,
		Nickname: c.Nickname,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and checks a session token and returns the Caller it encodes.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid
//   - Token is not expired, and carries an expiry at all
//   - Issuer is "hypeshelf"
//   - Algorithm is HS256 (blocks "alg: none" and algorithm confusion)
func (s *TokenService) Verify(_ context.Context, tokenStr string) (Caller, error) {
	if tokenStr == "" {
		return Caller{}, ErrNoCredentials
	}

	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Caller{}, fmt.Errorf("auth: token expired")
		}
		return Caller{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return Caller{}, fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return Caller{}, fmt.Errorf("auth: token has no subject")
	}

	return Caller{Subject: c.Subject, Name: c.Name, Nickname: c.Nickname}, nil
}
