package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims mirrors the token issued by the notebook API: the subject is the
// login and "auth" carries the comma separated authorities.
type Claims struct {
	Auth string `json:"auth,omitempty"`
	jwt.RegisteredClaims
}

// ParseUnverified decodes a bearer token without checking its signature.
// The API verifies the token; the console only needs its expiry and subject.
func ParseUnverified(token string) (*Claims, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	return claims, nil
}

// ExpiresWithin reports whether the token expires before now+window.
// Tokens without an expiry never expire.
func (c *Claims) ExpiresWithin(now time.Time, window time.Duration) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Add(window).Before(c.ExpiresAt.Time)
}
