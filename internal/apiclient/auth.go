package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"notebook-console/pkg/jwt"
)

// refreshWindow is how long before expiry EnsureSession logs in again.
const refreshWindow = time.Minute

var ErrNoCredentials = errors.New("no API credentials configured")

type authenticateRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type authenticateResponse struct {
	IDToken string `json:"id_token"`
}

// Authenticate exchanges credentials for a bearer token used by every
// subsequent request.
func (c *Client) Authenticate(ctx context.Context, username, password string, rememberMe bool) error {
	var out authenticateResponse
	_, err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/authenticate",
		Body: authenticateRequest{
			Username:   username,
			Password:   password,
			RememberMe: rememberMe,
		},
		Result: &out,
	})
	if err != nil {
		return fmt.Errorf("failed to authenticate %s: %w", username, err)
	}
	if out.IDToken == "" {
		return fmt.Errorf("failed to authenticate %s: empty token", username)
	}

	c.SetToken(out.IDToken)
	c.logger.Info().Str("login", c.Subject()).Msg("authenticated against API")
	return nil
}

// EnsureSession logs in with the configured credentials when there is no
// token yet or the current one is about to expire. A static token without
// credentials is used as is.
func (c *Client) EnsureSession(ctx context.Context) error {
	c.mu.RLock()
	token, claims := c.token, c.claims
	c.mu.RUnlock()

	if token != "" && (claims == nil || !claims.ExpiresWithin(c.now(), refreshWindow)) {
		return nil
	}
	if c.username == "" {
		if token != "" {
			return nil
		}
		return ErrNoCredentials
	}

	return c.Authenticate(ctx, c.username, c.password, c.rememberMe)
}

func (c *Client) SetToken(token string) {
	claims, err := jwt.ParseUnverified(token)
	if err != nil {
		c.logger.Warn().Err(err).Msg("bearer token is not a readable JWT, expiry unknown")
		claims = nil
	}

	c.mu.Lock()
	c.token = token
	c.claims = claims
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Subject is the login the current token was issued to.
func (c *Client) Subject() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.claims == nil {
		return ""
	}
	return c.claims.Subject
}
