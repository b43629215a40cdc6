package middleware

import (
	"context"
	"errors"
	"net/http"

	"notebook-console/internal/session"
	"notebook-console/pkg/response"

	"github.com/rs/zerolog"
)

// APISession is satisfied by *apiclient.Client.
type APISession interface {
	EnsureSession(ctx context.Context) error
}

// SessionMiddleware attaches the browser session (and its workspace) to the
// request context and makes sure the API token is current. A failed login
// is logged and the request continues; the views then show the API's 401.
func SessionMiddleware(manager *session.Manager, api APISession) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := manager.Resolve(w, r)
			if err != nil {
				if errors.Is(err, session.ErrTooManySessions) {
					response.ServiceUnavailable(w, "Too many active sessions, try again later")
					return
				}
				response.InternalError(w, "Failed to start session")
				return
			}

			l := zerolog.Ctx(r.Context())
			l.UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("session", s.ID)
			})

			if api != nil {
				if err := api.EnsureSession(r.Context()); err != nil {
					l.Warn().Err(err).Msg("failed to authenticate against API")
				}
			}

			ctx := session.WithSession(r.Context(), s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetSession(r *http.Request) *session.Session {
	s, _ := session.FromContext(r.Context())
	return s
}
