package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"notebook-console/internal/resource"
	"notebook-console/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type stubAPISession struct {
	calls int
	err   error
}

func (s *stubAPISession) EnsureSession(ctx context.Context) error {
	s.calls++
	return s.err
}

func newManager(max int) *session.Manager {
	return session.NewManager(session.Config{
		CookieName:  "sid",
		MaxSessions: max,
		Logger:      zerolog.Nop(),
	}, func(string) *resource.Workspace {
		return resource.NewWorkspace(resource.WorkspaceConfig{Logger: zerolog.Nop()})
	})
}

func TestLoggerMiddlewareRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	h := LoggerMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/note", nil))

	id := rr.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"status":418`)
	require.Contains(t, buf.String(), `"request_id":"`+id+`"`)

	given := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/note", nil)
	req.Header.Set(RequestIDHeader, given)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, given, rr.Header().Get(RequestIDHeader))
}

func TestSessionMiddleware(t *testing.T) {
	var buf bytes.Buffer
	api := &stubAPISession{err: errors.New("bad credentials")}
	manager := newManager(0)

	var seen *session.Session
	h := LoggerMiddleware(zerolog.New(&buf))(
		SessionMiddleware(manager, api)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetSession(r)
		})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, seen)
	require.NotNil(t, seen.Workspace)
	require.Equal(t, 1, api.calls)
	require.Contains(t, buf.String(), `"session":"`+seen.ID+`"`)
	require.Contains(t, buf.String(), "bad credentials")
}

func TestSessionMiddlewareLimit(t *testing.T) {
	manager := newManager(1)
	_, err := manager.Create()
	require.NoError(t, err)

	h := SessionMiddleware(manager, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestRecoverMiddleware(t *testing.T) {
	fallback := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("something went wrong"))
	})

	h := RecoverMiddleware(fallback)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "something went wrong", rr.Body.String())
}
