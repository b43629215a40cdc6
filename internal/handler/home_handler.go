package handler

import (
	"net/http"

	"notebook-console/internal/middleware"
	"notebook-console/internal/session"
	"notebook-console/pkg/response"

	"github.com/gorilla/mux"
)

type HomeHandler struct {
	render   *Renderer
	sessions *session.Manager
}

func NewHomeHandler(render *Renderer, sessions *session.Manager) *HomeHandler {
	return &HomeHandler{
		render:   render,
		sessions: sessions,
	}
}

func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "home", Page{Title: "Home"})
}

func (h *HomeHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]any{
		"status":   "healthy",
		"service":  "notebook-console",
		"sessions": h.sessions.Count(),
	})
}

// State returns the session's store for one entity as JSON.
func (h *HomeHandler) State(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSession(r)
	if s == nil {
		response.InternalError(w, "No session")
		return
	}

	state, ok := s.Workspace.Snapshot(mux.Vars(r)["entity"])
	if !ok {
		response.NotFound(w, "Unknown entity")
		return
	}
	response.Success(w, state)
}
