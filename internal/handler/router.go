package handler

import (
	"net/http"

	"notebook-console/internal/domain"
	"notebook-console/internal/middleware"
	"notebook-console/internal/resource"
	"notebook-console/internal/session"
	"notebook-console/internal/view"
	"notebook-console/internal/websocket"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type RouterConfig struct {
	Sessions    *session.Manager
	API         middleware.APISession
	WebSocket   *websocket.Manager
	Renderer    *Renderer
	FormOptions view.FormOptions
	Logger      zerolog.Logger
}

func NewRouter(cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware(cfg.Logger))
	r.Use(middleware.RecoverMiddleware(cfg.Renderer.Fallback()))
	r.NotFoundHandler = middleware.LoggerMiddleware(cfg.Logger)(cfg.Renderer.NotFound())

	home := NewHomeHandler(cfg.Renderer, cfg.Sessions)
	r.HandleFunc("/health", home.Health).Methods(http.MethodGet)

	pages := r.PathPrefix("/").Subrouter()
	pages.Use(middleware.SessionMiddleware(cfg.Sessions, cfg.API))

	pages.HandleFunc("/", home.Home).Methods(http.MethodGet)
	pages.HandleFunc("/state/{entity}", home.State).Methods(http.MethodGet)

	if cfg.WebSocket != nil {
		wsHandler := NewWebSocketHandler(cfg.WebSocket)
		pages.HandleFunc("/ws", wsHandler.HandleConnection)
	}

	NewEntityHandler(resource.KeyNoteBook, func(w *resource.Workspace) *resource.Resource[domain.NoteBook] {
		return w.NoteBooks
	}, cfg.Renderer, cfg.FormOptions).Register(pages)
	NewEntityHandler(resource.KeyNote, func(w *resource.Workspace) *resource.Resource[domain.Note] {
		return w.Notes
	}, cfg.Renderer, cfg.FormOptions).Register(pages)
	NewEntityHandler(resource.KeyShare, func(w *resource.Workspace) *resource.Resource[domain.Share] {
		return w.Shares
	}, cfg.Renderer, cfg.FormOptions).Register(pages)

	return r
}
