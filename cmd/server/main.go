package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notebook-console/internal/apiclient"
	"notebook-console/internal/config"
	"notebook-console/internal/handler"
	"notebook-console/internal/resource"
	"notebook-console/internal/session"
	"notebook-console/internal/view"
	"notebook-console/internal/websocket"
	"notebook-console/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	lg := logger.New(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)

	api := apiclient.New(apiclient.Config{
		BaseURL:    cfg.API.BaseURL,
		Timeout:    cfg.API.Timeout,
		Token:      cfg.API.Token,
		Username:   cfg.API.Username,
		Password:   cfg.API.Password,
		RememberMe: cfg.API.RememberMe,
		AppName:    cfg.API.AppName,
		Logger:     lg.With().Str("component", "apiclient").Logger(),
	})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// WebSocket Manager
	wsManager := websocket.NewManager(websocket.Config{
		MaxConnPerSession: cfg.WebSocket.MaxConnPerSession,
		WriteWait:         cfg.WebSocket.WriteWait,
		PongWait:          cfg.WebSocket.PongWait,
		PingPeriod:        cfg.WebSocket.PingPeriod,
		Logger:            lg.With().Str("component", "websocket").Logger(),
	})
	wsManager.SetMessageHandler(handler.NewWebSocketMessageHandler(lg))
	go wsManager.Run(ctx)

	sessions := session.NewManager(session.Config{
		CookieName:  cfg.Session.CookieName,
		IdleTimeout: cfg.Session.IdleTimeout,
		MaxSessions: cfg.Session.MaxSessions,
		Secure:      cfg.Server.Env == "production",
		Logger:      lg.With().Str("component", "session").Logger(),
	}, func(id string) *resource.Workspace {
		w := resource.NewWorkspace(resource.WorkspaceConfig{
			API:       api,
			UsersPath: cfg.API.UsersPath,
			Location:  cfg.Server.TimeZone,
			Logger:    lg.With().Str("session", id).Logger(),
		})
		w.Subscribe(wsManager.StoreListener(id))
		return w
	})
	go sessions.Run(ctx)

	renderer, err := handler.NewRenderer()
	if err != nil {
		lg.Fatal().Err(err).Msg("failed to parse templates")
	}

	r := handler.NewRouter(handler.RouterConfig{
		Sessions:    sessions,
		API:         api,
		WebSocket:   wsManager,
		Renderer:    renderer,
		FormOptions: view.FormOptions{Location: cfg.Server.TimeZone, Validate: validator.New()},
		Logger:      lg,
	})

	addr := cfg.Addr()

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lg.Info().
			Str("addr", addr).
			Str("env", cfg.Server.Env).
			Str("api", cfg.API.BaseURL).
			Msg("starting notebook console")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info().Msg("shutting down server")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Fatal().Err(err).Msg("server forced to shutdown")
	}

	lg.Info().Msg("server stopped gracefully")
}
