// Package commands is the notebookctl command tree. It drives the same
// stores and view components as the web console.
package commands

import (
	"context"
	"fmt"
	"os"

	"notebook-console/internal/apiclient"
	"notebook-console/internal/config"
	"notebook-console/internal/domain"
	"notebook-console/internal/resource"
	"notebook-console/internal/view"
	"notebook-console/pkg/logger"

	"github.com/spf13/cobra"
)

// Opener builds the workspace a command runs against.
type Opener func(ctx context.Context) (*resource.Workspace, view.FormOptions, error)

func New() *cobra.Command {
	return NewWithOpener(openFromConfig)
}

func NewWithOpener(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "notebookctl",
		Short:         "Manage note books, notes and shares from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	oo := &OutputOptions{}
	AddOutputArg(cmd, oo)

	AddCommands(cmd, open, oo)
	return cmd
}

func AddCommands(topLevel *cobra.Command, open Opener, oo *OutputOptions) {
	addEntity(topLevel, resource.KeyNoteBook, open, oo, func(w *resource.Workspace) *resource.Resource[domain.NoteBook] {
		return w.NoteBooks
	})
	addEntity(topLevel, resource.KeyNote, open, oo, func(w *resource.Workspace) *resource.Resource[domain.Note] {
		return w.Notes
	})
	addEntity(topLevel, resource.KeyShare, open, oo, func(w *resource.Workspace) *resource.Resource[domain.Share] {
		return w.Shares
	})
}

func openFromConfig(ctx context.Context) (*resource.Workspace, view.FormOptions, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, view.FormOptions{}, err
	}

	lg := logger.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	api := apiclient.New(apiclient.Config{
		BaseURL:    cfg.API.BaseURL,
		Timeout:    cfg.API.Timeout,
		Token:      cfg.API.Token,
		Username:   cfg.API.Username,
		Password:   cfg.API.Password,
		RememberMe: cfg.API.RememberMe,
		AppName:    cfg.API.AppName,
		Logger:     lg,
	})
	if err := api.EnsureSession(ctx); err != nil {
		return nil, view.FormOptions{}, fmt.Errorf("failed to authenticate: %w", err)
	}

	w := resource.NewWorkspace(resource.WorkspaceConfig{
		API:       api,
		UsersPath: cfg.API.UsersPath,
		Location:  cfg.Server.TimeZone,
		Logger:    lg,
	})
	return w, view.FormOptions{Location: cfg.Server.TimeZone}, nil
}
