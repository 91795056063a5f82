package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/recap/internal/remote"
	"github.com/roach88/recap/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Database string
	Listen   string
	Match    string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an artifact database over HTTP",
		Long: `Run the HTTP artifact service backed by a SQLite database. Engines in
other processes use it by setting remote_url.

Examples:
  recap serve --db ./recap.db --listen 127.0.0.1:8765`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().StringVar(&opts.Listen, "listen", "", "listen address (default from config)")
	cmd.Flags().StringVar(&opts.Match, "match", "", "lookup policy: key|exact (default from config)")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions, cmd *cobra.Command) error {
	ctx = commandContext(ctx)

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if opts.Listen != "" {
		cfg.Listen = opts.Listen
	}
	if opts.Match != "" {
		cfg.Match = opts.Match
	}

	match, err := store.ParseMatchMode(cfg.Match)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid match mode", err)
	}
	st, err := store.Open(cfg.Database, store.WithMatchMode(match))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	logger := opts.logger(cmd.ErrOrStderr())
	e := remote.NewServer(st, logger).Echo()

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(cfg.Listen)
	}()
	logger.Warn("artifact service started", "listen", cfg.Listen, "database", cfg.Database, "match", string(match))

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitCommandError, "server failed", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitCommandError, "failed to shut down", err)
	}
	logger.Warn("artifact service stopped")
	return nil
}
