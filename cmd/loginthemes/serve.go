package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/loginthemes/internal/httpapi"
	"github.com/jmylchreest/loginthemes/internal/theme"
)

var serveOpts struct {
	listen  string
	noWatch bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the theme HTTP API",
	Long: `Serve the theme HTTP API under server.base_path.

Routes:
  GET    /list                 all themes and the current theme id
  GET    /current              current theme id and its record
  POST   /apply                {"themeId"}
  POST   /import               {"name", "css", "metadata"}
  POST   /update               {"themeId", "css", "metadata"}
  DELETE /delete/{themeId}
  GET    /export/{themeId}     {"success", "css", "meta"}
  GET    /preview/{themeId}    raw CSS

Unless disabled, the active theme file and config.json are watched and the
stylesheet is re-synced when they change on disk.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveOpts.listen, "listen", "",
		"Listen address (overrides server.listen)")
	serveCmd.Flags().BoolVar(&serveOpts.noWatch, "no-watch", false,
		"Do not watch theme files for changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.Server.Listen
	if serveOpts.listen != "" {
		addr = serveOpts.listen
	}

	api := httpapi.NewServer(manager, cfg.Server.BasePath, logger)
	server := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var watcher *theme.Watcher
	if cfg.Watch.Enabled && !serveOpts.noWatch {
		var err error
		watcher, err = theme.NewWatcher(manager, logger)
		if err != nil {
			return fmt.Errorf("failed to create theme watcher: %w", err)
		}
		if d := cfg.Watch.Debounce.Duration(); d > 0 {
			watcher.SetDebounce(d)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", "addr", addr, "base_path", api.BasePath())
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if watcher != nil {
		g.Go(func() error {
			return watcher.Run(ctx)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
		defer cancel()

		logger.Info("shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	return g.Wait()
}
