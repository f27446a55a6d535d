package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aanand-mishra/student-records/internal/http/server"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "serve",
		Short:       "Serve the records over HTTP",
		Long:        "Serves the REST API, the /ws live feed, /health and (when enabled) /metrics until SIGINT or SIGTERM.",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{needsStore: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

// serve runs the HTTP view until ctx is done, then shuts it down within
// the configured timeout.
func (a *app) serve(ctx context.Context) error {
	srv := server.New(a.cfg, a.logger, a.store)

	// Start blocks, so it runs in its own goroutine while this one waits
	// for a shutdown signal.
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Start()
	}()

	select {
	case err := <-errc:
		if err != nil {
			a.logger.Error("server encountered an error", zap.Error(err))
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("failed to shutdown server gracefully", zap.Error(err))
		return err
	}

	return <-errc
}
