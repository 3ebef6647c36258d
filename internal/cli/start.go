package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gincana-service/internal/config"
	redisstore "gincana-service/internal/infra/redis"
	transport "gincana-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the gincana HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
	cmd.Flags().StringVar(port, "port", "", "port to listen on (overrides config)")
	return cmd
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := loadRuntime(ctx, configPath)
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg, logger := rt.cfg, rt.logger

	if rt.redis != nil {
		// Snapshots from other instances reach local projector streams through the relay.
		if err := redisstore.NewFeedRelay(rt.redis, rt.feed, logger).Start(ctx); err != nil {
			return err
		}
	}
	if cfg.Catalog.SeedOnStart {
		if _, err := rt.seedCatalog(ctx); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	writeTimeout := config.TTLDuration(cfg.Server.WriteTimeout, 15*time.Second)
	handler := transport.NewRouter(rt.services, transport.RouterOptions{
		CORSOrigins:    cfg.Server.CORSOrigins,
		RequestTimeout: writeTimeout,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       config.TTLDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout:      writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("starting gincana service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Error().Err(err).Msg("server failed")
		return err
	case <-ctx.Done():
		logger.Info().Msg("shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		config.TTLDuration(cfg.Server.ShutdownTimeout, 5*time.Second))
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
