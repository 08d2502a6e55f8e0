package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"

	"github.com/Belphemur/Subtirrent/internal/config"
	grpcserver "github.com/Belphemur/Subtirrent/internal/grpc"
	"github.com/Belphemur/Subtirrent/internal/metrics"
	"github.com/Belphemur/Subtirrent/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the addon HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(parent context.Context, cfg *config.Config) error {
	logger := config.GetLogger()

	signalCtx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			Release:     "subtirrent@" + version,
		}); err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Sentry, continuing without error reporting")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	rt, err := newPipelineRuntime(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to release resources")
		}
	}()

	logger.Info().
		Str("server_address", cfg.Server.Address).
		Int("server_port", cfg.Server.Port).
		Str("base_url", cfg.BaseURL).
		Str("cache_provider", cfg.Cache.Provider).
		Bool("grpc_enabled", cfg.GRPC.Enabled).
		Bool("metrics_enabled", cfg.Metrics.Enabled).
		Str("version", version).
		Msg("Application started with configuration")

	handler := server.New(server.Options{
		Pipeline:           rt.pipeline,
		Streams:            rt.streams,
		Version:            version,
		DefaultAPIKey:      cfg.Debrid.APIKey,
		PreferredLanguages: cfg.Subtitle.PreferredLanguages,
	})
	httpServer := server.NewHTTPServer(cfg.Server.Address, cfg.Server.Port, handler)

	// Each listener reports its terminal error here; nil means a clean stop.
	errCh := make(chan error, 3)
	var stops []func()
	running := 0

	running++
	go func() {
		logger.Info().Str("address", httpServer.Addr).Msg("Starting addon HTTP server")
		errCh <- serveHTTP(httpServer, "http")
	}()
	stops = append(stops, func() { shutdownHTTP(httpServer) })

	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg.Server.Address, cfg.Metrics.Port)
		running++
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			errCh <- serveHTTP(metricsServer, "metrics")
		}()
		stops = append(stops, func() { shutdownHTTP(metricsServer) })
	}

	if cfg.GRPC.Enabled {
		address := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.GRPC.Port)
		listener, err := net.Listen("tcp", address)
		if err != nil {
			for _, stop := range stops {
				stop()
			}
			return fmt.Errorf("listen grpc on %s: %w", address, err)
		}
		grpcServer := grpcserver.NewGRPCServer(rt.pipeline)
		running++
		go func() {
			logger.Info().Str("address", address).Msg("Starting gRPC server")
			if err := grpcServer.Serve(listener); err != nil {
				errCh <- fmt.Errorf("serve grpc: %w", err)
				return
			}
			errCh <- nil
		}()
		stops = append(stops, grpcServer.GracefulStop)
	}

	var firstErr error
	select {
	case <-signalCtx.Done():
		logger.Info().Msg("Received shutdown signal")
	case firstErr = <-errCh:
		running--
		if firstErr != nil {
			logger.Error().Err(firstErr).Msg("Server failed, shutting down")
		}
	}

	for _, stop := range stops {
		stop()
	}
	for ; running > 0; running-- {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		return firstErr
	}
	logger.Info().Msg("Server stopped gracefully")
	return nil
}

func serveHTTP(srv *http.Server, name string) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve %s: %w", name, err)
	}
	return nil
}

func shutdownHTTP(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger := config.GetLogger()
		logger.Error().Err(err).Str("address", srv.Addr).Msg("Failed to shutdown server")
	}
}
