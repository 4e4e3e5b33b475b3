package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dunamismax/pixelpro/internal/api"
	"github.com/dunamismax/pixelpro/internal/config"
	"github.com/dunamismax/pixelpro/internal/domain"
	"github.com/dunamismax/pixelpro/internal/editor"
	"github.com/dunamismax/pixelpro/internal/pipeline"
	"github.com/dunamismax/pixelpro/internal/telemetry"
)

func main() {
	cfg := config.Load()
	logger := telemetry.NewLogger(os.Stdout, telemetry.LogConfig{
		Service: domain.ProductName,
		Level:   cfg.Log.Level,
		Pretty:  cfg.Log.Pretty,
	})

	if err := requireLoopback(cfg.Server.Addr); err != nil {
		logger.Fatal().Err(err).Msg("refusing to listen")
	}

	shutdownTracing, err := telemetry.SetupTracing(context.Background(), telemetry.TraceConfig{
		ServiceName:  domain.ProductName,
		Exporter:     cfg.Tracing.Exporter,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		OTLPInsecure: cfg.Tracing.OTLPInsecure,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("tracing setup failed")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown failed")
		}
	}()

	if err := pipeline.Startup(); err != nil {
		logger.Fatal().Err(err).Msg("codec startup failed")
	}
	defer pipeline.Shutdown()

	processor, err := pipeline.NewProcessor()
	if err != nil {
		logger.Fatal().Err(err).Msg("processor setup failed")
	}

	exportDefaults, err := loadExportDefaults(cfg.Export)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid export defaults")
	}

	metrics := api.NewMetrics()
	controller, err := editor.NewController(processor, editor.Options{
		Logger:         &logger,
		Observer:       metrics,
		ExportDefaults: exportDefaults,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("editor setup failed")
	}
	app := api.NewServer(logger, controller, metrics)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      app.Handler(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Str("codec", pipeline.CodecName()).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info().Msg("shutting down")
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// requireLoopback keeps image data on the device: the host only binds to
// loopback addresses.
func requireLoopback(addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("parse listen address %q: %w", addr, err)
	}
	if host == "localhost" {
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		return fmt.Errorf("listen address %q is not a loopback address", addr)
	}
	return nil
}

func loadExportDefaults(cfg config.ExportConfig) (domain.ExportSettings, error) {
	format, err := domain.ParseFormat(cfg.Format)
	if err != nil {
		return domain.ExportSettings{}, err
	}
	return domain.ExportSettings{Format: format, Quality: cfg.Quality}.Normalize(), nil
}
