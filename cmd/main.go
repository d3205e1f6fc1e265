package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"frontoffice-voice-console/internal/app"
	"frontoffice-voice-console/internal/config"
	apihttp "frontoffice-voice-console/internal/http"
	"frontoffice-voice-console/internal/observability"
)

func main() {
	cfg := config.Load()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create application")
	}
	defer application.Shutdown()

	if err := application.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	// Give the providers a short window to come up. Serving anyway keeps
	// mock-provider and degraded deployments usable; /v1/readiness reports
	// the truth either way.
	readyCtx, readyCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := application.Registry.WaitReady(readyCtx); err != nil {
		log.Warn().Err(err).Msg("Providers not ready at startup, serving degraded")
	}
	readyCancel()

	// Observability server: /metrics and /healthz on a separate port.
	obsServer := observability.NewServer(cfg.MetricsAddr)
	obsServer.Start()

	handler := apihttp.NewHandler(
		application.Orchestrator,
		application.Registry,
		cfg.PrivacyModeDefault,
		cfg.MaxAudioBytes,
	)

	apiServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      apihttp.NewRouter(handler),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", apiServer.Addr).Msg("Voice console API started")
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("API server failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("API server shutdown error")
	}
	if err := obsServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Observability server shutdown error")
	}
}
