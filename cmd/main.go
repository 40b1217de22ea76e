// cmd/main.go

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/y0av/telegram-openai-bot/internal/app"
	"github.com/y0av/telegram-openai-bot/internal/config"
	"github.com/y0av/telegram-openai-bot/internal/logging"
	"github.com/y0av/telegram-openai-bot/internal/webhook"
)

func main() {
	cfg, cfgErr := config.Load()
	logging.Init(cfg.LogLevel, cfg.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfgErr != nil {
		log.Warn().Err(cfgErr).Msg("Configuration incomplete. Updates will be acknowledged but not processed.")
	} else if botApp, err := app.NewApp(cfg, nil); err != nil {
		log.Warn().Err(err).Msg("Failed to initialize bot")
	} else if err := botApp.RegisterWebhook(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to register webhook")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           webhook.NewHandler(app.NewFactory().Build),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
