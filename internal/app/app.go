// internal/app/app.go

package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/y0av/telegram-openai-bot/internal/api"
	"github.com/y0av/telegram-openai-bot/internal/archive"
	"github.com/y0av/telegram-openai-bot/internal/bot"
	"github.com/y0av/telegram-openai-bot/internal/config"
	"github.com/y0av/telegram-openai-bot/internal/handlers"
	"github.com/y0av/telegram-openai-bot/internal/imagepipe"
	"github.com/y0av/telegram-openai-bot/internal/s3client"
	"github.com/y0av/telegram-openai-bot/internal/telegram"
	"github.com/y0av/telegram-openai-bot/internal/types"
)

// Ensure App implements handlers.UpdateProcessor
var _ handlers.UpdateProcessor = (*App)(nil)

// App represents one fully wired invocation of the bot.
type App struct {
	Config          *config.Config
	TelegramHandler *telegram.TelegramHandler
	APIHandler      *api.APIHandler
	Service         *bot.Service
}

// NewApp wires an App from cfg. Outbound Bot API calls wait on limiter, or
// on a private one built from TELEGRAM_RATE_LIMIT when limiter is nil.
// Archiving is enabled when a bucket is configured; an S3 setup failure only
// disables it.
func NewApp(cfg *config.Config, limiter *rate.Limiter) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	telegramHandler := telegram.NewTelegramHandler(cfg.TelegramToken, telegram.Options{
		APIEndpoint:  cfg.TelegramAPIEndpoint,
		FileEndpoint: cfg.TelegramFileEndpoint,
		RateLimit:    cfg.TelegramRateLimit,
		Limiter:      limiter,
	})
	apiHandler := api.NewAPIHandler(cfg.OpenAIKey, cfg.OpenAIEndpoint)

	var archiver handlers.Archiver
	if cfg.ArchiveEnabled() {
		client, err := s3client.NewS3Client(cfg.S3EndpointURL, cfg.S3Region)
		if err != nil {
			log.Warn().Err(err).Msg("S3 client unavailable, archiving disabled")
		} else {
			archiver = archive.NewS3Archiver(client, cfg.S3BucketName)
		}
	}

	service := bot.NewService(bot.Deps{
		Messenger: telegramHandler,
		Generator: apiHandler,
		Pipeline:  imagepipe.New(telegramHandler),
		Archiver:  archiver,
		Models: bot.Models{
			Image1: cfg.Image1Model,
			Dalle3: cfg.Dalle3Model,
			Edit:   cfg.EditModel,
		},
		TempDir:          cfg.TempDir,
		ProgressInterval: cfg.ProgressInterval,
	})

	return &App{
		Config:          cfg,
		TelegramHandler: telegramHandler,
		APIHandler:      apiHandler,
		Service:         service,
	}, nil
}

// Factory builds a fresh App for every update. The Bot API rate limiter is
// the only thing its Apps share, so TELEGRAM_RATE_LIMIT holds for the whole
// process.
type Factory struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	limit   float64
}

// NewFactory returns a Factory with no limiter yet; the first Build creates it.
func NewFactory() *Factory {
	return &Factory{}
}

// Build loads configuration and wires an App for one update.
func (f *Factory) Build() (handlers.UpdateProcessor, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	a, err := NewApp(cfg, f.limiterFor(cfg.TelegramRateLimit))
	if err != nil {
		return nil, err
	}
	return a, nil
}

// limiterFor returns the shared limiter, replacing it only when the
// configured rate changes.
func (f *Factory) limiterFor(limit float64) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.limiter == nil || f.limit != limit {
		f.limiter = telegram.NewLimiter(limit)
		f.limit = limit
	}
	return f.limiter
}

// HandleUpdate processes a single update to completion.
func (a *App) HandleUpdate(ctx context.Context, update *types.TelegramUpdate) {
	a.Service.HandleUpdate(ctx, update)
}

// RegisterWebhook points Telegram at the configured WEBHOOK_URL. Without
// one it does nothing.
func (a *App) RegisterWebhook(ctx context.Context) error {
	if a.Config.WebhookURL == "" {
		return nil
	}
	if err := a.TelegramHandler.SetWebhook(ctx, a.Config.WebhookURL); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	log.Info().Str("url", a.Config.WebhookURL).Msg("Telegram webhook set successfully.")
	return nil
}
