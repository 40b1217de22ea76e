// utility_scripts/diagnostic.go

package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/y0av/telegram-openai-bot/internal/api"
	"github.com/y0av/telegram-openai-bot/internal/config"
	"github.com/y0av/telegram-openai-bot/internal/logging"
	"github.com/y0av/telegram-openai-bot/internal/s3client"
	"github.com/y0av/telegram-openai-bot/internal/telegram"
)

// CheckS3Connectivity lists at most one object in the archive bucket.
func CheckS3Connectivity(ctx context.Context, cfg *config.Config) error {
	if !cfg.ArchiveEnabled() {
		log.Info().Msg("BUCKET_NAME not set, archiving disabled")
		return nil
	}
	client, err := s3client.NewS3Client(cfg.S3EndpointURL, cfg.S3Region)
	if err != nil {
		return fmt.Errorf("failed to create AWS session: %w", err)
	}
	_, err = client.ListObjectsV2WithContext(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(cfg.S3BucketName),
		MaxKeys: aws.Int64(1),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to S3 bucket '%s': %w", cfg.S3BucketName, err)
	}
	return nil
}

// CheckOpenAIConnectivity verifies the endpoint accepts the configured key.
func CheckOpenAIConnectivity(ctx context.Context, cfg *config.Config) error {
	return api.NewAPIHandler(cfg.OpenAIKey, cfg.OpenAIEndpoint).Ping(ctx)
}

// CheckTelegramConnectivity calls getMe with the configured token.
func CheckTelegramConnectivity(ctx context.Context, cfg *config.Config) error {
	th := telegram.NewTelegramHandler(cfg.TelegramToken, telegram.Options{
		APIEndpoint: cfg.TelegramAPIEndpoint,
		RateLimit:   cfg.TelegramRateLimit,
	})
	name, err := th.Ping(ctx)
	if err != nil {
		return err
	}
	log.Info().Str("bot", name).Msg("Telegram bot identified")
	return nil
}

// CheckTempDir verifies the image workspace directory is writable.
func CheckTempDir(cfg *config.Config) error {
	f, err := os.CreateTemp(cfg.TempDir, "diagnostic-*")
	if err != nil {
		return fmt.Errorf("temp dir %s is not writable: %w", cfg.TempDir, err)
	}
	f.Close()
	return os.Remove(f.Name())
}

// CheckPortAvailability verifies that the specified port is available for binding
func CheckPortAvailability(port string) error {
	listener, err := net.Listen("tcp", fmt.Sprintf("0.0.0.0:%s", port))
	if err != nil {
		return fmt.Errorf("port %s is not available: %w", port, err)
	}
	listener.Close()
	return nil
}

func runChecks(cfg *config.Config, cfgErr error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	checks := []struct {
		name string
		run  func() error
	}{
		{"Environment Variables", func() error { return cfgErr }},
		{"S3 Connectivity", func() error { return CheckS3Connectivity(ctx, cfg) }},
		{"OpenAI API Connectivity", func() error { return CheckOpenAIConnectivity(ctx, cfg) }},
		{"Telegram API Connectivity", func() error { return CheckTelegramConnectivity(ctx, cfg) }},
		{"Temp Dir", func() error { return CheckTempDir(cfg) }},
		{"Port Availability", func() error { return CheckPortAvailability(cfg.Port) }},
	}

	log.Info().Msg("Starting Diagnostic Checks...")
	for i, c := range checks {
		if err := c.run(); err != nil {
			log.Error().Err(err).Int("step", i+1).Msgf("%s Check Failed", c.name)
			continue
		}
		log.Info().Int("step", i+1).Msgf("%s Check Passed.", c.name)
	}
	log.Info().Msg("Diagnostic Checks Completed.")
}

// Runs once, or every DIAGNOSTIC_INTERVAL when that is set.
func main() {
	cfg, cfgErr := config.Load()
	logging.Init(cfg.LogLevel, cfg.LogJSON)

	interval, _ := time.ParseDuration(os.Getenv("DIAGNOSTIC_INTERVAL"))
	for {
		runChecks(cfg, cfgErr)
		if interval <= 0 {
			return
		}
		time.Sleep(interval)
	}
}
