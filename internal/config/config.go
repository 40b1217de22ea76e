// internal/config/config.go

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/zalando/go-keyring"

	"github.com/y0av/telegram-openai-bot/internal/types"
)

// ErrMissingConfig is returned when a required secret is not configured.
var ErrMissingConfig = errors.New("missing required configuration")

const keyringService = "telegram-openai-bot"

// Config holds everything one invocation needs to build the bot.
type Config struct {
	TelegramToken        string
	TelegramAPIEndpoint  string
	TelegramFileEndpoint string
	TelegramRateLimit    float64

	OpenAIKey      string
	OpenAIEndpoint string
	Image1Model    string
	Dalle3Model    string
	EditModel      string

	ProgressInterval time.Duration
	TempDir          string

	S3BucketName  string
	S3Region      string
	S3EndpointURL string

	Port       string
	WebhookURL string
	LogLevel   string
	LogJSON    bool
}

// secretLookup resolves a secret from the OS keyring. Tests replace it.
var secretLookup = func(name string) (string, error) {
	return keyring.Get(keyringService, name)
}

// Load reads an optional .env file, then the environment, falling back to the
// OS keyring for the two secrets. A missing secret yields ErrMissingConfig.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found. Proceeding with environment variables.")
	}

	cfg := &Config{
		TelegramToken:        secret("TELEGRAM_TOKEN"),
		TelegramAPIEndpoint:  os.Getenv("TELEGRAM_API_ENDPOINT"),
		TelegramFileEndpoint: os.Getenv("TELEGRAM_FILE_ENDPOINT"),
		TelegramRateLimit:    floatEnv("TELEGRAM_RATE_LIMIT", 25),
		OpenAIKey:            secret("OPENAI_KEY"),
		OpenAIEndpoint:       stringEnv("OPENAI_ENDPOINT", "https://api.openai.com/v1"),
		Image1Model:          stringEnv("IMAGE1_MODEL", "gpt-image-1"),
		Dalle3Model:          stringEnv("DALLE3_MODEL", "dall-e-3"),
		EditModel:            stringEnv("EDIT_MODEL", "gpt-image-1"),
		ProgressInterval:     durationEnv("PROGRESS_INTERVAL", types.ProgressInterval),
		TempDir:              stringEnv("TEMP_DIR", os.TempDir()),
		S3BucketName:         os.Getenv("BUCKET_NAME"),
		S3Region:             os.Getenv("AWS_REGION"),
		S3EndpointURL:        os.Getenv("AWS_ENDPOINT_URL_S3"),
		Port:                 stringEnv("PORT", "8080"),
		WebhookURL:           os.Getenv("WEBHOOK_URL"),
		LogLevel:             stringEnv("LOG_LEVEL", "info"),
		LogJSON:              !boolEnv("LOG_PRETTY", false),
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every missing required variable at once.
func (c *Config) Validate() error {
	missingVars := []string{}
	if c.TelegramToken == "" {
		missingVars = append(missingVars, "TELEGRAM_TOKEN")
	}
	if c.OpenAIKey == "" {
		missingVars = append(missingVars, "OPENAI_KEY")
	}
	if len(missingVars) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missingVars, ", "))
	}
	return nil
}

// ArchiveEnabled reports whether generated images should be archived to S3.
func (c *Config) ArchiveEnabled() bool {
	return c.S3BucketName != ""
}

func secret(name string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	v, err := secretLookup(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(v)
}

func stringEnv(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}

func floatEnv(name string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		log.Warn().Str("var", name).Str("value", raw).Msg("ignoring invalid number")
		return def
	}
	return v
}

func durationEnv(name string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		log.Warn().Str("var", name).Str("value", raw).Msg("ignoring invalid duration")
		return def
	}
	return v
}

func boolEnv(name string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}
