package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func withoutKeyring(t *testing.T, values map[string]string) {
	t.Helper()
	old := secretLookup
	secretLookup = func(name string) (string, error) {
		if v, ok := values[name]; ok {
			return v, nil
		}
		return "", errors.New("secret not found in keyring")
	}
	t.Cleanup(func() { secretLookup = old })
}

func TestLoad_MissingSecrets(t *testing.T) {
	withoutKeyring(t, nil)
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("OPENAI_KEY", "")

	_, err := Load()
	if !errors.Is(err, ErrMissingConfig) {
		t.Fatalf("expected ErrMissingConfig, got %v", err)
	}
	if !strings.Contains(err.Error(), "TELEGRAM_TOKEN") || !strings.Contains(err.Error(), "OPENAI_KEY") {
		t.Errorf("error should name both variables: %v", err)
	}
}

func TestLoad_OneSecretMissing(t *testing.T) {
	withoutKeyring(t, nil)
	t.Setenv("TELEGRAM_TOKEN", "tg-token")
	t.Setenv("OPENAI_KEY", "")

	_, err := Load()
	if !errors.Is(err, ErrMissingConfig) {
		t.Fatalf("expected ErrMissingConfig, got %v", err)
	}
	if strings.Contains(err.Error(), "TELEGRAM_TOKEN") {
		t.Errorf("TELEGRAM_TOKEN is set and should not be reported: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	withoutKeyring(t, nil)
	t.Setenv("TELEGRAM_TOKEN", "tg-token")
	t.Setenv("OPENAI_KEY", "sk-test")
	t.Setenv("OPENAI_ENDPOINT", "")
	t.Setenv("PROGRESS_INTERVAL", "")
	t.Setenv("BUCKET_NAME", "")
	t.Setenv("TELEGRAM_RATE_LIMIT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OpenAIEndpoint != "https://api.openai.com/v1" {
		t.Errorf("unexpected endpoint %s", cfg.OpenAIEndpoint)
	}
	if cfg.Image1Model != "gpt-image-1" || cfg.Dalle3Model != "dall-e-3" {
		t.Errorf("unexpected models %s / %s", cfg.Image1Model, cfg.Dalle3Model)
	}
	if cfg.ProgressInterval != 2*time.Second {
		t.Errorf("expected 2s progress interval, got %s", cfg.ProgressInterval)
	}
	if cfg.TelegramRateLimit != 25 {
		t.Errorf("expected rate limit 25, got %v", cfg.TelegramRateLimit)
	}
	if cfg.ArchiveEnabled() {
		t.Error("archive should be disabled without a bucket")
	}
}

func TestLoad_KeyringFallback(t *testing.T) {
	withoutKeyring(t, map[string]string{
		"TELEGRAM_TOKEN": "from-keyring",
		"OPENAI_KEY":     "sk-keyring",
	})
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("OPENAI_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TelegramToken != "from-keyring" || cfg.OpenAIKey != "sk-keyring" {
		t.Errorf("keyring values not used: %+v", cfg)
	}
}

func TestLoad_InvalidOverridesFallBack(t *testing.T) {
	withoutKeyring(t, nil)
	t.Setenv("TELEGRAM_TOKEN", "tg-token")
	t.Setenv("OPENAI_KEY", "sk-test")
	t.Setenv("PROGRESS_INTERVAL", "soon")
	t.Setenv("TELEGRAM_RATE_LIMIT", "-4")
	t.Setenv("BUCKET_NAME", "archive-bucket")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ProgressInterval != 2*time.Second {
		t.Errorf("invalid interval should fall back, got %s", cfg.ProgressInterval)
	}
	if cfg.TelegramRateLimit != 25 {
		t.Errorf("invalid rate should fall back, got %v", cfg.TelegramRateLimit)
	}
	if !cfg.ArchiveEnabled() {
		t.Error("archive should be enabled with a bucket")
	}
}
