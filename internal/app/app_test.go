package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zalando/go-keyring"

	"github.com/y0av/telegram-openai-bot/internal/config"
	"github.com/y0av/telegram-openai-bot/internal/types"
)

type botServer struct {
	mu      sync.Mutex
	methods []string
	texts   []string
}

func (b *botServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.ParseMultipartForm(1 << 20)
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	b.mu.Lock()
	b.methods = append(b.methods, method)
	b.texts = append(b.texts, r.FormValue("text"))
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch method {
	case "setWebhook":
		w.Write([]byte(`{"ok":true,"result":true}`))
	default:
		w.Write([]byte(`{"ok":true,"result":{"message_id":9,"date":0,"chat":{"id":3,"type":"private"}}}`))
	}
}

func testConfig(t *testing.T, telegramURL, openAIURL string) *config.Config {
	return &config.Config{
		TelegramToken:       "test-token",
		TelegramAPIEndpoint: telegramURL + "/bot%s/%s",
		TelegramRateLimit:   100,
		OpenAIKey:           "sk-test",
		OpenAIEndpoint:      openAIURL,
		Image1Model:         "gpt-image-1",
		Dalle3Model:         "dall-e-3",
		EditModel:           "gpt-image-1",
		ProgressInterval:    time.Hour,
		TempDir:             t.TempDir(),
	}
}

func TestNewApp_MissingSecrets(t *testing.T) {
	_, err := NewApp(&config.Config{}, nil)
	if !errors.Is(err, config.ErrMissingConfig) {
		t.Fatalf("expected ErrMissingConfig, got %v", err)
	}
}

func TestHandleUpdate_EndToEnd(t *testing.T) {
	tg := &botServer{}
	tgServer := httptest.NewServer(tg)
	defer tgServer.Close()

	openAI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"created":1,"data":[{"url":"https://images.example/fox.png"}]}`))
	}))
	defer openAI.Close()

	a, err := NewApp(testConfig(t, tgServer.URL, openAI.URL), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Service == nil || a.TelegramHandler == nil || a.APIHandler == nil {
		t.Fatal("app not fully wired")
	}

	a.HandleUpdate(context.Background(), &types.TelegramUpdate{Message: &types.TelegramMessage{
		Chat: types.TelegramChat{ID: 3},
		Text: "/image1 a red fox",
	}})

	want := []string{"sendMessage", "sendPhoto", "editMessageText"}
	if strings.Join(tg.methods, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected Bot API calls %v", tg.methods)
	}
	if !strings.HasSuffix(tg.texts[2], "✅") {
		t.Errorf("indicator not finalized: %q", tg.texts[2])
	}
}

func TestRegisterWebhook(t *testing.T) {
	tg := &botServer{}
	tgServer := httptest.NewServer(tg)
	defer tgServer.Close()

	cfg := testConfig(t, tgServer.URL, "http://127.0.0.1:1")
	a, err := NewApp(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.RegisterWebhook(context.Background()); err != nil || len(tg.methods) != 0 {
		t.Fatalf("expected no call without a webhook url, got %v %v", err, tg.methods)
	}

	cfg.WebhookURL = "https://bot.example.com/"
	if err := a.RegisterWebhook(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tg.methods) != 1 || tg.methods[0] != "setWebhook" {
		t.Errorf("unexpected calls %v", tg.methods)
	}
}

func TestFactory_SharesLimiterAcrossBuilds(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "test-token")
	t.Setenv("OPENAI_KEY", "sk-test")
	t.Setenv("TELEGRAM_RATE_LIMIT", "10")

	f := NewFactory()
	first, err := f.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.(*App) == second.(*App) {
		t.Error("each build must produce a fresh App")
	}
	if f.limiter == nil || f.limiter.Limit() != 10 {
		t.Fatalf("unexpected shared limiter %v", f.limiter)
	}
	if f.limiterFor(10) != f.limiter {
		t.Error("limiter should be reused while the rate is unchanged")
	}
	if l := f.limiterFor(5); l.Limit() != 5 {
		t.Errorf("limiter should follow a changed rate, got %v", l.Limit())
	}
}

func TestFactory_MissingConfig(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("OPENAI_KEY", "")
	keyring.MockInit()

	if _, err := NewFactory().Build(); !errors.Is(err, config.ErrMissingConfig) {
		t.Errorf("expected ErrMissingConfig, got %v", err)
	}
}
