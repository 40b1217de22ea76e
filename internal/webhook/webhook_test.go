package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/y0av/telegram-openai-bot/internal/handlers"
	"github.com/y0av/telegram-openai-bot/internal/types"
)

type recordingProcessor struct {
	updates []*types.TelegramUpdate
	panics  bool
}

func (p *recordingProcessor) HandleUpdate(ctx context.Context, update *types.TelegramUpdate) {
	if p.panics {
		panic("boom")
	}
	p.updates = append(p.updates, update)
}

func factoryFor(p *recordingProcessor, builds *int) Factory {
	return func() (handlers.UpdateProcessor, error) {
		*builds++
		return p, nil
	}
}

func TestAcknowledge_ProcessesUpdate(t *testing.T) {
	p := &recordingProcessor{}
	var builds int
	h := NewHandler(factoryFor(p, &builds))

	body := `{"update_id":10,"message":{"message_id":1,"chat":{"id":5,"type":"private"},"text":"/test"}}`
	if got := h.Acknowledge(context.Background(), []byte(body)); got != Ack {
		t.Errorf("unexpected ack %q", got)
	}
	if len(p.updates) != 1 || p.updates[0].Message.Text != "/test" || p.updates[0].Message.Chat.ID != 5 {
		t.Fatalf("update not delivered: %+v", p.updates)
	}

	h.Acknowledge(context.Background(), []byte(body))
	if builds != 2 {
		t.Errorf("expected a fresh processor per delivery, got %d builds", builds)
	}
}

func TestAcknowledge_AlwaysOK(t *testing.T) {
	cases := map[string]struct {
		body    string
		factory Factory
	}{
		"malformed json": {
			body: "{not json",
			factory: func() (handlers.UpdateProcessor, error) {
				t.Error("factory must not run for undecodable bodies")
				return nil, nil
			},
		},
		"missing config": {
			body: `{"update_id":1,"message":{"chat":{"id":1},"text":"/test"}}`,
			factory: func() (handlers.UpdateProcessor, error) {
				return nil, errors.New("missing required configuration: TELEGRAM_TOKEN")
			},
		},
		"panicking processor": {
			body: `{"update_id":1,"message":{"chat":{"id":1},"text":"/test"}}`,
			factory: func() (handlers.UpdateProcessor, error) {
				return &recordingProcessor{panics: true}, nil
			},
		},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if got := NewHandler(c.factory).Acknowledge(context.Background(), []byte(c.body)); got != Ack {
				t.Errorf("unexpected ack %q", got)
			}
		})
	}
}

func TestServeHTTP_Post(t *testing.T) {
	p := &recordingProcessor{}
	var builds int
	server := httptest.NewServer(NewHandler(factoryFor(p, &builds)))
	defer server.Close()

	resp, err := http.Post(server.URL, "application/json", strings.NewReader(`{"update_id":3}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK || string(body) != Ack {
		t.Errorf("unexpected response %d %q", resp.StatusCode, body)
	}
	if len(p.updates) != 1 || p.updates[0].UpdateID != 3 || p.updates[0].Message != nil {
		t.Errorf("unexpected updates %+v", p.updates)
	}
}

func TestServeHTTP_PanicStillAcknowledged(t *testing.T) {
	h := NewHandler(func() (handlers.UpdateProcessor, error) {
		return &recordingProcessor{panics: true}, nil
	})
	rec := httptest.NewRecorder()
	body := `{"update_id":4,"message":{"chat":{"id":1},"text":"/test"}}`
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

	if rec.Code != http.StatusOK || rec.Body.String() != Ack {
		t.Errorf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}

func TestServeHTTP_LandingPage(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("unexpected content type %s", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"<h1>Image bot</h1>", "<code>/image1 &lt;prompt&gt;</code>", "<code>/dalle3 &lt;prompt&gt;</code>"} {
		if !strings.Contains(body, want) {
			t.Errorf("landing page missing %q", want)
		}
	}
}

func TestServeHTTP_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("unexpected status %d", rec.Code)
	}
}
