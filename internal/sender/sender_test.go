package sender

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/y0av/telegram-openai-bot/internal/types"
)

type fakeMessenger struct {
	texts    []string
	photos   []types.PhotoSource
	captions []string
	err      error
}

func (f *fakeMessenger) SendText(ctx context.Context, chatID int64, text string) (int, error) {
	f.texts = append(f.texts, text)
	return 1, f.err
}

func (f *fakeMessenger) EditText(ctx context.Context, chatID int64, messageID int, text string) error {
	return nil
}

func (f *fakeMessenger) SendPhoto(ctx context.Context, chatID int64, photo types.PhotoSource, caption string) error {
	f.photos = append(f.photos, photo)
	f.captions = append(f.captions, caption)
	return f.err
}

func TestSendMessage(t *testing.T) {
	f := &fakeMessenger{}
	if err := NewSender(f).SendMessage(context.Background(), 1, "hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.texts) != 1 || f.texts[0] != "hi" {
		t.Errorf("unexpected texts %v", f.texts)
	}
}

func TestSendPhoto(t *testing.T) {
	f := &fakeMessenger{}
	src := types.PhotoSource{URL: "https://example.com/x.png"}
	if err := NewSender(f).SendPhoto(context.Background(), 1, src, "cap"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.photos) != 1 || f.photos[0].URL != src.URL || f.captions[0] != "cap" {
		t.Errorf("unexpected photos %+v / %v", f.photos, f.captions)
	}
}

func TestErrorText(t *testing.T) {
	got := ErrorText("generate the image", fmt.Errorf("wrapped: %w", errors.New("boom")))
	want := "⚠️ Sorry, I couldn't generate the image.\n\nwrapped: boom"
	if got != want {
		t.Errorf("want %q, got %q", want, got)
	}
	if got := ErrorText("edit the photo", nil); got != "⚠️ Sorry, I couldn't edit the photo.\n\nunknown error" {
		t.Errorf("unexpected nil-error text %q", got)
	}
}

func TestSendErrorMessage(t *testing.T) {
	f := &fakeMessenger{}
	NewSender(f).SendErrorMessage(context.Background(), 1, "edit the photo", errors.New("image is too large"))
	if len(f.texts) != 1 || f.texts[0] != "⚠️ Sorry, I couldn't edit the photo.\n\nimage is too large" {
		t.Errorf("unexpected texts %v", f.texts)
	}
}

func TestSendErrorMessage_SendFailureIsSwallowed(t *testing.T) {
	f := &fakeMessenger{err: errors.New("network down")}
	NewSender(f).SendErrorMessage(context.Background(), 1, "generate the image", errors.New("boom"))
	if len(f.texts) != 1 {
		t.Errorf("expected one attempt, got %d", len(f.texts))
	}
}
