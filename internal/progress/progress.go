// internal/progress/progress.go

package progress

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/y0av/telegram-openai-bot/internal/handlers"
	"github.com/y0av/telegram-openai-bot/internal/types"
)

// Glyphs is the fixed animation cycle shown after the status text.
var Glyphs = [8]string{"🌑", "🌒", "🌓", "🌔", "🌕", "🌖", "🌗", "🌘"}

// DoneGlyph replaces the animation once the operation finishes.
const DoneGlyph = "✅"

// Indicator is one live animated status message. It must be stopped exactly
// once; Stop is safe to call again but only the first call has an effect.
type Indicator struct {
	messenger handlers.Messenger
	chatID    int64
	messageID int
	text      string
	interval  time.Duration

	done     chan struct{}
	finished chan struct{}
	stopOnce sync.Once
}

// Option adjusts an Indicator before it starts.
type Option func(*Indicator)

// WithInterval overrides the time between animation frames.
func WithInterval(d time.Duration) Option {
	return func(ind *Indicator) {
		if d > 0 {
			ind.interval = d
		}
	}
}

// Start sends the initial status message and begins animating it.
func Start(ctx context.Context, messenger handlers.Messenger, chatID int64, text string, opts ...Option) (*Indicator, error) {
	ind := &Indicator{
		messenger: messenger,
		chatID:    chatID,
		text:      text,
		interval:  types.ProgressInterval,
		done:      make(chan struct{}),
		finished:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(ind)
	}

	messageID, err := messenger.SendText(ctx, chatID, ind.frame(Glyphs[0]))
	if err != nil {
		return nil, fmt.Errorf("failed to send progress message: %w", err)
	}
	ind.messageID = messageID

	go ind.animate(ctx)
	return ind, nil
}

// MessageID returns the id of the status message being animated.
func (ind *Indicator) MessageID() int {
	return ind.messageID
}

func (ind *Indicator) frame(glyph string) string {
	return ind.text + " " + glyph
}

func (ind *Indicator) animate(ctx context.Context) {
	defer close(ind.finished)
	defer ind.recoverEdit("animation")

	ticker := time.NewTicker(ind.interval)
	defer ticker.Stop()

	phase := 0
	for {
		select {
		case <-ind.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			phase = (phase + 1) % len(Glyphs)
			if err := ind.messenger.EditText(ctx, ind.chatID, ind.messageID, ind.frame(Glyphs[phase])); err != nil {
				log.Warn().Err(err).
					Int64("chatId", ind.chatID).
					Int("messageId", ind.messageID).
					Msg("failed to update progress message")
			}
		}
	}
}

// Stop cancels the animation and marks the message as complete. Errors and
// panics from the messenger are logged, never returned. A nil Indicator is a
// no-op.
func (ind *Indicator) Stop(ctx context.Context) {
	if ind == nil {
		return
	}
	ind.stopOnce.Do(func() {
		close(ind.done)
		<-ind.finished

		defer ind.recoverEdit("final edit")
		if err := ind.messenger.EditText(ctx, ind.chatID, ind.messageID, ind.frame(DoneGlyph)); err != nil {
			log.Warn().Err(err).
				Int64("chatId", ind.chatID).
				Int("messageId", ind.messageID).
				Msg("failed to finalize progress message")
		}
	})
}

func (ind *Indicator) recoverEdit(stage string) {
	if r := recover(); r != nil {
		log.Error().Interface("panic", r).
			Int64("chatId", ind.chatID).
			Int("messageId", ind.messageID).
			Str("stage", stage).
			Msg("progress message edit panicked")
	}
}
