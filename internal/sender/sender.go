// internal/sender/sender.go

package sender

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/y0av/telegram-openai-bot/internal/handlers"
	"github.com/y0av/telegram-openai-bot/internal/types"
)

// Sender forwards outbound messages and owns the user-facing error format.
type Sender struct {
	messenger handlers.Messenger
}

// NewSender wraps messenger.
func NewSender(messenger handlers.Messenger) *Sender {
	return &Sender{messenger: messenger}
}

// SendMessage sends text to chatID.
func (s *Sender) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := s.messenger.SendText(ctx, chatID, text)
	return err
}

// SendPhoto sends photo to chatID with an optional caption.
func (s *Sender) SendPhoto(ctx context.Context, chatID int64, photo types.PhotoSource, caption string) error {
	return s.messenger.SendPhoto(ctx, chatID, photo, caption)
}

// ErrorText renders the standardized failure message for operation.
func ErrorText(operation string, err error) string {
	detail := "unknown error"
	if err != nil {
		detail = err.Error()
	}
	return fmt.Sprintf("⚠️ Sorry, I couldn't %s.\n\n%s", operation, detail)
}

// SendErrorMessage logs err and reports it to the user. It is the only place
// error text reaches a chat. A failure to deliver the report is logged.
func (s *Sender) SendErrorMessage(ctx context.Context, chatID int64, operation string, err error) {
	log.Error().Err(err).
		Int64("chatId", chatID).
		Str("operation", operation).
		Msg("operation failed")

	if sendErr := s.SendMessage(ctx, chatID, ErrorText(operation, err)); sendErr != nil {
		log.Error().Err(sendErr).Int64("chatId", chatID).Msg("failed to send error message")
	}
}
