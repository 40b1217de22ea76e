// internal/handlers/handlers.go

package handlers

import (
	"context"
	"io"

	"github.com/y0av/telegram-openai-bot/internal/types"
)

// Messenger defines the outbound chat operations the sender, progress and bot
// packages require from the telegram package.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) (int, error)
	EditText(ctx context.Context, chatID int64, messageID int, text string) error
	SendPhoto(ctx context.Context, chatID int64, photo types.PhotoSource, caption string) error
}

// FileSource defines how the image pipeline resolves and fetches inbound files.
type FileSource interface {
	FileURL(ctx context.Context, fileID string) (string, error)
	Download(ctx context.Context, url string, w io.Writer) error
}

// ImageGenerator defines the generation API the bot package requires.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, model, prompt string) (*types.GeneratedImage, error)
	EditImage(ctx context.Context, image []byte, filename, model, prompt string) (*types.GeneratedImage, error)
}

// Archiver records finished generations. Implementations must not affect the
// chat flow; the bot only logs archive failures.
type Archiver interface {
	Archive(ctx context.Context, record types.ArchiveRecord) error
}

// UpdateProcessor handles one decoded webhook update to completion.
type UpdateProcessor interface {
	HandleUpdate(ctx context.Context, update *types.TelegramUpdate)
}
