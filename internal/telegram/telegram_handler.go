// internal/telegram/telegram_handler.go

package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/y0av/telegram-openai-bot/internal/handlers"
	"github.com/y0av/telegram-openai-bot/internal/types"
)

// ErrNoFilePath is returned when getFile answers without a downloadable path.
var ErrNoFilePath = errors.New("telegram returned no file path")

var (
	_ handlers.Messenger  = (*TelegramHandler)(nil)
	_ handlers.FileSource = (*TelegramHandler)(nil)
)

// Options configures a TelegramHandler. Zero values select the public Bot API.
type Options struct {
	APIEndpoint  string
	FileEndpoint string
	RateLimit    float64
	HTTPClient   *http.Client
	// Limiter, when set, is shared with other handlers and RateLimit is
	// ignored.
	Limiter *rate.Limiter
}

// NewLimiter paces outbound calls at limit requests per second. A
// non-positive limit selects 25.
func NewLimiter(limit float64) *rate.Limiter {
	if limit <= 0 {
		limit = 25
	}
	burst := int(limit)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(limit), burst)
}

// TelegramHandler issues outbound Bot API calls for one invocation.
type TelegramHandler struct {
	bot          *tgbotapi.BotAPI
	token        string
	fileEndpoint string
	client       *http.Client
	limiter      *rate.Limiter
}

// NewTelegramHandler builds a handler without calling getMe.
func NewTelegramHandler(token string, opts Options) *TelegramHandler {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	apiEndpoint := opts.APIEndpoint
	if apiEndpoint == "" {
		apiEndpoint = tgbotapi.APIEndpoint
	}
	fileEndpoint := opts.FileEndpoint
	if fileEndpoint == "" {
		fileEndpoint = tgbotapi.FileEndpoint
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = NewLimiter(opts.RateLimit)
	}

	bot := &tgbotapi.BotAPI{
		Token:  token,
		Buffer: 100,
		Client: client,
	}
	bot.SetAPIEndpoint(apiEndpoint)

	return &TelegramHandler{
		bot:          bot,
		token:        token,
		fileEndpoint: fileEndpoint,
		client:       client,
		limiter:      limiter,
	}
}

// SendText sends text to chatID and returns the new message's id.
func (th *TelegramHandler) SendText(ctx context.Context, chatID int64, text string) (int, error) {
	if err := th.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	msg, err := th.bot.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return 0, fmt.Errorf("telegram sendMessage: %w", err)
	}
	return msg.MessageID, nil
}

// EditText replaces the text of an existing message.
func (th *TelegramHandler) EditText(ctx context.Context, chatID int64, messageID int, text string) error {
	if err := th.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := th.bot.Request(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		return fmt.Errorf("telegram editMessageText: %w", err)
	}
	return nil
}

// SendPhoto sends a photo from a URL, a local path or raw bytes.
func (th *TelegramHandler) SendPhoto(ctx context.Context, chatID int64, photo types.PhotoSource, caption string) error {
	var file tgbotapi.RequestFileData
	switch {
	case photo.URL != "":
		file = tgbotapi.FileURL(photo.URL)
	case photo.Path != "":
		file = tgbotapi.FilePath(photo.Path)
	case len(photo.Data) > 0:
		name := photo.Name
		if name == "" {
			name = "image.png"
		}
		file = tgbotapi.FileBytes{Name: name, Bytes: photo.Data}
	default:
		return errors.New("photo source is empty")
	}

	if err := th.limiter.Wait(ctx); err != nil {
		return err
	}
	cfg := tgbotapi.NewPhoto(chatID, file)
	cfg.Caption = caption
	if _, err := th.bot.Send(cfg); err != nil {
		return fmt.Errorf("telegram sendPhoto: %w", err)
	}
	return nil
}

// FileURL resolves fileID to a direct download URL through getFile.
func (th *TelegramHandler) FileURL(ctx context.Context, fileID string) (string, error) {
	if err := th.limiter.Wait(ctx); err != nil {
		return "", err
	}
	file, err := th.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return "", fmt.Errorf("telegram getFile: %w", err)
	}
	if file.FilePath == "" {
		return "", ErrNoFilePath
	}
	return fmt.Sprintf(th.fileEndpoint, th.token, file.FilePath), nil
}

// Download streams the file at url into w.
func (th *TelegramHandler) Download(ctx context.Context, url string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := th.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("file download responded with status %s", resp.Status)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("file download interrupted: %w", err)
	}
	return nil
}

// Ping calls getMe and returns the bot's username.
func (th *TelegramHandler) Ping(ctx context.Context) (string, error) {
	if err := th.limiter.Wait(ctx); err != nil {
		return "", err
	}
	me, err := th.bot.GetMe()
	if err != nil {
		return "", fmt.Errorf("telegram getMe: %w", err)
	}
	return me.UserName, nil
}

// SetWebhook points the bot's webhook at url.
func (th *TelegramHandler) SetWebhook(ctx context.Context, url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	if err := th.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := th.bot.Request(wh); err != nil {
		return fmt.Errorf("telegram setWebhook: %w", err)
	}
	return nil
}
