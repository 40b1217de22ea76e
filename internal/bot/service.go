// internal/bot/service.go

package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/y0av/telegram-openai-bot/internal/handlers"
	"github.com/y0av/telegram-openai-bot/internal/imagepipe"
	"github.com/y0av/telegram-openai-bot/internal/progress"
	"github.com/y0av/telegram-openai-bot/internal/sender"
	"github.com/y0av/telegram-openai-bot/internal/types"
	"github.com/y0av/telegram-openai-bot/internal/utils"
)

// Replies sent by the bot.
const (
	TestReply          = "✅ Test command received. The bot is up and running!"
	TimePrefix         = "Current time: "
	UnknownPlaceholder = "your message"
)

// Models selects the generation model per command.
type Models struct {
	Image1 string
	Dalle3 string
	Edit   string
}

// Deps holds the collaborators of a Service. Archiver may be nil.
type Deps struct {
	Messenger        handlers.Messenger
	Generator        handlers.ImageGenerator
	Pipeline         *imagepipe.Pipeline
	Archiver         handlers.Archiver
	Models           Models
	TempDir          string
	ProgressInterval time.Duration
	Now              func() time.Time
}

// Service routes inbound updates to command handlers. It keeps no state
// between updates.
type Service struct {
	messenger handlers.Messenger
	sender    *sender.Sender
	generator handlers.ImageGenerator
	pipeline  *imagepipe.Pipeline
	archiver  handlers.Archiver
	models    Models
	tempDir   string
	interval  time.Duration
	now       func() time.Time
}

// NewService wires a Service from deps.
func NewService(deps Deps) *Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	tempDir := deps.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Service{
		messenger: deps.Messenger,
		sender:    sender.NewSender(deps.Messenger),
		generator: deps.Generator,
		pipeline:  deps.Pipeline,
		archiver:  deps.Archiver,
		models:    deps.Models,
		tempDir:   tempDir,
		interval:  deps.ProgressInterval,
		now:       now,
	}
}

// HandleUpdate processes one inbound update. Updates without a message are
// ignored. It never panics; every failure ends up in a chat message or a log.
func (s *Service) HandleUpdate(ctx context.Context, update *types.TelegramUpdate) {
	if update == nil || update.Message == nil {
		return
	}
	msg := update.Message
	chatID := msg.Chat.ID
	command, arg := Classify(msg)

	logger := log.With().
		Str("requestId", uuid.New().String()).
		Int64("chatId", chatID).
		Str("command", command.String()).
		Logger()
	ctx = logger.WithContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("unexpected failure while handling update")
			s.reportPanic(ctx, chatID, r)
		}
	}()

	logger.Info().Msg("handling update")

	switch command {
	case CommandPhotoEdit:
		s.handlePhotoEdit(ctx, msg, arg)
	case CommandImage1:
		s.handleGenerate(ctx, chatID, command, s.models.Image1, "/image1", arg)
	case CommandDalle3:
		s.handleGenerate(ctx, chatID, command, s.models.Dalle3, "/dalle3", arg)
	case CommandTest:
		s.reply(ctx, chatID, TestReply)
	case CommandTime:
		s.reply(ctx, chatID, TimePrefix+utils.FormatLocalTime(s.now()))
	default:
		s.reply(ctx, chatID, UnrecognizedText(arg))
	}
}

// UnrecognizedText quotes text back to the user.
func UnrecognizedText(text string) string {
	if text == "" {
		text = UnknownPlaceholder
	}
	return fmt.Sprintf("🤔 Sorry, \"%s\" is not a recognized command.", text)
}

// UsageText is the warning for a prefix command without a prompt.
func UsageText(command string) string {
	return fmt.Sprintf("⚠️ Please provide a prompt after %s, for example: %s a red fox", command, command)
}

// Caption reports prompt under a generated image.
func Caption(prompt string) string {
	return utils.SummarizeToLength("🖼 Prompt: "+prompt, types.MaxCaptionLength)
}

// reportPanic tells the user about a recovered panic. A second panic while
// reporting is only logged.
func (s *Service) reportPanic(ctx context.Context, chatID int64, r any) {
	defer func() {
		if r := recover(); r != nil {
			zerolog.Ctx(ctx).Error().Interface("panic", r).Msg("failed to report unexpected failure")
		}
	}()
	s.sender.SendErrorMessage(ctx, chatID, "handle your message", fmt.Errorf("unexpected failure: %v", r))
}

func (s *Service) reply(ctx context.Context, chatID int64, text string) {
	if err := s.sender.SendMessage(ctx, chatID, text); err != nil {
		s.sender.SendErrorMessage(ctx, chatID, "send the reply", err)
	}
}

// withProgress runs fn behind a progress indicator. The indicator is stopped
// before any error is reported, and a panic in fn is reported like an error.
func (s *Service) withProgress(ctx context.Context, chatID int64, operation, status string, fn func(ctx context.Context) error) {
	err := func() (err error) {
		ind, err := progress.Start(ctx, s.messenger, chatID, status, progress.WithInterval(s.interval))
		if err != nil {
			return err
		}
		defer ind.Stop(ctx)
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("unexpected failure: %v", r)
			}
		}()
		return fn(ctx)
	}()
	if err != nil {
		s.sender.SendErrorMessage(ctx, chatID, operation, err)
	}
}

func (s *Service) handleGenerate(ctx context.Context, chatID int64, command Command, model, name, prompt string) {
	if prompt == "" {
		s.reply(ctx, chatID, UsageText(name))
		return
	}

	status := fmt.Sprintf("🎨 Generating your image with %s", model)
	s.withProgress(ctx, chatID, "generate the image", status, func(ctx context.Context) error {
		result, err := s.generator.GenerateImage(ctx, model, prompt)
		if err != nil {
			return err
		}

		photo := types.PhotoSource{URL: result.URL, Data: result.Data, Name: "image.png"}
		if err := s.sender.SendPhoto(ctx, chatID, photo, Caption(prompt)); err != nil {
			return err
		}

		s.archive(ctx, chatID, command, model, prompt, result)
		return nil
	})
}

func (s *Service) handlePhotoEdit(ctx context.Context, msg *types.TelegramMessage, prompt string) {
	chatID := msg.Chat.ID
	s.withProgress(ctx, chatID, "edit the photo", "🪄 Editing your photo", func(ctx context.Context) error {
		ws := imagepipe.NewWorkspace(s.tempDir)
		defer ws.Cleanup()

		img, err := s.pipeline.Prepare(ctx, ws, msg.Photo)
		if err != nil {
			return err
		}
		zerolog.Ctx(ctx).Debug().
			Str("format", img.Format).
			Int("bytes", len(img.Data)).
			Msg("photo prepared")

		result, err := s.generator.EditImage(ctx, img.Data, img.Name, s.models.Edit, prompt)
		if err != nil {
			return err
		}

		photo := types.PhotoSource{URL: result.URL}
		if len(result.Data) > 0 {
			photo.Path = ws.Path(strings.TrimSuffix(img.Name, filepath.Ext(img.Name)) + "_edited.png")
			if err := os.WriteFile(photo.Path, result.Data, 0o600); err != nil {
				return fmt.Errorf("failed to write edited image: %w", err)
			}
		}
		if err := s.sender.SendPhoto(ctx, chatID, photo, Caption(prompt)); err != nil {
			return err
		}

		s.archive(ctx, chatID, CommandPhotoEdit, s.models.Edit, prompt, result)
		return nil
	})
}

func (s *Service) archive(ctx context.Context, chatID int64, command Command, model, prompt string, result *types.GeneratedImage) {
	if s.archiver == nil {
		return
	}
	rec := types.ArchiveRecord{
		ChatID:    chatID,
		Command:   command.String(),
		Model:     model,
		Prompt:    prompt,
		ResultURL: result.URL,
		Image:     result.Data,
		CreatedAt: s.now(),
	}
	if err := s.archiver.Archive(ctx, rec); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to archive generated image")
	}
}
