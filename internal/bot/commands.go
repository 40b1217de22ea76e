// internal/bot/commands.go

package bot

import (
	"strings"

	"github.com/y0av/telegram-openai-bot/internal/types"
)

// Command is the handler an inbound message is routed to.
type Command int

const (
	CommandUnrecognized Command = iota
	CommandTest
	CommandTime
	CommandImage1
	CommandDalle3
	CommandPhotoEdit
)

func (c Command) String() string {
	switch c {
	case CommandTest:
		return "test"
	case CommandTime:
		return "time"
	case CommandImage1:
		return "image1"
	case CommandDalle3:
		return "dalle3"
	case CommandPhotoEdit:
		return "photo_edit"
	default:
		return "unrecognized"
	}
}

// route pairs a command with the predicate that selects it. match returns
// the command's argument.
type route struct {
	command Command
	match   func(msg *types.TelegramMessage, text string) (string, bool)
}

// routes is evaluated in order; the first match wins.
var routes = []route{
	{CommandPhotoEdit, func(msg *types.TelegramMessage, _ string) (string, bool) {
		caption := strings.TrimSpace(msg.Caption)
		return caption, len(msg.Photo) > 0 && caption != ""
	}},
	{CommandImage1, prefixCommand("/image1")},
	{CommandDalle3, prefixCommand("/dalle3")},
	{CommandTest, exactCommand("/test")},
	{CommandTime, exactCommand("/time")},
}

func prefixCommand(prefix string) func(*types.TelegramMessage, string) (string, bool) {
	return func(_ *types.TelegramMessage, text string) (string, bool) {
		if !strings.HasPrefix(text, prefix) {
			return "", false
		}
		return strings.TrimSpace(strings.TrimPrefix(text, prefix)), true
	}
}

func exactCommand(command string) func(*types.TelegramMessage, string) (string, bool) {
	return func(_ *types.TelegramMessage, text string) (string, bool) {
		return "", text == command
	}
}

// Classify maps msg to its command and argument. For prefix commands the
// argument is the trimmed prompt, for photo edits the caption, and for
// unrecognized input the original text.
func Classify(msg *types.TelegramMessage) (Command, string) {
	text := strings.TrimSpace(msg.Text)
	for _, r := range routes {
		if arg, ok := r.match(msg, text); ok {
			return r.command, arg
		}
	}
	return CommandUnrecognized, msg.Text
}
