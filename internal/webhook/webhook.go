// internal/webhook/webhook.go

package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/russross/blackfriday/v2"

	"github.com/y0av/telegram-openai-bot/internal/handlers"
	"github.com/y0av/telegram-openai-bot/internal/types"
)

// Ack is the body returned for every webhook delivery.
const Ack = "OK"

const maxBodyBytes = 1 << 20

// Factory builds the processor for a single delivery.
type Factory func() (handlers.UpdateProcessor, error)

// Handler acknowledges Telegram webhook deliveries and serves a landing page.
type Handler struct {
	build   Factory
	landing []byte
}

// NewHandler returns a Handler that calls build once per delivery.
func NewHandler(build Factory) *Handler {
	return &Handler{
		build:   build,
		landing: renderLanding(),
	}
}

// Acknowledge decodes body, processes the update synchronously and returns
// Ack. Decode, configuration and processing failures are logged only.
func (h *Handler) Acknowledge(ctx context.Context, body []byte) (ack string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("update processing panicked")
			ack = Ack
		}
	}()

	var update types.TelegramUpdate
	if err := json.Unmarshal(body, &update); err != nil {
		log.Warn().Err(err).Msg("Failed to decode update")
		return Ack
	}

	processor, err := h.build()
	if err != nil {
		log.Error().Err(err).Int("updateId", update.UpdateID).Msg("Failed to initialize bot")
		return Ack
	}
	processor.HandleUpdate(ctx, &update)
	return Ack
}

// ServeHTTP acknowledges POSTed updates and answers GET with the landing page.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(h.landing)
	case http.MethodPost:
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			log.Warn().Err(err).Msg("Failed to read update body")
		}
		ack := h.Acknowledge(r.Context(), body)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, ack)
	default:
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
	}
}

const landingMarkdown = `# Image bot

Send one of these commands to the bot on Telegram:

- ` + "`/image1 <prompt>`" + ` generates an image with the GPT image model
- ` + "`/dalle3 <prompt>`" + ` generates an image with DALL·E 3
- a photo with a caption edits the photo as the caption describes
- ` + "`/test`" + ` checks that the bot is up
- ` + "`/time`" + ` shows the server time
`

func renderLanding() []byte {
	body := blackfriday.Run([]byte(landingMarkdown))
	return []byte(fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<title>Image bot</title>
	<style>
		body { font-family: Arial, sans-serif; margin: 20px; background-color: #121212; color: #e0e0e0; }
		h1 { color: #bb86fc; }
		code { background-color: #2c2c2c; padding: 2px 4px; border-radius: 3px; }
	</style>
</head>
<body>
%s</body>
</html>`, body))
}
