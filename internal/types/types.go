// internal/types/types.go

package types

import (
	"time"
)

// TelegramUpdate represents an incoming webhook update from Telegram.
type TelegramUpdate struct {
	UpdateID int              `json:"update_id"`
	Message  *TelegramMessage `json:"message,omitempty"`
}

// TelegramMessage represents a message in Telegram. Only the fields the bot
// routes on are decoded.
type TelegramMessage struct {
	MessageID int                 `json:"message_id"`
	Chat      TelegramChat        `json:"chat"`
	Date      int                 `json:"date"`
	Text      string              `json:"text,omitempty"`
	Photo     []TelegramPhotoSize `json:"photo,omitempty"`
	Caption   string              `json:"caption,omitempty"`
}

// TelegramChat represents a chat in Telegram.
type TelegramChat struct {
	ID   int64  `json:"id"`
	Type string `json:"type,omitempty"`
}

// TelegramPhotoSize is one resolution of an inbound photo. Telegram orders
// the sizes from smallest to largest.
type TelegramPhotoSize struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id,omitempty"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	FileSize     int    `json:"file_size,omitempty"`
}

// ImageGenerationRequest is the JSON body of an OpenAI images/generations call.
type ImageGenerationRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

// ImageResponse is the body returned by both images/generations and images/edits.
type ImageResponse struct {
	Created int64       `json:"created"`
	Data    []ImageData `json:"data"`
}

// ImageData holds a single generated image. Depending on the model the API
// fills either URL or B64JSON.
type ImageData struct {
	URL           string `json:"url,omitempty"`
	B64JSON       string `json:"b64_json,omitempty"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

// OpenAIErrorResponse is the error envelope returned by the OpenAI API.
type OpenAIErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// GeneratedImage is a decoded generation result: a remote URL or inline bytes.
type GeneratedImage struct {
	URL  string
	Data []byte
}

// PhotoSource describes where an outbound photo comes from. Exactly one of
// URL, Path or Data is expected to be set.
type PhotoSource struct {
	URL  string
	Path string
	Data []byte
	Name string
}

// ArchiveRecord describes one finished generation for the result archive.
type ArchiveRecord struct {
	RequestID string
	ChatID    int64
	Command   string
	Model     string
	Prompt    string
	ResultURL string
	Image     []byte
	CreatedAt time.Time
}

// Constants
const (
	ImageSize         = "1024x1024"
	MaxImageDimension = 1024
	JPEGQuality       = 80
	MaxUploadBytes    = 4 << 20
	MaxCaptionLength  = 1024
	ProgressInterval  = 2 * time.Second
)
