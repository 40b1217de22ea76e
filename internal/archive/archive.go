// internal/archive/archive.go

package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"github.com/y0av/telegram-openai-bot/internal/handlers"
	"github.com/y0av/telegram-openai-bot/internal/s3client"
	"github.com/y0av/telegram-openai-bot/internal/types"
	"github.com/y0av/telegram-openai-bot/internal/utils"
)

var _ handlers.Archiver = (*S3Archiver)(nil)

// S3Archiver writes finished generations to a bucket. Objects are write-only;
// nothing is ever read back by the bot.
type S3Archiver struct {
	client s3client.S3ClientInterface
	bucket string
}

// NewS3Archiver returns an archiver writing to bucket.
func NewS3Archiver(client s3client.S3ClientInterface, bucket string) *S3Archiver {
	return &S3Archiver{client: client, bucket: bucket}
}

// record is the JSON document stored next to each generated image.
type record struct {
	RequestID string `json:"request_id"`
	ChatID    int64  `json:"chat_id"`
	Command   string `json:"command"`
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	Keywords  string `json:"keywords,omitempty"`
	ResultURL string `json:"result_url,omitempty"`
	ImageKey  string `json:"image_key,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Archive stores the image bytes (when the result was inline) and a JSON record.
func (a *S3Archiver) Archive(ctx context.Context, rec types.ArchiveRecord) error {
	id := rec.RequestID
	if id == "" {
		id = uuid.New().String()
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	keywords := utils.ExtractKeywords(rec.Prompt)

	doc := record{
		RequestID: id,
		ChatID:    rec.ChatID,
		Command:   rec.Command,
		Model:     rec.Model,
		Prompt:    rec.Prompt,
		Keywords:  keywords,
		ResultURL: rec.ResultURL,
		Timestamp: utils.FormatTimeUTC(createdAt),
	}

	if len(rec.Image) > 0 {
		doc.ImageKey = fmt.Sprintf("generated/%d/%s%s", rec.ChatID, id, imageExt(rec.Image))
		metadata := map[string]*string{
			"uploaded_at": aws.String(utils.FormatTimeUTC(createdAt)),
			"command":     aws.String(rec.Command),
		}
		if keywords != "" {
			metadata["keywords"] = aws.String(keywords)
		}
		_, err := a.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(a.bucket),
			Key:         aws.String(doc.ImageKey),
			Body:        bytes.NewReader(rec.Image),
			ContentType: aws.String(http.DetectContentType(rec.Image)),
			Metadata:    metadata,
		})
		if err != nil {
			return fmt.Errorf("failed to upload generated image: %w", err)
		}
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal archive record: %w", err)
	}
	_, err = a.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(fmt.Sprintf("logs/%d/%s.json", rec.ChatID, id)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload archive record: %w", err)
	}
	return nil
}

func imageExt(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
