// internal/imagepipe/pipeline.go

package imagepipe

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/y0av/telegram-openai-bot/internal/handlers"
	"github.com/y0av/telegram-openai-bot/internal/types"
)

var (
	ErrResolution        = errors.New("could not resolve the photo for download")
	ErrDownload          = errors.New("could not download the photo")
	ErrPayloadTooLarge   = errors.New("image is too large")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Image is a prepared photo ready for the edit API.
type Image struct {
	FileID string
	Path   string
	Name   string
	Format string
	Data   []byte
}

// Pipeline downloads, normalizes and validates inbound photos.
type Pipeline struct {
	files    handlers.FileSource
	maxBytes int64
	maxDim   int
	quality  int
}

// Option adjusts a Pipeline.
type Option func(*Pipeline)

// WithMaxBytes sets the exclusive upper bound on the prepared file size.
func WithMaxBytes(n int64) Option {
	return func(p *Pipeline) { p.maxBytes = n }
}

// WithMaxDimension sets the bounding box the image is fitted inside.
func WithMaxDimension(px int) Option {
	return func(p *Pipeline) { p.maxDim = px }
}

// New returns a pipeline reading from files.
func New(files handlers.FileSource, opts ...Option) *Pipeline {
	p := &Pipeline{
		files:    files,
		maxBytes: types.MaxUploadBytes,
		maxDim:   types.MaxImageDimension,
		quality:  types.JPEGQuality,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Prepare takes the largest photo size, downloads it into ws, fits it inside
// the bounding box and checks the size limit. Every file it creates is
// registered with ws, so the caller's ws.Cleanup removes it on any outcome.
func (p *Pipeline) Prepare(ctx context.Context, ws *Workspace, photos []types.TelegramPhotoSize) (*Image, error) {
	if len(photos) == 0 {
		return nil, fmt.Errorf("%w: message has no photo sizes", ErrResolution)
	}
	largest := photos[len(photos)-1]

	fileURL, err := p.files.FileURL(ctx, largest.FileID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResolution, err)
	}
	if fileURL == "" {
		return nil, fmt.Errorf("%w: no file path returned", ErrResolution)
	}

	name := safeName(largest.FileID) + extFromURL(fileURL)
	localPath := ws.Path(name)
	if err := p.download(ctx, fileURL, localPath); err != nil {
		return nil, err
	}

	format, err := resizeInPlace(localPath, p.maxDim, p.quality)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat prepared image: %w", err)
	}
	if info.Size() >= p.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds the %s limit", ErrPayloadTooLarge, humanSize(info.Size()), humanSize(p.maxBytes))
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read prepared image: %w", err)
	}

	return &Image{
		FileID: largest.FileID,
		Path:   localPath,
		Name:   name,
		Format: format,
		Data:   data,
	}, nil
}

func (p *Pipeline) download(ctx context.Context, fileURL, localPath string) error {
	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDownload, err)
	}
	if err := p.files.Download(ctx, fileURL, f); err != nil {
		f.Close()
		return fmt.Errorf("%w: %w", ErrDownload, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrDownload, err)
	}
	return nil
}

// safeName keeps a remote file id usable as a file name.
func safeName(fileID string) string {
	var b strings.Builder
	for _, r := range fileID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "photo"
	}
	return b.String()
}

// extFromURL defaults to .jpg, the format Telegram stores photos in.
func extFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ".jpg"
	}
	if ext := strings.ToLower(path.Ext(u.Path)); ext != "" {
		return ext
	}
	return ".jpg"
}

func humanSize(n int64) string {
	return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
}
