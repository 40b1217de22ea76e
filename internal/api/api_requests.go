// internal/api/api_requests.go

package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/y0av/telegram-openai-bot/internal/handlers"
	"github.com/y0av/telegram-openai-bot/internal/types"
)

// ErrNoImageData is returned when the API answers without a usable image.
var ErrNoImageData = errors.New("no image data returned by the generation API")

// APIError is a non-2xx answer from the generation API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("OpenAI returned status %d: %s", e.StatusCode, e.Message)
}

var _ handlers.ImageGenerator = (*APIHandler)(nil)

// APIHandler talks to the OpenAI images endpoints.
type APIHandler struct {
	OpenAIKey      string
	OpenAIEndpoint string
	Client         *http.Client
}

// NewAPIHandler returns a handler without a client timeout; calls are bound
// only by the caller's context.
func NewAPIHandler(openAIKey, openAIEndpoint string) *APIHandler {
	return &APIHandler{
		OpenAIKey:      openAIKey,
		OpenAIEndpoint: strings.TrimRight(openAIEndpoint, "/"),
		Client:         &http.Client{},
	}
}

// GenerateImage asks for exactly one 1024x1024 image for prompt.
func (api *APIHandler) GenerateImage(ctx context.Context, model, prompt string) (*types.GeneratedImage, error) {
	query := types.ImageGenerationRequest{
		Model:  model,
		Prompt: prompt,
		N:      1,
		Size:   types.ImageSize,
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, api.OpenAIEndpoint+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return api.do(req)
}

// EditImage submits image with prompt as an edit instruction, requesting one output.
func (api *APIHandler) EditImage(ctx context.Context, image []byte, filename, model, prompt string) (*types.GeneratedImage, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := map[string]string{
		"model":  model,
		"prompt": prompt,
		"n":      "1",
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write %s field: %w", name, err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename))
	header.Set("Content-Type", http.DetectContentType(image))
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create image part: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("failed to write image part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, api.OpenAIEndpoint+"/images/edits", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create edit request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return api.do(req)
}

func (api *APIHandler) do(req *http.Request) (*types.GeneratedImage, error) {
	req.Header.Set("Authorization", "Bearer "+api.OpenAIKey)

	resp, err := api.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request to OpenAI: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp types.OpenAIErrorResponse
		msg := strings.TrimSpace(string(bodyBytes))
		if json.Unmarshal(bodyBytes, &errResp) == nil && errResp.Error.Message != "" {
			msg = errResp.Error.Message
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	var result types.ImageResponse
	if err := json.Unmarshal(bodyBytes, &result); err != nil {
		return nil, fmt.Errorf("error unmarshalling response: %w", err)
	}

	return decodeImage(result)
}

// decodeImage accepts either an inline base64 result or a URL result.
func decodeImage(result types.ImageResponse) (*types.GeneratedImage, error) {
	if len(result.Data) == 0 {
		return nil, ErrNoImageData
	}

	first := result.Data[0]
	switch {
	case first.B64JSON != "":
		data, err := base64.StdEncoding.DecodeString(first.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("malformed inline image: %w", err)
		}
		return &types.GeneratedImage{Data: data}, nil
	case first.URL != "":
		return &types.GeneratedImage{URL: first.URL}, nil
	default:
		return nil, ErrNoImageData
	}
}

// Ping lists models to confirm the endpoint is reachable and the key is valid.
func (api *APIHandler) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, api.OpenAIEndpoint+"/models", nil)
	if err != nil {
		return fmt.Errorf("failed to create OpenAI request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+api.OpenAIKey)

	resp, err := api.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to OpenAI API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	return nil
}
