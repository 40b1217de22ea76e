// cmd/lambda/main.go

package main

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/y0av/telegram-openai-bot/internal/app"
	"github.com/y0av/telegram-openai-bot/internal/config"
	"github.com/y0av/telegram-openai-bot/internal/logging"
	"github.com/y0av/telegram-openai-bot/internal/webhook"
)

// Warm invocations reuse the factory and so share its rate limiter.
var handler = webhook.NewHandler(app.NewFactory().Build)

func init() {
	cfg, _ := config.Load()
	logging.Init(cfg.LogLevel, cfg.LogJSON)
}

func main() {
	lambda.Start(handle)
}

// handle receives a webhook delivery through API Gateway and always answers
// 200 OK once the update has been processed.
func handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to decode base64 body")
		}
		body = decoded
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": "text/plain"},
		Body:       handler.Acknowledge(ctx, body),
	}, nil
}
