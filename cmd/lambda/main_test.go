package main

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/zalando/go-keyring"
)

func TestHandleAlwaysAcknowledges(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("OPENAI_KEY", "")
	keyring.MockInit()

	cases := map[string]events.APIGatewayProxyRequest{
		"plain":      {Body: `{"update_id":1}`},
		"base64":     {Body: base64.StdEncoding.EncodeToString([]byte(`{"update_id":2}`)), IsBase64Encoded: true},
		"bad base64": {Body: "!!!", IsBase64Encoded: true},
		"empty":      {},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			resp, err := handle(context.Background(), req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.StatusCode != http.StatusOK || resp.Body != "OK" {
				t.Errorf("unexpected response %d %q", resp.StatusCode, resp.Body)
			}
		})
	}
}
