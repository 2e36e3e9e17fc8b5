package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/aleister1102/grcdigest/internal/models"
	"github.com/rs/zerolog"
)

// DiscordNotifier posts message payloads to a Discord webhook.
type DiscordNotifier struct {
	logger     zerolog.Logger
	httpClient *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier. A nil client gets a 20s default.
func NewDiscordNotifier(logger zerolog.Logger, httpClient *http.Client) *DiscordNotifier {
	moduleLogger := logger.With().Str("module", "DiscordNotifier").Logger()
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeoutSec * time.Second}
	}
	return &DiscordNotifier{
		logger:     moduleLogger,
		httpClient: httpClient,
	}
}

// SendNotification sends payload to webhookURL. An empty URL is a no-op.
func (dn *DiscordNotifier) SendNotification(ctx context.Context, webhookURL string, payload models.DiscordMessagePayload) error {
	if webhookURL == "" {
		dn.logger.Debug().Msg("Webhook URL is empty. Skipping Discord notification.")
		return nil
	}

	if _, err := url.ParseRequestURI(webhookURL); err != nil {
		return fmt.Errorf("invalid DiscordWebhookURL for send: %w", err)
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(payloadJSON))
	if err != nil {
		return fmt.Errorf("failed to create discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := dn.httpClient.Do(req)
	if err != nil {
		dn.logger.Error().Err(err).Msg("Failed to send Discord notification")
		return fmt.Errorf("failed to send discord notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		dn.logger.Error().Int("status_code", resp.StatusCode).Str("response_body", string(respBody)).Msg("Discord notification failed")
		return fmt.Errorf("discord notification failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	dn.logger.Info().Int("status_code", resp.StatusCode).Msg("Discord notification sent successfully.")
	return nil
}
