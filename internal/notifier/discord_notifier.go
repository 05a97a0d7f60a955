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

	"github.com/aleister1102/alistmover/internal/models"

	"github.com/rs/zerolog"
)

const (
	defaultRetryAttempts = 2
	defaultRetryDelay    = 5 * time.Second
	defaultSendTimeout   = 20 * time.Second
)

// DiscordNotifier handles sending notifications to a Discord webhook.
type DiscordNotifier struct {
	logger        zerolog.Logger
	httpClient    *http.Client
	retryAttempts int
	retryDelay    time.Duration
}

// NewDiscordNotifier creates a new DiscordNotifier. The webhook URL is
// provided per send call so a single notifier can serve multiple sinks.
func NewDiscordNotifier(logger zerolog.Logger, httpClient *http.Client, retryAttempts int, retryDelay time.Duration) (*DiscordNotifier, error) {
	moduleLogger := logger.With().Str("module", "DiscordNotifier").Logger()

	if httpClient == nil {
		moduleLogger.Warn().Msg("HTTP client is nil, using default HTTP client with 20s timeout.")
		httpClient = &http.Client{Timeout: defaultSendTimeout}
	}
	if retryAttempts < 0 {
		retryAttempts = defaultRetryAttempts
	}
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	return &DiscordNotifier{
		logger:        moduleLogger,
		httpClient:    httpClient,
		retryAttempts: retryAttempts,
		retryDelay:    retryDelay,
	}, nil
}

// SendNotification posts a message payload to the specified Discord webhook URL.
// Failures are retried up to the configured attempt count with a fixed delay.
func (dn *DiscordNotifier) SendNotification(ctx context.Context, webhookURL string, payload models.DiscordMessagePayload) error {
	if webhookURL == "" {
		dn.logger.Debug().Msg("Webhook URL is empty. Skipping Discord notification.")
		return nil
	}

	if _, errURL := url.ParseRequestURI(webhookURL); errURL != nil {
		dn.logger.Error().Err(errURL).Str("url", webhookURL).Msg("Invalid Discord webhook URL provided for this notification.")
		return fmt.Errorf("invalid discord webhook URL: %w", errURL)
	}

	payloadJSON, jsonErr := json.Marshal(payload)
	if jsonErr != nil {
		dn.logger.Error().Err(jsonErr).Msg("Failed to marshal Discord payload to JSON")
		return fmt.Errorf("failed to marshal discord payload: %w", jsonErr)
	}

	var lastErr error
	for attempt := 0; attempt <= dn.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(dn.retryDelay):
			}
		}

		lastErr = dn.post(ctx, webhookURL, payloadJSON)
		if lastErr == nil {
			dn.logger.Debug().Str("webhook_url", webhookURL).Msg("Discord notification sent successfully.")
			return nil
		}

		dn.logger.Warn().Err(lastErr).Int("attempt", attempt+1).Int("max_attempts", dn.retryAttempts+1).Msg("Discord notification attempt failed")
	}

	return fmt.Errorf("discord notification failed after %d attempts: %w", dn.retryAttempts+1, lastErr)
}

func (dn *DiscordNotifier) post(ctx context.Context, webhookURL string, payloadJSON []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(payloadJSON))
	if err != nil {
		return fmt.Errorf("failed to create discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := dn.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send discord notification to %s: %w", webhookURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("discord notification to %s failed with status %d: %s", webhookURL, resp.StatusCode, string(respBody))
	}

	return nil
}
