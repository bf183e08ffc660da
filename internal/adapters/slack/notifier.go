package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/adityaparmar/onebox/internal/core"
)

// notificationText is the static payload sent for every notification.
const notificationText = "Hello! An email was received of Interested category."

// Notifier posts a static message to an incoming-webhook URL whenever a
// new message is indexed by the live tail. Fire and forget: no retry.
type Notifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewNotifier creates a webhook notifier. An empty URL disables
// delivery.
func NewNotifier(webhookURL string, logger *zap.Logger) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		httpClient: http.DefaultClient,
		logger:     logger,
	}
}

type webhookPayload struct {
	Text string `json:"text"`
}

// NotifyNewMail implements core.Notifier.
func (n *Notifier) NotifyNewMail(ctx context.Context, email *core.Email) error {
	if n.webhookURL == "" {
		n.logger.Debug("No webhook URL configured, skipping notification")
		return nil
	}

	payload, err := json.Marshal(webhookPayload{Text: notificationText})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("webhook returned %s: %s", res.Status, string(body))
	}

	n.logger.Debug("Notification sent", zap.String("sender", email.Sender))
	return nil
}
