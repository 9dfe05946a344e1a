package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iotdash/bridge/internal/logger"
)

// Mailer delivers alerts through a transactional email HTTP API. An empty
// endpoint disables delivery; alerts are then only logged.
type Mailer struct {
	endpoint string
	apiKey   string
	http     *http.Client
	logger   logger.Logger
}

func NewMailer(endpoint, apiKey string, timeout time.Duration, log logger.Logger) *Mailer {
	return &Mailer{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
		logger:   log,
	}
}

type mailPayload struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

// Send posts one email. Failures are returned for logging only; nothing
// upstream of the notifier ever depends on delivery.
func (m *Mailer) Send(ctx context.Context, recipients []string, subject, text string) error {
	if m.endpoint == "" {
		m.logger.Debug("mail endpoint not configured, skipping delivery",
			logger.String("subject", subject))
		return nil
	}
	if len(recipients) == 0 {
		m.logger.Debug("no alert recipients configured, skipping delivery")
		return nil
	}

	body, err := json.Marshal(mailPayload{To: recipients, Subject: subject, Text: text})
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
	}

	resp, err := m.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("mail API returned status %d", resp.StatusCode)
	}
	return nil
}
