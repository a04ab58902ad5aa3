// Package alerthttp delivers readiness alerts to a webhook.
package alerthttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"continuitygraph/pkg/models"
)

// EventHeader names the webhook event type.
const (
	EventHeader = "X-Continuity-Event"
	EventType   = "readiness-alert"
)

const maxErrorBody = 512

// Config configures the webhook writer.
type Config struct {
	URL     string
	Timeout time.Duration
	Headers map[string]string
}

// Payload is the webhook body. One request carries one flushed batch.
type Payload struct {
	Event  string          `json:"event"`
	SentAt time.Time       `json:"sent_at"`
	Count  int             `json:"count"`
	Alerts []*models.Alert `json:"alerts"`
}

// Writer posts alert batches to a webhook.
type Writer struct {
	endpoint string
	headers  http.Header
	timeout  time.Duration
	client   *http.Client
	now      func() time.Time
}

// NewWriter validates the webhook endpoint and creates a writer.
func NewWriter(cfg Config) (*Writer, error) {
	endpoint := strings.TrimSpace(cfg.URL)
	if endpoint == "" {
		return nil, fmt.Errorf("http alert URL is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	headers := make(http.Header, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers.Set(k, v)
	}
	return &Writer{
		endpoint: endpoint,
		headers:  headers,
		timeout:  timeout,
		client:   &http.Client{},
		now:      time.Now,
	}, nil
}

// WriteAlerts posts a batch of alerts. Empty batches are not sent.
func (w *Writer) WriteAlerts(alerts []*models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	body, err := json.Marshal(Payload{
		Event:  EventType,
		SentAt: w.now().UTC(),
		Count:  len(alerts),
		Alerts: alerts,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal alert payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create alert request: %w", err)
	}
	for k, vs := range w.headers {
		req.Header[k] = vs
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(EventHeader, EventType)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("http request failed with status %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Close releases idle connections.
func (w *Writer) Close() error {
	w.client.CloseIdleConnections()
	return nil
}
