// Package notify delivers alert events to an outbound webhook. Payloads are
// JSON and, when a secret is configured, signed with HMAC-SHA256 in the
// X-Cognifloe-Signature header.
package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// EventType describes what happened.
type EventType string

const (
	EventAnomalyDetected EventType = "anomaly_detected"
)

// Event is the webhook payload.
type Event struct {
	Type      EventType `json:"type"`
	User      string    `json:"user"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier sends events somewhere.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

const maxAttempts = 3

// WebhookNotifier posts events to a single URL, retrying non-2xx responses
// and transport errors with linear backoff.
type WebhookNotifier struct {
	url     string
	secret  string
	backoff time.Duration
	client  *http.Client
}

// NewWebhookNotifier creates a notifier for url. A non-positive backoff uses
// two seconds between attempts.
func NewWebhookNotifier(url, secret string, backoff time.Duration) *WebhookNotifier {
	if backoff <= 0 {
		backoff = 2 * time.Second
	}
	return &WebhookNotifier{
		url:     url,
		secret:  secret,
		backoff: backoff,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Sign returns the signature header value for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func (n *WebhookNotifier) Notify(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * n.backoff):
			}
		}
		if lastErr = n.post(ctx, ev.Type, body); lastErr == nil {
			log.Debug().Str("event", string(ev.Type)).Str("user", ev.User).Msg("Webhook delivered")
			return nil
		}
	}
	return fmt.Errorf("webhook failed after %d attempts: %w", maxAttempts, lastErr)
}

func (n *WebhookNotifier) post(ctx context.Context, typ EventType, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "CogniFloe-Webhook/1.0")
	req.Header.Set("X-Cognifloe-Event", string(typ))
	if n.secret != "" {
		req.Header.Set("X-Cognifloe-Signature", Sign(n.secret, body))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook HTTP %d", resp.StatusCode)
	}
	return nil
}
