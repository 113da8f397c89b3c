package server

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"lead-capture/internal/config"
	"lead-capture/internal/submission"
)

// WebhookEvent names the event carried by a webhook.
type WebhookEvent string

const WebhookEventSubmissionCreated WebhookEvent = "submission.created"

// WebhookPayload represents the data sent to the webhook endpoint
type WebhookPayload struct {
	Event            WebhookEvent          `json:"event"`
	Timestamp        time.Time             `json:"timestamp"`
	Data             submission.Submission `json:"data"`
	TotalSubmissions int                   `json:"total_submissions"`
}

// Notifier posts accepted submissions to a webhook endpoint in the
// background, retrying failed deliveries.
type Notifier struct {
	url     string
	secret  string
	retries int
	client  *http.Client
	log     zerolog.Logger
	metrics *Metrics
	breaker *CircuitBreaker

	// backoff returns the wait before retry attempt n (n >= 1).
	backoff func(attempt int) time.Duration

	wg sync.WaitGroup
}

func NewNotifier(cfg config.Webhook, log zerolog.Logger, metrics *Metrics) *Notifier {
	return &Notifier{
		url:     cfg.URL,
		secret:  cfg.Secret,
		retries: cfg.RetryCount,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log,
		metrics: metrics,
		breaker: NewCircuitBreaker("webhook", 5, 30*time.Second, log),
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt*attempt) * time.Second
		},
	}
}

// Notify queues delivery of sub. The payload is encoded before Notify
// returns, so the caller may keep using sub.
func (n *Notifier) Notify(sub submission.Submission, total int) {
	payload := WebhookPayload{
		Event:            WebhookEventSubmissionCreated,
		Timestamp:        time.Now().UTC(),
		Data:             sub,
		TotalSubmissions: total,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		n.log.Error().Err(err).Msg("encode webhook payload")
		n.metrics.RecordWebhook(false)
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.deliver(payload, body)
	}()
}

// Wait blocks until queued deliveries finish or ctx is done.
func (n *Notifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// deliver sends one webhook with retries
func (n *Notifier) deliver(payload WebhookPayload, body []byte) {
	id := payload.Data.ID()

	for attempt := 0; attempt <= n.retries; attempt++ {
		if attempt > 0 {
			time.Sleep(n.backoff(attempt))
		}

		err := n.breaker.Execute(func() error { return n.send(payload, body) })
		if errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrTooManyRequests) {
			n.log.Warn().Str("url", n.url).Str("id", id).Msg("webhook skipped, endpoint circuit open")
			break
		}
		if err == nil {
			n.log.Info().Str("url", n.url).Str("id", id).Msg("webhook sent")
			n.metrics.RecordWebhook(true)
			return
		}
		n.log.Warn().Err(err).Str("url", n.url).Int("attempt", attempt+1).Msg("webhook failed")
	}

	n.log.Error().Str("url", n.url).Str("id", id).Msg("webhook not delivered")
	n.metrics.RecordWebhook(false)
}

func (n *Notifier) send(payload WebhookPayload, body []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "LeadCapture-Webhook/1.0")
	req.Header.Set("X-Webhook-Event", string(payload.Event))
	req.Header.Set("X-Webhook-Timestamp", payload.Timestamp.Format(time.RFC3339))
	if n.secret != "" {
		req.Header.Set("X-Webhook-Signature", SignWebhook(body, n.secret))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

// SignWebhook returns the X-Webhook-Signature value for body:
// "sha256=" followed by the hex HMAC-SHA256 of body keyed by secret.
func SignWebhook(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
