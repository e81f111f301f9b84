// Package webhook delivers job outcomes to a generic JSON webhook.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/target/promptwait/internal/observability/notify"
)

// Config captures the webhook target.
type Config struct {
	URL        string
	APIKey     string
	UserAgent  string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
}

// Client posts outcome documents to the webhook.
type Client struct {
	poster *notify.JSONPoster
}

var _ notify.Sink = (*Client)(nil)

// NewClient builds a webhook client. Callers should pass a validated config.
func NewClient(cfg Config) (*Client, error) {
	target := strings.TrimSpace(cfg.URL)
	if target == "" {
		return nil, errors.New("webhook url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{poster: &notify.JSONPoster{
		Name: "webhook",
		URL:  target,
		Headers: map[string]string{
			"X-API-Key":  strings.TrimSpace(cfg.APIKey),
			"User-Agent": strings.TrimSpace(cfg.UserAgent),
		},
		RetryLimit: cfg.RetryLimit,
		Client:     hc,
	}}, nil
}

// document is the wire shape receivers see.
type document struct {
	JobID          string               `json:"job_id"`
	Status         string               `json:"status"`
	OutputImageURL string               `json:"output_image_url,omitempty"`
	ErrorMessage   string               `json:"error_message,omitempty"`
	ErrorClass     string               `json:"error_class,omitempty"`
	Artifacts      []notify.ArtifactRef `json:"artifacts,omitempty"`
	Polls          int                  `json:"polls"`
	ElapsedMS      int64                `json:"elapsed_ms"`
	ProcessedAt    string               `json:"processed_at"`
	Metadata       map[string]string    `json:"metadata,omitempty"`
}

// SendOutcome posts the outcome document.
func (c *Client) SendOutcome(ctx context.Context, payload notify.OutcomePayload) error {
	body, err := json.Marshal(buildDocument(payload))
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}
	return c.poster.Post(ctx, body)
}

func buildDocument(p notify.OutcomePayload) document {
	at := p.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}
	status := "error"
	if p.State == notify.StateCompleted {
		status = "completed"
	}
	doc := document{
		JobID:        p.PromptID,
		Status:       status,
		ErrorMessage: p.Error,
		ErrorClass:   p.ErrorClass,
		Artifacts:    p.Artifacts,
		Polls:        p.Polls,
		ElapsedMS:    p.Elapsed.Milliseconds(),
		ProcessedAt:  at.UTC().Format(time.RFC3339),
		Metadata:     p.Metadata,
	}
	if len(p.Artifacts) > 0 {
		doc.OutputImageURL = p.Artifacts[0].URL
	}
	return doc
}
