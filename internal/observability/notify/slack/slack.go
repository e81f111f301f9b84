package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/target/promptwait/internal/observability/notify"
	"github.com/target/promptwait/internal/util"
)

// Config captures the subset of Slack webhook behaviour we need.
type Config struct {
	WebhookURL string
	Channel    string
	Username   string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
}

// Client delivers job outcome notifications to a Slack webhook.
type Client struct {
	channel  string
	username string
	poster   *notify.JSONPoster
}

var _ notify.Sink = (*Client)(nil)

// NewClient builds a Slack webhook client. Callers should pass a validated config.
func NewClient(cfg Config) (*Client, error) {
	webhookURL := strings.TrimSpace(cfg.WebhookURL)
	if webhookURL == "" {
		return nil, errors.New("slack webhook url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		channel:  strings.TrimSpace(cfg.Channel),
		username: fallbackString(strings.TrimSpace(cfg.Username), "promptwait"),
		poster: &notify.JSONPoster{
			Name:       "slack webhook",
			URL:        webhookURL,
			RetryLimit: cfg.RetryLimit,
			Client:     hc,
		},
	}, nil
}

// SendOutcome posts a formatted message to Slack.
func (c *Client) SendOutcome(ctx context.Context, payload notify.OutcomePayload) error {
	body, err := json.Marshal(c.formatMessage(payload))
	if err != nil {
		return fmt.Errorf("encode slack payload: %w", err)
	}
	return c.poster.Post(ctx, body)
}

func (c *Client) formatMessage(payload notify.OutcomePayload) map[string]any {
	timestamp := payload.OccurredAt
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	text := strings.Builder{}
	writeSlackHeader(&text, payload)
	appendSlackDetails(&text, payload)
	appendSlackArtifacts(&text, payload.Artifacts)
	appendSlackMetadata(&text, payload.Metadata)
	writeSlackTimestamp(&text, timestamp)

	msg := map[string]any{
		"text":     text.String(),
		"username": c.username,
	}
	if c.channel != "" {
		msg["channel"] = c.channel
	}
	return msg
}

func fallbackString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func writeSlackHeader(text *strings.Builder, payload notify.OutcomePayload) {
	text.WriteString("*Job outcome*")
	if payload.PromptID != "" {
		text.WriteString(" `")
		text.WriteString(payload.PromptID)
		text.WriteByte('`')
	}
	if payload.State != "" {
		text.WriteString(" (")
		text.WriteString(payload.State)
		text.WriteByte(')')
	}
	text.WriteByte('\n')
}

func appendSlackDetails(text *strings.Builder, payload notify.OutcomePayload) {
	fields := []struct {
		label string
		value string
	}{
		{"Client", payload.ClientID},
		{"Polls", strconv.Itoa(payload.Polls)},
		{"Elapsed", util.FormatElapsed(payload.Elapsed)},
		{"Error class", payload.ErrorClass},
		{"Error", escapeSlackText(payload.Error)},
	}

	for _, field := range fields {
		appendSlackField(text, field.label, field.value)
	}
}

func appendSlackArtifacts(text *strings.Builder, artifacts []notify.ArtifactRef) {
	if len(artifacts) == 0 {
		return
	}
	text.WriteString("• Artifacts:\n")
	for _, a := range artifacts {
		text.WriteString("    • ")
		name := escapeSlackText(a.Filename)
		if a.URL != "" {
			fmt.Fprintf(text, "<%s|%s>", a.URL, name)
		} else {
			text.WriteString(name)
		}
		if a.Path != "" {
			text.WriteString(" → ")
			text.WriteString(escapeSlackText(a.Path))
		}
		text.WriteByte('\n')
	}
}

func escapeSlackText(value string) string {
	if value == "" {
		return ""
	}
	return strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	).Replace(value)
}

func appendSlackField(text *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	text.WriteString("• ")
	text.WriteString(label)
	text.WriteString(": ")
	text.WriteString(value)
	text.WriteByte('\n')
}

func appendSlackMetadata(text *strings.Builder, metadata map[string]string) {
	if len(metadata) == 0 {
		return
	}
	text.WriteString("• Metadata:\n")
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		text.WriteString("    • ")
		text.WriteString(k)
		text.WriteString(": ")
		text.WriteString(metadata[k])
		text.WriteByte('\n')
	}
}

func writeSlackTimestamp(text *strings.Builder, timestamp time.Time) {
	text.WriteString("• Timestamp: ")
	text.WriteString(timestamp.UTC().Format(time.RFC3339))
}
