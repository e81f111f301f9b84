// Package redispub publishes job outcomes on a Redis pub/sub channel.
package redispub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/target/promptwait/internal/observability/notify"
)

// Publisher sends each outcome as a JSON message to a channel.
type Publisher struct {
	client  redis.UniversalClient
	channel string
}

var _ notify.Sink = (*Publisher)(nil)

// NewPublisher wraps an existing client. The caller owns the client lifecycle.
func NewPublisher(client redis.UniversalClient, channel string) (*Publisher, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return nil, errors.New("redis channel is required")
	}
	return &Publisher{client: client, channel: channel}, nil
}

// Channel reports the channel outcomes are published on.
func (p *Publisher) Channel() string { return p.channel }

// SendOutcome publishes the payload.
func (p *Publisher) SendOutcome(ctx context.Context, payload notify.OutcomePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, body).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", p.channel, err)
	}
	return nil
}
