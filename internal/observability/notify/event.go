// Package notify defines job outcome notifications and the sinks that deliver them.
package notify

import (
	"context"
	"time"
)

// Outcome states carried in payloads.
const (
	StateCompleted = "completed"
	StateFailed    = "failed"
	StateTimedOut  = "timed_out"
)

// ArtifactRef locates one produced file.
type ArtifactRef struct {
	NodeID   string `json:"node_id"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
	URL      string `json:"url,omitempty"`
}

// OutcomePayload captures the canonical data we emit when a job reaches a terminal state.
type OutcomePayload struct {
	PromptID   string            `json:"prompt_id"`
	ClientID   string            `json:"client_id,omitempty"`
	State      string            `json:"state"`
	Error      string            `json:"error,omitempty"`
	ErrorClass string            `json:"error_class,omitempty"`
	Artifacts  []ArtifactRef     `json:"artifacts,omitempty"`
	Polls      int               `json:"polls"`
	Elapsed    time.Duration     `json:"elapsed_ns"`
	OccurredAt time.Time         `json:"occurred_at"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Sink describes a destination capable of consuming outcome notifications.
type Sink interface {
	SendOutcome(ctx context.Context, payload OutcomePayload) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, payload OutcomePayload) error

// SendOutcome implements the Sink interface.
func (f SinkFunc) SendOutcome(ctx context.Context, payload OutcomePayload) error {
	if f == nil {
		return nil
	}
	return f(ctx, payload)
}
