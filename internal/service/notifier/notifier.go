// Package notifier fans terminal job outcomes out to the configured sinks.
package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/target/promptwait/internal/observability/notify"
)

// SinkRegistration pairs a sink implementation with a human-readable name for logging.
type SinkRegistration struct {
	Name string
	Sink notify.Sink
}

// Options configures the notifier service.
type Options struct {
	Logger *slog.Logger
	Sinks  []SinkRegistration
	// States limits delivery to these outcome states. Empty means all.
	States []string
}

// Service dispatches outcome events to all registered sinks.
type Service struct {
	logger *slog.Logger
	sinks  []SinkRegistration
	states map[string]struct{}
}

// NewService constructs a notifier.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "outcome_notifier")
	}

	var sinks []SinkRegistration
	for _, entry := range opts.Sinks {
		if entry.Sink == nil {
			continue
		}
		name := entry.Name
		if name == "" {
			name = "sink"
		}
		sinks = append(sinks, SinkRegistration{Name: name, Sink: entry.Sink})
	}

	var states map[string]struct{}
	if len(opts.States) > 0 {
		states = make(map[string]struct{}, len(opts.States))
		for _, s := range opts.States {
			states[s] = struct{}{}
		}
	}

	return &Service{logger: logger, sinks: sinks, states: states}
}

// NotifyOutcome delivers payload to every sink in parallel and waits for all of them.
// Delivery errors are logged and never returned.
func (s *Service) NotifyOutcome(ctx context.Context, payload notify.OutcomePayload) {
	if err := s.Deliver(ctx, payload); err != nil {
		s.logger.WarnContext(ctx, "outcome notification incomplete",
			"prompt_id", payload.PromptID,
			"state", payload.State,
			"error", err,
		)
	}
}

// Deliver sends payload to every sink in parallel. A failing sink does not stop the
// others; each failure is logged and the first one is returned once all sinks finish.
// Filtered states and a service without sinks deliver nothing and return nil.
func (s *Service) Deliver(ctx context.Context, payload notify.OutcomePayload) error {
	if s == nil || len(s.sinks) == 0 {
		return nil
	}
	if s.states != nil {
		if _, ok := s.states[payload.State]; !ok {
			s.logger.DebugContext(ctx, "skipping notification for filtered state",
				"prompt_id", payload.PromptID,
				"state", payload.State,
			)
			return nil
		}
	}

	var g errgroup.Group
	for _, entry := range s.sinks {
		g.Go(func() error {
			err := entry.Sink.SendOutcome(ctx, payload)
			if err == nil {
				return nil
			}
			s.logger.ErrorContext(ctx, "outcome notifier delivery error",
				"sink", entry.Name,
				"prompt_id", payload.PromptID,
				"state", payload.State,
				"error", err,
			)
			return fmt.Errorf("%s sink: %w", entry.Name, err)
		})
	}
	return g.Wait()
}

// Enabled reports whether the notifier has any active sinks.
func (s *Service) Enabled() bool {
	return s != nil && len(s.sinks) > 0
}
