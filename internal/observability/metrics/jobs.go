// Package metrics emits the job client's StatsD metrics.
package metrics

import (
	"time"

	obserrors "github.com/target/promptwait/internal/observability/errors"
	"github.com/target/promptwait/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Phase names.
const (
	PhaseProbe  = "probe"
	PhaseUpload = "upload"
	PhaseSubmit = "submit"
	PhaseWait   = "wait"
)

// PhaseMetric captures one step of a job run.
type PhaseMetric struct {
	Phase    string
	Duration time.Duration
	Err      error
}

// EmitPhase emits job.phase and job.phase.duration for one step.
func EmitPhase(sink statsd.Sink, in PhaseMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"phase":  in.Phase,
		"result": ResultSuccess,
	}
	if in.Err != nil {
		tags["result"] = ResultError
		tags["error_class"] = obserrors.Classify(in.Err)
	}

	sink.Count("job.phase", 1, tags)
	if in.Duration > 0 {
		sink.Timing("job.phase.duration", in.Duration, CloneTags(tags))
	}
}

// OutcomeMetric captures how a wait ended.
type OutcomeMetric struct {
	State   string
	Polls   int
	Elapsed time.Duration
}

// EmitOutcome emits the terminal state with poll count and total wait time.
func EmitOutcome(sink statsd.Sink, in OutcomeMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{"state": in.State}
	sink.Count("job.outcome", 1, tags)
	sink.Gauge("job.polls", float64(in.Polls), CloneTags(tags))
	if in.Elapsed > 0 {
		sink.Timing("job.wait", in.Elapsed, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
