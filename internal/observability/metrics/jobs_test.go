package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/target/promptwait/internal/errors"
)

type recorded struct {
	kind  string
	name  string
	value float64
	tags  map[string]string
}

type captureSink struct {
	calls []recorded
}

func (c *captureSink) Count(name string, value int64, tags map[string]string) {
	c.calls = append(c.calls, recorded{"count", name, float64(value), tags})
}

func (c *captureSink) Gauge(name string, value float64, tags map[string]string) {
	c.calls = append(c.calls, recorded{"gauge", name, value, tags})
}

func (c *captureSink) Timing(name string, value time.Duration, tags map[string]string) {
	c.calls = append(c.calls, recorded{"timing", name, float64(value), tags})
}

func TestEmitPhaseSuccess(t *testing.T) {
	sink := &captureSink{}
	EmitPhase(sink, PhaseMetric{Phase: PhaseSubmit, Duration: 20 * time.Millisecond})

	require.Len(t, sink.calls, 2)
	assert.Equal(t, "job.phase", sink.calls[0].name)
	assert.Equal(t, map[string]string{"phase": "submit", "result": "success"}, sink.calls[0].tags)
	assert.Equal(t, "job.phase.duration", sink.calls[1].name)
}

func TestEmitPhaseErrorIsClassified(t *testing.T) {
	sink := &captureSink{}
	EmitPhase(sink, PhaseMetric{Phase: PhaseProbe, Err: apperrors.ServiceUnavailable(errors.New("refused"), "probe")})

	require.Len(t, sink.calls, 1, "zero duration should skip timing")
	assert.Equal(t, "error", sink.calls[0].tags["result"])
	assert.Equal(t, "service_unavailable", sink.calls[0].tags["error_class"])
}

func TestEmitOutcome(t *testing.T) {
	sink := &captureSink{}
	EmitOutcome(sink, OutcomeMetric{State: "timed_out", Polls: 2, Elapsed: 4 * time.Second})

	require.Len(t, sink.calls, 3)
	assert.Equal(t, "job.outcome", sink.calls[0].name)
	assert.Equal(t, "gauge", sink.calls[1].kind)
	assert.InDelta(t, 2, sink.calls[1].value, 0)
	assert.Equal(t, "job.wait", sink.calls[2].name)
}

func TestEmitNilSink(t *testing.T) {
	EmitPhase(nil, PhaseMetric{Phase: PhaseWait})
	EmitOutcome(nil, OutcomeMetric{State: "completed"})
}
