package service

import (
	"time"

	"github.com/target/promptwait/internal/comfy"
	obserrors "github.com/target/promptwait/internal/observability/errors"
	"github.com/target/promptwait/internal/observability/notify"
)

// Terminal outcome states.
const (
	StateCompleted = notify.StateCompleted
	StateFailed    = notify.StateFailed
	StateTimedOut  = notify.StateTimedOut
)

// ArtifactReport is a produced file with its derived locations.
type ArtifactReport struct {
	NodeID    string `json:"node_id"`
	Filename  string `json:"filename"`
	Subfolder string `json:"subfolder,omitempty"`
	Type      string `json:"type,omitempty"`
	Path      string `json:"path"`
	URL       string `json:"url,omitempty"`
}

// Outcome is how a job ended. Err is set for failed and timed-out jobs. Stats is
// the probe result when the job was launched in the same run.
type Outcome struct {
	PromptID  comfy.PromptID     `json:"prompt_id"`
	ClientID  string             `json:"client_id,omitempty"`
	State     string             `json:"state"`
	Artifacts []ArtifactReport   `json:"artifacts"`
	Polls     int                `json:"polls"`
	Elapsed   time.Duration      `json:"elapsed_ns"`
	Stats     *comfy.SystemStats `json:"stats,omitempty"`
	Record    *comfy.JobRecord   `json:"record,omitempty"`
	Metadata  map[string]string  `json:"metadata,omitempty"`
	Err       error              `json:"-"`
}

// Succeeded reports whether the job completed.
func (o *Outcome) Succeeded() bool {
	return o != nil && o.State == StateCompleted
}

// Payload converts the outcome for notification sinks.
func (o *Outcome) Payload(at time.Time) notify.OutcomePayload {
	p := notify.OutcomePayload{
		PromptID:   string(o.PromptID),
		ClientID:   o.ClientID,
		State:      o.State,
		Polls:      o.Polls,
		Elapsed:    o.Elapsed,
		OccurredAt: at,
		Metadata:   o.Metadata,
	}
	if o.Err != nil {
		p.Error = o.Err.Error()
		p.ErrorClass = obserrors.Classify(o.Err)
	}
	for _, a := range o.Artifacts {
		p.Artifacts = append(p.Artifacts, notify.ArtifactRef{
			NodeID:   a.NodeID,
			Filename: a.Filename,
			Path:     a.Path,
			URL:      a.URL,
		})
	}
	return p
}
