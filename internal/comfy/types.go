package comfy

import (
	"encoding/json"
	"sort"
	"strings"
)

// JobDescription is the opaque prompt graph submitted to the service: node id to
// node object (class_type plus inputs). The client never interprets it.
type JobDescription map[string]any

// PromptID identifies a submitted job. It is case-sensitive.
type PromptID string

// String implements fmt.Stringer.
func (id PromptID) String() string {
	return string(id)
}

// Artifact describes one produced file on the service host.
type Artifact struct {
	Filename  string `json:"filename"`
	Subfolder string `json:"subfolder,omitempty"`
	Type      string `json:"type,omitempty"`
}

// Path derives the artifact's location under outputDir on the service host.
func (a Artifact) Path(outputDir string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(outputDir, "/"))
	b.WriteByte('/')
	if sub := strings.Trim(a.Subfolder, "/"); sub != "" {
		b.WriteString(sub)
		b.WriteByte('/')
	}
	b.WriteString(a.Filename)
	return b.String()
}

// NodeOutput is what a single node produced.
type NodeOutput struct {
	Images []Artifact `json:"images,omitempty"`
}

// Status is the service's execution status for a job.
type Status struct {
	StatusStr string            `json:"status_str,omitempty"`
	Completed bool              `json:"completed"`
	Error     string            `json:"error,omitempty"`
	Messages  []json.RawMessage `json:"messages,omitempty"`
}

// JobRecord is the history entry the service keeps for a job.
type JobRecord struct {
	Outputs map[string]NodeOutput `json:"outputs,omitempty"`
	Status  *Status               `json:"status,omitempty"`
}

// HasOutputs reports whether the outputs mapping is non-empty.
func (r *JobRecord) HasOutputs() bool {
	return r != nil && len(r.Outputs) > 0
}

// IsCompleted reports whether the status carries the completion flag.
func (r *JobRecord) IsCompleted() bool {
	return r != nil && r.Status != nil && r.Status.Completed
}

// ErrorDescription returns the job's error text when the status reports one.
func (r *JobRecord) ErrorDescription() (string, bool) {
	if r == nil || r.Status == nil {
		return "", false
	}
	if msg := strings.TrimSpace(r.Status.Error); msg != "" {
		return msg, true
	}
	if r.Status.StatusStr != "error" {
		return "", false
	}
	if msg := executionErrorMessage(r.Status.Messages); msg != "" {
		return msg, true
	}
	return "execution error", true
}

// Artifacts lists every produced file ordered by node id, then position.
func (r *JobRecord) Artifacts() []NodeArtifact {
	if r == nil || len(r.Outputs) == 0 {
		return nil
	}
	nodes := make([]string, 0, len(r.Outputs))
	for id := range r.Outputs {
		nodes = append(nodes, id)
	}
	sort.Slice(nodes, func(i, j int) bool { return lessNodeID(nodes[i], nodes[j]) })

	var out []NodeArtifact
	for _, id := range nodes {
		for _, img := range r.Outputs[id].Images {
			out = append(out, NodeArtifact{NodeID: id, Artifact: img})
		}
	}
	return out
}

// NodeArtifact pairs an artifact with the node that produced it.
type NodeArtifact struct {
	NodeID string
	Artifact
}

// lessNodeID orders numeric ids numerically and falls back to lexical order.
func lessNodeID(a, b string) bool {
	if len(a) != len(b) && isDigits(a) && isDigits(b) {
		return len(a) < len(b)
	}
	return a < b
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// executionErrorMessage pulls exception_message out of an ["execution_error", {...}] entry.
func executionErrorMessage(messages []json.RawMessage) string {
	for _, raw := range messages {
		var pair []json.RawMessage
		if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
			continue
		}
		var kind string
		if err := json.Unmarshal(pair[0], &kind); err != nil || kind != "execution_error" {
			continue
		}
		var body struct {
			NodeType         string `json:"node_type"`
			ExceptionType    string `json:"exception_type"`
			ExceptionMessage string `json:"exception_message"`
		}
		if err := json.Unmarshal(pair[1], &body); err != nil {
			continue
		}
		msg := strings.TrimSpace(body.ExceptionMessage)
		if msg == "" {
			msg = body.ExceptionType
		}
		if body.NodeType != "" && msg != "" {
			return body.NodeType + ": " + msg
		}
		return msg
	}
	return ""
}

// UploadedImage is the service's answer to an image upload.
type UploadedImage struct {
	Name      string `json:"name"`
	Subfolder string `json:"subfolder,omitempty"`
	Type      string `json:"type,omitempty"`
}

// Reference returns the name a LoadImage node expects for this upload.
func (u UploadedImage) Reference() string {
	if u.Subfolder == "" {
		return u.Name
	}
	return u.Subfolder + "/" + u.Name
}
