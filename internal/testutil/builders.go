package testutil

import (
	"encoding/json"
	"fmt"

	"github.com/target/promptwait/internal/comfy"
)

// RecordBuilder provides a fluent interface for building history records in tests.
type RecordBuilder struct {
	rec *comfy.JobRecord
}

// NewRecord creates a RecordBuilder for a record with no outputs and no status.
func NewRecord() *RecordBuilder {
	return &RecordBuilder{rec: &comfy.JobRecord{}}
}

// WithImage appends an image output for node.
func (b *RecordBuilder) WithImage(node, filename string) *RecordBuilder {
	return b.WithArtifact(node, comfy.Artifact{Filename: filename, Type: "output"})
}

// WithArtifact appends an artifact for node.
func (b *RecordBuilder) WithArtifact(node string, a comfy.Artifact) *RecordBuilder {
	if b.rec.Outputs == nil {
		b.rec.Outputs = make(map[string]comfy.NodeOutput)
	}
	out := b.rec.Outputs[node]
	out.Images = append(out.Images, a)
	b.rec.Outputs[node] = out
	return b
}

// Running marks the record as accepted but not finished.
func (b *RecordBuilder) Running() *RecordBuilder {
	b.status().StatusStr = "running"
	return b
}

// Completed sets the completion flag.
func (b *RecordBuilder) Completed() *RecordBuilder {
	s := b.status()
	s.StatusStr = "success"
	s.Completed = true
	return b
}

// WithError sets a plain error description.
func (b *RecordBuilder) WithError(msg string) *RecordBuilder {
	b.status().Error = msg
	return b
}

// WithExecutionError records an execution_error message the way the service reports node crashes.
func (b *RecordBuilder) WithExecutionError(nodeType, msg string) *RecordBuilder {
	s := b.status()
	s.StatusStr = "error"
	raw, err := json.Marshal([]any{"execution_error", map[string]any{
		"node_type":         nodeType,
		"exception_type":    "RuntimeError",
		"exception_message": msg,
	}})
	if err != nil {
		panic(fmt.Sprintf("marshal execution error: %v", err))
	}
	s.Messages = append(s.Messages, raw)
	return b
}

// Build returns the built record.
func (b *RecordBuilder) Build() *comfy.JobRecord {
	return b.rec
}

func (b *RecordBuilder) status() *comfy.Status {
	if b.rec.Status == nil {
		b.rec.Status = &comfy.Status{}
	}
	return b.rec.Status
}

// SampleJob returns a minimal two-node job description.
func SampleJob() comfy.JobDescription {
	return comfy.JobDescription{
		"1": map[string]any{"class_type": "LoadImage", "inputs": map[string]any{"image": "in.png"}},
		"9": map[string]any{
			"class_type": "SaveImage",
			"inputs":     map[string]any{"images": []any{"1", 0}, "filename_prefix": "out"},
		},
	}
}
