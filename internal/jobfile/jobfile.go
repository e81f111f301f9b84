// Package jobfile loads job descriptions from JSON or YAML files.
package jobfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/target/promptwait/internal/comfy"
	apperrors "github.com/target/promptwait/internal/errors"
	"gopkg.in/yaml.v3"
)

// Format selects the decoder for a job file.
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Load reads a job description from path ("-" reads stdin).
func Load(path string, stdin io.Reader) (comfy.JobDescription, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, apperrors.Validation("job file path is required")
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeValidation, "read job file %s", path)
	}

	job, err := Decode(data, formatFromPath(path))
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeValidation, "parse job file %s", path)
	}
	return job, nil
}

// Decode parses data as a job description. A document whose only key is
// "prompt" and whose value is a graph of node objects is treated as an already
// enveloped job and unwrapped. Nested YAML mappings with non-string keys are
// converted to string keys so the result always encodes as JSON.
func Decode(data []byte, format Format) (comfy.JobDescription, error) {
	if format == FormatAuto {
		format = sniff(data)
	}

	var doc map[string]any
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return nil, errors.New("decode json: unexpected data after the job description")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		doc = stringKeys(doc).(map[string]any)
	default:
		return nil, fmt.Errorf("unsupported job file format %q", format)
	}

	if len(doc) == 0 {
		return nil, errors.New("job description is empty")
	}
	if inner, ok := doc["prompt"].(map[string]any); ok && len(doc) == 1 && isNodeGraph(inner) {
		doc = inner
	}
	if _, err := json.Marshal(doc); err != nil {
		return nil, fmt.Errorf("job description cannot be encoded as JSON: %w", err)
	}
	return comfy.JobDescription(doc), nil
}

// stringKeys rewrites map[any]any values produced by the YAML decoder into
// map[string]any, recursing through maps and sequences.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, inner := range t {
			t[k] = stringKeys(inner)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[fmt.Sprint(k)] = stringKeys(inner)
		}
		return out
	case []any:
		for i, inner := range t {
			t[i] = stringKeys(inner)
		}
		return t
	default:
		return v
	}
}

// isNodeGraph reports whether every value of m is a node object.
func isNodeGraph(m map[string]any) bool {
	if len(m) == 0 {
		return false
	}
	for _, v := range m {
		node, ok := v.(map[string]any)
		if !ok {
			return false
		}
		if _, ok := node["class_type"]; !ok {
			return false
		}
	}
	return true
}

func formatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatAuto
	}
}

func sniff(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatYAML
}
