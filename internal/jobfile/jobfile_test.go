package jobfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/target/promptwait/internal/errors"
)

const jsonJob = `{
  "3": {"class_type": "KSampler", "inputs": {"seed": 156680208700286, "cfg": 8.0, "model": ["4", 0]}},
  "4": {"class_type": "CheckpointLoaderSimple", "inputs": {"ckpt_name": "sd_xl_base_1.0.safetensors"}}
}`

const yamlJob = `
"1":
  class_type: LoadImage
  inputs:
    image: input.png
"2":
  class_type: SaveImage
  inputs:
    images: ["1", 0]
    filename_prefix: output
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadJSONPreservesNumbers(t *testing.T) {
	job, err := Load(writeFile(t, "job.json", jsonJob), nil)
	require.NoError(t, err)

	out, err := json.Marshal(job)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"seed":156680208700286`)
	assert.Contains(t, string(out), `"cfg":8.0`)
}

func TestLoadYAML(t *testing.T) {
	job, err := Load(writeFile(t, "job.yaml", yamlJob), nil)
	require.NoError(t, err)
	require.Len(t, job, 2)

	node, ok := job["2"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "SaveImage", node["class_type"])

	out, err := json.Marshal(job)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"images":["1",0]`)
}

func TestLoadStdinSniffsFormat(t *testing.T) {
	job, err := Load("-", strings.NewReader(jsonJob))
	require.NoError(t, err)
	assert.Len(t, job, 2)

	job, err = Load("-", strings.NewReader(yamlJob))
	require.NoError(t, err)
	assert.Len(t, job, 2)
}

func TestDecodeUnwrapsEnvelope(t *testing.T) {
	job, err := Decode([]byte(`{"prompt": `+jsonJob+`}`), FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, job, "3")
	assert.NotContains(t, job, "prompt")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("", nil)
	assert.True(t, apperrors.IsValidation(err))

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.True(t, apperrors.IsValidation(err))

	_, err = Load(writeFile(t, "bad.json", `{"1": `), nil)
	assert.True(t, apperrors.IsValidation(err))

	_, err = Load(writeFile(t, "empty.json", `{}`), nil)
	assert.True(t, apperrors.IsValidation(err))
}

func TestDecodeYAMLNonStringKeys(t *testing.T) {
	job, err := Decode([]byte("\"1\":\n  class_type: X\n  inputs:\n    0: a\n    list:\n      - 1: b\n"), FormatYAML)
	require.NoError(t, err)

	inputs := job["1"].(map[string]any)["inputs"].(map[string]any)
	assert.Equal(t, "a", inputs["0"])
	assert.Equal(t, []any{map[string]any{"1": "b"}}, inputs["list"])

	_, err = json.Marshal(job)
	require.NoError(t, err)
}

func TestDecodeKeepsNodeNamedPrompt(t *testing.T) {
	job, err := Decode([]byte(`{"prompt": {"class_type": "SaveImage", "inputs": {}}}`), FormatJSON)
	require.NoError(t, err)
	require.Contains(t, job, "prompt")
	assert.Equal(t, "SaveImage", job["prompt"].(map[string]any)["class_type"])
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	_, err := Decode([]byte(jsonJob+` garbage`), FormatJSON)
	require.Error(t, err)

	_, err = Decode([]byte(jsonJob+"\n{}"), FormatJSON)
	require.Error(t, err)

	_, err = Decode([]byte(jsonJob+"\n\n"), FormatJSON)
	require.NoError(t, err)

	_, err = Load(writeFile(t, "trailing.json", jsonJob+` garbage`), nil)
	assert.True(t, apperrors.IsValidation(err))
}
