package comfy

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesListed(t *testing.T) {
	var names []string
	for _, tpl := range Templates() {
		names = append(names, tpl.Name)
	}
	if diff := cmp.Diff([]string{"passthrough", "remove_background", "rotate"}, names); diff != "" {
		t.Fatalf("template names mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveBackgroundTemplate(t *testing.T) {
	tpl, ok := LookupTemplate("remove_background")
	require.True(t, ok)

	job, err := tpl.Build(TemplateParams{Image: "input.png"})
	require.NoError(t, err)

	want := JobDescription{
		"1": map[string]any{"class_type": "LoadImage", "inputs": map[string]any{"image": "input.png"}},
		"2": map[string]any{"class_type": "BackgroundRemover", "inputs": map[string]any{"image": []any{"1", 0}}},
		"3": map[string]any{"class_type": "SaveImage", "inputs": map[string]any{
			"images":          []any{"2", 0},
			"filename_prefix": "bg_removed",
		}},
	}
	if diff := cmp.Diff(want, job); diff != "" {
		t.Fatalf("job mismatch (-want +got):\n%s", diff)
	}
}

func TestRotateTemplateDefaults(t *testing.T) {
	tpl, ok := LookupTemplate("rotate")
	require.True(t, ok)

	job, err := tpl.Build(TemplateParams{Image: "in.png", FilenamePrefix: "turned"})
	require.NoError(t, err)

	rotate := job["2"].(map[string]any)["inputs"].(map[string]any)
	assert.Equal(t, 90, rotate["rotation"])
	save := job["3"].(map[string]any)["inputs"].(map[string]any)
	assert.Equal(t, "turned", save["filename_prefix"])
}

func TestRotateTemplateExplicitRotation(t *testing.T) {
	tpl, ok := LookupTemplate("rotate")
	require.True(t, ok)

	for _, degrees := range []int{0, 180} {
		job, err := tpl.Build(TemplateParams{Image: "in.png", Rotation: &degrees})
		require.NoError(t, err)
		rotate := job["2"].(map[string]any)["inputs"].(map[string]any)
		assert.Equal(t, degrees, rotate["rotation"])
	}
}

func TestTemplateRequiresImage(t *testing.T) {
	tpl, ok := LookupTemplate("passthrough")
	require.True(t, ok)

	_, err := tpl.Build(TemplateParams{})
	require.Error(t, err)

	_, ok = LookupTemplate("upscale")
	assert.False(t, ok)
}
