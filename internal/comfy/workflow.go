package comfy

import (
	"fmt"
	"sort"
	"strings"
)

// TemplateParams feeds a built-in workflow template.
type TemplateParams struct {
	// Image is the uploaded input image reference.
	Image string
	// FilenamePrefix overrides the template's default output prefix.
	FilenamePrefix string
	// Rotation in degrees, used by the rotate template. Nil selects the default of 90.
	Rotation *int
}

// Template builds a JobDescription from parameters.
type Template struct {
	Name          string
	Description   string
	DefaultPrefix string
	build         func(p TemplateParams) JobDescription
}

// Build renders the template, applying the default prefix when none is given.
func (t Template) Build(p TemplateParams) (JobDescription, error) {
	if strings.TrimSpace(p.Image) == "" {
		return nil, fmt.Errorf("template %s: input image is required", t.Name)
	}
	if strings.TrimSpace(p.FilenamePrefix) == "" {
		p.FilenamePrefix = t.DefaultPrefix
	}
	return t.build(p), nil
}

var templates = map[string]Template{
	"passthrough": {
		Name:          "passthrough",
		Description:   "Load an image and save it unchanged",
		DefaultPrefix: "output",
		build: func(p TemplateParams) JobDescription {
			return JobDescription{
				"1": node("LoadImage", map[string]any{"image": p.Image}),
				"2": node("SaveImage", map[string]any{
					"images":          link("1", 0),
					"filename_prefix": p.FilenamePrefix,
				}),
			}
		},
	},
	"remove_background": {
		Name:          "remove_background",
		Description:   "Remove the background of an image",
		DefaultPrefix: "bg_removed",
		build: func(p TemplateParams) JobDescription {
			return JobDescription{
				"1": node("LoadImage", map[string]any{"image": p.Image}),
				"2": node("BackgroundRemover", map[string]any{"image": link("1", 0)}),
				"3": node("SaveImage", map[string]any{
					"images":          link("2", 0),
					"filename_prefix": p.FilenamePrefix,
				}),
			}
		},
	},
	"rotate": {
		Name:          "rotate",
		Description:   "Rotate an image (default 90 degrees)",
		DefaultPrefix: "rotated",
		build: func(p TemplateParams) JobDescription {
			rotation := 90
			if p.Rotation != nil {
				rotation = *p.Rotation
			}
			return JobDescription{
				"1": node("LoadImage", map[string]any{"image": p.Image}),
				"2": node("ImageRotate", map[string]any{
					"image":    link("1", 0),
					"rotation": rotation,
				}),
				"3": node("SaveImage", map[string]any{
					"images":          link("2", 0),
					"filename_prefix": p.FilenamePrefix,
				}),
			}
		},
	},
}

// LookupTemplate returns the built-in template called name.
func LookupTemplate(name string) (Template, bool) {
	t, ok := templates[strings.TrimSpace(name)]
	return t, ok
}

// Templates lists the built-in templates sorted by name.
func Templates() []Template {
	out := make([]Template, 0, len(templates))
	for _, t := range templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func node(classType string, inputs map[string]any) map[string]any {
	return map[string]any{
		"class_type": classType,
		"inputs":     inputs,
	}
}

// link references output slot of another node.
func link(nodeID string, slot int) []any {
	return []any{nodeID, slot}
}
