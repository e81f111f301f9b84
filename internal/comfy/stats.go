package comfy

import (
	"fmt"
	"strconv"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// StatsField names a value extracted from system_stats with a JMESPath expression.
type StatsField struct {
	Name string
	Expr string
}

// StatsFields is an ordered display set.
type StatsFields []StatsField

// DefaultStatsFields returns the fields shown when none are configured.
func DefaultStatsFields() StatsFields {
	return StatsFields{
		{Name: "comfyui_version", Expr: "system.comfyui_version"},
		{Name: "python_version", Expr: "system.python_version"},
		{Name: "device", Expr: "devices[0].name"},
		{Name: "vram_total_gb", Expr: "devices[0].vram_total"},
		{Name: "vram_free_gb", Expr: "devices[0].vram_free"},
	}
}

// ParseStatsFields parses name=expression pairs and compiles every expression.
func ParseStatsFields(specs []string) (StatsFields, error) {
	if len(specs) == 0 {
		return DefaultStatsFields(), nil
	}
	fields := make(StatsFields, 0, len(specs))
	for _, spec := range specs {
		name, expr, ok := strings.Cut(spec, "=")
		name, expr = strings.TrimSpace(name), strings.TrimSpace(expr)
		if !ok || name == "" || expr == "" {
			return nil, fmt.Errorf("stats field %q: want name=expression", spec)
		}
		if _, err := jmespath.Compile(expr); err != nil {
			return nil, fmt.Errorf("stats field %q: %w", name, err)
		}
		fields = append(fields, StatsField{Name: name, Expr: expr})
	}
	return fields, nil
}

// SystemStats holds the decoded system_stats document and the display values
// extracted from it.
type SystemStats struct {
	Raw    any         `json:"-"`
	Values []StatValue `json:"values,omitempty"`
}

// StatValue is one extracted display value. Missing values are omitted.
type StatValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func newSystemStats(doc any, fields StatsFields) *SystemStats {
	st := &SystemStats{Raw: doc}
	for _, f := range fields {
		v, err := jmespath.Search(f.Expr, doc)
		if err != nil || v == nil {
			continue
		}
		st.Values = append(st.Values, StatValue{Name: f.Name, Value: formatStat(f.Name, v)})
	}
	return st
}

// Lookup returns the extracted value for name.
func (s *SystemStats) Lookup(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	for _, v := range s.Values {
		if v.Name == name {
			return v.Value, true
		}
	}
	return "", false
}

// formatStat renders byte counts for *_gb fields in GiB and everything else verbatim.
func formatStat(name string, v any) string {
	switch n := v.(type) {
	case float64:
		if strings.HasSuffix(name, "_gb") {
			return strconv.FormatFloat(n/(1<<30), 'f', 1, 64)
		}
		return strconv.FormatFloat(n, 'f', -1, 64)
	case string:
		return n
	case bool:
		return strconv.FormatBool(n)
	default:
		return fmt.Sprint(n)
	}
}
