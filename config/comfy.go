package config

import (
	"strings"
	"time"
)

const (
	defaultComfyBaseURL   = "http://127.0.0.1:8188"
	defaultOutputDir      = "./comfyui/output"
	defaultProbeTimeout   = 5 * time.Second
	defaultRequestTimeout = 30 * time.Second
)

// ComfyConfig contains settings for talking to the generation service.
type ComfyConfig struct {
	// BaseURL is the address of the service, e.g. http://127.0.0.1:8188.
	BaseURL string `env:"BASE_URL" envDefault:"http://127.0.0.1:8188"`

	// OutputDir is the directory on the service host where artifacts are written.
	// Only used to derive display paths; artifacts are never transferred.
	OutputDir string `env:"OUTPUT_DIR" envDefault:"./comfyui/output"`

	// APIToken is sent as a bearer token when set. Plain local instances need none.
	APIToken string `env:"API_TOKEN"`

	// ClientID is sent with every submission. A random one is generated when empty.
	ClientID string `env:"CLIENT_ID"`

	// ProbeTimeout bounds the availability probe.
	ProbeTimeout time.Duration `env:"PROBE_TIMEOUT" envDefault:"5s"`

	// RequestTimeout bounds every other request.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	// StatsFields lists name=JMESPath pairs extracted from system_stats for display.
	// Empty uses the built-in field set.
	StatsFields []string `env:"STATS_FIELDS" envSeparator:";"`
}

// Sanitize normalises the service address and clamps timeouts.
func (c *ComfyConfig) Sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = defaultComfyBaseURL
	}
	c.OutputDir = strings.TrimSpace(c.OutputDir)
	if c.OutputDir == "" {
		c.OutputDir = defaultOutputDir
	}
	c.APIToken = strings.TrimSpace(c.APIToken)
	c.ClientID = strings.TrimSpace(c.ClientID)
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = defaultProbeTimeout
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}

	fields := c.StatsFields[:0]
	for _, f := range c.StatsFields {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	c.StatsFields = fields
}
