package bootstrap

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerWritesJSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := InitLogger(&buf, slog.LevelWarn)
	logger.Info("hidden")
	logger.Warn("shown", "prompt_id", "xyz")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "xyz", entry["prompt_id"])
	assert.Same(t, logger, slog.Default())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("COMFY_BASE_URL", "http://gpu-box:8188/")
	t.Setenv("WAIT_MAX", "4s")
	t.Setenv("WAIT_INTERVAL", "2s")
	t.Setenv("NOTIFY_ENABLED", "true")
	t.Setenv("NOTIFY_WEBHOOK_ENABLED", "true")
	t.Setenv("NOTIFY_WEBHOOK_URL", "https://hooks.example.com/jobs")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://gpu-box:8188", cfg.Comfy.BaseURL)
	assert.Equal(t, 4*time.Second, cfg.Wait.Max)
	assert.Equal(t, 2*time.Second, cfg.Wait.Interval)
	assert.True(t, cfg.Observability.Notifications.Webhook.Enabled)
	assert.Equal(t, "./comfyui/output", cfg.Comfy.OutputDir)
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	t.Setenv("WAIT_MAX", "soon")
	_, err := LoadConfig()
	require.Error(t, err)
}
