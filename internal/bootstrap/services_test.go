package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/promptwait/config"
	"github.com/target/promptwait/internal/comfy"
	"github.com/target/promptwait/internal/service"
	"github.com/target/promptwait/internal/testutil"
	"github.com/target/promptwait/internal/testutil/comfytest"
)

func testConfig(baseURL string) config.AppConfig {
	cfg := config.AppConfig{Comfy: config.ComfyConfig{BaseURL: baseURL}}
	cfg.Sanitize()
	return cfg
}

func TestNewContainerRejectsBadBaseURL(t *testing.T) {
	_, err := NewContainer(context.Background(), testConfig("ftp://nope"), nil)
	require.Error(t, err)
}

func TestNewContainerRejectsBadStatsFields(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:8188")
	cfg.Comfy.StatsFields = []string{"broken"}
	_, err := NewContainer(context.Background(), cfg, nil)
	require.Error(t, err)
}

func TestContainerRunnerNotifiesWebhook(t *testing.T) {
	svc := comfytest.NewServer(t, comfytest.Options{
		PromptID: "xyz",
		History:  []*comfy.JobRecord{testutil.NewRecord().WithImage("9", "out1.png").Build()},
	})

	var (
		mu       sync.Mutex
		received []map[string]any
	)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var doc map[string]any
		_ = json.NewDecoder(r.Body).Decode(&doc)
		mu.Lock()
		received = append(received, doc)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer hook.Close()

	cfg := testConfig(svc.URL)
	cfg.Observability.Notifications.Enabled = true
	cfg.Observability.Notifications.Webhook.Enabled = true
	cfg.Observability.Notifications.Webhook.URL = hook.URL
	cfg.Observability.Notifications.Sanitize()

	c, err := NewContainer(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer func() { assert.NoError(t, c.Close()) }()
	assert.True(t, c.Observability.Notifier.Enabled())
	assert.Nil(t, c.Observability.MetricsSink)

	runner, err := c.NewRunner(config.WaitConfig{Max: time.Second, Interval: 10 * time.Millisecond})
	require.NoError(t, err)

	out, err := runner.Run(context.Background(), service.RunRequest{Job: testutil.SampleJob()})
	require.NoError(t, err)
	assert.Equal(t, service.StateCompleted, out.State)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, "xyz", received[0]["job_id"])
	assert.Equal(t, "completed", received[0]["status"])
	assert.Equal(t, map[string]any{"base_url": svc.URL}, received[0]["metadata"])
}

func TestContainerSkipsUnreachableRedis(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:8188")
	cfg.Observability.Notifications.Enabled = true
	cfg.Observability.Notifications.Redis.Enabled = true
	cfg.Observability.Notifications.Redis.Addr = "127.0.0.1:1"

	c, err := NewContainer(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.False(t, c.Observability.Notifier.Enabled())
	assert.NoError(t, c.Close())
}

func TestContainerWithMetrics(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:8188")
	cfg.Observability.Metrics = config.ObservabilityMetricsConfig{Enabled: true, StatsdAddress: "127.0.0.1:8125", Prefix: "promptwait"}

	c, err := NewContainer(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, c.Observability.MetricsSink)
	assert.True(t, c.Observability.MetricsSink.Enabled())
	assert.NoError(t, c.Close())
}

func TestRedactAddr(t *testing.T) {
	redacted := redactAddr("redis://user:pw@cache:6379/0")
	assert.NotContains(t, redacted, "pw")
	assert.Contains(t, redacted, "cache:6379")
	assert.Equal(t, "cache:6379", redactAddr("cache:6379"))
}
