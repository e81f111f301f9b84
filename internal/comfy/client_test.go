package comfy

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/target/promptwait/internal/errors"
)

func newTestClient(t *testing.T, h http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL + "/", ClientID: "test-client", HTTPClient: srv.Client()})
	require.NoError(t, err)
	return c, srv
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)

	_, err = NewClient(Config{BaseURL: "ftp://example.com"})
	require.Error(t, err)

	c, err := NewClient(Config{BaseURL: "http://127.0.0.1:8188/"})
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8188", c.BaseURL())
	assert.NotEmpty(t, c.ClientID(), "client id should be generated")
}

func TestSystemStats(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/system_stats", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = io.WriteString(w, `{
			"system": {"comfyui_version": "0.3.40", "python_version": "3.11.9"},
			"devices": [{"name": "cuda:0 NVIDIA RTX 4090", "vram_total": 25757220864, "vram_free": 12878610432}]
		}`)
	}))

	stats, err := c.SystemStats(context.Background())
	require.NoError(t, err)

	version, ok := stats.Lookup("comfyui_version")
	require.True(t, ok)
	assert.Equal(t, "0.3.40", version)

	vram, ok := stats.Lookup("vram_total_gb")
	require.True(t, ok)
	assert.Equal(t, "24.0", vram)

	device, _ := stats.Lookup("device")
	assert.Equal(t, "cuda:0 NVIDIA RTX 4090", device)
}

func TestSystemStatsMissingFieldsAreSkipped(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"system": {}}`)
	}))

	stats, err := c.SystemStats(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stats.Values)
}

func TestSystemStatsFailures(t *testing.T) {
	t.Run("non-2xx is service unavailable", func(t *testing.T) {
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
		}))
		_, err := c.SystemStats(context.Background())
		require.Error(t, err)
		assert.True(t, apperrors.IsServiceUnavailable(err), "got %v", err)
		assert.Contains(t, err.Error(), "warming up")
	})

	t.Run("connection refused is service unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		base := srv.URL
		srv.Close()

		c, err := NewClient(Config{BaseURL: base})
		require.NoError(t, err)
		_, err = c.SystemStats(context.Background())
		require.Error(t, err)
		assert.True(t, apperrors.IsServiceUnavailable(err), "got %v", err)
	})

	t.Run("non-object body is malformed", func(t *testing.T) {
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `[1,2,3]`)
		}))
		_, err := c.SystemStats(context.Background())
		require.Error(t, err)
		assert.True(t, apperrors.IsMalformed(err), "got %v", err)
	})
}

func sampleJob() JobDescription {
	return JobDescription{
		"4": map[string]any{
			"class_type": "CheckpointLoaderSimple",
			"inputs":     map[string]any{"ckpt_name": "sd_xl_base_1.0.safetensors"},
		},
		"3": map[string]any{
			"class_type": "KSampler",
			"inputs": map[string]any{
				"seed":         float64(42),
				"steps":        float64(20),
				"cfg":          8.0,
				"sampler_name": "euler",
				"model":        []any{"4", float64(0)},
			},
		},
	}
}

func TestSubmitRoundTripsJobDescription(t *testing.T) {
	var posts atomic.Int32
	var got struct {
		Prompt   JobDescription `json:"prompt"`
		ClientID string         `json:"client_id"`
	}

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/prompt", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		posts.Add(1)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"prompt_id": "abc123", "number": 7, "node_errors": {}}`)
	}))

	job := sampleJob()
	id, err := c.Submit(context.Background(), job)
	require.NoError(t, err)

	assert.Equal(t, PromptID("abc123"), id)
	assert.EqualValues(t, 1, posts.Load())
	assert.Equal(t, "test-client", got.ClientID)
	if diff := cmp.Diff(job, got.Prompt); diff != "" {
		t.Fatalf("submitted prompt mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"missing prompt_id", http.StatusOK, `{"number": 1}`, "no prompt_id"},
		{"unparseable body", http.StatusOK, `not json`, "decode submit response"},
		{
			"rejected prompt",
			http.StatusBadRequest,
			`{"error": {"type": "prompt_outputs_failed_validation", "message": "Prompt outputs failed validation", "details": ""}, "node_errors": {"9": {}}}`,
			"Prompt outputs failed validation [1 node errors]",
		},
		{"server error", http.StatusInternalServerError, `oops`, "500 Internal Server Error: oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var posts atomic.Int32
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				posts.Add(1)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))

			_, err := c.Submit(context.Background(), sampleJob())
			require.Error(t, err)
			assert.True(t, apperrors.IsSubmission(err), "got %v", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.EqualValues(t, 1, posts.Load(), "submission must not be retried")
		})
	}
}

func TestSubmitTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewClient(Config{BaseURL: base})
	require.NoError(t, err)

	_, err = c.Submit(context.Background(), sampleJob())
	require.Error(t, err)
	assert.True(t, apperrors.IsSubmission(err), "got %v", err)
}

func TestHistory(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/history/xyz":
			_, _ = io.WriteString(w, `{"xyz": {"outputs": {"9": {"images": [{"filename": "out1.png", "subfolder": "", "type": "output"}]}}, "status": {"status_str": "success", "completed": true}}}`)
		case "/history/missing":
			_, _ = io.WriteString(w, `{}`)
		case "/history/broken":
			_, _ = io.WriteString(w, `{"broken": "not-an-object"}`)
		case "/history/garbage":
			_, _ = io.WriteString(w, `<html>`)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	ctx := context.Background()

	rec, found, err := c.History(ctx, "xyz")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, rec.HasOutputs())
	assert.True(t, rec.IsCompleted())
	require.Len(t, rec.Artifacts(), 1)
	assert.Equal(t, "out1.png", rec.Artifacts()[0].Filename)

	rec, found, err = c.History(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, rec)

	_, _, err = c.History(ctx, "broken")
	assert.True(t, apperrors.IsMalformed(err), "got %v", err)

	_, _, err = c.History(ctx, "garbage")
	assert.True(t, apperrors.IsMalformed(err), "got %v", err)

	_, _, err = c.History(ctx, "explode")
	assert.True(t, apperrors.IsServiceUnavailable(err), "got %v", err)
}

func TestHistoryCanceledInFlight(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, _, err := c.History(ctx, "xyz")

	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, apperrors.IsServiceUnavailable(err))
	assert.Equal(t, apperrors.ExitCanceled, apperrors.ExitCode(err))
}

func TestHistoryIsCaseSensitive(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"ABC": {"status": {"completed": true}}}`)
	}))

	_, found, err := c.History(context.Background(), "abc")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestViewURL(t *testing.T) {
	c, err := NewClient(Config{BaseURL: "http://127.0.0.1:8188"})
	require.NoError(t, err)

	got := c.ViewURL(Artifact{Filename: "out 1.png", Subfolder: "batch"})
	assert.True(t, strings.HasPrefix(got, "http://127.0.0.1:8188/view?"))
	assert.Contains(t, got, "filename=out+1.png")
	assert.Contains(t, got, "subfolder=batch")
	assert.Contains(t, got, "type=output")
}
