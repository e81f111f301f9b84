package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONPosterSetsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "k", r.Header.Get("X-API-Key"))
		_, present := r.Header["X-Empty"]
		assert.False(t, present)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := &JSONPoster{Name: "test", URL: srv.URL, Headers: map[string]string{"X-API-Key": "k", "X-Empty": ""}}
	require.NoError(t, p.Post(context.Background(), []byte(`{}`)))
}

func TestJSONPosterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := &JSONPoster{Name: "test", URL: srv.URL, RetryLimit: 2, Client: srv.Client()}
	require.NoError(t, p.Post(context.Background(), []byte(`{}`)))
	assert.EqualValues(t, 3, calls.Load())
}

func TestJSONPosterStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	p := &JSONPoster{Name: "test", URL: srv.URL, RetryLimit: 5}
	err := p.Post(ctx, []byte(`{}`))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSinkFuncNil(t *testing.T) {
	var f SinkFunc
	assert.NoError(t, f.SendOutcome(context.Background(), OutcomePayload{}))
}
