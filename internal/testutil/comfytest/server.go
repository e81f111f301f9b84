// Package comfytest runs an in-process stand-in for the ComfyUI HTTP API.
package comfytest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/target/promptwait/internal/comfy"
)

// Options scripts the fake service.
type Options struct {
	// PromptID is returned from /prompt. Defaults to "xyz".
	PromptID string
	// History is served for successive /history polls; the last entry repeats.
	// A nil entry means the id is not yet present.
	History []*comfy.JobRecord
	// StatsStatus overrides the /system_stats status code when non-zero.
	StatsStatus int
	// RejectPrompt makes /prompt answer 400 with a node_errors body.
	RejectPrompt bool
	// HistoryDelay holds every /history answer back until it elapses or the client goes away.
	HistoryDelay time.Duration
}

// Server is a scripted fake of the service.
type Server struct {
	*httptest.Server

	opts Options

	mu       sync.Mutex
	submits  []map[string]any
	polls    int
	uploads  []string
	requests []string
}

// NewServer starts a fake service that is closed when the test ends.
func NewServer(t testing.TB, opts Options) *Server {
	t.Helper()
	if opts.PromptID == "" {
		opts.PromptID = "xyz"
	}
	s := &Server{opts: opts}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /system_stats", s.handleStats)
	mux.HandleFunc("POST /prompt", s.handlePrompt)
	mux.HandleFunc("GET /history/{id}", s.handleHistory)
	mux.HandleFunc("POST /upload/image", s.handleUpload)
	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

// Submits returns every envelope posted to /prompt.
func (s *Server) Submits() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.submits...)
}

// Polls returns how many history queries were served.
func (s *Server) Polls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls
}

// Uploads returns uploaded file names in order.
func (s *Server) Uploads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.uploads...)
}

// Requests returns "METHOD /path" for each request received.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	if s.opts.StatsStatus != 0 && s.opts.StatsStatus != http.StatusOK {
		http.Error(w, "unavailable", s.opts.StatsStatus)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"system": map[string]any{"comfyui_version": "0.3.40", "python_version": "3.11.9"},
		"devices": []any{map[string]any{
			"name":       "cuda:0 NVIDIA GeForce RTX 4090",
			"vram_total": 25757220864,
			"vram_free":  12878610432,
		}},
	})
}

func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	var env map[string]any
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.submits = append(s.submits, env)
	s.mu.Unlock()

	if s.opts.RejectPrompt {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":       map[string]any{"type": "prompt_outputs_failed_validation", "message": "Prompt outputs failed validation"},
			"node_errors": map[string]any{"9": map[string]any{}},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"prompt_id": s.opts.PromptID, "number": 1})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	idx := s.polls
	s.polls++
	s.mu.Unlock()

	if s.opts.HistoryDelay > 0 {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(s.opts.HistoryDelay):
		}
	}

	id := r.PathValue("id")
	if id != s.opts.PromptID || len(s.opts.History) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	rec := s.opts.History[min(idx, len(s.opts.History)-1)]
	if rec == nil {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{id: rec})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()
	_, _ = io.Copy(io.Discard, file)

	s.mu.Lock()
	s.uploads = append(s.uploads, header.Filename)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"name":      header.Filename,
		"subfolder": strings.TrimSpace(r.FormValue("subfolder")),
		"type":      "input",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
