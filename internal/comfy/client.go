// Package comfy is an HTTP client for a ComfyUI-style asynchronous generation service.
package comfy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/target/promptwait/internal/errors"
)

const (
	defaultProbeTimeout = 5 * time.Second
	maxErrorBody        = 4 << 10
)

// Config describes how to reach the service.
type Config struct {
	BaseURL      string
	ClientID     string
	ProbeTimeout time.Duration
	HTTPClient   *http.Client
	Logger       *slog.Logger
	Stats        StatsFields
}

// Client talks to a single service instance. It holds no per-job state.
type Client struct {
	baseURL      string
	clientID     string
	probeTimeout time.Duration
	httpClient   *http.Client
	logger       *slog.Logger
	stats        StatsFields
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("comfy: base url is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("comfy: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("comfy: base url must be http or https, got %q", base)
	}

	clientID := strings.TrimSpace(cfg.ClientID)
	if clientID == "" {
		clientID = uuid.NewString()
	}

	probeTimeout := cfg.ProbeTimeout
	if probeTimeout <= 0 {
		probeTimeout = defaultProbeTimeout
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default().With("component", "comfy_client")
	}

	stats := cfg.Stats
	if stats == nil {
		stats = DefaultStatsFields()
	}

	return &Client{
		baseURL:      base,
		clientID:     clientID,
		probeTimeout: probeTimeout,
		httpClient:   hc,
		logger:       logger,
		stats:        stats,
	}, nil
}

// BaseURL returns the normalised service address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ClientID returns the id sent with every submission.
func (c *Client) ClientID() string {
	return c.clientID
}

// SystemStats probes the service. Any transport failure or non-2xx answer is
// reported as ServiceUnavailable. Cancellation of ctx is returned as is.
func (c *Client) SystemStats(ctx context.Context) (*SystemStats, error) {
	probeCtx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	resp, err := c.do(probeCtx, http.MethodGet, "/system_stats", "", nil)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperrors.ServiceUnavailable(err, "probe %s", c.baseURL)
	}
	defer closeBody(resp)

	if !isSuccess(resp.StatusCode) {
		return nil, apperrors.ServiceUnavailable(nil, "probe %s: %s", c.baseURL, readErrorBody(resp))
	}

	var doc any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, apperrors.Malformed(err, "decode system_stats")
	}
	if _, ok := doc.(map[string]any); !ok {
		return nil, apperrors.Malformed(nil, "decode system_stats: expected a JSON object")
	}
	return newSystemStats(doc, c.stats), nil
}

type promptEnvelope struct {
	Prompt   JobDescription `json:"prompt"`
	ClientID string         `json:"client_id,omitempty"`
}

type promptResponse struct {
	PromptID   string          `json:"prompt_id"`
	Number     int             `json:"number"`
	Error      json.RawMessage `json:"error,omitempty"`
	NodeErrors json.RawMessage `json:"node_errors,omitempty"`
}

// Submit posts job exactly once and returns its identifier. Every failure is a
// SubmissionError.
func (c *Client) Submit(ctx context.Context, job JobDescription) (PromptID, error) {
	body, err := json.Marshal(promptEnvelope{Prompt: job, ClientID: c.clientID})
	if err != nil {
		return "", apperrors.Submission(err, "encode job description")
	}

	resp, err := c.do(ctx, http.MethodPost, "/prompt", "application/json", bytes.NewReader(body))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", apperrors.Submission(err, "submit job")
	}
	defer closeBody(resp)

	if !isSuccess(resp.StatusCode) {
		return "", apperrors.Submission(nil, "submit job: %s", describeRejection(resp))
	}

	var pr promptResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return "", apperrors.Submission(err, "decode submit response")
	}
	id := strings.TrimSpace(pr.PromptID)
	if id == "" {
		return "", apperrors.Submission(nil, "submit response carries no prompt_id")
	}

	c.logger.DebugContext(ctx, "job submitted", "prompt_id", id, "queue_number", pr.Number)
	return PromptID(id), nil
}

// History fetches the record for id. found is false while the id is absent from
// the service's history. Transport failures are ServiceUnavailable; an unexpected
// document shape is MalformedResponse. A done ctx is returned as its own error.
func (c *Client) History(ctx context.Context, id PromptID) (*JobRecord, bool, error) {
	resp, err := c.do(ctx, http.MethodGet, "/history/"+url.PathEscape(string(id)), "", nil)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		return nil, false, apperrors.ServiceUnavailable(err, "query history for %s", id)
	}
	defer closeBody(resp)

	if !isSuccess(resp.StatusCode) {
		return nil, false, apperrors.ServiceUnavailable(nil, "query history for %s: %s", id, readErrorBody(resp))
	}

	var entries map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, false, apperrors.Malformed(err, "decode history for %s", id)
	}
	raw, ok := entries[string(id)]
	if !ok {
		return nil, false, nil
	}

	var rec JobRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false, apperrors.Malformed(err, "decode history record for %s", id)
	}
	return &rec, true, nil
}

// ViewURL builds the service URL an artifact can be fetched from.
func (c *Client) ViewURL(a Artifact) string {
	typ := a.Type
	if typ == "" {
		typ = "output"
	}
	q := url.Values{}
	q.Set("filename", a.Filename)
	q.Set("subfolder", a.Subfolder)
	q.Set("type", typ)
	return c.baseURL + "/view?" + q.Encode()
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.DebugContext(ctx, "service request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	c.logger.DebugContext(ctx, "service response", "method", method, "path", path, "status", resp.StatusCode)
	return resp, nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

func closeBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}

func readErrorBody(resp *http.Response) string {
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(b))
	if err != nil || msg == "" {
		return resp.Status
	}
	return resp.Status + ": " + msg
}

// describeRejection renders the service's validation error for a rejected prompt.
func describeRejection(resp *http.Response) string {
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(b)) == 0 {
		return resp.Status
	}

	var pr struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
			Details string `json:"details"`
		} `json:"error"`
		NodeErrors map[string]json.RawMessage `json:"node_errors"`
	}
	if json.Unmarshal(b, &pr) != nil || pr.Error.Message == "" {
		return resp.Status + ": " + strings.TrimSpace(string(b))
	}

	msg := resp.Status + ": " + pr.Error.Message
	if pr.Error.Details != "" {
		msg += " (" + pr.Error.Details + ")"
	}
	if n := len(pr.NodeErrors); n > 0 {
		msg += fmt.Sprintf(" [%d node errors]", n)
	}
	return msg
}
