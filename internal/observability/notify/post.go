package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// JSONPoster posts JSON documents to a fixed URL with linear-backoff retries.
type JSONPoster struct {
	Name       string
	URL        string
	Headers    map[string]string
	RetryLimit int
	Client     *http.Client
}

// Post delivers body, retrying up to RetryLimit extra times.
func (p *JSONPoster) Post(ctx context.Context, body []byte) error {
	attempts := max(p.RetryLimit, 0) + 1
	var lastErr error
	for attempt := range attempts {
		err := p.post(ctx, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt < attempts-1 {
			delay := time.Duration(attempt+1) * 200 * time.Millisecond
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				if !timer.Stop() {
					<-timer.C
				}
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return lastErr
}

func (p *JSONPoster) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", p.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range p.Headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", p.Name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return p.errorResponse(resp)
	}
	return drain(resp)
}

func drain(resp *http.Response) error {
	_, copyErr := io.Copy(io.Discard, resp.Body)
	closeErr := resp.Body.Close()
	switch {
	case copyErr != nil && closeErr != nil:
		return errors.Join(
			fmt.Errorf("drain response body: %w", copyErr),
			fmt.Errorf("close response body: %w", closeErr),
		)
	case copyErr != nil:
		return fmt.Errorf("drain response body: %w", copyErr)
	case closeErr != nil:
		return fmt.Errorf("close response body: %w", closeErr)
	}
	return nil
}

func (p *JSONPoster) errorResponse(resp *http.Response) error {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	closeErr := resp.Body.Close()
	if readErr != nil {
		return errors.Join(fmt.Errorf("read %s error response: %w", p.Name, readErr), closeErr)
	}
	return fmt.Errorf("%s %s: %s", p.Name, resp.Status, strings.TrimSpace(string(respBody)))
}
