// Package analysis provides the HTTP client for the downstream resume analysis service.
package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/visualflow/visualflow-api/internal/domain/model"
)

// DefaultURL is the analysis endpoint used when none is configured.
const DefaultURL = "http://localhost:8000/analyze"

// maxResponseBytes caps how much of a downstream reply is buffered.
const maxResponseBytes = 8 << 20

// Config describes how to reach the analysis service.
type Config struct {
	URL string
	// Timeout bounds each call. Zero means no client-side timeout.
	Timeout time.Duration
	Client  *http.Client
}

// Client posts JSON documents to the analysis service and returns its reply untouched.
type Client struct {
	url    string
	client *http.Client
}

// NewClient builds an analysis client.
func NewClient(cfg Config) (*Client, error) {
	u := strings.TrimSpace(cfg.URL)
	if u == "" {
		u = DefaultURL
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return nil, fmt.Errorf("analysis url must be http(s): %q", u)
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: max(cfg.Timeout, 0)}
	}

	return &Client{url: u, client: hc}, nil
}

// URL returns the configured endpoint.
func (c *Client) URL() string { return c.url }

// Analyze forwards body and relays the downstream status, content type and body.
// A non-2xx status is not an error; only transport failures are.
func (c *Client) Analyze(ctx context.Context, body []byte) (*model.AnalysisResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create analysis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}

	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	closeErr := resp.Body.Close()
	if readErr != nil {
		return nil, errors.Join(
			fmt.Errorf("read analysis response: %w", readErr),
			closeErr,
		)
	}

	return &model.AnalysisResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        respBody,
	}, nil
}
