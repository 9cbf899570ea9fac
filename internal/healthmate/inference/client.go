// Package inference calls the external symptom diagnosis service.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single diagnosis call.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of an upstream body is read.
const maxResponseBytes = 1 << 20

var (
	ErrUnavailable = errors.New("inference: service not configured")
	ErrUpstream    = errors.New("inference: upstream error")
	ErrEmpty       = errors.New("inference: empty diagnosis")
)

type diagnoseRequest struct {
	Symptoms string `json:"symptoms"`
}

type diagnoseResponse struct {
	Diagnosis string `json:"diagnosis"`
}

// Client posts symptoms as JSON to URL and reads back a diagnosis.
type Client struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a client with the given per-call timeout.
func NewClient(url, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		URL:        strings.TrimSpace(url),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Diagnose(ctx context.Context, symptoms string) (string, error) {
	if c.URL == "" {
		return "", ErrUnavailable
	}

	body, err := json.Marshal(diagnoseRequest{Symptoms: symptoms})
	if err != nil {
		return "", fmt.Errorf("inference: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("inference: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("inference: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("inference: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: HTTP %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out diagnoseResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}

	diagnosis := strings.TrimSpace(out.Diagnosis)
	if diagnosis == "" {
		return "", ErrEmpty
	}
	return diagnosis, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
