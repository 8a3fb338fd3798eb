package taskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client dispatches tasks over HTTP.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new HTTP dispatcher for baseURL.
func NewClient(baseURL, apiKey string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("task API base URL is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Dispatch submits req to POST {baseURL}/tasks. Any non-2xx answer is an error.
func (c *Client) Dispatch(ctx context.Context, req DispatchRequest) error {
	if req.RequestID == "" {
		return fmt.Errorf("request ID is required")
	}
	if req.MaxIterations <= 0 {
		req.MaxIterations = DefaultMaxIterations
	}

	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch request: %w", err)
	}

	url := fmt.Sprintf("%s/tasks", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", req.RequestID)
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to call task API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("task API error %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out DispatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err == nil && out.Message != "" && !out.Accepted {
		return fmt.Errorf("task API rejected dispatch: %s", out.Message)
	}
	return nil
}
