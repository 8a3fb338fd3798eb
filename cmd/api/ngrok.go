package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ngrokTunnelsResponse matches the /api/tunnels response from the ngrok local API.
type ngrokTunnelsResponse struct {
	Tunnels []ngrokTunnel `json:"tunnels"`
}

type ngrokTunnel struct {
	PublicURL string `json:"public_url"`
	Proto     string `json:"proto"`
}

// ngrokProbe polls the ngrok local API until a tunnel shows up.
type ngrokProbe struct {
	apiBase  string
	attempts int
	interval time.Duration
	client   *http.Client
}

func newNgrokProbe(apiBase string) ngrokProbe {
	return ngrokProbe{
		apiBase:  apiBase,
		attempts: 10,
		interval: 3 * time.Second,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// publicURL returns the first HTTPS tunnel URL, or any tunnel if none is HTTPS. It is used
// as the base for both the Telegram webhook and the task callback when neither is configured.
func (p ngrokProbe) publicURL(ctx context.Context) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		url, err := p.fetch(ctx)
		if err == nil && url != "" {
			return url, nil
		}
		lastErr = err

		if attempt == p.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(p.interval):
		}
	}

	if lastErr != nil {
		return "", fmt.Errorf("ngrok API not usable after %d attempts: %w", p.attempts, lastErr)
	}
	return "", fmt.Errorf("ngrok has no active tunnels after %d attempts", p.attempts)
}

func (p ngrokProbe) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBase+"/api/tunnels", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create ngrok API request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var tunnels ngrokTunnelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tunnels); err != nil {
		return "", fmt.Errorf("failed to decode ngrok API response: %w", err)
	}

	for _, t := range tunnels.Tunnels {
		if t.Proto == "https" {
			return t.PublicURL, nil
		}
	}
	if len(tunnels.Tunnels) > 0 {
		return tunnels.Tunnels[0].PublicURL, nil
	}
	return "", nil
}
