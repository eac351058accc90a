package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const healthPollInterval = 100 * time.Millisecond

// WaitForHealthy polls the game server's /health until it answers 200 OK or ctx
// ends. baseURL is the server root, e.g. "http://localhost:4000". A nil
// httpClient uses one with a one second timeout.
func WaitForHealthy(ctx context.Context, httpClient *http.Client, baseURL string) error {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Second}
	}
	healthURL := strings.TrimRight(baseURL, "/") + "/health"

	ticker := time.NewTicker(healthPollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		if lastErr = checkHealth(ctx, httpClient, healthURL); lastErr == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ctx.Err(), lastErr)
		case <-ticker.C:
		}
	}
}

func checkHealth(ctx context.Context, httpClient *http.Client, healthURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %s", resp.Status)
	}
	return nil
}
