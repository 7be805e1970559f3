package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kalambet/shopwatch/internal/config"
	"github.com/kalambet/shopwatch/internal/storage"
)

// apiClient talks to the admin API of a locally running server.
type apiClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func newAPIClient(cfg config.Config) *apiClient {
	return &apiClient{
		baseURL:    fmt.Sprintf("http://127.0.0.1:%d/admin", cfg.Server.Port),
		token:      cfg.Server.AdminToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// loadAPIClient builds a client from the stored config. The admin API is only
// mounted when a token is configured, so an empty token means there is nothing
// to talk to.
var loadAPIClient = func() (*apiClient, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.Server.AdminToken == "" {
		return nil, fmt.Errorf("admin API is disabled: set server.admin_token (or SHOPWATCH_ADMIN_TOKEN) and restart the server")
	}
	return newAPIClient(cfg), nil
}

func (c *apiClient) do(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("server not reachable, is shopwatch running? (%w)", err)
	}
	return resp, nil
}

func (c *apiClient) get(ctx context.Context, path string) (*http.Response, error) {
	return c.do(ctx, "GET", path)
}

func (c *apiClient) delete(ctx context.Context, path string) (*http.Response, error) {
	return c.do(ctx, "DELETE", path)
}

func (c *apiClient) listTrackers(ctx context.Context, userID string) ([]storage.Tracker, error) {
	path := "/trackers"
	if userID != "" {
		path += "?user_id=" + url.QueryEscape(userID)
	}
	resp, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	var trackers []storage.Tracker
	if err := decodeJSON(resp, &trackers); err != nil {
		return nil, err
	}
	return trackers, nil
}

func decodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("server returned %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
