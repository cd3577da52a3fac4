package specialist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/deskmesh/deskmesh/core"
)

// ClientOptions configures the specialist HTTP client.
type ClientOptions struct {
	// Timeout bounds each process call.
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client implements core.Specialist against a remote specialist service.
// Transport failures and non-2xx statuses surface as errors; the
// supervisor's dispatcher converts them into unavailable results.
type Client struct {
	name       string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a specialist client. name is the routing key the
// supervisor knows this specialist by.
func NewClient(name, baseURL string, optFns ...func(o *ClientOptions)) *Client {
	opts := ClientOptions{Timeout: 30 * time.Second}
	for _, fn := range optFns {
		fn(&opts)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{name: name, baseURL: baseURL, httpClient: httpClient}
}

// Name returns the routing key.
func (c *Client) Name() string { return c.name }

// Process implements core.Specialist over HTTP.
func (c *Client) Process(ctx context.Context, query string) (core.SpecialistResult, error) {
	body, err := json.Marshal(core.ProcessRequest{Query: query})
	if err != nil {
		return core.SpecialistResult{}, fmt.Errorf("encode process request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process", bytes.NewReader(body))
	if err != nil {
		return core.SpecialistResult{}, fmt.Errorf("build process request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.SpecialistResult{}, fmt.Errorf("consult %s: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return core.SpecialistResult{}, fmt.Errorf("consult %s: HTTP %d", c.name, resp.StatusCode)
	}

	var result core.SpecialistResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return core.SpecialistResult{}, fmt.Errorf("decode process response: %w", err)
	}
	return result, nil
}

// Health checks the remote service's liveness probe.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: HTTP %d", resp.StatusCode)
	}
	return nil
}
