package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/deskmesh/deskmesh/core"
	"github.com/deskmesh/deskmesh/logging"
)

// ClientOptions configures the knowledge HTTP client.
type ClientOptions struct {
	// Timeout bounds each search call.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     logging.Logger
}

// Client implements core.KnowledgeSearcher against a remote knowledge
// service. Any transport failure or non-2xx status surfaces as an error;
// callers are expected to degrade it to zero results.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
}

// NewClient creates a knowledge client for the given base URL
// (e.g. "http://localhost:8005").
func NewClient(baseURL string, optFns ...func(o *ClientOptions)) *Client {
	opts := ClientOptions{Timeout: 10 * time.Second, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient, logger: opts.Logger}
}

// Search implements core.KnowledgeSearcher.
func (c *Client) Search(ctx context.Context, collection, query string, limit int) ([]core.Record, error) {
	body, err := json.Marshal(core.SearchRequest{Query: query, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/search/%s", c.baseURL, url.PathEscape(collection))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("knowledge search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("knowledge search failed: HTTP %d", resp.StatusCode)
	}

	var sr core.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	c.logger.Debug("Knowledge search succeeded", "collection", collection, "hits", sr.Count)
	return sr.Results, nil
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
