// Package elastic is a thin JSON/HTTP client for the subset of the
// Elasticsearch API the gateway needs: readiness, index bootstrap and
// search execution.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"querygate/internal/core/domain"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// StatusError is a non-2xx Elasticsearch response.
type StatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("elasticsearch %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("elasticsearch %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Body))
}

// Info pings the cluster root endpoint.
func (c *Client) Info(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("create info request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("elasticsearch info request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return c.statusError("info", resp)
	}
	return nil
}

// WaitReady polls Info until the cluster answers or maxAttempts runs out.
func (c *Client) WaitReady(ctx context.Context, interval time.Duration, maxAttempts int) error {
	var last error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.Info(ctx); err == nil {
			slog.Info("connected_to_elasticsearch", "url", c.baseURL)
			return nil
		} else {
			last = err
		}
		slog.Warn("elasticsearch_not_ready",
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"retry_in_ms", float64(interval.Microseconds())/1000.0,
		)
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("elasticsearch not reachable after %d attempts: %w", maxAttempts, last)
}

func (c *Client) IndexExists(ctx context.Context, index string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.indexURL(index), nil)
	if err != nil {
		return false, fmt.Errorf("create index exists request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("elasticsearch index exists request: %w", err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 300:
		return false, c.statusError("index exists", resp)
	default:
		return true, nil
	}
}

func (c *Client) CreateIndex(ctx context.Context, index string, mapping map[string]any) error {
	resp, err := c.sendJSON(ctx, http.MethodPut, c.indexURL(index), mapping)
	if err != nil {
		return fmt.Errorf("elasticsearch create index request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return c.statusError("create index", resp)
	}
	return nil
}

// IndexDocument stores one document and returns its generated id. routing is
// passed through for parent/child mappings; empty means none.
func (c *Client) IndexDocument(ctx context.Context, index, routing string, doc map[string]any) (string, error) {
	u := c.indexURL(index) + "/_doc"
	if routing != "" {
		u += "?routing=" + url.QueryEscape(routing)
	}
	resp, err := c.sendJSON(ctx, http.MethodPost, u, doc)
	if err != nil {
		return "", fmt.Errorf("elasticsearch index document request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", c.statusError("index document", resp)
	}
	var indexed struct {
		ID string `json:"_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&indexed); err != nil {
		return "", fmt.Errorf("decode index document response: %w", err)
	}
	return indexed.ID, nil
}

func (c *Client) Refresh(ctx context.Context, index string) error {
	resp, err := c.sendJSON(ctx, http.MethodPost, c.indexURL(index)+"/_refresh", nil)
	if err != nil {
		return fmt.Errorf("elasticsearch refresh request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return c.statusError("refresh", resp)
	}
	return nil
}

// Search executes one assembled body and returns the raw response along with
// the parsed hit count and hit list.
func (c *Client) Search(ctx context.Context, index string, body map[string]any) (*domain.SearchResult, error) {
	resp, err := c.sendJSON(ctx, http.MethodPost, c.indexURL(index)+"/_search", body)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, &StatusError{
			Operation:  "search",
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(raw[:min(len(raw), 2048)]),
		}
	}

	var parsed struct {
		Took int `json:"took"`
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []json.RawMessage `json:"hits"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &domain.SearchResult{
		Raw:        raw,
		TookMillis: parsed.Took,
		Total:      parsed.Hits.Total.Value,
		Hits:       parsed.Hits.Hits,
	}, nil
}

func (c *Client) sendJSON(ctx context.Context, method, u string, payload map[string]any) (*http.Response, error) {
	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.httpClient.Do(req)
}

func (c *Client) statusError(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &StatusError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(body),
	}
}

func (c *Client) indexURL(index string) string {
	return c.baseURL + "/" + url.PathEscape(index)
}
