package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"RepoScout/internal/ports"
)

// Client talks to an external inference service for sentence embeddings and
// cross-encoder pair scoring.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.Embedder = (*Client)(nil)
var _ ports.CrossEncoder = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Embed sends texts for sentence embedding.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	payload := map[string]any{"texts": texts}
	var resp struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := c.post(ctx, "/embed", payload, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d, got %d", len(texts), len(resp.Embeddings))
	}
	return resp.Embeddings, nil
}

// ScorePairs scores each (query, passage) pair jointly and returns the
// parallel list of raw relevance scores.
func (c *Client) ScorePairs(ctx context.Context, query string, passages []string) ([]float64, error) {
	if len(passages) == 0 {
		return nil, nil
	}

	payload := map[string]any{
		"query":    query,
		"passages": passages,
	}
	var resp struct {
		Scores []float64 `json:"scores"`
	}
	if err := c.post(ctx, "/score", payload, &resp); err != nil {
		return nil, err
	}
	if len(resp.Scores) != len(passages) {
		return nil, fmt.Errorf("score count mismatch: sent %d, got %d", len(passages), len(resp.Scores))
	}
	return resp.Scores, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
