// Package nlp is the boundary to the external constituency parse
// service. Parsing text into bracketed trees happens there; everything
// downstream works on the returned trees.
package nlp

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

// Parser turns plain text into bracketed constituency trees, one tree
// per sentence.
type Parser interface {
	ParseTrees(ctx context.Context, text string) (string, error)
}

// Client calls a constituency parse service over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	stats      *ParseStats
}

func NewClient(baseURL, apiKey string, stats *ParseStats) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		stats: stats,
	}
}

type parseRequest struct {
	Text string `json:"text"`
}

type parseResponse struct {
	Trees string `json:"trees"`
	Error string `json:"error,omitempty"`
}

// ParseTrees sends text to the parse service and returns the bracketed
// trees, one per line. Rate limits and server errors come back as
// RetryableError.
func (c *Client) ParseTrees(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(parseRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/parse", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.recordFailure()
		return "", fmt.Errorf("parse service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		c.recordFailure()
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		c.recordFailure()
		return "", &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		c.recordFailure()
		return "", fmt.Errorf("parse service status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var apiResp parseResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		c.recordFailure()
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != "" {
		c.recordFailure()
		return "", fmt.Errorf("parse service error: %s", apiResp.Error)
	}
	if apiResp.Trees == "" {
		c.recordFailure()
		return "", fmt.Errorf("empty response from parse service")
	}

	if c.stats != nil {
		c.stats.Record(time.Since(start), countTrees(apiResp.Trees))
	}
	return apiResp.Trees, nil
}

func (c *Client) recordFailure() {
	if c.stats != nil {
		c.stats.RecordFailure()
	}
}

// countTrees counts the non-blank lines of a parse response, one tree
// per line.
func countTrees(trees string) int {
	n := 0
	for _, line := range strings.Split(trees, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// RetryableError indicates a transient parse-service failure.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}
