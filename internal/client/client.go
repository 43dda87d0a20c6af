// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package client calls the paper query service.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"github.com/pdiddy/paper-search/pkg/types"
)

// DefaultEndpoint is the query service URL used when none is configured.
const DefaultEndpoint = "http://localhost:8000/query/"

const defaultTimeout = 30 * time.Second

// ErrRequestFailed wraps every failure of a query: transport errors,
// non-2xx statuses and undecodable bodies.
var ErrRequestFailed = errors.New("query request failed")

// Client sends queries to the service at Endpoint.
type Client struct {
	HTTP      *http.Client
	Endpoint  string
	UserAgent string
}

// New returns a Client configured from cfg.
func New(cfg types.ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		Endpoint:  endpoint,
		UserAgent: cfg.UserAgent,
	}
}

// Query sends one POST with the prompt and result limit and returns the
// decoded results. A response without a results field yields an empty
// slice. The call is made exactly once.
func (c *Client) Query(ctx context.Context, prompt string, topK int) ([]types.ResultItem, error) {
	body, err := sonic.ConfigStd.Marshal(types.QueryRequest{Prompt: prompt, TopK: topK})
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request: %v", ErrRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: API error: %d", ErrRequestFailed, resp.StatusCode)
	}

	var qr types.QueryResponse
	if err := sonic.ConfigStd.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return nil, fmt.Errorf("%w: parsing response: %v", ErrRequestFailed, err)
	}
	if qr.Results == nil {
		return []types.ResultItem{}, nil
	}
	return qr.Results, nil
}
