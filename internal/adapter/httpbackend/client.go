// Package httpbackend implements domain.Backend over plain HTTP GET and PUT
// of a single text resource.
package httpbackend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/neomorfeo/keyledger/internal/domain"
)

// Compile-time check: Client implements domain.Backend.
var _ domain.Backend = (*Client)(nil)

// Client reads and writes one remote text resource.
type Client struct {
	url  string
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the resource at url. No timeout is set; callers
// bound requests through the context.
func New(url string, opts ...Option) *Client {
	c := &Client{url: url, http: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches the resource. A 404 is an empty backend; any status other
// than 200 or 404 is a *domain.StatusError.
func (c *Client) Load(ctx context.Context) (domain.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("creating GET request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("GET %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return domain.Snapshot{}, nil
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return domain.Snapshot{}, &domain.StatusError{Method: http.MethodGet, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("reading response body: %w", err)
	}

	return domain.Snapshot{
		Content: string(body),
		Version: resp.Header.Get("ETag"),
	}, nil
}

// Save replaces the resource with content. When ifVersion is set the request
// carries If-Match and a 412 answer maps to domain.ErrVersionConflict.
// Only 200 and 201 count as success.
func (c *Client) Save(ctx context.Context, content, ifVersion string) (domain.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.url, strings.NewReader(content))
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("creating PUT request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")
	if ifVersion != "" {
		req.Header.Set("If-Match", ifVersion)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("PUT %s: %w", c.url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return domain.Snapshot{Content: content, Version: resp.Header.Get("ETag")}, nil
	case http.StatusPreconditionFailed:
		return domain.Snapshot{}, domain.ErrVersionConflict
	default:
		return domain.Snapshot{}, &domain.StatusError{Method: http.MethodPut, Status: resp.StatusCode}
	}
}
