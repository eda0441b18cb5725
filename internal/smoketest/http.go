package smoketest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// maxErrorBody bounds how much of a failed response is echoed into an error.
const maxErrorBody = 512

// HTTPClient wraps http.Client with request accounting.
type HTTPClient struct {
	client   *http.Client
	base     string
	requests *atomic.Int64
	failed   *atomic.Int64
}

func newHTTPClient(base string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:   &http.Client{Timeout: timeout},
		base:     strings.TrimRight(base, "/"),
		requests: new(atomic.Int64),
		failed:   new(atomic.Int64),
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		r = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, r)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.requests.Add(1)
	resp, err := c.client.Do(req)
	if err != nil {
		c.failed.Add(1)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.failed.Add(1)
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %s %s: %d %s", ErrStatus, method, path, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.failed.Add(1)
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Get performs a GET and decodes the JSON response into out when out is non-nil.
func (c *HTTPClient) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Delete performs a DELETE.
func (c *HTTPClient) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func viewPath(metric string, year int, selected string) string {
	q := url.Values{}
	q.Set("metric", metric)
	q.Set("year", strconv.Itoa(year))
	if selected != "" {
		q.Set("selected", selected)
	}
	return "/api/view?" + q.Encode()
}
