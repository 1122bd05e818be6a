// Package backend is the HTTP client for the lemure data server.
//
// Every endpoint answers JSON with an "ok" flag and an "error" message, except
// the export endpoints which stream a file on success. A response with ok=false
// or a non-2xx status is reported as an error wrapping ErrNotOK.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrNotOK is wrapped by every error the server itself reported.
var ErrNotOK = errors.New("backend error")

// maxBody bounds how much of a response is read into memory.
const maxBody = 256 << 20

const userAgent = "lemure/1.0"

// Client talks to one backend instance. It is safe for concurrent use.
type Client struct {
	base    string
	client  *http.Client
	limiter *rate.Limiter // range stats only, the one endpoint hit while scrolling
}

// Options configures a Client. Zero values select defaults.
type Options struct {
	Timeout       time.Duration
	RangeStatsRPS float64
	HTTPClient    *http.Client
}

// New creates a client for baseURL, e.g. "http://127.0.0.1:8787".
func New(baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.RangeStatsRPS <= 0 {
		opts.RangeStatsRPS = 4
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		base:    strings.TrimRight(baseURL, "/"),
		client:  hc,
		limiter: rate.NewLimiter(rate.Limit(opts.RangeStatsRPS), 1),
	}
}

// BaseURL returns the server address the client was created with.
func (c *Client) BaseURL() string { return c.base }

// envelope is the common part of every JSON response.
type envelope struct {
	OK    *bool  `json:"ok"`
	Error string `json:"error"`
}

// serverError builds the error for a failed response. body may be empty or
// not JSON at all.
func serverError(status int, body []byte) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != "" {
		if status >= 200 && status < 300 {
			return fmt.Errorf("%w: %s", ErrNotOK, env.Error)
		}
		return fmt.Errorf("%w: HTTP %d: %s", ErrNotOK, status, env.Error)
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return fmt.Errorf("%w: HTTP %d: %s", ErrNotOK, status, msg)
}

// newRequest builds a request for path with optional query and JSON body.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// call performs a JSON round trip and decodes the response into out (which
// may be nil).
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: %w", method, path, serverError(resp.StatusCode, data))
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%s %s: parse response: %w", method, path, err)
	}
	if env.OK != nil && !*env.OK {
		return fmt.Errorf("%s %s: %w", method, path, serverError(resp.StatusCode, data))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: parse response: %w", method, path, err)
	}
	return nil
}

func joinCodes(codes []string) string { return strings.Join(codes, ",") }
