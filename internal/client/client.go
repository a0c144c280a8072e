// Package client issues requests against the marketplace backend and
// collapses every failure into a RequestError.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	maxErrorBody = 64 << 10
	maxBody      = 16 << 20
)

// Observer is notified after every round trip.
type Observer func(kind string, err error, elapsed time.Duration)

// Client performs single-round-trip requests. It never retries and sets no
// timeout of its own; callers bound a request through its context.
type Client struct {
	baseURL    string
	httpClient *http.Client
	observer   Observer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithObserver installs a callback run after each request.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// JSONHeaders returns the Accept and Content-Type headers every request carries.
func JSONHeaders() http.Header {
	h := make(http.Header)
	h.Set("Accept", "application/json")
	h.Set("Content-Type", "application/json")
	return h
}

// WithBearer adds an Authorization header for token. An empty token leaves h unchanged.
func WithBearer(h http.Header, token string) http.Header {
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// Blob is a binary response body.
type Blob struct {
	Data []byte
	MIME string
}

// FetchJSON issues one request and decodes the success body as T. The
// shape is trusted; there is no validation beyond decoding.
func FetchJSON[T any](ctx context.Context, c *Client, method, path string, header http.Header, body any) (T, error) {
	var out T
	start := time.Now()

	data, _, err := c.do(ctx, method, path, header, body)
	if err == nil {
		if jerr := json.Unmarshal(data, &out); jerr != nil {
			err = decodeError(method, path, jerr)
		}
	}
	c.observe("json", method, path, err, start)
	return out, err
}

// FetchBinary issues one request and returns the raw response bytes.
func (c *Client) FetchBinary(ctx context.Context, method, path string, header http.Header) (*Blob, error) {
	start := time.Now()

	data, mime, err := c.do(ctx, method, path, header, nil)
	c.observe("binary", method, path, err, start)
	if err != nil {
		return nil, err
	}
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	return &Blob{Data: data, MIME: mime}, nil
}

func (c *Client) do(ctx context.Context, method, path string, header http.Header, body any) ([]byte, string, error) {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, "", &RequestError{
				Kind:    KindDecode,
				Method:  method,
				Path:    path,
				Message: fmt.Sprintf("%s %s: invalid request body", method, path),
				Err:     err,
			}
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, "", transportError(method, path, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", transportError(method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, "", statusError(method, path, resp.StatusCode, data)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return nil, "", decodeError(method, path, fmt.Errorf("reading body: %w", err))
	}
	if len(data) > maxBody {
		return nil, "", decodeError(method, path, fmt.Errorf("body exceeds %d bytes", maxBody))
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (c *Client) observe(kind, method, path string, err error, start time.Time) {
	elapsed := time.Since(start)
	if err != nil {
		slog.Warn("backend request failed", "method", method, "path", path, "error", err, "duration", elapsed.Round(time.Millisecond))
	}
	if c.observer != nil {
		c.observer(kind, err, elapsed)
	}
}
