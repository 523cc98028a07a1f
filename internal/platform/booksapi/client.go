package booksapi

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

	"booktracker/internal/book"

	"golang.org/x/time/rate"
)

const maxErrorBody = 64 << 10

const (
	// DefaultTimeout bounds each request made by the default client.
	DefaultTimeout = 15 * time.Second
	// DefaultBackoff is the wait before the first retry of a read.
	DefaultBackoff = time.Second
)

type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	baseURL    string
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces the default client. The caller's client is used
// as is; WithTimeout does not touch it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRateLimit caps outbound requests per second. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetries sets how often reads are retried and the initial backoff,
// which doubles on each attempt.
func WithRetries(maxRetries int, backoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.backoff = backoff
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient talks to the books collection rooted at baseURL, e.g.
// "http://localhost:8080/api".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		timeout:    DefaultTimeout,
		userAgent:  "booktracker",
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(rate.Inf, 0),
		maxRetries: 2,
		backoff:    DefaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

// BaseURL returns the collection root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List fetches the whole collection. Entries the server sent as null come
// back as nil pointers.
func (c *Client) List(ctx context.Context) ([]*book.Record, error) {
	var res []*book.Record
	if err := c.get(ctx, c.booksURL(""), &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) Create(ctx context.Context, p book.Payload) (book.Record, error) {
	var res book.Record
	if err := c.send(ctx, http.MethodPost, c.booksURL(""), p, &res); err != nil {
		return book.Record{}, err
	}
	return res, nil
}

// Replace sends a full-replace PUT for id.
func (c *Client) Replace(ctx context.Context, id string, p book.Payload) (book.Record, error) {
	var res book.Record
	if err := c.send(ctx, http.MethodPut, c.booksURL(id), p, &res); err != nil {
		return book.Record{}, err
	}
	return res, nil
}

// Delete removes id. Any 2xx, including 204, is success.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, c.booksURL(id), nil, nil)
}

func (c *Client) booksURL(id string) string {
	if id == "" {
		return c.baseURL + "/books"
	}
	return c.baseURL + "/books/" + url.PathEscape(id)
}

func (c *Client) get(ctx context.Context, url string, target interface{}) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// Backoff doubles: b, 2b, 4b...
			backoff := c.backoff * time.Duration(1<<uint(i-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := c.do(ctx, http.MethodGet, url, nil, target)
		if err == nil {
			return nil
		}
		if !retryable(ctx, err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

// send issues a mutating request once. Writes are not retried since the
// server may already have applied them.
func (c *Client) send(ctx context.Context, method, url string, body, target interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", method, err)
		}
	}
	return c.do(ctx, method, url, payload, target)
}

func (c *Client) do(ctx context.Context, method, url string, payload []byte, target interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(resp)
	}

	if target == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, url, err)
	}
	return nil
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var te *TransportError
	if errors.As(err, &te) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
	}
	return false
}
