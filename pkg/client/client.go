package client

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

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
)

const (
	DefaultRetries    = 2
	DefaultRetryDelay = time.Second
	DefaultCacheTTL   = 60 * time.Second
	DefaultTimeout    = 30 * time.Second

	maxResponseSize = 10 << 20
)

// Client talks to the site API on behalf of one admin session
type Client struct {
	base       *url.URL
	httpClient *http.Client
	tokens     TokenStore
	cache      *lru.LRU[string, []byte]
	retries    int
	retryDelay time.Duration
	sleep      func(context.Context, time.Duration) error
	logger     logrus.FieldLogger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default client with its DefaultTimeout
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenStore sets where the session is kept. The default is in memory.
func WithTokenStore(s TokenStore) Option {
	return func(c *Client) { c.tokens = s }
}

// WithCache enables caching of GET responses, keyed by URL
func WithCache(size int, ttl time.Duration) Option {
	return func(c *Client) {
		if size <= 0 {
			return
		}
		if ttl <= 0 {
			ttl = DefaultCacheTTL
		}
		c.cache = lru.NewLRU[string, []byte](size, nil, ttl)
	}
}

// WithRetries sets how many extra attempts follow a network or server
// failure and the base delay; attempt n waits delay*n.
func WithRetries(retries int, delay time.Duration) Option {
	return func(c *Client) {
		if retries >= 0 {
			c.retries = retries
		}
		if delay >= 0 {
			c.retryDelay = delay
		}
	}
}

// WithLogger sets where request failures are logged
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.logger = l }
}

func withSleeper(fn func(context.Context, time.Duration) error) Option {
	return func(c *Client) { c.sleep = fn }
}

// New creates a client for the API rooted at baseURL, for example
// https://etm-murmansk.ru/api/.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	c := &Client{
		base:       base,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		tokens:     NewMemoryTokenStore(),
		retries:    DefaultRetries,
		retryDelay: DefaultRetryDelay,
		sleep:      sleepContext,
		logger:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Tokens returns the session store in use
func (c *Client) Tokens() TokenStore {
	return c.tokens
}

// ClearCache drops every cached GET response
func (c *Client) ClearCache() {
	if c.cache != nil {
		c.cache.Purge()
	}
}

// request describes one API call. body is sent as is on every attempt.
type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	retries     int
	useCache    bool
	noAuth      bool
}

func jsonRequest(method, path string, payload any) (request, error) {
	req := request{method: method, path: path, retries: -1}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return req, fmt.Errorf("failed to encode request: %w", err)
		}
		req.body = data
		req.contentType = "application/json"
	}
	return req, nil
}

func (c *Client) url(path string, query url.Values) string {
	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do performs req and returns the body of a 2xx response. Failures are
// always *Error values.
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	target := c.url(req.path, req.query)

	if req.useCache && c.cache != nil && req.method == http.MethodGet {
		if body, ok := c.cache.Get(target); ok {
			return body, nil
		}
	}

	retries := req.retries
	if retries < 0 {
		retries = c.retries
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, c.retryDelay*time.Duration(attempt)); err != nil {
				return nil, &Error{Kind: KindNetwork, Err: err}
			}
			c.logger.WithFields(logrus.Fields{
				"method":  req.method,
				"url":     target,
				"attempt": attempt,
			}).Debug("retrying request")
		}

		body, err := c.attempt(ctx, target, req)
		if err == nil {
			if req.method == http.MethodGet {
				if req.useCache && c.cache != nil {
					c.cache.Add(target, body)
				}
			} else {
				c.invalidate(req.path)
			}
			return body, nil
		}

		lastErr = err
		if !retryable(err) || ctx.Err() != nil {
			break
		}
	}

	c.logger.WithError(lastErr).WithFields(logrus.Fields{
		"method": req.method,
		"url":    target,
		"kind":   KindOf(lastErr).String(),
	}).Warn("API request failed")
	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, target string, req request) ([]byte, error) {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, &Error{Kind: KindOther, Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if !req.noAuth {
		if s, err := c.tokens.Load(); err == nil && s.Token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+s.Token)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, errorMessage(data))
	}
	return data, nil
}

// invalidate removes every cached URL that contains the collection of the
// written path
func (c *Client) invalidate(path string) {
	if c.cache == nil {
		return
	}
	collection := strings.Trim(path, "/")
	if i := strings.Index(collection, "/"); i >= 0 {
		collection = collection[:i]
	}
	needle := c.base.JoinPath(collection).Path
	for _, key := range c.cache.Keys() {
		u, err := url.Parse(key)
		if err != nil || strings.Contains(u.Path, needle) {
			c.cache.Remove(key)
		}
	}
}

func errorMessage(body []byte) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return envelope.Error
}

func decode(body []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Kind: KindOther, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var errEmptyID = errors.New("record id is required")
