package firebase

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
	"sync"
	"time"

	"github.com/five82/catch/internal/remote"
)

const (
	defaultUserAgent = "catch/0.1"
	requestTimeout   = 10 * time.Second
	defaultRetryBase = time.Second
)

// Options configure a Client.
type Options struct {
	// Auth is sent as the auth query parameter (database secret or ID token).
	Auth string
	// HTTPClient overrides the client used for REST calls. Streams always use
	// a client without an overall timeout.
	HTTPClient *http.Client
	Logger     *slog.Logger
	// RetryBase is the first reconnect delay after a dropped stream.
	RetryBase time.Duration
}

// Client talks to a Firebase Realtime Database over its REST API.
type Client struct {
	baseURL   *url.URL
	auth      string
	http      *http.Client
	stream    *http.Client
	userAgent string
	logger    *slog.Logger
	retryBase time.Duration

	mu      sync.Mutex
	streams map[string]*stream
	closed  bool
}

// Ensure Client implements remote.Store at compile time.
var _ remote.Store = (*Client)(nil)

// NewClient builds a Client for a database URL such as
// https://catch-of-the-day-1234.firebaseio.com.
func NewClient(databaseURL string, opts Options) (*Client, error) {
	base, err := parseBaseURL(databaseURL)
	if err != nil {
		return nil, err
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	streamClient := &http.Client{Transport: httpClient.Transport}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	retryBase := opts.RetryBase
	if retryBase <= 0 {
		retryBase = defaultRetryBase
	}
	return &Client{
		baseURL:   base,
		auth:      strings.TrimSpace(opts.Auth),
		http:      httpClient,
		stream:    streamClient,
		userAgent: defaultUserAgent,
		logger:    logger.With("component", "remote.firebase", "database", base.Host),
		retryBase: retryBase,
		streams:   make(map[string]*stream),
	}, nil
}

// Push replaces the value at path (PUT). A nil value deletes the path.
func (c *Client) Push(ctx context.Context, path string, value any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if c.isClosed() {
		return remote.ErrClosed
	}
	node, err := remote.Normalize(value)
	if err != nil {
		return err
	}
	body, err := json.Marshal(node)
	if err != nil {
		return fmt.Errorf("encode value: %w", err)
	}
	return c.do(ctx, http.MethodPut, path, body, nil)
}

// Fetch reads the value at path (GET).
func (c *Client) Fetch(ctx context.Context, path string) (json.RawMessage, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if c.isClosed() {
		return nil, remote.ErrClosed
	}
	var payload json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	return payload, nil
}

// Close stops every stream.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	streams := make([]*stream, 0, len(c.streams))
	for _, s := range c.streams {
		streams = append(streams, s)
	}
	c.streams = make(map[string]*stream)
	c.mu.Unlock()

	for _, s := range streams {
		s.stop()
	}
	return nil
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// endpoint returns <base>/<path>.json with the auth parameter applied.
func (c *Client) endpoint(path string) *url.URL {
	segs := remote.SplitPath(path)
	escaped := make([]string, len(segs))
	for i, seg := range segs {
		escaped[i] = url.PathEscape(seg)
	}
	u := *c.baseURL
	u.Path = strings.TrimSuffix(c.baseURL.Path, "/") + "/" + strings.Join(segs, "/") + ".json"
	u.RawPath = strings.TrimSuffix(c.baseURL.EscapedPath(), "/") + "/" + strings.Join(escaped, "/") + ".json"
	if c.auth != "" {
		q := u.Query()
		q.Set("auth", c.auth)
		u.RawQuery = q.Encode()
	}
	return &u
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, dest any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path).String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := statusError(method, path, resp); err != nil {
		return err
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError maps HTTP failures, reading the {"error": "..."} body when present.
func statusError(method, path string, resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}
	var payload struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(data, &payload)
	detail := strings.TrimSpace(payload.Error)
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %s %s: %s", remote.ErrPermission, method, remote.CleanPath(path), detail)
	}
	return fmt.Errorf("api %s %s returned status %d: %s", method, remote.CleanPath(path), resp.StatusCode, detail)
}

func parseBaseURL(databaseURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(databaseURL)
	if trimmed == "" {
		return nil, fmt.Errorf("database url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse database url %q: %w", databaseURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("database url %q has no host", databaseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
