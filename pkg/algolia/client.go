package algolia

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Default timeouts applied per attempt.
const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultRequestTimeout = 30 * time.Second
)

const userAgent = "algolia-codegen (Go)"

// Client is an Algolia Search API client.
type Client struct {
	appID          string
	apiKey         string
	hosts          []Host
	httpClient     *http.Client
	connectTimeout time.Duration
	requestTimeout time.Duration
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHosts replaces the default Algolia hosts. An empty list keeps the defaults.
func WithHosts(hosts []Host) Option {
	return func(c *Client) {
		if len(hosts) > 0 {
			c.hosts = append([]Host(nil), hosts...)
		}
	}
}

// WithHTTPClient sets a custom HTTP client. The connect timeout is then the
// client's own concern.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeouts sets the connect and per-attempt request timeouts. Zero
// values keep the defaults.
func WithTimeouts(connect, request time.Duration) Option {
	return func(c *Client) {
		if connect > 0 {
			c.connectTimeout = connect
		}
		if request > 0 {
			c.requestTimeout = request
		}
	}
}

// New creates a client for appID authenticated with apiKey.
func New(appID, apiKey string, opts ...Option) (*Client, error) {
	if appID == "" || apiKey == "" {
		return nil, ErrMissingCredentials
	}
	c := &Client{
		appID:          appID,
		apiKey:         apiKey,
		hosts:          DefaultHosts(appID),
		connectTimeout: DefaultConnectTimeout,
		requestTimeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Transport: newTransport(c.connectTimeout)}
	}
	return c, nil
}

func newTransport(connectTimeout time.Duration) *http.Transport {
	dialer := &net.Dialer{Timeout: connectTimeout, KeepAlive: 30 * time.Second}
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: connectTimeout,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
}

// AppID returns the application ID the client was created for.
func (c *Client) AppID() string { return c.appID }

// Hosts returns the configured hosts in failover order.
func (c *Client) Hosts() []Host {
	return append([]Host(nil), c.hosts...)
}

func (c *Client) readHosts() []Host {
	var out []Host
	for _, h := range c.hosts {
		if h.CanRead() {
			out = append(out, h)
		}
	}
	return out
}

// read sends a request to each read host in turn until one answers with a
// non-retryable status, and returns the response body.
func (c *Client) read(ctx context.Context, method, path string, payload any) ([]byte, error) {
	hosts := c.readHosts()
	if len(hosts) == 0 {
		return nil, ErrNoReadHosts
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	var errs []error
	for _, host := range hosts {
		data, err := c.attempt(ctx, host, method, path, body)
		if err == nil {
			return data, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Retryable() {
			return nil, apiErr
		}
		errs = append(errs, err)
	}
	return nil, fmt.Errorf("%w: %w", ErrUnreachable, errors.Join(errs...))
}

func (c *Client) attempt(ctx context.Context, host Host, method, path string, body []byte) ([]byte, error) {
	start := time.Now()
	base := host.BaseURL()

	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, base+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Algolia-Application-Id", c.appID)
	req.Header.Set("X-Algolia-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Debug("HTTP request failed",
			slog.String("method", method),
			slog.String("host", base),
			slog.String("path", path),
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil, fmt.Errorf("executing request against %s: %w", base, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", base, err)
	}

	if resp.StatusCode >= 400 {
		slog.Debug("HTTP request returned error",
			slog.String("method", method),
			slog.String("host", base),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil, parseError(resp.StatusCode, data)
	}

	slog.Debug("HTTP request completed",
		slog.String("method", method),
		slog.String("host", base),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return data, nil
}

// parseError extracts an APIError from an error response.
func parseError(status int, body []byte) error {
	var errResp errorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Message != "" {
		return &APIError{StatusCode: status, Message: errResp.Message}
	}
	return &APIError{StatusCode: status, Message: string(body)}
}
