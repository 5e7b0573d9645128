// Package ledger implements service.Ledger against the Aptos fullnode REST API.
package ledger

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

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"aptodo/internal/config"
	"aptodo/internal/service"
)

const (
	// APITimeout is the timeout for a single API call.
	APITimeout = 5 * time.Second
)

// Client implements service.Ledger using the fullnode REST API.
type Client struct {
	baseURL   string
	faucetURL string
	hc        *http.Client
	log       *zap.Logger

	pollInterval   time.Duration
	confirmTimeout time.Duration
	limiter        *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger for request tracing.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithFaucetURL sets the faucet used by Fund.
func WithFaucetURL(u string) Option {
	return func(c *Client) {
		c.faucetURL = strings.TrimRight(u, "/")
	}
}

// WithPollInterval sets how often WaitForTransaction polls.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithRateLimit caps requests to rps per second with the given burst.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithConfirmTimeout bounds WaitForTransaction.
func WithConfirmTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.confirmTimeout = d
		}
	}
}

// New creates a client for the node configured in cfg.
// If an API key is configured it is sent as a bearer token.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	s := cfg.Settings
	if _, err := url.Parse(s.NodeURL); err != nil {
		return nil, fmt.Errorf("invalid node_url: %w", err)
	}

	hc := &http.Client{}
	if s.APIKey != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: s.APIKey, TokenType: "Bearer"})
		hc = oauth2.NewClient(ctx, ts)
	}

	return NewWithHTTPClient(s.NodeURL, hc,
		WithLogger(cfg.Logger()),
		WithFaucetURL(s.FaucetURL),
		WithPollInterval(s.PollInterval.Std()),
		WithConfirmTimeout(s.ConfirmTimeout.Std()),
		WithRateLimit(s.RequestsPerSecond, s.RequestBurst),
	), nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, hc *http.Client, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		hc:             hc,
		log:            zap.NewNop(),
		pollInterval:   config.DefaultPollInterval,
		confirmTimeout: config.DefaultConfirmTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs a JSON request against the node.
// in is marshalled as the request body when non-nil; out receives the decoded
// response when non-nil.
func (c *Client) do(ctx context.Context, method, rawURL string, in, out any) error {
	parent := ctx
	if c.limiter != nil {
		if err := c.limiter.Wait(parent); err != nil {
			return err
		}
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		if parent.Err() != nil {
			return parent.Err()
		}
		return wrapError(method, rawURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	c.log.Debug("ledger request",
		zap.String("method", method),
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", rawURL, err)
	}
	return nil
}

func (c *Client) nodeURL(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.baseURL + "/" + strings.Join(escaped, "/")
}

// wrapError wraps transport errors with user-friendly messages.
func wrapError(method, rawURL string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s %s", ErrTimeout, method, rawURL)
	}
	return fmt.Errorf("%s %s: %w", method, rawURL, err)
}

var _ service.Ledger = (*Client)(nil)
