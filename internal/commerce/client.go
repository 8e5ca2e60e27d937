// Package commerce forwards settled orders to the WooCommerce REST API.
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/jcmexdev/sleepwell-storefront/internal/pkg/interceptors"
)

const ordersPath = "/wp-json/wc/v3/orders"

var (
	ErrNotConfigured = errors.New("woocommerce is not configured")
	ErrUnavailable   = errors.New("woocommerce is unavailable")
)

type Config struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	Timeout        time.Duration
}

// Client talks to one WooCommerce store. Calls go through a circuit breaker
// so a dead backend costs one fast failure instead of a timeout per order.
type Client struct {
	baseURL *url.URL
	key     string
	secret  string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*OrderResponse]
}

// New returns a client. Missing credentials are not an error here; every
// call then fails with ErrNotConfigured.
func New(cfg Config) (*Client, error) {
	c := &Client{key: cfg.ConsumerKey, secret: cfg.ConsumerSecret}

	if cfg.BaseURL != "" {
		u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
		if err != nil {
			return nil, fmt.Errorf("commerce: invalid base url %q: %w", cfg.BaseURL, err)
		}
		c.baseURL = u
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c.http = &http.Client{
		Timeout:   timeout,
		Transport: interceptors.NewTransport("woocommerce", nil),
	}

	c.breaker = gobreaker.NewCircuitBreaker[*OrderResponse](gobreaker.Settings{
		Name:        "woocommerce",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return c, nil
}

func (c *Client) configured() bool {
	return c.baseURL != nil && c.key != "" && c.secret != ""
}

// CreateOrder posts req to the store's orders endpoint.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error) {
	if !c.configured() {
		return nil, ErrNotConfigured
	}

	res, err := c.breaker.Execute(func() (*OrderResponse, error) {
		return c.post(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return res, err
}

func (c *Client) post(ctx context.Context, body OrderRequest) (*OrderResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("commerce: encode order: %w", err)
	}

	u := c.baseURL.JoinPath(ordersPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.key, c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("commerce: post order: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("commerce: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(string(raw), 512)}
	}

	var out OrderResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("commerce: decode response: %w", err)
	}
	return &out, nil
}

// StatusError is a non-2xx answer from the store.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("commerce: woocommerce responded %d: %s", e.Code, e.Body)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
