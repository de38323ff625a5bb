// Package storefrontapi is the HTTP client for the storefront's catalog and
// stock endpoints. It satisfies the cart's Catalog and StockOracle ports.
package storefrontapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dwikikusuma/rocketshoes-cart/internal/cart/domain"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var ErrNotFound = errors.New("not found")

// Stock is the body of GET /stock/{id}.
type Stock struct {
	ID     domain.ProductID `json:"id"`
	Amount int              `json:"amount"`
}

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

type Option func(*Client)

// WithTimeout bounds each request. Zero, the default, means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, errors.Wrapf(err, "parse base url %q", baseURL)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c, nil
}

// Product fetches GET /products/{id}.
func (c *Client) Product(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	var p domain.Product
	if err := c.getJSON(ctx, fmt.Sprintf("/products/%d", id), &p); err != nil {
		return domain.Product{}, errors.Wrapf(err, "get product %d", id)
	}
	return p, nil
}

// Products fetches the full listing, GET /products.
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var ps []domain.Product
	if err := c.getJSON(ctx, "/products", &ps); err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return ps, nil
}

// AvailableQuantity fetches GET /stock/{id} and returns its amount.
func (c *Client) AvailableQuantity(ctx context.Context, id domain.ProductID) (int, error) {
	var s struct {
		Amount *int `json:"amount"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/stock/%d", id), &s); err != nil {
		return 0, errors.Wrapf(err, "get stock %d", id)
	}
	if s.Amount == nil {
		return 0, errors.Errorf("stock %d: response has no amount", id)
	}
	if *s.Amount < 0 {
		return 0, errors.Errorf("stock %d: negative amount %d", id, *s.Amount)
	}
	return *s.Amount, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
