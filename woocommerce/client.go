package woocommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"intcomex-sync/internal/types"
)

// ErrAuth marks an authentication or authorization rejection. It is
// run-fatal: the sync cannot usefully continue without valid credentials,
// so callers abort instead of moving to the next row.
var ErrAuth = errors.New("woocommerce: authentication rejected")

// Client talks to the WooCommerce REST API (wc/v3) with retries and linearly
// increasing backoff. Every non-2xx response and every transport error is
// retried the same way, except authentication failures.
type Client struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	httpClient     *http.Client
	logger         types.Logger
	maxRetries     int
	backoffStep    time.Duration
}

// NewClient creates a client for the store configured in cfg.
func NewClient(cfg *types.Config, logger types.Logger) *Client {
	return &Client{
		baseURL:        strings.TrimRight(cfg.StoreURL, "/"),
		consumerKey:    cfg.ConsumerKey,
		consumerSecret: cfg.ConsumerSecret,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger:      logger,
		maxRetries:  cfg.MaxRetries,
		backoffStep: cfg.BackoffStep,
	}
}

// do performs one API call with the retry policy. payload is marshalled as
// the JSON body when non-nil; the response body is decoded into out when
// out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, payload, out interface{}) error {
	endpoint := c.baseURL + "/wp-json/wc/v3/" + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * c.backoffStep
			c.logger.Warnf("Retrying %s %s in %v (%d/%d): %v", method, path, wait, attempt+1, c.maxRetries, lastErr)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build %s %s: %w", method, path, err)
		}
		req.SetBasicAuth(c.consumerKey, c.consumerSecret)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return fmt.Errorf("%w: %s %s returned HTTP %d", ErrAuth, method, path, resp.StatusCode)
		case resp.StatusCode < 200 || resp.StatusCode > 299:
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(respBody, 200))
			continue
		case readErr != nil:
			lastErr = fmt.Errorf("read response: %w", readErr)
			continue
		}

		if out != nil {
			if err := json.Unmarshal(respBody, out); err != nil {
				lastErr = fmt.Errorf("decode response: %w", err)
				continue
			}
		}
		return nil
	}

	return fmt.Errorf("%s %s failed after %d attempts: %w", method, path, c.maxRetries, lastErr)
}

// FindProductBySKU looks up a product by exact SKU match. A missing product
// is (nil, nil), not an error.
func (c *Client) FindProductBySKU(ctx context.Context, sku string) (*Product, error) {
	params := url.Values{}
	params.Set("sku", sku)
	params.Set("per_page", "1")

	var products []Product
	if err := c.do(ctx, http.MethodGet, "products", params, nil, &products); err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}
	return &products[0], nil
}

// CreateProduct creates a product and returns it with the assigned id.
func (c *Client) CreateProduct(ctx context.Context, p *Product) (*Product, error) {
	var created Product
	if err := c.do(ctx, http.MethodPost, "products", nil, p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProduct applies a price/stock update to an existing product.
func (c *Client) UpdateProduct(ctx context.Context, id int, upd *ProductUpdate) error {
	return c.do(ctx, http.MethodPut, "products/"+strconv.Itoa(id), nil, upd, nil)
}

// SearchCategories returns categories whose name matches the search term.
func (c *Client) SearchCategories(ctx context.Context, name string) ([]Category, error) {
	params := url.Values{}
	params.Set("search", name)
	params.Set("per_page", "100")

	var categories []Category
	if err := c.do(ctx, http.MethodGet, "products/categories", params, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateCategory creates a category under the given parent (0 for root).
func (c *Client) CreateCategory(ctx context.Context, name string, parent int) (*Category, error) {
	var created Category
	payload := Category{Name: name, Parent: parent}
	if err := c.do(ctx, http.MethodPost, "products/categories", nil, &payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
