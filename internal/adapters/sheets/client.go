// Package sheets ingests the games and categories tables from published
// spreadsheet CSV exports, falling back to a bundled snapshot.
package sheets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	requestTimeout   = 30 * time.Second
	defaultRate      = 5.0
	maxBodyBytes     = 8 << 20
	defaultUserAgent = "shelf/1.0"
)

// Client fetches CSV exports over HTTP. Every request waits on a shared
// rate limiter.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
}

// NewClient creates a client with a 30s request timeout.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: requestTimeout},
		rateLimiter: rate.NewLimiter(rate.Limit(defaultRate), 1),
		userAgent:   defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch downloads url and returns the body. Non-2xx responses wrap ErrStatus.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %w", ErrFetch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrFetch, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/csv")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("%w: %s returned %d", ErrStatus, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrFetch, err)
	}
	return body, nil
}

// FetchAll downloads both tables concurrently. Either failure cancels the
// other request.
func (c *Client) FetchAll(ctx context.Context, gamesURL, categoriesURL string) (games, categories []byte, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var ferr error
		games, ferr = c.Fetch(gctx, gamesURL)
		if ferr != nil {
			return fmt.Errorf("games: %w", ferr)
		}
		return nil
	})
	g.Go(func() error {
		var ferr error
		categories, ferr = c.Fetch(gctx, categoriesURL)
		if ferr != nil {
			return fmt.Errorf("categories: %w", ferr)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return games, categories, nil
}
