package sheets

import (
	"net/http"
	"time"

	"github.com/okian/shelf/pkg/logger"
	"golang.org/x/time/rate"
)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRate sets the allowed requests per second.
func WithRate(perSec float64) ClientOption {
	return func(c *Client) {
		if perSec > 0 {
			c.rateLimiter = rate.NewLimiter(rate.Limit(perSec), 1)
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithURLs sets the games and categories CSV endpoints. Leaving either
// empty makes the loader serve the bundled snapshot.
func WithURLs(gamesURL, categoriesURL string) LoaderOption {
	return func(l *Loader) {
		l.gamesURL = gamesURL
		l.categoriesURL = categoriesURL
	}
}

// WithFetcher replaces the HTTP client.
func WithFetcher(f Fetcher) LoaderOption {
	return func(l *Loader) {
		if f != nil {
			l.fetcher = f
		}
	}
}

// WithLogger sets the loader's logger.
func WithLogger(log logger.Logger) LoaderOption {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// WithClock overrides time.Now for load timestamps.
func WithClock(now func() time.Time) LoaderOption {
	return func(l *Loader) {
		if now != nil {
			l.now = now
		}
	}
}
