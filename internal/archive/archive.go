// Package archive fetches a player's recent games from a Lichess-compatible
// archive and persists them as PGN snapshots.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/sieve/internal/stats"
)

// DefaultHost is the archive queried when no host is configured.
const DefaultHost = "https://lichess.org"

// DefaultResponseHeaderTimeout is the default timeout for receiving response headers.
const DefaultResponseHeaderTimeout = 30 * time.Second

// pgnMediaType is the Accept header that selects raw PGN over NDJSON.
const pgnMediaType = "application/x-chess-pgn"

// ErrFetchFailed is wrapped by every FetchError.
var ErrFetchFailed = errors.New("archive: fetch failed")

// FetchError reports a non-200 archive response.
type FetchError struct {
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("archive: failed to fetch games: status code %d", e.StatusCode)
}

// Unwrap lets errors.Is match ErrFetchFailed.
func (e *FetchError) Unwrap() error {
	return ErrFetchFailed
}

// Client fetches games over HTTP. It performs exactly one request per fetch
// and never retries.
type Client struct {
	client *http.Client
	host   string
	logger *zap.Logger
	stats  stats.Collector
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithTimeout bounds each fetch, including reading the body.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.client = &http.Client{
			Timeout: timeout,
		}
	}
}

// WithHost overrides the archive base URL, e.g. for a mirror or a test server.
func WithHost(host string) Option {
	return func(c *Client) {
		c.host = strings.TrimSuffix(host, "/")
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithStats sets the stats collector.
func WithStats(s stats.Collector) Option {
	return func(c *Client) {
		c.stats = s
	}
}

// NewClient creates a Client with sensible defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: DefaultResponseHeaderTimeout,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
			},
		},
		host:   DefaultHost,
		logger: zap.NewNop(),
		stats:  stats.NewNoop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the export endpoint for username limited to max games.
func (c *Client) URL(username string, max int) string {
	q := url.Values{}
	q.Set("max", strconv.Itoa(max))
	q.Set("pgnInJson", "false")
	return c.host + "/api/games/user/" + url.PathEscape(username) + "?" + q.Encode()
}

// FetchRecent downloads up to max of username's most recent games and
// returns them as raw PGN blocks.
func (c *Client) FetchRecent(ctx context.Context, username string, max int) ([]string, error) {
	u := c.URL(username, max)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", pgnMediaType)

	c.stats.IncCounter(stats.MetricArchiveFetches, 1)
	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching games: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("archive fetch failed",
			zap.String("url", u),
			zap.Int("status", resp.StatusCode),
		)
		return nil, &FetchError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	games := Split(string(body))
	c.stats.SetGauge(stats.MetricGamesFetched, int64(len(games)))
	c.logger.Debug("fetched games",
		zap.String("username", username),
		zap.Int("games", len(games)),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return games, nil
}
