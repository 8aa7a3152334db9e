package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"momentum-scanner/internal/domain"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// HTTPClient implements Client against the upstream REST API.
type HTTPClient struct {
	baseURL     string
	apiKey      string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	observer    func(op string, d time.Duration)
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// WithLatencyObserver registers a callback invoked with the total duration
// of each upstream call, including retries.
func WithLatencyObserver(f func(op string, d time.Duration)) ClientOption {
	return func(c *HTTPClient) {
		c.observer = f
	}
}

// NewHTTPClient creates a new market data REST client.
func NewHTTPClient(baseURL, apiKey string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL:     baseURL,
		apiKey:      apiKey,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time interface check.
var _ Client = (*HTTPClient)(nil)

// getJSON performs a GET with retries and exponential backoff, decoding the
// response into out. Client errors (4xx other than 429) are not retried.
func (c *HTTPClient) getJSON(ctx context.Context, op, rawURL string, out any) error {
	if c.observer != nil {
		start := time.Now()
		defer func() { c.observer(op, time.Since(start)) }()
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server status %d: %s", resp.StatusCode, string(body))
			continue
		}

		if resp.StatusCode != http.StatusOK {
			// Other client errors are definitive; retrying won't help.
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// withAPIKey ensures rawURL carries the apiKey query parameter. Continuation
// URLs returned by the upstream sometimes omit it.
func (c *HTTPClient) withAPIKey(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	q := u.Query()
	if q.Get("apiKey") == "" {
		q.Set("apiKey", c.apiKey)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// FetchSnapshotPage retrieves one page of the market-wide snapshot. An empty
// cursor requests the first page; the returned cursor is the upstream
// continuation URL, empty on the last page.
func (c *HTTPClient) FetchSnapshotPage(ctx context.Context, cursor string) ([]domain.SnapshotEntry, string, error) {
	rawURL := cursor
	if rawURL == "" {
		rawURL = fmt.Sprintf("%s/v2/snapshot/tickers", c.baseURL)
	}
	rawURL, err := c.withAPIKey(rawURL)
	if err != nil {
		return nil, "", upstreamErr("snapshot page", err)
	}

	var page snapshotPageDTO
	if err := c.getJSON(ctx, "snapshot", rawURL, &page); err != nil {
		return nil, "", upstreamErr("snapshot page", err)
	}

	entries := make([]domain.SnapshotEntry, 0, len(page.Tickers))
	for _, t := range page.Tickers {
		entries = append(entries, t.toEntry())
	}
	return entries, page.NextURL, nil
}

// FetchDailyBars retrieves daily aggregates for symbol within [from, to].
// Bars without a volume are dropped rather than coerced to zero.
func (c *HTTPClient) FetchDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]domain.DailyBar, error) {
	rawURL := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/1/day/%s/%s?adjusted=true&sort=asc",
		c.baseURL, url.PathEscape(symbol), from.Format("2006-01-02"), to.Format("2006-01-02"))
	rawURL, err := c.withAPIKey(rawURL)
	if err != nil {
		return nil, upstreamErr("daily bars", err)
	}

	var resp aggsResponseDTO
	if err := c.getJSON(ctx, "daily_bars", rawURL, &resp); err != nil {
		return nil, upstreamErr("daily bars", err)
	}

	bars := make([]domain.DailyBar, 0, len(resp.Results))
	for _, b := range resp.Results {
		if b.Timestamp == nil || b.Volume == nil {
			continue
		}
		bars = append(bars, domain.DailyBar{
			Date:   time.UnixMilli(*b.Timestamp).UTC(),
			Volume: *b.Volume,
		})
	}
	return bars, nil
}

// FetchReferenceInfo retrieves share-structure data for symbol. An unknown
// symbol yields an empty ReferenceInfo, not an error.
func (c *HTTPClient) FetchReferenceInfo(ctx context.Context, symbol string) (domain.ReferenceInfo, error) {
	rawURL := fmt.Sprintf("%s/v3/reference/tickers/%s", c.baseURL, url.PathEscape(symbol))
	rawURL, err := c.withAPIKey(rawURL)
	if err != nil {
		return domain.ReferenceInfo{}, upstreamErr("reference info", err)
	}

	var resp referenceResponseDTO
	if err := c.getJSON(ctx, "reference", rawURL, &resp); err != nil {
		return domain.ReferenceInfo{}, upstreamErr("reference info", err)
	}
	return resp.Results.toReferenceInfo(), nil
}

// FetchRecentNews returns the number of news items published for symbol
// since the given time.
func (c *HTTPClient) FetchRecentNews(ctx context.Context, symbol string, since time.Time) (int, error) {
	rawURL := fmt.Sprintf("%s/v2/reference/news?ticker=%s&published_utc.gte=%s&limit=50",
		c.baseURL, url.QueryEscape(symbol), url.QueryEscape(since.UTC().Format(time.RFC3339)))
	rawURL, err := c.withAPIKey(rawURL)
	if err != nil {
		return 0, upstreamErr("recent news", err)
	}

	var resp newsResponseDTO
	if err := c.getJSON(ctx, "news", rawURL, &resp); err != nil {
		return 0, upstreamErr("recent news", err)
	}

	if resp.Count != nil {
		return *resp.Count, nil
	}
	return len(resp.Results), nil
}
