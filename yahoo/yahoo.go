// Package yahoo retrieves daily stock history from Yahoo Finance.
//
// The chart API is queried first. When it fails, the public history page is
// scraped instead. Both produce raw rows for stockbook.Merge.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/etnz/stockbook"
	"github.com/go-resty/resty/v2"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultChartURL = "https://query1.finance.yahoo.com"
	DefaultPageURL  = "https://finance.yahoo.com"

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"
)

// Client is a stockbook.HistoryFetcher for Yahoo Finance.
//
// It is safe for concurrent use.
type Client struct {
	chart   *resty.Client
	page    *resty.Client
	limiter *rate.Limiter
	memo    *cache.Cache
}

var _ stockbook.HistoryFetcher = (*Client)(nil)

type options struct {
	chartURL  string
	pageURL   string
	timeout   time.Duration
	perMinute int
	cacheDir  string
	debug     bool
	transport http.RoundTripper
}

// Option configures a Client.
type Option func(*options)

// WithChartURL sets the base URL of the chart API.
func WithChartURL(url string) Option { return func(o *options) { o.chartURL = url } }

// WithPageURL sets the base URL of the history pages.
func WithPageURL(url string) Option { return func(o *options) { o.pageURL = url } }

// WithTimeout sets the timeout of a single HTTP request.
func WithTimeout(d time.Duration) Option { return func(o *options) { o.timeout = d } }

// WithRate limits the number of requests per minute. Zero or less disables
// the limit.
func WithRate(perMinute int) Option { return func(o *options) { o.perMinute = perMinute } }

// WithCacheDir enables a daily disk cache of successful responses in dir.
func WithCacheDir(dir string) Option { return func(o *options) { o.cacheDir = dir } }

// WithDebug logs every request and response.
func WithDebug(debug bool) Option { return func(o *options) { o.debug = debug } }

// WithTransport replaces the HTTP transport.
func WithTransport(t http.RoundTripper) Option { return func(o *options) { o.transport = t } }

// New returns a new Client.
func New(opts ...Option) *Client {
	o := options{
		chartURL:  DefaultChartURL,
		pageURL:   DefaultPageURL,
		timeout:   30 * time.Second,
		perMinute: 30,
		transport: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(&o)
	}

	transport := o.transport
	if o.cacheDir != "" {
		transport = &diskCache{base: transport, dir: o.cacheDir}
	}
	newClient := func(url string) *resty.Client {
		return resty.New().
			SetTransport(transport).
			SetDebug(o.debug).
			SetTimeout(o.timeout).
			SetBaseURL(url).
			SetHeader("User-Agent", userAgent)
	}

	limit := rate.Inf
	if o.perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(o.perMinute))
	}
	return &Client{
		chart:   newClient(o.chartURL),
		page:    newClient(o.pageURL),
		limiter: rate.NewLimiter(limit, 1),
		memo:    cache.New(10*time.Minute, 20*time.Minute),
	}
}

// FetchHistory returns the daily rows of symbol within r.
//
// Failures of both the chart API and the history page wrap
// stockbook.ErrRetrievalUnavailable.
func (c *Client) FetchHistory(ctx context.Context, symbol string, r stockbook.Range) ([]stockbook.RawRow, error) {
	key := symbol + " " + r.String()
	if rows, ok := c.memo.Get(key); ok {
		return slices.Clone(rows.([]stockbook.RawRow)), nil
	}

	rows, err := c.fetchChart(ctx, symbol, r)
	if err != nil {
		zap.L().Warn("yahoo-chart-failed", zap.String("symbol", symbol), zap.Error(err))
		var perr error
		rows, perr = c.fetchPage(ctx, symbol, r)
		if perr != nil {
			return nil, fmt.Errorf("cannot retrieve %s over %s: %w: %w", symbol, r, stockbook.ErrRetrievalUnavailable, errors.Join(err, perr))
		}
	}
	zap.L().Info("yahoo-fetch", zap.String("symbol", symbol), zap.Stringer("range", r), zap.Int("rows", len(rows)))
	c.memo.Set(key, slices.Clone(rows), cache.DefaultExpiration)
	return rows, nil
}

// get performs a throttled GET and returns the body of a 200 response.
func (c *Client) get(ctx context.Context, client *resty.Client, path, symbol string, r stockbook.Range) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := client.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(period(r)).
		Get(path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("cannot http GET %s: %s", resp.Request.URL, resp.Status())
	}
	return resp.Body(), nil
}

// period returns the query parameters selecting r, the end is exclusive.
func period(r stockbook.Range) map[string]string {
	return map[string]string{
		"period1":  strconv.FormatInt(r.From.Time().Unix(), 10),
		"period2":  strconv.FormatInt(r.To.Add(1).Time().Unix(), 10),
		"interval": "1d",
	}
}

// keep returns true if a row belongs to r. Rows whose date does not parse are
// kept so that the merger reports them.
func keep(row stockbook.RawRow, r stockbook.Range) bool {
	day, err := stockbook.ParseRowDate(row.Date)
	if err != nil {
		return true
	}
	return r.Contains(day)
}
