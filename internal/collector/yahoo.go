package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"TrendScope/internal/model"
)

const (
	// DefaultYahooBaseURL serves the v8 chart API.
	DefaultYahooBaseURL = "https://query1.finance.yahoo.com"
	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 30 * time.Second
	// DefaultRateLimit is requests per second per fetcher.
	DefaultRateLimit = 2
)

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	baseURL   string
	client    *http.Client
	limiter   *rate.Limiter
	logger    arbor.ILogger
	symbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// YahooOption configures a YahooFetcher.
type YahooOption func(*YahooFetcher)

// WithYahooBaseURL points the fetcher at another chart endpoint.
func WithYahooBaseURL(baseURL string) YahooOption {
	return func(f *YahooFetcher) { f.baseURL = baseURL }
}

// WithYahooHTTPClient replaces the HTTP client.
func WithYahooHTTPClient(c *http.Client) YahooOption {
	return func(f *YahooFetcher) { f.client = c }
}

// WithYahooRateLimit sets requests per second.
func WithYahooRateLimit(rps int) YahooOption {
	return func(f *YahooFetcher) {
		if rps > 0 {
			f.limiter = rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}

// WithYahooLogger sets a logger.
func WithYahooLogger(logger arbor.ILogger) YahooOption {
	return func(f *YahooFetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewYahooFetcher creates a Yahoo Finance fetcher with optional proxy support.
func NewYahooFetcher(proxyURL string, opts ...YahooOption) *YahooFetcher {
	f := &YahooFetcher{
		baseURL: DefaultYahooBaseURL,
		client: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: proxyTransport(proxyURL),
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  arbor.NewLogger(),
		symbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func proxyTransport(proxyURL string) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return transport
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.symbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure of the chart API with events enabled.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				GMTOffset int64 `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp []int64 `json:"timestamp"`
			Events    struct {
				Dividends map[string]struct {
					Amount float64 `json:"amount"`
					Date   int64   `json:"date"`
				} `json:"dividends"`
				Splits map[string]struct {
					Date        int64   `json:"date"`
					Numerator   float64 `json:"numerator"`
					Denominator float64 `json:"denominator"`
				} `json:"splits"`
			} `json:"events"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func at(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return 0
	}
	return *values[i]
}

// FetchHistory downloads daily bars including dividend and split events.
func (f *YahooFetcher) FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]model.Bar, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("yahoo rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("events", "div,split")
	params.Set("period1", strconv.FormatInt(dayOf(start).Unix(), 10))
	// period2 is exclusive.
	params.Set("period2", strconv.FormatInt(dayOf(end).AddDate(0, 0, 1).Unix(), 10))
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", f.baseURL, url.PathEscape(f.yahooSymbol(symbol)), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	f.logger.Debug().Str("symbol", symbol).Str("start", start.Format("2006-01-02")).
		Str("end", end.Format("2006-01-02")).Msg("yahoo chart request")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrNoData)
	}

	result := chart.Chart.Result[0]
	offset := result.Meta.GMTOffset
	localDay := func(ts int64) time.Time { return dayOf(time.Unix(ts+offset, 0).UTC()) }

	dividends := make(map[time.Time]float64, len(result.Events.Dividends))
	for _, d := range result.Events.Dividends {
		dividends[localDay(d.Date)] += d.Amount
	}
	splits := make(map[time.Time]float64, len(result.Events.Splits))
	for _, s := range result.Events.Splits {
		if s.Denominator != 0 {
			splits[localDay(s.Date)] = s.Numerator / s.Denominator
		}
	}

	quote := result.Indicators.Quote[0]
	bars := make([]model.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := at(quote.Close, i)
		if c == 0 {
			continue // null bars on holidays and halts
		}
		day := localDay(ts)
		if !inRange(day, start, end) {
			continue
		}
		bars = append(bars, model.Bar{
			Time:      day,
			Open:      at(quote.Open, i),
			High:      at(quote.High, i),
			Low:       at(quote.Low, i),
			Close:     c,
			Volume:    at(quote.Volume, i),
			Dividends: dividends[day],
			Splits:    splits[day],
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrNoData)
	}
	return normalizeBars(bars), nil
}
