package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"TrendScope/internal/model"
)

// RestFetcher implements Fetcher against a generic REST bar API:
//
//	GET {base}/api/v1/bars/daily?symbol=X&from=YYYY-MM-DD&to=YYYY-MM-DD
//
// answering with a JSON array of bars keyed by unix timestamp.
type RestFetcher struct {
	client  *resty.Client
	limiter *rate.Limiter
	logger  arbor.ILogger
}

// NewRestFetcher creates a REST fetcher with optional bearer key and proxy.
func NewRestFetcher(baseURL, apiKey, proxyURL string, rps int, logger arbor.ILogger) *RestFetcher {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(DefaultTimeout)
	client.SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	if rps <= 0 {
		rps = DefaultRateLimit
	}
	if logger == nil {
		logger = arbor.NewLogger()
	}
	return &RestFetcher{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		logger:  logger,
	}
}

func (f *RestFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the bar API.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	Dividends float64 `json:"dividends"`
	Splits    float64 `json:"splits"`
}

func (f *RestFetcher) FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]model.Bar, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rest rate limit: %w", err)
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": symbol,
			"from":   start.Format("2006-01-02"),
			"to":     end.Format("2006-01-02"),
		}).
		Get("/api/v1/bars/daily")
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode(), resp.String())
	}

	var raw []restBar
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}

	bars := make([]model.Bar, 0, len(raw))
	for _, rb := range raw {
		day := dayOf(time.Unix(rb.Timestamp, 0).UTC())
		if !inRange(day, start, end) {
			continue
		}
		bars = append(bars, model.Bar{
			Time:      day,
			Open:      rb.Open,
			High:      rb.High,
			Low:       rb.Low,
			Close:     rb.Close,
			Volume:    rb.Volume,
			Dividends: rb.Dividends,
			Splits:    rb.Splits,
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("rest %s: %w", symbol, ErrNoData)
	}

	f.logger.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("rest history loaded")
	return normalizeBars(bars), nil
}
