package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendScope/internal/model"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

const yahooFixture = `{
  "chart": {
    "result": [{
      "meta": {"gmtoffset": -18000},
      "timestamp": [1704205800, 1704292200, 1704378600, 1704465000],
      "events": {
        "dividends": {"1704292200": {"amount": 0.24, "date": 1704292200}},
        "splits": {"1704378600": {"date": 1704378600, "numerator": 4, "denominator": 1}}
      },
      "indicators": {"quote": [{
        "open":   [100, 101, null, 103],
        "high":   [102, 103, null, 105],
        "low":    [99, 100, null, 102],
        "close":  [101, 102, null, 104],
        "volume": [1000, 1100, null, 1300]
      }]}
    }],
    "error": null
  }
}`

func TestYahooFetcher_DecodesBarsAndEvents(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(yahooFixture))
	}))
	defer srv.Close()

	f := NewYahooFetcher("", WithYahooBaseURL(srv.URL), WithYahooRateLimit(100))
	bars, err := f.FetchHistory(context.Background(), "SPX500", date("2024-01-01"), date("2024-01-31"))
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/^GSPC", gotPath)
	assert.Contains(t, gotQuery, "events=div%2Csplit")
	assert.Contains(t, gotQuery, "interval=1d")

	require.Len(t, bars, 3, "null bar is skipped")
	assert.Equal(t, date("2024-01-02"), bars[0].Time)
	assert.Equal(t, 101.0, bars[0].Close)
	assert.Equal(t, 1000.0, bars[0].Volume)
	assert.Equal(t, 0.24, bars[1].Dividends)
	assert.Zero(t, bars[0].Dividends)
	assert.Equal(t, date("2024-01-05"), bars[2].Time)
	assert.Equal(t, "yahoo", f.Name())
}

func TestYahooFetcher_FiltersRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(yahooFixture))
	}))
	defer srv.Close()

	f := NewYahooFetcher("", WithYahooBaseURL(srv.URL))
	bars, err := f.FetchHistory(context.Background(), "AAPL", date("2024-01-03"), date("2024-01-03"))
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 102.0, bars[0].Close)
}

func TestYahooFetcher_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"http status", http.StatusTooManyRequests, "slow down", "status 429"},
		{"api error", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`, "No data found"},
		{"empty result", http.StatusOK, `{"chart":{"result":[],"error":null}}`, ErrNoData.Error()},
		{"bad json", http.StatusOK, `{`, "yahoo decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewYahooFetcher("", WithYahooBaseURL(srv.URL)).
				FetchHistory(context.Background(), "X", date("2024-01-01"), date("2024-02-01"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestProxyTransport_KeepsDefaults(t *testing.T) {
	plain := proxyTransport("")
	assert.Nil(t, plain.Proxy)
	assert.NotZero(t, plain.TLSHandshakeTimeout)
	assert.NotZero(t, plain.IdleConnTimeout)
	assert.NotNil(t, plain.DialContext)

	proxied := proxyTransport("http://proxy.local:3128")
	require.NotNil(t, proxied.Proxy)
	assert.NotZero(t, proxied.TLSHandshakeTimeout)
	req, err := http.NewRequest(http.MethodGet, "https://query1.finance.yahoo.com", nil)
	require.NoError(t, err)
	u, err := proxied.Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "proxy.local:3128", u.Host)
	assert.NotSame(t, http.DefaultTransport, proxied)
}

func TestRestFetcher_DecodesAndSorts(t *testing.T) {
	var auth, symbol, from string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		symbol = r.URL.Query().Get("symbol")
		from = r.URL.Query().Get("from")
		assert.Equal(t, "/api/v1/bars/daily", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"timestamp": 1704292200, "open": 2, "high": 2, "low": 2, "close": 2, "volume": 20, "dividends": 0.1},
			{"timestamp": 1704205800, "open": 1, "high": 1, "low": 1, "close": 1, "volume": 10}
		]`))
	}))
	defer srv.Close()

	f := NewRestFetcher(srv.URL, "secret", "", 100, nil)
	bars, err := f.FetchHistory(context.Background(), "BTC", date("2024-01-01"), date("2024-01-31"))
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "BTC", symbol)
	assert.Equal(t, "2024-01-01", from)
	require.Len(t, bars, 2)
	assert.Equal(t, date("2024-01-02"), bars[0].Time)
	assert.Equal(t, 1.0, bars[0].Close)
	assert.Equal(t, 0.1, bars[1].Dividends)
}

func TestRestFetcher_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("bad key"))
	}))
	defer srv.Close()

	_, err := NewRestFetcher(srv.URL, "", "", 0, nil).
		FetchHistory(context.Background(), "BTC", date("2024-01-01"), date("2024-01-31"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "status 401"))
}

func TestConvertChartBar(t *testing.T) {
	bar := convertChartBar(&finance.ChartBar{
		Open:      decimal.NewFromFloat(10.5),
		High:      decimal.NewFromFloat(11),
		Low:       decimal.NewFromFloat(10),
		Close:     decimal.NewFromFloat(10.75),
		Volume:    1234,
		Timestamp: 1704205800,
	})
	assert.Equal(t, date("2024-01-02"), bar.Time)
	assert.Equal(t, 10.5, bar.Open)
	assert.Equal(t, 10.75, bar.Close)
	assert.Equal(t, 1234.0, bar.Volume)
}

func TestFinanceGoFetcher_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFinanceGoFetcher(1, nil).FetchHistory(ctx, "AAPL", date("2024-01-01"), date("2024-01-31"))
	assert.Error(t, err)
}

func TestNormalizeBars(t *testing.T) {
	bars := normalizeBars([]model.Bar{
		{Time: date("2024-01-03"), Close: 3},
		{Time: date("2024-01-02"), Close: 2},
		{Time: date("2024-01-03"), Close: 4},
	})
	require.Len(t, bars, 2)
	assert.Equal(t, 2.0, bars[0].Close)
	assert.Equal(t, 4.0, bars[1].Close)
}

func TestMockFetcher(t *testing.T) {
	m := &MockFetcher{Price: 50, DailyGrowth: 0.001}
	bars, err := m.FetchHistory(context.Background(), "ANY", date("2024-01-01"), date("2024-01-14"))
	require.NoError(t, err)
	assert.Len(t, bars, 10, "two weeks of weekdays")
	for _, b := range bars {
		assert.NotEqual(t, time.Saturday, b.Time.Weekday())
		assert.NotEqual(t, time.Sunday, b.Time.Weekday())
	}
	assert.Equal(t, []string{"ANY"}, m.Calls())

	boom := errors.New("boom")
	_, err = (&MockFetcher{Err: boom}).FetchHistory(context.Background(), "ANY", date("2024-01-01"), date("2024-01-14"))
	assert.ErrorIs(t, err, boom)
}
