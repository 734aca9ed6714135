package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendScope/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "yahoo", cfg.DataSource.Provider)
	assert.Equal(t, "^GSPC", cfg.Benchmark.Symbol)
	assert.Equal(t, ReferenceMarket, cfg.Benchmark.Fallback)
	assert.Equal(t, 180, cfg.Analysis.FutureDays)
	assert.Equal(t, 365, cfg.Analysis.LookbackDays)
	assert.Equal(t, 365, cfg.Analysis.CrossoverDays)
	assert.Equal(t, 20, cfg.Analysis.MinObservations)
	assert.Equal(t, model.Weights{Trend: 0.30, Return: 0.60, Volatility: 0.10}, cfg.Scoring.Weights)
	assert.True(t, cfg.Scoring.JitterEnabled())
	assert.Equal(t, "info", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
data_source:
  provider: rest
  base_url: https://bars.example.com
  rate_limit: 5
benchmark:
  symbol: "^NDX"
  fallback:
    quad_coef: -0.2
    linear_coef: 0.6
    r_squared: 0.9
    annual_return: 0.15
    annual_volatility: 0.2
analysis:
  lookback_days: 180
  workers: 8
scoring:
  jitter: false
  weights:
    trend: 0.5
    return: 0.4
    volatility: 0.1
watchlist: [AAPL, MSFT]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "rest", cfg.DataSource.Provider)
	assert.Equal(t, 5, cfg.DataSource.RateLimit)
	assert.Equal(t, "^NDX", cfg.Benchmark.Symbol)
	assert.Equal(t, 0.15, cfg.Benchmark.Fallback.AnnualReturn)
	assert.Equal(t, 180, cfg.Analysis.LookbackDays)
	assert.Equal(t, 8, cfg.Analysis.Workers)
	assert.False(t, cfg.Scoring.JitterEnabled())
	assert.Equal(t, 0.5, cfg.Scoring.Weights.Trend)
	assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Watchlist)
	require.NoError(t, cfg.Validate())
}

func TestLoad_PartialFallbackFillsEachField(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
benchmark:
  fallback:
    annual_volatility: 0.3
`))
	require.NoError(t, err)

	fb := cfg.Benchmark.Fallback
	assert.Equal(t, 0.3, fb.AnnualVolatility)
	assert.Equal(t, ReferenceMarket.QuadCoef, fb.QuadCoef)
	assert.Equal(t, ReferenceMarket.LinearCoef, fb.LinearCoef)
	assert.Equal(t, ReferenceMarket.RSquared, fb.RSquared)
	assert.Equal(t, ReferenceMarket.AnnualReturn, fb.AnnualReturn)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("WATCHLIST", "AAPL, TSLA ,")
	t.Setenv("SCORING_JITTER", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, "watchlist: [IGNORED]\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "TSLA"}, cfg.Watchlist)
	assert.False(t, cfg.Scoring.JitterEnabled())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.NoError(t, cfg.ValidateTelegram())
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "data_source: [unterminated"))
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }},
		{"rest without base url", func(c *Config) { c.DataSource.Provider = "rest"; c.DataSource.BaseURL = "" }},
		{"weight above one", func(c *Config) { c.Scoring.Weights.Trend = 1.5 }},
		{"non-positive fallback volatility", func(c *Config) { c.Benchmark.Fallback.AnnualVolatility = -1 }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"blank watchlist entry", func(c *Config) { c.Watchlist = []string{"AAPL", ""} }},
		{"too few observations", func(c *Config) { c.Analysis.MinObservations = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateTelegram(t *testing.T) {
	cfg := &Config{}
	assert.ErrorContains(t, cfg.ValidateTelegram(), "bot_token")
	cfg.Telegram.BotToken = "x"
	assert.ErrorContains(t, cfg.ValidateTelegram(), "chat_id")
}
