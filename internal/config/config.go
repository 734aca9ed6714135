package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"TrendScope/internal/model"
)

// ReferenceMarket is the fallback benchmark baseline: S&P 500 parameters
// measured over a long history. Used whenever live benchmark data is unusable.
var ReferenceMarket = model.BenchmarkParameters{
	QuadCoef:         -0.1134,
	LinearCoef:       0.4700,
	RSquared:         0.9505,
	AnnualReturn:     0.2384,
	AnnualVolatility: 0.125,
}

// DataSourceConfig selects and configures the price fetcher.
type DataSourceConfig struct {
	Provider  string `yaml:"provider" validate:"oneof=yahoo financego rest mock"`
	BaseURL   string `yaml:"base_url" validate:"required_if=Provider rest"`
	APIKey    string `yaml:"api_key"`
	Proxy     string `yaml:"proxy" validate:"omitempty,url"`
	RateLimit int    `yaml:"rate_limit" validate:"gte=0"`
}

// BenchmarkConfig names the benchmark and its fallback parameters.
type BenchmarkConfig struct {
	Symbol   string                    `yaml:"symbol" validate:"required"`
	Fallback model.BenchmarkParameters `yaml:"fallback"`
}

// AnalysisConfig tunes the regression and rolling windows.
type AnalysisConfig struct {
	HistoryDays     int `yaml:"history_days" validate:"gt=0"`
	FutureDays      int `yaml:"future_days" validate:"gte=0"`
	LookbackDays    int `yaml:"lookback_days" validate:"gt=0"`
	CrossoverDays   int `yaml:"crossover_days" validate:"gt=0"`
	MinObservations int `yaml:"min_observations" validate:"gte=3"`
	Workers         int `yaml:"workers" validate:"gte=1"`
}

// ScoringConfig holds composite weights and the jitter switch.
type ScoringConfig struct {
	Weights model.Weights `yaml:"weights"`
	Jitter  *bool         `yaml:"jitter"`
}

// JitterEnabled defaults to true when unset.
func (s ScoringConfig) JitterEnabled() bool {
	return s.Jitter == nil || *s.Jitter
}

// Config holds all application configuration.
type Config struct {
	DataSource DataSourceConfig `yaml:"data_source"`
	Benchmark  BenchmarkConfig  `yaml:"benchmark"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Watchlist  []string         `yaml:"watchlist" validate:"dive,required"`
	Schedule   struct {
		AnalysisCron string `yaml:"analysis_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Logging struct {
		Level string `yaml:"level" validate:"oneof=trace debug info warn error"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
}

// Load reads .env, then the YAML file, then environment overrides, then defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_SOURCE_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_SOURCE_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_SOURCE_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.DataSource.Proxy = v
	}
	if v := os.Getenv("BENCHMARK_SYMBOL"); v != "" {
		c.Benchmark.Symbol = v
	}
	if v := os.Getenv("CRON_ANALYSIS"); v != "" {
		c.Schedule.AnalysisCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Watchlist = nil
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				c.Watchlist = append(c.Watchlist, s)
			}
		}
	}
	if v := os.Getenv("SCORING_JITTER"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Scoring.Jitter = &b
		}
	}
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.DataSource.RateLimit == 0 {
		c.DataSource.RateLimit = 2
	}
	if c.Benchmark.Symbol == "" {
		c.Benchmark.Symbol = "^GSPC"
	}
	c.Benchmark.Fallback = fallbackDefaults(c.Benchmark.Fallback)
	if c.Analysis.HistoryDays == 0 {
		c.Analysis.HistoryDays = 730
	}
	if c.Analysis.FutureDays == 0 {
		c.Analysis.FutureDays = 180
	}
	if c.Analysis.LookbackDays == 0 {
		c.Analysis.LookbackDays = 365
	}
	if c.Analysis.CrossoverDays == 0 {
		c.Analysis.CrossoverDays = 365
	}
	if c.Analysis.MinObservations == 0 {
		c.Analysis.MinObservations = 20
	}
	if c.Analysis.Workers == 0 {
		c.Analysis.Workers = 4
	}
	if c.Scoring.Weights == (model.Weights{}) {
		c.Scoring.Weights = model.Weights{Trend: 0.30, Return: 0.60, Volatility: 0.10}
	}
	if c.Schedule.AnalysisCron == "" {
		c.Schedule.AnalysisCron = "0 0 22 * * 1-5"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/trendscope.db"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// fallbackDefaults fills each unset fallback field from ReferenceMarket.
func fallbackDefaults(fb model.BenchmarkParameters) model.BenchmarkParameters {
	if fb.QuadCoef == 0 {
		fb.QuadCoef = ReferenceMarket.QuadCoef
	}
	if fb.LinearCoef == 0 {
		fb.LinearCoef = ReferenceMarket.LinearCoef
	}
	if fb.RSquared == 0 {
		fb.RSquared = ReferenceMarket.RSquared
	}
	if fb.AnnualReturn == 0 {
		fb.AnnualReturn = ReferenceMarket.AnnualReturn
	}
	if fb.AnnualVolatility == 0 {
		fb.AnnualVolatility = ReferenceMarket.AnnualVolatility
	}
	return fb
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	w := c.Scoring.Weights
	if sum := w.Trend + w.Return + w.Volatility; sum <= 0 {
		return fmt.Errorf("scoring.weights must not all be zero")
	}
	fb := c.Benchmark.Fallback
	if fb.AnnualVolatility <= 0 {
		return fmt.Errorf("benchmark.fallback.annual_volatility must be positive")
	}
	if fb.RSquared < 0 || fb.RSquared > 1 {
		return fmt.Errorf("benchmark.fallback.r_squared must be within [0,1]")
	}
	return nil
}

// ValidateTelegram checks the settings the bot needs.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}
