package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultTickers is the watchlist used when none is configured.
var DefaultTickers = []string{
	"ADBE", "AAPL", "AMZN", "APPN", "CFLT", "CRM", "DDOG", "DOCN", "DOMO", "ESTC",
	"FROG", "GOOGL", "GTLB", "HUBS", "INTU", "MDB", "META", "MSFT", "NET", "NOW",
	"NVDA", "OKTA", "ORCL", "PLTR", "SNOW", "SUMO", "TEAM", "WDAY", "WIX", "ZS",
}

// DefaultTestTickers is the short list used by test mode.
var DefaultTestTickers = []string{"AAPL", "WIX"}

// Config holds all application configuration.
type Config struct {
	Provider struct {
		BaseURL    string        `yaml:"base_url"`
		APIKey     string        `yaml:"api_key"`
		RateLimit  float64       `yaml:"rate_limit"`
		Burst      int           `yaml:"burst"`
		Timeout    time.Duration `yaml:"timeout"`
		ProfileTTL time.Duration `yaml:"profile_ttl"`
	} `yaml:"provider"`
	Tickers      []string      `yaml:"tickers"`
	TestTickers  []string      `yaml:"test_tickers"`
	TestMode     bool          `yaml:"test_mode"`
	RequestDelay time.Duration `yaml:"request_delay"`
	Market       struct {
		UTCOffsetHours float64 `yaml:"utc_offset_hours"`
	} `yaml:"market"`
	Cache struct {
		File     string `yaml:"file"`
		MockFile string `yaml:"mock_file"`
	} `yaml:"cache"`
	Render struct {
		Output string `yaml:"output"`
	} `yaml:"render"`
	Schedule struct {
		PreCron  string `yaml:"pre_cron"`
		InCron   string `yaml:"in_cron"`
		PostCron string `yaml:"post_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"log"`
	Tracing struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"tracing"`
	Proxy string `yaml:"proxy"`

	// marketOffsetSet tracks whether the offset came from the file, since 0 is valid.
	marketOffsetSet bool
	profileTTLSet   bool
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		// Zero is meaningful for these two, so record whether they were set.
		var probe struct {
			Provider map[string]any `yaml:"provider"`
			Market   map[string]any `yaml:"market"`
		}
		if yaml.Unmarshal(data, &probe) == nil {
			_, cfg.marketOffsetSet = probe.Market["utc_offset_hours"]
			_, cfg.profileTTLSet = probe.Provider["profile_ttl"]
		}
	}

	// Environment variable overrides
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("FINNHUB_BASE_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("PULSE_CACHE_FILE"); v != "" {
		cfg.Cache.File = v
	}
	if v := os.Getenv("PULSE_TEST_MODE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.TestMode = b
		}
	}
	if v := os.Getenv("PULSE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = "https://finnhub.io/api/v1"
	}
	if cfg.Provider.RateLimit == 0 {
		cfg.Provider.RateLimit = 1
	}
	if cfg.Provider.Burst == 0 {
		cfg.Provider.Burst = 5
	}
	if cfg.Provider.Timeout == 0 {
		cfg.Provider.Timeout = 30 * time.Second
	}
	if cfg.Provider.ProfileTTL == 0 && !cfg.profileTTLSet {
		cfg.Provider.ProfileTTL = 24 * time.Hour
	}
	if len(cfg.Tickers) == 0 {
		cfg.Tickers = append([]string(nil), DefaultTickers...)
	}
	if len(cfg.TestTickers) == 0 {
		cfg.TestTickers = append([]string(nil), DefaultTestTickers...)
	}
	if cfg.RequestDelay == 0 {
		cfg.RequestDelay = 100 * time.Millisecond
	}
	if !cfg.marketOffsetSet {
		cfg.Market.UTCOffsetHours = -5
	}
	if cfg.Cache.File == "" {
		cfg.Cache.File = "cache/stock_data.json"
	}
	if cfg.Cache.MockFile == "" {
		cfg.Cache.MockFile = "cache/stock_data_mock.json"
	}
	if cfg.Render.Output == "" {
		cfg.Render.Output = "index.html"
	}
	if cfg.Schedule.PreCron == "" {
		cfg.Schedule.PreCron = "0 0 8 * * 1-5"
	}
	if cfg.Schedule.InCron == "" {
		cfg.Schedule.InCron = "0 0 12 * * 1-5"
	}
	if cfg.Schedule.PostCron == "" {
		cfg.Schedule.PostCron = "0 30 16 * * 1-5"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	cfg.Tickers = normalizeTickers(cfg.Tickers)
	cfg.TestTickers = normalizeTickers(cfg.TestTickers)

	return cfg, nil
}

// ActiveTickers returns the watchlist for the current mode.
func (c *Config) ActiveTickers() []string {
	if c.TestMode {
		return c.TestTickers
	}
	return c.Tickers
}

// TelegramEnabled reports whether notifications can be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks the settings needed to talk to the provider.
func (c *Config) Validate() error {
	if c.Provider.APIKey == "" {
		return fmt.Errorf("provider.api_key is required (set FINNHUB_API_KEY)")
	}
	if c.Provider.BaseURL == "" {
		return fmt.Errorf("provider.base_url is required")
	}
	if c.Provider.RateLimit < 0 {
		return fmt.Errorf("provider.rate_limit must not be negative")
	}
	if len(c.ActiveTickers()) == 0 {
		return fmt.Errorf("tickers must not be empty")
	}
	if c.Market.UTCOffsetHours < -12 || c.Market.UTCOffsetHours > 14 {
		return fmt.Errorf("market.utc_offset_hours out of range: %v", c.Market.UTCOffsetHours)
	}
	if c.RequestDelay < 0 {
		return fmt.Errorf("request_delay must not be negative")
	}
	return nil
}

// normalizeTickers upper-cases and de-duplicates symbols, keeping the
// configured order.
func normalizeTickers(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
