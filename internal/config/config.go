package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"StockDuel/internal/collector"
	"StockDuel/internal/discovery"
	"StockDuel/internal/model"
	"StockDuel/internal/scheduler"
)

// DefaultPath is used when neither --config nor CONFIG_PATH is given.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Name              string        `yaml:"name" validate:"oneof=yahoo mock"`
		RequestsPerSecond float64       `yaml:"requests_per_second" validate:"gte=0"`
		Timeout           time.Duration `yaml:"timeout" validate:"gte=0"`
	} `yaml:"data_source"`
	Discovery struct {
		ScreenerCount int                                      `yaml:"screener_count" validate:"min=1,max=250"`
		Countries     map[string]discovery.Country             `yaml:"countries"`
		Indexes       map[model.TickerSymbol]collector.IndexPage `yaml:"indexes"`
	} `yaml:"discovery"`
	Advisor struct {
		Provider string        `yaml:"provider" validate:"oneof=gemini anthropic none"`
		APIKey   string        `yaml:"api_key"`
		Model    string        `yaml:"model"`
		Timeout  time.Duration `yaml:"timeout" validate:"gte=0"`
	} `yaml:"advisor"`
	Analysis struct {
		TiePolicy             string       `yaml:"tie_policy" validate:"oneof=second none"`
		SignificanceThreshold float64      `yaml:"significance_threshold" validate:"gt=0"`
		ParallelFetch         *bool        `yaml:"parallel_fetch"`
		DefaultPeriod         model.Period `yaml:"default_period" validate:"oneof=3mo 6mo 1y 5y 10y"`
	} `yaml:"analysis"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		WatchCron string           `yaml:"watch_cron"`
		Pairs     []scheduler.Pair `yaml:"pairs" validate:"dive"`
	} `yaml:"schedule"`
	Log struct {
		Level  string `yaml:"level" validate:"oneof=trace debug info warn error"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
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
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ADVISOR_PROVIDER"); v != "" {
		c.Advisor.Provider = strings.ToLower(v)
	}
	switch c.Advisor.Provider {
	case "anthropic":
		if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
			c.Advisor.APIKey = v
		}
	case "", "gemini":
		if v := firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY"); v != "" {
			c.Advisor.APIKey = v
		}
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("DATA_SOURCE"); v != "" {
		c.DataSource.Name = strings.ToLower(v)
	}
	if v := os.Getenv("TIE_POLICY"); v != "" {
		c.Analysis.TiePolicy = strings.ToLower(v)
	}
	if v := os.Getenv("SIGNIFICANCE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Analysis.SignificanceThreshold = f
		}
	}
	if v := os.Getenv("CRON_WATCH"); v != "" {
		c.Schedule.WatchCron = v
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func (c *Config) applyDefaults() {
	if c.DataSource.Name == "" {
		c.DataSource.Name = "yahoo"
	}
	if c.DataSource.RequestsPerSecond == 0 {
		c.DataSource.RequestsPerSecond = 2
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 30 * time.Second
	}
	if c.Discovery.ScreenerCount == 0 {
		c.Discovery.ScreenerCount = discovery.DefaultScreenerCount
	}
	if c.Discovery.Countries == nil {
		c.Discovery.Countries = DefaultCountries()
	}
	if c.Discovery.Indexes == nil {
		c.Discovery.Indexes = DefaultIndexes()
	}
	if c.Advisor.Provider == "" {
		c.Advisor.Provider = "gemini"
	}
	if c.Advisor.Timeout == 0 {
		c.Advisor.Timeout = 60 * time.Second
	}
	if c.Analysis.TiePolicy == "" {
		c.Analysis.TiePolicy = "second"
	}
	if c.Analysis.SignificanceThreshold == 0 {
		c.Analysis.SignificanceThreshold = 0.5
	}
	if c.Analysis.ParallelFetch == nil {
		on := true
		c.Analysis.ParallelFetch = &on
	}
	if c.Analysis.DefaultPeriod == "" {
		c.Analysis.DefaultPeriod = model.Period1Year
	}
	if c.Schedule.WatchCron == "" {
		c.Schedule.WatchCron = "0 30 16 * * 1-5"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// DefaultCountries is the built-in country table. Yahoo only offers the
// predefined most-actives screener for the US market; other countries go
// straight to their index.
func DefaultCountries() map[string]discovery.Country {
	return map[string]discovery.Country{
		"US": {Screener: "most_actives", Index: "^GSPC"},
		"IN": {Index: "^NSEI"},
		"GB": {Index: "^FTSE"},
		"DE": {Index: "^GDAXI"},
	}
}

// DefaultIndexes maps the fallback indexes to their Wikipedia constituents tables.
func DefaultIndexes() map[model.TickerSymbol]collector.IndexPage {
	return map[model.TickerSymbol]collector.IndexPage{
		"^GSPC": {
			URL:          "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies",
			SymbolHeader: "Symbol",
			DotToDash:    true,
		},
		"^NDX": {
			URL:          "https://en.wikipedia.org/wiki/Nasdaq-100",
			SymbolHeader: "Ticker",
			DotToDash:    true,
		},
		"^NSEI": {
			URL:          "https://en.wikipedia.org/wiki/NIFTY_50",
			SymbolHeader: "Symbol",
			Suffix:       ".NS",
		},
		"^FTSE": {
			URL:          "https://en.wikipedia.org/wiki/FTSE_100_Index",
			SymbolHeader: "Ticker",
			Suffix:       ".L",
			DotToDash:    true,
		},
		"^GDAXI": {
			URL:          "https://en.wikipedia.org/wiki/DAX",
			SymbolHeader: "Ticker",
		},
	}
}

// Parallel reports whether the four analysis fetches run concurrently.
func (c *Config) Parallel() bool {
	return c.Analysis.ParallelFetch == nil || *c.Analysis.ParallelFetch
}

var validate = validator.New()

// Validate checks field constraints and cross references.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config: %s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("config: %w", err)
	}
	for code, country := range c.Discovery.Countries {
		if country.Screener == "" && country.Index == "" {
			return fmt.Errorf("discovery.countries.%s needs a screener or an index", code)
		}
		if country.Index != "" {
			if _, ok := c.Discovery.Indexes[country.Index]; !ok {
				return fmt.Errorf("discovery.countries.%s: no page for index %s", code, country.Index)
			}
		}
	}
	for sym, page := range c.Discovery.Indexes {
		if page.URL == "" || page.SymbolHeader == "" {
			return fmt.Errorf("discovery.indexes.%s needs url and symbol_header", sym)
		}
	}
	return c.normalizePairs()
}

// ValidateWatch checks the settings watch mode needs on top of Validate.
func (c *Config) ValidateWatch() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Schedule.WatchCron); err != nil {
		return fmt.Errorf("schedule.watch_cron: %w", err)
	}
	for i, p := range c.Schedule.Pairs {
		if strings.EqualFold(strings.TrimSpace(string(p.A)), strings.TrimSpace(string(p.B))) {
			return fmt.Errorf("schedule.pairs[%d]: %s is compared with itself", i, p.A)
		}
	}
	return c.normalizePairs()
}

// normalizePairs rewrites pair periods given as labels ("6 months") to their codes.
func (c *Config) normalizePairs() error {
	for i, p := range c.Schedule.Pairs {
		if p.Period == "" {
			continue
		}
		period, err := model.ParsePeriod(string(p.Period))
		if err != nil {
			return fmt.Errorf("schedule.pairs[%d]: %w", i, err)
		}
		c.Schedule.Pairs[i].Period = period
	}
	return nil
}
