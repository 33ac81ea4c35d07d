package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"MarketScreener/internal/scanner"
	"MarketScreener/internal/strategy"
)

// Price sources.
const (
	SourceYahoo  = "yahoo"
	SourceAlpaca = "alpaca"
	SourceREST   = "rest"
	SourceStatic = "static"
)

// Config holds all application configuration.
type Config struct {
	Timezone    string        `yaml:"timezone"`
	Proxy       string        `yaml:"proxy"`
	SectorsPath string        `yaml:"sectors_path"`
	GroupDelay  time.Duration `yaml:"group_delay"`
	PricePlaces int32         `yaml:"price_places"`

	Fetcher struct {
		Source string `yaml:"source"`
		REST   struct {
			BaseURL string `yaml:"base_url"`
			APIKey  string `yaml:"api_key"`
		} `yaml:"rest"`
		Alpaca struct {
			KeyID     string `yaml:"key_id"`
			SecretKey string `yaml:"secret_key"`
			BaseURL   string `yaml:"base_url"`
			Feed      string `yaml:"feed"`
		} `yaml:"alpaca"`
		Breaker struct {
			Enabled             bool          `yaml:"enabled"`
			ConsecutiveFailures uint32        `yaml:"consecutive_failures"`
			OpenTimeout         time.Duration `yaml:"open_timeout"`
		} `yaml:"breaker"`
	} `yaml:"fetcher"`

	Sentiment struct {
		Enabled  bool          `yaml:"enabled"`
		Language string        `yaml:"language"`
		Region   string        `yaml:"region"`
		Period   string        `yaml:"period"`
		Interval time.Duration `yaml:"interval"`
		Timeout  time.Duration `yaml:"timeout"`
		Positive []string      `yaml:"positive"`
		Negative []string      `yaml:"negative"`
	} `yaml:"sentiment"`

	Sinks struct {
		SQLite struct {
			Path string `yaml:"path"`
		} `yaml:"sqlite"`
		Sheets struct {
			SpreadsheetID string `yaml:"spreadsheet_id"`
			Token         string `yaml:"token"`
		} `yaml:"sheets"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers []string `yaml:"brokers"`
			Topic   string   `yaml:"topic"`
		} `yaml:"kafka"`
		Telegram struct {
			Enabled bool `yaml:"enabled"`
			TopN    int  `yaml:"top_n"`
		} `yaml:"telegram"`
	} `yaml:"sinks"`

	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`

	Database struct {
		SQLitePath string `yaml:"sqlite_path"` // run history; empty disables it
	} `yaml:"database"`

	Schedule struct {
		Cron       string `yaml:"cron"`
		RunOnStart bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	// Profiles are overlays on a preset named by their "base" key.
	Profiles map[string]yaml.Node `yaml:"profiles"`
	Groups   []GroupConfig        `yaml:"groups"`
}

// GroupConfig is one configured ticker group.
type GroupConfig struct {
	Name        string   `yaml:"name"`
	Destination string   `yaml:"destination"`
	Profile     string   `yaml:"profile"`
	Tickers     []string `yaml:"tickers"`
}

// LoadEnvFile loads KEY=VALUE pairs from path into the environment.
// A missing file is not an error; variables already set are kept.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
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
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	set(&c.Telegram.ChatID, "TELEGRAM_CHAT_ID")
	set(&c.Proxy, "HTTPS_PROXY")
	set(&c.Timezone, "SCREENER_TIMEZONE")
	set(&c.Fetcher.Source, "FETCHER_SOURCE")
	set(&c.Fetcher.REST.BaseURL, "REST_BASE_URL")
	set(&c.Fetcher.REST.APIKey, "REST_API_KEY")
	set(&c.Fetcher.Alpaca.KeyID, "APCA_API_KEY_ID")
	set(&c.Fetcher.Alpaca.SecretKey, "APCA_API_SECRET_KEY")
	set(&c.Sinks.SQLite.Path, "SQLITE_PATH")
	set(&c.Database.SQLitePath, "HISTORY_SQLITE_PATH")
	set(&c.Sinks.Sheets.SpreadsheetID, "SHEETS_SPREADSHEET_ID")
	set(&c.Sinks.Sheets.Token, "SHEETS_TOKEN")
	set(&c.Sinks.Redis.Addr, "REDIS_ADDR")
	set(&c.Sinks.Redis.Password, "REDIS_PASSWORD")
	set(&c.Schedule.Cron, "SCREENER_CRON")
	set(&c.Server.Addr, "SERVER_ADDR")
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Sinks.Kafka.Brokers = strings.Split(v, ",")
	}
	if os.Getenv("RUN_ON_START") == "true" {
		c.Schedule.RunOnStart = true
	}
}

func (c *Config) applyDefaults() {
	if c.Timezone == "" {
		c.Timezone = "Asia/Jakarta"
	}
	if c.GroupDelay == 0 {
		c.GroupDelay = 2 * time.Second
	}
	if c.Fetcher.Source == "" {
		c.Fetcher.Source = SourceYahoo
	}
	if c.Fetcher.Breaker.ConsecutiveFailures == 0 {
		c.Fetcher.Breaker.ConsecutiveFailures = 5
	}
	if c.Fetcher.Breaker.OpenTimeout == 0 {
		c.Fetcher.Breaker.OpenTimeout = time.Minute
	}
	if c.Sentiment.Language == "" {
		c.Sentiment.Language = "id"
	}
	if c.Sentiment.Region == "" {
		c.Sentiment.Region = "ID"
	}
	if c.Sentiment.Period == "" {
		c.Sentiment.Period = "7d"
	}
	if c.Sentiment.Interval == 0 {
		c.Sentiment.Interval = time.Second
	}
	if c.Sentiment.Timeout == 0 {
		c.Sentiment.Timeout = 15 * time.Second
	}
	if c.Sinks.Redis.Prefix == "" {
		c.Sinks.Redis.Prefix = "screener:"
	}
	if c.Sinks.Kafka.Topic == "" {
		c.Sinks.Kafka.Topic = "screener.results"
	}
	if c.Sinks.Telegram.TopN == 0 {
		c.Sinks.Telegram.TopN = 5
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 30 16 * * 1-5"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":9090"
	}
	for i := range c.Groups {
		if c.Groups[i].Destination == "" {
			c.Groups[i].Destination = c.Groups[i].Name
		}
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	switch c.Fetcher.Source {
	case SourceYahoo, SourceStatic:
	case SourceREST:
		if c.Fetcher.REST.BaseURL == "" {
			return fmt.Errorf("fetcher.rest.base_url is required")
		}
	case SourceAlpaca:
		if c.Fetcher.Alpaca.KeyID == "" || c.Fetcher.Alpaca.SecretKey == "" {
			return fmt.Errorf("fetcher.alpaca.key_id and secret_key are required")
		}
	default:
		return fmt.Errorf("fetcher.source: unknown source %q", c.Fetcher.Source)
	}
	if c.Sinks.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id are required by the telegram sink")
	}
	if c.Sinks.Sheets.SpreadsheetID != "" && c.Sinks.Sheets.Token == "" {
		return fmt.Errorf("sinks.sheets.token is required")
	}
	if c.PricePlaces < 0 {
		return fmt.Errorf("price_places must not be negative")
	}

	if len(c.Groups) == 0 {
		return fmt.Errorf("at least one group is required")
	}
	seen := make(map[string]bool, len(c.Groups))
	for i, g := range c.Groups {
		if g.Name == "" {
			return fmt.Errorf("groups[%d].name is required", i)
		}
		if seen[g.Name] {
			return fmt.Errorf("group %s: duplicate name", g.Name)
		}
		seen[g.Name] = true
		if len(g.Tickers) == 0 {
			return fmt.Errorf("group %s: tickers are required", g.Name)
		}
		if _, err := c.Profile(g.Profile); err != nil {
			return fmt.Errorf("group %s: %w", g.Name, err)
		}
	}
	return nil
}

// Location returns the configured time zone, UTC when it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Profile resolves a profile by name. Configured profiles start from the
// preset named by their "base" key (minervini when absent) and override only
// the keys they set. Unknown names fall back to the built-in presets.
func (c *Config) Profile(name string) (strategy.Profile, error) {
	node, ok := c.Profiles[name]
	if !ok {
		p, ok := strategy.Preset(name)
		if !ok {
			return strategy.Profile{}, fmt.Errorf("unknown profile %q", name)
		}
		return p, p.Validate()
	}

	var head struct {
		Base string `yaml:"base"`
	}
	if err := node.Decode(&head); err != nil {
		return strategy.Profile{}, fmt.Errorf("profile %s: %w", name, err)
	}
	p, ok := strategy.Preset(head.Base)
	if !ok {
		return strategy.Profile{}, fmt.Errorf("profile %s: unknown base %q", name, head.Base)
	}
	if err := node.Decode(&p); err != nil {
		return strategy.Profile{}, fmt.Errorf("profile %s: %w", name, err)
	}
	p.Name = name
	if err := p.Validate(); err != nil {
		return strategy.Profile{}, err
	}
	return p, nil
}

// ScanGroups resolves the configured groups in order. Only groups named in
// only are returned when it is non-empty.
func (c *Config) ScanGroups(only ...string) ([]scanner.Group, error) {
	want := make(map[string]bool, len(only))
	for _, n := range only {
		want[n] = true
	}
	var groups []scanner.Group
	for _, g := range c.Groups {
		if len(want) > 0 && !want[g.Name] {
			continue
		}
		p, err := c.Profile(g.Profile)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", g.Name, err)
		}
		groups = append(groups, scanner.Group{
			Name:        g.Name,
			Destination: g.Destination,
			Profile:     p,
			Tickers:     g.Tickers,
		})
	}
	if len(want) > 0 && len(groups) != len(want) {
		return nil, fmt.Errorf("unknown group in %v", only)
	}
	return groups, nil
}
