package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/elonfeng/paperadar/pkg/trend"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Scoring  trend.Config   `yaml:"scoring"`
	Writer   WriterConfig   `yaml:"writer"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Server   ServerConfig   `yaml:"server"`
	Filter   FilterConfig   `yaml:"filter"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ScheduleConfig configures collection cadence and the daily post slot.
type ScheduleConfig struct {
	CollectInterval    string `yaml:"collect_interval"`
	PostTime           string `yaml:"post_time"` // HH:MM, 24h clock
	Timezone           string `yaml:"timezone"`
	RepostCooldownDays int    `yaml:"repost_cooldown_days"`
}

// ParseCollectInterval returns the collect interval as time.Duration.
func (s ScheduleConfig) ParseCollectInterval() time.Duration {
	d, err := time.ParseDuration(s.CollectInterval)
	if err != nil || d <= 0 {
		return 6 * time.Hour
	}
	return d
}

// ParsePostTime splits the HH:MM post time into hour and minute.
func (s ScheduleConfig) ParsePostTime() (int, int, error) {
	t, err := time.Parse("15:04", s.PostTime)
	if err != nil {
		return 0, 0, fmt.Errorf("parse post_time %q: %w", s.PostTime, err)
	}
	return t.Hour(), t.Minute(), nil
}

// Location resolves the configured timezone, falling back to UTC.
func (s ScheduleConfig) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Cooldown returns how long a picked paper stays out of the running.
func (s ScheduleConfig) Cooldown() time.Duration {
	days := s.RepostCooldownDays
	if days <= 0 {
		days = 14
	}
	return time.Duration(days) * 24 * time.Hour
}

// CatalogConfig holds configuration for all paper sources.
type CatalogConfig struct {
	PapersWithCode PapersWithCodeConfig `yaml:"paperswithcode"`
	ArXiv          ArXivConfig          `yaml:"arxiv"`
	HackerNews     HackerNewsConfig     `yaml:"hackernews"`
}

// PapersWithCodeConfig for the Papers with Code trending source.
type PapersWithCodeConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"` // custom endpoint (optional)
	PerPage int    `yaml:"per_page"`
}

// ArXivConfig for the arXiv API source.
type ArXivConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Categories []string `yaml:"categories"`
	MaxResults int      `yaml:"max_results"`
}

// HackerNewsConfig for the Hacker News front-page source.
type HackerNewsConfig struct {
	Enabled bool `yaml:"enabled"`
	Limit   int  `yaml:"limit"`
}

// WriterConfig configures the LLM post composer. The composer runs only
// when an API key is present.
type WriterConfig struct {
	Provider  string `yaml:"provider"` // "openai" or "anthropic"
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"` // custom endpoint (optional)
	WordLimit int    `yaml:"word_limit"`
	Hashtags  string `yaml:"hashtags"`
}

// AlertsConfig configures alert destinations. MinScore suppresses
// notifications for picks below the threshold.
type AlertsConfig struct {
	MinScore int            `yaml:"min_score"`
	Slack    SlackConfig    `yaml:"slack"`
	Discord  DiscordConfig  `yaml:"discord"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// SlackConfig for Slack webhook alerts.
type SlackConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// DiscordConfig for Discord webhook alerts.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// WebhookConfig for generic webhook alerts.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Secret  string `yaml:"secret"`
}

// TelegramConfig for Telegram bot alerts.
type TelegramConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	ChatID  int64  `yaml:"chat_id"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// FilterConfig configures keyword filtering of fetched papers.
type FilterConfig struct {
	FocusKeywords   []string `yaml:"focus_keywords"`
	ExcludeKeywords []string `yaml:"exclude_keywords"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./paperadar.db"},
		Schedule: ScheduleConfig{
			CollectInterval:    "6h",
			PostTime:           "09:00",
			Timezone:           "UTC",
			RepostCooldownDays: 14,
		},
		Catalog: CatalogConfig{
			PapersWithCode: PapersWithCodeConfig{Enabled: true, PerPage: 25},
			ArXiv: ArXivConfig{
				Enabled:    false,
				Categories: []string{"cs.LG", "cs.CL", "cs.CV", "cs.AI"},
				MaxResults: 25,
			},
			HackerNews: HackerNewsConfig{Enabled: false, Limit: 50},
		},
		Scoring: trend.DefaultConfig(),
		Writer: WriterConfig{
			Provider:  "openai",
			WordLimit: 250,
		},
		Alerts: AlertsConfig{},
		Server: ServerConfig{Port: 8080},
	}
}

// Load reads configuration from a YAML file, applies env var overrides
// and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the daemon cannot run with.
func (c *Config) Validate() error {
	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if _, _, err := c.Schedule.ParsePostTime(); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	if p := c.Writer.Provider; p != "" && p != "openai" && p != "anthropic" {
		return fmt.Errorf("writer: unknown provider %q", p)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server: port %d out of range", c.Server.Port)
	}
	if c.Alerts.Telegram.Enabled && (c.Alerts.Telegram.Token == "" || c.Alerts.Telegram.ChatID == 0) {
		return fmt.Errorf("alerts: telegram enabled without token or chat_id")
	}
	return nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PAPERADAR_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Writer.APIKey = v
		cfg.Writer.Provider = "openai"
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Writer.APIKey = v
		cfg.Writer.Provider = "anthropic"
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Slack.WebhookURL = v
		cfg.Alerts.Slack.Enabled = true
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Discord.WebhookURL = v
		cfg.Alerts.Discord.Enabled = true
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Alerts.Telegram.Token = v
		cfg.Alerts.Telegram.Enabled = true
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Alerts.Telegram.ChatID = id
		}
	}
}
