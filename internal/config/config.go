package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	API struct {
		BaseURL   string        `yaml:"base_url"`
		AuthToken string        `yaml:"auth_token"`
		UserAgent string        `yaml:"user_agent"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"api"`
	Strategy struct {
		MaxPaybackHours   float64 `yaml:"max_payback_hours"`
		SecondOrderBuffer float64 `yaml:"second_order_buffer"`
		SafetyFactor      float64 `yaml:"safety_factor"`
		TopN              int     `yaml:"top_n"`
	} `yaml:"strategy"`
	Schedule struct {
		KeepAlive string        `yaml:"keep_alive"`
		JitterMin time.Duration `yaml:"jitter_min"`
		JitterMax time.Duration `yaml:"jitter_max"`
	} `yaml:"schedule"`
	State struct {
		File string `yaml:"file"`
	} `yaml:"state"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
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

	// Environment variable overrides
	if v := os.Getenv("HK_AUTH"); v != "" {
		cfg.API.AuthToken = v
	}
	if v := os.Getenv("HK_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("STATE_FILE"); v != "" {
		cfg.State.File = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("MAX_PAYBACK_HOURS"); v != "" {
		var hours float64
		if _, err := fmt.Sscanf(v, "%f", &hours); err == nil {
			cfg.Strategy.MaxPaybackHours = hours
		}
	}

	// Defaults
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://api.hamsterkombatgame.io/clicker"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 30 * time.Second
	}
	if cfg.Strategy.MaxPaybackHours == 0 {
		cfg.Strategy.MaxPaybackHours = 2000
	}
	if cfg.Strategy.SecondOrderBuffer == 0 {
		cfg.Strategy.SecondOrderBuffer = 50_000_000
	}
	if cfg.Strategy.SafetyFactor == 0 {
		cfg.Strategy.SafetyFactor = 1.0
	}
	if cfg.Strategy.TopN == 0 {
		cfg.Strategy.TopN = 20
	}
	if cfg.Schedule.KeepAlive == "" {
		cfg.Schedule.KeepAlive = "@every 3h"
	}
	if cfg.Schedule.JitterMin == 0 && cfg.Schedule.JitterMax == 0 {
		cfg.Schedule.JitterMin = 5 * time.Second
		cfg.Schedule.JitterMax = 60 * time.Second
	}
	if cfg.State.File == "" {
		cfg.State.File = "~/.hk_bot.json"
	}
	cfg.State.File = expandHome(cfg.State.File)
	cfg.Database.SQLitePath = expandHome(cfg.Database.SQLitePath)

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.API.AuthToken == "" {
		return fmt.Errorf("api.auth_token is required (or set HK_AUTH)")
	}
	if c.Strategy.MaxPaybackHours <= 0 {
		return fmt.Errorf("strategy.max_payback_hours must be positive")
	}
	if c.Strategy.SecondOrderBuffer < 0 {
		return fmt.Errorf("strategy.second_order_buffer must not be negative")
	}
	if c.Strategy.SafetyFactor < 1 {
		return fmt.Errorf("strategy.safety_factor must be at least 1")
	}
	if c.Schedule.JitterMin < 0 || c.Schedule.JitterMax < c.Schedule.JitterMin {
		return fmt.Errorf("schedule.jitter_min must be within [0, jitter_max]")
	}
	if _, err := c.KeepAliveSchedule(); err != nil {
		return err
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// KeepAliveSchedule parses schedule.keep_alive as a cron spec.
func (c *Config) KeepAliveSchedule() (cron.Schedule, error) {
	s, err := cron.ParseStandard(c.Schedule.KeepAlive)
	if err != nil {
		return nil, fmt.Errorf("schedule.keep_alive: %w", err)
	}
	return s, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
