package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration, loaded once at startup
// and never mutated afterwards.
type Config struct {
	Profiles []Profile     `yaml:"profile"`
	Telegram *Telegram     `yaml:"telegram"`
	Mail     *Mail         `yaml:"mail"`
	Data     Data          `yaml:"data"`
	Browser  BrowserConfig `yaml:"browser"`
}

// Profile is one configured marketplace account: credentials, discount
// rules and the minimum age a listing must reach before it is touched.
type Profile struct {
	Name     string         `yaml:"name"`
	User     string         `yaml:"user"`
	Pass     string         `yaml:"pass"`
	Discount []DiscountRule `yaml:"discount"`
	Interval Interval       `yaml:"interval"`
	Line     Line           `yaml:"line"`
}

// DiscountRule decides whether and by how much to lower a price.
// FavoriteCount is the popularity threshold, Step the reduction in yen,
// Threshold the price floor below which no reduction happens.
type DiscountRule struct {
	FavoriteCount int `yaml:"favorite_count"`
	Step          int `yaml:"step"`
	Threshold     int `yaml:"threshold"`
}

// Interval is the minimum elapsed time since a listing was last
// modified before it becomes eligible again.
type Interval struct {
	Hour int `yaml:"hour"`
}

// Line holds the LINE login used for the site's federated sign-in.
type Line struct {
	User string `yaml:"user"`
	Pass string `yaml:"pass"`
}

// Telegram configures the chat notification sink.
type Telegram struct {
	BotToken         string `yaml:"bot_token"`
	ChatID           int64  `yaml:"chat_id"`
	ErrorIntervalMin int    `yaml:"error_interval_min"`
}

// ErrorInterval returns the minimum spacing between repeated error
// notifications of the same title.
func (t *Telegram) ErrorInterval() time.Duration {
	return time.Duration(t.ErrorIntervalMin) * time.Minute
}

// Mail configures the SMTP sink used for the run summary.
type Mail struct {
	SMTP SMTP   `yaml:"smtp"`
	User string `yaml:"user"`
	Pass string `yaml:"pass"`
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

type SMTP struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Data holds the on-disk paths the bot writes to.
type Data struct {
	Profile string `yaml:"profile"`
	Dump    string `yaml:"dump"`
}

type BrowserConfig struct {
	Headless       bool `yaml:"headless"`
	TimeoutSeconds int  `yaml:"timeout_seconds"`
}

func (b BrowserConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// Load reads the YAML config file at path. ${VAR} references in the
// file are expanded from the environment before parsing, so secrets can
// stay out of the file itself.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.Expand(string(raw), os.Getenv)

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Profiles) == 0 {
		return fmt.Errorf("at least one profile is required")
	}

	for i, p := range c.Profiles {
		if p.Name == "" {
			return fmt.Errorf("profile[%d]: name is required", i)
		}
		if len(p.Discount) == 0 {
			return fmt.Errorf("profile %q: at least one discount rule is required", p.Name)
		}
		for j, d := range p.Discount {
			if d.FavoriteCount < 0 {
				return fmt.Errorf("profile %q: discount[%d]: favorite_count must not be negative", p.Name, j)
			}
			if d.Step <= 0 {
				return fmt.Errorf("profile %q: discount[%d]: step must be positive", p.Name, j)
			}
			if d.Threshold <= 0 {
				return fmt.Errorf("profile %q: discount[%d]: threshold must be positive", p.Name, j)
			}
		}
		if p.Interval.Hour < 0 {
			return fmt.Errorf("profile %q: interval.hour must not be negative", p.Name)
		}
	}

	if c.Data.Profile == "" {
		return fmt.Errorf("data.profile is required")
	}
	if c.Data.Dump == "" {
		return fmt.Errorf("data.dump is required")
	}

	if c.Telegram != nil && c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required when telegram is configured")
	}

	return nil
}

// LogSummary logs the loaded configuration with secrets elided.
// A profile without a favorite_count=0 catch-all rule can leave
// low-popularity listings untouched forever, so that gets a warning.
func (c *Config) LogSummary(logger *slog.Logger) {
	logger.Info("configuration loaded",
		"profiles", len(c.Profiles),
		"telegram", c.Telegram != nil,
		"mail", c.Mail != nil,
		"profile_dir", c.Data.Profile,
		"dump_dir", c.Data.Dump,
	)

	for _, p := range c.Profiles {
		logger.Info("profile",
			"name", p.Name,
			"rules", len(p.Discount),
			"interval_hours", p.Interval.Hour,
		)

		hasCatchAll := false
		for _, d := range p.Discount {
			if d.FavoriteCount == 0 {
				hasCatchAll = true
				break
			}
		}
		if !hasCatchAll {
			logger.Warn("profile has no favorite_count=0 rule; unpopular listings will never be discounted",
				"name", p.Name)
		}
	}
}
