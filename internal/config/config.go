package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP struct {
		Address         string `yaml:"address"`
		ReadTimeoutSec  int    `yaml:"read_timeout_seconds"`
		WriteTimeoutSec int    `yaml:"write_timeout_seconds"`
		TrustProxy      bool   `yaml:"trust_proxy"`
	} `yaml:"http"`

	Telegram struct {
		Enabled      bool    `yaml:"enabled"`
		BotToken     string  `yaml:"bot_token"`
		Debug        bool    `yaml:"debug"`
		StaffChatIDs []int64 `yaml:"staff_chat_ids"`
	} `yaml:"telegram"`

	Backend struct {
		BaseURL          string `yaml:"base_url"`
		APIKey           string `yaml:"api_key"`
		TimeoutSeconds   int    `yaml:"timeout_seconds"`
		AvailabilityPath string `yaml:"availability_path"`
		CacheTTLSeconds  int    `yaml:"cache_ttl_seconds"`
	} `yaml:"backend"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
		Issuer    string `yaml:"issuer"`
		TTLHours  int    `yaml:"ttl_hours"`
	} `yaml:"auth"`

	Booking struct {
		DefaultStylistID      int64  `yaml:"default_stylist_id"`
		SessionTimeoutMinutes int    `yaml:"session_timeout_minutes"`
		WeekStart             string `yaml:"week_start"`
	} `yaml:"booking"`

	Catalog struct {
		Source           string `yaml:"source"` // "local" or "backend"
		Path             string `yaml:"path"`
		WatchIntervalSec int    `yaml:"watch_interval_seconds"`
	} `yaml:"catalog"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	RateLimit struct {
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
		BotMessagesPerSec float64 `yaml:"bot_messages_per_second"`
	} `yaml:"rate_limit"`

	LogLevel string `yaml:"log_level"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.Catalog.Source == "" {
		c.Catalog.Source = "local"
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = "configs/services.yaml"
	}
	if c.Booking.DefaultStylistID <= 0 {
		c.Booking.DefaultStylistID = 1
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	switch c.Catalog.Source {
	case "local", "backend":
	default:
		return fmt.Errorf("catalog.source: unknown source %q, expected local or backend", c.Catalog.Source)
	}
	if _, err := c.WeekStart(); err != nil {
		return err
	}
	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit values cannot be negative")
	}
	return nil
}

func (c *Config) ReadTimeout() time.Duration {
	if c.HTTP.ReadTimeoutSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.HTTP.ReadTimeoutSec) * time.Second
}

func (c *Config) WriteTimeout() time.Duration {
	if c.HTTP.WriteTimeoutSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.HTTP.WriteTimeoutSec) * time.Second
}

func (c *Config) BackendTimeout() time.Duration {
	if c.Backend.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	if c.Backend.CacheTTLSeconds < 0 {
		return 0
	}
	if c.Backend.CacheTTLSeconds == 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Backend.CacheTTLSeconds) * time.Second
}

func (c *Config) SessionTimeout() time.Duration {
	if c.Booking.SessionTimeoutMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.Booking.SessionTimeoutMinutes) * time.Minute
}

func (c *Config) TokenTTL() time.Duration {
	if c.Auth.TTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Auth.TTLHours) * time.Hour
}

func (c *Config) CatalogWatchInterval() time.Duration {
	if c.Catalog.WatchIntervalSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Catalog.WatchIntervalSec) * time.Second
}

func (c *Config) RequestsPerSecond() float64 {
	if c.RateLimit.RequestsPerSecond <= 0 {
		return 10
	}
	return c.RateLimit.RequestsPerSecond
}

func (c *Config) RequestBurst() int {
	if c.RateLimit.Burst <= 0 {
		return 20
	}
	return c.RateLimit.Burst
}

func (c *Config) BotMessagesPerSecond() float64 {
	if c.RateLimit.BotMessagesPerSec <= 0 {
		return 25
	}
	return c.RateLimit.BotMessagesPerSec
}

// WeekStart returns the first column of the calendar grid.
func (c *Config) WeekStart() (time.Weekday, error) {
	switch c.Booking.WeekStart {
	case "", "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	}
	return time.Sunday, fmt.Errorf("booking.week_start: unknown value %q, expected sunday or monday", c.Booking.WeekStart)
}
