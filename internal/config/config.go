package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Values are read by viper from a config file or environment variables.
type Config struct {
	StoreURL    string `mapstructure:"STORE_URL"`
	StoreAPIKey string `mapstructure:"STORE_API_KEY"`

	HTTPAddr      string        `mapstructure:"HTTP_ADDR"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL"`
	SessionSecret string        `mapstructure:"SESSION_SECRET"`
	CookieSecure  bool          `mapstructure:"COOKIE_SECURE"`

	// Local login, used when the store has no auth service of its own.
	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`

	LogLevel       string `mapstructure:"LOG_LEVEL"`
	ScraperBackend string `mapstructure:"SCRAPER_BACKEND"`

	TelegramBotToken     string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	TelegramAllowedUsers string `mapstructure:"TELEGRAM_ALLOWED_USERS"`
}

var defaults = map[string]any{
	"STORE_URL":              "",
	"STORE_API_KEY":          "",
	"HTTP_ADDR":              ":8080",
	"CACHE_TTL":              "5m",
	"SESSION_TTL":            "24h",
	"SESSION_SECRET":         "",
	"COOKIE_SECURE":          false,
	"ADMIN_EMAIL":            "",
	"ADMIN_PASSWORD":         "",
	"LOG_LEVEL":              "info",
	"SCRAPER_BACKEND":        "http",
	"TELEGRAM_BOT_TOKEN":     "",
	"TELEGRAM_ALLOWED_USERS": "",
}

// LoadConfig reads configuration from path/config.yaml, if present, and the environment.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// AutomaticEnv only reaches keys viper already knows about.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err = config.validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c *Config) validate() error {
	c.StoreURL = strings.TrimSpace(c.StoreURL)
	if c.StoreURL == "" {
		return errors.New("STORE_URL is not set")
	}
	if strings.TrimSpace(c.StoreAPIKey) == "" {
		return errors.New("STORE_API_KEY is not set")
	}
	if c.SessionSecret == "" {
		c.SessionSecret = c.StoreAPIKey
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if _, err := c.AllowedUsers(); err != nil {
		return err
	}
	return nil
}

// AllowedUsers parses TELEGRAM_ALLOWED_USERS into chat user ids.
func (c Config) AllowedUsers() ([]int64, error) {
	var ids []int64
	for _, field := range strings.Split(c.TelegramAllowedUsers, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_ALLOWED_USERS: invalid user id %q", field)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
