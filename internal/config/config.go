package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	ierr "github.com/pointloop/pointloop/internal/errors"
)

// Configuration holds the full service configuration. Values are sourced
// from config.yaml when present and overridden by POINTLOOP_* environment
// variables.
type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment"`
	Server     ServerConfig     `mapstructure:"server"`
	Shopify    ShopifyConfig    `mapstructure:"shopify"`
	Loyalty    LoyaltyConfig    `mapstructure:"loyalty"`
	Points     PointsConfig     `mapstructure:"points"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Events     EventsConfig     `mapstructure:"events"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
}

type DeploymentConfig struct {
	Mode string `mapstructure:"mode" validate:"required"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ShopifyConfig carries the webhook shared secret used for HMAC
// verification. The secret is read-only, process-wide state.
type ShopifyConfig struct {
	WebhookSecret string `mapstructure:"webhook_secret"`
}

// LoyaltyConfig configures the outbound client for the loyalty backend.
type LoyaltyConfig struct {
	BaseURL  string        `mapstructure:"base_url" validate:"required,url"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
	RetryMax int           `mapstructure:"retry_max"`
}

// PointsConfig holds the deterministic earning rules. CategoryMultipliers
// maps a normalized product type to its points multiplier; only entries
// above 1 contribute a bonus.
type PointsConfig struct {
	MinimumOrderAmount  float64            `mapstructure:"minimum_order_amount"`
	LargeOrderThreshold float64            `mapstructure:"large_order_threshold"`
	LargeOrderBonusRate float64            `mapstructure:"large_order_bonus_rate"`
	CategoryMultipliers map[string]float64 `mapstructure:"category_multipliers"`
}

type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	UseTLS   bool          `mapstructure:"use_tls"`
	PoolSize int           `mapstructure:"pool_size"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	OrderLookupTTL  time.Duration `mapstructure:"order_lookup_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// EventsConfig configures the loyalty activity stream publisher.
type EventsConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Stream        string `mapstructure:"stream"`
	ConsumerGroup string `mapstructure:"consumer_group"`
	MaxLen        int64  `mapstructure:"max_len"`
}

type LoggingConfig struct {
	Level          string `mapstructure:"level"`
	FluentdEnabled bool   `mapstructure:"fluentd_enabled"`
	FluentdHost    string `mapstructure:"fluentd_host"`
	FluentdPort    int    `mapstructure:"fluentd_port"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// NewConfig loads, defaults and validates the configuration.
func NewConfig() (*Configuration, error) {
	// Load .env for local development; missing file is fine.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("POINTLOOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, ierr.WithError(err).
				WithHint("Failed to read configuration file").
				Mark(ierr.ErrSystem)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to parse configuration").
			Mark(ierr.ErrSystem)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration against struct tags.
func (c *Configuration) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid configuration").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", "api")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("loyalty.base_url", "http://localhost:8000")
	v.SetDefault("loyalty.timeout", 10*time.Second)
	v.SetDefault("loyalty.retry_max", 2)
	v.SetDefault("points.minimum_order_amount", 1.0)
	v.SetDefault("points.large_order_threshold", 100.0)
	v.SetDefault("points.large_order_bonus_rate", 0.1)
	v.SetDefault("points.category_multipliers", map[string]float64{
		"electronics": 2.0,
		"books":       1.5,
		"clothing":    1.2,
	})
	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.timeout", 5*time.Second)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.order_lookup_ttl", 5*time.Minute)
	v.SetDefault("cache.cleanup_interval", 10*time.Minute)
	v.SetDefault("events.enabled", false)
	v.SetDefault("events.stream", "loyalty:events")
	v.SetDefault("events.consumer_group", "loyalty-processors")
	v.SetDefault("events.max_len", 10000)
	v.SetDefault("logging.level", "info")
	v.SetDefault("sentry.sample_rate", 1.0)
}

// GetDefaultConfig returns a configuration suitable for tests and scripts
// without reading any external source.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: "test"},
		Server:     ServerConfig{Address: ":8080"},
		Shopify:    ShopifyConfig{WebhookSecret: "test-webhook-secret"},
		Loyalty: LoyaltyConfig{
			BaseURL:  "http://localhost:8000",
			Timeout:  10 * time.Second,
			RetryMax: 0,
		},
		Points: PointsConfig{
			MinimumOrderAmount:  1.0,
			LargeOrderThreshold: 100.0,
			LargeOrderBonusRate: 0.1,
			CategoryMultipliers: map[string]float64{
				"electronics": 2.0,
				"books":       1.5,
				"clothing":    1.2,
			},
		},
		Cache: CacheConfig{
			Enabled:         true,
			OrderLookupTTL:  5 * time.Minute,
			CleanupInterval: 10 * time.Minute,
		},
		Events: EventsConfig{
			Stream:        "loyalty:events",
			ConsumerGroup: "loyalty-processors",
			MaxLen:        10000,
		},
		Logging: LoggingConfig{Level: "debug"},
	}
}
