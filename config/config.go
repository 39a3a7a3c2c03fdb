package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config application-wide configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Booking  BookingConfig  `mapstructure:"booking"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Campaign CampaignConfig `mapstructure:"campaign"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// CORSConfig cross-origin settings
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL settings
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

// DSN builds the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT settings
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	Issuer         string        `mapstructure:"issuer"`
}

// LogConfig logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// BookingConfig appointment engine settings
type BookingConfig struct {
	MaxReschedules      int    `mapstructure:"max_reschedules"`
	MaxAvailabilityDays int    `mapstructure:"max_availability_days"`
	NumberPrefix        string `mapstructure:"number_prefix"`
	DefaultPageSize     int    `mapstructure:"default_page_size"`
	PublicRateLimit     int    `mapstructure:"public_rate_limit"` // requests per minute per IP
	Timezone            string `mapstructure:"timezone"`          // wall clock of slot times
}

// PricingConfig pricing engine settings
type PricingConfig struct {
	DefaultCurrency      string `mapstructure:"default_currency"`
	VersionBumpThreshold int    `mapstructure:"version_bump_threshold"` // percent
}

// CampaignConfig campaign engine settings
type CampaignConfig struct {
	ValidationCodeTTL time.Duration `mapstructure:"validation_code_ttl"`
}

// JobsConfig cron settings
type JobsConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	UsageExpirySpec      string `mapstructure:"usage_expiry_spec"`
	AppointmentSweepSpec string `mapstructure:"appointment_sweep_spec"`
	CompleteAfterHours   int    `mapstructure:"complete_after_hours"`
}

// Load reads configuration from file and environment.
// Precedence: env > file > defaults
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── defaults ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "okulpazar")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Europe/Istanbul")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_ttl", "15m")
	v.SetDefault("auth.issuer", "okulpazar")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("booking.max_reschedules", 3)
	v.SetDefault("booking.max_availability_days", 62)
	v.SetDefault("booking.number_prefix", "APT")
	v.SetDefault("booking.default_page_size", 20)
	v.SetDefault("booking.public_rate_limit", 30)
	v.SetDefault("booking.timezone", "Europe/Istanbul")

	v.SetDefault("pricing.default_currency", "TRY")
	v.SetDefault("pricing.version_bump_threshold", 10)

	v.SetDefault("campaign.validation_code_ttl", "48h")

	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.usage_expiry_spec", "@every 15m")
	v.SetDefault("jobs.appointment_sweep_spec", "0 3 * * *")
	v.SetDefault("jobs.complete_after_hours", 24)

	// ── config file ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── environment ──
	v.SetEnvPrefix("OKUL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings the process cannot start without
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: auth.jwt_secret must not be empty")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("config: auth.jwt_secret must be at least 16 characters")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port must be between 1 and 65535")
	}
	if c.Booking.MaxReschedules < 0 {
		return fmt.Errorf("config: booking.max_reschedules must not be negative")
	}
	if _, err := time.LoadLocation(c.Booking.Timezone); err != nil {
		return fmt.Errorf("config: booking.timezone: %w", err)
	}
	if c.Pricing.VersionBumpThreshold <= 0 {
		return fmt.Errorf("config: pricing.version_bump_threshold must be positive")
	}
	return nil
}
