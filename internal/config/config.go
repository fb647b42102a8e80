package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverSupabase = "supabase"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Supabase  SupabaseConfig  `mapstructure:"supabase"`
	Store     StoreConfig     `mapstructure:"store"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	Insights  InsightsConfig  `mapstructure:"insights"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port               string        `mapstructure:"port"`
	Env                string        `mapstructure:"env"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
}

// SupabaseConfig holds Supabase-specific configuration
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
}

// StoreConfig selects the event store backend
type StoreConfig struct {
	Driver  string        `mapstructure:"driver"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig holds Postgres connection pool configuration
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// RedisConfig holds the optional narrative cache configuration
type RedisConfig struct {
	URL string        `mapstructure:"url"`
	TTL time.Duration `mapstructure:"ttl"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	Backend string `mapstructure:"backend"`
}

// InsightsConfig holds insights engine configuration
type InsightsConfig struct {
	Timezone          string        `mapstructure:"timezone"`
	CacheWriteTimeout time.Duration `mapstructure:"cache_write_timeout"`
}

// RateLimitConfig holds request rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
}

// Load reads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.cors_allowed_origins", []string{})
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("store.driver", DriverPostgres)
	v.SetDefault("store.timeout", 5*time.Second)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.auto_migrate", false)
	v.SetDefault("redis.ttl", 24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.backend", "slog")
	v.SetDefault("insights.timezone", "UTC")
	v.SetDefault("insights.cache_write_timeout", 5*time.Second)
	v.SetDefault("ratelimit.requests_per_minute", 60)

	// Read from environment variables
	v.SetEnvPrefix("MOODTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Also bind to non-prefixed environment variables for backward compatibility
	v.BindEnv("server.port", "MOODTRACK_SERVER_PORT", "PORT")
	v.BindEnv("server.cors_allowed_origins", "MOODTRACK_SERVER_CORS_ALLOWED_ORIGINS", "CORS_ALLOWED_ORIGINS")
	v.BindEnv("supabase.url", "MOODTRACK_SUPABASE_URL", "SUPABASE_URL")
	v.BindEnv("supabase.service_key", "MOODTRACK_SUPABASE_SERVICE_KEY", "SUPABASE_SERVICE_KEY")
	v.BindEnv("database.dsn", "MOODTRACK_DATABASE_DSN", "DATABASE_URL")
	v.BindEnv("redis.url", "MOODTRACK_REDIS_URL", "REDIS_URL")

	// Read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// It's okay if config file doesn't exist
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks that all required configuration values are present
func (c *Config) Validate() error {
	if c.Supabase.URL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.Supabase.ServiceKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required")
	}

	switch c.Store.Driver {
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("DATABASE_URL is required when store.driver is %q", DriverPostgres)
		}
	case DriverSupabase:
	default:
		return fmt.Errorf("unknown store.driver %q (want %q or %q)", c.Store.Driver, DriverPostgres, DriverSupabase)
	}

	if c.Store.Timeout <= 0 {
		return fmt.Errorf("store.timeout must be positive")
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	return nil
}

// Location returns the reference timezone used to bucket check-ins
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Insights.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid insights.timezone %q: %w", c.Insights.Timezone, err)
	}
	return loc, nil
}
