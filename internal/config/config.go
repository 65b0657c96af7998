// Package config provides configuration management for the trading journal.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"trade-journal/internal/logging"
)

// Database drivers.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config holds all application configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// DatabaseConfig selects and configures the record store.
type DatabaseConfig struct {
	Driver        string `mapstructure:"driver"` // sqlite, mongo
	Path          string `mapstructure:"path"`
	MongoURI      string `mapstructure:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database"`
}

// ServerConfig holds HTTP API configuration.
type ServerConfig struct {
	Address        string        `mapstructure:"address"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	RateLimit      float64       `mapstructure:"rate_limit"` // requests per second per user, 0 disables
	RateBurst      int           `mapstructure:"rate_burst"`
}

// CacheConfig holds the strategy list cache settings.
type CacheConfig struct {
	StrategyTTL      time.Duration `mapstructure:"strategy_ttl"`
	StrategyCapacity int           `mapstructure:"strategy_capacity"`
}

// AnalyticsConfig holds aggregation settings.
type AnalyticsConfig struct {
	Timezone string `mapstructure:"timezone"` // month and day buckets
}

// LoggingConfig mirrors logging.LogConfig for the config file.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// LogConfig converts the file settings into a logging.LogConfig.
func (l LoggingConfig) LogConfig() logging.LogConfig {
	return logging.LogConfig{
		Level:      l.Level,
		Console:    l.Console,
		File:       l.File,
		FilePath:   l.FilePath,
		MaxSize:    l.MaxSize,
		MaxBackups: l.MaxBackups,
		MaxAge:     l.MaxAge,
	}
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/trade-journal"
	}
	return filepath.Join(home, ".config", "trade-journal")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	// A .env file is optional; values already in the environment win.
	_ = godotenv.Load(filepath.Join(configDir, ".env"))
	_ = godotenv.Load()

	cfg := &Config{}
	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", filepath.Join(configDir, "journal.db"))
	v.SetDefault("database.mongo_database", "trade-journal")
	v.SetDefault("server.address", "127.0.0.1:8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("cache.strategy_ttl", 5*time.Minute)
	v.SetDefault("cache.strategy_capacity", 1024)
	v.SetDefault("analytics.timezone", "UTC")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "journal.log"))
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 7)
	v.SetDefault("logging.max_age", 30)
}

func loadConfigFile(configDir, name string, target *Config) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		// Config file not found: write a template and continue on defaults.
		if err := createTemplateConfig(configDir, name); err != nil {
			return err
		}
	}

	return v.Unmarshal(target)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TJ_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("TJ_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("TJ_MONGO_URI"); v != "" {
		cfg.Database.MongoURI = v
	}
	if v := os.Getenv("TJ_JWT_SECRET"); v != "" {
		cfg.Server.JWTSecret = v
	}
	if v := os.Getenv("TJ_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("TJ_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case DriverMongo:
		if c.Database.MongoURI == "" {
			return fmt.Errorf("database.mongo_uri is required for the mongo driver")
		}
	default:
		return fmt.Errorf("invalid database driver: %q (must be 'sqlite' or 'mongo')", c.Database.Driver)
	}

	if c.Cache.StrategyTTL <= 0 {
		return fmt.Errorf("cache.strategy_ttl must be positive")
	}
	if c.Cache.StrategyCapacity <= 0 {
		return fmt.Errorf("cache.strategy_capacity must be positive")
	}

	if _, err := time.LoadLocation(c.Analytics.Timezone); err != nil {
		return fmt.Errorf("invalid analytics.timezone %q: %w", c.Analytics.Timezone, err)
	}

	return nil
}

// ValidateServer checks the settings only the HTTP server needs.
func (c *Config) ValidateServer() error {
	if c.Server.JWTSecret == "" {
		return fmt.Errorf("server.jwt_secret is required to serve the API")
	}
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit cannot be negative")
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		return fmt.Errorf("server.rate_burst must be at least 1 when rate limiting is enabled")
	}
	return nil
}

// Location returns the analytics bucketing location, UTC if unset.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Analytics.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
