package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// CacheConfig holds query cache settings.
type CacheConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string
}

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Logging  LoggingConfig
}

// LoadConfig reads configuration from the environment with sensible defaults.
// A .env file is honored when present.
func LoadConfig() (*Config, error) {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getenvDefault("SERVER_HOST", "0.0.0.0"),
			Port:         getenvInt("SERVER_PORT", 8080),
			ReadTimeout:  getenvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getenvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getenvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getenvDefault("DB_HOST", "localhost"),
			Port:            getenvInt("DB_PORT", 5432),
			User:            getenvDefault("DB_USER", "postgres"),
			Password:        getenvDefault("DB_PASSWORD", "postgres"),
			Database:        getenvDefault("DB_NAME", "leituras"),
			SSLMode:         getenvDefault("DB_SSLMODE", "disable"),
			MaxOpenConns:    getenvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getenvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getenvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getenvDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Cache: CacheConfig{
			TTL:           getenvDuration("CACHE_TTL", time.Minute),
			SweepInterval: getenvDuration("CACHE_SWEEP_INTERVAL", 5*time.Minute),
		},
		Logging: LoggingConfig{
			Level: getenvDefault("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("db max open conns must be positive, got %d", c.Database.MaxOpenConns)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %s", c.Cache.TTL)
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
