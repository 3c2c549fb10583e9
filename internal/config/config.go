package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the FeedGate server.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Admission AdmissionConfig
}

type ServerConfig struct {
	Port int
	Env  string
	// PublicHost is the host the dashboard is served from; internal
	// endpoints only accept browser requests originating from it.
	PublicHost string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

type AdmissionConfig struct {
	// AdminTokenHash is the bcrypt hash of the admin API token.
	AdminTokenHash    string
	IdentityCacheTTL  time.Duration
	IdentityCacheSize int
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:       envInt("FEEDGATE_PORT", 8080),
			Env:        envString("FEEDGATE_ENV", "development"),
			PublicHost: os.Getenv("FEEDGATE_PUBLIC_HOST"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Admission: AdmissionConfig{
			AdminTokenHash:    os.Getenv("FEEDGATE_ADMIN_TOKEN_HASH"),
			IdentityCacheTTL:  envDuration("FEEDGATE_IDENTITY_CACHE_TTL", 30*time.Second),
			IdentityCacheSize: envInt("FEEDGATE_IDENTITY_CACHE_SIZE", 1024),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Server.PublicHost == "" {
		return fmt.Errorf("FEEDGATE_PUBLIC_HOST is required")
	}
	if strings.Contains(c.Server.PublicHost, "://") {
		return fmt.Errorf("FEEDGATE_PUBLIC_HOST must be a bare host, not a URL; got %q", c.Server.PublicHost)
	}

	if c.Admission.AdminTokenHash == "" {
		return fmt.Errorf("FEEDGATE_ADMIN_TOKEN_HASH is required")
	}
	if !strings.HasPrefix(c.Admission.AdminTokenHash, "$2") {
		return fmt.Errorf("FEEDGATE_ADMIN_TOKEN_HASH must be a bcrypt hash")
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
