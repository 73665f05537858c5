// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Server   ServerConfig
	Logging  LoggingConfig
	CORS     CORSConfig
	JWT      JWTConfig
	Study    StudyConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds the secret used to verify access tokens
type JWTConfig struct {
	Secret string
}

// StudyConfig holds scheduling engine settings
type StudyConfig struct {
	DueCacheTTL time.Duration
	SessionTTL  time.Duration
	// RandomSeed makes exercise and distractor choice reproducible; nil means time-seeded
	RandomSeed *int64
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	// Database configuration
	var err error
	if cfg.Database.Host, err = requireEnv("DB_HOST"); err != nil {
		return nil, err
	}
	dbPortStr, err := requireEnv("DB_PORT")
	if err != nil {
		return nil, err
	}
	if cfg.Database.Port, err = strconv.Atoi(dbPortStr); err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	if cfg.Database.User, err = requireEnv("DB_USER"); err != nil {
		return nil, err
	}
	if cfg.Database.Password, err = requireEnv("DB_PASSWORD"); err != nil {
		return nil, err
	}
	if cfg.Database.DBName, err = requireEnv("DB_NAME"); err != nil {
		return nil, err
	}

	// Redis configuration
	cfg.Redis.Host = envOrDefault("REDIS_HOST", "localhost")
	if cfg.Redis.Port, err = strconv.Atoi(envOrDefault("REDIS_PORT", "6379")); err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD") // optional
	if cfg.Redis.DB, err = strconv.Atoi(envOrDefault("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	// Server configuration
	if cfg.Server.Port, err = strconv.Atoi(envOrDefault("SERVER_PORT", "8080")); err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	// Logging configuration
	cfg.Logging.Level = envOrDefault("LOG_LEVEL", "info")

	// CORS configuration
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// JWT configuration
	if cfg.JWT.Secret, err = requireEnv("JWT_SECRET"); err != nil {
		return nil, err
	}

	// Study configuration
	if cfg.Study.DueCacheTTL, err = time.ParseDuration(envOrDefault("STUDY_DUE_CACHE_TTL", "30s")); err != nil {
		return nil, fmt.Errorf("invalid STUDY_DUE_CACHE_TTL: %w", err)
	}
	if cfg.Study.SessionTTL, err = time.ParseDuration(envOrDefault("STUDY_SESSION_TTL", "2h")); err != nil {
		return nil, fmt.Errorf("invalid STUDY_SESSION_TTL: %w", err)
	}
	if cfg.Study.DueCacheTTL <= 0 || cfg.Study.SessionTTL <= 0 {
		return nil, fmt.Errorf("STUDY_DUE_CACHE_TTL and STUDY_SESSION_TTL must be positive")
	}
	if seedStr := os.Getenv("STUDY_RANDOM_SEED"); seedStr != "" {
		seed, err := strconv.ParseInt(seedStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid STUDY_RANDOM_SEED: %w", err)
		}
		cfg.Study.RandomSeed = &seed
	}

	return cfg, nil
}

// DSN returns the database connection string
//
// Migration files hold several statements each, so the connection allows multi-statement execution.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&multiStatements=true",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

// RedisAddr returns the host:port address of the Redis server
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func requireEnv(name string) (string, error) {
	value := os.Getenv(name)
	if value == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return value, nil
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// parseOrigins splits a comma-separated origin list, defaulting to all origins
func parseOrigins(raw string) []string {
	origins := make([]string, 0)
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
