// Package config provides environment configuration loading for the
// ontology reasoning service.
//
// Configuration is loaded from environment variables with sensible
// defaults for development.
//
// Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load configuration:", err)
//	}
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig
	Graph     GraphConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	NATS      NATSConfig
	Auth      AuthConfig
	Server    ServerConfig
	RateLimit RateLimitConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Environment Environment
	LogLevel    string
	LogFormat   string
}

// GraphConfig holds the Traversal Engine's bounded-execution knobs.
type GraphConfig struct {
	// MaxDepth bounds how many hops a single traversal may take.
	MaxDepth int

	// TimeoutSeconds bounds a single traversal's wall-clock budget.
	TimeoutSeconds float64
}

// DatabaseConfig holds PostgreSQL connection settings for the persistent
// Graph Store.
type DatabaseConfig struct {
	URL             string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// CacheConfig holds Result Cache settings: the in-process LRU is the
// default backend; Redis, when configured and reachable, is used in its
// place. With Enabled false no Result Cache is used at all.
type CacheConfig struct {
	Enabled     bool
	Capacity    int
	RedisURL    string
	RedisHost   string
	RedisPort   int
	RedisPasswd string
	RedisDB     int
}

// NATSConfig holds the cache-invalidation broadcast connection settings.
type NATSConfig struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration
}

// AuthConfig holds the query API's bearer-token settings.
type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// RateLimitConfig holds the query API's per-user request throttling
// settings, enforced by the RateLimit stage of the middleware chain.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
}

// Load reads configuration from environment variables and returns a Config
// struct, applying development-friendly defaults and validating required
// fields.
func Load() (*Config, error) {
	cfg := &Config{
		App:       loadAppConfig(),
		Graph:     loadGraphConfig(),
		Database:  loadDatabaseConfig(),
		Cache:     loadCacheConfig(),
		NATS:      loadNATSConfig(),
		Auth:      loadAuthConfig(),
		Server:    loadServerConfig(),
		RateLimit: loadRateLimitConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration and panics on error. Use for application
// startup where configuration is required.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks that required configuration values are present and
// valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Graph.MaxDepth < 1 {
		errs = append(errs, errors.New("graph: max_depth must be at least 1"))
	}
	if c.Graph.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("graph: timeout_seconds must be positive"))
	}
	if c.Cache.Enabled && c.Cache.Capacity < 1 {
		errs = append(errs, errors.New("cache: capacity must be at least 1 when enabled"))
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute < 1 {
		errs = append(errs, errors.New("rate_limit: requests_per_minute must be at least 1 when enabled"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// IsProduction returns true if running in the production environment.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// DatabaseDSN returns the Graph Store's PostgreSQL connection string.
func (c *Config) DatabaseDSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.Database.User),
		url.QueryEscape(c.Database.Password),
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// RedisDSN returns the Result Cache's Redis connection string.
func (c *Config) RedisDSN() string {
	if c.Cache.RedisURL != "" {
		return c.Cache.RedisURL
	}
	if c.Cache.RedisPasswd != "" {
		return fmt.Sprintf("redis://:%s@%s:%d/%d",
			url.QueryEscape(c.Cache.RedisPasswd), c.Cache.RedisHost, c.Cache.RedisPort, c.Cache.RedisDB)
	}
	return fmt.Sprintf("redis://%s:%d/%d", c.Cache.RedisHost, c.Cache.RedisPort, c.Cache.RedisDB)
}

// LogConfig logs the resolved configuration with secrets masked.
func (c *Config) LogConfig(logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.Group("app",
			slog.String("environment", string(c.App.Environment)),
			slog.String("log_level", c.App.LogLevel),
			slog.String("log_format", c.App.LogFormat),
		),
		slog.Group("graph",
			slog.Int("max_depth", c.Graph.MaxDepth),
			slog.Float64("timeout_seconds", c.Graph.TimeoutSeconds),
		),
		slog.Group("database",
			slog.String("host", c.Database.Host),
			slog.Int("port", c.Database.Port),
			slog.String("name", c.Database.Name),
			slog.String("ssl_mode", c.Database.SSLMode),
		),
		slog.Group("cache",
			slog.Bool("enabled", c.Cache.Enabled),
			slog.Int("capacity", c.Cache.Capacity),
			slog.Bool("redis_configured", c.Cache.RedisURL != "" || c.Cache.RedisHost != ""),
		),
		slog.Group("nats",
			slog.Bool("configured", c.NATS.URL != ""),
		),
		slog.Group("auth",
			slog.Bool("jwt_secret_set", c.Auth.JWTSecret != ""),
		),
		slog.Group("rate_limit",
			slog.Bool("enabled", c.RateLimit.Enabled),
			slog.Int("requests_per_minute", c.RateLimit.RequestsPerMinute),
		),
	)
}

func loadAppConfig() AppConfig {
	return AppConfig{
		Environment: parseEnvironment(getEnv("APP_ENV", "development")),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
	}
}

func loadGraphConfig() GraphConfig {
	return GraphConfig{
		MaxDepth:       getEnvInt("GRAPH_MAX_DEPTH", 64),
		TimeoutSeconds: getEnvFloat("GRAPH_TIMEOUT_SECONDS", 5.0),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:             getEnv("DATABASE_URL", ""),
		Host:            getEnv("POSTGRES_HOST", "localhost"),
		Port:            getEnvInt("POSTGRES_PORT", 5432),
		User:            getEnv("POSTGRES_USER", "ontology"),
		Password:        getEnv("POSTGRES_PASSWORD", "ontology_dev_password"),
		Name:            getEnv("POSTGRES_DB", "ontology"),
		SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
		MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvDuration("POSTGRES_CONN_MAX_LIFETIME", 5*time.Minute),
	}
}

func loadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:     getEnvBool("CACHE_ENABLED", true),
		Capacity:    getEnvInt("CACHE_CAPACITY", 10_000),
		RedisURL:    getEnv("REDIS_URL", ""),
		RedisHost:   getEnv("REDIS_HOST", ""),
		RedisPort:   getEnvInt("REDIS_PORT", 6379),
		RedisPasswd: getEnv("REDIS_PASSWORD", ""),
		RedisDB:     getEnvInt("REDIS_DB", 0),
	}
}

func loadNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           getEnv("NATS_URL", ""),
		MaxReconnects: getEnvInt("NATS_MAX_RECONNECTS", 10),
		ReconnectWait: getEnvDuration("NATS_RECONNECT_WAIT", 2*time.Second),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "ontology-processor"),
	}
}

func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:           getEnvBool("RATE_LIMIT_ENABLED", true),
		RequestsPerMinute: getEnvInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 60),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:            getEnvInt("SERVER_PORT", 8080),
		Host:            getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
		ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func parseEnvironment(env string) Environment {
	switch strings.ToLower(env) {
	case "production", "prod":
		return EnvProduction
	case "staging", "stage":
		return EnvStaging
	default:
		return EnvDevelopment
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
