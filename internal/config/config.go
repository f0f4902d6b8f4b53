package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the portal and the calculator client
type Config struct {
	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`

	// Backend API
	WebAPIURL string `json:"web_api_url"`
	APIHost   string `json:"api_host"`
	APIPort   string `json:"api_port"`

	// Presentation
	Theme string `json:"theme"`

	// Query cache
	QueryStaleTime time.Duration `json:"query_stale_time"`
	QueryGCTime    time.Duration `json:"query_gc_time"`

	// Token store
	TokenStore string `json:"token_store"`
	TokenFile  string `json:"token_file"`

	// Redis configuration
	RedisURL    string `json:"redis_url"`
	RedisPrefix string `json:"redis_prefix"`

	// CloudFlare R2 Configuration
	R2Endpoint   string        `json:"r2_endpoint"`
	R2AccessKey  string        `json:"r2_access_key"`
	R2SecretKey  string        `json:"r2_secret_key"`
	R2Bucket     string        `json:"r2_bucket"`
	R2Region     string        `json:"r2_region"`
	R2PresignTTL time.Duration `json:"r2_presign_ttl"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`
}

// Load loads configuration from environment variables and validates it
func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := FromEnv()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

// FromEnv reads the configuration from the process environment without
// touching .env files or validating.
func FromEnv() *Config {
	return &Config{
		// Server configuration
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),

		// Backend API
		WebAPIURL: getEnv("WEB_API_URL", "http://localhost:8000/api"),
		APIHost:   getEnv("API_HOST", "localhost"),
		APIPort:   getEnv("API_PORT", "8000"),

		Theme: getEnv("THEME", "light"),

		// Query cache
		QueryStaleTime: getEnvAsDuration("QUERY_STALE_TIME", 10*time.Minute),
		QueryGCTime:    getEnvAsDuration("QUERY_GC_TIME", 30*time.Minute),

		// Token store
		TokenStore: getEnv("TOKEN_STORE", "memory"),
		TokenFile:  getEnv("TOKEN_FILE", "./data/local-storage.json"),

		// Redis configuration
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisPrefix: getEnv("REDIS_PREFIX", "cicb:"),

		// CloudFlare R2 Configuration
		R2Endpoint:   getEnv("R2_ENDPOINT", ""),
		R2AccessKey:  getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey:  getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:     getEnv("R2_BUCKET", "cicb-media"),
		R2Region:     getEnv("R2_REGION", "auto"),
		R2PresignTTL: getEnvAsDuration("R2_PRESIGN_TTL", 15*time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
	}
}

// MobileAPIURL is the base URL of the calculator client, templated from the
// configured host and port.
func (c *Config) MobileAPIURL() string {
	return fmt.Sprintf("http://%s:%s/api", c.APIHost, c.APIPort)
}

// R2Enabled reports whether media presigning is configured.
func (c *Config) R2Enabled() bool {
	return c.R2Endpoint != "" && c.R2AccessKey != "" && c.R2SecretKey != ""
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := url.Parse(c.WebAPIURL); err != nil {
		return fmt.Errorf("WEB_API_URL: %w", err)
	}
	if c.QueryStaleTime <= 0 || c.QueryGCTime <= 0 {
		return fmt.Errorf("query cache windows must be positive")
	}
	if c.QueryGCTime < c.QueryStaleTime {
		return fmt.Errorf("QUERY_GC_TIME (%s) must not be shorter than QUERY_STALE_TIME (%s)", c.QueryGCTime, c.QueryStaleTime)
	}
	switch c.TokenStore {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("unknown TOKEN_STORE %q", c.TokenStore)
	}
	switch strings.ToLower(c.Theme) {
	case "light", "dark":
	default:
		return fmt.Errorf("unknown THEME %q", c.Theme)
	}
	return nil
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
