package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Cache backends accepted in BOARD_CACHE
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Board    BoardConfig
	Cache    CacheConfig
	LogLevel string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
	StaticDir    string
}

// UpstreamConfig holds settings for the transport.rest client
type UpstreamConfig struct {
	BaseURL   string
	Timeout   time.Duration
	Retries   int
	RateLimit float64 // requests per second, 0 disables limiting
	RateBurst int
}

// BoardConfig holds aggregation settings
type BoardConfig struct {
	WindowMinutes int
	Timezone      string
	StationsFile  string
	FailurePolicy string
}

// CacheConfig selects and tunes the response cache
type CacheConfig struct {
	Backend   string
	TTL       time.Duration
	Dir       string
	RedisAddr string
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         getEnv("BOARD_ADDR", ":5000"),
			ReadTimeout:  getEnvAsDuration("BOARD_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getEnvAsDuration("BOARD_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getEnvAsDuration("BOARD_IDLE_TIMEOUT", 60*time.Second),
			CORSOrigins:  getEnvAsList("BOARD_CORS_ORIGINS", []string{"*"}),
			StaticDir:    getEnv("BOARD_STATIC_DIR", ""),
		},
		Upstream: UpstreamConfig{
			BaseURL:   getEnv("VBB_BASE_URL", "https://v6.vbb.transport.rest"),
			Timeout:   getEnvAsDuration("VBB_TIMEOUT", 10*time.Second),
			Retries:   getEnvAsInt("VBB_RETRIES", 2),
			RateLimit: getEnvAsFloat("VBB_RATE_LIMIT", 0),
			RateBurst: getEnvAsInt("VBB_RATE_BURST", 5),
		},
		Board: BoardConfig{
			WindowMinutes: getEnvAsInt("BOARD_WINDOW_MINUTES", 20),
			Timezone:      getEnv("BOARD_TIMEZONE", "Europe/Berlin"),
			StationsFile:  getEnv("BOARD_STATIONS_FILE", ""),
			FailurePolicy: getEnv("BOARD_FAILURE_POLICY", "closed"),
		},
		Cache: CacheConfig{
			Backend:   strings.ToLower(getEnv("BOARD_CACHE", CacheNone)),
			TTL:       getEnvAsDuration("BOARD_CACHE_TTL", 30*time.Second),
			Dir:       getEnv("BOARD_CACHE_DIR", ""),
			RedisAddr: getEnv("REDIS_ADDR", ":6379"),
		},
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}
}

// Validate reports the first setting that cannot work
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("BOARD_ADDR must not be empty")
	}
	if c.Board.WindowMinutes <= 0 {
		return fmt.Errorf("BOARD_WINDOW_MINUTES must be positive, got %d", c.Board.WindowMinutes)
	}
	if c.Upstream.Retries < 0 {
		return fmt.Errorf("VBB_RETRIES must not be negative, got %d", c.Upstream.Retries)
	}
	if c.Upstream.RateLimit < 0 {
		return fmt.Errorf("VBB_RATE_LIMIT must not be negative, got %g", c.Upstream.RateLimit)
	}
	if c.Upstream.RateLimit > 0 && c.Upstream.RateBurst <= 0 {
		return fmt.Errorf("VBB_RATE_BURST must be positive when rate limiting, got %d", c.Upstream.RateBurst)
	}
	switch c.Cache.Backend {
	case CacheNone, CacheFile, CacheRedis:
	default:
		return fmt.Errorf("BOARD_CACHE must be one of none, file, redis, got %q", c.Cache.Backend)
	}
	if c.Cache.Backend != CacheNone && c.Cache.TTL <= 0 {
		return fmt.Errorf("BOARD_CACHE_TTL must be positive, got %s", c.Cache.TTL)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if valueStr := os.Getenv(key); valueStr != "" {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if valueStr := os.Getenv(key); valueStr != "" {
		if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
			return value
		}
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr := os.Getenv(key); valueStr != "" {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
