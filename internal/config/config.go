package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	API     APIConfig
	Session SessionConfig
	Redis   RedisConfig
	Log     LogConfig
	Metrics MetricsConfig
	Server  ServerConfig
	Sandbox SandboxConfig
	CORS    CORSConfig
}

// APIConfig describes the remote system of record
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig selects where the credential pair is persisted
type SessionConfig struct {
	Store    string // memory, file, redis
	FilePath string
	Prefix   string
	Profile  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig holds metrics exposure configuration
type MetricsConfig struct {
	Enabled bool
	Addr    string
}

// ServerConfig holds the sandbox server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// SandboxConfig holds token settings for the sandbox API
type SandboxConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// CORSConfig holds CORS settings for the sandbox API
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// Load reads an optional .env file and then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from the current environment
func FromEnv() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		API: APIConfig{
			BaseURL: getEnv("HMS_API_BASE_URL", "http://localhost:8080/api"),
			Timeout: getDuration("HMS_API_TIMEOUT", 15*time.Second),
		},
		Session: SessionConfig{
			Store:    getEnv("HMS_SESSION_STORE", "file"),
			FilePath: getEnv("HMS_SESSION_FILE", home+"/.hms-console/session.json"),
			Prefix:   getEnv("HMS_SESSION_PREFIX", "hms"),
			Profile:  getEnv("HMS_PROFILE", "default"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Metrics: MetricsConfig{
			Enabled: getBool("METRICS_ENABLED", false),
			Addr:    getEnv("METRICS_ADDR", ":9102"),
		},
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getInt("SERVER_PORT", 8080),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Sandbox: SandboxConfig{
			JWTSecret: getEnv("SANDBOX_JWT_SECRET", "sandbox-secret-change-me"),
			TokenTTL:  getDuration("SANDBOX_TOKEN_TTL", 8*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
			AllowedMethods: getList("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getList("CORS_ALLOWED_HEADERS", []string{"Authorization", "Content-Type", "X-Request-ID"}),
		},
	}
}

// Validate checks the configuration for values the console cannot run without
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("HMS_API_BASE_URL must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("HMS_API_TIMEOUT must be positive")
	}

	switch c.Session.Store {
	case "memory", "redis":
	case "file":
		if c.Session.FilePath == "" {
			return fmt.Errorf("HMS_SESSION_FILE is required for the file session store")
		}
	default:
		return fmt.Errorf("unsupported session store: %s", c.Session.Store)
	}
	if c.Session.Profile == "" {
		return fmt.Errorf("HMS_PROFILE must not be empty")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT out of range: %d", c.Server.Port)
	}
	if c.Sandbox.TokenTTL <= 0 {
		return fmt.Errorf("SANDBOX_TOKEN_TTL must be positive")
	}
	return nil
}

// RedisAddr returns host:port for the Redis client
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Scope returns the key prefix for the credential store
func (c *Config) Scope() string {
	return c.Session.Prefix + ":" + c.Session.Profile
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
