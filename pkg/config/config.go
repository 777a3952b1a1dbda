package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the application configuration
type Config struct {
	Environment string
	ServerPort  int
	LogLevel    string
	LogFormat   string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// RedisURL empty means the in-memory cache backend is used.
	RedisURL        string
	CacheTTLSeconds int

	JWTSecret      string
	JWTExpiryHours int

	LowStockThreshold       int
	LowStockIntervalMinutes int

	CORSAllowedOrigins []string

	RateLimitRequests     int
	RateLimitWindowSecs   int
	LoginRateLimitMax     int
	LoginRateLimitWindowS int
}

const minJWTSecretLength = 32

// Load reads configuration from environment variables
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	cacheTTL, err := strconv.Atoi(getEnv("CACHE_TTL_SECONDS", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL_SECONDS: %w", err)
	}

	jwtExpiry, err := strconv.Atoi(getEnv("JWT_EXPIRY_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRY_HOURS: %w", err)
	}

	lowStockThreshold, err := strconv.Atoi(getEnv("LOW_STOCK_THRESHOLD", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOW_STOCK_THRESHOLD: %w", err)
	}

	lowStockInterval, err := strconv.Atoi(getEnv("LOW_STOCK_INTERVAL_MINUTES", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOW_STOCK_INTERVAL_MINUTES: %w", err)
	}

	rateLimitRequests, err := strconv.Atoi(getEnv("RATE_LIMIT_REQUESTS", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REQUESTS: %w", err)
	}

	rateLimitWindow, err := strconv.Atoi(getEnv("RATE_LIMIT_WINDOW_SECONDS", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW_SECONDS: %w", err)
	}

	loginMax, err := strconv.Atoi(getEnv("LOGIN_RATE_LIMIT_MAX", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE_LIMIT_MAX: %w", err)
	}

	loginWindow, err := strconv.Atoi(getEnv("LOGIN_RATE_LIMIT_WINDOW_SECONDS", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE_LIMIT_WINDOW_SECONDS: %w", err)
	}

	secret := os.Getenv("JWT_SECRET")
	if len(secret) < minJWTSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  port,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "storeinventory"),
		DBPassword: getEnv("DB_PASSWORD", "dev"),
		DBName:     getEnv("DB_NAME", "storeinventory"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisURL:        os.Getenv("REDIS_URL"),
		CacheTTLSeconds: cacheTTL,

		JWTSecret:      secret,
		JWTExpiryHours: jwtExpiry,

		LowStockThreshold:       lowStockThreshold,
		LowStockIntervalMinutes: lowStockInterval,

		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),

		RateLimitRequests:     rateLimitRequests,
		RateLimitWindowSecs:   rateLimitWindow,
		LoginRateLimitMax:     loginMax,
		LoginRateLimitWindowS: loginWindow,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
