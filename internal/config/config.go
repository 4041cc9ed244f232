package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort   string
	MySQLDSN     string
	RedisAddr    string
	RedisDB      int
	RedisPass    string
	CookieName   string
	CookieSecret string
	CookieSecure bool
	SessionTTL   time.Duration
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	return &Config{
		ServerPort:   getEnv("SERVER_PORT", "3000"),
		MySQLDSN:     getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/poui?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:      getEnvInt("REDIS_DB", 0),
		RedisPass:    os.Getenv("REDIS_PASSWORD"),
		CookieName:   getEnv("COOKIE_NAME", "poui-session"),
		CookieSecret: getEnv("COOKIE_SECRET", "change-me"),
		CookieSecure: getEnvBool("COOKIE_SECURE", false),
		SessionTTL:   time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}
