package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string

	// Predicate cache backend: "memory" or "redis".
	CacheBackend  string
	CacheMaxRules int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Rate limiting for generation requests; 0 requests disables it.
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitBackend  string

	GenerationParallelism int
	LogLevel              string
}

func FromEnv() Config {
	return Config{
		HTTPAddr:    envDefault("HTTP_ADDR", ":8080"),
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		CacheBackend:  envDefault("PREDICATE_CACHE_BACKEND", "memory"),
		CacheMaxRules: envInt("PREDICATE_CACHE_MAX_RULES", 512),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 0),
		RateLimitWindow:   envDuration("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitBackend:  envDefault("RATE_LIMIT_BACKEND", "memory"),

		GenerationParallelism: envInt("GENERATION_PARALLELISM", 8),
		LogLevel:              envDefault("LOG_LEVEL", "info"),
	}
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
