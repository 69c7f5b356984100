package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Cache backends accepted by CACHE_BACKEND.
const (
	CacheBackendNone   = "none"
	CacheBackendSQLite = "sqlite"
	CacheBackendRedis  = "redis"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Upstream congress API.
	CongressAPIURL     string
	CongressAPITimeout time.Duration
	TopicCacheSize     int

	// Reference data cache.
	CacheBackend    string
	CacheTTL        time.Duration
	CacheSQLitePath string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	// View event publishing.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaViewTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	apiTimeout, err := parseDuration("CONGRESS_API_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	cacheTTL, err := parseDuration("CACHE_TTL", "24h")
	if err != nil {
		return nil, err
	}

	redisDB, err := parseNonNegativeInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		CongressAPIURL:     strings.TrimRight(EnvOrDefault("CONGRESS_API_URL", "http://localhost:8000"), "/"),
		CongressAPITimeout: apiTimeout,
		TopicCacheSize:     parseTopicCacheSize(),

		CacheBackend:    strings.ToLower(EnvOrDefault("CACHE_BACKEND", CacheBackendSQLite)),
		CacheTTL:        cacheTTL,
		CacheSQLitePath: EnvOrDefault("CACHE_SQLITE_PATH", "data/cache.db"),
		RedisAddr:       EnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         redisDB,

		KafkaEnabled:   os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:   ParseBrokers(EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaViewTopic: EnvOrDefault("KAFKA_VIEW_TOPIC", "congress-view-events"),
	}

	if cfg.CongressAPIURL == "" {
		return nil, errors.New("CONGRESS_API_URL is required")
	}
	switch cfg.CacheBackend {
	case CacheBackendNone, CacheBackendSQLite, CacheBackendRedis:
	default:
		return nil, fmt.Errorf("invalid CACHE_BACKEND %q: want none, sqlite or redis", cfg.CacheBackend)
	}
	if cfg.CacheBackend == CacheBackendSQLite && cfg.CacheSQLitePath == "" {
		return nil, errors.New("CACHE_SQLITE_PATH is required for the sqlite cache")
	}
	if cfg.CacheBackend == CacheBackendRedis && cfg.RedisAddr == "" {
		return nil, errors.New("REDIS_ADDR is required for the redis cache")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaViewTopic == "" {
			return nil, errors.New("KAFKA_VIEW_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

// EnvOrDefault returns the value of the environment variable key, or fallback
// when it is unset or empty.
func EnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ParseBrokers splits a comma-separated broker list, dropping blanks.
func ParseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func parseNonNegativeInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: must be a non-negative integer", key)
	}
	return n, nil
}

func parseTopicCacheSize() int {
	if s := os.Getenv("TOPIC_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 64
}
