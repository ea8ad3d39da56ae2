package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds application configuration from environment.
type Config struct {
	HTTPPort           string
	DatabaseURL        string
	DBPoolSize         int
	RedisURL           string
	RedisPoolSize      int
	CacheTTL           int // seconds
	RateLimitPerMinute int
	JWTSecret          string
	JWTExpiresMin      int
	KafkaBrokers       []string
	KafkaNotifyTopic   string
	KafkaPartitions    int
	WeatherTimeoutSec  int
}

var (
	cfg     *Config
	cfgOnce sync.Once
)

// Get returns the application config (loads once from env).
func Get() *Config {
	cfgOnce.Do(func() {
		cfg = &Config{
			HTTPPort:           getEnv("HTTP_PORT", "8080"),
			DatabaseURL:        os.Getenv("DATABASE_URL"),
			DBPoolSize:         getIntEnv("DB_POOL_SIZE", 50),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
			RedisPoolSize:      getIntEnv("REDIS_POOL_SIZE", 100),
			CacheTTL:           getIntEnv("CACHE_TTL_SEC", 30),
			RateLimitPerMinute: getIntEnv("RATE_LIMIT_PER_MINUTE", 60),
			JWTSecret:          getEnv("JWT_SECRET", "change-me"),
			JWTExpiresMin:      getIntEnv("JWT_EXPIRES_MIN", 60),
			KafkaBrokers:       getSliceEnv("KAFKA_BROKERS", ""),
			KafkaNotifyTopic:   getEnv("KAFKA_NOTIFY_TOPIC", "task-notifications"),
			KafkaPartitions:    getIntEnv("KAFKA_PARTITIONS", 4),
			WeatherTimeoutSec:  getIntEnv("WEATHER_TIMEOUT_SEC", 8),
		}
	})
	return cfg
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getSliceEnv(key, defaultVal string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = defaultVal
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
