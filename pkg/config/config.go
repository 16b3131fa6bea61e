package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the settings every binary of the module needs.
type Config struct {
	ServiceName string
	LogLevel    string

	ServerPort int

	DBDriver      string
	DatabaseURL   string
	DBAutoMigrate bool

	JWTSecret  []byte
	SessionTTL time.Duration

	KafkaBrokers     []string
	KafkaTopicPrefix string
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "storefront"),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		ServerPort: EnvIntDefault("SERVER_PORT", 8080),

		DBDriver:      strings.ToLower(EnvDefault("DB_DRIVER", "postgres")),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DBAutoMigrate: EnvBoolDefault("DB_AUTO_MIGRATE", false),

		JWTSecret:  []byte(os.Getenv("JWT_SECRET")),
		SessionTTL: EnvDurationDefault("SESSION_TTL", 365*24*time.Hour),

		KafkaBrokers:     CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopicPrefix: EnvDefault("KAFKA_TOPIC_PREFIX", ""),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
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

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
