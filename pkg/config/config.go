package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	ServiceName string

	ServerPort int

	DatabaseURL string

	JWTAccessSecret []byte

	KafkaBrokers           []string
	KafkaOrderTopic        string
	KafkaNotificationTopic string

	ESURL        string
	ESUser       string
	ESPassword   string
	ESOrderIndex string

	RedisURL string

	CookieSecure bool
	CORSOrigins  []string

	LogLevel string
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", ""),

		ServerPort: EnvIntDefault("SERVER_PORT", 8080),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTAccessSecret: []byte(os.Getenv("JWT_SECRET")),

		KafkaBrokers:           CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaOrderTopic:        EnvDefault("KAFKA_ORDER_TOPIC", "order_events"),
		KafkaNotificationTopic: EnvDefault("KAFKA_NOTIFICATION_TOPIC", "notification_events"),

		ESURL:        os.Getenv("ES_URL"),
		ESUser:       os.Getenv("ES_USER"),
		ESPassword:   os.Getenv("ES_PASSWORD"),
		ESOrderIndex: EnvDefault("ES_ORDER_INDEX", "orders"),

		RedisURL: os.Getenv("REDIS_URL"),

		CookieSecure: EnvDefault("COOKIE_SECURE", "false") == "true",
		CORSOrigins:  CSV(os.Getenv("CORS_ORIGINS")),

		LogLevel: EnvDefault("LOG_LEVEL", "info"),
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
