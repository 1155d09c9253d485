package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	DBDriver string
	DBDSN    string

	AuthSecret string

	AdminUser string
	AdminPass string

	CORSOrigins []string

	// Optional AMQP fanout for notification events; disabled when empty.
	AMQPURL      string
	AMQPExchange string

	SweepInterval time.Duration
}

func FromEnv() Config {
	return Config{
		HTTPAddr:      envOr("HTTP_ADDR", ":8080"),
		DBDriver:      envOr("DB_DRIVER", "sqlite"),
		DBDSN:         envOr("DB_DSN", ""),
		AuthSecret:    envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		AdminUser:     envOr("ADMIN_USER", "admin"),
		AdminPass:     envOr("ADMIN_PASS", "admin"),
		CORSOrigins:   csvOr("CORS_ORIGINS", "http://localhost:3000"),
		AMQPURL:       os.Getenv("AMQP_URL"),
		AMQPExchange:  envOr("AMQP_EXCHANGE", "quizdesk.events"),
		SweepInterval: durOr("QUIZ_SWEEP_INTERVAL", time.Minute),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func durOr(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
