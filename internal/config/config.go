package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Events   EventsConfig
	Cache    CacheConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type DatabaseConfig struct {
	Driver      string // "postgres" or "memory"
	Connection  string
	AutoMigrate bool
	// TxMaxRetries bounds how often a transaction is retried after a
	// serialization failure.
	TxMaxRetries int
}

type EventsConfig struct {
	NatsURL string // empty disables NATS
	// Topic of the in-process bus that carries feature changes.
	FeatureTopic string
}

type CacheConfig struct {
	PlanTTLSeconds int
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Connection:   getEnv("DB_CONNECTION_STRING", ""),
			AutoMigrate:  getEnvAsBool("DB_AUTO_MIGRATE", false),
			TxMaxRetries: getEnvAsInt("DB_TX_MAX_RETRIES", 3),
		},
		Events: EventsConfig{
			NatsURL:      getEnv("NATS_URL", "nats://localhost:4222"),
			FeatureTopic: getEnv("FEATURE_EVENTS_TOPIC", "FEATURE_CHANGED"),
		},
		Cache: CacheConfig{
			PlanTTLSeconds: getEnvAsInt("PLAN_CACHE_TTL_SECONDS", 300),
		},
		Tracing: TracingConfig{
			Enabled:  getEnvAsBool("OTEL_ENABLED", false),
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
