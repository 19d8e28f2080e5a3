package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var DefaultEnvConfig *envConfig

// Store and search backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
	SearchStore   = "store"
	SearchElastic = "elastic"
)

type envConfig struct {
	// server config
	APP_PORT string
	// database config
	DB_HOST              string
	DB_PORT              int
	DB_USER              string
	DB_PASSWORD          string
	DB_NAME              string
	DB_SSL_MODE          string
	DB_CONN_MAX_LIFETIME time.Duration
	DB_MAX_IDLE_CONNS    int
	DB_MAX_OPEN_CONNS    int
	// backend selection
	STORE_BACKEND  string
	SEARCH_BACKEND string
	// elasticsearch config
	ELASTIC_URL   string
	ELASTIC_INDEX string
	// datastore config
	DATASTORE_PROJECT_ID string
	// nats config
	NATS_URL     string
	NATS_SUBJECT string
	// inbox watcher config
	INBOX_DIR      string
	INBOX_PATTERN  string
	INBOX_DEBOUNCE time.Duration
	// export config
	EXPORT_LAYOUT_FILE string
	// logger config
	LOG_FILE_PATH string
	LOG_LEVEL     string
}

// LoadEnvConfig reads .env into the environment and fills DefaultEnvConfig.
// DefaultEnvConfig is filled from the process environment even when .env is
// missing; the load error is still returned so callers can report it.
func LoadEnvConfig() error {
	err := godotenv.Load()

	DefaultEnvConfig = &envConfig{
		APP_PORT:             getEnvString("APP_PORT", "8080"),
		DB_HOST:              getEnvString("DB_HOST", "localhost"),
		DB_PORT:              getEnvInt("DB_PORT", 5432),
		DB_USER:              getEnvString("DB_USER", "postgres"),
		DB_PASSWORD:          getEnvString("DB_PASSWORD", "postgres"),
		DB_NAME:              getEnvString("DB_NAME", "naming_service"),
		DB_SSL_MODE:          getEnvString("DB_SSL_MODE", "disable"),
		DB_CONN_MAX_LIFETIME: getEnvDuration("DB_CONN_MAX_LIFETIME", 20*time.Minute),
		DB_MAX_IDLE_CONNS:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
		DB_MAX_OPEN_CONNS:    getEnvInt("DB_MAX_OPEN_CONNS", 100),
		STORE_BACKEND:        getEnvString("STORE_BACKEND", StorePostgres),
		SEARCH_BACKEND:       getEnvString("SEARCH_BACKEND", SearchStore),
		ELASTIC_URL:          getEnvString("ELASTIC_URL", ""),
		ELASTIC_INDEX:        getEnvString("ELASTIC_INDEX", "interns"),
		DATASTORE_PROJECT_ID: getEnvString("DATASTORE_PROJECT_ID", ""),
		NATS_URL:             getEnvString("NATS_URL", ""),
		NATS_SUBJECT:         getEnvString("NATS_SUBJECT", "roster.import.completed"),
		INBOX_DIR:            getEnvString("INBOX_DIR", "./inbox"),
		INBOX_PATTERN:        getEnvString("INBOX_PATTERN", "*.csv"),
		INBOX_DEBOUNCE:       getEnvDuration("INBOX_DEBOUNCE", 500*time.Millisecond),
		EXPORT_LAYOUT_FILE:   getEnvString("EXPORT_LAYOUT_FILE", ""),
		LOG_FILE_PATH:        getEnvString("LOG_FILE_PATH", ""),
		LOG_LEVEL:            getEnvString("LOG_LEVEL", "info"),
	}
	return err
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
