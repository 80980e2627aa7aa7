package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Fallback for local dev if DATABASE_URL is not set
const defaultDSN = "host=localhost user=postgres password=postgres dbname=contentdesk port=5432 sslmode=disable"

type Config struct {
	Port            string
	DatabaseURL     string
	LogLevel        string
	LogFormat       string // json | console
	GinMode         string
	CORSAllowOrigin string
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	ShutdownTimeout time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, reading configuration from environment")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     getEnv("DATABASE_URL", defaultDSN),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		GinMode:         getEnv("GIN_MODE", "release"),
		CORSAllowOrigin: getEnv("CORS_ALLOW_ORIGIN", "*"),
		DBMaxOpenConns:  getInt("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns:  getInt("DB_MAX_IDLE_CONNS", 5),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid integer, using default")
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid duration, using default")
		return fallback
	}
	return d
}
