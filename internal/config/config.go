package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config carries everything the server reads from the environment.
// A .env file is honored when present (local development); real
// deployments set the variables directly.
type Config struct {
	HTTPAddr string

	DatabaseDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	JobQueueKey   string

	JWTSecret string

	RoomName        string
	RetentionWindow time.Duration
	SweepSpec       string

	LogLevel  string
	LogPretty bool
}

// Load reads the configuration, falling back to development defaults.
func Load() Config {
	// Missing .env is fine outside local development.
	_ = godotenv.Load()

	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		DatabaseDSN:     getenv("DATABASE_DSN", "host=localhost user=user password=password dbname=chatrelaydb port=5432 sslmode=disable"),
		RedisAddr:       getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getenv("REDIS_PASSWORD", ""),
		RedisDB:         getenvInt("REDIS_DB", 0),
		JobQueueKey:     getenv("JOB_QUEUE_KEY", "chatrelay:jobs"),
		JWTSecret:       getenv("JWT_SECRET", "dev-only-secret-change-me"),
		RoomName:        getenv("ROOM_NAME", "global_chat"),
		RetentionWindow: getenvDuration("RETENTION_WINDOW", 10*time.Minute),
		SweepSpec:       getenv("SWEEP_SPEC", "@every 1m"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogPretty:       getenvBool("LOG_PRETTY", false),
	}
}

// NewLogger builds the process-wide zerolog logger from the config.
func (c Config) NewLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if c.LogPretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
