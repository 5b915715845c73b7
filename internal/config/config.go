package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
)

type Config struct {
	// Server configuration
	Port            string
	GRPCAddr        string
	ShutdownTimeout time.Duration

	ServiceName string
	Environment string
	LogLevel    string

	// Storage
	StoreBackend    string
	PresenceBackend string
	DatabaseDSN     string
	RedisURL        string
	RedisDB         int
	MemorySeedFile  string

	JWTSecret string

	// Messaging
	AMQPURL        string
	EventsExchange string
	LogsExchange   string
}

// Load reads a .env file when present, then the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:            getEnv("PORT", "8080"),
		GRPCAddr:        getEnv("GRPC_ADDR", ":8085"),
		ShutdownTimeout: time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 5)) * time.Second,

		ServiceName: getEnv("SERVICE_NAME", "friendship-service"),
		Environment: getEnv("ENVIRONMENT", "local"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		StoreBackend:    getEnv("STORE_BACKEND", BackendPostgres),
		PresenceBackend: getEnv("PRESENCE_BACKEND", BackendPostgres),
		DatabaseDSN:     os.Getenv("DB_DSN"),
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379"),
		RedisDB:         getEnvAsInt("REDIS_DB", 0),
		MemorySeedFile:  os.Getenv("MEMORY_SEED_FILE"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		AMQPURL:        os.Getenv("AMQP_URL"),
		EventsExchange: getEnv("EVENTS_EXCHANGE", "app.events"),
		LogsExchange:   getEnv("LOGS_EXCHANGE", "logs.events"),
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	}
	switch c.StoreBackend {
	case BackendPostgres, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend))
	}
	switch c.PresenceBackend {
	case BackendPostgres, BackendMemory, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown PRESENCE_BACKEND %q", c.PresenceBackend))
	}
	if c.PresenceBackend == BackendMemory && c.StoreBackend != BackendMemory {
		errs = append(errs, errors.New("PRESENCE_BACKEND=memory requires STORE_BACKEND=memory"))
	}
	if (c.StoreBackend == BackendPostgres || c.PresenceBackend == BackendPostgres) && c.DatabaseDSN == "" {
		errs = append(errs, errors.New("DB_DSN must be set for the postgres backend"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
