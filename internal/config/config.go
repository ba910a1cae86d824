package config

import (
	"fmt"
	"os"
	"strconv"
)

// Item bank backends
const (
	BankStatic    = "static"
	BankPostgres  = "postgres"
	BankGenerator = "generator"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port  int
	Debug bool

	// Database
	DatabaseURL string
	SQLitePath  string

	// RabbitMQ
	RabbitMQURL string

	// Item bank
	ItemBank        string // static, postgres, generator
	ItemBankPath    string
	GeneratorURL    string
	GeneratorAPIKey string

	// Engine thresholds
	MaxSteps       int
	AdvanceStreak  int
	DemoteMistakes int
	AbortMistakes  int

	// Worker
	WorkerPoolSize int
	WorkerTimeout  int // seconds
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnvInt("PORT", 8080),
		Debug:           getEnvBool("DEBUG", false),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		SQLitePath:      getEnv("SQLITE_PATH", "./attune.db"),
		RabbitMQURL:     getEnv("RABBITMQ_URL", ""),
		ItemBank:        getEnv("ITEM_BANK", BankStatic),
		ItemBankPath:    getEnv("ITEM_BANK_PATH", "./itembank"),
		GeneratorURL:    getEnv("GENERATOR_URL", ""),
		GeneratorAPIKey: getEnv("GENERATOR_API_KEY", ""),
		MaxSteps:        getEnvInt("MAX_STEPS", 7),
		AdvanceStreak:   getEnvInt("ADVANCE_STREAK", 2),
		DemoteMistakes:  getEnvInt("DEMOTE_MISTAKES", 2),
		AbortMistakes:   getEnvInt("ABORT_MISTAKES", 3),
		WorkerPoolSize:  getEnvInt("WORKER_POOL_SIZE", 4),
		WorkerTimeout:   getEnvInt("WORKER_TIMEOUT", 30),
	}

	// Validate required settings
	switch cfg.ItemBank {
	case BankStatic, BankPostgres, BankGenerator:
	default:
		return nil, fmt.Errorf("ITEM_BANK must be one of static, postgres, generator; got %q", cfg.ItemBank)
	}

	if cfg.ItemBank == BankPostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set when ITEM_BANK=postgres")
	}

	if cfg.ItemBank == BankGenerator && cfg.GeneratorURL == "" {
		return nil, fmt.Errorf("GENERATOR_URL must be set when ITEM_BANK=generator")
	}

	if cfg.MaxSteps < 1 {
		return nil, fmt.Errorf("MAX_STEPS must be at least 1; got %d", cfg.MaxSteps)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
