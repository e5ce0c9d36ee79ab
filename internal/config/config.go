package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Plaid aggregator
	PlaidClientID     string
	PlaidSecret       string
	PlaidEnv          string
	PlaidClientName   string
	AggregatorTimeout time.Duration

	// Fraud classifier
	FraudScorerURL   string
	FraudEncoderPath string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "pennywise"),
		DBPassword: getEnv("DB_PASSWORD", "pennywise"),
		DBName:     getEnv("DB_NAME", "pennywise"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Aggregator
		PlaidClientID:   os.Getenv("PLAID_CLIENT_ID"),
		PlaidSecret:     os.Getenv("PLAID_SECRET"),
		PlaidEnv:        getEnv("PLAID_ENV", "sandbox"),
		PlaidClientName: getEnv("PLAID_CLIENT_NAME", "Pennywise"),

		// Classifier
		FraudScorerURL:   getEnv("FRAUD_SCORER_URL", "http://localhost:9090"),
		FraudEncoderPath: getEnv("FRAUD_ENCODER_PATH", "artifacts/encoders.json"),
	}

	// Parse aggregator timeout; upstream calls must never hang a request.
	timeoutStr := getEnv("AGGREGATOR_TIMEOUT", "15s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		log.Printf("Warning: invalid AGGREGATOR_TIMEOUT value '%s', falling back to 15s\n", timeoutStr)
		timeout = 15 * time.Second
	}
	config.AggregatorTimeout = timeout

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
