package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// WhatsApp Cloud API
	WhatsAppToken   string
	WhatsAppPhoneID string
	VerifyToken     string

	// Provider identifier recorded on message logs (e.g. "meta")
	Provider string

	// Defaults applied to new users
	DefaultCurrency string
	DefaultTimezone string
	DefaultLocale   string

	// Rate limiting
	RateLimitMessages int
	RateLimitWindow   time.Duration

	// Draft sweeping
	DraftMaxAge time.Duration
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		WhatsAppToken:   getEnv("WA_ACCESS_TOKEN", ""),
		WhatsAppPhoneID: getEnv("WA_PHONE_NUMBER_ID", ""),
		VerifyToken:     getEnv("WA_VERIFY_TOKEN", "verify-token-dev-only"),

		Provider: getEnv("MESSAGE_PROVIDER", "meta"),

		DefaultCurrency: getEnv("DEFAULT_CURRENCY", "CLP"),
		DefaultTimezone: getEnv("DEFAULT_TIMEZONE", "America/Santiago"),
		DefaultLocale:   getEnv("DEFAULT_LOCALE", "es-CL"),

		RateLimitMessages: getEnvInt("RATE_LIMIT_MESSAGES", 30),
	}

	config.RateLimitWindow = getEnvDuration("RATE_LIMIT_WINDOW", 300*time.Second)
	config.DraftMaxAge = getEnvDuration("DRAFT_MAX_AGE", 48*time.Hour)

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

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, value, defaultValue)
		return defaultValue
	}
	return n
}

// getEnvDuration retrieves a duration environment variable or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, value, defaultValue)
		return defaultValue
	}
	return d
}
