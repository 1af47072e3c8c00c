package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Pricing
	CommissionRate           float64
	SubscriptionDiscountRate float64
	EmergencyMultiplier      float64

	// Appointment lifecycle
	CancelCutoff    time.Duration
	SlotLockTTL     time.Duration
	AdminJWTSecret  string
	CORSAllowedCSV  string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	// Escrow release worker
	EscrowReleaseDelay    time.Duration
	EscrowReleaseInterval time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		CommissionRate:           getEnvAsFloat("COMMISSION_RATE", 0.07),
		SubscriptionDiscountRate: getEnvAsFloat("SUBSCRIPTION_DISCOUNT_RATE", 0.10),
		EmergencyMultiplier:      getEnvAsFloat("EMERGENCY_MULTIPLIER", 1.5),

		CancelCutoff:    getEnvAsDuration("CANCEL_CUTOFF", 0),
		SlotLockTTL:     getEnvAsDuration("SLOT_LOCK_TTL", 24*time.Hour),
		AdminJWTSecret:  getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedCSV:  getEnv("CORS_ALLOWED_ORIGINS", ""),
		RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 15*time.Second),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		EscrowReleaseDelay:    getEnvAsDuration("ESCROW_RELEASE_DELAY", 24*time.Hour),
		EscrowReleaseInterval: getEnvAsDuration("ESCROW_RELEASE_INTERVAL", 10*time.Minute),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
