// internal/config/config.go
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"cardflow/pkg/db"
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort string
	DB         db.Config
	// EncryptionKey is the AES key for card numbers at rest,
	// supplied hex-encoded (32, 48 or 64 hex chars).
	EncryptionKey []byte
	// HMACSecret keys the deterministic card number fingerprint.
	HMACSecret []byte
	// SweepSchedule is the cron spec for the expiry sweep.
	SweepSchedule string
}

// LoadConfig loads configuration from environment variables.
// It returns an AppConfig instance or an error if any required variable is missing or invalid.
func LoadConfig() (*AppConfig, error) {
	serverPort := getEnv("SERVER_PORT", "8080")

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	// Development defaults only; production must set real secrets.
	keyHex := getEnv("CARD_ENCRYPTION_KEY", "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6")
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid CARD_ENCRYPTION_KEY: %w", err)
	}
	hmacSecret := getEnv("CARD_HMAC_SECRET", "c9d0e1f2a3b4c5d6a1b2c3d4e5f6a7b8")

	return &AppConfig{
		ServerPort: serverPort,
		DB: db.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "cardflowdb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		EncryptionKey: key,
		HMACSecret:    []byte(hmacSecret),
		SweepSchedule: getEnv("EXPIRY_SWEEP_SCHEDULE", "@hourly"),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
