package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Settings holds process-level settings read from the environment
type Settings struct {
	LogLevel     string
	LogPretty    bool
	DatabasePath string
	Port         int
}

// LoadSettings reads settings from environment variables, loading a .env
// file first if one exists
func LoadSettings() (*Settings, error) {
	_ = godotenv.Load()

	s := &Settings{
		LogLevel:     getEnv("FINCAST_LOG_LEVEL", "info"),
		LogPretty:    getEnvAsBool("FINCAST_LOG_PRETTY", false),
		DatabasePath: getEnv("FINCAST_DB_PATH", "./fincast.db"),
		Port:         getEnvAsInt("FINCAST_PORT", 8080),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that required settings are present
func (s *Settings) Validate() error {
	if s.DatabasePath == "" {
		return fmt.Errorf("FINCAST_DB_PATH is required")
	}
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("FINCAST_PORT must be between 1 and 65535")
	}
	return nil
}

// Addr is the listen address for the HTTP server
func (s *Settings) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
