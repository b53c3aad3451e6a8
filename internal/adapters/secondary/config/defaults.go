package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

// GetDefaultConfig returns the built-in configuration. Environment overrides
// are applied separately by ConfigMerger.ApplyEnvVars.
func GetDefaultConfig() *entities.Config {
	return &entities.Config{
		Server: entities.ServerConfig{
			Host:            "localhost",
			Port:            8000,
			ReadTimeout:     30,
			WriteTimeout:    180,
			ShutdownTimeout: 5,
			MaxUploadMB:     32,
			Environment:     "development",
			CORSOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
				"http://localhost:8000",
				"http://127.0.0.1:8000",
			},
		},
		Provider: entities.ProviderConfig{
			DefaultProvider:  entities.DefaultProvider,
			DefaultModel:     entities.DefaultModel,
			Timeout:          120,
			Temperature:      floatPtr(0.2),
			MaxTokens:        1200,
			StructuredOutput: boolPtr(true),
			UserAgent:        "deckgen",
			Endpoints:        map[string]string{},
		},
		Generation: entities.GenerationConfig{
			OutputFilename: entities.DefaultOutputFilename,
			ScratchDir:     "",
		},
		Browser: entities.BrowserConfig{
			AutoOpen: false,
			Browser:  "default",
		},
		Logging: entities.LoggingConfig{
			Level:      "info",
			Verbose:    false,
			JSONFormat: false,
			File:       "",
		},
	}
}

func floatPtr(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns environment variable as int or default
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool returns environment variable as bool and whether it was set
func getEnvBool(key string) (bool, bool) {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue, true
		}
	}
	return false, false
}

// getEnvFloat returns environment variable as float64 and whether it was set
func getEnvFloat(key string) (float64, bool) {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue, true
		}
	}
	return 0, false
}

// getEnvSliceOrDefault returns environment variable as slice or default
func getEnvSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		// Split by comma and trim whitespace
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
