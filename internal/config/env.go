package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// envFiles are tried in order; the first one found is loaded.
var envFiles = []string{
	".env",
	".env.local",
	"../.env",
}

// LoadEnv loads environment variables from the first .env file found.
// Variables already present in the process environment are not overridden.
// It returns the path that was loaded, or an empty string when none exists.
func LoadEnv() (string, error) {
	for _, envPath := range envFiles {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			return "", fmt.Errorf("error loading %s file: %w", envPath, err)
		}
		return envPath, nil
	}
	return "", nil
}

// applyEnv overrides cfg with values from the process environment.
func applyEnv(cfg *Config) error {
	cfg.Host = getEnvOrDefault("HOST", cfg.Host)
	cfg.Port = getEnvOrDefault("PORT", cfg.Port)
	cfg.Environment = getEnvOrDefault("APP_ENV", getEnvOrDefault("NODE_ENV", cfg.Environment))
	cfg.UploadsDir = getEnvOrDefault("UPLOADS_DIR", cfg.UploadsDir)

	cfg.OpenAI.APIKey = strings.TrimSpace(getEnvOrDefault("OPENAI_API_KEY", cfg.OpenAI.APIKey))
	cfg.OpenAI.BaseURL = getEnvOrDefault("OPENAI_BASE_URL", cfg.OpenAI.BaseURL)
	cfg.OpenAI.Model = getEnvOrDefault("OPENAI_TRANSCRIBE_MODEL", cfg.OpenAI.Model)

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}

	if raw := os.Getenv("FALLBACK_DELAY"); raw != "" {
		delay, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid FALLBACK_DELAY %q: %w", raw, err)
		}
		cfg.FallbackDelay = delay
	}

	if raw := os.Getenv("MAX_FILE_SIZE"); raw != "" {
		size, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_FILE_SIZE %q: %w", raw, err)
		}
		cfg.MaxFileSize = size
	}

	return nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
