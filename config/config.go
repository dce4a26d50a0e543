// Package config provides configuration for the chat service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the service configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database. Empty selects the in-memory store.
	DatabaseURL string

	// Completions-style backend (OpenAI-compatible)
	OpenAIAPIKey  string
	OpenAIBaseURL string

	// Generative-style backend (Gemini)
	GeminiAPIKey  string
	GeminiBaseURL string

	// Dispatch defaults
	DefaultProvider string
	DefaultModel    string
	MaxOutputTokens int

	// Timeout for the upstream vendor call
	LLMTimeout time.Duration
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		HTTPPort:        getEnvInt("HTTP_PORT", 8003),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiBaseURL:   getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		DefaultProvider: getEnv("DEFAULT_PROVIDER", "openai"),
		DefaultModel:    getEnv("DEFAULT_MODEL", "gpt-4o-mini"),
		MaxOutputTokens: getEnvInt("MAX_OUTPUT_TOKENS", 1024),
		LLMTimeout:      time.Duration(getEnvInt("LLM_TIMEOUT_MS", 60000)) * time.Millisecond,
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
