package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort     string
	DatabaseURL  string
	GeminiAPIKey string
	GeminiModel  string
	GNewsAPIKey  string

	LLMTimeout   time.Duration
	NewsTimeout  time.Duration
	NewsCacheTTL time.Duration

	GuardrailsEnabled bool
	ForbiddenWords    []string
	AllowedOrigins    []string
}

func Load() (*Config, error) {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		HTTPPort:     getEnv("HTTP_PORT", "8080"),
		DatabaseURL:  getEnv("DATABASE_URL", "consultai.db"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash-latest"),
		GNewsAPIKey:  getEnv("GNEWS_API_KEY", ""),

		LLMTimeout:   time.Duration(getEnvAsInt("LLM_TIMEOUT_SECONDS", 30)) * time.Second,
		NewsTimeout:  time.Duration(getEnvAsInt("NEWS_TIMEOUT_SECONDS", 10)) * time.Second,
		NewsCacheTTL: time.Duration(getEnvAsInt("NEWS_CACHE_MINUTES", 30)) * time.Minute,

		GuardrailsEnabled: getEnvAsBool("GUARDRAILS_ENABLED", true),
		ForbiddenWords:    splitAndTrim(getEnv("FORBIDDEN_WORDS", "")),
		AllowedOrigins:    splitAndTrim(getEnv("ALLOWED_ORIGINS", "*")),
	}

	// The provider keys are deliberately not required here: their absence
	// must surface as a 500 on the endpoints that need them, not prevent
	// the server from starting.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL cannot be empty")
	}
	if c.GeminiModel == "" {
		return fmt.Errorf("GEMINI_MODEL cannot be empty")
	}
	if c.LLMTimeout <= 0 || c.NewsTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.NewsCacheTTL <= 0 {
		return fmt.Errorf("NEWS_CACHE_MINUTES must be > 0")
	}
	return nil
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(strings.TrimSpace(valueStr)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(getEnv(key, ""))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
