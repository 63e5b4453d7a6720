package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is used when JWT_SECRET_KEY is not configured. It must never reach production.
const DefaultJWTSecret = "your-secret-key-change-in-production"

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	TierPremium = "premium"
	TierFree    = "free"
)

type Config struct {
	Env     string
	Server  ServerConfig
	Auth    AuthConfig
	AI      AIConfig
	CORS    CORSConfig
	Access  AccessConfig
	Prompts PromptsConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
}

type AIConfig struct {
	Provider        string
	APIKey          string
	BaseURL         string
	Model           string
	Timeout         time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	MaxOutputTokens int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type AccessConfig struct {
	Tier string
}

// PromptsConfig points at a template file overriding the embedded prompts. Empty means embedded.
type PromptsConfig struct {
	File string
}

// Load reads the application configuration from the environment and an optional .env file.
func Load() (Config, error) {
	cfg := Config{}

	if err := loadEnv(); err != nil {
		return cfg, err
	}

	cfg.Env = getEnv("APP_ENV", "local")

	serverPort, err := parseIntEnv("SERVER_PORT", 8000)
	if err != nil {
		return cfg, err
	}

	readTimeout, err := parseDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return cfg, err
	}

	// The write timeout has to outlive the upstream call and its retries.
	writeTimeout, err := parseDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second)
	if err != nil {
		return cfg, err
	}

	idleTimeout, err := parseDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return cfg, err
	}

	cfg.Server = ServerConfig{
		Host:         getEnv("SERVER_HOST", "0.0.0.0"),
		Port:         serverPort,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	cfg.Auth = AuthConfig{
		JWTSecret: getEnv("JWT_SECRET_KEY", DefaultJWTSecret),
		JWTIssuer: getEnv("JWT_ISSUER", ""),
	}

	aiTimeout, err := parseDurationEnv("AI_TIMEOUT", 30*time.Second)
	if err != nil {
		return cfg, err
	}

	aiMaxRetries, err := parseNonNegativeIntEnv("AI_MAX_RETRIES", 2)
	if err != nil {
		return cfg, err
	}

	aiRetryBackoff, err := parseDurationEnv("AI_RETRY_BACKOFF", 500*time.Millisecond)
	if err != nil {
		return cfg, err
	}

	aiMaxOutputTokens, err := parseIntEnv("AI_MAX_OUTPUT_TOKENS", 4096)
	if err != nil {
		return cfg, err
	}

	aiProvider := strings.ToLower(strings.TrimSpace(getEnv("AI_PROVIDER", ProviderGemini)))
	defaultBaseURL := ""
	defaultModel := "gemini-2.5-flash"
	if aiProvider == ProviderOpenAI {
		defaultBaseURL = "https://api.openai.com/v1"
		defaultModel = "gpt-4o-mini"
	}

	aiAPIKey := strings.TrimSpace(getEnv("AI_API_KEY", ""))
	if aiAPIKey == "" {
		aiAPIKey = strings.TrimSpace(getEnv("GEMINI_API_KEY", ""))
	}

	cfg.AI = AIConfig{
		Provider:        aiProvider,
		APIKey:          aiAPIKey,
		BaseURL:         getEnv("AI_BASE_URL", defaultBaseURL),
		Model:           getEnv("AI_MODEL", defaultModel),
		Timeout:         aiTimeout,
		MaxRetries:      aiMaxRetries,
		RetryBackoff:    aiRetryBackoff,
		MaxOutputTokens: aiMaxOutputTokens,
	}

	cfg.CORS = CORSConfig{
		AllowedOrigins: parseOriginsEnv("ALLOWED_ORIGINS"),
	}

	cfg.Access = AccessConfig{
		Tier: strings.ToLower(strings.TrimSpace(getEnv("ACCESS_TIER", TierPremium))),
	}

	cfg.Prompts = PromptsConfig{
		File: strings.TrimSpace(getEnv("PROMPTS_FILE", "")),
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// UsesDefaultSecret reports whether token signing falls back to the insecure placeholder.
func (c AuthConfig) UsesDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

func (c Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("SERVER_PORT must be greater than 0")
	}

	if c.AI.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is not set. Please set it (or AI_API_KEY) before running the application")
	}

	switch c.AI.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("AI_PROVIDER must be %q or %q, got %q", ProviderGemini, ProviderOpenAI, c.AI.Provider)
	}

	if c.AI.Model == "" {
		return fmt.Errorf("AI_MODEL is required")
	}

	if c.AI.MaxOutputTokens <= 0 {
		return fmt.Errorf("AI_MAX_OUTPUT_TOKENS must be greater than 0")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET_KEY must not be empty")
	}

	switch c.Access.Tier {
	case TierPremium, TierFree:
	default:
		return fmt.Errorf("ACCESS_TIER must be %q or %q, got %q", TierPremium, TierFree, c.Access.Tier)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseNonNegativeIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	if parsed < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}

	return parsed, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

// parseOriginsEnv returns the CORS allow-list; unset, empty or "*" allows every origin.
func parseOriginsEnv(key string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" || strings.TrimSpace(value) == "*" {
		return []string{"*"}
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func loadEnv() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	return nil
}
