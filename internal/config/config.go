package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Content and menus
	ContentSource      string
	ContentDatabaseURL string
	MenuFile           string
	MenuAnswerMode     string
	RelevanceLimit     int

	// Sessions
	SessionTTL             time.Duration
	SessionCleanupInterval time.Duration

	// Completion service
	LLMProvider         string
	LLMFallbackProvider string
	LLMModel            string
	LLMMaxTokens        int
	LLMTemperature      float64
	LLMTimeout          time.Duration
	LLMMaxRetries       int
	LLMRetryBackoff     time.Duration
	OpenAIAPIKey        string
	GeminiAPIKey        string
	BedrockModelID      string

	// AWS (Bedrock and S3 content)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Interaction log sinks
	InteractionLogPath    string
	InteractionLogMaxMB   int
	InteractionLogKeepPII bool
	InteractionLogTimeout time.Duration
	RedisAddr             string
	RedisPassword         string
	RedisTLS              bool
	DatabaseURL           string

	// HTTP surface
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
	StaticDir          string
	MetricsEnabled     bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		ContentSource:      getEnv("CONTENT_SOURCE", "data/index.json"),
		ContentDatabaseURL: getEnv("CONTENT_DATABASE_URL", ""),
		MenuFile:           getEnv("MENU_FILE", ""),
		MenuAnswerMode:     strings.ToLower(strings.TrimSpace(getEnv("MENU_ANSWER_MODE", "canned"))),
		RelevanceLimit:     getEnvAsInt("RELEVANCE_LIMIT", 3),

		SessionTTL:             getEnvAsDuration("SESSION_TTL", 0),
		SessionCleanupInterval: getEnvAsDuration("SESSION_CLEANUP_INTERVAL", 10*time.Minute),

		LLMProvider:         strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "none"))),
		LLMFallbackProvider: strings.ToLower(strings.TrimSpace(getEnv("LLM_FALLBACK_PROVIDER", ""))),
		LLMModel:            getEnv("LLM_MODEL", ""),
		LLMMaxTokens:        getEnvAsInt("LLM_MAX_TOKENS", 400),
		LLMTemperature:      getEnvAsFloat("LLM_TEMPERATURE", 0.2),
		LLMTimeout:          getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
		LLMMaxRetries:       getEnvAsInt("LLM_MAX_RETRIES", 2),
		LLMRetryBackoff:     getEnvAsDuration("LLM_RETRY_BACKOFF", time.Second),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		BedrockModelID:      getEnv("BEDROCK_MODEL_ID", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		InteractionLogPath:    getEnv("INTERACTION_LOG_PATH", ""),
		InteractionLogMaxMB:   getEnvAsInt("INTERACTION_LOG_MAX_MB", 10),
		InteractionLogKeepPII: getEnvAsBool("INTERACTION_LOG_KEEP_PII", true),
		InteractionLogTimeout: getEnvAsDuration("INTERACTION_LOG_TIMEOUT", 2*time.Second),
		RedisAddr:             getEnv("REDIS_ADDR", ""),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		RedisTLS:              getEnvAsBool("REDIS_TLS", false),
		DatabaseURL:           getEnv("DATABASE_URL", ""),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),
		StaticDir:          getEnv("STATIC_DIR", "frontend"),
		MetricsEnabled:     getEnvAsBool("METRICS_ENABLED", true),
	}
}

// CompletionEnabled reports whether a completion provider is configured.
func (c *Config) CompletionEnabled() bool {
	return c.LLMProvider != "" && c.LLMProvider != "none"
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

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
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

// getEnvAsList splits a comma separated variable, dropping blank items.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
