// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// server settings, upstream fetch behavior, LLM providers, and chat limits.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// LLM Configuration
	GeminiAPIKey string // Gemini API key for completions and embeddings
	GroqAPIKey   string // Groq API key (fallback completion provider)

	// LLM Model Configuration (optional, defaults apply if empty)
	GeminiModel    string // Gemini chat model (default: gemini-2.0-flash)
	GroqModel      string // Groq chat model (default: llama-3.3-70b-versatile)
	EmbeddingModel string // Gemini embedding model (default: gemini-embedding-001)

	// Course Outlines API
	CourseAPIBaseURL string // SFU course outlines REST base URL

	// Realtime Data Providers (optional, static fallbacks apply if empty)
	OpenWeatherAPIKey string // OpenWeatherMap API key for campus weather
	NewsAPIKey        string // NewsAPI key for university news

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Fetch Configuration
	FetchTimeout    time.Duration
	FetchMaxRetries int

	// Retrieval Configuration
	ChunkSize          int     // Characters per corpus chunk
	ChunkOverlap       int     // Overlap between adjacent chunks
	RelevanceThreshold float64 // Minimum top similarity to answer from the corpus
	RetrievalTopK      int     // Chunks fetched per query

	// Chat Configuration
	HistoryLimit    int           // Messages retained per session
	StreamWordDelay time.Duration // Delay between streamed partials
	AnswerMaxChars  int           // Truncation limit for retrieved answers
	BotReplyDelay   time.Duration // Delay before the room bot answers a trigger

	// Rate Limits (Token Bucket Algorithm)
	LLMBurstTokens      float64 // Maximum burst tokens for LLM calls
	LLMRefillPerSec     float64 // LLM tokens refilled per second
	ConnBurstTokens     float64 // Maximum burst messages per connection
	ConnRefillPerSec    float64 // Messages refilled per second per connection
	MetricsUsername     string  // Username for /metrics Basic Auth
	MetricsPassword     string  // Password for /metrics Basic Auth (empty = no auth)
	BetterStackToken    string  // Better Stack source token (empty = disabled)
	BetterStackEndpoint string  // Better Stack ingest endpoint
	SentryDSN           string  // Sentry DSN (empty = disabled)
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		// LLM Configuration
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GroqAPIKey:   getEnv("GROQ_API_KEY", ""),

		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GroqModel:      getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "gemini-embedding-001"),

		CourseAPIBaseURL: getEnv("COURSE_API_BASE_URL", "https://www.sfu.ca/bin/wcm/course-outlines"),

		OpenWeatherAPIKey: getEnv("OPENWEATHER_API_KEY", ""),
		NewsAPIKey:        getEnv("NEWS_API_KEY", ""),

		// Server Configuration
		Port:            getEnv("PORT", "3001"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),

		// Fetch Configuration
		FetchTimeout:    getDurationEnv("FETCH_TIMEOUT", 30*time.Second),
		FetchMaxRetries: getIntEnv("FETCH_MAX_RETRIES", 3),

		// Retrieval Configuration
		ChunkSize:          getIntEnv("CHUNK_SIZE", 15000),
		ChunkOverlap:       getIntEnv("CHUNK_OVERLAP", 600),
		RelevanceThreshold: getFloatEnv("RELEVANCE_THRESHOLD", 0.75),
		RetrievalTopK:      getIntEnv("RETRIEVAL_TOP_K", 5),

		// Chat Configuration
		HistoryLimit:    getIntEnv("HISTORY_LIMIT", 10),
		StreamWordDelay: getDurationEnv("STREAM_WORD_DELAY", 50*time.Millisecond),
		AnswerMaxChars:  getIntEnv("ANSWER_MAX_CHARS", 800),
		BotReplyDelay:   getDurationEnv("BOT_REPLY_DELAY", time.Second),

		// Rate Limits
		LLMBurstTokens:   getFloatEnv("LLM_BURST_TOKENS", 40.0),
		LLMRefillPerSec:  getFloatEnv("LLM_REFILL_PER_SEC", 0.5),
		ConnBurstTokens:  getFloatEnv("CONN_BURST_TOKENS", 10.0),
		ConnRefillPerSec: getFloatEnv("CONN_REFILL_PER_SEC", 1.0),

		MetricsUsername:     getEnv("METRICS_USERNAME", "prometheus"),
		MetricsPassword:     getEnv("METRICS_PASSWORD", ""),
		BetterStackToken:    getEnv("BETTERSTACK_TOKEN", ""),
		BetterStackEndpoint: getEnv("BETTERSTACK_ENDPOINT", ""),
		SentryDSN:           getEnv("SENTRY_DSN", ""),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.CourseAPIBaseURL == "" {
		errs = append(errs, errors.New("COURSE_API_BASE_URL is required"))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("FETCH_TIMEOUT must be positive, got %v", c.FetchTimeout))
	}
	if c.FetchMaxRetries < 0 {
		errs = append(errs, fmt.Errorf("FETCH_MAX_RETRIES cannot be negative, got %d", c.FetchMaxRetries))
	}
	if c.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize))
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		errs = append(errs, fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", c.ChunkOverlap))
	}
	if c.RelevanceThreshold < 0 || c.RelevanceThreshold > 1 {
		errs = append(errs, fmt.Errorf("RELEVANCE_THRESHOLD must be in [0, 1], got %v", c.RelevanceThreshold))
	}
	if c.RetrievalTopK <= 0 {
		errs = append(errs, fmt.Errorf("RETRIEVAL_TOP_K must be positive, got %d", c.RetrievalTopK))
	}
	if c.HistoryLimit <= 0 {
		errs = append(errs, fmt.Errorf("HISTORY_LIMIT must be positive, got %d", c.HistoryLimit))
	}
	if c.AnswerMaxChars <= 0 {
		errs = append(errs, fmt.Errorf("ANSWER_MAX_CHARS must be positive, got %d", c.AnswerMaxChars))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// HasLLMProvider returns true if at least one LLM provider is configured.
func (c *Config) HasLLMProvider() bool {
	return c.GeminiAPIKey != "" || c.GroqAPIKey != ""
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
