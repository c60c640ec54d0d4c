// Package config loads the aggregator's tunables from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// MaxPageSize is the hard ceiling for a requested page size.
	MaxPageSize = 200

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	// Feed settings
	FeedsConfigPath string // optional YAML list of sources
	PerSourceLimit  int
	TotalCap        int
	WindowDays      int
	FetchTimeout    time.Duration

	// Paging
	DefaultPageSize int

	// Summarizer / clusterer / overview
	SummaryChunkSize    int
	SnippetLimit        int
	SimilarityThreshold float64
	OverviewGroups      int

	// Model provider
	Provider             string // "gemini" or "openai"
	GeminiAPIKey         string
	GeminiSummaryModel   string
	GeminiEmbeddingModel string
	OpenAIAPIKey         string
	OpenAISummaryModel   string
	OpenAIEmbeddingModel string

	// App settings
	HTTPAddr       string
	RequestTimeout time.Duration
	CacheTTL       time.Duration // 0 disables the response cache
	Debug          bool
	LogFormat      string
}

// Default returns a Config populated with every default value and no keys.
func Default() *Config {
	return &Config{
		PerSourceLimit:       50,
		TotalCap:             300,
		WindowDays:           7,
		FetchTimeout:         8 * time.Second,
		DefaultPageSize:      60,
		SummaryChunkSize:     10,
		SnippetLimit:         300,
		SimilarityThreshold:  0.86,
		OverviewGroups:       12,
		Provider:             ProviderGemini,
		GeminiSummaryModel:   "gemini-1.5-flash",
		GeminiEmbeddingModel: "text-embedding-004",
		OpenAISummaryModel:   "gpt-4o-mini",
		OpenAIEmbeddingModel: "text-embedding-3-small",
		HTTPAddr:             ":8080",
		RequestTimeout:       60 * time.Second,
		LogFormat:            "text",
	}
}

// Load reads .env (when present) and the environment on top of Default.
// Missing API keys are not an error here: they fail the request that needs
// the model, not the process.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	cfg.FeedsConfigPath = os.Getenv("FEEDS_CONFIG_PATH")
	cfg.PerSourceLimit = getEnvIntOrDefault("NEWS_PER_SOURCE", cfg.PerSourceLimit)
	cfg.TotalCap = getEnvIntOrDefault("NEWS_TOTAL_CAP", cfg.TotalCap)
	cfg.WindowDays = getEnvIntOrDefault("NEWS_DAYS", cfg.WindowDays)
	cfg.FetchTimeout = getEnvSecondsOrDefault("NEWS_FETCH_TIMEOUT_SECONDS", cfg.FetchTimeout)
	cfg.DefaultPageSize = ClampPageSize(getEnvIntOrDefault("NEWS_PAGE_SIZE", cfg.DefaultPageSize))
	cfg.SummaryChunkSize = getEnvIntOrDefault("NEWS_SUMMARY_CHUNK_SIZE", cfg.SummaryChunkSize)
	cfg.SnippetLimit = getEnvIntOrDefault("NEWS_SNIPPET_LIMIT", cfg.SnippetLimit)
	cfg.SimilarityThreshold = getEnvFloatOrDefault("NEWS_SIMILARITY", cfg.SimilarityThreshold)
	cfg.OverviewGroups = getEnvIntOrDefault("NEWS_OVERVIEW_GROUPS", cfg.OverviewGroups)
	cfg.CacheTTL = getEnvSecondsOrDefault("NEWS_CACHE_TTL_SECONDS", cfg.CacheTTL)

	cfg.Provider = strings.ToLower(getEnvOrDefault("LLM_PROVIDER", cfg.Provider))
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiSummaryModel = getEnvOrDefault("GEMINI_SUMMARY_MODEL", cfg.GeminiSummaryModel)
	cfg.GeminiEmbeddingModel = getEnvOrDefault("GEMINI_EMBEDDING_MODEL", cfg.GeminiEmbeddingModel)
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenAISummaryModel = getEnvOrDefault("OPENAI_SUMMARY_MODEL", cfg.OpenAISummaryModel)
	cfg.OpenAIEmbeddingModel = getEnvOrDefault("OPENAI_EMBEDDING_MODEL", cfg.OpenAIEmbeddingModel)

	cfg.HTTPAddr = getEnvOrDefault("HTTP_ADDR", cfg.HTTPAddr)
	cfg.RequestTimeout = getEnvSecondsOrDefault("REQUEST_TIMEOUT_SECONDS", cfg.RequestTimeout)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)
	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

// Window is the trailing recency window.
func (c *Config) Window() time.Duration {
	return time.Duration(c.WindowDays) * 24 * time.Hour
}

// ClampPageSize bounds a page size to 1..MaxPageSize.
func ClampPageSize(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvSecondsOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.PerSourceLimit < 1 {
		return fmt.Errorf("NEWS_PER_SOURCE must be positive")
	}
	if c.TotalCap < 1 {
		return fmt.Errorf("NEWS_TOTAL_CAP must be positive")
	}
	if c.WindowDays < 1 {
		return fmt.Errorf("NEWS_DAYS must be positive")
	}
	if c.SummaryChunkSize < 1 {
		return fmt.Errorf("NEWS_SUMMARY_CHUNK_SIZE must be positive")
	}
	if c.SnippetLimit < 1 {
		return fmt.Errorf("NEWS_SNIPPET_LIMIT must be positive")
	}
	if c.SimilarityThreshold < -1 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("NEWS_SIMILARITY must be within [-1, 1], got %v", c.SimilarityThreshold)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("NEWS_FETCH_TIMEOUT_SECONDS must be positive")
	}
	if c.Provider != ProviderGemini && c.Provider != ProviderOpenAI {
		return fmt.Errorf("LLM_PROVIDER must be 'gemini' or 'openai'")
	}
	return nil
}
