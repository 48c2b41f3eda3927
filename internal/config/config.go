package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"docvector/internal/chunker"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel  slog.Level
	LogFormat string // "text" or "json"

	// Chunker settings.
	Chunk chunker.Options

	// Enrichment (chat completion) settings.
	ChatBaseURL      string
	ChatModel        string
	ChatAPIKey       string
	VisionModel      string
	EnrichBatchSize  int
	EnrichMaxRetries int

	// Embedding settings.
	EmbeddingBaseURL    string
	EmbeddingModel      string
	EmbeddingAPIKey     string
	EmbeddingBatchSize  int
	EmbeddingVectorSize int

	// OCR / document-conversion settings.
	OCRBaseURL string
	OCRAPIKey  string
	OCRModel   string

	// Storage settings.
	DBPath           string
	QdrantURL        string
	QdrantCollection string

	// Input/output directories.
	InputDir  string
	ImagesDir string
}

// Load reads configuration from environment variables and returns a Config
// struct. It applies defaults for optional fields and validates the rest.
// If a .env file exists in the current directory or project root, it is
// loaded automatically; variables already set take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load() // current directory first

	// Walk up toward the project root looking for a .env file.
	if wd, err := os.Getwd(); err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		LogFormat:        getEnv("LOG_FORMAT", "text"),
		ChatBaseURL:      getEnv("OPENAI_BASE_URL", ""),
		ChatModel:        getEnv("OPENAI_MODEL", "gpt-4o"),
		ChatAPIKey:       getEnv("OPENAI_API_KEY", ""),
		VisionModel:      getEnv("VISION_MODEL", "gpt-4o"),
		EmbeddingBaseURL: firstEnv("OPENAI_EMBEDDING_BASE_URL", "OPENAI_BASE_URL"),
		EmbeddingModel:   getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingAPIKey:  firstEnv("OPENAI_EMBEDDING_API_KEY", "OPENAI_API_KEY"),
		OCRBaseURL:       getEnv("OCR_BASE_URL", "https://api.mistral.ai"),
		OCRAPIKey:        getEnv("OCR_API_KEY", ""),
		OCRModel:         getEnv("OCR_MODEL", "mistral-ocr-latest"),
		DBPath:           getEnv("DB_PATH", "./data/docvector.db"),
		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "chunks"),
		InputDir:         getEnv("INPUT_DIR", "./output"),
		ImagesDir:        getEnv("IMAGES_DIR", "./uploads/images"),
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be \"text\" or \"json\", got %q", cfg.LogFormat)
	}

	opts := chunker.DefaultOptions()
	if opts.MinSize, err = getEnvInt("CHUNK_MIN_SIZE", opts.MinSize); err != nil {
		return nil, err
	}
	if opts.MaxSize, err = getEnvInt("CHUNK_MAX_SIZE", opts.MaxSize); err != nil {
		return nil, err
	}
	if opts.OverlapSize, err = getEnvInt("CHUNK_OVERLAP", opts.OverlapSize); err != nil {
		return nil, err
	}
	if opts.Strategy, err = chunker.ParseStrategy(getEnv("CHUNK_STRATEGY", "")); err != nil {
		return nil, err
	}
	opts.AtomicLists = getEnvBool("CHUNK_ATOMIC_LISTS", false)
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	cfg.Chunk = opts

	if cfg.EnrichBatchSize, err = getEnvInt("ENRICH_BATCH_SIZE", 10); err != nil {
		return nil, err
	}
	if cfg.EnrichMaxRetries, err = getEnvInt("ENRICH_MAX_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.EmbeddingBatchSize, err = getEnvInt("EMBEDDING_BATCH_SIZE", 100); err != nil {
		return nil, err
	}

	// Must match the output vector size of the embedding model; the Qdrant
	// collection has to be recreated if this changes.
	if cfg.EmbeddingVectorSize, err = getEnvInt("EMBEDDING_VECTOR_SIZE", 1536); err != nil {
		return nil, err
	}
	if cfg.EmbeddingVectorSize <= 0 {
		return nil, fmt.Errorf("EMBEDDING_VECTOR_SIZE must be greater than 0")
	}

	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", s)
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// firstEnv returns the first non-empty value among the given variables.
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
