package config

import (
	"os"
	"strconv"
	"time"
)

const (
	DefaultProvider          = "gemini"
	DefaultGeminiImageModel  = "gemini-2.5-flash-image"
	DefaultOpenAIImageModel  = "gpt-image-1"
	DefaultUploadsDir        = "uploads"
	DefaultPort              = "8888"
	DefaultSessionTTL        = 2 * time.Hour
	DefaultGenerationTimeout = 2 * time.Minute
	DefaultMaxUploadMB       = 10
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	Provider           string
	GeminiAPIKey       string
	GeminiImageModel   string
	OpenAIAPIKey       string
	OpenAIImageModel   string
	OpenAIBaseURL      string
	UploadsDir         string
	CatalogFile        string
	Port               string
	SessionTTL         time.Duration
	GenerationTimeout  time.Duration
	GenerationInterval time.Duration
	MaxUploadBytes     int64
}

// Load reads configuration from the environment and applies defaults where needed.
func Load() *Config {
	return &Config{
		Provider:           getEnv("STYLESHOT_PROVIDER", DefaultProvider),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiImageModel:   getEnv("GEMINI_IMAGE_MODEL", DefaultGeminiImageModel),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIImageModel:   getEnv("OPENAI_IMAGE_MODEL", DefaultOpenAIImageModel),
		OpenAIBaseURL:      os.Getenv("OPENAI_BASE_URL"),
		UploadsDir:         getEnv("UPLOADS_DIR", DefaultUploadsDir),
		CatalogFile:        os.Getenv("CATALOG_FILE"),
		Port:               getEnv("PORT", DefaultPort),
		SessionTTL:         getEnvDuration("SESSION_TTL", DefaultSessionTTL),
		GenerationTimeout:  getEnvDuration("GENERATION_TIMEOUT", DefaultGenerationTimeout),
		GenerationInterval: getEnvDuration("GENERATION_INTERVAL", 0),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_MB", DefaultMaxUploadMB)) * 1024 * 1024,
	}
}

// ImageModel returns the model name for the configured provider.
func (c *Config) ImageModel() string {
	if c.Provider == "openai" {
		return c.OpenAIImageModel
	}
	return c.GeminiImageModel
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
