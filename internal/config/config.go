package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	LLM       LLMConfig
	Whisper   WhisperConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port        string
	Env         string
	CORSOrigins string
}

type StorageConfig struct {
	DataDir string
}

type LLMConfig struct {
	Provider    string
	Temperature float32

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	GeminiAPIKey string
	GeminiModel  string

	BreakerEnabled      bool
	BreakerMinRequests  int
	BreakerFailureRatio float64
	BreakerOpenTimeout  time.Duration
}

type WhisperConfig struct {
	URL         string
	Model       string
	Device      string
	ComputeType string
	Language    string
	Workers     int
	LoadTimeout time.Duration
}

type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using environment and default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8000"),
			Env:         getEnv("ENV", "development"),
			CORSOrigins: getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000"),
		},
		Storage: StorageConfig{
			DataDir: getEnv("DATA_DIR", "./data"),
		},
		LLM: LLMConfig{
			Provider:    strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
			Temperature: getEnvAsFloat32("LLM_TEMPERATURE", 0.7),

			OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4"),

			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

			BreakerEnabled:      getEnvAsBool("LLM_BREAKER_ENABLED", false),
			BreakerMinRequests:  getEnvAsInt("LLM_BREAKER_MIN_REQUESTS", 5),
			BreakerFailureRatio: getEnvAsFloat64("LLM_BREAKER_FAILURE_RATIO", 0.6),
			BreakerOpenTimeout:  getEnvAsDuration("LLM_BREAKER_OPEN_TIMEOUT", "30s"),
		},
		Whisper: WhisperConfig{
			URL:         getEnvAllowEmpty("WHISPER_URL", "http://localhost:9000"),
			Model:       getEnv("WHISPER_MODEL", "base"),
			Device:      getEnv("WHISPER_DEVICE", "cpu"),
			ComputeType: getEnv("WHISPER_COMPUTE_TYPE", "int8"),
			Language:    getEnv("WHISPER_LANGUAGE", "zh"),
			Workers:     getEnvAsInt("WHISPER_WORKERS", 1),
			LoadTimeout: getEnvAsDuration("WHISPER_LOAD_TIMEOUT", "2m"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 0),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 10),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty lets an explicitly empty variable switch a feature off.
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	return float32(getEnvAsFloat64(key, float64(defaultValue)))
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
