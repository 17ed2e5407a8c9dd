// Package config loads the application configuration from the
// environment, with optional .env support for local development.
package config

import (
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Database holds PostgreSQL connection settings.
type Database struct {
	Addr     string
	Name     string
	User     string
	Password string
	Insecure bool
}

// Config is the application configuration.
type Config struct {
	Database Database

	OpenAIAPIKey string
	LLMModel     string

	VectorIndexBasePath string
	EmbeddingDimension  int

	LLMDefaultTemperature   float64
	LLMDefaultMaxTokens     int
	HTTPDefaultTimeoutSecs  int
	AllowDisconnectedGraphs bool
}

var (
	once sync.Once
	cfg  *Config
)

// Load returns the process-wide configuration, reading it once.
func Load() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Debug().Msg("no .env file found, using environment")
		}
		cfg = &Config{
			Database: Database{
				Addr:     getEnv("POSTGRES_ADDR", "localhost:5432"),
				Name:     getEnv("POSTGRES_DB", "flowmesh"),
				User:     getEnv("POSTGRES_USER", "flowmesh"),
				Password: getEnv("POSTGRES_PASSWORD", ""),
				Insecure: getEnvBool("POSTGRES_INSECURE", true),
			},
			OpenAIAPIKey:            os.Getenv("OPENAI_API_KEY"),
			LLMModel:                os.Getenv("LLM_MODEL"),
			VectorIndexBasePath:     getEnv("VECTOR_INDEX_BASE_PATH", "./data/indices"),
			EmbeddingDimension:      getEnvInt("EMBEDDING_DIMENSION", 384),
			LLMDefaultTemperature:   getEnvFloat("LLM_DEFAULT_TEMPERATURE", 0.7),
			LLMDefaultMaxTokens:     getEnvInt("LLM_DEFAULT_MAX_TOKENS", 256),
			HTTPDefaultTimeoutSecs:  getEnvInt("HTTP_DEFAULT_TIMEOUT_SECONDS", 30),
			AllowDisconnectedGraphs: getEnvBool("ALLOW_DISCONNECTED_GRAPHS", false),
		}
	})
	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Warn().Str("key", key).Str("value", value).Msg("invalid integer in environment, using default")
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", value).Msg("invalid float in environment, using default")
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Warn().Str("key", key).Str("value", value).Msg("invalid boolean in environment, using default")
		return fallback
	}
	return parsed
}
