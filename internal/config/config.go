// Package config loads runtime options from the environment and an
// optional .env file. Only the cmd/ binaries import it; everything else
// receives plain values through constructors.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every option the server, worker and CLI read
type Config struct {
	// GitHub
	GitHubToken   string
	GitHubAPIURL  string        `validate:"required,url"`
	GitHubTimeout time.Duration `validate:"gt=0"`

	// Classification model
	ModelAPIKey      string
	ModelBaseURL     string        `validate:"required,url"`
	ModelName        string        `validate:"required"`
	ModelTemperature float32       `validate:"gte=0,lte=2"`
	ModelMaxTokens   int           `validate:"gt=0"`
	ModelTimeout     time.Duration `validate:"gt=0"`
	ModelRPS         float64       `validate:"gte=0"`

	// Curation
	MaxResults int `validate:"gt=0"`
	Workers    int `validate:"gt=0,lte=64"`

	// REST
	RESTPort string `validate:"required,numeric"`

	// Temporal; an empty address disables durable curations in the server
	TemporalAddress   string
	TemporalNamespace string `validate:"required"`
	TaskQueue         string `validate:"required"`
}

// DurableEnabled reports whether a Temporal address is configured
func (c *Config) DurableEnabled() bool {
	return c.TemporalAddress != ""
}

// Load reads the environment, applying defaults, and validates the result
func Load() (*Config, error) {
	// no-op when there is no .env file
	_ = godotenv.Load()

	r := &envReader{}
	cfg := &Config{
		GitHubToken:   os.Getenv("GITHUB_TOKEN"),
		GitHubAPIURL:  getEnv("GITHUB_API_URL", "https://api.github.com/"),
		GitHubTimeout: r.getDuration("GITHUB_TIMEOUT", 10*time.Second),

		ModelAPIKey:      os.Getenv("OPENROUTER_API_KEY"),
		ModelBaseURL:     getEnv("MODEL_BASE_URL", "https://openrouter.ai/api/v1"),
		ModelName:        getEnv("MODEL_NAME", "meta-llama/llama-3-8b-instruct"),
		ModelTemperature: float32(r.getFloat("MODEL_TEMPERATURE", 0.5)),
		ModelMaxTokens:   r.getInt("MODEL_MAX_TOKENS", 250),
		ModelTimeout:     r.getDuration("MODEL_TIMEOUT", 30*time.Second),
		ModelRPS:         r.getFloat("MODEL_RPS", 0),

		MaxResults: r.getInt("CURATION_MAX_RESULTS", 20),
		Workers:    r.getInt("CURATION_WORKERS", 4),

		RESTPort: getEnv("REST_PORT", "8080"),

		TemporalAddress:   os.Getenv("TEMPORAL_ADDRESS"),
		TemporalNamespace: getEnv("TEMPORAL_NAMESPACE", "default"),
		TaskQueue:         getEnv("TASK_QUEUE", "curation-queue"),
	}

	if err := errors.Join(r.errs...); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envReader collects parse errors so Load can report all of them at once
type envReader struct {
	errs []error
}

func (r *envReader) getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s=%q is not an integer", key, value))
		return defaultValue
	}
	return n
}

func (r *envReader) getFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s=%q is not a number", key, value))
		return defaultValue
	}
	return f
}

func (r *envReader) getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s=%q is not a duration", key, value))
		return defaultValue
	}
	return d
}
