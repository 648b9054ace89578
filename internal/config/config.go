package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config aggregates all service configuration.
type Config struct {
	Server ServerConfig
	Gemini GeminiConfig
	Speech SpeechConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	gemini, err := loadGeminiConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Gemini: gemini, Speech: speech}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// Generation defaults: a high temperature for creative variance, the
// provider's usual nucleus-sampling cutoff, and a modest reply cap.
const (
	DefaultTextModel       = "gemini-flash-latest"
	DefaultMultimodalModel = "gemini-2.0-flash"
	DefaultTemperature     = 0.9
	DefaultTopP            = 0.95
	DefaultMaxOutputTokens = 512
)

// GeminiConfig describes the Generative Language API client.
type GeminiConfig struct {
	APIKey          string
	BaseURL         string
	TextModel       string
	MultimodalModel string
	Temperature     float64
	TopP            float64
	MaxOutputTokens int
	TimeoutSeconds  int
}

func loadGeminiConfig() (GeminiConfig, error) {
	temperature, err := parseOptionalFloatEnv("GEMINI_TEMPERATURE")
	if err != nil {
		return GeminiConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("GEMINI_TOP_P")
	if err != nil {
		return GeminiConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("GEMINI_MAX_OUTPUT_TOKENS")
	if err != nil {
		return GeminiConfig{}, err
	}

	timeout, err := parseOptionalIntEnv("GEMINI_TIMEOUT_SECONDS")
	if err != nil {
		return GeminiConfig{}, err
	}

	cfg := GeminiConfig{
		APIKey:          strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		BaseURL:         getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		TextModel:       getEnvOrDefault("GEMINI_TEXT_MODEL", DefaultTextModel),
		MultimodalModel: getEnvOrDefault("GEMINI_MULTIMODAL_MODEL", DefaultMultimodalModel),
		Temperature:     DefaultTemperature,
		TopP:            DefaultTopP,
		MaxOutputTokens: DefaultMaxOutputTokens,
		// The original tool enforced no timeout at all; a bounded default
		// keeps a stuck provider call from pinning a session forever.
		TimeoutSeconds: 90,
	}

	if temperature != nil {
		cfg.Temperature = *temperature
	}
	if topP != nil {
		cfg.TopP = *topP
	}
	if maxTokens != nil {
		cfg.MaxOutputTokens = *maxTokens
	}
	if timeout != nil {
		cfg.TimeoutSeconds = *timeout
	}

	return cfg, nil
}

// SpeechConfig describes the optional text-to-speech capability. Enabled is
// resolved once here; call sites treat the service as absent when false.
type SpeechConfig struct {
	BaseURL        string
	Language       string
	TimeoutSeconds int
	Enabled        bool
}

func loadSpeechConfig() (SpeechConfig, error) {
	enabled, err := parseBoolEnv("TTS_ENABLED", true)
	if err != nil {
		return SpeechConfig{}, err
	}

	timeout, err := parseOptionalIntEnv("TTS_TIMEOUT_SECONDS")
	if err != nil {
		return SpeechConfig{}, err
	}
	timeoutSeconds := 15
	if timeout != nil {
		timeoutSeconds = *timeout
	}

	return SpeechConfig{
		BaseURL:        getEnvOrDefault("TTS_BASE_URL", "https://translate.google.com"),
		Language:       getEnvOrDefault("TTS_LANGUAGE", "en"),
		TimeoutSeconds: timeoutSeconds,
		Enabled:        enabled,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
