package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the memory link voice relay.
type Config struct {
	BindAddr         string
	PublicBaseURL    string
	ShutdownTimeout  time.Duration
	PipelineTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin bool
	// ExposeSessions routes the unauthenticated /v1/sessions and /v1/journal.
	ExposeSessions bool

	LogLevel  string
	LogFormat string

	VoiceProvider string

	GeminiAPIKey        string
	GeminiModel         string
	GeminiTTSModel      string
	GeminiTTSVoice      string
	GeminiTTSSampleRate int
	GeminiRetryBase     time.Duration
	GeminiRetryCap      time.Duration
	GeminiRetryAttempts int

	AudioArtifactTTL time.Duration

	DatabaseURL      string
	JournalRedactPII bool
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:            envOrDefault("APP_BIND_ADDR", ":5000"),
		PublicBaseURL:       strings.TrimRight(stringsTrimSpace("APP_PUBLIC_BASE_URL"), "/"),
		MetricsNamespace:    envOrDefault("APP_METRICS_NAMESPACE", "memorylink"),
		AllowAnyOrigin:      false,
		ExposeSessions:      false,
		LogLevel:            strings.ToLower(envOrDefault("APP_LOG_LEVEL", "info")),
		LogFormat:           strings.ToLower(envOrDefault("APP_LOG_FORMAT", "text")),
		VoiceProvider:       strings.ToLower(envOrDefault("VOICE_PROVIDER", "auto")),
		GeminiAPIKey:        stringsTrimSpace("GEMINI_API_KEY"),
		GeminiModel:         envOrDefault("GEMINI_MODEL", "gemini-2.5-flash-preview-09-2025"),
		GeminiTTSModel:      envOrDefault("GEMINI_TTS_MODEL", "gemini-2.5-flash-preview-tts"),
		GeminiTTSVoice:      envOrDefault("GEMINI_TTS_VOICE", "Charon"),
		GeminiTTSSampleRate: 24000,
		GeminiRetryBase:     time.Second,
		GeminiRetryCap:      30 * time.Second,
		GeminiRetryAttempts: 5,
		AudioArtifactTTL:    10 * time.Minute,
		DatabaseURL:         stringsTrimSpace("DATABASE_URL"),
		JournalRedactPII:    true,
		ShutdownTimeout:     15 * time.Second,
		PipelineTimeout:     3 * time.Minute,
	}
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = stringsTrimSpace("GOOGLE_API_KEY")
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.PipelineTimeout, err = durationFromEnv("APP_PIPELINE_TIMEOUT", cfg.PipelineTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.GeminiTTSSampleRate, err = intFromEnv("GEMINI_TTS_SAMPLE_RATE", cfg.GeminiTTSSampleRate)
	if err != nil {
		return Config{}, err
	}
	cfg.GeminiRetryBase, err = durationFromEnv("GEMINI_RETRY_BASE", cfg.GeminiRetryBase)
	if err != nil {
		return Config{}, err
	}
	cfg.GeminiRetryCap, err = durationFromEnv("GEMINI_RETRY_CAP", cfg.GeminiRetryCap)
	if err != nil {
		return Config{}, err
	}
	cfg.GeminiRetryAttempts, err = intFromEnv("GEMINI_RETRY_ATTEMPTS", cfg.GeminiRetryAttempts)
	if err != nil {
		return Config{}, err
	}
	cfg.AudioArtifactTTL, err = durationFromEnv("AUDIO_ARTIFACT_TTL", cfg.AudioArtifactTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.JournalRedactPII, err = boolFromEnv("JOURNAL_REDACT_PII", cfg.JournalRedactPII)
	if err != nil {
		return Config{}, err
	}
	cfg.ExposeSessions, err = boolFromEnv("APP_EXPOSE_SESSIONS", cfg.ExposeSessions)
	if err != nil {
		return Config{}, err
	}

	switch cfg.VoiceProvider {
	case "auto", "gemini", "mock":
	default:
		return Config{}, fmt.Errorf("VOICE_PROVIDER must be one of auto, gemini, mock")
	}
	if cfg.VoiceProvider == "gemini" && cfg.GeminiAPIKey == "" {
		return Config{}, fmt.Errorf("VOICE_PROVIDER=gemini requires GEMINI_API_KEY or GOOGLE_API_KEY")
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("APP_LOG_FORMAT must be text or json")
	}
	if cfg.PipelineTimeout < time.Second {
		return Config{}, fmt.Errorf("APP_PIPELINE_TIMEOUT must be at least 1s")
	}
	if cfg.GeminiTTSSampleRate <= 0 {
		return Config{}, fmt.Errorf("GEMINI_TTS_SAMPLE_RATE must be positive")
	}
	if cfg.GeminiRetryBase <= 0 {
		return Config{}, fmt.Errorf("GEMINI_RETRY_BASE must be positive")
	}
	if cfg.GeminiRetryCap < cfg.GeminiRetryBase {
		return Config{}, fmt.Errorf("GEMINI_RETRY_CAP must be >= GEMINI_RETRY_BASE")
	}
	if cfg.GeminiRetryAttempts <= 0 {
		return Config{}, fmt.Errorf("GEMINI_RETRY_ATTEMPTS must be positive")
	}
	if cfg.AudioArtifactTTL < 0 {
		return Config{}, fmt.Errorf("AUDIO_ARTIFACT_TTL must be >= 0")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
