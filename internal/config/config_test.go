package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":5000" {
		t.Fatalf("BindAddr = %q, want :5000", cfg.BindAddr)
	}
	if cfg.VoiceProvider != "auto" {
		t.Fatalf("VoiceProvider = %q, want auto", cfg.VoiceProvider)
	}
	if cfg.GeminiTTSVoice != "Charon" {
		t.Fatalf("GeminiTTSVoice = %q, want Charon", cfg.GeminiTTSVoice)
	}
	if cfg.GeminiTTSSampleRate != 24000 {
		t.Fatalf("GeminiTTSSampleRate = %d, want 24000", cfg.GeminiTTSSampleRate)
	}
	if cfg.GeminiRetryBase != time.Second || cfg.GeminiRetryCap != 30*time.Second || cfg.GeminiRetryAttempts != 5 {
		t.Fatalf("retry = %v/%v/%d, want 1s/30s/5", cfg.GeminiRetryBase, cfg.GeminiRetryCap, cfg.GeminiRetryAttempts)
	}
	if cfg.AudioArtifactTTL != 10*time.Minute {
		t.Fatalf("AudioArtifactTTL = %v, want 10m", cfg.AudioArtifactTTL)
	}
	if cfg.PipelineTimeout != 3*time.Minute {
		t.Fatalf("PipelineTimeout = %v, want 3m", cfg.PipelineTimeout)
	}
	if !cfg.JournalRedactPII {
		t.Fatalf("JournalRedactPII = false, want true")
	}
	if cfg.ExposeSessions {
		t.Fatalf("ExposeSessions = true, want false")
	}
	if cfg.GeminiAPIKey != "" || cfg.DatabaseURL != "" {
		t.Fatalf("secrets should default empty")
	}
}

func TestLoadFallsBackToGoogleAPIKey(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("GOOGLE_API_KEY", " google-key ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GeminiAPIKey != "google-key" {
		t.Fatalf("GeminiAPIKey = %q, want google-key", cfg.GeminiAPIKey)
	}

	t.Setenv("GEMINI_API_KEY", "gemini-key")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GeminiAPIKey != "gemini-key" {
		t.Fatalf("GeminiAPIKey = %q, want gemini-key", cfg.GeminiAPIKey)
	}
}

func TestLoadOverrides(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_BIND_ADDR", ":9191")
	t.Setenv("APP_PUBLIC_BASE_URL", "https://relay.example.com/")
	t.Setenv("GEMINI_RETRY_ATTEMPTS", "3")
	t.Setenv("GEMINI_RETRY_BASE", "250ms")
	t.Setenv("GEMINI_RETRY_CAP", "2s")
	t.Setenv("VOICE_PROVIDER", "MOCK")
	t.Setenv("APP_ALLOW_ANY_ORIGIN", "yes")
	t.Setenv("APP_EXPOSE_SESSIONS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":9191" {
		t.Fatalf("BindAddr = %q, want :9191", cfg.BindAddr)
	}
	if cfg.PublicBaseURL != "https://relay.example.com" {
		t.Fatalf("PublicBaseURL = %q, want trailing slash trimmed", cfg.PublicBaseURL)
	}
	if cfg.GeminiRetryAttempts != 3 || cfg.GeminiRetryBase != 250*time.Millisecond || cfg.GeminiRetryCap != 2*time.Second {
		t.Fatalf("retry = %v/%v/%d", cfg.GeminiRetryBase, cfg.GeminiRetryCap, cfg.GeminiRetryAttempts)
	}
	if cfg.VoiceProvider != "mock" {
		t.Fatalf("VoiceProvider = %q, want mock", cfg.VoiceProvider)
	}
	if !cfg.AllowAnyOrigin {
		t.Fatalf("AllowAnyOrigin = false, want true")
	}
	if !cfg.ExposeSessions {
		t.Fatalf("ExposeSessions = false, want true")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		key, value, wantErr string
	}{
		{"VOICE_PROVIDER", "elevenlabs", "VOICE_PROVIDER"},
		{"VOICE_PROVIDER", "gemini", "requires GEMINI_API_KEY"},
		{"APP_LOG_FORMAT", "xml", "APP_LOG_FORMAT"},
		{"APP_PIPELINE_TIMEOUT", "10ms", "APP_PIPELINE_TIMEOUT"},
		{"APP_SHUTDOWN_TIMEOUT", "soon", "APP_SHUTDOWN_TIMEOUT parse error"},
		{"GEMINI_RETRY_ATTEMPTS", "0", "GEMINI_RETRY_ATTEMPTS"},
		{"GEMINI_RETRY_CAP", "100ms", "GEMINI_RETRY_CAP"},
		{"GEMINI_TTS_SAMPLE_RATE", "-1", "GEMINI_TTS_SAMPLE_RATE"},
		{"JOURNAL_REDACT_PII", "maybe", "expected bool"},
	}
	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			setCoreEnvEmpty(t)
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Load() error = %v, want containing %q", err, tc.wantErr)
			}
		})
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_PUBLIC_BASE_URL",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_PIPELINE_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"APP_ALLOW_ANY_ORIGIN",
		"APP_EXPOSE_SESSIONS",
		"APP_LOG_LEVEL",
		"APP_LOG_FORMAT",
		"VOICE_PROVIDER",
		"GEMINI_API_KEY",
		"GOOGLE_API_KEY",
		"GEMINI_MODEL",
		"GEMINI_TTS_MODEL",
		"GEMINI_TTS_VOICE",
		"GEMINI_TTS_SAMPLE_RATE",
		"GEMINI_RETRY_BASE",
		"GEMINI_RETRY_CAP",
		"GEMINI_RETRY_ATTEMPTS",
		"AUDIO_ARTIFACT_TTL",
		"DATABASE_URL",
		"JOURNAL_REDACT_PII",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}
