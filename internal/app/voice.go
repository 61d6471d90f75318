package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/HPW17/AI-Conversational-Chatbot/internal/config"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/gemini"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/observability"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/reliability"
)

type voiceSetup struct {
	generator        gemini.Generator
	resolvedProvider string
	detail           string
}

// resolveVoiceProvider picks the hosted Gemini backend when a key is present
// and the offline mock otherwise. Either way calls go through the retry
// decorator so behaviour under failure is the same.
func resolveVoiceProvider(ctx context.Context, cfg config.Config, metrics *observability.Metrics, logger *slog.Logger) (voiceSetup, error) {
	tryGemini := func() (voiceSetup, bool, error) {
		if cfg.GeminiAPIKey == "" {
			return voiceSetup{}, false, nil
		}
		client, err := gemini.NewClient(ctx, gemini.Config{APIKey: cfg.GeminiAPIKey})
		if err != nil {
			return voiceSetup{}, false, err
		}
		return voiceSetup{
			generator:        client,
			resolvedProvider: "gemini",
			detail:           fmt.Sprintf("gemini (%s + %s, voice %s)", cfg.GeminiModel, cfg.GeminiTTSModel, cfg.GeminiTTSVoice),
		}, true, nil
	}
	mock := voiceSetup{
		generator:        gemini.NewMock(cfg.GeminiTTSSampleRate),
		resolvedProvider: "mock",
		detail:           "mock (offline)",
	}

	var setup voiceSetup
	switch cfg.VoiceProvider {
	case "gemini":
		s, ok, err := tryGemini()
		if err != nil {
			return voiceSetup{}, fmt.Errorf("gemini provider init failed: %w", err)
		}
		if !ok {
			return voiceSetup{}, gemini.ErrMissingAPIKey
		}
		setup = s
	case "mock":
		setup = mock
	case "auto", "":
		s, ok, err := tryGemini()
		switch {
		case err != nil:
			logger.Warn("gemini provider unavailable, falling back to mock", "error", err)
			setup = mock
		case !ok:
			setup = mock
			setup.detail = "mock (no GEMINI_API_KEY)"
		default:
			setup = s
		}
	default:
		return voiceSetup{}, fmt.Errorf("invalid VOICE_PROVIDER: %q (expected auto|gemini|mock)", cfg.VoiceProvider)
	}

	policy := reliability.Policy{
		Base:        cfg.GeminiRetryBase,
		Cap:         cfg.GeminiRetryCap,
		MaxAttempts: cfg.GeminiRetryAttempts,
	}
	if policy.MaxAttempts <= 0 {
		policy = reliability.DefaultPolicy(nil)
	}
	setup.generator = gemini.WithRetry(setup.generator, policy,
		gemini.WithRetryLogger(logger),
		gemini.WithRetryObserver(
			func(model string) {
				metrics.ProviderRetries.WithLabelValues(model).Inc()
			},
			func(model string, err error) {
				kind := "fatal"
				if gemini.IsTransient(err) {
					kind = "transient"
				}
				metrics.ProviderErrors.WithLabelValues(model, kind).Inc()
			},
		),
	)
	return setup, nil
}
