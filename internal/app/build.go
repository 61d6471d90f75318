package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/HPW17/AI-Conversational-Chatbot/internal/artifact"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/config"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/httpapi"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/journal"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/observability"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/persona"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/scene"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/session"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/voice"
)

const (
	artifactJanitorInterval = 30 * time.Second
	journalForgetTimeout    = 2 * time.Second
)

type VoiceInfo struct {
	Provider string
	Detail   string
}

type BuildResult struct {
	Config       config.Config
	API          *httpapi.Server
	Sessions     *session.Manager
	Artifacts    *artifact.Store
	Journal      journal.Store
	Orchestrator *voice.Orchestrator
	Metrics      *observability.Metrics
	Voice        VoiceInfo

	// Cleanup should be called on shutdown to release external resources
	// (database pool, janitor).
	Cleanup func() error
}

// Build wires every component. Background work started here stops when
// Cleanup is called.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*BuildResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	journalStore, err := journal.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("journal store init failed: %w", err)
	}

	voiceSetup, err := resolveVoiceProvider(ctx, cfg, metrics, logger)
	if err != nil {
		_ = journalStore.Close()
		return nil, err
	}
	cfg.VoiceProvider = voiceSetup.resolvedProvider
	logger.Info("voice provider ready", "provider", voiceSetup.resolvedProvider, "detail", voiceSetup.detail)

	scenes := scene.NewCatalog(scene.Seed())

	artifacts := artifact.NewStore(cfg.AudioArtifactTTL)
	artifacts.SetExpireHook(func(n int) {
		metrics.ObserveArtifact("expired", n)
		logger.Debug("expired unclaimed audio", "count", n)
	})
	janitorCtx, stopJanitor := context.WithCancel(context.WithoutCancel(ctx))
	artifacts.StartJanitor(janitorCtx, artifactJanitorInterval)

	sessions := session.NewManager()
	sessions.SetCloseHook(func(s *session.Session) {
		metrics.ObserveEvent("closed")
		metrics.SetActiveSessions(sessions.ActiveCount())
		forgetCtx, cancel := context.WithTimeout(context.Background(), journalForgetTimeout)
		defer cancel()
		if err := journalStore.Forget(forgetCtx, s.ID); err != nil {
			logger.Warn("journal forget failed", "session_id", s.ID, "error", err)
		}
	})

	speech := voice.NewSpeech(voiceSetup.generator, voice.SpeechConfig{
		Model:      cfg.GeminiModel,
		TTSModel:   cfg.GeminiTTSModel,
		Voice:      cfg.GeminiTTSVoice,
		SampleRate: cfg.GeminiTTSSampleRate,
	})

	orchestrator := voice.NewOrchestrator(voice.Options{
		Scenes:          scenes,
		Pipeline:        speech,
		Artifacts:       artifacts,
		Journal:         journalStore,
		RedactPII:       cfg.JournalRedactPII,
		Metrics:         metrics,
		Logger:          logger,
		BaseInstruction: persona.BaseInstruction,
		PipelineTimeout: cfg.PipelineTimeout,
	})

	api := httpapi.New(cfg, httpapi.Deps{
		Sessions:     sessions,
		Orchestrator: orchestrator,
		Artifacts:    artifacts,
		Scenes:       scenes,
		Journal:      journalStore,
		Metrics:      metrics,
		Logger:       logger,
	})

	cleanup := func() error {
		stopJanitor()
		var errs []string
		if err := journalStore.Close(); err != nil {
			errs = append(errs, err.Error())
		}
		if len(errs) > 0 {
			return fmt.Errorf("%s", strings.Join(errs, "; "))
		}
		return nil
	}

	return &BuildResult{
		Config:       cfg,
		API:          api,
		Sessions:     sessions,
		Artifacts:    artifacts,
		Journal:      journalStore,
		Orchestrator: orchestrator,
		Metrics:      metrics,
		Voice: VoiceInfo{
			Provider: voiceSetup.resolvedProvider,
			Detail:   voiceSetup.detail,
		},
		Cleanup: cleanup,
	}, nil
}
