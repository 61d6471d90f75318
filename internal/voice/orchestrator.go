package voice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HPW17/AI-Conversational-Chatbot/internal/artifact"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/audio"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/gemini"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/journal"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/observability"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/persona"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/policy"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/protocol"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/scene"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/session"
)

const (
	StatusConnected    = "Connected. Ready to receive audio stream."
	StatusListening    = "Listening..."
	StatusSceneReset   = "Memory context reset."
	StatusTranscribing = "Processing (Transcribing Audio)..."
	StatusGenerating   = "Processing (Generating Response)..."
	StatusResponseSent = "Response sent successfully."
	StatusUnavailable  = "Service temporarily unavailable. Please try again."
	StatusFailed       = "Server processing error."

	ErrorNoAudio    = "No audio recorded. Try again."
	ErrorSceneLoad  = "Failed to load memory scene"
	errorInvalidFmt = "Invalid memory ID: %s"
	statusLoadedFmt = "Memory %s loaded successfully."

	defaultPipelineTimeout = 3 * time.Minute
	journalSaveTimeout     = 2 * time.Second
)

var errConnectionGone = errors.New("connection closed mid-pipeline")

// Pipeline is the hosted speech pipeline used by the orchestrator.
type Pipeline interface {
	Transcribe(ctx context.Context, recording []byte, mimeType string) (string, error)
	Respond(ctx context.Context, prompt, instruction string) (Reply, error)
	Synthesize(ctx context.Context, text string) (*Synthesis, error)
}

// Options wires the orchestrator. Journal and Metrics are optional.
type Options struct {
	Scenes          scene.Store
	Pipeline        Pipeline
	Artifacts       *artifact.Store
	Journal         journal.Store
	RedactPII       bool
	Metrics         *observability.Metrics
	Logger          *slog.Logger
	BaseInstruction string
	PipelineTimeout time.Duration
}

// Orchestrator runs the per-connection event loop: buffering audio, scene
// loading and the transcribe, respond and synthesize turn.
type Orchestrator struct {
	scenes          scene.Store
	pipeline        Pipeline
	artifacts       *artifact.Store
	journal         journal.Store
	redactPII       bool
	metrics         *observability.Metrics
	logger          *slog.Logger
	baseInstruction string
	pipelineTimeout time.Duration
}

func NewOrchestrator(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.PipelineTimeout
	if timeout <= 0 {
		timeout = defaultPipelineTimeout
	}
	base := opts.BaseInstruction
	if strings.TrimSpace(base) == "" {
		base = persona.BaseInstruction
	}
	scenes := opts.Scenes
	if scenes == nil {
		scenes = scene.NewCatalog(scene.Seed())
	}
	artifacts := opts.Artifacts
	if artifacts == nil {
		artifacts = artifact.NewStore(0)
	}
	return &Orchestrator{
		scenes:          scenes,
		pipeline:        opts.Pipeline,
		artifacts:       artifacts,
		journal:         opts.Journal,
		redactPII:       opts.RedactPII,
		metrics:         opts.Metrics,
		logger:          logger,
		baseInstruction: base,
		pipelineTimeout: timeout,
	}
}

// Connection is one live client as seen by the orchestrator.
type Connection struct {
	Session *session.Session
	// AudioBaseURL prefixes artifact links, e.g. "http://host:5000".
	AudioBaseURL string
}

// RunConnection processes inbound messages in arrival order until inbound is
// closed or ctx is done. Pipeline calls are detached from ctx so a disconnect
// never aborts a provider call midway; their results are dropped instead.
func (o *Orchestrator) RunConnection(ctx context.Context, conn Connection, inbound <-chan any, outbound chan<- any) error {
	s := conn.Session
	if s == nil {
		return errors.New("connection has no session")
	}
	logger := o.logger.With("session_id", s.ID)

	o.send(ctx, outbound, protocol.Status(StatusConnected))

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-inbound:
			if !ok {
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			o.handle(ctx, conn, logger, msg, outbound)
		}
	}
}

func (o *Orchestrator) handle(ctx context.Context, conn Connection, logger *slog.Logger, msg any, outbound chan<- any) {
	s := conn.Session
	switch m := msg.(type) {
	case protocol.AudioFragment:
		if err := s.AppendAudio(m.Data); err != nil {
			logger.Warn("dropping audio fragment", "bytes", len(m.Data), "error", err)
			o.metrics.ObserveEvent("fragment_dropped")
		}
	case protocol.NonBinaryFragment:
		logger.Info("received non-binary data on audio channel", "size", len(m.Raw))
		o.metrics.ObserveEvent("fragment_non_binary")
	case protocol.StartStream:
		discarded := s.StartStream()
		logger.Info("stream started", "format", m.Format, "discarded_bytes", discarded)
		o.metrics.ObserveEvent("stream_started")
		o.send(ctx, outbound, protocol.Status(StatusListening))
	case protocol.StopStream:
		o.handleStopStream(ctx, conn, logger, outbound)
	case protocol.LoadMemory:
		o.handleLoadMemory(ctx, conn, logger, m.MemoryID, outbound)
	case protocol.ResetMemory:
		s.ClearScene()
		logger.Info("memory context reset")
		o.metrics.ObserveEvent("scene_reset")
		o.send(ctx, outbound, protocol.Status(StatusSceneReset))
	default:
		logger.Warn("ignoring unknown inbound message", "type", fmt.Sprintf("%T", msg))
	}
}

func (o *Orchestrator) handleLoadMemory(ctx context.Context, conn Connection, logger *slog.Logger, id string, outbound chan<- any) {
	s := conn.Session
	sc, err := scene.Lookup(o.scenes, id)
	if err != nil {
		logger.Info("rejecting memory scene", "memory_id", id)
		o.metrics.ObserveEvent("scene_invalid")
		o.send(ctx, outbound, protocol.Error(fmt.Sprintf(errorInvalidFmt, id)))
		return
	}

	s.SetScene(sc.ID, sc.Description)
	logger.Info("loading memory scene", "memory_id", sc.ID)

	callCtx, cancel := o.pipelineContext(ctx)
	defer cancel()

	started := time.Now()
	intro, err := o.pipeline.Synthesize(callCtx, sc.IntroText)
	if o.connectionGone(ctx, logger, "scene_intro") {
		return
	}
	if err != nil {
		logger.Error("memory scene narration failed", "memory_id", sc.ID, "error", err)
		o.metrics.ObserveEvent("scene_load_failed")
		o.send(ctx, outbound, protocol.Error(ErrorSceneLoad))
		return
	}
	o.metrics.ObserveStage("scene_intro", time.Since(started))

	o.send(ctx, outbound, protocol.MemoryScene(sc.IntroText, sc.ID))
	o.saveTurnBestEffort(s.ID, sc.ID, journal.RoleScene, sc.IntroText)

	if intro != nil {
		url, token := o.publishAudio(conn.AudioBaseURL, intro)
		o.send(ctx, outbound, protocol.MemoryAudioReady(url, token, intro.Duration(), sc.ID))
		logger.Info("memory scene audio ready", "memory_id", sc.ID, "audio_id", token)
	} else {
		o.metrics.ObserveIndicator("scene_intro_text_only")
	}

	o.metrics.ObserveEvent("scene_loaded")
	o.send(ctx, outbound, protocol.Status(fmt.Sprintf(statusLoadedFmt, sc.ID)))
}

func (o *Orchestrator) handleStopStream(ctx context.Context, conn Connection, logger *slog.Logger, outbound chan<- any) {
	s := conn.Session
	o.send(ctx, outbound, protocol.Status(StatusTranscribing))

	recording := s.Flush()
	defer s.Finish()

	logger.Info("stream stopped", "bytes", len(recording))
	if len(recording) == 0 {
		o.metrics.ObserveEvent("stream_empty")
		o.send(ctx, outbound, protocol.Error(ErrorNoAudio))
		return
	}

	started := time.Now()
	err := o.runTurn(ctx, conn, logger, recording, outbound)
	if errors.Is(err, errConnectionGone) {
		return
	}
	if err != nil {
		logger.Error("turn failed", "transient", gemini.IsTransient(err), "error", err)
		o.metrics.ObserveEvent("turn_failed")
		o.send(ctx, outbound, protocol.Status(failureStatus(err)))
		return
	}
	o.metrics.ObserveStage("turn_total", time.Since(started))
	o.metrics.ObserveEvent("turn_completed")
}

func (o *Orchestrator) runTurn(ctx context.Context, conn Connection, logger *slog.Logger, recording []byte, outbound chan<- any) error {
	s := conn.Session
	format := audio.DetectFormat(recording)
	logger.Info("detected recording format", "format", format)

	callCtx, cancel := o.pipelineContext(ctx)
	defer cancel()

	started := time.Now()
	transcript, err := o.pipeline.Transcribe(callCtx, recording, format.MIMEType())
	if o.connectionGone(ctx, logger, "transcribe") {
		return errConnectionGone
	}
	if err != nil {
		return err
	}
	o.metrics.ObserveStage("transcribe", time.Since(started))

	sceneID, _, _ := s.Scene()
	o.send(ctx, outbound, protocol.Transcript(transcript))
	o.saveTurnBestEffort(s.ID, sceneID, journal.RoleUser, transcript)
	o.send(ctx, outbound, protocol.Status(StatusGenerating))

	instruction := persona.Instruction(o.baseInstruction, o.activeScene(s))
	reply, err := o.pipeline.Respond(callCtx, transcript, instruction)
	if o.connectionGone(ctx, logger, "respond") {
		return errConnectionGone
	}
	if err != nil {
		return err
	}
	o.metrics.ObserveStage("generate", reply.GenerateTook)
	o.metrics.ObserveStage("synthesize", reply.SynthesizeTook)

	o.send(ctx, outbound, protocol.ResponseText(reply.Text))
	o.saveTurnBestEffort(s.ID, sceneID, journal.RoleAssistant, reply.Text)

	switch {
	case reply.Audio != nil:
		url, token := o.publishAudio(conn.AudioBaseURL, reply.Audio)
		o.send(ctx, outbound, protocol.AudioReady(url, token, reply.Audio.Duration()))
		logger.Info("reply audio ready", "audio_id", token, "duration_s", reply.Audio.Duration())
	case reply.SynthesisErr != nil:
		logger.Warn("reply synthesis failed, sending text only", "error", reply.SynthesisErr)
		o.metrics.ObserveIndicator("text_only_reply")
	default:
		logger.Warn("reply synthesis returned no audio")
		o.metrics.ObserveIndicator("text_only_reply")
	}

	o.send(ctx, outbound, protocol.Status(StatusResponseSent))
	return nil
}

// connectionGone reports whether the client left while a pipeline call was
// running. The result of that call is dropped.
func (o *Orchestrator) connectionGone(ctx context.Context, logger *slog.Logger, stage string) bool {
	if ctx.Err() == nil {
		return false
	}
	logger.Info("connection closed mid-pipeline, dropping result", "stage", stage)
	o.metrics.ObserveEvent("result_dropped")
	return true
}

// activeScene resolves the session's scene slot against the catalog so the
// guidance text is available.
func (o *Orchestrator) activeScene(s *session.Session) *scene.Scene {
	id, desc, ok := s.Scene()
	if !ok {
		return nil
	}
	if sc, err := scene.Lookup(o.scenes, id); err == nil {
		return &sc
	}
	return &scene.Scene{ID: id, Description: desc}
}

func (o *Orchestrator) publishAudio(baseURL string, syn *Synthesis) (url, token string) {
	wav := audio.EncodeWAV(syn.PCM, syn.SampleRate, 1)
	token = o.artifacts.Put(wav)
	o.metrics.ObserveArtifact("stored", 1)
	return strings.TrimRight(baseURL, "/") + "/audio/" + token, token
}

func (o *Orchestrator) pipelineContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), o.pipelineTimeout)
}

// send delivers msg unless the connection is gone.
func (o *Orchestrator) send(ctx context.Context, outbound chan<- any, msg protocol.Event) {
	select {
	case outbound <- msg:
		o.metrics.ObserveMessage("outbound", string(msg.Event))
	case <-ctx.Done():
		o.metrics.ObserveEvent("outbound_drop")
	}
}

func (o *Orchestrator) saveTurnBestEffort(sessionID, sceneID, role, content string) {
	if o.journal == nil {
		return
	}
	record := journal.TurnRecord{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		SceneID:   sceneID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if o.redactPII {
		record.Content, record.PIIRedacted = policy.RedactPII(content)
	}
	go func(r journal.TurnRecord) {
		saveCtx, cancel := context.WithTimeout(context.Background(), journalSaveTimeout)
		defer cancel()
		if err := o.journal.SaveTurn(saveCtx, r); err != nil {
			o.metrics.ObserveEvent("journal_save_failed")
			o.logger.Debug("journal save failed", "session_id", r.SessionID, "error", err)
		}
	}(record)
}

// failureStatus maps a turn error to the status shown to the caller.
func failureStatus(err error) string {
	if gemini.IsTransient(err) || errors.Is(err, context.DeadlineExceeded) {
		return StatusUnavailable
	}
	return StatusFailed
}
