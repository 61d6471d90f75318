package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/HPW17/AI-Conversational-Chatbot/internal/artifact"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/config"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/journal"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/observability"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/protocol"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/scene"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/session"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/voice"
)

const (
	wsReadLimit    = 8 << 20
	wsReadTimeout  = 5 * time.Minute
	wsWriteTimeout = 10 * time.Second
	readyTimeout   = 2 * time.Second
)

type Orchestrator interface {
	RunConnection(ctx context.Context, conn voice.Connection, inbound <-chan any, outbound chan<- any) error
}

// Deps are the collaborators served over HTTP. Journal is optional.
type Deps struct {
	Sessions     *session.Manager
	Orchestrator Orchestrator
	Artifacts    *artifact.Store
	Scenes       scene.Store
	Journal      journal.Store
	Metrics      *observability.Metrics
	Logger       *slog.Logger
}

type Server struct {
	cfg          config.Config
	sessions     *session.Manager
	orchestrator Orchestrator
	artifacts    *artifact.Store
	scenes       scene.Store
	journal      journal.Store
	metrics      *observability.Metrics
	logger       *slog.Logger
	upgrader     websocket.Upgrader
}

func New(cfg config.Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:          cfg,
		sessions:     deps.Sessions,
		orchestrator: deps.Orchestrator,
		artifacts:    deps.Artifacts,
		scenes:       deps.Scenes,
		journal:      deps.Journal,
		metrics:      deps.Metrics,
		logger:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 << 10,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Browsers may only connect from the same origin.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Unity and other native clients omit Origin.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Get("/ws", s.handleSessionWS)
	r.Get("/audio/{id}", s.handleAudio)

	r.Get("/v1/scenes", s.handleListScenes)
	r.Get("/v1/scenes/{id}", s.handleGetScene)
	if s.cfg.ExposeSessions {
		r.Get("/v1/sessions", s.handleListSessions)
		r.Get("/v1/journal/{session_id}", s.handleJournal)
	}
	r.Get("/v1/perf/latency", s.handlePerfLatency)
	r.Delete("/v1/perf/latency", s.handlePerfLatencyReset)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"active_sessions": s.sessions.ActiveCount(),
		"pending_audio":   s.artifacts.Len(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "orchestrator not configured")
		return
	}
	if s.journal != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.journal.Ping(ctx); err != nil {
			respondError(w, http.StatusServiceUnavailable, "journal_unavailable", err.Error())
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"sessions": s.sessions.List()})
}

func (s *Server) handleSessionWS(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "orchestrator not configured")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sess := s.sessions.Open()
	defer func() { _ = s.sessions.Close(sess.ID) }()

	logger := s.logger.With("session_id", sess.ID)
	logger.Info("client connected", "remote", r.RemoteAddr)
	s.metrics.SetActiveSessions(s.sessions.ActiveCount())
	s.metrics.ObserveEvent("ws_connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	inbound := make(chan any, 256)
	outbound := make(chan any, 256)
	runDone := make(chan struct{})

	go func() {
		defer close(runDone)
		if err := s.orchestrator.RunConnection(ctx, voice.Connection{
			Session:      sess,
			AudioBaseURL: s.audioBaseURL(r),
		}, inbound, outbound); err != nil {
			logger.Error("connection ended with error", "error", err)
		}
	}()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-outbound:
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteJSON(msg); err != nil {
					s.metrics.ObserveEvent("ws_write_error")
					cancel()
					return
				}
			}
		}
	}()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

readLoop:
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		var parsed any
		switch msgType {
		case websocket.BinaryMessage:
			parsed = protocol.AudioFragment{Data: data}
		case websocket.TextMessage:
			parsed, err = protocol.ParseClientMessage(data)
			if err != nil {
				s.metrics.ObserveMessage("inbound", "invalid")
				select {
				case outbound <- protocol.Error("invalid client message: " + err.Error()):
				default:
					// Keep websocket writes single-threaded; drop if the queue is saturated.
					s.metrics.ObserveEvent("outbound_drop")
				}
				continue
			}
		default:
			continue
		}

		s.metrics.ObserveMessage("inbound", inboundTypeOf(parsed))
		select {
		case <-ctx.Done():
			break readLoop
		case inbound <- parsed:
		}
	}

	cancel()
	close(inbound)
	<-runDone
	<-writerDone
	logger.Info("client disconnected")
	s.metrics.ObserveEvent("ws_disconnected")
}

// audioBaseURL is the origin clients use to fetch artifacts: the configured
// public URL, or the scheme and host the client dialed.
func (s *Server) audioBaseURL(r *http.Request) string {
	if s.cfg.PublicBaseURL != "" {
		return s.cfg.PublicBaseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

func inboundTypeOf(v any) string {
	switch v.(type) {
	case protocol.AudioFragment:
		return "audio"
	case protocol.NonBinaryFragment:
		return string(protocol.EventMessage)
	case protocol.StartStream:
		return string(protocol.EventStartStream)
	case protocol.StopStream:
		return string(protocol.EventStopStream)
	case protocol.LoadMemory:
		return string(protocol.EventLoadMemory)
	case protocol.ResetMemory:
		return string(protocol.EventResetMemory)
	default:
		return "unknown"
	}
}
