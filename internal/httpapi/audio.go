package httpapi

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// handleAudio serves a synthesized reply exactly once.
func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, ok := s.artifacts.Take(id)
	if !ok {
		s.metrics.ObserveArtifact("missed", 1)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "Audio not found")
		return
	}
	s.metrics.ObserveArtifact("served", 1)

	h := w.Header()
	h.Set("Content-Type", "audio/wav")
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Accept-Ranges", "bytes")
	h.Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
