package httpapi

import "net/http"

// handlePerfLatency reports p50/p95 per pipeline stage over the rolling window.
func (s *Server) handlePerfLatency(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.metrics.LatencyReport())
}

func (s *Server) handlePerfLatencyReset(w http.ResponseWriter, _ *http.Request) {
	s.metrics.ResetLatency()
	w.WriteHeader(http.StatusNoContent)
}
