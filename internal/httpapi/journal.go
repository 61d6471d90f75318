package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/HPW17/AI-Conversational-Chatbot/internal/journal"
)

const (
	defaultJournalLimit = 50
	maxJournalLimit     = 500
)

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "journal not configured")
		return
	}
	sessionID := strings.TrimSpace(chi.URLParam(r, "session_id"))
	limit := defaultJournalLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = min(n, maxJournalLimit)
	}

	turns, err := s.journal.Recent(r.Context(), sessionID, limit)
	if err != nil {
		s.logger.Error("journal query failed", "session_id", sessionID, "error", err)
		respondError(w, http.StatusInternalServerError, "journal_query_failed", "could not read journal")
		return
	}
	if turns == nil {
		turns = []journal.TurnRecord{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"turns":      turns,
	})
}
