package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/HPW17/AI-Conversational-Chatbot/internal/scene"
)

func (s *Server) handleListScenes(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"scenes": s.scenes.List()})
}

func (s *Server) handleGetScene(w http.ResponseWriter, r *http.Request) {
	sc, err := scene.Lookup(s.scenes, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "scene_not_found", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, sc)
}
