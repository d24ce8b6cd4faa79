package server

import (
	"net/http"

	"github.com/scrumhq/scrum/internal/facade"
)

type postIntentRequest struct {
	TaskID             string   `json:"taskId"`
	AgentID            string   `json:"agentId"`
	Files              []string `json:"files"`
	Boundaries         string   `json:"boundaries"`
	AcceptanceCriteria string   `json:"acceptanceCriteria"`
}

func (s *Server) handlePostIntent(w http.ResponseWriter, r *http.Request) {
	var req postIntentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeRawError(w, http.StatusBadRequest, "ValidationError", "invalid request body", nil, nil)
		return
	}
	intent, err := s.facade.PostIntent(r.Context(), facade.PostIntentInput{
		TaskID:             req.TaskID,
		AgentID:            req.AgentID,
		Files:              req.Files,
		Boundaries:         req.Boundaries,
		AcceptanceCriteria: req.AcceptanceCriteria,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, intent)
}

func (s *Server) handleListIntents(w http.ResponseWriter, r *http.Request) {
	taskID := r.URL.Query().Get("taskId")
	intents, err := s.facade.ListIntents(r.Context(), taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, intents)
}
