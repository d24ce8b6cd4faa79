package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	agentID := mux.Vars(r)["id"]
	var req struct {
		Capabilities []string          `json:"capabilities"`
		Metadata     map[string]string `json:"metadata"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeRawError(w, http.StatusBadRequest, "ValidationError", "invalid request body", nil, nil)
		return
	}
	agent, err := s.facade.RegisterOrHeartbeat(r.Context(), agentID, req.Capabilities, req.Metadata)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agent)
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := s.facade.ListAgents(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agents)
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	agentID := mux.Vars(r)["id"]
	agent, err := s.facade.GetAgent(r.Context(), agentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agent)
}
