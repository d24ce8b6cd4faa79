package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/scrumhq/scrum/internal/facade"
)

func (s *Server) handleCreateClaim(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgentID    string   `json:"agentId"`
		Files      []string `json:"files"`
		TTLSeconds int      `json:"ttlSeconds"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeRawError(w, http.StatusBadRequest, "ValidationError", "invalid request body", nil, nil)
		return
	}
	claims, err := s.facade.CreateClaim(r.Context(), facade.CreateClaimInput{
		AgentID:    req.AgentID,
		Files:      req.Files,
		TTLSeconds: req.TTLSeconds,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "claims": claims})
}

func (s *Server) handleReleaseClaims(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgentID string   `json:"agentId"`
		Files   []string `json:"files"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeRawError(w, http.StatusBadRequest, "ValidationError", "invalid request body", nil, nil)
		return
	}
	released, err := s.facade.ReleaseClaims(r.Context(), req.AgentID, req.Files)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "released": released})
}

func (s *Server) handleExtendClaims(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgentID           string   `json:"agentId"`
		Files             []string `json:"files"`
		AdditionalSeconds int      `json:"additionalSeconds"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeRawError(w, http.StatusBadRequest, "ValidationError", "invalid request body", nil, nil)
		return
	}
	extended, err := s.facade.ExtendClaims(r.Context(), req.AgentID, req.Files, req.AdditionalSeconds)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"extended": extended})
}

func (s *Server) handleListActiveClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := s.facade.ListActiveClaims(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, claims)
}

func (s *Server) handleGetAgentClaims(w http.ResponseWriter, r *http.Request) {
	agentID := mux.Vars(r)["agentId"]
	claims, err := s.facade.GetAgentClaims(r.Context(), agentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, claims)
}

func (s *Server) handleCheckOverlap(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Files []string `json:"files"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeRawError(w, http.StatusBadRequest, "ValidationError", "invalid request body", nil, nil)
		return
	}
	overlap, err := s.facade.CheckOverlap(r.Context(), req.Files)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overlap)
}
