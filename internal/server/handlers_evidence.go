package server

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/scrumhq/scrum/internal/facade"
)

func (s *Server) handleAttachEvidence(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TaskID  string `json:"taskId"`
		AgentID string `json:"agentId"`
		Command string `json:"command"`
		Output  string `json:"output"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeRawError(w, http.StatusBadRequest, "ValidationError", "invalid request body", nil, nil)
		return
	}
	evidence, err := s.facade.AttachEvidence(r.Context(), facade.AttachEvidenceInput{
		TaskID:  req.TaskID,
		AgentID: req.AgentID,
		Command: req.Command,
		Output:  req.Output,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, evidence)
}

func (s *Server) handleListEvidence(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["id"]
	evidence, err := s.facade.ListEvidence(r.Context(), taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, evidence)
}

func (s *Server) handleListAllEvidence(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	evidence, err := s.facade.ListAllEvidence(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, evidence)
}
