package server

import (
	"net/http"
	"strconv"

	"github.com/scrumhq/scrum/internal/facade"
	"github.com/scrumhq/scrum/internal/store"
)

func (s *Server) handleLogChange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TaskID      string           `json:"taskId"`
		AgentID     string           `json:"agentId"`
		FilePath    string           `json:"filePath"`
		ChangeType  store.ChangeType `json:"changeType"`
		Summary     string           `json:"summary"`
		DiffSnippet string           `json:"diffSnippet"`
		CommitHash  string           `json:"commitHash"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeRawError(w, http.StatusBadRequest, "ValidationError", "invalid request body", nil, nil)
		return
	}
	entry, err := s.facade.LogChange(r.Context(), facade.LogChangeInput{
		TaskID:      req.TaskID,
		AgentID:     req.AgentID,
		FilePath:    req.FilePath,
		ChangeType:  req.ChangeType,
		Summary:     req.Summary,
		DiffSnippet: req.DiffSnippet,
		CommitHash:  req.CommitHash,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleSearchChangelog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.ChangelogFilter{
		TaskID:     q.Get("taskId"),
		AgentID:    q.Get("agentId"),
		FilePath:   q.Get("filePath"),
		ChangeType: store.ChangeType(q.Get("changeType")),
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}
	entries, err := s.facade.SearchChangelog(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleFileHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	entries, err := s.facade.GetFileHistory(r.Context(), q.Get("filePath"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
