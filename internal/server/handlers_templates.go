package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/scrumhq/scrum/internal/facade"
	"github.com/scrumhq/scrum/internal/store"
)

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name              string         `json:"name"`
		TitlePattern      string         `json:"titlePattern"`
		DefaultLabels     []string       `json:"defaultLabels"`
		DefaultPriority   store.Priority `json:"defaultPriority"`
		DefaultAcceptance string         `json:"defaultAcceptance"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeRawError(w, http.StatusBadRequest, "ValidationError", "invalid request body", nil, nil)
		return
	}
	tpl, err := s.facade.CreateTaskTemplate(r.Context(), facade.CreateTaskTemplateInput{
		Name:              req.Name,
		TitlePattern:      req.TitlePattern,
		DefaultLabels:     req.DefaultLabels,
		DefaultPriority:   req.DefaultPriority,
		DefaultAcceptance: req.DefaultAcceptance,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.facade.ListTaskTemplates(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := s.facade.DeleteTaskTemplate(r.Context(), name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleCreateTaskFromTemplate(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	var req struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		DueDate     *int64   `json:"dueDate"`
		Labels      []string `json:"labels"`
		StoryPoints *int     `json:"storyPoints"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeRawError(w, http.StatusBadRequest, "ValidationError", "invalid request body", nil, nil)
		return
	}
	task, err := s.facade.CreateTaskFromTemplate(r.Context(), name, facade.CreateTaskFromTemplateInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Labels:      req.Labels,
		StoryPoints: req.StoryPoints,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}
