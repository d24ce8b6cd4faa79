package server

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/scrumhq/scrum/internal/facade"
	"github.com/scrumhq/scrum/internal/store"
)

type createTaskRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    store.Priority `json:"priority"`
	DueDate     *int64         `json:"dueDate"`
	Labels      []string       `json:"labels"`
	StoryPoints *int           `json:"storyPoints"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeRawError(w, http.StatusBadRequest, "ValidationError", "invalid request body", nil, nil)
		return
	}
	task, err := s.facade.CreateTask(r.Context(), facade.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
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

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	task, err := s.facade.GetTask(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.TaskFilter{
		Status:        store.TaskStatus(q.Get("status")),
		AssignedAgent: q.Get("assignedAgent"),
	}
	if labels := q["labels"]; len(labels) > 0 {
		filter.Labels = labels
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}
	tasks, err := s.facade.ListTasks(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	board, err := s.facade.GetBoard(r.Context(), q.Get("assignedAgent"), q["labels"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

type updateTaskRequest struct {
	Title               *string           `json:"title"`
	Description         *string           `json:"description"`
	Status              *store.TaskStatus `json:"status"`
	Priority             *store.Priority   `json:"priority"`
	AssignedAgent        *string           `json:"assignedAgent"`
	DueDate              *int64            `json:"dueDate"`
	ClearDueDate         bool              `json:"clearDueDate"`
	Labels               []string          `json:"labels"`
	SetLabels            bool              `json:"setLabels"`
	StoryPoints          *int              `json:"storyPoints"`
	EnforceDependencies *bool             `json:"enforceDependencies"`
	EnforceWipLimits    *bool             `json:"enforceWipLimits"`
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req updateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeRawError(w, http.StatusBadRequest, "ValidationError", "invalid request body", nil, nil)
		return
	}
	result, err := s.facade.UpdateTask(r.Context(), id, facade.UpdateTaskInput{
		Title:               req.Title,
		Description:         req.Description,
		Status:              req.Status,
		Priority:            req.Priority,
		AssignedAgent:       req.AssignedAgent,
		DueDate:             req.DueDate,
		ClearDueDate:        req.ClearDueDate,
		Labels:              req.Labels,
		SetLabels:           req.SetLabels,
		StoryPoints:         req.StoryPoints,
		EnforceDependencies: req.EnforceDependencies,
		EnforceWipLimits:    req.EnforceWipLimits,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	comments, err := s.facade.ListComments(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req struct {
		AgentID string `json:"agentId"`
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeRawError(w, http.StatusBadRequest, "ValidationError", "invalid request body", nil, nil)
		return
	}
	comment, err := s.facade.AddComment(r.Context(), id, req.AgentID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeRawError(w, http.StatusBadRequest, "ValidationError", "invalid request body", nil, nil)
		return
	}
	comment, err := s.facade.UpdateComment(r.Context(), id, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

func (s *Server) handleListBlockers(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	blockers, err := s.facade.ListBlockers(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, blockers)
}

func (s *Server) handleAddBlocker(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req struct {
		AgentID        string `json:"agentId"`
		Description    string `json:"description"`
		BlockingTaskID string `json:"blockingTaskId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeRawError(w, http.StatusBadRequest, "ValidationError", "invalid request body", nil, nil)
		return
	}
	blocker, err := s.facade.AddBlocker(r.Context(), id, req.AgentID, req.Description, req.BlockingTaskID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, blocker)
}

func (s *Server) handleResolveBlocker(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	blocker, err := s.facade.ResolveBlocker(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, blocker)
}

func (s *Server) handleListDependencies(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	deps, err := s.facade.ListDependencies(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deps)
}

func (s *Server) handleAddDependency(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req struct {
		DependsOnTaskID string `json:"dependsOnTaskId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeRawError(w, http.StatusBadRequest, "ValidationError", "invalid request body", nil, nil)
		return
	}
	dep, err := s.facade.AddDependency(r.Context(), id, req.DependsOnTaskID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dep)
}

func (s *Server) handleRemoveDependency(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.facade.RemoveDependency(r.Context(), vars["id"], vars["depId"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
}

func (s *Server) handleSetWipLimit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status   store.TaskStatus `json:"status"`
		MaxTasks int              `json:"maxTasks"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeRawError(w, http.StatusBadRequest, "ValidationError", "invalid request body", nil, nil)
		return
	}
	limit, err := s.facade.SetWipLimit(r.Context(), req.Status, req.MaxTasks)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, limit)
}

func (s *Server) handleGetWipLimit(w http.ResponseWriter, r *http.Request) {
	status := store.TaskStatus(mux.Vars(r)["status"])
	limit, ok, err := s.facade.GetWipLimit(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, limit)
}
