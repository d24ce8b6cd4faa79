// Package server is the HTTP/WebSocket transport over the facade: the
// request/response surface and event stream described in the
// specification's external interfaces. It holds no state of its own —
// every handler is a thin adapter translating an HTTP request into a
// facade call and the result back into an envelope.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/scrumhq/scrum/internal/boundary"
	"github.com/scrumhq/scrum/internal/config"
	"github.com/scrumhq/scrum/internal/events"
	"github.com/scrumhq/scrum/internal/facade"
)

// Server wires the facade and event bus behind gorilla/mux routes and a
// WebSocket hub.
type Server struct {
	facade *facade.Facade
	hub    *Hub
	cfg    config.Config
	sprint boundary.SprintGate
	router *mux.Router
	http   *http.Server
}

// New builds a Server. Call Start to begin listening.
func New(f *facade.Facade, bus *events.Bus, cfg config.Config) *Server {
	s := &Server{facade: f, hub: NewHub(bus), cfg: cfg, sprint: boundary.NewSprintGate(cfg.SprintEnabled)}
	s.router = s.buildRouter()
	s.http = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           SecurityHeadersMiddleware(s.router),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start begins serving and blocks until the context is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) buildRouter() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/tasks", s.handleCreateTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks", s.handleListTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks/board", s.handleGetBoard).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}", s.handleGetTask).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}", s.handleUpdateTask).Methods(http.MethodPatch)
	api.HandleFunc("/tasks/{id}/comments", s.handleListComments).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}/comments", s.handleAddComment).Methods(http.MethodPost)
	api.HandleFunc("/comments/{id}", s.handleUpdateComment).Methods(http.MethodPatch)
	api.HandleFunc("/tasks/{id}/blockers", s.handleListBlockers).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}/blockers", s.handleAddBlocker).Methods(http.MethodPost)
	api.HandleFunc("/blockers/{id}/resolve", s.handleResolveBlocker).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}/dependencies", s.handleListDependencies).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}/dependencies", s.handleAddDependency).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}/dependencies/{depId}", s.handleRemoveDependency).Methods(http.MethodDelete)
	api.HandleFunc("/wip-limits", s.handleSetWipLimit).Methods(http.MethodPost)
	api.HandleFunc("/wip-limits/{status}", s.handleGetWipLimit).Methods(http.MethodGet)

	api.HandleFunc("/intents", s.handlePostIntent).Methods(http.MethodPost)
	api.HandleFunc("/intents", s.handleListIntents).Methods(http.MethodGet)

	api.HandleFunc("/claims", s.handleCreateClaim).Methods(http.MethodPost)
	api.HandleFunc("/claims", s.handleListActiveClaims).Methods(http.MethodGet)
	api.HandleFunc("/claims/release", s.handleReleaseClaims).Methods(http.MethodPost)
	api.HandleFunc("/claims/extend", s.handleExtendClaims).Methods(http.MethodPost)
	api.HandleFunc("/claims/overlap", s.handleCheckOverlap).Methods(http.MethodPost)
	api.HandleFunc("/claims/{agentId}", s.handleGetAgentClaims).Methods(http.MethodGet)

	api.HandleFunc("/evidence", s.handleAttachEvidence).Methods(http.MethodPost)
	api.HandleFunc("/evidence", s.handleListAllEvidence).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}/evidence", s.handleListEvidence).Methods(http.MethodGet)

	api.HandleFunc("/changelog", s.handleLogChange).Methods(http.MethodPost)
	api.HandleFunc("/changelog/search", s.handleSearchChangelog).Methods(http.MethodGet)
	api.HandleFunc("/changelog/file", s.handleFileHistory).Methods(http.MethodGet)

	api.HandleFunc("/compliance/{taskId}/{agentId}", s.handleCheckCompliance).Methods(http.MethodGet)

	api.HandleFunc("/agents/{id}/heartbeat", s.handleHeartbeat).Methods(http.MethodPost)
	api.HandleFunc("/agents", s.handleListAgents).Methods(http.MethodGet)
	api.HandleFunc("/agents/{id}", s.handleGetAgent).Methods(http.MethodGet)

	api.HandleFunc("/webhooks", s.handleCreateWebhook).Methods(http.MethodPost)
	api.HandleFunc("/webhooks", s.handleListWebhooks).Methods(http.MethodGet)
	api.HandleFunc("/webhooks/{id}", s.handleDeleteWebhook).Methods(http.MethodDelete)
	api.HandleFunc("/webhooks/{id}/deliveries", s.handleListWebhookDeliveries).Methods(http.MethodGet)

	api.HandleFunc("/templates", s.handleCreateTemplate).Methods(http.MethodPost)
	api.HandleFunc("/templates", s.handleListTemplates).Methods(http.MethodGet)
	api.HandleFunc("/templates/{name}", s.handleDeleteTemplate).Methods(http.MethodDelete)
	api.HandleFunc("/templates/{name}/instantiate", s.handleCreateTaskFromTemplate).Methods(http.MethodPost)

	api.HandleFunc("/metrics/board", s.handleMetricsBoard).Methods(http.MethodGet)
	api.HandleFunc("/metrics/velocity", s.handleMetricsVelocity).Methods(http.MethodGet)
	api.HandleFunc("/metrics/aging", s.handleMetricsAging).Methods(http.MethodGet)
	api.HandleFunc("/metrics/dead-work", s.handleMetricsDeadWork).Methods(http.MethodGet)

	api.HandleFunc("/sprint/{rest:.*}", s.handleSprintDisabled)

	r.HandleFunc("/ws", s.hub.ServeWS)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSprintDisabled returns the sprint-room boundary response: the
// subsystem is out of scope and gated off entirely behind sprint_enabled.
func (s *Server) handleSprintDisabled(w http.ResponseWriter, r *http.Request) {
	status := s.sprint.Check()
	code := "NOT_FOUND"
	if status.HTTPCode == http.StatusNotImplemented {
		code = "NOT_IMPLEMENTED"
	}
	writeRawError(w, status.HTTPCode, code, status.Message, nil, nil)
}
