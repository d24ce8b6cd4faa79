package server

import (
	"net/http"
	"strconv"
)

func (s *Server) handleMetricsBoard(w http.ResponseWriter, r *http.Request) {
	snap, err := s.facade.Board(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleMetricsVelocity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	since, _ := strconv.ParseInt(q.Get("since"), 10, 64)
	until, _ := strconv.ParseInt(q.Get("until"), 10, 64)
	snap, err := s.facade.Velocity(r.Context(), since, until)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleMetricsAging(w http.ResponseWriter, r *http.Request) {
	threshold, _ := strconv.ParseInt(r.URL.Query().Get("thresholdMs"), 10, 64)
	entries, err := s.facade.Aging(r.Context(), threshold)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleMetricsDeadWork(w http.ResponseWriter, r *http.Request) {
	threshold, _ := strconv.ParseInt(r.URL.Query().Get("idleThresholdMs"), 10, 64)
	entries, err := s.facade.DeadWork(r.Context(), threshold)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
