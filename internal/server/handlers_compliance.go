package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) handleCheckCompliance(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	report, err := s.facade.CheckCompliance(r.Context(), vars["taskId"], vars["agentId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
