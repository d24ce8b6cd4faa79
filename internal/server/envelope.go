package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/scrumhq/scrum/internal/facade"
)

// envelope is the response shape every endpoint returns, per the
// request/response surface: {ok, data?, error?}.
type envelope struct {
	OK    bool        `json:"ok"`
	Data  interface{} `json:"data,omitempty"`
	Error *errorBody  `json:"error,omitempty"`
}

type errorBody struct {
	Kind      string          `json:"kind"`
	Message   string          `json:"message"`
	Details   map[string]any  `json:"details,omitempty"`
	NextSteps []string        `json:"nextSteps,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{OK: true, Data: data}); err != nil {
		log.Printf("[SERVER] encode response: %v", err)
	}
}

// writeError maps a facade.Error (or any other error) to an HTTP status
// and an {ok:false, error:{...}} envelope.
func writeError(w http.ResponseWriter, err error) {
	fe, ok := err.(*facade.Error)
	if !ok {
		writeRawError(w, http.StatusInternalServerError, string(facade.KindInternal), err.Error(), nil, nil)
		return
	}
	status := http.StatusInternalServerError
	switch fe.Kind {
	case facade.KindValidation:
		status = http.StatusBadRequest
	case facade.KindNotFound:
		status = http.StatusNotFound
	case facade.KindConflict:
		status = http.StatusConflict
	case facade.KindPreconditionFailed:
		status = http.StatusPreconditionFailed
	case facade.KindDeadlineExceeded:
		status = http.StatusGatewayTimeout
	case facade.KindInternal:
		status = http.StatusInternalServerError
		log.Printf("[SERVER] internal error: %s", fe.Message)
	}
	kind := string(fe.Kind)
	if fe.Reason != "" {
		kind = string(fe.Reason)
	}
	writeRawError(w, status, kind, fe.Message, fe.Details, fe.NextSteps)
}

func writeRawError(w http.ResponseWriter, status int, kind, message string, details map[string]any, nextSteps []string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := envelope{OK: false, Error: &errorBody{Kind: kind, Message: message, Details: details, NextSteps: nextSteps}}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[SERVER] encode error response: %v", err)
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
