package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/seantiz/switchyard/internal/engine"
)

const maxBodySize = 1 << 20 // 1 MB

// errorResponse is the JSON body of every failed call. Reason is set for
// engine rejections.
type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

// writeEngineError maps an engine error to its HTTP status and reason code.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	reason := engine.Reason(err)
	observeRejection(reason)
	status := http.StatusInternalServerError
	switch reason {
	case engine.ReasonInvalidClient, engine.ReasonInvalidPriority, engine.ReasonInvalidConfiguration:
		status = http.StatusBadRequest
	case engine.ReasonQuotaExceeded:
		status = http.StatusTooManyRequests
	case engine.ReasonDuplicateRequest:
		status = http.StatusConflict
	case engine.ReasonWorkerNotFound:
		status = http.StatusNotFound
	default:
		s.logger.Error("unexpected engine error", "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error(), Reason: reason})
}

// decodeBody decodes a size-limited JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	return json.NewDecoder(r.Body).Decode(v)
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
