package api

import (
	"net/http"
)

// submitRequest is the JSON body for POST /v1/requests.
type submitRequest struct {
	ClientID  *int `json:"client_id"`
	RequestID *int `json:"request_id"`
	Priority  *int `json:"priority"`
}

func (s *Server) handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ClientID == nil || req.RequestID == nil || req.Priority == nil {
		s.writeError(w, http.StatusBadRequest, "client_id, request_id and priority are required")
		return
	}

	receipt, err := s.engine.Submit(*req.ClientID, *req.RequestID, *req.Priority)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, receipt)
}

func (s *Server) handleListRequests(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.ListRequests())
}
