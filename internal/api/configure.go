package api

import (
	"net/http"
)

// configureRequest is the JSON body for POST /v1/configure.
type configureRequest struct {
	NumWorkers        *int `json:"num_workers"`
	NumClients        *int `json:"num_clients"`
	RequestsPerClient *int `json:"requests_per_client"`
}

func (s *Server) handleConfigure(w http.ResponseWriter, r *http.Request) {
	var req configureRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.NumWorkers == nil || req.NumClients == nil || req.RequestsPerClient == nil {
		s.writeError(w, http.StatusBadRequest, "num_workers, num_clients and requests_per_client are required")
		return
	}

	cfg, err := s.engine.Configure(*req.NumWorkers, *req.NumClients, *req.RequestsPerClient)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleGetConfiguration(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Configuration())
}

func (s *Server) handleListClients(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.ListClients())
}
