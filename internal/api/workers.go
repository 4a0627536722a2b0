package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// setWorkerRequest is the JSON body for PUT /v1/workers/{id}.
type setWorkerRequest struct {
	Active *bool `json:"active"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleListWorkers(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.ListWorkers())
}

func (s *Server) handleGetWorker(w http.ResponseWriter, r *http.Request) {
	id, ok := s.workerID(w, r)
	if !ok {
		return
	}
	wk, err := s.engine.Worker(id)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, wk)
}

func (s *Server) handleSetWorkerActive(w http.ResponseWriter, r *http.Request) {
	id, ok := s.workerID(w, r)
	if !ok {
		return
	}
	var req setWorkerRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Active == nil {
		s.writeError(w, http.StatusBadRequest, "active is required")
		return
	}

	wk, err := s.engine.SetWorkerActive(id, *req.Active)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, wk)
}

func (s *Server) handleWorkerUp(w http.ResponseWriter, r *http.Request) {
	s.toggleWorker(w, r, true)
}

func (s *Server) handleWorkerDown(w http.ResponseWriter, r *http.Request) {
	s.toggleWorker(w, r, false)
}

func (s *Server) toggleWorker(w http.ResponseWriter, r *http.Request, active bool) {
	id, ok := s.workerID(w, r)
	if !ok {
		return
	}
	if _, err := s.engine.SetWorkerActive(id, active); err != nil {
		s.writeEngineError(w, err)
		return
	}
	state := "down"
	if active {
		state = "up"
	}
	s.writeJSON(w, http.StatusOK, messageResponse{Message: fmt.Sprintf("Worker %d marked as %s", id, state)})
}

// workerID parses the {id} URL parameter, writing a 400 on failure.
func (s *Server) workerID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "worker id must be an integer")
		return 0, false
	}
	return id, true
}
