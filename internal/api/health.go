package api

import (
	"net/http"
)

type healthResponse struct {
	Status  string `json:"status"`
	Workers int    `json:"workers"`
	Active  int    `json:"active_workers"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	st := s.engine.Stats()
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Workers: st.Workers,
		Active:  st.ActiveWorkers,
	})
}
