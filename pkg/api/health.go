package api

import "net/http"

// handlePing serves GET /ping, the liveness probe spec.md §6 names directly.
// It is never behind auth.
func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "shard": s.cfg.Name})
}

// handleHealthz serves GET /healthz, the ambient-stack liveness route added
// in SPEC_FULL.md §6. It additionally checks that the server was given a
// graph engine, answering 503 when it was not.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.engine == nil {
		writeError(w, http.StatusServiceUnavailable, "storage engine not initialised")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
