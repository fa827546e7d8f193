package api

import "net/http"

// handleAddEdge serves POST /addEdge.
func (s *Server) handleAddEdge(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req, err := decodeAndValidate[addEdgeRequest](body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		s.recordMetrics("addEdge", http.StatusBadRequest)
		return
	}

	props, err := wirePropsToValues(req.Props)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		s.recordMetrics("addEdge", http.StatusBadRequest)
		return
	}
	remoteProps, err := wirePropsToValues(req.RemoteProps)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		s.recordMetrics("addEdge", http.StatusBadRequest)
		return
	}

	id, err := s.engine.CreateEdge(req.FromNode, props, req.ToNode, req.ToNodeRemote, remoteProps)
	if err != nil {
		status := mapEngineError(err)
		writeError(w, status, err.Error())
		s.recordMetrics("addEdge", status)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]uint32{"edge_id": id})
	s.recordMetrics("addEdge", http.StatusCreated)
}

// handleGetEdge serves GET /getEdge?edge_id=.
func (s *Server) handleGetEdge(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	id, err := requiredUint32Param(r, "edge_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		s.recordMetrics("getEdge", http.StatusBadRequest)
		return
	}

	edge, err := s.engine.GetEdge(id)
	if err != nil {
		status := mapEngineError(err)
		writeError(w, status, err.Error())
		s.recordMetrics("getEdge", status)
		return
	}
	if edge == nil {
		writeError(w, http.StatusNotFound, "edge not found")
		s.recordMetrics("getEdge", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, edgeToWire(edge))
	s.recordMetrics("getEdge", http.StatusOK)
}

// handleDeleteEdge serves DELETE /deleteEdge?edge_id=.
func (s *Server) handleDeleteEdge(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodDelete) {
		return
	}
	id, err := requiredUint32Param(r, "edge_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		s.recordMetrics("deleteEdge", http.StatusBadRequest)
		return
	}

	if err := s.engine.DeleteEdge(id); err != nil {
		status := mapEngineError(err)
		writeError(w, status, err.Error())
		s.recordMetrics("deleteEdge", status)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	s.recordMetrics("deleteEdge", http.StatusOK)
}

// handleGetEdgesFrom serves GET /getEdgesFrom?node_id=&predicate=.
func (s *Server) handleGetEdgesFrom(w http.ResponseWriter, r *http.Request) {
	s.handleEdgesByDirection(w, r, "getEdgesFrom", s.engine.GetEdgesFrom)
}

// handleGetEdgesTo serves GET /getEdgesTo?node_id=&predicate=.
func (s *Server) handleGetEdgesTo(w http.ResponseWriter, r *http.Request) {
	s.handleEdgesByDirection(w, r, "getEdgesTo", s.engine.GetEdgesTo)
}

func (s *Server) handleEdgesByDirection(w http.ResponseWriter, r *http.Request, route string, fetch edgeDirectionFetcher) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	id, err := requiredUint32Param(r, "node_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		s.recordMetrics(route, http.StatusBadRequest)
		return
	}
	pred, err := decodePredicate(r.URL.Query().Get("predicate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		s.recordMetrics(route, http.StatusBadRequest)
		return
	}

	edges, err := fetch(id, pred)
	if err != nil {
		status := mapEngineError(err)
		writeError(w, status, err.Error())
		s.recordMetrics(route, status)
		return
	}

	wire := make([]*wireEdge, 0, len(edges))
	for _, e := range edges {
		wire = append(wire, edgeToWire(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"edges": wire})
	s.recordMetrics(route, http.StatusOK)
}

// handleFindEdges serves GET /findEdges?predicate=.
func (s *Server) handleFindEdges(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	pred, err := decodePredicate(r.URL.Query().Get("predicate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		s.recordMetrics("findEdges", http.StatusBadRequest)
		return
	}

	edges, err := s.engine.FindEdges(pred)
	if err != nil {
		status := mapEngineError(err)
		writeError(w, status, err.Error())
		s.recordMetrics("findEdges", status)
		return
	}

	wire := make([]*wireEdge, 0, len(edges))
	for _, e := range edges {
		wire = append(wire, edgeToWire(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"edges": wire})
	s.recordMetrics("findEdges", http.StatusOK)
}
