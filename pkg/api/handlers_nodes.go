package api

import "net/http"

// handleAddNode serves POST /addNode.
func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req, err := decodeAndValidate[addNodeRequest](body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		s.recordMetrics("addNode", http.StatusBadRequest)
		return
	}

	props, err := wirePropsToValues(req.Props)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		s.recordMetrics("addNode", http.StatusBadRequest)
		return
	}

	id, err := s.engine.CreateNode(props)
	if err != nil {
		status := mapEngineError(err)
		writeError(w, status, err.Error())
		s.recordMetrics("addNode", status)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]uint32{"node_id": id})
	s.recordMetrics("addNode", http.StatusCreated)
}

// handleGetNode serves GET /getNode?node_id=.
func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	id, err := requiredUint32Param(r, "node_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		s.recordMetrics("getNode", http.StatusBadRequest)
		return
	}

	node, err := s.engine.GetNode(id)
	if err != nil {
		status := mapEngineError(err)
		writeError(w, status, err.Error())
		s.recordMetrics("getNode", status)
		return
	}
	if node == nil {
		writeError(w, http.StatusNotFound, "node not found")
		s.recordMetrics("getNode", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, nodeToWire(node))
	s.recordMetrics("getNode", http.StatusOK)
}

// handleUpdateNode serves POST /updateNode.
func (s *Server) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req, err := decodeAndValidate[updateNodeRequest](body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		s.recordMetrics("updateNode", http.StatusBadRequest)
		return
	}

	props, err := wirePropsToValues(req.Props)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		s.recordMetrics("updateNode", http.StatusBadRequest)
		return
	}

	if err := s.engine.UpdateNode(req.NodeID, props); err != nil {
		status := mapEngineError(err)
		writeError(w, status, err.Error())
		s.recordMetrics("updateNode", status)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	s.recordMetrics("updateNode", http.StatusOK)
}

// handleDeleteNode serves DELETE /deleteNode?node_id=.
func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodDelete) {
		return
	}
	id, err := requiredUint32Param(r, "node_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		s.recordMetrics("deleteNode", http.StatusBadRequest)
		return
	}

	if err := s.engine.DeleteNode(id); err != nil {
		status := mapEngineError(err)
		writeError(w, status, err.Error())
		s.recordMetrics("deleteNode", status)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	s.recordMetrics("deleteNode", http.StatusOK)
}

// handleFindNodes serves GET /findNodes?predicate=.
func (s *Server) handleFindNodes(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	pred, err := decodePredicate(r.URL.Query().Get("predicate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		s.recordMetrics("findNodes", http.StatusBadRequest)
		return
	}

	nodes, err := s.engine.FindNodes(pred)
	if err != nil {
		status := mapEngineError(err)
		writeError(w, status, err.Error())
		s.recordMetrics("findNodes", status)
		return
	}

	wire := make([]*wireNode, 0, len(nodes))
	for _, n := range nodes {
		wire = append(wire, nodeToWire(n))
	}
	writeJSON(w, http.StatusOK, map[string]any{"nodes": wire})
	s.recordMetrics("findNodes", http.StatusOK)
}
