package api

import (
	"net/http"

	"github.com/google/uuid"
)

// handleFindNeighbours serves GET /findNeighbours?node_id=&hops=&query_id=
// &node_predicate=&edge_predicate=. query_id may be omitted for a one-shot
// traversal, in which case the server mints a disposable one and returns it.
// Either way the caller owns releasing the per-query visited-node
// bookkeeping via /clearVisitedNodes once it is done resuming remote
// continuations.
func (s *Server) handleFindNeighbours(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	nodeID, err := requiredUint32Param(r, "node_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		s.recordMetrics("findNeighbours", http.StatusBadRequest)
		return
	}

	hops, _, err := optionalIntParam(r, "hops")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		s.recordMetrics("findNeighbours", http.StatusBadRequest)
		return
	}

	// A caller that only wants a one-shot traversal (no cross-shard
	// continuation to resume) can omit query_id and let the server mint a
	// disposable one, returned in the response for later clearVisitedNodes.
	queryID := r.URL.Query().Get("query_id")
	generatedQueryID := false
	if queryID == "" {
		queryID = uuid.NewString()
		generatedQueryID = true
	}

	nodePred, err := decodePredicate(r.URL.Query().Get("node_predicate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		s.recordMetrics("findNeighbours", http.StatusBadRequest)
		return
	}
	edgePred, err := decodePredicate(r.URL.Query().Get("edge_predicate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		s.recordMetrics("findNeighbours", http.StatusBadRequest)
		return
	}

	local, remote, err := s.engine.FindNeighbours(nodeID, hops, queryID, nodePred, edgePred)
	if err != nil {
		status := mapEngineError(err)
		writeError(w, status, err.Error())
		s.recordMetrics("findNeighbours", status)
		return
	}

	localWire := make([]*wireNode, 0, len(local))
	for _, n := range local {
		localWire = append(localWire, nodeToWire(n))
	}
	remoteWire := make([]wireRemoteContinuation, 0, len(remote))
	for _, rc := range remote {
		remoteWire = append(remoteWire, wireRemoteContinuation{RemoteID: rc.RemoteID, HopsRemaining: rc.HopsRemaining})
	}

	resp := map[string]any{
		"neighbours":   localWire,
		"remote_nodes": remoteWire,
	}
	if generatedQueryID {
		resp["query_id"] = queryID
	}
	writeJSON(w, http.StatusOK, resp)
	s.recordMetrics("findNeighbours", http.StatusOK)
}

// wireRemoteContinuation is the JSON shape of a graphengine.RemoteContinuation.
type wireRemoteContinuation struct {
	RemoteID      string `json:"remote_id"`
	HopsRemaining int    `json:"hops_remaining"`
}

// handleClearVisitedNodes serves PUT /clearVisitedNodes?query_id=.
func (s *Server) handleClearVisitedNodes(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPut) {
		return
	}
	queryID := r.URL.Query().Get("query_id")
	if queryID == "" {
		writeError(w, http.StatusBadRequest, "missing required parameter \"query_id\"")
		s.recordMetrics("clearVisitedNodes", http.StatusBadRequest)
		return
	}

	s.engine.ClearVisited(queryID)

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	s.recordMetrics("clearVisitedNodes", http.StatusOK)
}
