// Package api is the shard's HTTP surface: the literal route table described
// in §6 of the specification, wired to pkg/graphengine. Routing here follows
// the teacher's pkg/api server style (net/http.ServeMux plus a thin
// middleware chain) rather than reaching for a third-party router, since the
// route table is small and fixed.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/clusograph/shard/pkg/config"
	"github.com/clusograph/shard/pkg/graphengine"
	"github.com/clusograph/shard/pkg/logging"
	"github.com/clusograph/shard/pkg/storage"
)

// Server holds everything one shard's HTTP surface needs to answer requests.
type Server struct {
	engine   *graphengine.Engine
	cfg      config.Shard
	verifier *tokenVerifier
	metrics  *metricsRegistry
	snapshot *snapshotted
	logger   logging.Logger
	mux      *http.ServeMux
}

// NewServer wires engine and cfg into a Server ready to be given to
// http.Serve via Handler().
func NewServer(engine *graphengine.Engine, cfg config.Shard, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NopLogger{}
	}

	s := &Server{
		engine:   engine,
		cfg:      cfg,
		metrics:  newMetricsRegistry(cfg.Name),
		snapshot: &snapshotted{},
		logger:   logger,
		mux:      http.NewServeMux(),
	}
	if cfg.JWTSecret != "" {
		s.verifier = newTokenVerifier(cfg.JWTSecret)
	}
	s.routes()
	return s
}

// Handler returns the http.Handler to pass to http.Server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("/ping", s.handlePing)
	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.Handle("/metrics", s.metrics.handler())

	s.mux.HandleFunc("/addNode", s.requireAuth(s.handleAddNode))
	s.mux.HandleFunc("/getNode", s.requireAuth(s.handleGetNode))
	s.mux.HandleFunc("/updateNode", s.requireAuth(s.handleUpdateNode))
	s.mux.HandleFunc("/deleteNode", s.requireAuth(s.handleDeleteNode))

	s.mux.HandleFunc("/addEdge", s.requireAuth(s.handleAddEdge))
	s.mux.HandleFunc("/getEdge", s.requireAuth(s.handleGetEdge))
	s.mux.HandleFunc("/deleteEdge", s.requireAuth(s.handleDeleteEdge))

	s.mux.HandleFunc("/getEdgesFrom", s.requireAuth(s.handleGetEdgesFrom))
	s.mux.HandleFunc("/getEdgesTo", s.requireAuth(s.handleGetEdgesTo))

	s.mux.HandleFunc("/findNodes", s.requireAuth(s.handleFindNodes))
	s.mux.HandleFunc("/findEdges", s.requireAuth(s.handleFindEdges))
	s.mux.HandleFunc("/findNeighbours", s.requireAuth(s.handleFindNeighbours))
	s.mux.HandleFunc("/clearVisitedNodes", s.requireAuth(s.handleClearVisitedNodes))
}

func (s *Server) recordMetrics(route string, status int) {
	outcome := "ok"
	if status >= http.StatusBadRequest {
		outcome = "error"
	}
	s.metrics.observeRequest(route, outcome)
	stats := s.engine.Statistics()
	s.metrics.syncFromStatistics(stats.NodesCreated, stats.NodesDeleted, stats.EdgesCreated, stats.EdgesRemoved, stats.BytesAppended, s.snapshot)
}

// requireMethod rejects a request whose method doesn't match want, mirroring
// the teacher's switch-on-r.Method handlers collapsed to the single method
// each route in this table actually uses.
func requireMethod(w http.ResponseWriter, r *http.Request, want string) bool {
	if r.Method != want {
		writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed, want %s", r.Method, want))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(body []byte, dst any) error {
	if len(body) == 0 {
		return errors.New("empty request body")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("malformed request body: %w", err)
	}
	return nil
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

// mapEngineError turns an error returned by pkg/graphengine into an HTTP
// status, per §7's error taxonomy: not-found maps to 404, malformed
// arguments to 400, everything else to 500.
func mapEngineError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	case isNotFoundErr(err):
		return http.StatusNotFound
	case isBadRequestErr(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// edgeDirectionFetcher matches graphengine.Engine's GetEdgesFrom/GetEdgesTo
// signature, letting handleEdgesByDirection share one implementation for
// both directions.
type edgeDirectionFetcher func(id uint32, pred *graphengine.Predicate) ([]*storage.Edge, error)

func isNotFoundErr(err error) bool {
	return storage.IsNotFound(err)
}

func isBadRequestErr(err error) bool {
	return errors.Is(err, graphengine.ErrCreateEdgeArgs) || errors.Is(err, graphengine.ErrFromNodeMissing)
}
