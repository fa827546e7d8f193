package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/clusograph/shard/pkg/config"
	"github.com/clusograph/shard/pkg/graphengine"
	"github.com/clusograph/shard/pkg/storage"
)

func newTestServer(t *testing.T) (*Server, *graphengine.Engine) {
	t.Helper()
	dir, err := os.MkdirTemp("", "shard-api-test")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	store, err := storage.Open(dir, "test")
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	engine := graphengine.New(store, 16)
	cfg := config.Defaults()
	return NewServer(engine, cfg, nil), engine
}

func doRequest(t *testing.T, s *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestPingIsAlwaysOpen(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/ping", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestAddNodeAndGetNodeRoundTrip(t *testing.T) {
	s, _ := newTestServer(t)

	addRec := doRequest(t, s, http.MethodPost, "/addNode", map[string]any{
		"props": map[string]any{
			"name": map[string]any{"type": "text", "text": "alice"},
			"age":  map[string]any{"type": "int", "int": 30},
		},
	})
	if addRec.Code != http.StatusCreated {
		t.Fatalf("addNode: got status %d, body %s", addRec.Code, addRec.Body.String())
	}
	var addResp map[string]uint32
	if err := json.Unmarshal(addRec.Body.Bytes(), &addResp); err != nil {
		t.Fatalf("unmarshal addNode response: %v", err)
	}
	nodeID := addResp["node_id"]
	if nodeID == 0 {
		t.Fatal("expected non-zero node id")
	}

	getRec := doRequest(t, s, http.MethodGet, fmt.Sprintf("/getNode?node_id=%d", nodeID), nil)
	if getRec.Code != http.StatusOK {
		t.Fatalf("getNode: got status %d, body %s", getRec.Code, getRec.Body.String())
	}
	var node wireNode
	if err := json.Unmarshal(getRec.Body.Bytes(), &node); err != nil {
		t.Fatalf("unmarshal getNode response: %v", err)
	}
	if node.NodeID != nodeID {
		t.Fatalf("got node id %d, want %d", node.NodeID, nodeID)
	}
	if node.Props["name"].Text == nil || *node.Props["name"].Text != "alice" {
		t.Fatalf("unexpected name prop: %+v", node.Props["name"])
	}
}

func TestGetNodeMissingIDParamIsBadRequest(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/getNode", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}
}

func TestGetNodeZeroIDIsTreatedAsMissing(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/getNode?node_id=0", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400 (node_id=0 is treated as absent)", rec.Code)
	}
}

func TestGetNodeUnknownIDIsNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/getNode?node_id=999", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404, body %s", rec.Code, rec.Body.String())
	}
}

func TestAddEdgeRequiresExactlyOneTarget(t *testing.T) {
	s, engine := newTestServer(t)
	fromID, err := engine.CreateNode(nil)
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}

	rec := doRequest(t, s, http.MethodPost, "/addEdge", map[string]any{
		"from_node": fromID,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400 for missing target, body %s", rec.Code, rec.Body.String())
	}

	toID, _ := engine.CreateNode(nil)
	rec2 := doRequest(t, s, http.MethodPost, "/addEdge", map[string]any{
		"from_node":       fromID,
		"to_node":         toID,
		"to_node_remote":  "shard-b$7",
	})
	if rec2.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400 for both targets set, body %s", rec2.Code, rec2.Body.String())
	}
}

func TestAddEdgeAndGetEdgesFrom(t *testing.T) {
	s, engine := newTestServer(t)
	fromID, _ := engine.CreateNode(nil)
	toID, _ := engine.CreateNode(nil)

	rec := doRequest(t, s, http.MethodPost, "/addEdge", map[string]any{
		"from_node": fromID,
		"to_node":   toID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("addEdge: got status %d, body %s", rec.Code, rec.Body.String())
	}

	listRec := doRequest(t, s, http.MethodGet, fmt.Sprintf("/getEdgesFrom?node_id=%d", fromID), nil)
	if listRec.Code != http.StatusOK {
		t.Fatalf("getEdgesFrom: got status %d, body %s", listRec.Code, listRec.Body.String())
	}
	var resp struct {
		Edges []*wireEdge `json:"edges"`
	}
	if err := json.Unmarshal(listRec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Edges) != 1 || resp.Edges[0].To != toID {
		t.Fatalf("unexpected edges: %+v", resp.Edges)
	}
}

func TestFindNeighboursGeneratesQueryIDWhenOmitted(t *testing.T) {
	s, engine := newTestServer(t)
	startID, _ := engine.CreateNode(nil)

	rec := doRequest(t, s, http.MethodGet, fmt.Sprintf("/findNeighbours?node_id=%d&hops=1", startID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		QueryID string `json:"query_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.QueryID == "" {
		t.Fatal("expected a server-generated query_id in the response")
	}
}

func TestFindNeighboursAndClearVisitedFlow(t *testing.T) {
	s, engine := newTestServer(t)
	a, _ := engine.CreateNode(nil)
	b, _ := engine.CreateNode(nil)
	if _, err := engine.CreateEdge(a, nil, &b, nil, nil); err != nil {
		t.Fatalf("CreateEdge: %v", err)
	}

	rec := doRequest(t, s, http.MethodGet, fmt.Sprintf("/findNeighbours?node_id=%d&hops=1&query_id=q1", a), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("findNeighbours: got status %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Neighbours []*wireNode `json:"neighbours"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Neighbours) != 2 {
		t.Fatalf("got %d neighbours, want 2 (start + neighbour)", len(resp.Neighbours))
	}

	clearRec := doRequest(t, s, http.MethodPut, "/clearVisitedNodes?query_id=q1", nil)
	if clearRec.Code != http.StatusOK {
		t.Fatalf("clearVisitedNodes: got status %d", clearRec.Code)
	}

	// Second release is a no-op, not an error.
	clearRec2 := doRequest(t, s, http.MethodPut, "/clearVisitedNodes?query_id=q1", nil)
	if clearRec2.Code != http.StatusOK {
		t.Fatalf("second clearVisitedNodes: got status %d", clearRec2.Code)
	}
}

func TestFindNodesWithMalformedPredicateIsBadRequest(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/findNodes?predicate=not-json", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400, body %s", rec.Code, rec.Body.String())
	}
}

func TestAuthRequiredWhenJWTSecretConfigured(t *testing.T) {
	s, _ := newTestServer(t)
	s.verifier = newTokenVerifier("a-secret-at-least-this-long-32ch")
	s.mux = http.NewServeMux()
	s.routes()

	rec := doRequest(t, s, http.MethodGet, "/findNodes", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401 without Authorization header", rec.Code)
	}
}
