package graphengine

import (
	"github.com/clusograph/shard/pkg/logging"
	"github.com/clusograph/shard/pkg/storage"
	"github.com/clusograph/shard/pkg/xshard"
)

// remoteNodeFlagKey and remoteNodeIDKey are the well-known property keys
// that mark a locally-stored node as a placeholder for a node living on
// another shard (§4.2, "remote-placeholder node").
const (
	remoteNodeFlagKey = "remote_node"
	remoteNodeIDKey   = "remote_node_id"
)

// Engine is the graph-engine layer over a single shard's storage engine: it
// owns the property-predicate language, create_edge's remote-placeholder
// semantics, and bounded-hop neighbourhood traversal.
type Engine struct {
	store   *storage.GraphStorage
	visited *xshard.VisitedSet
	logger  logging.Logger
}

// New wraps store with the graph-engine layer. maxVisitedQueries bounds the
// cross-shard visited-node bookkeeping (0 uses a sane default).
func New(store *storage.GraphStorage, maxVisitedQueries int) *Engine {
	return &Engine{
		store:   store,
		visited: xshard.NewVisitedSet(maxVisitedQueries),
		logger:  logging.DefaultLogger().With(logging.Component("graphengine")),
	}
}

// CreateNode delegates directly to the storage engine.
func (e *Engine) CreateNode(props map[string]storage.Value) (uint32, error) {
	return e.store.CreateNode(props)
}

// GetNode delegates directly to the storage engine.
func (e *Engine) GetNode(id uint32) (*storage.Node, error) {
	return e.store.GetNode(id)
}

// UpdateNode delegates directly to the storage engine.
func (e *Engine) UpdateNode(id uint32, props map[string]storage.Value) error {
	return e.store.UpdateNode(id, props)
}

// DeleteNode delegates directly to the storage engine. Orphaned edges are
// tolerated (§9).
func (e *Engine) DeleteNode(id uint32) error {
	return e.store.DeleteNode(id)
}

// CreateEdge creates an edge from `from`. Exactly one of to and toRemote
// must be supplied. When toRemote is supplied, a local remote-placeholder
// node is first created carrying {remote_node: true, remote_node_id:
// toRemote, ...remoteProps}, and the edge is created pointing at that
// placeholder — preserving a uniform local adjacency structure while
// carrying the cross-shard continuation pointer.
func (e *Engine) CreateEdge(from uint32, props map[string]storage.Value, to *uint32, toRemote *string, remoteProps map[string]storage.Value) (uint32, error) {
	if (to == nil) == (toRemote == nil) {
		return 0, ErrCreateEdgeArgs
	}

	fromNode, err := e.store.GetNode(from)
	if err != nil {
		return 0, err
	}
	if fromNode == nil {
		return 0, ErrFromNodeMissing
	}

	var target uint32
	if to != nil {
		target = *to
	}
	if toRemote != nil {
		placeholderProps := make(map[string]storage.Value, len(remoteProps)+2)
		for k, v := range remoteProps {
			placeholderProps[k] = v
		}
		placeholderProps[remoteNodeFlagKey] = storage.BoolValue(true)
		placeholderProps[remoteNodeIDKey] = storage.TextValue(*toRemote)

		placeholderID, err := e.store.CreateNode(placeholderProps)
		if err != nil {
			return 0, err
		}
		target = placeholderID
	}

	propsNodeID, err := e.store.CreateNode(props)
	if err != nil {
		return 0, err
	}

	return e.store.CreateEdge(from, target, propsNodeID)
}

// GetEdge delegates directly to the storage engine.
func (e *Engine) GetEdge(id uint32) (*storage.Edge, error) {
	return e.store.GetEdge(id)
}

// DeleteEdge delegates directly to the storage engine.
func (e *Engine) DeleteEdge(id uint32) error {
	return e.store.RemoveEdge(id)
}

// GetEdgesFrom walks id's outgoing adjacency list, optionally filtering by
// pred against each edge's properties.
func (e *Engine) GetEdgesFrom(id uint32, pred *Predicate) ([]*storage.Edge, error) {
	ids, err := e.store.EdgesFrom(id)
	if err != nil {
		return nil, err
	}
	return e.loadAndFilterEdges(ids, pred)
}

// GetEdgesTo walks id's incoming adjacency list, optionally filtering by
// pred against each edge's properties.
func (e *Engine) GetEdgesTo(id uint32, pred *Predicate) ([]*storage.Edge, error) {
	ids, err := e.store.EdgesTo(id)
	if err != nil {
		return nil, err
	}
	return e.loadAndFilterEdges(ids, pred)
}

func (e *Engine) loadAndFilterEdges(ids []uint32, pred *Predicate) ([]*storage.Edge, error) {
	var out []*storage.Edge
	for _, id := range ids {
		edge, err := e.store.GetEdge(id)
		if err != nil {
			return nil, err
		}
		if edge == nil {
			continue
		}
		if pred != nil && !Matches(edge.Props, pred) {
			continue
		}
		out = append(out, edge)
	}
	return out, nil
}

// FindNodes scans all live node ids and returns those matching pred.
func (e *Engine) FindNodes(pred *Predicate) ([]*storage.Node, error) {
	ids, err := e.store.NodeIDs()
	if err != nil {
		return nil, err
	}
	var out []*storage.Node
	for _, id := range ids {
		node, err := e.store.GetNode(id)
		if err != nil {
			return nil, err
		}
		if node == nil {
			continue
		}
		if !Matches(node.Props, pred) {
			continue
		}
		out = append(out, node)
	}
	return out, nil
}

// FindEdges scans all live edge ids and returns those matching pred.
func (e *Engine) FindEdges(pred *Predicate) ([]*storage.Edge, error) {
	ids, err := e.store.EdgeIDs()
	if err != nil {
		return nil, err
	}
	return e.loadAndFilterEdges(ids, pred)
}

// Statistics returns the underlying storage engine's monotonic counters, for
// the HTTP surface's /metrics route.
func (e *Engine) Statistics() storage.Statistics {
	return e.store.Statistics()
}

// ClearVisited releases the visited-node bookkeeping for queryID. A missing
// release leaks (bounded, via LRU); a double release is a no-op.
func (e *Engine) ClearVisited(queryID string) {
	e.visited.Clear(queryID)
}

// isRemotePlaceholder reports whether node is tagged as a remote
// placeholder, returning its remote_node_id if so.
func isRemotePlaceholder(node *storage.Node) (string, bool) {
	flag, ok := node.Props[remoteNodeFlagKey]
	if !ok {
		return "", false
	}
	if b, isBool := flag.AsBool(); !isBool || !b {
		return "", false
	}
	idVal, ok := node.Props[remoteNodeIDKey]
	if !ok {
		return "", false
	}
	id, isText := idVal.AsString()
	if !isText {
		return "", false
	}
	return id, true
}
