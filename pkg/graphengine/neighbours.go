package graphengine

import "github.com/clusograph/shard/pkg/storage"

// RemoteContinuation names a frontier edge whose target is a remote
// placeholder node: the orchestrator should resume traversal at RemoteID
// with HopsRemaining hops left.
type RemoteContinuation struct {
	RemoteID      string
	HopsRemaining int
}

type queueEntry struct {
	nodeID        uint32
	hopsRemaining int
}

// FindNeighbours performs a bounded-hop, outgoing-edges-only breadth-first
// traversal from start. It returns local_matches (nodes reached, including
// start itself) and remote_continuations (frontier edges whose target is a
// remote placeholder, paired with the reduced hop budget the orchestrator
// should resume with). Visited-node bookkeeping is scoped to queryID and
// must be released with a separate ClearVisited call.
//
// The storage engine supports both directions of traversal, but this walk
// intentionally uses outgoing edges only (§4.2's directionality note).
func (e *Engine) FindNeighbours(start uint32, hops int, queryID string, nodePred, edgePred *Predicate) ([]*storage.Node, []RemoteContinuation, error) {
	if hops <= 0 {
		return nil, nil, nil
	}

	startNode, err := e.store.GetNode(start)
	if err != nil {
		return nil, nil, err
	}
	if startNode == nil {
		return nil, nil, nil
	}

	e.visited.MarkVisited(queryID, start)
	local := []*storage.Node{startNode}
	var remote []RemoteContinuation

	queue := []queueEntry{{nodeID: start, hopsRemaining: hops}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.hopsRemaining <= 0 {
			continue
		}

		edgeIDs, err := e.store.EdgesFrom(cur.nodeID)
		if err != nil {
			return nil, nil, err
		}

		for _, edgeID := range edgeIDs {
			edge, err := e.store.GetEdge(edgeID)
			if err != nil {
				return nil, nil, err
			}
			if edge == nil {
				continue
			}
			if edgePred != nil && !Matches(edge.Props, edgePred) {
				continue
			}

			targetID := edge.To
			if e.visited.IsVisited(queryID, targetID) {
				continue
			}

			targetNode, err := e.store.GetNode(targetID)
			if err != nil {
				return nil, nil, err
			}
			if targetNode == nil {
				continue // orphan edge (§9): target node was deleted
			}
			if nodePred != nil && !Matches(targetNode.Props, nodePred) {
				continue
			}

			e.visited.MarkVisited(queryID, targetID)

			if remoteID, isRemote := isRemotePlaceholder(targetNode); isRemote {
				remote = append(remote, RemoteContinuation{
					RemoteID:      remoteID,
					HopsRemaining: cur.hopsRemaining - 1,
				})
				continue
			}

			local = append(local, targetNode)
			if cur.hopsRemaining-1 > 0 {
				queue = append(queue, queueEntry{nodeID: targetID, hopsRemaining: cur.hopsRemaining - 1})
			}
		}
	}

	return local, remote, nil
}
