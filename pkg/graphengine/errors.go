package graphengine

import "errors"

// Sentinel errors for the graph-engine layer's own input-validation rejections
// (client errors, per §7's error taxonomy (b)) as distinct from storage-layer
// invariant violations, which propagate through unwrapped.
var (
	ErrCreateEdgeArgs  = errors.New("create_edge requires exactly one of to or to_remote")
	ErrFromNodeMissing = errors.New("from node does not exist")
)
