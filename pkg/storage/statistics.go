package storage

// Statistics is a snapshot of this engine's mutating-operation counters,
// surfaced by pkg/api's /metrics endpoint. Grounded on the teacher's own
// GetStatistics()/pkg/metrics idiom, trimmed to the counters this simpler
// append-mostly engine actually has.
type Statistics struct {
	NodesCreated  uint64
	NodesDeleted  uint64
	NodesUpdated  uint64
	EdgesCreated  uint64
	EdgesRemoved  uint64
	RecordAppends uint64
	BytesAppended uint64
}

func (s *Statistics) recordAppend(n int) {
	s.RecordAppends++
	s.BytesAppended += uint64(n)
}
