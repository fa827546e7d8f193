package storage

import "fmt"

// CreateEdge allocates the next EdgeId and splices it at the head of both
// adjacency lists: the outgoing list of from, and the incoming list of to.
// propsNodeID is a node id — typically just allocated via CreateNode by the
// caller — whose property record holds the edge's properties; the engine
// stores this indirection rather than a direct property-record address so
// the same codec serves both nodes and edges (§4.1).
func (s *GraphStorage) CreateEdge(from, to, propsNodeID uint32) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fromAddr, fromOutHead, fromInHead, err := s.readNodeSlot(from)
	if err != nil {
		return 0, NewError("CreateEdge").Node(from).Cause(err).Err()
	}
	if fromAddr == 0 {
		return 0, NewError("CreateEdge").Node(from).Cause(ErrNodeNotFound).Err()
	}

	toAddr, toOutHead, toInHead, err := s.readNodeSlot(to)
	if err != nil {
		return 0, NewError("CreateEdge").Node(to).Cause(err).Err()
	}
	if toAddr == 0 {
		return 0, NewError("CreateEdge").Node(to).Cause(ErrNodeNotFound).Err()
	}

	id, err := s.edges.header()
	if err != nil {
		return 0, NewError("CreateEdge").Cause(err).Err()
	}

	if err := s.writeEdgeSlot(id, edgeSlot{
		from: from, to: to,
		prevOut: 0, nextOut: fromOutHead,
		prevIn: 0, nextIn: toInHead,
		propsNode: propsNodeID,
	}); err != nil {
		return 0, NewError("CreateEdge").Edge(id).Cause(err).Err()
	}

	if fromOutHead != 0 {
		if err := s.patchEdgePrevOut(fromOutHead, id); err != nil {
			return 0, NewError("CreateEdge").Edge(id).Cause(err).Err()
		}
	}
	if toInHead != 0 {
		if err := s.patchEdgePrevIn(toInHead, id); err != nil {
			return 0, NewError("CreateEdge").Edge(id).Cause(err).Err()
		}
	}

	if err := s.writeNodeSlot(from, fromAddr, id, fromInHead); err != nil {
		return 0, NewError("CreateEdge").Node(from).Cause(err).Err()
	}
	if to == from {
		toOutHead = id
	}
	if err := s.writeNodeSlot(to, toAddr, toOutHead, id); err != nil {
		return 0, NewError("CreateEdge").Node(to).Cause(err).Err()
	}

	if err := s.edges.setHeader(id + 1); err != nil {
		return 0, NewError("CreateEdge").Cause(err).Err()
	}

	s.stats.EdgesCreated++
	return id, nil
}

// GetEdge returns the edge and its properties, or (nil, nil) if id has no
// live slot (from_nid == 0).
func (s *GraphStorage) GetEdge(id uint32) (*Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, err := s.readEdgeSlot(id)
	if err != nil {
		return nil, NewError("GetEdge").Edge(id).Cause(err).Err()
	}
	if slot.from == 0 {
		return nil, nil
	}

	props := map[string]Value{}
	if slot.propsNode != 0 {
		propsNode, err := s.getNodeLocked(slot.propsNode)
		if err != nil {
			return nil, NewError("GetEdge").Edge(id).Cause(err).Err()
		}
		if propsNode != nil {
			props = propsNode.Props
		}
	}

	return &Edge{ID: id, From: slot.from, To: slot.to, Props: props}, nil
}

// RemoveEdge unlinks the edge from both adjacency lists and zeroes its
// from_nid. The slot itself is never reused.
func (s *GraphStorage) RemoveEdge(id uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, err := s.readEdgeSlot(id)
	if err != nil {
		return NewError("RemoveEdge").Edge(id).Cause(err).Err()
	}
	if slot.from == 0 {
		return NewError("RemoveEdge").Edge(id).Cause(ErrEdgeNotFound).Err()
	}

	if err := s.unlinkOutgoing(slot.from, id, slot.prevOut, slot.nextOut); err != nil {
		return NewError("RemoveEdge").Edge(id).Cause(err).Err()
	}
	if err := s.unlinkIncoming(slot.to, id, slot.prevIn, slot.nextIn); err != nil {
		return NewError("RemoveEdge").Edge(id).Cause(err).Err()
	}

	slot.from = 0
	if err := s.writeEdgeSlot(id, slot); err != nil {
		return NewError("RemoveEdge").Edge(id).Cause(err).Err()
	}

	s.stats.EdgesRemoved++
	return nil
}

// unlinkOutgoing removes edgeID from from's outgoing list, patching either
// the node's head or the neighbouring slots.
func (s *GraphStorage) unlinkOutgoing(from, edgeID, prevOut, nextOut uint32) error {
	addr, outHead, inHead, err := s.readNodeSlot(from)
	if err != nil {
		return err
	}
	if outHead == edgeID {
		if err := s.writeNodeSlot(from, addr, nextOut, inHead); err != nil {
			return err
		}
		if nextOut != 0 {
			return s.patchEdgePrevOut(nextOut, 0)
		}
		return nil
	}
	if prevOut != 0 {
		if err := s.patchEdgeNextOut(prevOut, nextOut); err != nil {
			return err
		}
	}
	if nextOut != 0 {
		if err := s.patchEdgePrevOut(nextOut, prevOut); err != nil {
			return err
		}
	}
	return nil
}

// unlinkIncoming removes edgeID from to's incoming list, patching either the
// node's head or the neighbouring slots.
func (s *GraphStorage) unlinkIncoming(to, edgeID, prevIn, nextIn uint32) error {
	addr, outHead, inHead, err := s.readNodeSlot(to)
	if err != nil {
		return err
	}
	if inHead == edgeID {
		if err := s.writeNodeSlot(to, addr, outHead, nextIn); err != nil {
			return err
		}
		if nextIn != 0 {
			return s.patchEdgePrevIn(nextIn, 0)
		}
		return nil
	}
	if prevIn != 0 {
		if err := s.patchEdgeNextIn(prevIn, nextIn); err != nil {
			return err
		}
	}
	if nextIn != 0 {
		if err := s.patchEdgePrevIn(nextIn, prevIn); err != nil {
			return err
		}
	}
	return nil
}

// EdgesFrom walks the outgoing adjacency list of id from the node's slot
// head until the sentinel, returning edge ids in head-to-tail (most recently
// created first) order.
func (s *GraphStorage) EdgesFrom(id uint32) ([]uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, outHead, _, err := s.readNodeSlot(id)
	if err != nil {
		return nil, NewError("EdgesFrom").Node(id).Cause(err).Err()
	}

	var ids []uint32
	cur := outHead
	seen := 0
	for cur != 0 {
		slot, err := s.readEdgeSlot(cur)
		if err != nil {
			return nil, NewError("EdgesFrom").Node(id).Cause(err).Err()
		}
		ids = append(ids, cur)
		cur = slot.nextOut
		if seen++; seen > maxAdjacencyWalk {
			return nil, NewError("EdgesFrom").Node(id).Cause(ErrUnterminatedAdj).Err()
		}
	}
	return ids, nil
}

// EdgesTo walks the incoming adjacency list of id from the node's slot head
// until the sentinel.
func (s *GraphStorage) EdgesTo(id uint32) ([]uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, _, inHead, err := s.readNodeSlot(id)
	if err != nil {
		return nil, NewError("EdgesTo").Node(id).Cause(err).Err()
	}

	var ids []uint32
	cur := inHead
	seen := 0
	for cur != 0 {
		slot, err := s.readEdgeSlot(cur)
		if err != nil {
			return nil, NewError("EdgesTo").Node(id).Cause(err).Err()
		}
		ids = append(ids, cur)
		cur = slot.nextIn
		if seen++; seen > maxAdjacencyWalk {
			return nil, NewError("EdgesTo").Node(id).Cause(ErrUnterminatedAdj).Err()
		}
	}
	return ids, nil
}

// EdgeIDs enumerates every live EdgeId via a linear scan filtering sentinel
// slots (from_nid == 0).
func (s *GraphStorage) EdgeIDs() ([]uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	next, err := s.edges.header()
	if err != nil {
		return nil, err
	}
	var ids []uint32
	for id := uint32(1); id < next; id++ {
		slot, err := s.readEdgeSlot(id)
		if err != nil {
			return nil, fmt.Errorf("scan edge slot %d: %w", id, err)
		}
		if slot.from != 0 {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// maxAdjacencyWalk bounds an adjacency-list traversal so a corrupted cyclic
// list surfaces as an invariant violation instead of hanging forever.
const maxAdjacencyWalk = 1 << 24

type edgeSlot struct {
	from, to         uint32
	prevOut, nextOut uint32
	prevIn, nextIn   uint32
	propsNode        uint32
}

func (s *GraphStorage) readEdgeSlot(id uint32) (edgeSlot, error) {
	raw, err := s.edges.readAt(edgeSlotOffset(id), edgeSlotSize)
	if err != nil {
		return edgeSlot{}, err
	}
	return edgeSlot{
		from:      be32(raw[0:4]),
		to:        be32(raw[4:8]),
		prevOut:   be32(raw[8:12]),
		nextOut:   be32(raw[12:16]),
		prevIn:    be32(raw[16:20]),
		nextIn:    be32(raw[20:24]),
		propsNode: be32(raw[24:28]),
	}, nil
}

func (s *GraphStorage) writeEdgeSlot(id uint32, slot edgeSlot) error {
	var buf [edgeSlotSize]byte
	putBE32(buf[0:4], slot.from)
	putBE32(buf[4:8], slot.to)
	putBE32(buf[8:12], slot.prevOut)
	putBE32(buf[12:16], slot.nextOut)
	putBE32(buf[16:20], slot.prevIn)
	putBE32(buf[20:24], slot.nextIn)
	putBE32(buf[24:28], slot.propsNode)
	return s.edges.writeAt(edgeSlotOffset(id), buf[:])
}

func (s *GraphStorage) patchEdgePrevOut(id, prevOut uint32) error {
	slot, err := s.readEdgeSlot(id)
	if err != nil {
		return err
	}
	slot.prevOut = prevOut
	return s.writeEdgeSlot(id, slot)
}

func (s *GraphStorage) patchEdgeNextOut(id, nextOut uint32) error {
	slot, err := s.readEdgeSlot(id)
	if err != nil {
		return err
	}
	slot.nextOut = nextOut
	return s.writeEdgeSlot(id, slot)
}

func (s *GraphStorage) patchEdgePrevIn(id, prevIn uint32) error {
	slot, err := s.readEdgeSlot(id)
	if err != nil {
		return err
	}
	slot.prevIn = prevIn
	return s.writeEdgeSlot(id, slot)
}

func (s *GraphStorage) patchEdgeNextIn(id, nextIn uint32) error {
	slot, err := s.readEdgeSlot(id)
	if err != nil {
		return err
	}
	slot.nextIn = nextIn
	return s.writeEdgeSlot(id, slot)
}
