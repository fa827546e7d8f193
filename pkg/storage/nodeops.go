package storage

import "fmt"

// CreateNode allocates the next NodeId, appends its packed property record,
// and writes a fresh slot with both adjacency heads empty.
func (s *GraphStorage) CreateNode(props map[string]Value) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.createNodeSlot(props)
	if err != nil {
		return 0, NewError("CreateNode").Cause(err).Err()
	}
	s.stats.NodesCreated++
	return id, nil
}

// createNodeSlot is the slot-allocation primitive shared by CreateNode and
// by the edge-property indirection node a caller creates via CreateNode
// before calling CreateEdge.
func (s *GraphStorage) createNodeSlot(props map[string]Value) (uint32, error) {
	addr, err := s.appendPropertyRecord(props)
	if err != nil {
		return 0, err
	}

	id, err := s.nodeIDs.header()
	if err != nil {
		return 0, err
	}

	if err := s.writeNodeSlot(id, addr, 0, 0); err != nil {
		return 0, err
	}
	if err := s.nodeIDs.setHeader(id + 1); err != nil {
		return 0, err
	}
	return id, nil
}

// GetNode returns the node, or (nil, nil) if id has no live slot.
func (s *GraphStorage) GetNode(id uint32) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getNodeLocked(id)
}

func (s *GraphStorage) getNodeLocked(id uint32) (*Node, error) {
	if id == 0 {
		return nil, nil
	}
	addr, _, _, err := s.readNodeSlot(id)
	if err != nil {
		return nil, NewError("GetNode").Node(id).Cause(err).Err()
	}
	if addr == 0 {
		return nil, nil
	}
	props, err := s.readPropertyRecord(addr)
	if err != nil {
		return nil, NewError("GetNode").Node(id).Cause(err).Err()
	}
	return &Node{ID: id, Props: props}, nil
}

// UpdateNode packs new props; if the packed length matches the existing
// record's length it overwrites in place, otherwise it appends a fresh
// record and redirects the slot. The old record is abandoned in place.
func (s *GraphStorage) UpdateNode(id uint32, props map[string]Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	addr, outHead, inHead, err := s.readNodeSlot(id)
	if err != nil {
		return NewError("UpdateNode").Node(id).Cause(err).Err()
	}
	if addr == 0 {
		return NewError("UpdateNode").Node(id).Cause(ErrNodeNotFound).Err()
	}

	packed := packRecord(props)
	oldLenBytes, err := s.props.readAt(propAddrOffset(addr), 4)
	if err != nil {
		return NewError("UpdateNode").Node(id).Cause(err).Err()
	}
	oldLen, err := recordLength(oldLenBytes)
	if err != nil {
		return NewError("UpdateNode").Node(id).Cause(err).Err()
	}

	if uint32(len(packed)) == oldLen {
		if err := s.props.writeAt(propAddrOffset(addr), packed); err != nil {
			return NewError("UpdateNode").Node(id).Cause(err).Err()
		}
	} else {
		newAddr, err := s.appendPropertyRecord(props)
		if err != nil {
			return NewError("UpdateNode").Node(id).Cause(err).Err()
		}
		if err := s.writeNodeSlot(id, newAddr, outHead, inHead); err != nil {
			return NewError("UpdateNode").Node(id).Cause(err).Err()
		}
	}

	s.stats.NodesUpdated++
	return nil
}

// DeleteNode zeroes the slot's property-record address. Edges referencing
// this node are not touched (orphan-edge semantics, per §9).
func (s *GraphStorage) DeleteNode(id uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, outHead, inHead, err := s.readNodeSlot(id)
	if err != nil {
		return NewError("DeleteNode").Node(id).Cause(err).Err()
	}
	if err := s.writeNodeSlot(id, 0, outHead, inHead); err != nil {
		return NewError("DeleteNode").Node(id).Cause(err).Err()
	}
	s.stats.NodesDeleted++
	return nil
}

// NodeIDs enumerates every live NodeId via a linear scan filtering sentinel
// slots.
func (s *GraphStorage) NodeIDs() ([]uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	next, err := s.nodeIDs.header()
	if err != nil {
		return nil, err
	}
	var ids []uint32
	for id := uint32(1); id < next; id++ {
		addr, _, _, err := s.readNodeSlot(id)
		if err != nil {
			return nil, fmt.Errorf("scan node slot %d: %w", id, err)
		}
		if addr != 0 {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *GraphStorage) readNodeSlot(id uint32) (addr, outHead, inHead uint32, err error) {
	off := nodeSlotOffset(id)
	raw, err := s.nodeIDs.readAt(off, nodeSlotSize)
	if err != nil {
		return 0, 0, 0, err
	}
	addr = be32(raw[0:4])
	outHead = be32(raw[4:8])
	inHead = be32(raw[8:12])
	return addr, outHead, inHead, nil
}

func (s *GraphStorage) writeNodeSlot(id uint32, addr, outHead, inHead uint32) error {
	var buf [nodeSlotSize]byte
	putBE32(buf[0:4], addr)
	putBE32(buf[4:8], outHead)
	putBE32(buf[8:12], inHead)
	return s.nodeIDs.writeAt(nodeSlotOffset(id), buf[:])
}
