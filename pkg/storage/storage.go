// Package storage implements a single shard's memory-mapped, append-mostly
// binary store: node and edge property records, fixed-size id slots, and the
// doubly-linked adjacency lists that back outgoing/incoming edge traversal.
package storage

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/clusograph/shard/pkg/logging"
)

const (
	nodeSlotSize = 12 // property-record address, out-edge head, in-edge head
	edgeSlotSize = 28 // from, to, prev-out, next-out, prev-in, next-in, props node id
)

// GraphStorage is the single-writer-per-shard storage engine. Its RWMutex
// serialises all mutating operations; readers may run concurrently with
// other readers but exclude writers, since a write may trigger a remap.
type GraphStorage struct {
	mu sync.RWMutex

	dir  string
	name string

	props   *mappedFile
	nodeIDs *mappedFile
	edges   *mappedFile

	stats  Statistics
	logger logging.Logger
}

// Open opens (creating if absent) the three backing files `<name>.properties`,
// `<name>.node_ids`, `<name>.edges` under dir.
func Open(dir, name string) (*GraphStorage, error) {
	props, err := openMappedFile(filepath.Join(dir, name+".properties"))
	if err != nil {
		return nil, err
	}
	nodeIDs, err := openMappedFile(filepath.Join(dir, name+".node_ids"))
	if err != nil {
		props.close()
		return nil, err
	}
	edges, err := openMappedFile(filepath.Join(dir, name+".edges"))
	if err != nil {
		props.close()
		nodeIDs.close()
		return nil, err
	}

	return &GraphStorage{
		dir:     dir,
		name:    name,
		props:   props,
		nodeIDs: nodeIDs,
		edges:   edges,
		logger:  logging.DefaultLogger().With(logging.Component("storage"), logging.String("shard", name)),
	}, nil
}

// Close flushes and unmaps all three backing files.
func (s *GraphStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, f := range []*mappedFile{s.props, s.nodeIDs, s.edges} {
		if err := f.flush(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := f.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// --- slot/address arithmetic ---
//
// Every backing file reserves its first headerSize bytes for the "next id /
// next free address" counter (§6). Id 0 and address 0 are sentinels meaning
// "none", so the first real slot/record occupies the byte immediately after
// the header: slot/address 1 maps to absolute offset headerSize, slot/address
// n maps to headerSize + (n-1)*slotSize.

func nodeSlotOffset(id uint32) int64 {
	return headerSize + int64(id-1)*nodeSlotSize
}

func edgeSlotOffset(id uint32) int64 {
	return headerSize + int64(id-1)*edgeSlotSize
}

func propAddrOffset(addr uint32) int64 {
	return headerSize + int64(addr-1)
}

// appendPropertyRecord packs props and appends it to the properties file,
// returning the address of the new record (the file's free-address counter
// before the append).
func (s *GraphStorage) appendPropertyRecord(props map[string]Value) (uint32, error) {
	packed := packRecord(props)

	nextAddr, err := s.props.header()
	if err != nil {
		return 0, err
	}

	if err := s.props.writeAt(propAddrOffset(nextAddr), packed); err != nil {
		return 0, err
	}
	if err := s.props.setHeader(nextAddr + uint32(len(packed))); err != nil {
		return 0, err
	}

	s.stats.recordAppend(len(packed))
	return nextAddr, nil
}

// readPropertyRecord decodes the property record at addr. addr == 0 (the
// sentinel for "no record") is a programmer error here; callers must check
// for the sentinel before calling.
func (s *GraphStorage) readPropertyRecord(addr uint32) (map[string]Value, error) {
	off := propAddrOffset(addr)
	lenBytes, err := s.props.readAt(off, 4)
	if err != nil {
		return nil, err
	}
	total, err := recordLength(lenBytes)
	if err != nil {
		return nil, err
	}
	raw, err := s.props.readAt(off, int64(total))
	if err != nil {
		return nil, err
	}
	props, err := unpackRecord(raw)
	if err != nil {
		return nil, fmt.Errorf("decode property record at %d: %w", addr, err)
	}
	return props, nil
}

// Statistics returns a snapshot of the engine's operation counters.
func (s *GraphStorage) Statistics() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}
