// Package xshard holds the cross-shard bookkeeping a multi-shard
// orchestrator needs: visited-node state keyed by query id, and the
// composite remote-node identifier format.
package xshard

import (
	"fmt"
	"strconv"
	"strings"
)

// RemoteID is the externally-visible composite identifier
// "<shard-endpoint>$<local-id>" (§6), used to name a node or edge that lives
// on another shard.
type RemoteID struct {
	Endpoint string
	LocalID  uint32
}

// String formats the composite identifier.
func (r RemoteID) String() string {
	return fmt.Sprintf("%s$%d", r.Endpoint, r.LocalID)
}

// ParseRemoteID splits a composite identifier on its first '$'. An endpoint
// unknown to the orchestrator is the caller's concern, not this function's —
// ParseRemoteID only validates shape.
func ParseRemoteID(s string) (RemoteID, error) {
	idx := strings.IndexByte(s, '$')
	if idx < 0 {
		return RemoteID{}, fmt.Errorf("remote id %q: missing '$' separator", s)
	}
	endpoint := s[:idx]
	if endpoint == "" {
		return RemoteID{}, fmt.Errorf("remote id %q: empty endpoint", s)
	}
	localPart := s[idx+1:]
	local, err := strconv.ParseUint(localPart, 10, 32)
	if err != nil {
		return RemoteID{}, fmt.Errorf("remote id %q: invalid local id: %w", s, err)
	}
	return RemoteID{Endpoint: endpoint, LocalID: uint32(local)}, nil
}
