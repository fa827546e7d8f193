package storage

import "testing"

func createEdgeWithProps(t *testing.T, s *GraphStorage, from, to uint32, props map[string]Value) uint32 {
	t.Helper()
	propsNodeID, err := s.CreateNode(props)
	if err != nil {
		t.Fatalf("CreateNode (edge props): %v", err)
	}
	edgeID, err := s.CreateEdge(from, to, propsNodeID)
	if err != nil {
		t.Fatalf("CreateEdge: %v", err)
	}
	return edgeID
}

func TestRemoveMiddleEdgePreservesOrder(t *testing.T) {
	s := newTestStorage(t)

	a, err := s.CreateNode(nil)
	if err != nil {
		t.Fatalf("CreateNode A: %v", err)
	}
	b, err := s.CreateNode(nil)
	if err != nil {
		t.Fatalf("CreateNode B: %v", err)
	}

	e1 := createEdgeWithProps(t, s, a, b, nil)
	e2 := createEdgeWithProps(t, s, a, b, nil)
	e3 := createEdgeWithProps(t, s, a, b, nil)

	if err := s.RemoveEdge(e2); err != nil {
		t.Fatalf("RemoveEdge: %v", err)
	}

	from, err := s.EdgesFrom(a)
	if err != nil {
		t.Fatalf("EdgesFrom: %v", err)
	}
	if len(from) != 2 {
		t.Fatalf("expected 2 remaining edges, got %d: %v", len(from), from)
	}

	idxE1, idxE3 := -1, -1
	for i, id := range from {
		if id == e1 {
			idxE1 = i
		}
		if id == e3 {
			idxE3 = i
		}
	}
	if idxE1 == -1 || idxE3 == -1 {
		t.Fatalf("e1/e3 missing from %v", from)
	}
	if idxE3 > idxE1 {
		t.Fatalf("expected e3 before e1 (head-insertion order), got %v", from)
	}
}

func TestSelfLoopAndDirectionalAsymmetry(t *testing.T) {
	s := newTestStorage(t)

	a, err := s.CreateNode(nil)
	if err != nil {
		t.Fatalf("CreateNode A: %v", err)
	}
	b, err := s.CreateNode(nil)
	if err != nil {
		t.Fatalf("CreateNode B: %v", err)
	}

	loop := createEdgeWithProps(t, s, a, a, nil)
	ba := createEdgeWithProps(t, s, b, a, nil)

	aOut, err := s.EdgesFrom(a)
	if err != nil {
		t.Fatalf("EdgesFrom A: %v", err)
	}
	aIn, err := s.EdgesTo(a)
	if err != nil {
		t.Fatalf("EdgesTo A: %v", err)
	}

	if !containsID(aOut, loop) {
		t.Fatalf("self-loop missing from A's outgoing list: %v", aOut)
	}
	if !containsID(aIn, loop) {
		t.Fatalf("self-loop missing from A's incoming list: %v", aIn)
	}
	if !containsID(aIn, ba) {
		t.Fatalf("(B,A) missing from A's incoming list: %v", aIn)
	}
	if containsID(aOut, ba) {
		t.Fatalf("(B,A) unexpectedly present in A's outgoing list: %v", aOut)
	}

	if err := s.RemoveEdge(loop); err != nil {
		t.Fatalf("RemoveEdge(loop): %v", err)
	}

	aIn, err = s.EdgesTo(a)
	if err != nil {
		t.Fatalf("EdgesTo A after removal: %v", err)
	}
	if !containsID(aIn, ba) {
		t.Fatalf("(B,A) should survive loop removal: %v", aIn)
	}
	if containsID(aIn, loop) {
		t.Fatalf("removed loop still present: %v", aIn)
	}
}

func TestEdgeIDsExcludesRemoved(t *testing.T) {
	s := newTestStorage(t)

	a, _ := s.CreateNode(nil)
	b, _ := s.CreateNode(nil)
	e1 := createEdgeWithProps(t, s, a, b, nil)
	e2 := createEdgeWithProps(t, s, a, b, nil)

	if err := s.RemoveEdge(e1); err != nil {
		t.Fatalf("RemoveEdge: %v", err)
	}

	ids, err := s.EdgeIDs()
	if err != nil {
		t.Fatalf("EdgeIDs: %v", err)
	}
	if containsID(ids, e1) {
		t.Fatalf("removed edge %d still enumerated: %v", e1, ids)
	}
	if !containsID(ids, e2) {
		t.Fatalf("live edge %d missing: %v", e2, ids)
	}
}

func containsID(ids []uint32, want uint32) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}
