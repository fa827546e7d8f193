package storage

import (
	"os"
	"testing"
)

func newTestStorage(t *testing.T) *GraphStorage {
	t.Helper()
	dir, err := os.MkdirTemp("", "shard-storage-test-*")
	if err != nil {
		t.Fatalf("mkdtemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	s, err := Open(dir, "test")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateGetNodeRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	props := map[string]Value{
		"an_int":     IntValue(2),
		"unicode":    TextValue("салəм"),
		"float":      FloatValue(1.25),
		"bool_true":  BoolValue(true),
		"char_z":     TextValue("z"),
		"text_hello": TextValue("hello"),
	}

	id, err := s.CreateNode(props)
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero node id")
	}

	got, err := s.GetNode(id)
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	if got == nil {
		t.Fatal("GetNode returned nil for live node")
	}
	for k, want := range props {
		gv, ok := got.Props[k]
		if !ok || !gv.Equal(want) {
			t.Fatalf("property %q: got %v, want %v", k, gv, want)
		}
	}
}

func TestGetNodeUnknownID(t *testing.T) {
	s := newTestStorage(t)
	got, err := s.GetNode(999)
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for unknown node id")
	}
}

func TestUpdateNodeInPlaceAndRelocated(t *testing.T) {
	s := newTestStorage(t)

	neighbourID, err := s.CreateNode(map[string]Value{"x": IntValue(7)})
	if err != nil {
		t.Fatalf("CreateNode neighbour: %v", err)
	}

	id, err := s.CreateNode(map[string]Value{"v": IntValue(2)})
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}

	if err := s.UpdateNode(id, map[string]Value{"v": IntValue(3)}); err != nil {
		t.Fatalf("UpdateNode in place: %v", err)
	}
	inPlace, err := s.GetNode(id)
	if err != nil {
		t.Fatalf("GetNode after in-place update: %v", err)
	}
	if iv, ok := inPlace.Props["v"]; !ok || !iv.Equal(IntValue(3)) {
		t.Fatalf("expected in-place value 3, got %v", iv)
	}

	longer := map[string]Value{"v": TextValue("text is longer than int")}
	if err := s.UpdateNode(id, longer); err != nil {
		t.Fatalf("UpdateNode: %v", err)
	}

	got, err := s.GetNode(id)
	if err != nil {
		t.Fatalf("GetNode after update: %v", err)
	}
	gv, ok := got.Props["v"]
	if !ok || !gv.Equal(TextValue("text is longer than int")) {
		t.Fatalf("expected relocated value, got %v", gv)
	}

	neighbour, err := s.GetNode(neighbourID)
	if err != nil {
		t.Fatalf("GetNode neighbour: %v", err)
	}
	nv, ok := neighbour.Props["x"]
	if !ok || !nv.Equal(IntValue(7)) {
		t.Fatalf("neighbour property changed: got %v", nv)
	}
}

func TestDeleteNodeRemovesFromEnumeration(t *testing.T) {
	s := newTestStorage(t)

	id, err := s.CreateNode(map[string]Value{"a": BoolValue(true)})
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}

	if err := s.DeleteNode(id); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}

	got, err := s.GetNode(id)
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil after delete")
	}

	ids, err := s.NodeIDs()
	if err != nil {
		t.Fatalf("NodeIDs: %v", err)
	}
	for _, n := range ids {
		if n == id {
			t.Fatalf("deleted id %d still present in NodeIDs", id)
		}
	}
}
