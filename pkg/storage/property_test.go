package storage

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestPropertyValueRoundTrip verifies, for arbitrary values of each of the
// five wire kinds, that get_node(create_node({k: v})).props[k] == v, per
// §8's round-trip invariant.
func TestPropertyValueRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20

	properties := gopter.NewProperties(parameters)

	properties.Property("int round-trips through create_node/get_node", prop.ForAll(
		func(key string, v int32) bool {
			return roundTripsValue(t, key, IntValue(v))
		},
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
		gen.Int32(),
	))

	properties.Property("uint round-trips through create_node/get_node", prop.ForAll(
		func(key string, v uint32) bool {
			return roundTripsValue(t, key, UintValue(v))
		},
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
		gen.UInt32(),
	))

	properties.Property("float round-trips through create_node/get_node", prop.ForAll(
		func(key string, v float32) bool {
			return roundTripsValue(t, key, FloatValue(v))
		},
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
		gen.Float32(),
	))

	properties.Property("bool round-trips through create_node/get_node", prop.ForAll(
		func(key string, v bool) bool {
			return roundTripsValue(t, key, BoolValue(v))
		},
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
		gen.Bool(),
	))

	properties.Property("UTF-8 text round-trips through create_node/get_node", prop.ForAll(
		func(key, v string) bool {
			return roundTripsValue(t, key, TextValue(v))
		},
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
		gen.AnyString(),
	))

	properties.Property("update_node preserves other nodes' properties", prop.ForAll(
		func(a, b int32) bool {
			s := newPropertyTestStorage(t)
			defer s.Close()

			n1, err := s.CreateNode(map[string]Value{"v": IntValue(a)})
			if err != nil {
				return false
			}
			n2, err := s.CreateNode(map[string]Value{"v": IntValue(b)})
			if err != nil {
				return false
			}

			if err := s.UpdateNode(n1, map[string]Value{"v": IntValue(a + 1)}); err != nil {
				return false
			}

			n2after, err := s.GetNode(n2)
			if err != nil || n2after == nil {
				return false
			}
			got, ok := n2after.Props["v"]
			return ok && got.Equal(IntValue(b))
		},
		gen.Int32(),
		gen.Int32(),
	))

	properties.TestingRun(t)
}

func roundTripsValue(t *testing.T, key string, v Value) bool {
	s := newPropertyTestStorage(t)
	defer s.Close()

	id, err := s.CreateNode(map[string]Value{key: v})
	if err != nil {
		return false
	}
	node, err := s.GetNode(id)
	if err != nil || node == nil {
		return false
	}
	got, ok := node.Props[key]
	return ok && got.Equal(v)
}

func newPropertyTestStorage(t *testing.T) *GraphStorage {
	return newTestStorage(t)
}
