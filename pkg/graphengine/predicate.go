// Package graphengine implements the logical layer over pkg/storage: the
// property-predicate language, remote-placeholder edge endpoints, and
// bounded-hop neighbourhood traversal.
package graphengine

import "github.com/clusograph/shard/pkg/storage"

// Predicate is a conjunction of named clauses over a property map. It is
// modeled as a tagged-variant struct rather than a stringly-typed map, per
// the design note recommending a typed predicate AST (the RPC layer is
// responsible for decoding wire JSON into this shape and rejecting
// wrongly-shaped operands as a 400).
type Predicate struct {
	NegativeProps       []string
	EqualProps          map[string]storage.Value
	NotEqualProps       map[string]storage.Value
	LessProps           map[string]storage.Value
	LessOrEqualProps    map[string]storage.Value
	GreaterProps        map[string]storage.Value
	GreaterOrEqualProps map[string]storage.Value
}

// IsEmpty reports whether the predicate has no clauses at all — an empty or
// absent predicate succeeds on every non-empty property map.
func (p *Predicate) IsEmpty() bool {
	if p == nil {
		return true
	}
	return len(p.NegativeProps) == 0 &&
		len(p.EqualProps) == 0 &&
		len(p.NotEqualProps) == 0 &&
		len(p.LessProps) == 0 &&
		len(p.LessOrEqualProps) == 0 &&
		len(p.GreaterProps) == 0 &&
		len(p.GreaterOrEqualProps) == 0
}

// Matches tests props against the predicate. An empty property map fails
// every predicate, even a vacuous one — this is a deliberate source quirk
// (§9) preserved for behavioural compatibility, not a bug to be fixed here.
func Matches(props map[string]storage.Value, p *Predicate) bool {
	if len(props) == 0 {
		return false
	}
	if p.IsEmpty() {
		return true
	}

	for _, k := range p.NegativeProps {
		if _, present := props[k]; present {
			return false
		}
	}
	if !matchAll(props, p.EqualProps, func(got, want storage.Value) bool {
		return got.Equal(want)
	}) {
		return false
	}
	if !matchAll(props, p.NotEqualProps, func(got, want storage.Value) bool {
		return !got.Equal(want)
	}) {
		return false
	}
	if !matchAll(props, p.LessProps, func(got, want storage.Value) bool {
		cmp, ok := got.Compare(want)
		return ok && cmp < 0
	}) {
		return false
	}
	if !matchAll(props, p.LessOrEqualProps, func(got, want storage.Value) bool {
		cmp, ok := got.Compare(want)
		return ok && cmp <= 0
	}) {
		return false
	}
	if !matchAll(props, p.GreaterProps, func(got, want storage.Value) bool {
		cmp, ok := got.Compare(want)
		return ok && cmp > 0
	}) {
		return false
	}
	if !matchAll(props, p.GreaterOrEqualProps, func(got, want storage.Value) bool {
		cmp, ok := got.Compare(want)
		return ok && cmp >= 0
	}) {
		return false
	}
	return true
}

func matchAll(props, operands map[string]storage.Value, test func(got, want storage.Value) bool) bool {
	for k, want := range operands {
		got, present := props[k]
		if !present {
			return false
		}
		if !test(got, want) {
			return false
		}
	}
	return true
}
