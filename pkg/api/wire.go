package api

import (
	"encoding/json"
	"fmt"

	"github.com/clusograph/shard/pkg/graphengine"
	"github.com/clusograph/shard/pkg/storage"
)

// wireValue is the typed-operand wire representation used for node/edge
// property maps and predicate operands: {"type": "int", "int": 5}. Per the
// design note on predicate operand typing, operands are never a bare
// stringly-typed JSON value — the type tag is explicit on the wire too.
type wireValue struct {
	Type  string   `json:"type" validate:"required,oneof=bool int uint float text"`
	Bool  *bool    `json:"bool,omitempty"`
	Int   *int32   `json:"int,omitempty"`
	Uint  *uint32  `json:"uint,omitempty"`
	Float *float32 `json:"float,omitempty"`
	Text  *string  `json:"text,omitempty"`
}

func (w wireValue) toValue() (storage.Value, error) {
	switch w.Type {
	case "bool":
		if w.Bool == nil {
			return storage.Value{}, fmt.Errorf("wire value type %q missing bool field", w.Type)
		}
		return storage.BoolValue(*w.Bool), nil
	case "int":
		if w.Int == nil {
			return storage.Value{}, fmt.Errorf("wire value type %q missing int field", w.Type)
		}
		return storage.IntValue(*w.Int), nil
	case "uint":
		if w.Uint == nil {
			return storage.Value{}, fmt.Errorf("wire value type %q missing uint field", w.Type)
		}
		return storage.UintValue(*w.Uint), nil
	case "float":
		if w.Float == nil {
			return storage.Value{}, fmt.Errorf("wire value type %q missing float field", w.Type)
		}
		return storage.FloatValue(*w.Float), nil
	case "text":
		if w.Text == nil {
			return storage.Value{}, fmt.Errorf("wire value type %q missing text field", w.Type)
		}
		return storage.TextValue(*w.Text), nil
	default:
		return storage.Value{}, fmt.Errorf("unrecognised wire value type %q", w.Type)
	}
}

func fromValue(v storage.Value) wireValue {
	switch v.Kind {
	case storage.KindBool:
		b, _ := v.AsBool()
		return wireValue{Type: "bool", Bool: &b}
	case storage.KindInt:
		i, _ := v.AsInt()
		return wireValue{Type: "int", Int: &i}
	case storage.KindUint:
		u, _ := v.AsUint()
		return wireValue{Type: "uint", Uint: &u}
	case storage.KindFloat:
		f, _ := v.AsFloat()
		return wireValue{Type: "float", Float: &f}
	case storage.KindText:
		s, _ := v.AsString()
		return wireValue{Type: "text", Text: &s}
	default:
		return wireValue{Type: "text", Text: new(string)}
	}
}

func wirePropsToValues(wire map[string]wireValue) (map[string]storage.Value, error) {
	if wire == nil {
		return nil, nil
	}
	out := make(map[string]storage.Value, len(wire))
	for k, wv := range wire {
		v, err := wv.toValue()
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

func valuesToWireProps(values map[string]storage.Value) map[string]wireValue {
	if values == nil {
		return nil
	}
	out := make(map[string]wireValue, len(values))
	for k, v := range values {
		out[k] = fromValue(v)
	}
	return out
}

// wirePredicate is the JSON shape of a Predicate: negative_props must be a
// list of keys, every other kind must be a map of key to typed operand.
type wirePredicate struct {
	NegativeProps       []string             `json:"negative_props,omitempty"`
	EqualProps          map[string]wireValue `json:"equal_props,omitempty"`
	NotEqualProps       map[string]wireValue `json:"not_equal_props,omitempty"`
	LessProps           map[string]wireValue `json:"less_props,omitempty"`
	LessOrEqualProps    map[string]wireValue `json:"less_or_equal_props,omitempty"`
	GreaterProps        map[string]wireValue `json:"greater_props,omitempty"`
	GreaterOrEqualProps map[string]wireValue `json:"greater_or_equal_props,omitempty"`
}

func decodePredicate(raw string) (*graphengine.Predicate, error) {
	if raw == "" {
		return nil, nil
	}

	var wp wirePredicate
	if err := json.Unmarshal([]byte(raw), &wp); err != nil {
		return nil, fmt.Errorf("malformed predicate: %w", err)
	}

	pred := &graphengine.Predicate{NegativeProps: wp.NegativeProps}

	fields := []struct {
		wire map[string]wireValue
		dst  *map[string]storage.Value
	}{
		{wp.EqualProps, &pred.EqualProps},
		{wp.NotEqualProps, &pred.NotEqualProps},
		{wp.LessProps, &pred.LessProps},
		{wp.LessOrEqualProps, &pred.LessOrEqualProps},
		{wp.GreaterProps, &pred.GreaterProps},
		{wp.GreaterOrEqualProps, &pred.GreaterOrEqualProps},
	}
	for _, f := range fields {
		values, err := wirePropsToValues(f.wire)
		if err != nil {
			return nil, err
		}
		*f.dst = values
	}

	return pred, nil
}

type wireNode struct {
	NodeID uint32               `json:"node_id"`
	Props  map[string]wireValue `json:"props,omitempty"`
}

func nodeToWire(n *storage.Node) *wireNode {
	if n == nil {
		return nil
	}
	return &wireNode{NodeID: n.ID, Props: valuesToWireProps(n.Props)}
}

type wireEdge struct {
	EdgeID uint32               `json:"edge_id"`
	From   uint32               `json:"from_node"`
	To     uint32               `json:"to_node"`
	Props  map[string]wireValue `json:"props,omitempty"`
}

func edgeToWire(e *storage.Edge) *wireEdge {
	if e == nil {
		return nil
	}
	return &wireEdge{EdgeID: e.ID, From: e.From, To: e.To, Props: valuesToWireProps(e.Props)}
}
