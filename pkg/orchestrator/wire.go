package orchestrator

import (
	"encoding/json"
	"fmt"

	"github.com/clusograph/shard/pkg/graphengine"
	"github.com/clusograph/shard/pkg/storage"
)

// clientWireValue mirrors pkg/api's typed-operand wire format so the HTTP
// client can encode/decode without importing an internal, unexported type
// from that package.
type clientWireValue struct {
	Type  string   `json:"type"`
	Bool  *bool    `json:"bool,omitempty"`
	Int   *int32   `json:"int,omitempty"`
	Uint  *uint32  `json:"uint,omitempty"`
	Float *float32 `json:"float,omitempty"`
	Text  *string  `json:"text,omitempty"`
}

func (w clientWireValue) toValue() (storage.Value, error) {
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

func clientWireValueFrom(v storage.Value) clientWireValue {
	switch v.Kind {
	case storage.KindBool:
		b, _ := v.AsBool()
		return clientWireValue{Type: "bool", Bool: &b}
	case storage.KindInt:
		i, _ := v.AsInt()
		return clientWireValue{Type: "int", Int: &i}
	case storage.KindUint:
		u, _ := v.AsUint()
		return clientWireValue{Type: "uint", Uint: &u}
	case storage.KindFloat:
		f, _ := v.AsFloat()
		return clientWireValue{Type: "float", Float: &f}
	case storage.KindText:
		s, _ := v.AsString()
		return clientWireValue{Type: "text", Text: &s}
	default:
		return clientWireValue{Type: "text", Text: new(string)}
	}
}

// decodeWireProps turns a raw JSON props map (as found in a findNeighbours
// response body) into storage.Value form.
func decodeWireProps(raw map[string]json.RawMessage) (map[string]storage.Value, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]storage.Value, len(raw))
	for k, rm := range raw {
		var wv clientWireValue
		if err := json.Unmarshal(rm, &wv); err != nil {
			return nil, fmt.Errorf("property %q: %w", k, err)
		}
		v, err := wv.toValue()
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

// clientWirePredicate mirrors pkg/api's wirePredicate JSON shape.
type clientWirePredicate struct {
	NegativeProps       []string                   `json:"negative_props,omitempty"`
	EqualProps          map[string]clientWireValue `json:"equal_props,omitempty"`
	NotEqualProps       map[string]clientWireValue `json:"not_equal_props,omitempty"`
	LessProps           map[string]clientWireValue `json:"less_props,omitempty"`
	LessOrEqualProps    map[string]clientWireValue `json:"less_or_equal_props,omitempty"`
	GreaterProps        map[string]clientWireValue `json:"greater_props,omitempty"`
	GreaterOrEqualProps map[string]clientWireValue `json:"greater_or_equal_props,omitempty"`
}

func valuesToClientWire(values map[string]storage.Value) map[string]clientWireValue {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]clientWireValue, len(values))
	for k, v := range values {
		out[k] = clientWireValueFrom(v)
	}
	return out
}

// encodePredicate serializes a predicate into the JSON string pkg/api
// expects as a query parameter value. Returns "" for a nil/empty predicate.
func encodePredicate(pred *graphengine.Predicate) (string, error) {
	if pred.IsEmpty() {
		return "", nil
	}

	wp := clientWirePredicate{
		NegativeProps:       pred.NegativeProps,
		EqualProps:          valuesToClientWire(pred.EqualProps),
		NotEqualProps:       valuesToClientWire(pred.NotEqualProps),
		LessProps:           valuesToClientWire(pred.LessProps),
		LessOrEqualProps:    valuesToClientWire(pred.LessOrEqualProps),
		GreaterProps:        valuesToClientWire(pred.GreaterProps),
		GreaterOrEqualProps: valuesToClientWire(pred.GreaterOrEqualProps),
	}

	raw, err := json.Marshal(wp)
	if err != nil {
		return "", fmt.Errorf("encode predicate: %w", err)
	}
	return string(raw), nil
}
