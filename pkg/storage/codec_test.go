package storage

import "testing"

func TestPackUnpackValueRoundTrip(t *testing.T) {
	cases := []Value{
		BoolValue(true),
		BoolValue(false),
		IntValue(-42),
		UintValue(42),
		FloatValue(1.25),
		TextValue("hello"),
		TextValue("салəм"),
		TextValue(""),
	}

	for _, want := range cases {
		packed := packValue(nil, want)
		got, n, err := unpackValue(packed)
		if err != nil {
			t.Fatalf("unpackValue(%v): %v", want, err)
		}
		if n != len(packed) {
			t.Fatalf("unpackValue(%v): consumed %d, want %d", want, n, len(packed))
		}
		if !got.Equal(want) {
			t.Fatalf("round-trip mismatch: got %v, want %v", got, want)
		}
	}
}

func TestPackUnpackRecordRoundTrip(t *testing.T) {
	props := map[string]Value{
		"an_int":     IntValue(2),
		"unicode":    TextValue("салəм"),
		"float":      FloatValue(1.25),
		"bool_true":  BoolValue(true),
		"char_z":     TextValue("z"),
		"text_hello": TextValue("hello"),
	}

	packed := packRecord(props)
	got, err := unpackRecord(packed)
	if err != nil {
		t.Fatalf("unpackRecord: %v", err)
	}
	if len(got) != len(props) {
		t.Fatalf("got %d properties, want %d", len(got), len(props))
	}
	for k, want := range props {
		gv, ok := got[k]
		if !ok {
			t.Fatalf("missing key %q after round-trip", k)
		}
		if !gv.Equal(want) {
			t.Fatalf("key %q: got %v, want %v", k, gv, want)
		}
	}
}

func TestUnpackRecordTruncated(t *testing.T) {
	if _, err := unpackRecord([]byte{0, 0}); err == nil {
		t.Fatal("expected error for truncated record header")
	}
}

func TestUnpackValueCorruptTag(t *testing.T) {
	buf := []byte{0xFF, 0xFF, 0xFF, 0xF0} // tag -16, not a recognised negative tag
	if _, _, err := unpackValue(buf); err == nil {
		t.Fatal("expected error for unrecognised negative tag")
	}
}
