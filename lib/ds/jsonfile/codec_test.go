package jsonfile

import (
	"bytes"
	"testing"

	"github.com/tkoehler/jKV/lib/ds"
)

func TestDecodeMapEmptyShapes(t *testing.T) {
	for name, raw := range map[string][]byte{
		"NoBytes":    {},
		"Null":       []byte("null"),
		"PaddedNull": []byte("\n null \t"),
	} {
		t.Run(name, func(t *testing.T) {
			content, err := decodeMap[ds.Bytes](raw)
			if err != nil {
				t.Fatalf("expected empty mapping, got error: %v", err)
			}
			if len(content) != 0 {
				t.Errorf("expected empty mapping, got %d entries", len(content))
			}
			if content == nil {
				t.Errorf("decode must return a usable (non-nil) mapping")
			}
		})
	}
}

func TestDecodeMapObject(t *testing.T) {
	content, err := decodeMap[ds.Bytes]([]byte(`{"foo": [1,2,3], "bar": []}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(content) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(content))
	}
	if !bytes.Equal(content["foo"], ds.Bytes{1, 2, 3}) {
		t.Errorf("expected foo=[1 2 3], got %v", content["foo"])
	}
	if len(content["bar"]) != 0 {
		t.Errorf("expected bar to be empty, got %v", content["bar"])
	}
}

func TestDecodeMapRejectsPartialLoads(t *testing.T) {
	// one bad entry must fail the whole decode, the good entry must not
	// become visible
	_, err := decodeMap[ds.Bytes]([]byte(`{"good": [1], "bad": "zzz"}`))
	if err == nil {
		t.Fatal("expected decode to fail")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := map[string]ds.Bytes{
		"empty": {},
		"one":   {255},
		"word":  ds.Bytes("hello"),
	}

	raw, err := encodeMap(original)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	decoded, err := decodeMap[ds.Bytes](raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(decoded) != len(original) {
		t.Fatalf("expected %d entries, got %d", len(original), len(decoded))
	}
	for key, value := range original {
		if !bytes.Equal(decoded[key], value) {
			t.Errorf("round trip changed %s: %v -> %v", key, value, decoded[key])
		}
	}
}
