// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

func TestMarshalDeterministic(t *testing.T) {
	first := map[string]any{"zeta": 1, "alpha": 2, "mid": []any{"a", "b"}}
	second := map[string]any{"mid": []any{"a", "b"}, "alpha": 2, "zeta": 1}

	a, err := Marshal(first)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	b, err := Marshal(second)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("encodings differ:\n%x\n%x", a, b)
	}
}

func TestUntypedMapsDecodeWithStringKeys(t *testing.T) {
	data, err := Marshal(map[string]any{
		"id":   int64(7),
		"room": map[string]any{"number": "2B"},
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	record, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded %T, want map[string]any", decoded)
	}
	if _, ok := record["room"].(map[string]any); !ok {
		t.Fatalf("nested map decoded as %T, want map[string]any", record["room"])
	}
	if id, ok := record["id"].(uint64); !ok || id != 7 {
		t.Fatalf("id = %#v, want uint64(7)", record["id"])
	}
}

func TestJSONTagFallback(t *testing.T) {
	type status struct {
		LoadStatus string `json:"load_status"`
		LastError  string `json:"last_error,omitempty"`
	}

	data, err := Marshal(status{LoadStatus: "ready"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded map[string]any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded["load_status"] != "ready" {
		t.Fatalf("load_status = %v, want ready", decoded["load_status"])
	}
	if _, present := decoded["last_error"]; present {
		t.Fatal("omitempty field was encoded")
	}
}

func TestStreamRoundtrip(t *testing.T) {
	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for _, value := range []string{"list", "status"} {
		if err := encoder.Encode(map[string]string{"action": value}); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	decoder := NewDecoder(&buffer)
	for _, want := range []string{"list", "status"} {
		var request map[string]string
		if err := decoder.Decode(&request); err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if request["action"] != want {
			t.Fatalf("action = %q, want %q", request["action"], want)
		}
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	var value any
	if err := Unmarshal([]byte{0xff, 0xff}, &value); err == nil {
		t.Fatal("expected an error for invalid CBOR")
	}
}
