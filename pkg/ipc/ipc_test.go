package ipc

import "testing"

func TestIntField(t *testing.T) {
	raw := map[string]interface{}{
		"a": 3,
		"b": int64(4),
		"c": float64(5),
		"d": "not a number",
	}
	if intField(raw, "a") != 3 {
		t.Fatalf("expected int passthrough")
	}
	if intField(raw, "b") != 4 {
		t.Fatalf("expected int64 conversion")
	}
	if intField(raw, "c") != 5 {
		t.Fatalf("expected float64 conversion")
	}
	if intField(raw, "d") != 0 {
		t.Fatalf("expected non-numeric field to default to 0")
	}
	if intField(raw, "missing") != 0 {
		t.Fatalf("expected missing field to default to 0")
	}
}
