package docstore

import (
	"testing"
	"time"
)

func TestFieldsResolve(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f := Fields{"name": "Inbox", "createdAt": ServerTimestamp}

	got := f.Resolve(at)

	if got["createdAt"] != at {
		t.Errorf("expected createdAt %v, got %v", at, got["createdAt"])
	}
	if got["name"] != "Inbox" {
		t.Errorf("expected name to be kept, got %v", got["name"])
	}
	if !IsServerTimestamp(f["createdAt"]) {
		t.Error("Resolve must not modify the receiver")
	}
}

func TestDocAccessors(t *testing.T) {
	at := time.Now().UTC()
	d := Doc{ID: "x", Fields: Fields{
		"text":     "buy milk",
		"done":     true,
		"order":    int64(4),
		"ratio":    float64(2),
		"at":       at,
		"nothing":  nil,
		"wrongway": 12,
	}}

	if d.String("text") != "buy milk" {
		t.Errorf("String: got %q", d.String("text"))
	}
	if !d.Bool("done") {
		t.Error("Bool: expected true")
	}
	if d.Int("order") != 4 || d.Int("ratio") != 2 || d.Int("wrongway") != 12 {
		t.Errorf("Int: got %d %d %d", d.Int("order"), d.Int("ratio"), d.Int("wrongway"))
	}
	if !d.Time("at").Equal(at) {
		t.Errorf("Time: got %v", d.Time("at"))
	}
	if d.String("nothing") != "" || d.Bool("missing") || d.Int("text") != 0 {
		t.Error("accessors should return zero values for absent or mistyped fields")
	}
}

func TestWriteConstructors(t *testing.T) {
	if w := Delete("tasks", "a"); w.Op != OpDelete || w.Fields != nil {
		t.Errorf("unexpected delete write: %+v", w)
	}
	if w := Update("tasks", "a", Fields{"x": 1}); w.Op != OpUpdate || w.Op.String() != "update" {
		t.Errorf("unexpected update write: %+v", w)
	}
	if w := Set("tasks", "a", nil); w.Op.String() != "set" {
		t.Errorf("unexpected set write: %+v", w)
	}
}
