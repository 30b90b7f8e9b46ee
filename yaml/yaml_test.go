package yaml

import (
	"context"
	"testing"
	"time"

	"github.com/zoobzio/dumper"
)

func TestNew(t *testing.T) {
	if New() == nil {
		t.Error("New() should return non-nil codec")
	}
}

func TestContentType(t *testing.T) {
	c := New()
	if c.ContentType() != "application/yaml" {
		t.Errorf("ContentType() = %q, want %q", c.ContentType(), "application/yaml")
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	c := New()

	data := dumper.NewCloner(nil).SetSuspendGC(false).CloneVar(context.Background(), map[string]any{
		"name": "alice",
		"tags": []string{"a", "b"},
	}, 0)
	original := dumper.Envelope{
		ID:   "0b8e2f1c-7d2a-4c1e-9f57-3f0c1f3f6a10",
		Time: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Data: data,
	}

	encoded, err := c.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var restored dumper.Envelope
	if err := c.Unmarshal(encoded, &restored); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if restored.ID != original.ID {
		t.Errorf("ID = %q, want %q", restored.ID, original.ID)
	}
	if !restored.Time.Equal(original.Time) {
		t.Errorf("Time = %v, want %v", restored.Time, original.Time)
	}
	if restored.Data == nil || restored.Data.Root == nil {
		t.Fatal("Data.Root missing after round trip")
	}
	if restored.Data.Root.Kind != dumper.KindMap {
		t.Errorf("Root.Kind = %q, want %q", restored.Data.Root.Kind, dumper.KindMap)
	}
	if restored.Data.Items != data.Items {
		t.Errorf("Items = %d, want %d", restored.Data.Items, data.Items)
	}

	name := restored.Data.Root.Lookup("name")
	if name == nil {
		t.Fatal("entry name missing")
	}
	if name.Kind != dumper.KindString {
		t.Errorf("name.Kind = %q, want %q", name.Kind, dumper.KindString)
	}
	if name.Value != "alice" {
		t.Errorf("name.Value = %v, want alice", name.Value)
	}

	tags := restored.Data.Root.Lookup("tags")
	if tags == nil || len(tags.Entries) != 2 {
		t.Errorf("tags = %+v, want 2 entries", tags)
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	c := New()

	var env dumper.Envelope
	if err := c.Unmarshal([]byte("root: [unclosed"), &env); err == nil {
		t.Error("Unmarshal(invalid) should return error")
	}
}
