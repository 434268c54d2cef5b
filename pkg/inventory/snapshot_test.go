package inventory

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestSampleGrid(t *testing.T) {
	grid, _ := SampleGrid()
	if grid.StackCount() != 5 {
		t.Fatalf("expected 5 stacks, got %d\n%s", grid.StackCount(), grid.Render())
	}
	if got := grid.CountItems("ammo-556"); got != 90 {
		t.Fatalf("expected 90 rounds, got %d", got)
	}
	requireInvariants(t, grid)
}

func TestSerializationRoundTrip(t *testing.T) {
	grid, reg := SampleGrid()
	data, err := grid.Serialize()
	if err != nil {
		t.Fatalf("serialize error: %v", err)
	}
	out, err := Deserialize(data, reg)
	if err != nil {
		t.Fatalf("deserialize error: %v", err)
	}
	if out.ID != grid.ID || out.Width() != grid.Width() || out.Height() != grid.Height() {
		t.Fatalf("mismatch after roundtrip")
	}
	before, _ := json.Marshal(grid.Snapshot())
	after, _ := json.Marshal(out.Snapshot())
	if string(before) != string(after) {
		t.Fatalf("snapshot mismatch:\n%s\n%s", before, after)
	}
	if out.Render() != grid.Render() {
		t.Fatalf("render mismatch:\n%s\n%s", grid.Render(), out.Render())
	}
}

func TestStorageSerializationRoundTrip(t *testing.T) {
	grid, reg := SampleGrid()
	data, err := grid.SerializeForStorage()
	if err != nil {
		t.Fatalf("storage serialize error: %v", err)
	}
	out, err := DeserializeFromStorage(data, reg)
	if err != nil {
		t.Fatalf("storage deserialize error: %v", err)
	}
	for i, original := range grid.Stacks() {
		restored := out.Stacks()[i]
		if restored.Code() != original.Code() || restored.Quantity != original.Quantity || !restored.Cells.Equal(original.Cells) {
			t.Fatalf("stack %d mismatch: original=%+v, restored=%+v", i, original, restored)
		}
	}
}

func TestStorageSerializationRequiresRegistry(t *testing.T) {
	grid := NewGrid("test", 2, 2)
	if _, err := grid.SerializeForStorage(); err == nil {
		t.Fatalf("expected registry required error for storage serialization")
	}
	if _, err := DeserializeFromStorage([]byte(`{"id":"test","stacks":[]}`), nil); err == nil {
		t.Fatalf("expected registry required error for storage deserialization")
	}
}

func TestRestoreRejectsInvalidSnapshots(t *testing.T) {
	reg := SampleRegistry()
	overlap := Snapshot{ID: "bad", Width: 4, Height: 4, Stacks: []StackSnapshot{
		{Item: "medkit", Qty: 1, Position: Cell{0, 0}},
		{Item: "medkit", Qty: 1, Position: Cell{1, 0}},
	}}
	if _, err := Restore(overlap, reg); !errors.Is(err, ErrOccupied) {
		t.Fatalf("expected overlap error, got %v", err)
	}

	unknown := Snapshot{ID: "bad", Width: 4, Height: 4, Stacks: []StackSnapshot{{Item: "nope", Qty: 1}}}
	if _, err := Restore(unknown, reg); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("expected invalid reference, got %v", err)
	}

	over := Snapshot{ID: "bad", Width: 4, Height: 4, Stacks: []StackSnapshot{{Item: "medkit", Qty: 4}}}
	if _, err := Restore(over, reg); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected capacity error, got %v", err)
	}

	mismatch := Snapshot{ID: "bad", Width: 4, Height: 4, Stacks: []StackSnapshot{
		{Item: "medkit", Qty: 1, Position: Cell{0, 0}, Cells: NewCellSet(Cell{0, 0}, Cell{0, 1})},
	}}
	if _, err := Restore(mismatch, reg); err == nil {
		t.Fatalf("expected footprint mismatch error")
	}
}

func TestRegistryValidation(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Register(ItemType{Code: "", Capacity: 1}); err == nil {
		t.Fatalf("expected missing code error")
	}
	if _, err := reg.Register(ItemType{Code: "x", Capacity: 0}); err == nil {
		t.Fatalf("expected capacity error")
	}
	if _, err := reg.Register(ItemType{Code: "x", Capacity: 1, Shape: Shape{Width: 1, Height: 1, Handle: Cell{1, 1}}}); err == nil {
		t.Fatalf("expected handle error")
	}

	first, err := reg.Register(ItemType{Code: "a", Capacity: 2})
	if err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}
	second, err := reg.Register(ItemType{Code: "b", Capacity: 2})
	if err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}
	if first.NumericID != 1 || second.NumericID != 2 {
		t.Fatalf("expected sequential ids, got %d and %d", first.NumericID, second.NumericID)
	}
	if _, err := reg.Register(ItemType{Code: "c", NumericID: 1, Capacity: 1}); err == nil {
		t.Fatalf("expected numeric id collision")
	}
	if got, ok := reg.LookupByRegistryID(2); !ok || got.Code != "b" {
		t.Fatalf("lookup by registry id failed: %+v", got)
	}
	exported := reg.Export()
	if len(exported) != 2 || exported[0].Code != "a" || exported[1].Code != "b" {
		t.Fatalf("unexpected export order: %+v", exported)
	}
}
