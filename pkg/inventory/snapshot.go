package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
)

// StackSnapshot is the persisted form of a stack. Cells are redundant with
// Position and Rotation and are checked on restore.
type StackSnapshot struct {
	Item     ItemCode `json:"item"`
	Qty      int      `json:"qty"`
	Position Cell     `json:"position"`
	Rotation Rotation `json:"rotation"`
	Cells    CellSet  `json:"cells"`
}

// Snapshot fully describes a grid: its dimensions and live stacks in
// registration order.
type Snapshot struct {
	ID     string          `json:"id"`
	Width  int             `json:"width"`
	Height int             `json:"height"`
	Stacks []StackSnapshot `json:"stacks"`
}

// StorageStackSnapshot represents a stack in storage-optimized format using
// numeric RegistryID instead of string ItemCode.
type StorageStackSnapshot struct {
	Item     RegistryID `json:"item"`
	Qty      int        `json:"qty"`
	Position Cell       `json:"position"`
	Rotation Rotation   `json:"rotation"`
}

// StorageSnapshot represents a grid in storage-optimized format.
type StorageSnapshot struct {
	ID     string                 `json:"id"`
	Width  int                    `json:"width"`
	Height int                    `json:"height"`
	Stacks []StorageStackSnapshot `json:"stacks"`
}

// Snapshot captures the current grid state.
func (g *Grid) Snapshot() Snapshot {
	ss := Snapshot{
		ID:     g.ID,
		Width:  g.width,
		Height: g.height,
		Stacks: make([]StackSnapshot, 0, len(g.order)),
	}
	for _, key := range g.order {
		st := g.stacks[key]
		ss.Stacks = append(ss.Stacks, StackSnapshot{
			Item:     st.Code(),
			Qty:      st.Quantity,
			Position: st.Position,
			Rotation: st.Rotation,
			Cells:    st.Cells,
		})
	}
	return ss
}

// Serialize encodes the grid to JSON.
func (g *Grid) Serialize() ([]byte, error) {
	return json.Marshal(g.Snapshot())
}

// Restore rebuilds a grid from a snapshot. Every stack goes through
// CreateStack again, so a snapshot that violates bounds, overlap or capacity
// rules is rejected.
func Restore(ss Snapshot, reg *Registry, opts ...Option) (*Grid, error) {
	if reg == nil {
		return nil, errors.New("registry required for restore")
	}
	opts = append([]Option{WithRegistry(reg)}, opts...)
	g := NewGrid(ss.ID, ss.Width, ss.Height, opts...)
	for i, st := range ss.Stacks {
		item, ok := reg.Lookup(st.Item)
		if !ok {
			return nil, fmt.Errorf("stack %d: %w: unknown item %s", i, ErrInvalidReference, st.Item)
		}
		if st.Qty < 1 || st.Qty > item.MaxStack() {
			return nil, fmt.Errorf("stack %d: %w: qty %d outside [1,%d]", i, ErrInvalidAmount, st.Qty, item.MaxStack())
		}
		created, err := g.CreateStack(st.Position, item, st.Rotation, st.Qty)
		if err != nil {
			return nil, fmt.Errorf("stack %d: %w", i, err)
		}
		if st.Cells.Len() > 0 && !st.Cells.Equal(created.Cells) {
			return nil, fmt.Errorf("stack %d: footprint mismatch: stored %s, resolved %s", i, st.Cells, created.Cells)
		}
	}
	return g, nil
}

// Deserialize decodes JSON produced by Serialize.
func Deserialize(b []byte, reg *Registry, opts ...Option) (*Grid, error) {
	var ss Snapshot
	if err := json.Unmarshal(b, &ss); err != nil {
		return nil, err
	}
	return Restore(ss, reg, opts...)
}

// SerializeForStorage encodes the grid using compact numeric RegistryIDs
// instead of item codes. Requires a registry to resolve ItemCode -> RegistryID.
func (g *Grid) SerializeForStorage() ([]byte, error) {
	if g.registry == nil {
		return nil, errors.New("registry required for storage serialization")
	}
	ss := StorageSnapshot{
		ID:     g.ID,
		Width:  g.width,
		Height: g.height,
		Stacks: make([]StorageStackSnapshot, 0, len(g.order)),
	}
	for _, key := range g.order {
		st := g.stacks[key]
		regID, ok := g.registry.GetRegistryID(st.Code())
		if !ok {
			return nil, fmt.Errorf("item not found in registry: %s", st.Code())
		}
		ss.Stacks = append(ss.Stacks, StorageStackSnapshot{
			Item:     regID,
			Qty:      st.Quantity,
			Position: st.Position,
			Rotation: st.Rotation,
		})
	}
	return json.Marshal(ss)
}

// DeserializeFromStorage rebuilds a grid from storage-optimized JSON.
func DeserializeFromStorage(b []byte, reg *Registry, opts ...Option) (*Grid, error) {
	if reg == nil {
		return nil, errors.New("registry required for storage deserialization")
	}
	var ss StorageSnapshot
	if err := json.Unmarshal(b, &ss); err != nil {
		return nil, err
	}
	full := Snapshot{ID: ss.ID, Width: ss.Width, Height: ss.Height, Stacks: make([]StackSnapshot, 0, len(ss.Stacks))}
	for _, st := range ss.Stacks {
		item, ok := reg.LookupByRegistryID(st.Item)
		if !ok {
			return nil, fmt.Errorf("registry id not found: %d", st.Item)
		}
		full.Stacks = append(full.Stacks, StackSnapshot{
			Item:     item.Code,
			Qty:      st.Qty,
			Position: st.Position,
			Rotation: st.Rotation,
		})
	}
	return Restore(full, reg, opts...)
}
