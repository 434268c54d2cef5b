package inventory

import (
	"encoding/json"
	"fmt"
)

// Rotation is a clockwise quarter-turn count applied to a footprint.
type Rotation int

const (
	Rot0 Rotation = iota
	Rot90
	Rot180
	Rot270
)

// Rotations lists every rotation in search order.
var Rotations = [4]Rotation{Rot0, Rot90, Rot180, Rot270}

// Normalize folds any integer turn count into [Rot0, Rot270].
func (r Rotation) Normalize() Rotation {
	return Rotation(((int(r) % 4) + 4) % 4)
}

// Next returns the rotation a quarter turn clockwise from r.
func (r Rotation) Next() Rotation { return (r + 1).Normalize() }

// Degrees returns the rotation in degrees.
func (r Rotation) Degrees() int { return int(r.Normalize()) * 90 }

func (r Rotation) String() string { return fmt.Sprintf("%d°", r.Degrees()) }

// ParseRotation accepts either a quarter-turn index (0-3) or degrees
// (0, 90, 180, 270).
func ParseRotation(v int) (Rotation, error) {
	switch v {
	case 0, 1, 2, 3:
		return Rotation(v), nil
	case 90, 180, 270:
		return Rotation(v / 90), nil
	}
	return Rot0, fmt.Errorf("invalid rotation %d", v)
}

// UnmarshalJSON accepts the same forms as ParseRotation.
func (r *Rotation) UnmarshalJSON(b []byte) error {
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	parsed, err := ParseRotation(v)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ResolveFootprint returns the relative cells and handle of an item type at
// the given rotation. The result is derived from the unrotated shape every
// time and is normalized so that the smallest X and Y offsets are zero.
func ResolveFootprint(item *ItemType, rot Rotation) ([]Cell, Cell) {
	if item == nil {
		return nil, Cell{}
	}
	cells := shapeCells(item.Shape)
	handle := item.Shape.Handle
	turns := int(rot.Normalize())
	out := make([]Cell, len(cells))
	for i, c := range cells {
		out[i] = rotateCell(c, turns)
	}
	h := rotateCell(handle, turns)
	return normalizeFootprint(out, h)
}

// QuarterTurn rotates an already resolved footprint a single step clockwise
// and normalizes it. Four successive quarter turns of a normalized footprint
// return it unchanged.
func QuarterTurn(cells []Cell, handle Cell) ([]Cell, Cell) {
	out := make([]Cell, len(cells))
	for i, c := range cells {
		out[i] = rotateCell(c, 1)
	}
	return normalizeFootprint(out, rotateCell(handle, 1))
}

// ConvertFootprintToGridCells anchors a relative footprint so that handle
// lands on target. No bounds checking is performed.
func ConvertFootprintToGridCells(target Cell, cells []Cell, handle Cell) CellSet {
	abs := make([]Cell, len(cells))
	for i, c := range cells {
		abs[i] = target.Add(c.Sub(handle))
	}
	return NewCellSet(abs...)
}

// FootprintAt resolves the absolute cells an item would occupy with its
// handle on target at the given rotation.
func FootprintAt(item *ItemType, target Cell, rot Rotation) CellSet {
	cells, handle := ResolveFootprint(item, rot)
	return ConvertFootprintToGridCells(target, cells, handle)
}

// rotateCell turns (x, y) clockwise in screen coordinates (y grows down).
func rotateCell(c Cell, turns int) Cell {
	for i := 0; i < turns; i++ {
		c = Cell{X: -c.Y, Y: c.X}
	}
	return c
}

func normalizeFootprint(cells []Cell, handle Cell) ([]Cell, Cell) {
	if len(cells) == 0 {
		return cells, handle
	}
	minX, minY := cells[0].X, cells[0].Y
	for _, c := range cells[1:] {
		if c.X < minX {
			minX = c.X
		}
		if c.Y < minY {
			minY = c.Y
		}
	}
	shift := Cell{X: minX, Y: minY}
	for i := range cells {
		cells[i] = cells[i].Sub(shift)
	}
	return cells, handle.Sub(shift)
}

// shapeCells returns the set of relative cells for a shape.
func shapeCells(s Shape) []Cell {
	if len(s.Cells) > 0 {
		return s.Cells
	}
	w := s.Width
	h := s.Height
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	out := make([]Cell, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out = append(out, Cell{X: x, Y: y})
		}
	}
	return out
}

// validateShape checks that a shape is non-empty, has no duplicate offsets
// and that its handle is one of its cells.
func validateShape(s Shape) error {
	cells := shapeCells(s)
	seen := make(map[Cell]struct{}, len(cells))
	handleFound := false
	for _, c := range cells {
		if _, dup := seen[c]; dup {
			return fmt.Errorf("duplicate footprint cell (%d,%d)", c.X, c.Y)
		}
		seen[c] = struct{}{}
		if c == s.Handle {
			handleFound = true
		}
	}
	if !handleFound {
		return fmt.Errorf("handle (%d,%d) is not part of the footprint", s.Handle.X, s.Handle.Y)
	}
	return nil
}
