package inventory

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// CellSetKey is the canonical string form of a CellSet, usable as a map key.
type CellSetKey string

// CellSet is an immutable, canonically ordered set of cells. Two sets with the
// same members always have the same Key, regardless of construction order.
type CellSet struct {
	cells []Cell
	key   CellSetKey
}

// NewCellSet builds a CellSet from the given cells, dropping duplicates.
func NewCellSet(cells ...Cell) CellSet {
	if len(cells) == 0 {
		return CellSet{}
	}
	sorted := make([]Cell, len(cells))
	copy(sorted, cells)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
	out := sorted[:1]
	for _, c := range sorted[1:] {
		if c != out[len(out)-1] {
			out = append(out, c)
		}
	}
	return CellSet{cells: out, key: buildKey(out)}
}

func buildKey(cells []Cell) CellSetKey {
	var b strings.Builder
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(strconv.Itoa(c.X))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(c.Y))
	}
	return CellSetKey(b.String())
}

// Key returns the canonical lookup key.
func (s CellSet) Key() CellSetKey { return s.key }

// Len returns the number of cells.
func (s CellSet) Len() int { return len(s.cells) }

// Cells returns a copy of the members in row-major order.
func (s CellSet) Cells() []Cell {
	out := make([]Cell, len(s.cells))
	copy(out, s.cells)
	return out
}

// Contains reports whether c is a member.
func (s CellSet) Contains(c Cell) bool {
	i := sort.Search(len(s.cells), func(i int) bool { return !s.cells[i].Less(c) })
	return i < len(s.cells) && s.cells[i] == c
}

// Equal reports whether both sets have the same members.
func (s CellSet) Equal(o CellSet) bool { return s.key == o.key }

// Each calls fn for every member in row-major order.
func (s CellSet) Each(fn func(Cell)) {
	for _, c := range s.cells {
		fn(c)
	}
}

// Anchor returns the first cell in row-major order. It is a stable way to
// address the stack occupying this set.
func (s CellSet) Anchor() (Cell, bool) {
	if len(s.cells) == 0 {
		return Cell{}, false
	}
	return s.cells[0], true
}

func (s CellSet) String() string { return string(s.key) }

// MarshalJSON encodes the set as an ordered array of cells.
func (s CellSet) MarshalJSON() ([]byte, error) {
	if s.cells == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.cells)
}

// UnmarshalJSON decodes an array of cells into a canonical set.
func (s *CellSet) UnmarshalJSON(b []byte) error {
	var cells []Cell
	if err := json.Unmarshal(b, &cells); err != nil {
		return err
	}
	*s = NewCellSet(cells...)
	return nil
}
