package inventory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// itemA is the two-cell bar used throughout: {(0,0),(1,0)}, handle (0,0).
func itemA() *ItemType {
	return &ItemType{Code: "A", Capacity: 5, Shape: Shape{Cells: []Cell{{0, 0}, {1, 0}}}}
}

// itemB is a single-cell item that never stacks.
func itemB() *ItemType {
	return &ItemType{Code: "B", Capacity: 1, Shape: Shape{Width: 1, Height: 1}}
}

func cells(cs ...Cell) CellSet { return NewCellSet(cs...) }

// requireInvariants checks that live stacks are pairwise disjoint, that every
// quantity is within [1, capacity] and that the occupancy index agrees with
// the stacks.
func requireInvariants(t *testing.T, g *Grid) {
	t.Helper()
	seen := make(map[Cell]CellSetKey)
	for _, st := range g.Stacks() {
		require.GreaterOrEqual(t, st.Quantity, 1, "stack %s", st.Cells)
		require.LessOrEqual(t, st.Quantity, st.Item.MaxStack(), "stack %s", st.Cells)
		require.True(t, g.IsAreaWithinGrid(st.Cells), "stack %s off grid", st.Cells)
		st.Cells.Each(func(c Cell) {
			owner, dup := seen[c]
			require.False(t, dup, "cell %v shared by %s and %s", c, owner, st.Cells.Key())
			seen[c] = st.Cells.Key()
		})
	}
	require.Equal(t, seen, g.Occupancy())
}
