package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zyedidia/generic/mapset"
)

func TestFindSpaceForStackFirstRowMajor(t *testing.T) {
	g := NewGrid("s", 4, 4)
	p, ok := g.FindSpaceForStack(itemA(), mapset.New[Cell]())
	require.True(t, ok)
	assert.Equal(t, Cell{0, 0}, p.Position)
	assert.Equal(t, Rot0, p.Rotation)
	assert.Equal(t, []Cell{{0, 0}, {1, 0}}, p.Cells.Cells())

	// repeated calls on the same state give the same answer
	again, ok := g.FindSpaceForStack(itemA(), mapset.New[Cell]())
	require.True(t, ok)
	assert.Equal(t, p, again)
}

func TestFindSpaceForStackSkipsOccupiedAndExcluded(t *testing.T) {
	g := NewGrid("s", 4, 4)
	_, err := g.CreateStack(Cell{0, 0}, itemA(), Rot0, 1)
	require.NoError(t, err)

	p, ok := g.FindSpaceForStack(itemA(), mapset.New[Cell]())
	require.True(t, ok)
	assert.Equal(t, Cell{2, 0}, p.Position)
	assert.Equal(t, []Cell{{2, 0}, {3, 0}}, p.Cells.Cells())

	p, ok = g.FindSpaceForStack(itemA(), ExcludeCells(Cell{3, 0}))
	require.True(t, ok)
	// (2,0) with 90° reaches down into row 1 before any row-1 cell is tried
	assert.Equal(t, Cell{2, 0}, p.Position)
	assert.Equal(t, Rot90, p.Rotation)
	assert.Equal(t, []Cell{{2, 0}, {2, 1}}, p.Cells.Cells())
}

func TestFindSpaceForStackUsesRotationWhenNeeded(t *testing.T) {
	g := NewGrid("tall", 1, 3)
	p, ok := g.FindSpaceForStack(itemA(), mapset.New[Cell]())
	require.True(t, ok)
	assert.Equal(t, Cell{0, 0}, p.Position)
	assert.Equal(t, Rot90, p.Rotation)
	assert.Equal(t, []Cell{{0, 0}, {0, 1}}, p.Cells.Cells())
}

func TestFindSpaceForStackExhausted(t *testing.T) {
	g := NewGrid("full", 2, 2)
	for y := 0; y < 2; y++ {
		_, err := g.CreateStack(Cell{0, y}, itemA(), Rot0, 1)
		require.NoError(t, err)
	}
	p, ok := g.FindSpaceForStack(itemB(), mapset.New[Cell]())
	assert.False(t, ok)
	assert.True(t, p.IsZero())

	_, ok = NewGrid("empty", 0, 0).FindSpaceForStack(itemB(), mapset.New[Cell]())
	assert.False(t, ok)

	_, ok = g.FindSpaceForStack(nil, mapset.New[Cell]())
	assert.False(t, ok)
}

func TestFindSpaceForStackIrregularShape(t *testing.T) {
	// L: (0,0),(0,1),(1,1), handle on the corner
	radio := &ItemType{Code: "radio", Capacity: 1, Shape: Shape{Cells: []Cell{{0, 0}, {0, 1}, {1, 1}}, Handle: Cell{0, 1}}}
	g := NewGrid("l", 3, 3)
	p, ok := g.FindSpaceForStack(radio, mapset.New[Cell]())
	require.True(t, ok)
	// at (0,0) only the 90° turn keeps all cells on the grid
	assert.Equal(t, Cell{0, 0}, p.Position)
	assert.Equal(t, Rot90, p.Rotation)
	assert.Equal(t, []Cell{{0, 0}, {1, 0}, {0, 1}}, p.Cells.Cells())
}
