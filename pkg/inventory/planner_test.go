package inventory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zyedidia/generic/mapset"
)

func TestAddItemsTopsOffThenAllocates(t *testing.T) {
	g := NewGrid("add", 4, 4)
	a := itemA()

	plans, err := g.AddItems(a, 3)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.True(t, plans[0].New)
	stacks := g.Stacks()
	require.Len(t, stacks, 1)
	assert.Equal(t, []Cell{{0, 0}, {1, 0}}, stacks[0].Cells.Cells())
	assert.Equal(t, 3, stacks[0].Quantity)

	plans, err = g.AddItems(a, 4)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.False(t, plans[0].New)
	assert.Equal(t, 2, plans[0].Amount)
	assert.True(t, plans[1].New)
	assert.Equal(t, 2, plans[1].Amount)

	stacks = g.Stacks()
	require.Len(t, stacks, 2)
	assert.Equal(t, 5, stacks[0].Quantity)
	assert.Equal(t, []Cell{{2, 0}, {3, 0}}, stacks[1].Cells.Cells())
	assert.Equal(t, 2, stacks[1].Quantity)
	requireInvariants(t, g)

	// the first row is spoken for; rows 1-3 are still empty
	row0 := ExcludeCells(Cell{0, 0}, Cell{1, 0}, Cell{2, 0}, Cell{3, 0})
	assert.True(t, g.DoesSpaceExist(a, 2, row0))

	plans, _, err = g.PlanSpaceForItems(a, 2, row0, NewPlanningContext())
	require.NoError(t, err)
	require.Len(t, plans, 1, "excluded stacks are not topped off")
	assert.True(t, plans[0].New)
	assert.Equal(t, Cell{0, 1}, plans[0].Position)
}

func TestAddItemsIsAtomic(t *testing.T) {
	g := NewGrid("atomic", 4, 4)
	a := itemA()
	_, err := g.AddItems(a, 3)
	require.NoError(t, err)
	_, err = g.CreateStack(Cell{0, 3}, itemB(), Rot0, 1)
	require.NoError(t, err)
	before := g.Snapshot()

	// 8 two-cell slots minus the B cell leave room for 7 stacks of 5
	_, err = g.AddItems(a, 33)
	require.True(t, errors.Is(err, ErrInsufficientSpace))
	assert.Equal(t, before, g.Snapshot())

	_, err = g.AddItems(a, 32)
	require.NoError(t, err)
	assert.Equal(t, 35, g.CountItems("A"))
	requireInvariants(t, g)
}

func TestDoesSpaceExistCapacityBoundary(t *testing.T) {
	g := NewGrid("cap", 4, 4)
	assert.True(t, g.DoesSpaceExist(itemA(), 40, mapset.New[Cell]()))
	assert.False(t, g.DoesSpaceExist(itemA(), 41, mapset.New[Cell]()))
	assert.False(t, g.DoesSpaceExist(nil, 1, mapset.New[Cell]()))
	assert.False(t, g.DoesSpaceExist(itemA(), 0, mapset.New[Cell]()))
	assert.Equal(t, 0, g.StackCount(), "checks never place anything")
}

func TestDoesSpaceExistAllSharesOneContext(t *testing.T) {
	g := NewGrid("list", 4, 4)
	a, b := itemA(), itemB()

	assert.False(t, g.DoesSpaceExistAll([]ItemRequest{{a, 10}, {b, 99999}}))
	assert.True(t, g.DoesSpaceExistAll([]ItemRequest{{a, 10}}), "no state leaks between calls")

	// 30 A need six two-cell stacks (12 cells); 4 B fit in the rest, 5 do not
	assert.True(t, g.DoesSpaceExistAll([]ItemRequest{{a, 30}, {b, 4}}))
	assert.False(t, g.DoesSpaceExistAll([]ItemRequest{{a, 30}, {b, 5}}))
	assert.True(t, g.DoesSpaceExistAll([]ItemRequest{{a, 30}, {b, 0}}))
}

func TestPlanningContextIsNotMutated(t *testing.T) {
	g := NewGrid("ctx", 4, 4)
	a := itemA()
	none := mapset.New[Cell]()

	ctx0 := NewPlanningContext()
	plans, ctx1, err := g.PlanSpaceForItems(a, 3, none, ctx0)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.True(t, ctx0.IsEmpty())
	require.Len(t, ctx1.ProvisionalStacks(), 1)
	assert.Equal(t, 3, ctx1.ProvisionalStacks()[0].Quantity)

	plans, ctx2, err := g.PlanSpaceForItems(a, 4, none, ctx1)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.False(t, plans[0].New, "provisional stack is topped off first")
	assert.Equal(t, []Cell{{0, 0}, {1, 0}}, plans[0].Cells.Cells())
	assert.Equal(t, 2, plans[0].Amount)
	assert.True(t, plans[1].New)
	assert.Equal(t, Cell{2, 0}, plans[1].Position, "provisional cells are not reused")

	assert.Equal(t, 3, ctx1.ProvisionalStacks()[0].Quantity)
	require.Len(t, ctx2.ProvisionalStacks(), 2)
	assert.Equal(t, 5, ctx2.ProvisionalStacks()[0].Quantity)
	assert.Equal(t, 0, g.StackCount(), "planning never touches the grid")

	_, ctx3, err := g.PlanSpaceForItems(a, 1000, none, ctx2)
	require.True(t, errors.Is(err, ErrInsufficientSpace))
	assert.Equal(t, ctx2, ctx3, "a failed attempt returns the context unchanged")
}

func TestPlanPrefersRealStacks(t *testing.T) {
	g := NewGrid("real", 4, 4)
	a := itemA()
	st, err := g.CreateStack(Cell{0, 2}, a, Rot0, 3)
	require.NoError(t, err)

	plans, ctx, err := g.PlanSpaceForItems(a, 4, mapset.New[Cell](), NewPlanningContext())
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.False(t, plans[0].New)
	assert.True(t, plans[0].Cells.Equal(st.Cells))
	q, ok := ctx.TentativeQuantity(st.Cells.Key())
	require.True(t, ok)
	assert.Equal(t, 5, q)
	assert.Equal(t, Cell{0, 0}, plans[1].Position)

	got, _ := g.GetStackAt(Cell{0, 2})
	assert.Equal(t, 3, got.Quantity)

	// a second pass over the same context sees the real stack as full
	plans, _, err = g.PlanSpaceForItems(a, 1, mapset.New[Cell](), ctx)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.False(t, plans[0].New)
	assert.Equal(t, Cell{0, 0}, plans[0].Position, "tops off the provisional stack")
}

func TestAddItemList(t *testing.T) {
	g := NewGrid("batch", 4, 4)
	a, b := itemA(), itemB()

	_, err := g.AddItemList([]ItemRequest{{a, 10}, {b, 99}})
	require.True(t, errors.Is(err, ErrInsufficientSpace))
	assert.Equal(t, 0, g.StackCount())

	plans, err := g.AddItemList([]ItemRequest{{a, 7}, {a, 3}, {b, 8}})
	require.NoError(t, err)
	assert.NotEmpty(t, plans)
	assert.Equal(t, 10, g.CountItems("A"))
	assert.Equal(t, 8, g.CountItems("B"))
	assert.Equal(t, 10, g.StackCount())
	assert.Equal(t, 4, g.FreeCells())
	requireInvariants(t, g)
}
