package inventory

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// CreateStack places a new stack with the item's handle on target. The
// quantity is clamped to [1, capacity].
func (g *Grid) CreateStack(target Cell, item *ItemType, rot Rotation, qty int) (Stack, error) {
	if item == nil {
		return Stack{}, g.invalidReference("create stack", target)
	}
	cells := FootprintAt(item, target, rot)
	if err := g.checkPlacement(cells, ""); err != nil {
		return Stack{}, err
	}
	st := g.place(Placement{Cells: cells, Position: target, Rotation: rot.Normalize()}, item, qty)
	return *st, nil
}

// checkPlacement validates that cells are on the grid and touch no stack
// other than ignore.
func (g *Grid) checkPlacement(cells CellSet, ignore CellSetKey) error {
	if !g.IsAreaWithinGrid(cells) {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, cells)
	}
	if n := len(g.stacksInArea(cells, ignore)); n > 0 {
		return fmt.Errorf("%w: %s touches %d stack(s)", ErrOccupied, cells, n)
	}
	return nil
}

// place registers a stack at an already validated placement.
func (g *Grid) place(p Placement, item *ItemType, qty int) *Stack {
	st := &Stack{
		Cells:    p.Cells,
		Item:     item,
		Quantity: clampQuantity(qty, item.MaxStack()),
		Position: p.Position,
		Rotation: p.Rotation,
	}
	g.register(st)
	g.logger.Debug("stack created",
		zap.String("grid", g.ID),
		zap.String("item", string(item.Code)),
		zap.String("cells", string(p.Cells.Key())),
		zap.Int("qty", st.Quantity))
	return st
}

func clampQuantity(qty, max int) int {
	if qty < 1 {
		return 1
	}
	if qty > max {
		return max
	}
	return qty
}

// IncreaseStack adds amount to the stack at c. The result is clamped to the
// item's capacity and any excess is discarded.
func (g *Grid) IncreaseStack(c Cell, amount int) (Stack, error) {
	if amount < 0 {
		return Stack{}, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	st := g.stackAt(c)
	if st == nil {
		return Stack{}, fmt.Errorf("%w: (%d,%d)", ErrNoStack, c.X, c.Y)
	}
	st.Quantity += amount
	if max := st.Item.MaxStack(); st.Quantity > max {
		st.Quantity = max
	}
	return *st, nil
}

// DecreaseStack subtracts amount from the stack at c and deletes the stack
// once its quantity reaches zero or below. It returns the remaining quantity.
func (g *Grid) DecreaseStack(c Cell, amount int) (int, error) {
	if amount < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	st := g.stackAt(c)
	if st == nil {
		return 0, fmt.Errorf("%w: (%d,%d)", ErrNoStack, c.X, c.Y)
	}
	st.Quantity -= amount
	if st.Quantity <= 0 {
		g.deleteStack(st.Cells.Key())
		return 0, nil
	}
	return st.Quantity, nil
}

// DeleteStack removes the stack touching c regardless of its quantity.
func (g *Grid) DeleteStack(c Cell) (Stack, error) {
	key, ok := g.occupancy[c]
	if !ok {
		return Stack{}, fmt.Errorf("%w: (%d,%d)", ErrNoStack, c.X, c.Y)
	}
	return *g.deleteStack(key), nil
}

func (g *Grid) deleteStack(key CellSetKey) *Stack {
	st := g.unregister(key)
	if st != nil {
		g.logger.Debug("stack removed",
			zap.String("grid", g.ID),
			zap.String("item", string(st.Code())),
			zap.String("cells", string(key)))
	}
	return st
}

// RemoveItemsAt removes amount units from the stack at c. Unlike
// DecreaseStack it refuses to remove more than the stack holds.
func (g *Grid) RemoveItemsAt(c Cell, amount int) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	st := g.stackAt(c)
	if st == nil {
		return 0, fmt.Errorf("%w: (%d,%d)", ErrNoStack, c.X, c.Y)
	}
	if st.Quantity < amount {
		return 0, fmt.Errorf("%w: have %d, need %d", ErrInsufficientQuantity, st.Quantity, amount)
	}
	return g.DecreaseStack(c, amount)
}

// RemoveItemsByCode removes amount units of code across all matching stacks.
// Smaller stacks are drained first; equal stacks go in registration order.
// If the total is insufficient nothing is removed.
func (g *Grid) RemoveItemsByCode(code ItemCode, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	var matches []*Stack
	available := 0
	for _, key := range g.order {
		st := g.stacks[key]
		if st.Code() == code {
			matches = append(matches, st)
			available += st.Quantity
		}
	}
	if available < amount {
		return fmt.Errorf("%w: %s have %d, need %d", ErrInsufficientQuantity, code, available, amount)
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Quantity < matches[j].Quantity })

	remaining := amount
	for _, st := range matches {
		if remaining == 0 {
			break
		}
		take := st.Quantity
		if take > remaining {
			take = remaining
		}
		anchor, _ := st.Cells.Anchor()
		if _, err := g.DecreaseStack(anchor, take); err != nil {
			// Unreachable: the stack was looked up from the live index.
			return err
		}
		remaining -= take
	}
	return nil
}

// PlaceStack drops qty units of item with its handle on target, the way a
// cursor-held stack is released. An empty area receives a new stack; a single
// occupant of the same item absorbs as much as it can hold. It returns the
// quantity that could not be placed.
func (g *Grid) PlaceStack(target Cell, item *ItemType, rot Rotation, qty int) (int, error) {
	if item == nil {
		return qty, g.invalidReference("place stack", target)
	}
	if qty <= 0 {
		return qty, fmt.Errorf("%w: %d", ErrInvalidAmount, qty)
	}
	cells := FootprintAt(item, target, rot)
	if !g.IsAreaWithinGrid(cells) {
		return qty, fmt.Errorf("%w: %s", ErrOutOfBounds, cells)
	}
	occupants := g.stacksInArea(cells, "")
	switch len(occupants) {
	case 0:
		placed := clampQuantity(qty, item.MaxStack())
		g.place(Placement{Cells: cells, Position: target, Rotation: rot.Normalize()}, item, placed)
		return qty - placed, nil
	case 1:
		st := g.stacks[occupants[0]]
		if st.Code() != item.Code {
			return qty, fmt.Errorf("%w: occupied by %s", ErrOccupied, st.Code())
		}
		spare := st.Spare()
		if spare <= 0 {
			return qty, fmt.Errorf("%w: stack of %s is full", ErrOccupied, st.Code())
		}
		take := qty
		if take > spare {
			take = spare
		}
		st.Quantity += take
		return qty - take, nil
	default:
		return qty, fmt.Errorf("%w: area touches %d stacks", ErrOccupied, len(occupants))
	}
}

// MoveStack relocates the stack at from so that its handle lands on to with
// the given rotation. The stack's own cells do not block the move.
func (g *Grid) MoveStack(from, to Cell, rot Rotation) (Stack, error) {
	st := g.stackAt(from)
	if st == nil {
		return Stack{}, fmt.Errorf("%w: (%d,%d)", ErrNoStack, from.X, from.Y)
	}
	cells := FootprintAt(st.Item, to, rot)
	key := st.Cells.Key()
	if err := g.checkPlacement(cells, key); err != nil {
		return Stack{}, err
	}
	g.unregister(key)
	moved := g.place(Placement{Cells: cells, Position: to, Rotation: rot.Normalize()}, st.Item, st.Quantity)
	return *moved, nil
}

// RotateStack turns the stack at c in place around its handle.
func (g *Grid) RotateStack(c Cell, rot Rotation) (Stack, error) {
	st := g.stackAt(c)
	if st == nil {
		return Stack{}, fmt.Errorf("%w: (%d,%d)", ErrNoStack, c.X, c.Y)
	}
	return g.MoveStack(c, st.Position, rot)
}

// SplitStack moves amount units from the stack at from into a new stack
// anchored at to. The source keeps at least one unit.
func (g *Grid) SplitStack(from Cell, amount int, to Cell, rot Rotation) (Stack, error) {
	st := g.stackAt(from)
	if st == nil {
		return Stack{}, fmt.Errorf("%w: (%d,%d)", ErrNoStack, from.X, from.Y)
	}
	if amount < 1 || amount >= st.Quantity {
		return Stack{}, fmt.Errorf("%w: cannot split %d from a stack of %d", ErrInvalidAmount, amount, st.Quantity)
	}
	cells := FootprintAt(st.Item, to, rot)
	if err := g.checkPlacement(cells, ""); err != nil {
		return Stack{}, err
	}
	st.Quantity -= amount
	created := g.place(Placement{Cells: cells, Position: to, Rotation: rot.Normalize()}, st.Item, amount)
	return *created, nil
}

func (g *Grid) invalidReference(op string, c Cell) error {
	g.logger.Warn("missing item type",
		zap.String("grid", g.ID),
		zap.String("op", op),
		zap.Int("x", c.X),
		zap.Int("y", c.Y))
	return fmt.Errorf("%w: nil item type", ErrInvalidReference)
}
