package inventory

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"
	"go.uber.org/zap"
)

// PlannedPlacement is one source of capacity chosen by the planner: either a
// top-off of an existing (or previously planned) stack or a brand-new stack.
type PlannedPlacement struct {
	Placement
	Item   *ItemType `json:"-"`
	Amount int       `json:"amount"`
	// New is set when the placement creates a stack that does not exist yet.
	New bool `json:"new"`
}

// provisionalStack is a planned stack that exists only inside a
// PlanningContext.
type provisionalStack struct {
	placement Placement
	item      *ItemType
}

// PlanningContext holds the tentative state of one planning pass: the
// quantity every touched stack would have, and the stacks that were planned
// but not created. It is a value; planner calls never modify the context they
// are given and return the updated one instead.
type PlanningContext struct {
	quantities  map[CellSetKey]int
	provisional map[CellSetKey]provisionalStack
	order       []CellSetKey
}

// NewPlanningContext returns an empty context.
func NewPlanningContext() PlanningContext {
	return PlanningContext{
		quantities:  make(map[CellSetKey]int),
		provisional: make(map[CellSetKey]provisionalStack),
	}
}

func (p PlanningContext) clone() PlanningContext {
	out := PlanningContext{
		quantities:  make(map[CellSetKey]int, len(p.quantities)),
		provisional: make(map[CellSetKey]provisionalStack, len(p.provisional)),
		order:       make([]CellSetKey, len(p.order)),
	}
	for k, v := range p.quantities {
		out.quantities[k] = v
	}
	for k, v := range p.provisional {
		out.provisional[k] = v
	}
	copy(out.order, p.order)
	return out
}

// TentativeQuantity returns the planned quantity of the stack keyed by key,
// if this context touched it.
func (p PlanningContext) TentativeQuantity(key CellSetKey) (int, bool) {
	q, ok := p.quantities[key]
	return q, ok
}

// ProvisionalStacks returns the planned-but-uncreated stacks in planning
// order.
func (p PlanningContext) ProvisionalStacks() []Stack {
	out := make([]Stack, 0, len(p.order))
	for _, key := range p.order {
		ps := p.provisional[key]
		out = append(out, Stack{
			Cells:    ps.placement.Cells,
			Item:     ps.item,
			Quantity: p.quantities[key],
			Position: ps.placement.Position,
			Rotation: ps.placement.Rotation,
		})
	}
	return out
}

// IsEmpty reports whether nothing has been planned.
func (p PlanningContext) IsEmpty() bool {
	return len(p.quantities) == 0 && len(p.order) == 0
}

// PlanSpaceForItems finds capacity for amount units of item without touching
// the grid. Capacity is taken, in order, from real stacks of the same item
// that are not excluded (registration order), from stacks planned earlier in
// ctx, and finally from new space found by FindSpaceForStack. On success it
// returns the placements and the updated context; on failure it returns ctx
// unchanged.
func (g *Grid) PlanSpaceForItems(item *ItemType, amount int, excluded mapset.Set[Cell], ctx PlanningContext) ([]PlannedPlacement, PlanningContext, error) {
	if item == nil {
		return nil, ctx, g.invalidReference("plan space", Cell{})
	}
	if amount <= 0 {
		return nil, ctx, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	next := ctx.clone()
	remaining := amount
	var plans []PlannedPlacement

	// 1. top off real stacks
	for _, key := range g.order {
		if remaining == 0 {
			break
		}
		st := g.stacks[key]
		if st.Code() != item.Code || touchesExcluded(st.Cells, excluded) {
			continue
		}
		current, ok := next.quantities[key]
		if !ok {
			current = st.Quantity
		}
		take := minInt(st.Item.MaxStack()-current, remaining)
		if take <= 0 {
			continue
		}
		next.quantities[key] = current + take
		remaining -= take
		plans = append(plans, PlannedPlacement{
			Placement: Placement{Cells: st.Cells, Position: st.Position, Rotation: st.Rotation},
			Item:      st.Item,
			Amount:    take,
		})
	}

	// 2. top off stacks planned by earlier calls
	for _, key := range next.order {
		if remaining == 0 {
			break
		}
		ps := next.provisional[key]
		if ps.item.Code != item.Code || touchesExcluded(ps.placement.Cells, excluded) {
			continue
		}
		current := next.quantities[key]
		take := minInt(ps.item.MaxStack()-current, remaining)
		if take <= 0 {
			continue
		}
		next.quantities[key] = current + take
		remaining -= take
		plans = append(plans, PlannedPlacement{Placement: ps.placement, Item: ps.item, Amount: take})
	}

	// 3. new stacks in free space
	if remaining > 0 {
		blocked := mapset.New[Cell]()
		excluded.Each(func(c Cell) { blocked.Put(c) })
		for _, key := range next.order {
			next.provisional[key].placement.Cells.Each(func(c Cell) { blocked.Put(c) })
		}
		for i := 0; remaining > 0 && i < g.width*g.height; i++ {
			p, ok := g.FindSpaceForStack(item, blocked)
			if !ok {
				break
			}
			take := minInt(item.MaxStack(), remaining)
			key := p.Cells.Key()
			next.provisional[key] = provisionalStack{placement: p, item: item}
			next.order = append(next.order, key)
			next.quantities[key] = take
			p.Cells.Each(func(c Cell) { blocked.Put(c) })
			remaining -= take
			plans = append(plans, PlannedPlacement{Placement: p, Item: item, Amount: take, New: true})
		}
	}

	if remaining > 0 {
		return nil, ctx, fmt.Errorf("%w: %d of %d %s could not be placed", ErrInsufficientSpace, remaining, amount, item.Code)
	}
	return plans, next, nil
}

// DoesSpaceExist reports whether amount units of item would fit, ignoring
// excluded cells. It has no side effects.
func (g *Grid) DoesSpaceExist(item *ItemType, amount int, excluded mapset.Set[Cell]) bool {
	_, _, err := g.PlanSpaceForItems(item, amount, excluded, NewPlanningContext())
	return err == nil
}

// DoesSpaceExistAll reports whether every request fits together. Requests are
// planned in the given order against one shared context, so larger or more
// constrained items should come first. Zero amounts are skipped.
func (g *Grid) DoesSpaceExistAll(requests []ItemRequest) bool {
	_, _, err := g.planAll(requests)
	return err == nil
}

func (g *Grid) planAll(requests []ItemRequest) ([]PlannedPlacement, PlanningContext, error) {
	ctx := NewPlanningContext()
	none := mapset.New[Cell]()
	var all []PlannedPlacement
	for _, req := range requests {
		if req.Amount == 0 {
			continue
		}
		plans, next, err := g.PlanSpaceForItems(req.Item, req.Amount, none, ctx)
		if err != nil {
			return nil, ctx, err
		}
		all = append(all, plans...)
		ctx = next
	}
	return all, ctx, nil
}

// AddItems places amount units of item, topping off existing stacks before
// creating new ones. Either every unit is placed or the grid is unchanged.
func (g *Grid) AddItems(item *ItemType, amount int) ([]PlannedPlacement, error) {
	plans, _, err := g.PlanSpaceForItems(item, amount, mapset.New[Cell](), NewPlanningContext())
	if err != nil {
		return nil, err
	}
	g.apply(plans)
	return plans, nil
}

// AddItemList commits a whole shopping list, or nothing if any line does not
// fit alongside the others.
func (g *Grid) AddItemList(requests []ItemRequest) ([]PlannedPlacement, error) {
	plans, _, err := g.planAll(requests)
	if err != nil {
		return nil, err
	}
	g.apply(plans)
	return plans, nil
}

// apply commits placements produced by the planner against the current grid.
func (g *Grid) apply(plans []PlannedPlacement) {
	for _, p := range plans {
		if p.New {
			g.place(p.Placement, p.Item, p.Amount)
			continue
		}
		st, ok := g.stacks[p.Cells.Key()]
		if !ok {
			// Unreachable while plans are applied right after planning.
			g.logger.Error("planned stack vanished", zap.String("grid", g.ID), zap.String("cells", string(p.Cells.Key())))
			continue
		}
		st.Quantity = clampQuantity(st.Quantity+p.Amount, st.Item.MaxStack())
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
