package inventory

import (
	"strings"

	"go.uber.org/zap"
)

// Option configures grid construction.
type Option func(*Grid)

// WithRegistry attaches an item registry used to resolve item codes during
// restore and code-based lookups.
func WithRegistry(reg *Registry) Option {
	return func(g *Grid) {
		g.registry = reg
	}
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Grid) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// Grid is a width x height container of stacks. A Grid is not safe for
// concurrent use.
type Grid struct {
	ID     string
	width  int
	height int

	// stacks is keyed by the stack's cell-set; order keeps registration order.
	stacks map[CellSetKey]*Stack
	order  []CellSetKey

	// occupancy maps cell -> owning stack key
	occupancy map[Cell]CellSetKey

	registry *Registry
	logger   *zap.Logger
}

// NewGrid creates an empty grid. Non-positive dimensions produce a grid with
// no cells on which every placement fails.
func NewGrid(id string, width, height int, opts ...Option) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	g := &Grid{
		ID:        id,
		width:     width,
		height:    height,
		stacks:    make(map[CellSetKey]*Stack),
		order:     make([]CellSetKey, 0),
		occupancy: make(map[Cell]CellSetKey),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Registry returns the currently attached item registry.
func (g *Grid) Registry() *Registry { return g.registry }

// IsCellOnGrid is a bounds check.
func (g *Grid) IsCellOnGrid(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.width && c.Y < g.height
}

// IsAreaWithinGrid reports whether the set is non-empty and every cell is on
// the grid.
func (g *Grid) IsAreaWithinGrid(cells CellSet) bool {
	if cells.Len() == 0 {
		return false
	}
	for _, c := range cells.cells {
		if !g.IsCellOnGrid(c) {
			return false
		}
	}
	return true
}

// GetStackAt returns a copy of the stack owning c.
func (g *Grid) GetStackAt(c Cell) (Stack, bool) {
	st := g.stackAt(c)
	if st == nil {
		return Stack{}, false
	}
	return *st, true
}

func (g *Grid) stackAt(c Cell) *Stack {
	key, ok := g.occupancy[c]
	if !ok {
		return nil
	}
	return g.stacks[key]
}

// IsCellOccupied reports whether any stack owns c.
func (g *Grid) IsCellOccupied(c Cell) bool {
	_, ok := g.occupancy[c]
	return ok
}

// CountDistinctStacksInArea returns the number of unique stacks touching cells.
func (g *Grid) CountDistinctStacksInArea(cells CellSet) int {
	return len(g.stacksInArea(cells, ""))
}

// stacksInArea returns the keys of distinct stacks touching cells, in
// row-major order of first contact, skipping ignore.
func (g *Grid) stacksInArea(cells CellSet, ignore CellSetKey) []CellSetKey {
	var out []CellSetKey
	for _, c := range cells.cells {
		key, ok := g.occupancy[c]
		if !ok || key == ignore {
			continue
		}
		dup := false
		for _, k := range out {
			if k == key {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, key)
		}
	}
	return out
}

// Stacks returns copies of all live stacks in registration order.
func (g *Grid) Stacks() []Stack {
	out := make([]Stack, 0, len(g.order))
	for _, key := range g.order {
		out = append(out, *g.stacks[key])
	}
	return out
}

// StackCount returns the number of live stacks.
func (g *Grid) StackCount() int { return len(g.order) }

// CountItems sums the quantity of every stack with the given code.
func (g *Grid) CountItems(code ItemCode) int {
	total := 0
	for _, key := range g.order {
		if st := g.stacks[key]; st.Code() == code {
			total += st.Quantity
		}
	}
	return total
}

// FreeCells returns the number of unoccupied cells.
func (g *Grid) FreeCells() int {
	return g.width*g.height - len(g.occupancy)
}

// Occupancy returns a copy of the cell -> stack key index, for rendering.
func (g *Grid) Occupancy() map[Cell]CellSetKey {
	out := make(map[Cell]CellSetKey, len(g.occupancy))
	for c, k := range g.occupancy {
		out[c] = k
	}
	return out
}

// Render draws the grid as text, one row per line. Empty cells are '.' and
// occupied cells show the first byte of the owning stack's item code.
func (g *Grid) Render() string {
	var b strings.Builder
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			st := g.stackAt(Cell{X: x, Y: y})
			switch {
			case st == nil:
				b.WriteByte('.')
			case st.Code() == "":
				b.WriteByte('?')
			default:
				b.WriteByte(st.Code()[0])
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// register inserts a stack whose cells have already been validated.
func (g *Grid) register(st *Stack) {
	key := st.Cells.Key()
	g.stacks[key] = st
	g.order = append(g.order, key)
	for _, c := range st.Cells.cells {
		g.occupancy[c] = key
	}
}

// unregister removes a stack and frees its cells.
func (g *Grid) unregister(key CellSetKey) *Stack {
	st, ok := g.stacks[key]
	if !ok {
		return nil
	}
	for _, c := range st.Cells.cells {
		if owner, ok := g.occupancy[c]; ok && owner == key {
			delete(g.occupancy, c)
		}
	}
	delete(g.stacks, key)
	for i, k := range g.order {
		if k == key {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return st
}
