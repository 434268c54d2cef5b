package inventory

// Package inventory provides a grid-constrained, shape-aware inventory engine.
// Items occupy multi-cell footprints that can be rotated in quarter turns,
// stack up to a per-type capacity, and are placed by a deterministic
// row-major space search. The engine is single-threaded: hosts that share a
// Grid between goroutines must guard it with one lock per grid.

// ItemCode represents an application-defined identifier for an item type.
type ItemCode string

// RegistryID is a numeric handle suitable for compact storage (e.g. databases).
// IDs start at 1 and increment as new item types are registered unless
// explicitly provided via ItemType.NumericID.
type RegistryID int64

// Cell represents a grid coordinate (x, y) with origin at top-left.
type Cell struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Add returns the component-wise sum of two cells.
func (c Cell) Add(o Cell) Cell { return Cell{X: c.X + o.X, Y: c.Y + o.Y} }

// Sub returns the component-wise difference of two cells.
func (c Cell) Sub(o Cell) Cell { return Cell{X: c.X - o.X, Y: c.Y - o.Y} }

// Less orders cells row-major: by Y first, then by X.
func (c Cell) Less(o Cell) bool {
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.X < o.X
}

// Shape describes a grid footprint as a set of cell offsets relative to an origin.
// For simple rectangular items, Width x Height may be provided and Cells can be nil.
// If Cells is non-empty, it takes precedence and allows Tetris-like shapes.
// Handle is the offset that lines up with the cell a user targets.
type Shape struct {
	Width  int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height int    `json:"height,omitempty" yaml:"height,omitempty"`
	Cells  []Cell `json:"cells,omitempty" yaml:"cells,omitempty"`
	Handle Cell   `json:"handle" yaml:"handle"`
}

// ItemType is immutable reference data shared by every stack of that item.
type ItemType struct {
	Code        ItemCode   `json:"code"`
	NumericID   RegistryID `json:"numericId,omitempty"`
	Name        string     `json:"name,omitempty"`
	Category    string     `json:"category,omitempty"`
	Description string     `json:"description,omitempty"`
	Icon        string     `json:"icon,omitempty"`
	// Capacity is the maximum quantity of a single stack. Values below 1 are
	// treated as 1.
	Capacity int   `json:"capacity"`
	Shape    Shape `json:"shape"`
}

// MaxStack returns the effective per-stack capacity.
func (t *ItemType) MaxStack() int {
	if t == nil || t.Capacity < 1 {
		return 1
	}
	return t.Capacity
}

// Stack is a placed quantity of one item type occupying a fixed set of cells.
// Values returned by Grid queries are copies; mutating them has no effect on
// the grid.
type Stack struct {
	Cells    CellSet   `json:"cells"`
	Item     *ItemType `json:"-"`
	Quantity int       `json:"qty"`
	// Position is the grid cell the item's handle was anchored to.
	Position Cell     `json:"position"`
	Rotation Rotation `json:"rotation"`
}

// Code returns the item code of the stack.
func (s Stack) Code() ItemCode {
	if s.Item == nil {
		return ""
	}
	return s.Item.Code
}

// Spare returns how many more units the stack can take.
func (s Stack) Spare() int {
	return s.Item.MaxStack() - s.Quantity
}

// Placement is a resolved, validated location for a new stack.
type Placement struct {
	Cells    CellSet  `json:"cells"`
	Position Cell     `json:"position"`
	Rotation Rotation `json:"rotation"`
}

// IsZero reports whether the placement is the empty result.
func (p Placement) IsZero() bool { return p.Cells.Len() == 0 }

// ItemRequest is one line of a shopping list.
type ItemRequest struct {
	Item   *ItemType
	Amount int
}
