package inventory

import "github.com/zyedidia/generic/mapset"

// FindSpaceForStack scans the grid row-major from (0,0), trying every
// rotation in Rotations order at each cell, and returns the first placement
// that lies on the grid, touches no stack and touches no excluded cell.
// The scan order decides between equally valid placements and must not change.
func (g *Grid) FindSpaceForStack(item *ItemType, excluded mapset.Set[Cell]) (Placement, bool) {
	if item == nil {
		g.invalidReference("find space", Cell{})
		return Placement{}, false
	}
	footprints := make([][]Cell, len(Rotations))
	handles := make([]Cell, len(Rotations))
	for i, rot := range Rotations {
		footprints[i], handles[i] = ResolveFootprint(item, rot)
	}
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			target := Cell{X: x, Y: y}
			for i, rot := range Rotations {
				cells := ConvertFootprintToGridCells(target, footprints[i], handles[i])
				if g.fitsExcluding(cells, excluded) {
					return Placement{Cells: cells, Position: target, Rotation: rot}, true
				}
			}
		}
	}
	return Placement{}, false
}

// fitsExcluding reports whether cells are on the grid, free of stacks and
// disjoint from excluded.
func (g *Grid) fitsExcluding(cells CellSet, excluded mapset.Set[Cell]) bool {
	if !g.IsAreaWithinGrid(cells) {
		return false
	}
	for _, c := range cells.cells {
		if g.IsCellOccupied(c) || excluded.Has(c) {
			return false
		}
	}
	return true
}

// touchesExcluded reports whether any of cells is in excluded.
func touchesExcluded(cells CellSet, excluded mapset.Set[Cell]) bool {
	for _, c := range cells.cells {
		if excluded.Has(c) {
			return true
		}
	}
	return false
}

// ExcludeCells builds an exclusion set from the given cells.
func ExcludeCells(cells ...Cell) mapset.Set[Cell] {
	set := mapset.New[Cell]()
	for _, c := range cells {
		set.Put(c)
	}
	return set
}
