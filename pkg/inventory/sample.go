package inventory

// SampleRegistry returns a small catalog of tactical gear with a mix of
// rectangular and irregular footprints.
func SampleRegistry() *Registry {
	return NewRegistry(
		ItemType{Code: "ammo-556", NumericID: 1, Name: "5.56mm Rounds", Category: "ammo", Capacity: 60,
			Shape: Shape{Width: 1, Height: 1}},
		ItemType{Code: "medkit", NumericID: 2, Name: "Field Medkit", Category: "medical", Capacity: 3,
			Shape: Shape{Width: 2, Height: 1}},
		ItemType{Code: "rifle", NumericID: 3, Name: "Carbine", Category: "weapon", Capacity: 1,
			Shape: Shape{Width: 4, Height: 1, Handle: Cell{X: 1, Y: 0}}},
		ItemType{Code: "grenade", NumericID: 4, Name: "Frag Grenade", Category: "explosive", Capacity: 4,
			Shape: Shape{Width: 1, Height: 1}},
		ItemType{Code: "radio", NumericID: 5, Name: "Field Radio", Category: "gear", Capacity: 1,
			Shape: Shape{Cells: []Cell{{0, 0}, {0, 1}, {1, 1}}, Handle: Cell{X: 0, Y: 1}}},
		ItemType{Code: "plate", NumericID: 6, Name: "Armor Plate", Category: "armor", Capacity: 2,
			Shape: Shape{Width: 2, Height: 2}},
	)
}

// SampleGrid returns a 6x4 grid with a few items placed, using the codes of
// SampleRegistry.
func SampleGrid() (*Grid, *Registry) {
	reg := SampleRegistry()
	grid := NewGrid("sample", 6, 4, WithRegistry(reg))

	rifle, _ := reg.Lookup("rifle")
	plate, _ := reg.Lookup("plate")
	radio, _ := reg.Lookup("radio")
	ammo, _ := reg.Lookup("ammo-556")

	// Carbine along the top row, handle on its second cell
	_, _ = grid.CreateStack(Cell{X: 1, Y: 0}, rifle, Rot0, 1)
	// Armor plates in the bottom-left corner
	_, _ = grid.CreateStack(Cell{X: 0, Y: 2}, plate, Rot0, 2)
	// Radio: L shape, auto-placed
	_, _ = grid.AddItems(radio, 1)
	// 90 rounds fill one stack and start another
	_, _ = grid.AddItems(ammo, 90)

	return grid, reg
}
