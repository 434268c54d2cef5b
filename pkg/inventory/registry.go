package inventory

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Registry stores item types keyed by ItemCode and provides numeric handles
// for compact storage.
type Registry struct {
	mu     sync.RWMutex
	items  map[ItemCode]*ItemType
	byID   map[RegistryID]ItemCode
	nextID RegistryID
}

// NewRegistry constructs an empty registry and optionally seeds it with
// initial item types. Invalid seeds are skipped.
func NewRegistry(types ...ItemType) *Registry {
	r := &Registry{
		items: make(map[ItemCode]*ItemType, len(types)),
		byID:  make(map[RegistryID]ItemCode, len(types)),
	}
	for _, t := range types {
		_, _ = r.Register(t)
	}
	return r
}

// ValidateItemType checks the invariants every registered type must hold.
func ValidateItemType(t ItemType) error {
	if t.Code == "" {
		return errors.New("inventory: item type missing code")
	}
	if t.Capacity < 1 {
		return fmt.Errorf("inventory: item %s: capacity must be at least 1", t.Code)
	}
	if err := validateShape(t.Shape); err != nil {
		return fmt.Errorf("inventory: item %s: %w", t.Code, err)
	}
	return nil
}

// Register validates and inserts or replaces an item type. The returned
// pointer is the shared, registry-owned instance.
func (r *Registry) Register(t ItemType) (*ItemType, error) {
	if err := ValidateItemType(t); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.items == nil {
		r.items = make(map[ItemCode]*ItemType)
	}
	if r.byID == nil {
		r.byID = make(map[RegistryID]ItemCode)
	}

	existing, exists := r.items[t.Code]
	if exists {
		if t.NumericID == 0 {
			t.NumericID = existing.NumericID
		} else if existing.NumericID != 0 && existing.NumericID != t.NumericID {
			return nil, errors.New("inventory: numeric id mismatch for existing item")
		}
	}

	if t.NumericID == 0 {
		r.nextID++
		t.NumericID = r.nextID
	} else {
		if t.NumericID < 0 {
			return nil, errors.New("inventory: numeric id must be positive")
		}
		if owner, collision := r.byID[t.NumericID]; collision && owner != t.Code {
			return nil, errors.New("inventory: numeric id already assigned to another item")
		}
		if t.NumericID > r.nextID {
			r.nextID = t.NumericID
		}
	}

	// Footprint cells are copied so later edits to the caller's slice cannot
	// reach the shared instance.
	if len(t.Shape.Cells) > 0 {
		cells := make([]Cell, len(t.Shape.Cells))
		copy(cells, t.Shape.Cells)
		t.Shape.Cells = cells
	}
	stored := &t
	r.items[t.Code] = stored
	r.byID[t.NumericID] = t.Code
	return stored, nil
}

// Lookup returns the item type for the provided code, if present.
func (r *Registry) Lookup(code ItemCode) (*ItemType, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.items[code]
	return t, ok
}

// GetRegistryID returns the numeric registry identifier for the provided code.
func (r *Registry) GetRegistryID(code ItemCode) (RegistryID, bool) {
	t, ok := r.Lookup(code)
	if !ok || t.NumericID == 0 {
		return 0, false
	}
	return t.NumericID, true
}

// LookupByRegistryID returns an item type using the numeric registry ID.
func (r *Registry) LookupByRegistryID(id RegistryID) (*ItemType, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	code, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	t, exists := r.items[code]
	return t, exists
}

// Len returns the number of registered item types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Export copies registry contents into a slice sorted by numeric ID, suitable
// for sending to clients.
func (r *Registry) Export() []ItemType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.items) == 0 {
		return nil
	}
	out := make([]ItemType, 0, len(r.items))
	for _, t := range r.items {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NumericID != out[j].NumericID {
			return out[i].NumericID < out[j].NumericID
		}
		return out[i].Code < out[j].Code
	})
	return out
}
