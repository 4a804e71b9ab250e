package engine

// Inventory is the ordered bag of pickups held by a player. Items age once
// per turn and are dropped the turn their lifetime reaches zero.
type Inventory struct {
	items []*Entity
}

// NewInventory creates an empty inventory
func NewInventory() *Inventory {
	return &Inventory{}
}

// Step ages every held item and removes the depleted ones
func (inv *Inventory) Step() {
	kept := inv.items[:0]
	for _, item := range inv.items {
		item.Hold()
		if item.Lifetime() > 0 {
			kept = append(kept, item)
		}
	}
	// clear the tail so dropped items are not retained by the backing array
	for i := len(kept); i < len(inv.items); i++ {
		inv.items[i] = nil
	}
	inv.items = kept
}

// AddItem appends a pickup. Non-pickup entities are ignored.
func (inv *Inventory) AddItem(item *Entity) {
	if item == nil || !item.IsPickup() {
		return
	}
	inv.items = append(inv.items, item)
}

// RemoveItem drops the given item instance if held
func (inv *Inventory) RemoveItem(item *Entity) {
	for i, held := range inv.items {
		if held == item {
			inv.items = append(inv.items[:i], inv.items[i+1:]...)
			return
		}
	}
}

// Items returns the held items in acquisition order
func (inv *Inventory) Items() []*Entity {
	items := make([]*Entity, len(inv.items))
	copy(items, inv.items)
	return items
}

// Contains reports whether an item with the given token is held
func (inv *Inventory) Contains(token string) bool {
	for _, item := range inv.items {
		if item.Display() == token {
			return true
		}
	}
	return false
}

// Len returns the number of held items
func (inv *Inventory) Len() int {
	return len(inv.items)
}
