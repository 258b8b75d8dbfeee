package actor

import (
	"fmt"
	"strings"
)

// Inventory is an ordered collection of items with unique names.
type Inventory []Item

// Has reports whether an item with the exact given name is held.
func (inv Inventory) Has(name string) bool {
	_, ok := inv.Get(name)
	return ok
}

// Get returns the item with the exact given name.
func (inv Inventory) Get(name string) (Item, bool) {
	for _, item := range inv {
		if item.Name == name {
			return item, true
		}
	}
	return Item{}, false
}

// Add appends an item, rejecting duplicates by name.
func (inv *Inventory) Add(item Item) error {
	if item.Name == "" {
		return fmt.Errorf("item name cannot be empty")
	}
	if inv.Has(item.Name) {
		return fmt.Errorf("%q is already in the inventory", item.Name)
	}
	*inv = append(*inv, item)
	return nil
}

// Remove takes the named item out of the inventory and returns it.
// The inventory is unchanged when the item is not held.
func (inv *Inventory) Remove(name string) (Item, bool) {
	for i, item := range *inv {
		if item.Name == name {
			*inv = append((*inv)[:i], (*inv)[i+1:]...)
			return item, true
		}
	}
	return Item{}, false
}

// Names returns the item names in inventory order.
func (inv Inventory) Names() []string {
	names := make([]string, 0, len(inv))
	for _, item := range inv {
		names = append(names, item.Name)
	}
	return names
}

// Clone returns an independent copy of the inventory.
func (inv Inventory) Clone() Inventory {
	out := make(Inventory, len(inv))
	copy(out, inv)
	return out
}

// DisplayNames renders the inventory for prompts, "nothing" when empty.
func (inv Inventory) DisplayNames() string {
	if len(inv) == 0 {
		return "nothing"
	}
	return strings.Join(inv.Names(), ", ")
}

// NewInventory builds an inventory from items, enforcing name uniqueness.
func NewInventory(items ...Item) (Inventory, error) {
	inv := make(Inventory, 0, len(items))
	for _, item := range items {
		if err := inv.Add(item); err != nil {
			return nil, err
		}
	}
	return inv, nil
}
