package actor

import "fmt"

// Item is a tradeable game object. Identity is the case-sensitive name;
// items are immutable once created.
type Item struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// NewItem creates an item, enforcing a non-empty name at construction time.
func NewItem(name, description string) (Item, error) {
	if name == "" {
		return Item{}, fmt.Errorf("item name cannot be empty")
	}
	return Item{Name: name, Description: description}, nil
}

func (i Item) String() string {
	return i.Name
}
