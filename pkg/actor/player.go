package actor

import "fmt"

// Player is the human participant. Unlike characters, players carry no
// personality or standing proposals of their own; proposals are tracked on
// the NPC they negotiate with.
type Player struct {
	Name      string    `json:"name"`
	Inventory Inventory `json:"inventory"`
}

// NewPlayer creates a player with an independent copy of the inventory.
func NewPlayer(name string, inventory Inventory) (*Player, error) {
	if name == "" {
		return nil, fmt.Errorf("player name cannot be empty")
	}
	return &Player{Name: name, Inventory: inventory.Clone()}, nil
}
