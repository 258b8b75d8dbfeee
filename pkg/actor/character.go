package actor

import "fmt"

// Character is an NPC participating in negotiation. Besides identity and
// personality it carries the negotiation state: at most one standing offer,
// one standing trade proposal, and one standing request at a time. A new
// proposal of the same kind replaces the old one, it never stacks.
type Character struct {
	Name        string    `json:"name"`
	Personality string    `json:"personality"`
	Goal        string    `json:"goal"`
	Disposition string    `json:"disposition"`
	Inventory   Inventory `json:"inventory"`

	ActiveOffer   *Offer         `json:"active_offer,omitempty"`
	ActiveTrade   *TradeProposal `json:"active_trade,omitempty"`
	ActiveRequest *Request       `json:"active_request,omitempty"`
}

// NewCharacter creates an NPC, validating the identity fields up front.
func NewCharacter(name, personality, goal, disposition string, inventory Inventory) (*Character, error) {
	if name == "" {
		return nil, fmt.Errorf("character name cannot be empty")
	}
	if personality == "" {
		return nil, fmt.Errorf("character %q requires a personality", name)
	}
	if goal == "" {
		return nil, fmt.Errorf("character %q requires a goal", name)
	}
	if disposition == "" {
		disposition = "neutral"
	}
	return &Character{
		Name:        name,
		Personality: personality,
		Goal:        goal,
		Disposition: disposition,
		Inventory:   inventory.Clone(),
	}, nil
}

// HasActiveNegotiation reports whether any proposal slot is occupied.
func (c *Character) HasActiveNegotiation() bool {
	return c.ActiveOffer != nil || c.ActiveTrade != nil || c.ActiveRequest != nil
}

// ClearNegotiation empties all proposal slots.
func (c *Character) ClearNegotiation() {
	c.ActiveOffer = nil
	c.ActiveTrade = nil
	c.ActiveRequest = nil
}

// Validate checks a character loaded from data files.
func (c *Character) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("character name cannot be empty")
	}
	if c.Personality == "" {
		return fmt.Errorf("character %q requires a personality", c.Name)
	}
	if c.Goal == "" {
		return fmt.Errorf("character %q requires a goal", c.Name)
	}
	seen := make(map[string]bool, len(c.Inventory))
	for _, item := range c.Inventory {
		if item.Name == "" {
			return fmt.Errorf("character %q holds an item with no name", c.Name)
		}
		if seen[item.Name] {
			return fmt.Errorf("character %q holds duplicate item %q", c.Name, item.Name)
		}
		seen[item.Name] = true
	}
	return nil
}
