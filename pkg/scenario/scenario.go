package scenario

import (
	"fmt"

	"github.com/parley-engine/parley/pkg/actor"
)

// Victory condition types.
const (
	VictoryPlayerObtainsItem = "PLAYER_OBTAINS_ITEM"
)

// ItemRecord is a static item definition keyed by name in the scenario file.
type ItemRecord struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CharacterRecord is the static definition of the scenario's NPC.
type CharacterRecord struct {
	Name        string   `json:"name"`
	Personality string   `json:"personality"`
	Goal        string   `json:"goal"`
	Disposition string   `json:"disposition,omitempty"`
	Items       []string `json:"items,omitempty"`
}

// LocationRecord describes where the negotiation takes place. The
// description is folded into the NPC system prompt.
type LocationRecord struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// PlayerRecord is the player's starting setup.
type PlayerRecord struct {
	Name  string   `json:"name"`
	Items []string `json:"items,omitempty"`
}

// VictoryCondition is the end-of-scenario check. PLAYER_OBTAINS_ITEM is
// satisfied when the named item is in the player's inventory.
type VictoryCondition struct {
	Type        string `json:"type"`
	ItemName    string `json:"item_name,omitempty"`
	Description string `json:"description,omitempty"`
}

// Scenario is the template for one negotiation session.
type Scenario struct {
	Name         string                `json:"name"`
	FileName     string                `json:"file_name,omitempty"`
	Description  string                `json:"description,omitempty"`
	Introduction string                `json:"introduction,omitempty"` // narrated before the first turn
	Epilogue     string                `json:"epilogue,omitempty"`     // narrated on victory
	Items        map[string]ItemRecord `json:"items"`
	Location     LocationRecord        `json:"location"`
	NPC          CharacterRecord       `json:"npc"`
	Player       PlayerRecord          `json:"player"`
	Victory      *VictoryCondition     `json:"victory,omitempty"`
}

// Validate checks internal consistency: non-empty names, every referenced
// item defined exactly once, and no item starting in both inventories.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name cannot be empty")
	}
	if s.Player.Name == "" {
		return fmt.Errorf("scenario %q has no player name", s.Name)
	}
	for key, item := range s.Items {
		if item.Name == "" {
			return fmt.Errorf("scenario %q: item %q has no name", s.Name, key)
		}
		if item.Name != key {
			return fmt.Errorf("scenario %q: item key %q does not match name %q", s.Name, key, item.Name)
		}
	}

	npc := actor.Character{
		Name:        s.NPC.Name,
		Personality: s.NPC.Personality,
		Goal:        s.NPC.Goal,
	}
	if err := npc.Validate(); err != nil {
		return fmt.Errorf("scenario %q: %w", s.Name, err)
	}

	holders := make(map[string]string)
	for _, name := range s.Player.Items {
		if _, ok := s.Items[name]; !ok {
			return fmt.Errorf("scenario %q: player item %q is not defined", s.Name, name)
		}
		if prev, dup := holders[name]; dup {
			return fmt.Errorf("scenario %q: item %q already held by %s", s.Name, name, prev)
		}
		holders[name] = s.Player.Name
	}
	for _, name := range s.NPC.Items {
		if _, ok := s.Items[name]; !ok {
			return fmt.Errorf("scenario %q: npc item %q is not defined", s.Name, name)
		}
		if prev, dup := holders[name]; dup {
			return fmt.Errorf("scenario %q: item %q already held by %s", s.Name, name, prev)
		}
		holders[name] = s.NPC.Name
	}

	if s.Victory != nil {
		switch s.Victory.Type {
		case VictoryPlayerObtainsItem:
			if s.Victory.ItemName == "" {
				return fmt.Errorf("scenario %q: victory condition has no item name", s.Name)
			}
			if _, ok := s.Items[s.Victory.ItemName]; !ok {
				return fmt.Errorf("scenario %q: victory item %q is not defined", s.Name, s.Victory.ItemName)
			}
		default:
			return fmt.Errorf("scenario %q: unknown victory condition type %q", s.Name, s.Victory.Type)
		}
	}
	return nil
}

// buildInventory materializes item records for a list of item names.
func (s *Scenario) buildInventory(names []string) (actor.Inventory, error) {
	items := make([]actor.Item, 0, len(names))
	for _, name := range names {
		rec, ok := s.Items[name]
		if !ok {
			return nil, fmt.Errorf("item %q is not defined in scenario %q", name, s.Name)
		}
		items = append(items, actor.Item{Name: rec.Name, Description: rec.Description})
	}
	return actor.NewInventory(items...)
}

// NewPlayer constructs the player with the scenario's starting inventory.
func (s *Scenario) NewPlayer() (*actor.Player, error) {
	inv, err := s.buildInventory(s.Player.Items)
	if err != nil {
		return nil, err
	}
	return actor.NewPlayer(s.Player.Name, inv)
}

// NewNPC constructs the NPC with the scenario's starting inventory.
func (s *Scenario) NewNPC() (*actor.Character, error) {
	inv, err := s.buildInventory(s.NPC.Items)
	if err != nil {
		return nil, err
	}
	return actor.NewCharacter(s.NPC.Name, s.NPC.Personality, s.NPC.Goal, s.NPC.Disposition, inv)
}

// VictoryMet reports whether the scenario's victory condition holds for the
// given player inventory. A scenario without a condition never ends early.
func (s *Scenario) VictoryMet(playerInventory actor.Inventory) bool {
	if s.Victory == nil {
		return false
	}
	switch s.Victory.Type {
	case VictoryPlayerObtainsItem:
		return playerInventory.Has(s.Victory.ItemName)
	default:
		return false
	}
}
