package negotiation

import (
	"fmt"

	"github.com/parley-engine/parley/pkg/actor"
)

// Validate checks a candidate NPC action against the live world state. It is
// pure local computation with no I/O: possession checks go against the
// current inventories and slot checks against the NPC's proposal slots.
// Extraction output is never trusted directly; a candidate that fails here
// is dropped from the executed set, not retried.
func Validate(action ActionIntent, npc *actor.Character, player *actor.Player) error {
	if err := action.CheckShape(); err != nil {
		return err
	}

	switch action.Type {
	case ActionDialogueOnly, ActionDialogue:
		return nil

	case ActionGiveItem:
		if _, ok := npc.Inventory.Resolve(action.Param(ParamItem)); !ok {
			return fmt.Errorf("%s does not have %q to give", npc.Name, action.Param(ParamItem))
		}
		return nil

	case ActionAcceptOffer:
		offer := npc.ActiveOffer
		if offer == nil {
			return fmt.Errorf("no active offer to accept")
		}
		holder := player.Inventory
		if offer.OfferedBy == npc.Name {
			holder = npc.Inventory
		}
		if !holder.Has(offer.Item.Name) {
			return fmt.Errorf("%s no longer has the offered %q", offer.OfferedBy, offer.Item.Name)
		}
		return nil

	case ActionDeclineOffer:
		if npc.ActiveOffer == nil {
			return fmt.Errorf("no active offer to decline")
		}
		return nil

	case ActionTradeAccept, ActionAcceptTrade:
		trade := npc.ActiveTrade
		if trade == nil {
			return fmt.Errorf("no active trade proposal to accept")
		}
		if !player.Inventory.Has(trade.PlayerItem.Name) {
			return fmt.Errorf("%s no longer has %q", player.Name, trade.PlayerItem.Name)
		}
		if !npc.Inventory.Has(trade.NPCItem.Name) {
			return fmt.Errorf("%s no longer has %q", npc.Name, trade.NPCItem.Name)
		}
		return nil

	case ActionTradeDecline, ActionDeclineTrade:
		if npc.ActiveTrade == nil {
			return fmt.Errorf("no active trade proposal to decline")
		}
		return nil

	case ActionTradeCounter:
		if _, ok := player.Inventory.Resolve(action.Param(ParamPlayerItem)); !ok {
			return fmt.Errorf("%s does not have %q", player.Name, action.Param(ParamPlayerItem))
		}
		if _, ok := npc.Inventory.Resolve(action.Param(ParamNPCItem)); !ok {
			return fmt.Errorf("%s does not have %q", npc.Name, action.Param(ParamNPCItem))
		}
		return nil

	case ActionAcceptRequest:
		req := npc.ActiveRequest
		if req == nil {
			return fmt.Errorf("no active request to accept")
		}
		if _, ok := npc.Inventory.Resolve(req.ItemName); !ok {
			return fmt.Errorf("%s no longer has the requested %q", npc.Name, req.ItemName)
		}
		return nil

	case ActionDeclineRequest:
		// Declining is always safe.
		return nil

	default:
		return fmt.Errorf("action type %q cannot be executed", action.Type)
	}
}
