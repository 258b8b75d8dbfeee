package negotiation

import (
	"fmt"
	"log/slog"

	"github.com/parley-engine/parley/pkg/actor"
)

// ExecutionResult describes exactly what one executor call changed, so the
// caller can narrate it without re-deriving state. Success means no
// candidate failed; individual failures land in Errors and never abort the
// rest of the turn.
type ExecutionResult struct {
	Success      bool              `json:"success"`
	Executed     []ActionIntent    `json:"executed,omitempty"`
	StateChanges map[string]string `json:"state_changes,omitempty"`
	Errors       []string          `json:"errors,omitempty"`
}

func newResult() *ExecutionResult {
	return &ExecutionResult{Success: true, StateChanges: make(map[string]string)}
}

func failResult(format string, args ...any) *ExecutionResult {
	return &ExecutionResult{
		Success:      false,
		StateChanges: make(map[string]string),
		Errors:       []string{fmt.Sprintf(format, args...)},
	}
}

// merge folds another result into r.
func (r *ExecutionResult) merge(other *ExecutionResult) {
	if !other.Success {
		r.Success = false
	}
	r.Executed = append(r.Executed, other.Executed...)
	r.Errors = append(r.Errors, other.Errors...)
	for k, v := range other.StateChanges {
		r.StateChanges[k] = v
	}
}

// Executor performs inventory and proposal-slot mutations. All entry points
// either complete fully or leave the inventories as they found them; items
// are moved, never duplicated or destroyed.
type Executor struct {
	log *slog.Logger
}

// NewExecutor creates an executor. A nil logger falls back to slog.Default.
func NewExecutor(log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}
	return &Executor{log: log}
}

// GiveItem moves one item between inventories. The item is removed from the
// source only when present, and added to the destination only when removal
// succeeded; a failed add restores the source.
func (e *Executor) GiveItem(from, to *actor.Inventory, fromName, toName, itemName string) *ExecutionResult {
	item, ok := from.Resolve(itemName)
	if !ok {
		return failResult("%s does not have %q", fromName, itemName)
	}
	if _, ok := from.Remove(item.Name); !ok {
		return failResult("%s does not have %q", fromName, item.Name)
	}
	if err := to.Add(item); err != nil {
		from.Add(item)
		return failResult("%s cannot take %q: %v", toName, item.Name, err)
	}

	e.log.Debug("item transferred", "item", item.Name, "from", fromName, "to", toName)
	res := newResult()
	res.StateChanges["item_transferred"] = fmt.Sprintf("%s: %s -> %s", item.Name, fromName, toName)
	return res
}

// CreateOffer records a standing one-sided offer on the NPC. A prior offer
// is superseded, never stacked.
func (e *Executor) CreateOffer(npc *actor.Character, item actor.Item, offeredBy string) *ExecutionResult {
	res := newResult()
	if npc.ActiveOffer != nil {
		res.StateChanges["offer_superseded"] = npc.ActiveOffer.Item.Name
	}
	npc.ActiveOffer = &actor.Offer{Item: item, OfferedBy: offeredBy}
	res.StateChanges["offer_created"] = fmt.Sprintf("%s offers %s", offeredBy, item.Name)
	return res
}

// ProposeTrade records a standing two-sided trade proposal on the NPC.
func (e *Executor) ProposeTrade(npc *actor.Character, playerItem, npcItem actor.Item, proposedBy string) *ExecutionResult {
	res := newResult()
	if npc.ActiveTrade != nil {
		res.StateChanges["trade_superseded"] = fmt.Sprintf("%s for %s",
			npc.ActiveTrade.PlayerItem.Name, npc.ActiveTrade.NPCItem.Name)
	}
	npc.ActiveTrade = &actor.TradeProposal{
		PlayerItem: playerItem,
		NPCItem:    npcItem,
		ProposedBy: proposedBy,
	}
	res.StateChanges["trade_proposed"] = fmt.Sprintf("%s proposes %s for %s",
		proposedBy, playerItem.Name, npcItem.Name)
	return res
}

// CreateRequest records a standing ask for one of the NPC's items.
func (e *Executor) CreateRequest(npc *actor.Character, itemName, requestedBy string) *ExecutionResult {
	res := newResult()
	if npc.ActiveRequest != nil {
		res.StateChanges["request_superseded"] = npc.ActiveRequest.ItemName
	}
	npc.ActiveRequest = &actor.Request{ItemName: itemName, RequestedBy: requestedBy}
	res.StateChanges["request_created"] = fmt.Sprintf("%s asks for %s", requestedBy, itemName)
	return res
}

// AcceptOffer moves the offered item from the offering party to the other
// party and clears the offer slot.
func (e *Executor) AcceptOffer(npc *actor.Character, player *actor.Player) *ExecutionResult {
	offer := npc.ActiveOffer
	if offer == nil {
		return failResult("no active offer to accept")
	}

	var res *ExecutionResult
	if offer.OfferedBy == npc.Name {
		res = e.GiveItem(&npc.Inventory, &player.Inventory, npc.Name, player.Name, offer.Item.Name)
	} else {
		res = e.GiveItem(&player.Inventory, &npc.Inventory, player.Name, npc.Name, offer.Item.Name)
	}
	if !res.Success {
		return res
	}

	npc.ActiveOffer = nil
	res.StateChanges["offer_accepted"] = offer.Item.Name
	return res
}

// DeclineOffer clears the offer slot without moving anything.
func (e *Executor) DeclineOffer(npc *actor.Character) *ExecutionResult {
	offer := npc.ActiveOffer
	if offer == nil {
		return failResult("no active offer to decline")
	}
	npc.ActiveOffer = nil

	res := newResult()
	res.StateChanges["offer_declined"] = offer.Item.Name
	return res
}

// AcceptTrade swaps the two named items and clears the trade slot. The swap
// is all or nothing: any failure past the first removal restores every item
// already moved before reporting the error.
func (e *Executor) AcceptTrade(npc *actor.Character, player *actor.Player) *ExecutionResult {
	trade := npc.ActiveTrade
	if trade == nil {
		return failResult("no active trade proposal to accept")
	}

	playerItem, ok := player.Inventory.Remove(trade.PlayerItem.Name)
	if !ok {
		return failResult("%s no longer has %q", player.Name, trade.PlayerItem.Name)
	}
	npcItem, ok := npc.Inventory.Remove(trade.NPCItem.Name)
	if !ok {
		player.Inventory.Add(playerItem)
		return failResult("%s no longer has %q", npc.Name, trade.NPCItem.Name)
	}
	if err := player.Inventory.Add(npcItem); err != nil {
		npc.Inventory.Add(npcItem)
		player.Inventory.Add(playerItem)
		return failResult("%s cannot take %q: %v", player.Name, npcItem.Name, err)
	}
	if err := npc.Inventory.Add(playerItem); err != nil {
		player.Inventory.Remove(npcItem.Name)
		npc.Inventory.Add(npcItem)
		player.Inventory.Add(playerItem)
		return failResult("%s cannot take %q: %v", npc.Name, playerItem.Name, err)
	}

	npc.ActiveTrade = nil
	e.log.Debug("trade completed",
		"player_item", playerItem.Name, "npc_item", npcItem.Name)

	res := newResult()
	res.StateChanges["trade_completed"] = fmt.Sprintf("%s <-> %s", playerItem.Name, npcItem.Name)
	res.StateChanges["player_gained"] = npcItem.Name
	res.StateChanges["npc_gained"] = playerItem.Name
	return res
}

// DeclineTrade clears the trade slot without moving anything.
func (e *Executor) DeclineTrade(npc *actor.Character) *ExecutionResult {
	trade := npc.ActiveTrade
	if trade == nil {
		return failResult("no active trade proposal to decline")
	}
	npc.ActiveTrade = nil

	res := newResult()
	res.StateChanges["trade_declined"] = fmt.Sprintf("%s for %s",
		trade.PlayerItem.Name, trade.NPCItem.Name)
	return res
}

// CounterTrade replaces any standing trade proposal with one initiated by
// the NPC. Slots are overwritten, never stacked.
func (e *Executor) CounterTrade(npc *actor.Character, player *actor.Player, playerItemName, npcItemName string) *ExecutionResult {
	playerItem, ok := player.Inventory.Resolve(playerItemName)
	if !ok {
		return failResult("%s does not have %q", player.Name, playerItemName)
	}
	npcItem, ok := npc.Inventory.Resolve(npcItemName)
	if !ok {
		return failResult("%s does not have %q", npc.Name, npcItemName)
	}
	return e.ProposeTrade(npc, playerItem, npcItem, npc.Name)
}

// AcceptRequest hands the requested item from the NPC to the requester and
// clears the request slot.
func (e *Executor) AcceptRequest(npc *actor.Character, player *actor.Player) *ExecutionResult {
	req := npc.ActiveRequest
	if req == nil {
		return failResult("no active request to accept")
	}

	res := e.GiveItem(&npc.Inventory, &player.Inventory, npc.Name, player.Name, req.ItemName)
	if !res.Success {
		return res
	}

	npc.ActiveRequest = nil
	res.StateChanges["request_accepted"] = req.ItemName
	return res
}

// DeclineRequest clears the request slot. Declining with no standing
// request is a no-op rather than an error.
func (e *Executor) DeclineRequest(npc *actor.Character) *ExecutionResult {
	res := newResult()
	if npc.ActiveRequest == nil {
		return res
	}
	res.StateChanges["request_declined"] = npc.ActiveRequest.ItemName
	npc.ActiveRequest = nil
	return res
}

// ExecuteAll validates then executes each candidate NPC action in order.
// Invalid candidates are dropped and reported; the remainder still run.
func (e *Executor) ExecuteAll(actions []ActionIntent, npc *actor.Character, player *actor.Player) *ExecutionResult {
	res := newResult()
	for _, action := range actions {
		if err := Validate(action, npc, player); err != nil {
			e.log.Debug("dropping invalid action", "type", action.Type, "error", err.Error())
			res.Success = false
			res.Errors = append(res.Errors, err.Error())
			continue
		}

		var step *ExecutionResult
		switch action.Type {
		case ActionDialogueOnly, ActionDialogue:
			continue
		case ActionGiveItem:
			step = e.GiveItem(&npc.Inventory, &player.Inventory, npc.Name, player.Name, action.Param(ParamItem))
		case ActionAcceptOffer:
			step = e.AcceptOffer(npc, player)
		case ActionDeclineOffer:
			step = e.DeclineOffer(npc)
		case ActionTradeAccept, ActionAcceptTrade:
			step = e.AcceptTrade(npc, player)
		case ActionTradeDecline, ActionDeclineTrade:
			step = e.DeclineTrade(npc)
		case ActionTradeCounter:
			step = e.CounterTrade(npc, player, action.Param(ParamPlayerItem), action.Param(ParamNPCItem))
		case ActionAcceptRequest:
			step = e.AcceptRequest(npc, player)
		case ActionDeclineRequest:
			step = e.DeclineRequest(npc)
		default:
			res.Success = false
			res.Errors = append(res.Errors, fmt.Sprintf("action type %q cannot be executed", action.Type))
			continue
		}

		res.merge(step)
		if step.Success {
			res.Executed = append(res.Executed, action)
		}
	}
	return res
}
