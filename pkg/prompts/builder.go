package prompts

import (
	"fmt"
	"strings"

	"github.com/parley-engine/parley/pkg/actor"
	"github.com/parley-engine/parley/pkg/scenario"
)

// ClassifyUserPrompt builds the context block for input classification.
func ClassifyUserPrompt(input string, player *actor.Player, npc *actor.Character, loc scenario.LocationRecord) string {
	return fmt.Sprintf("Game Context:\n"+
		"- Player (%s) has items: %s\n"+
		"- NPC (%s) has items: %s\n"+
		"- Location: %s\n"+
		"- Active trade proposal: %s\n\n"+
		"Player input to classify: %q\n\n"+
		"What type of action does the player want to perform?",
		player.Name, player.Inventory.DisplayNames(),
		npc.Name, npc.Inventory.DisplayNames(),
		loc.Name, tradeStatus(npc), input)
}

// ExtractGiveUserPrompt builds the context block for give extraction.
func ExtractGiveUserPrompt(input string, player *actor.Player) string {
	return fmt.Sprintf("Player's inventory: %s\n"+
		"Player's message: %q\n\n"+
		"What item is the player trying to give?",
		player.Inventory.DisplayNames(), input)
}

// ExtractTradeUserPrompt builds the context block for trade extraction.
func ExtractTradeUserPrompt(input string, player *actor.Player, npc *actor.Character) string {
	return fmt.Sprintf("Player's inventory: %s\n"+
		"NPC's inventory: %s\n"+
		"Player's trade message: %q\n\n"+
		"What trade is the player proposing? (What are they offering and what do they want?)",
		player.Inventory.DisplayNames(), npc.Inventory.DisplayNames(), input)
}

// ExtractRequestUserPrompt builds the context block for request extraction.
func ExtractRequestUserPrompt(input string, npc *actor.Character) string {
	return fmt.Sprintf("NPC's inventory: %s\n"+
		"Player's request message: %q\n\n"+
		"What item is the player asking for from the NPC?",
		npc.Inventory.DisplayNames(), input)
}

// NPCActionUserPrompt builds the context block for NPC action extraction.
// Proposal-slot status is spelled out so the model can tell an acceptance
// of a standing trade from idle agreement.
func NPCActionUserPrompt(npcText string, npc *actor.Character, player *actor.Player) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Game Context:\n")
	fmt.Fprintf(&b, "NPC (%s) inventory: %s\n", npc.Name, npc.Inventory.DisplayNames())
	fmt.Fprintf(&b, "Player (%s) inventory: %s\n", player.Name, player.Inventory.DisplayNames())

	if npc.ActiveOffer != nil {
		fmt.Fprintf(&b, "Active offer: %s offered '%s' to %s\n",
			npc.ActiveOffer.OfferedBy, npc.ActiveOffer.Item.Name, npc.Name)
	} else {
		b.WriteString("Active offer: None\n")
	}
	if npc.ActiveTrade != nil {
		fmt.Fprintf(&b, "Active trade proposal: Player's '%s' for NPC's '%s' (proposed by %s)\n",
			npc.ActiveTrade.PlayerItem.Name, npc.ActiveTrade.NPCItem.Name, npc.ActiveTrade.ProposedBy)
	} else {
		b.WriteString("Active trade proposal: None\n")
	}
	if npc.ActiveRequest != nil {
		fmt.Fprintf(&b, "Active request: %s asked for '%s' from %s\n",
			npc.ActiveRequest.RequestedBy, npc.ActiveRequest.ItemName, npc.Name)
	} else {
		b.WriteString("Active request: None\n")
	}

	fmt.Fprintf(&b, "\nNPC's response: %q\n\n", npcText)
	b.WriteString("What actions is the NPC performing through this dialogue?")
	return b.String()
}

// DispositionUserPrompt builds the context block for disposition assessment.
func DispositionUserPrompt(npc *actor.Character, playerMessage, npcReply string) string {
	return fmt.Sprintf("NPC Name: %s\n"+
		"NPC Personality: %s\n"+
		"NPC Goal: %s\n"+
		"NPC Current Disposition: %s\n\n"+
		"Last interaction turn:\n"+
		"Player said: %q\n"+
		"%s replied: %q\n\n"+
		"Based on all the above, should the NPC's disposition change? Provide your response as a JSON object as specified.",
		npc.Name, npc.Personality, npc.Goal, npc.Disposition,
		playerMessage, npc.Name, npcReply)
}

// NPCSystemPrompt builds the in-character system prompt for reply
// generation. Actions are implied through dialogue and extracted afterward,
// so the prompt asks only for the character's next line.
func NPCSystemPrompt(npc *actor.Character, loc scenario.LocationRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s.\n", npc.Name)
	fmt.Fprintf(&b, "Your personality: %s\n", npc.Personality)
	fmt.Fprintf(&b, "Your current goal: %s\n", npc.Goal)
	fmt.Fprintf(&b, "Your current disposition/state of mind: %s\n", npc.Disposition)
	fmt.Fprintf(&b, "You are currently carrying: %s.\n", npc.Inventory.DisplayNames())
	fmt.Fprintf(&b, "You are currently in: %s. %s\n", loc.Name, loc.Description)

	if npc.ActiveOffer != nil {
		fmt.Fprintf(&b, "%s has offered you their '%s'; you have not taken it yet.\n",
			npc.ActiveOffer.OfferedBy, npc.ActiveOffer.Item.Name)
	}
	if npc.ActiveTrade != nil {
		fmt.Fprintf(&b, "There is a standing trade proposal from %s: their '%s' for your '%s'.\n",
			npc.ActiveTrade.ProposedBy, npc.ActiveTrade.PlayerItem.Name, npc.ActiveTrade.NPCItem.Name)
	}
	if npc.ActiveRequest != nil {
		fmt.Fprintf(&b, "%s has asked you for your '%s' with nothing offered in return.\n",
			npc.ActiveRequest.RequestedBy, npc.ActiveRequest.ItemName)
	}

	fmt.Fprintf(&b, "\nYou will act and speak as %s based on this information. Do not break character. ", npc.Name)
	fmt.Fprintf(&b, "Only provide %s's next line of dialogue in response to the user. ", npc.Name)
	b.WriteString("If you decide to give an item, accept or decline an offer, trade, or request, say so plainly in your dialogue (for example 'Very well, I accept your trade' or 'Here, take this'). ")
	b.WriteString("Only agree to part with items you actually carry, and react naturally to the player's actions, both in your dialogue and in your attitude.")
	return b.String()
}

func tradeStatus(npc *actor.Character) string {
	if npc.ActiveTrade == nil {
		return "None"
	}
	return fmt.Sprintf("Player's '%s' for NPC's '%s' (proposed by %s)",
		npc.ActiveTrade.PlayerItem.Name, npc.ActiveTrade.NPCItem.Name, npc.ActiveTrade.ProposedBy)
}
