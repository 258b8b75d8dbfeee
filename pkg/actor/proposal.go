package actor

// Offer is a standing one-sided offer: the initiator holds out a single
// item for the other party to take.
type Offer struct {
	Item      Item   `json:"item"`
	OfferedBy string `json:"offered_by"`
}

// TradeProposal is a standing two-sided exchange: the player's item for the
// NPC's item. ProposedBy records who initiated the proposal; a party may
// only accept a proposal initiated by the counterpart.
type TradeProposal struct {
	PlayerItem Item   `json:"player_item"`
	NPCItem    Item   `json:"npc_item"`
	ProposedBy string `json:"proposed_by"`
}

// Request is a standing ask for a named item with nothing offered in return.
type Request struct {
	ItemName    string `json:"item_name"`
	RequestedBy string `json:"requested_by"`
}
