package negotiation

import "fmt"

// ActionType labels one interpreted intent. Player input and NPC dialogue
// are classified against different vocabularies, but both produce
// ActionIntent values and flow through the same validator and executor.
type ActionType string

// Player input vocabulary.
const (
	ActionDialogue      ActionType = "dialogue"
	ActionGiveItem      ActionType = "give_item"
	ActionTradeProposal ActionType = "trade_proposal"
	ActionRequestItem   ActionType = "request_item"
	ActionAcceptTrade   ActionType = "accept_trade"
	ActionDeclineTrade  ActionType = "decline_trade"
	ActionQuit          ActionType = "quit"
	ActionHelp          ActionType = "help"
	ActionUnknown       ActionType = "unknown"
)

// NPC action vocabulary. give_item is shared with the player vocabulary.
const (
	ActionAcceptOffer    ActionType = "accept_offer"
	ActionDeclineOffer   ActionType = "decline_offer"
	ActionTradeAccept    ActionType = "trade_accept"
	ActionTradeDecline   ActionType = "trade_decline"
	ActionTradeCounter   ActionType = "trade_counter"
	ActionAcceptRequest  ActionType = "accept_request"
	ActionDeclineRequest ActionType = "decline_request"
	ActionDialogueOnly   ActionType = "dialogue_only"
)

// Parameter keys used in ActionIntent.Params.
const (
	ParamItem       = "item"
	ParamPlayerItem = "player_item"
	ParamNPCItem    = "npc_item"
)

// PlayerActionTypes is the closed label set for input classification.
var PlayerActionTypes = []ActionType{
	ActionDialogue, ActionGiveItem, ActionTradeProposal, ActionRequestItem,
	ActionAcceptTrade, ActionDeclineTrade, ActionQuit, ActionHelp, ActionUnknown,
}

// NPCActionTypes is the closed vocabulary for NPC dialogue parsing.
var NPCActionTypes = []ActionType{
	ActionGiveItem, ActionAcceptOffer, ActionDeclineOffer,
	ActionTradeAccept, ActionTradeDecline, ActionTradeCounter,
	ActionAcceptRequest, ActionDeclineRequest, ActionDialogueOnly,
}

// ActionIntent is one interpreted action. Params hold the type-specific
// fields; RawText preserves the original utterance for narration fallback.
// Intents live for a single resolution cycle and are never persisted.
type ActionIntent struct {
	Type       ActionType        `json:"type"`
	Params     map[string]string `json:"params,omitempty"`
	Confidence float64           `json:"confidence"`
	RawText    string            `json:"raw_text,omitempty"`
}

// Param returns the named parameter or the empty string.
func (a ActionIntent) Param(key string) string {
	if a.Params == nil {
		return ""
	}
	return a.Params[key]
}

// requiredParams maps each type to the parameter keys it must carry.
var requiredParams = map[ActionType][]string{
	ActionGiveItem:      {ParamItem},
	ActionTradeProposal: {ParamPlayerItem, ParamNPCItem},
	ActionRequestItem:   {ParamItem},
	ActionTradeCounter:  {ParamPlayerItem, ParamNPCItem},
}

var knownTypes = func() map[ActionType]bool {
	m := make(map[ActionType]bool)
	for _, t := range PlayerActionTypes {
		m[t] = true
	}
	for _, t := range NPCActionTypes {
		m[t] = true
	}
	return m
}()

// CheckShape verifies the intent carries its type's required parameters.
// It is a structural check only; possession and state checks live in
// Validate.
func (a ActionIntent) CheckShape() error {
	if !knownTypes[a.Type] {
		return fmt.Errorf("unknown action type %q", a.Type)
	}
	for _, key := range requiredParams[a.Type] {
		if a.Param(key) == "" {
			return fmt.Errorf("%s action is missing the %q parameter", a.Type, key)
		}
	}
	return nil
}
