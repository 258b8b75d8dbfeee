package parser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/parley-engine/parley/internal/config"
	"github.com/parley-engine/parley/internal/services"
	"github.com/parley-engine/parley/pkg/actor"
	"github.com/parley-engine/parley/pkg/negotiation"
	"github.com/parley-engine/parley/pkg/prompts"
	"github.com/parley-engine/parley/pkg/scenario"
)

// ParamMessage holds the dialogue text inside an ActionIntent.
const ParamMessage = "message"

// ParsedInput is the structured result of interpreting player free text.
// OK is false only when a recognized action could not be completed (for
// example an unresolvable item name); plain conversation always parses.
type ParsedInput struct {
	Action negotiation.ActionIntent
	OK     bool
	Err    string
}

// IntentParser turns player free text into a typed ActionIntent using a
// two-phase process: one classification call, then one extraction call for
// the accepted type. A leading slash bypasses inference entirely.
type IntentParser struct {
	client *services.Client
	cfg    *config.Config
	logger *slog.Logger
}

// NewIntentParser creates a parser over the shared inference client.
func NewIntentParser(client *services.Client, cfg *config.Config, logger *slog.Logger) *IntentParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntentParser{client: client, cfg: cfg, logger: logger}
}

type classification struct {
	ActionType string  `json:"action_type"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// ParseInput interprets one line of player input against the current world
// state. Classification or provider failures degrade to dialogue with the
// raw text; conversation is never blocked by a parsing failure.
func (p *IntentParser) ParseInput(ctx context.Context, input string, player *actor.Player, npc *actor.Character, loc scenario.LocationRecord) *ParsedInput {
	input = strings.TrimSpace(input)
	if input == "" {
		return &ParsedInput{
			Action: negotiation.ActionIntent{Type: negotiation.ActionUnknown},
			Err:    "input cannot be empty",
		}
	}

	if strings.HasPrefix(input, "/") {
		return p.parseCommand(input, player, npc)
	}

	cls, err := p.classify(ctx, input, player, npc, loc)
	if err != nil {
		p.logger.Debug("classification failed, falling back to dialogue", "error", err.Error())
		return dialogueInput(input, 0)
	}
	p.logger.Debug("input classified", "action_type", cls.ActionType, "confidence", cls.Confidence)

	actionType := negotiation.ActionType(cls.ActionType)

	// Accepting or declining requires a standing counter-proposal from the
	// NPC; you cannot accept your own proposal. Anything else is just talk.
	if actionType == negotiation.ActionAcceptTrade || actionType == negotiation.ActionDeclineTrade {
		if npc.ActiveTrade == nil || npc.ActiveTrade.ProposedBy != npc.Name {
			actionType = negotiation.ActionDialogue
		}
	}

	switch actionType {
	case negotiation.ActionDialogue:
		return dialogueInput(input, cls.Confidence)
	case negotiation.ActionGiveItem:
		return p.extractGive(ctx, input, player, cls.Confidence)
	case negotiation.ActionTradeProposal:
		return p.extractTrade(ctx, input, player, npc, cls.Confidence)
	case negotiation.ActionRequestItem:
		return p.extractRequest(ctx, input, npc, cls.Confidence)
	case negotiation.ActionAcceptTrade, negotiation.ActionDeclineTrade:
		return &ParsedInput{
			Action: negotiation.ActionIntent{
				Type:       actionType,
				Params:     map[string]string{ParamMessage: input},
				Confidence: cls.Confidence,
				RawText:    input,
			},
			OK: true,
		}
	case negotiation.ActionQuit, negotiation.ActionHelp:
		return &ParsedInput{
			Action: negotiation.ActionIntent{Type: actionType, Confidence: cls.Confidence, RawText: input},
			OK:     true,
		}
	default:
		// Unrecognized labels degrade to natural conversation.
		return dialogueInput(input, cls.Confidence)
	}
}

func dialogueInput(input string, confidence float64) *ParsedInput {
	return &ParsedInput{
		Action: negotiation.ActionIntent{
			Type:       negotiation.ActionDialogue,
			Params:     map[string]string{ParamMessage: input},
			Confidence: confidence,
			RawText:    input,
		},
		OK: true,
	}
}

// parseCommand handles the literal-command fast path. The remainder is
// parsed positionally; no inference calls are made.
func (p *IntentParser) parseCommand(input string, player *actor.Player, npc *actor.Character) *ParsedInput {
	parts := strings.SplitN(strings.TrimPrefix(input, "/"), " ", 2)
	verb := strings.ToLower(strings.TrimSpace(parts[0]))
	args := ""
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}

	switch verb {
	case "say":
		if args == "" {
			return &ParsedInput{
				Action: negotiation.ActionIntent{Type: negotiation.ActionDialogue},
				Err:    "message cannot be empty",
			}
		}
		return dialogueInput(args, 1)

	case "give":
		if args == "" {
			return &ParsedInput{
				Action: negotiation.ActionIntent{Type: negotiation.ActionGiveItem},
				Err:    "item name cannot be empty",
			}
		}
		item, ok := player.Inventory.Resolve(args)
		if !ok {
			return &ParsedInput{
				Action: negotiation.ActionIntent{Type: negotiation.ActionGiveItem},
				Err:    fmt.Sprintf("you don't have %q to give", args),
			}
		}
		return &ParsedInput{
			Action: negotiation.ActionIntent{
				Type:       negotiation.ActionGiveItem,
				Params:     map[string]string{negotiation.ParamItem: item.Name, ParamMessage: input},
				Confidence: 1,
				RawText:    input,
			},
			OK: true,
		}

	case "trade":
		// "/trade <your item> for <their item>"
		mine, theirs, found := strings.Cut(args, " for ")
		if !found {
			return &ParsedInput{
				Action: negotiation.ActionIntent{Type: negotiation.ActionTradeProposal},
				Err:    "usage: /trade <your item> for <their item>",
			}
		}
		playerItem, ok := player.Inventory.Resolve(strings.TrimSpace(mine))
		if !ok {
			return &ParsedInput{
				Action: negotiation.ActionIntent{Type: negotiation.ActionTradeProposal},
				Err:    fmt.Sprintf("you don't have %q to trade", strings.TrimSpace(mine)),
			}
		}
		npcItem, ok := npc.Inventory.Resolve(strings.TrimSpace(theirs))
		if !ok {
			return &ParsedInput{
				Action: negotiation.ActionIntent{Type: negotiation.ActionTradeProposal},
				Err:    fmt.Sprintf("%s doesn't have %q to trade", npc.Name, strings.TrimSpace(theirs)),
			}
		}
		return &ParsedInput{
			Action: negotiation.ActionIntent{
				Type: negotiation.ActionTradeProposal,
				Params: map[string]string{
					negotiation.ParamPlayerItem: playerItem.Name,
					negotiation.ParamNPCItem:    npcItem.Name,
					ParamMessage:                input,
				},
				Confidence: 1,
				RawText:    input,
			},
			OK: true,
		}

	case "request":
		if args == "" {
			return &ParsedInput{
				Action: negotiation.ActionIntent{Type: negotiation.ActionRequestItem},
				Err:    "item request cannot be empty",
			}
		}
		item, ok := npc.Inventory.Resolve(args)
		if !ok {
			return &ParsedInput{
				Action: negotiation.ActionIntent{Type: negotiation.ActionRequestItem},
				Err:    fmt.Sprintf("%s doesn't have %q", npc.Name, args),
			}
		}
		return &ParsedInput{
			Action: negotiation.ActionIntent{
				Type:       negotiation.ActionRequestItem,
				Params:     map[string]string{negotiation.ParamItem: item.Name, ParamMessage: input},
				Confidence: 1,
				RawText:    input,
			},
			OK: true,
		}

	case "accept", "decline":
		actionType := negotiation.ActionAcceptTrade
		if verb == "decline" {
			actionType = negotiation.ActionDeclineTrade
		}
		if npc.ActiveTrade == nil || npc.ActiveTrade.ProposedBy != npc.Name {
			return &ParsedInput{
				Action: negotiation.ActionIntent{Type: actionType},
				Err:    "there is no counter-proposal to " + verb,
			}
		}
		return &ParsedInput{
			Action: negotiation.ActionIntent{
				Type:       actionType,
				Params:     map[string]string{ParamMessage: args},
				Confidence: 1,
				RawText:    input,
			},
			OK: true,
		}

	case "quit":
		return &ParsedInput{
			Action: negotiation.ActionIntent{Type: negotiation.ActionQuit, Confidence: 1, RawText: input},
			OK:     true,
		}

	case "help":
		return &ParsedInput{
			Action: negotiation.ActionIntent{Type: negotiation.ActionHelp, Confidence: 1, RawText: input},
			OK:     true,
		}

	default:
		// Unrecognized command words degrade to dialogue.
		return dialogueInput(input, 1)
	}
}

func (p *IntentParser) classify(ctx context.Context, input string, player *actor.Player, npc *actor.Character, loc scenario.LocationRecord) (*classification, error) {
	res, err := p.client.GenerateJSON(ctx, services.JSONRequest{
		System: prompts.ClassifySystemPrompt,
		User:   prompts.ClassifyUserPrompt(input, player, npc, loc),
		Model:  p.cfg.ExtractionModel,
	})
	if err != nil {
		return nil, err
	}

	var cls classification
	if err := res.Decode(&cls); err != nil {
		return nil, fmt.Errorf("failed to decode classification: %w", err)
	}
	if cls.ActionType == "" {
		return nil, fmt.Errorf("classification returned no action type")
	}
	return &cls, nil
}

func (p *IntentParser) extractGive(ctx context.Context, input string, player *actor.Player, confidence float64) *ParsedInput {
	res, err := p.client.GenerateJSON(ctx, services.JSONRequest{
		System: prompts.ExtractGiveSystemPrompt,
		User:   prompts.ExtractGiveUserPrompt(input, player),
		Model:  p.cfg.ExtractionModel,
	})
	if err != nil {
		return &ParsedInput{
			Action: negotiation.ActionIntent{Type: negotiation.ActionGiveItem, RawText: input},
			Err:    "could not identify which item you want to give",
		}
	}

	var out struct {
		ItemName string `json:"item_name"`
	}
	if err := res.Decode(&out); err != nil || out.ItemName == "" {
		return &ParsedInput{
			Action: negotiation.ActionIntent{Type: negotiation.ActionGiveItem, RawText: input},
			Err:    "could not identify which item you want to give",
		}
	}

	item, ok := player.Inventory.Resolve(out.ItemName)
	if !ok {
		return &ParsedInput{
			Action: negotiation.ActionIntent{Type: negotiation.ActionGiveItem, RawText: input},
			Err:    fmt.Sprintf("you don't have %q to give", out.ItemName),
		}
	}

	return &ParsedInput{
		Action: negotiation.ActionIntent{
			Type:       negotiation.ActionGiveItem,
			Params:     map[string]string{negotiation.ParamItem: item.Name, ParamMessage: input},
			Confidence: confidence,
			RawText:    input,
		},
		OK: true,
	}
}

func (p *IntentParser) extractTrade(ctx context.Context, input string, player *actor.Player, npc *actor.Character, confidence float64) *ParsedInput {
	res, err := p.client.GenerateJSON(ctx, services.JSONRequest{
		System: prompts.ExtractTradeSystemPrompt,
		User:   prompts.ExtractTradeUserPrompt(input, player, npc),
		Model:  p.cfg.ExtractionModel,
	})
	if err != nil {
		return &ParsedInput{
			Action: negotiation.ActionIntent{Type: negotiation.ActionTradeProposal, RawText: input},
			Err:    "could not identify the items you want to trade",
		}
	}

	var out struct {
		PlayerItem string `json:"player_item"`
		NPCItem    string `json:"npc_item"`
	}
	if err := res.Decode(&out); err != nil || out.PlayerItem == "" || out.NPCItem == "" {
		return &ParsedInput{
			Action: negotiation.ActionIntent{Type: negotiation.ActionTradeProposal, RawText: input},
			Err:    "could not identify the items you want to trade",
		}
	}

	playerItem, ok := player.Inventory.Resolve(out.PlayerItem)
	if !ok {
		return &ParsedInput{
			Action: negotiation.ActionIntent{Type: negotiation.ActionTradeProposal, RawText: input},
			Err:    fmt.Sprintf("you don't have %q to trade", out.PlayerItem),
		}
	}
	npcItem, ok := npc.Inventory.Resolve(out.NPCItem)
	if !ok {
		return &ParsedInput{
			Action: negotiation.ActionIntent{Type: negotiation.ActionTradeProposal, RawText: input},
			Err:    fmt.Sprintf("%s doesn't have %q to trade", npc.Name, out.NPCItem),
		}
	}

	return &ParsedInput{
		Action: negotiation.ActionIntent{
			Type: negotiation.ActionTradeProposal,
			Params: map[string]string{
				negotiation.ParamPlayerItem: playerItem.Name,
				negotiation.ParamNPCItem:    npcItem.Name,
				ParamMessage:                input,
			},
			Confidence: confidence,
			RawText:    input,
		},
		OK: true,
	}
}

func (p *IntentParser) extractRequest(ctx context.Context, input string, npc *actor.Character, confidence float64) *ParsedInput {
	res, err := p.client.GenerateJSON(ctx, services.JSONRequest{
		System: prompts.ExtractRequestSystemPrompt,
		User:   prompts.ExtractRequestUserPrompt(input, npc),
		Model:  p.cfg.ExtractionModel,
	})
	if err != nil {
		return &ParsedInput{
			Action: negotiation.ActionIntent{Type: negotiation.ActionRequestItem, RawText: input},
			Err:    "could not identify which item you want to ask for",
		}
	}

	var out struct {
		ItemName string `json:"item_name"`
	}
	if err := res.Decode(&out); err != nil || out.ItemName == "" {
		return &ParsedInput{
			Action: negotiation.ActionIntent{Type: negotiation.ActionRequestItem, RawText: input},
			Err:    "could not identify which item you want to ask for",
		}
	}

	item, ok := npc.Inventory.Resolve(out.ItemName)
	if !ok {
		return &ParsedInput{
			Action: negotiation.ActionIntent{Type: negotiation.ActionRequestItem, RawText: input},
			Err:    fmt.Sprintf("%s doesn't have %q", npc.Name, out.ItemName),
		}
	}

	return &ParsedInput{
		Action: negotiation.ActionIntent{
			Type:       negotiation.ActionRequestItem,
			Params:     map[string]string{negotiation.ParamItem: item.Name, ParamMessage: input},
			Confidence: confidence,
			RawText:    input,
		},
		OK: true,
	}
}
