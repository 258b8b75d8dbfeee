package parser

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/parley-engine/parley/internal/config"
	"github.com/parley-engine/parley/internal/services"
	"github.com/parley-engine/parley/pkg/actor"
	"github.com/parley-engine/parley/pkg/negotiation"
	"github.com/parley-engine/parley/pkg/prompts"
)

// ParsedActions is the set of candidate actions implied by one NPC reply.
// Candidates still need validation before execution.
type ParsedActions struct {
	Actions    []negotiation.ActionIntent
	Confidence float64
}

// NPCActionParser extracts game-state actions from an NPC's generated
// dialogue with one JSON-mode call. NPCs act through speech; this is the
// only path from their words to the executor.
type NPCActionParser struct {
	client *services.Client
	cfg    *config.Config
	logger *slog.Logger
}

// NewNPCActionParser creates a parser over the shared inference client.
func NewNPCActionParser(client *services.Client, cfg *config.Config, logger *slog.Logger) *NPCActionParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &NPCActionParser{client: client, cfg: cfg, logger: logger}
}

// Parse extracts candidate actions from NPC dialogue. Empty dialogue, a
// provider failure, or an undecodable response all yield a single
// dialogue_only intent; the turn proceeds with no mutation.
func (p *NPCActionParser) Parse(ctx context.Context, npcText string, npc *actor.Character, player *actor.Player) *ParsedActions {
	npcText = strings.TrimSpace(npcText)
	if npcText == "" {
		return dialogueOnly(npcText, 0)
	}

	res, err := p.client.GenerateJSON(ctx, services.JSONRequest{
		System: prompts.NPCActionSystemPrompt,
		User:   prompts.NPCActionUserPrompt(npcText, npc, player),
		Model:  p.cfg.ExtractionModel,
	})
	if err != nil {
		p.logger.Debug("npc action parsing failed", "error", err.Error())
		return dialogueOnly(npcText, 0)
	}

	var out struct {
		Actions    []json.RawMessage `json:"actions"`
		Confidence float64           `json:"confidence"`
	}
	if err := res.Decode(&out); err != nil {
		p.logger.Debug("npc action response undecodable", "error", err.Error())
		return dialogueOnly(npcText, 0)
	}

	actions := normalizeActions(out.Actions, npcText, out.Confidence)
	if len(actions) == 0 {
		return dialogueOnly(npcText, out.Confidence)
	}

	types := make([]string, 0, len(actions))
	for _, a := range actions {
		types = append(types, string(a.Type))
	}
	p.logger.Debug("npc actions extracted", "types", strings.Join(types, ","), "confidence", out.Confidence)

	return &ParsedActions{Actions: actions, Confidence: out.Confidence}
}

func dialogueOnly(raw string, confidence float64) *ParsedActions {
	return &ParsedActions{
		Actions: []negotiation.ActionIntent{{
			Type:       negotiation.ActionDialogueOnly,
			Confidence: confidence,
			RawText:    raw,
		}},
		Confidence: confidence,
	}
}

// normalizeActions coerces the model's loosely shaped action list into
// typed intents. Bare strings become a type with empty parameters;
// entries that are neither object nor string are dropped.
func normalizeActions(raw []json.RawMessage, npcText string, confidence float64) []negotiation.ActionIntent {
	var actions []negotiation.ActionIntent
	for _, entry := range raw {
		var name string
		if err := json.Unmarshal(entry, &name); err == nil {
			if name == "" {
				continue
			}
			actions = append(actions, negotiation.ActionIntent{
				Type:       negotiation.ActionType(name),
				Params:     map[string]string{},
				Confidence: confidence,
				RawText:    npcText,
			})
			continue
		}

		var obj struct {
			Type       string         `json:"type"`
			Params     map[string]any `json:"params"`
			Parameters map[string]any `json:"parameters"`
		}
		if err := json.Unmarshal(entry, &obj); err != nil || obj.Type == "" {
			continue
		}

		fields := obj.Params
		if fields == nil {
			fields = obj.Parameters
		}
		params := make(map[string]string, len(fields))
		for key, value := range fields {
			s, ok := value.(string)
			if !ok {
				continue
			}
			params[normalizeParamKey(key)] = s
		}

		actions = append(actions, negotiation.ActionIntent{
			Type:       negotiation.ActionType(obj.Type),
			Params:     params,
			Confidence: confidence,
			RawText:    npcText,
		})
	}
	return actions
}

// normalizeParamKey folds the aliases models tend to emit onto canonical
// parameter names.
func normalizeParamKey(key string) string {
	switch key {
	case "item_name":
		return negotiation.ParamItem
	case "player_item_name":
		return negotiation.ParamPlayerItem
	case "npc_item_name":
		return negotiation.ParamNPCItem
	default:
		return key
	}
}
