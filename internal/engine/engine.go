package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/parley-engine/parley/internal/config"
	"github.com/parley-engine/parley/internal/parser"
	"github.com/parley-engine/parley/internal/services"
	"github.com/parley-engine/parley/pkg/chat"
	"github.com/parley-engine/parley/pkg/negotiation"
	"github.com/parley-engine/parley/pkg/prompts"
	"github.com/parley-engine/parley/pkg/scenario"
	"github.com/parley-engine/parley/pkg/session"
)

// Engine runs one negotiation scenario turn by turn. A turn is strictly
// sequential: the player's action is fully classified, validated, and
// executed before the NPC replies and acts, before the next turn is
// accepted. Inference calls are the only suspension points.
type Engine struct {
	client     *services.Client
	intents    *parser.IntentParser
	npcActions *parser.NPCActionParser
	exec       *negotiation.Executor
	store      services.SessionStore
	scn        *scenario.Scenario
	cfg        *config.Config
	logger     *slog.Logger
}

// NewEngine wires an engine for one scenario.
func NewEngine(client *services.Client, store services.SessionStore, scn *scenario.Scenario, cfg *config.Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		client:     client,
		intents:    parser.NewIntentParser(client, cfg, logger),
		npcActions: parser.NewNPCActionParser(client, cfg, logger),
		exec:       negotiation.NewExecutor(logger),
		store:      store,
		scn:        scn,
		cfg:        cfg,
		logger:     logger,
	}
}

// TurnResult describes everything one player turn changed, for narration.
type TurnResult struct {
	PlayerAction negotiation.ActionIntent
	// PlayerErr is set when a recognized action could not be completed;
	// the turn ends without an NPC reply so the player can rephrase.
	PlayerErr string

	NPCReply     string
	PlayerResult *negotiation.ExecutionResult
	NPCResult    *negotiation.ExecutionResult

	DispositionChanged bool
	NewDisposition     string
	DispositionReason  string

	Victory bool
	Quit    bool
	Help    bool
}

// StartSession creates and persists a fresh session for the scenario.
func (e *Engine) StartSession(ctx context.Context) (*session.Session, error) {
	s, err := session.New(e.scn)
	if err != nil {
		return nil, err
	}
	if err := e.store.SaveSession(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to persist new session: %w", err)
	}
	e.logger.Info("session started", "session_id", s.ID.String(), "scenario", e.scn.Name)
	return s, nil
}

// Introduction returns the scenario's opening narration.
func (e *Engine) Introduction() string {
	intro := e.scn.Introduction
	if intro == "" {
		intro = e.scn.Description
	}
	return fmt.Sprintf("Welcome, adventurer, to %q!\n\n%s", e.scn.Name, intro)
}

// Epilogue returns the closing narration for a finished session.
func (e *Engine) Epilogue(s *session.Session, victory bool) string {
	if victory {
		if e.scn.Epilogue != "" {
			return e.scn.Epilogue
		}
		return fmt.Sprintf("Congratulations! You achieved your goal. %s is now %s.",
			s.NPC.Name, s.NPC.Disposition)
	}
	return fmt.Sprintf("The threads of fate remain untangled, and %s is left to ponder what might have been, their disposition %s.",
		s.NPC.Name, s.NPC.Disposition)
}

// PlayerTurn runs one full exchange: classify and execute the player's
// action, generate the NPC's reply, execute the actions implied by it,
// reassess disposition, check victory, persist.
func (e *Engine) PlayerTurn(ctx context.Context, s *session.Session, input string) (*TurnResult, error) {
	if s.Ended {
		return nil, fmt.Errorf("session %s has already ended", s.ID)
	}

	parsed := e.intents.ParseInput(ctx, input, s.Player, s.NPC, s.Location)
	result := &TurnResult{PlayerAction: parsed.Action}

	switch parsed.Action.Type {
	case negotiation.ActionQuit:
		s.Ended = true
		if err := e.store.SaveSession(ctx, s); err != nil {
			return nil, err
		}
		result.Quit = true
		return result, nil
	case negotiation.ActionHelp:
		result.Help = true
		return result, nil
	}

	if !parsed.OK {
		result.PlayerErr = parsed.Err
		return result, nil
	}

	result.PlayerResult = e.executePlayerAction(s, parsed.Action)
	if !result.PlayerResult.Success {
		result.PlayerErr = firstError(result.PlayerResult)
		return result, nil
	}

	// The NPC sees the action as a described utterance in the transcript.
	userMessage := narratePlayerAction(parsed.Action)
	reply, err := e.generateNPCReply(ctx, s, userMessage)
	s.Record(chat.RoleUser, userMessage)
	if err != nil {
		e.logger.Warn("npc reply generation failed", "error", err.Error())
		reply = fmt.Sprintf("[%s ponders silently.]", s.NPC.Name)
		result.NPCReply = reply
		s.Record(chat.RoleAssistant, reply)
		if err := e.store.SaveSession(ctx, s); err != nil {
			return nil, err
		}
		return result, nil
	}
	result.NPCReply = reply
	s.Record(chat.RoleAssistant, reply)

	npcParsed := e.npcActions.Parse(ctx, reply, s.NPC, s.Player)
	result.NPCResult = e.exec.ExecuteAll(npcParsed.Actions, s.NPC, s.Player)

	e.assessDisposition(ctx, s, userMessage, reply, result)

	if e.scn.VictoryMet(s.Player.Inventory) {
		s.Ended = true
		result.Victory = true
	}

	if err := e.store.SaveSession(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	return result, nil
}

// executePlayerAction applies the player's validated intent to the world.
// Dialogue changes nothing; the other types create or resolve proposals.
func (e *Engine) executePlayerAction(s *session.Session, action negotiation.ActionIntent) *negotiation.ExecutionResult {
	switch action.Type {
	case negotiation.ActionDialogue:
		return &negotiation.ExecutionResult{Success: true, StateChanges: map[string]string{}}

	case negotiation.ActionGiveItem:
		// Giving is an offer the NPC may accept or decline, not an
		// immediate transfer.
		item, ok := s.Player.Inventory.Resolve(action.Param(negotiation.ParamItem))
		if !ok {
			return &negotiation.ExecutionResult{
				Success:      false,
				StateChanges: map[string]string{},
				Errors:       []string{fmt.Sprintf("you don't have %q", action.Param(negotiation.ParamItem))},
			}
		}
		return e.exec.CreateOffer(s.NPC, item, s.Player.Name)

	case negotiation.ActionTradeProposal:
		playerItem, ok := s.Player.Inventory.Resolve(action.Param(negotiation.ParamPlayerItem))
		if !ok {
			return &negotiation.ExecutionResult{
				Success:      false,
				StateChanges: map[string]string{},
				Errors:       []string{fmt.Sprintf("you don't have %q", action.Param(negotiation.ParamPlayerItem))},
			}
		}
		npcItem, ok := s.NPC.Inventory.Resolve(action.Param(negotiation.ParamNPCItem))
		if !ok {
			return &negotiation.ExecutionResult{
				Success:      false,
				StateChanges: map[string]string{},
				Errors:       []string{fmt.Sprintf("%s doesn't have %q", s.NPC.Name, action.Param(negotiation.ParamNPCItem))},
			}
		}
		return e.exec.ProposeTrade(s.NPC, playerItem, npcItem, s.Player.Name)

	case negotiation.ActionRequestItem:
		item, ok := s.NPC.Inventory.Resolve(action.Param(negotiation.ParamItem))
		if !ok {
			return &negotiation.ExecutionResult{
				Success:      false,
				StateChanges: map[string]string{},
				Errors:       []string{fmt.Sprintf("%s doesn't have %q", s.NPC.Name, action.Param(negotiation.ParamItem))},
			}
		}
		return e.exec.CreateRequest(s.NPC, item.Name, s.Player.Name)

	case negotiation.ActionAcceptTrade:
		return e.exec.AcceptTrade(s.NPC, s.Player)

	case negotiation.ActionDeclineTrade:
		return e.exec.DeclineTrade(s.NPC)

	default:
		return &negotiation.ExecutionResult{
			Success:      false,
			StateChanges: map[string]string{},
			Errors:       []string{fmt.Sprintf("action type %q cannot be executed", action.Type)},
		}
	}
}

// narratePlayerAction renders the player's intent as the utterance the NPC
// actually hears.
func narratePlayerAction(action negotiation.ActionIntent) string {
	message := action.Param(parser.ParamMessage)
	switch action.Type {
	case negotiation.ActionGiveItem:
		return fmt.Sprintf("*I offer you my %s. Do you accept?*", action.Param(negotiation.ParamItem))
	case negotiation.ActionTradeProposal:
		return fmt.Sprintf("*I propose a trade: my %s for your %s. What do you say?*",
			action.Param(negotiation.ParamPlayerItem), action.Param(negotiation.ParamNPCItem))
	case negotiation.ActionRequestItem:
		return fmt.Sprintf("*May I have your %s?*", action.Param(negotiation.ParamItem))
	case negotiation.ActionAcceptTrade:
		if message != "" {
			return message
		}
		return "*I accept your proposal.*"
	case negotiation.ActionDeclineTrade:
		if message != "" {
			return message
		}
		return "*I decline your proposal.*"
	default:
		if message != "" {
			return message
		}
		return action.RawText
	}
}

func (e *Engine) generateNPCReply(ctx context.Context, s *session.Session, userMessage string) (string, error) {
	res, err := e.client.GenerateText(ctx, services.TextRequest{
		System:  prompts.NPCSystemPrompt(s.NPC, s.Location),
		History: s.History,
		User:    userMessage,
	})
	if err != nil {
		return "", err
	}
	return res.Content, nil
}

type dispositionAssessment struct {
	ShouldChange   bool   `json:"should_change"`
	NewDisposition string `json:"new_disposition"`
	Reason         string `json:"reason"`
}

// assessDisposition runs the explicit disposition decision step. Any
// failure means no change; disposition never moves as a side effect.
func (e *Engine) assessDisposition(ctx context.Context, s *session.Session, playerMessage, npcReply string, result *TurnResult) {
	res, err := e.client.GenerateJSON(ctx, services.JSONRequest{
		System: prompts.DispositionSystemPrompt,
		User:   prompts.DispositionUserPrompt(s.NPC, playerMessage, npcReply),
		Model:  e.cfg.ExtractionModel,
	})
	if err != nil {
		e.logger.Debug("disposition assessment failed, keeping current", "error", err.Error())
		return
	}

	var assessment dispositionAssessment
	if err := res.Decode(&assessment); err != nil {
		e.logger.Debug("disposition assessment undecodable, keeping current", "error", err.Error())
		return
	}
	if !assessment.ShouldChange || assessment.NewDisposition == "" {
		return
	}

	e.logger.Info("disposition changed",
		"npc", s.NPC.Name,
		"from", s.NPC.Disposition,
		"to", assessment.NewDisposition,
		"reason", assessment.Reason)

	s.NPC.Disposition = assessment.NewDisposition
	result.DispositionChanged = true
	result.NewDisposition = assessment.NewDisposition
	result.DispositionReason = assessment.Reason
}

func firstError(res *negotiation.ExecutionResult) string {
	if len(res.Errors) == 0 {
		return "action could not be completed"
	}
	return res.Errors[0]
}
