package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-engine/parley/internal/config"
	"github.com/parley-engine/parley/internal/services"
	"github.com/parley-engine/parley/pkg/chat"
	"github.com/parley-engine/parley/pkg/negotiation"
	"github.com/parley-engine/parley/pkg/scenario"
	"github.com/parley-engine/parley/pkg/session"
)

func engineConfig() *config.Config {
	return &config.Config{
		Provider:        config.ProviderMock,
		ChatModel:       "test-model",
		ExtractionModel: "test-model",
		MaxRetries:      0,
		RetryDelay:      time.Millisecond,
		TextTemperature: 0.7,
		JSONTemperature: 0.3,
		MaxTokens:       1000,
	}
}

func obeliskScenario() *scenario.Scenario {
	return &scenario.Scenario{
		Name:         "The Obelisk Bargain",
		Description:  "A scholar guards the only cypher that can read the obelisk.",
		Introduction: "Mira stands between you and the obelisk, cypher in hand.",
		Epilogue:     "The obelisk's glyphs resolve into words at last.",
		Items: map[string]scenario.ItemRecord{
			"Bronze Key":         {Name: "Bronze Key", Description: "Opens the archive gate."},
			"Translation Cypher": {Name: "Translation Cypher", Description: "Decodes obelisk glyphs."},
		},
		Location: scenario.LocationRecord{Name: "Obelisk Plaza", Description: "A windswept square."},
		NPC: scenario.CharacterRecord{
			Name:        "Mira",
			Personality: "cautious scholar",
			Goal:        "decode the obelisk",
			Disposition: "wary",
			Items:       []string{"Translation Cypher"},
		},
		Player: scenario.PlayerRecord{Name: "Ashe", Items: []string{"Bronze Key"}},
		Victory: &scenario.VictoryCondition{
			Type:     scenario.VictoryPlayerObtainsItem,
			ItemName: "Translation Cypher",
		},
	}
}

func engineFixture(t *testing.T) (*Engine, *services.MockProvider, *session.Session) {
	t.Helper()
	mock := services.NewMockProvider()
	cfg := engineConfig()
	client := services.NewClient(mock, cfg, nil)
	store := services.NewMemoryStore()

	e := NewEngine(client, store, obeliskScenario(), cfg, nil)
	s, err := e.StartSession(context.Background())
	require.NoError(t, err)
	return e, mock, s
}

func TestStartSessionPersists(t *testing.T) {
	mock := services.NewMockProvider()
	cfg := engineConfig()
	client := services.NewClient(mock, cfg, nil)
	store := services.NewMemoryStore()

	e := NewEngine(client, store, obeliskScenario(), cfg, nil)
	s, err := e.StartSession(context.Background())
	require.NoError(t, err)

	loaded, err := store.LoadSession(context.Background(), s.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "The Obelisk Bargain", loaded.ScenarioName)
	assert.True(t, loaded.Player.Inventory.Has("Bronze Key"))
	assert.True(t, loaded.NPC.Inventory.Has("Translation Cypher"))
}

// One full turn: the player proposes a trade in free text, the NPC accepts
// in dialogue, items swap, disposition softens, and victory is detected.
func TestPlayerTurnFullTradeExchange(t *testing.T) {
	e, mock, s := engineFixture(t)

	mock.Script(
		// 1. intent classification
		services.MockResponse{Content: `{"action_type": "trade_proposal", "confidence": 0.95, "reasoning": "proposes an exchange"}`},
		// 2. trade parameter extraction
		services.MockResponse{Content: `{"player_item": "key", "npc_item": "cypher", "confidence": 0.9}`},
		// 3. NPC reply
		services.MockResponse{Content: "Deal. The cypher is yours."},
		// 4. NPC action extraction
		services.MockResponse{Content: `{"actions": [{"type": "trade_accept", "params": {}}], "confidence": 0.92}`},
		// 5. disposition assessment
		services.MockResponse{Content: `{"should_change": true, "new_disposition": "pleased", "reason": "a fair bargain"}`},
	)

	result, err := e.PlayerTurn(context.Background(), s, "I'll trade my key for your cypher")
	require.NoError(t, err)
	require.Empty(t, result.PlayerErr)

	assert.Equal(t, negotiation.ActionTradeProposal, result.PlayerAction.Type)
	assert.Equal(t, "Deal. The cypher is yours.", result.NPCReply)

	require.NotNil(t, result.NPCResult)
	assert.True(t, result.NPCResult.Success)
	assert.Contains(t, result.NPCResult.StateChanges, "trade_completed")

	assert.True(t, s.Player.Inventory.Has("Translation Cypher"))
	assert.True(t, s.NPC.Inventory.Has("Bronze Key"))
	assert.False(t, s.Player.Inventory.Has("Bronze Key"))
	assert.Nil(t, s.NPC.ActiveTrade, "accepted trade clears the slot")

	assert.True(t, result.DispositionChanged)
	assert.Equal(t, "pleased", s.NPC.Disposition)

	assert.True(t, result.Victory)
	assert.True(t, s.Ended)
	assert.Equal(t, 5, mock.CallCount())

	require.Len(t, s.History, 2)
	assert.Equal(t, chat.RoleUser, s.History[0].Role)
	assert.Contains(t, s.History[0].Content, "Bronze Key")
	assert.Equal(t, chat.RoleAssistant, s.History[1].Role)
}

func TestPlayerTurnDialogueMutatesNothing(t *testing.T) {
	e, mock, s := engineFixture(t)

	mock.Script(
		services.MockResponse{Content: `{"action_type": "dialogue", "confidence": 0.99}`},
		services.MockResponse{Content: "The wind never stops up here."},
		services.MockResponse{Content: `{"actions": ["dialogue_only"], "confidence": 0.9}`},
		services.MockResponse{Content: `{"should_change": false}`},
	)

	result, err := e.PlayerTurn(context.Background(), s, "Lovely weather at the obelisk")
	require.NoError(t, err)
	assert.Equal(t, negotiation.ActionDialogue, result.PlayerAction.Type)
	assert.Equal(t, "The wind never stops up here.", result.NPCReply)

	assert.True(t, s.Player.Inventory.Has("Bronze Key"))
	assert.True(t, s.NPC.Inventory.Has("Translation Cypher"))
	assert.False(t, result.Victory)
	assert.False(t, s.Ended)
	assert.False(t, result.DispositionChanged)
	assert.Equal(t, "wary", s.NPC.Disposition)
}

func TestPlayerTurnFailedActionSkipsNPC(t *testing.T) {
	e, mock, s := engineFixture(t)

	// The slash fast path resolves locally, so an unknown item fails before
	// any provider call and the NPC never speaks.
	result, err := e.PlayerTurn(context.Background(), s, "/give enchanted sword")
	require.NoError(t, err)
	assert.NotEmpty(t, result.PlayerErr)
	assert.Empty(t, result.NPCReply)
	assert.Equal(t, 0, mock.CallCount())
	assert.Empty(t, s.History, "failed turns leave no transcript")
}

func TestPlayerTurnSlashTradeUsesFastPath(t *testing.T) {
	e, mock, s := engineFixture(t)

	mock.Script(
		// Fast path skips classification and extraction; the first call is
		// already the NPC reply.
		services.MockResponse{Content: "Hm. Let me think on that."},
		services.MockResponse{Content: `{"actions": ["dialogue_only"], "confidence": 0.8}`},
		services.MockResponse{Content: `{"should_change": false}`},
	)

	result, err := e.PlayerTurn(context.Background(), s, "/trade key for cypher")
	require.NoError(t, err)
	require.Empty(t, result.PlayerErr)
	assert.Equal(t, 3, mock.CallCount())

	require.NotNil(t, s.NPC.ActiveTrade)
	assert.Equal(t, "Ashe", s.NPC.ActiveTrade.ProposedBy)
	assert.Equal(t, "Bronze Key", s.NPC.ActiveTrade.PlayerItem.Name)
	assert.False(t, result.Victory, "a pending proposal moves no items")
}

func TestPlayerTurnQuitEndsSession(t *testing.T) {
	e, mock, s := engineFixture(t)

	result, err := e.PlayerTurn(context.Background(), s, "/quit")
	require.NoError(t, err)
	assert.True(t, result.Quit)
	assert.True(t, s.Ended)
	assert.Equal(t, 0, mock.CallCount())

	_, err = e.PlayerTurn(context.Background(), s, "hello?")
	assert.Error(t, err, "ended sessions accept no further turns")
}

func TestPlayerTurnNPCReplyFailureUsesPlaceholder(t *testing.T) {
	e, mock, s := engineFixture(t)

	calls := 0
	mock.ChatCompletionFunc = func(ctx context.Context, req services.ProviderRequest) (string, error) {
		calls++
		if calls == 1 {
			return `{"action_type": "dialogue", "confidence": 0.99}`, nil
		}
		return "", errors.New("provider down")
	}

	result, err := e.PlayerTurn(context.Background(), s, "Hello there")
	require.NoError(t, err, "a reply failure degrades, it does not abort the turn")
	assert.Contains(t, result.NPCReply, "Mira")
	assert.True(t, strings.HasPrefix(result.NPCReply, "["))
	assert.Nil(t, result.NPCResult, "no action parsing on a placeholder reply")
	assert.Equal(t, "wary", s.NPC.Disposition)
	require.Len(t, s.History, 2)
}

func TestPlayerTurnDispositionFailureKeepsCurrent(t *testing.T) {
	e, mock, s := engineFixture(t)

	mock.Script(
		services.MockResponse{Content: `{"action_type": "dialogue", "confidence": 0.99}`},
		services.MockResponse{Content: "Mind the wind."},
		services.MockResponse{Content: `{"actions": [], "confidence": 0.5}`},
		// Assessment says change but names no disposition.
		services.MockResponse{Content: `{"should_change": true, "new_disposition": ""}`},
	)

	result, err := e.PlayerTurn(context.Background(), s, "Hello there")
	require.NoError(t, err)
	assert.False(t, result.DispositionChanged)
	assert.Equal(t, "wary", s.NPC.Disposition)
}

func TestIntroductionAndEpilogue(t *testing.T) {
	e, _, s := engineFixture(t)

	intro := e.Introduction()
	assert.Contains(t, intro, "The Obelisk Bargain")
	assert.Contains(t, intro, "cypher in hand")

	assert.Equal(t, "The obelisk's glyphs resolve into words at last.", e.Epilogue(s, true))
	assert.Contains(t, e.Epilogue(s, false), "Mira")
}
