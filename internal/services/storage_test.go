package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-engine/parley/pkg/actor"
	"github.com/parley-engine/parley/pkg/chat"
	"github.com/parley-engine/parley/pkg/scenario"
	"github.com/parley-engine/parley/pkg/session"
)

func testSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.New(&scenario.Scenario{
		Name: "The Obelisk Bargain",
		Items: map[string]scenario.ItemRecord{
			"Translation Cypher": {Name: "Translation Cypher"},
			"Bronze Key":         {Name: "Bronze Key"},
		},
		Location: scenario.LocationRecord{Name: "Obelisk Plaza"},
		NPC: scenario.CharacterRecord{
			Name:        "Mira",
			Personality: "cautious scholar",
			Goal:        "decode the obelisk",
			Items:       []string{"Translation Cypher"},
		},
		Player: scenario.PlayerRecord{Name: "Ashe", Items: []string{"Bronze Key"}},
	})
	require.NoError(t, err)
	return s
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	s := testSession(t)

	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.SaveSession(ctx, s))

	got, err := store.LoadSession(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, s.ID, got.ID)

	missing, err := store.LoadSession(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.DeleteSession(ctx, s.ID))
	got, err = store.LoadSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(mr.Addr(), slog.Default())
	defer func() { _ = store.Close() }()
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	s := testSession(t)
	s.NPC.ActiveTrade = &actor.TradeProposal{
		PlayerItem: actor.Item{Name: "Bronze Key"},
		NPCItem:    actor.Item{Name: "Translation Cypher"},
		ProposedBy: "Ashe",
	}
	s.Record(chat.RoleUser, "I'll trade my key for your cypher.")

	require.NoError(t, store.SaveSession(ctx, s))

	// Sessions live under the expected key with a TTL.
	key := "parley:session:" + s.ID.String()
	assert.True(t, mr.Exists(key))
	assert.Greater(t, mr.TTL(key), time.Duration(0))

	got, err := store.LoadSession(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, s.ID, got.ID)
	require.NotNil(t, got.NPC.ActiveTrade)
	assert.Equal(t, "Ashe", got.NPC.ActiveTrade.ProposedBy)
	require.Len(t, got.History, 1)

	missing, err := store.LoadSession(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.DeleteSession(ctx, s.ID))
	assert.False(t, mr.Exists(key))
}
