package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-engine/parley/pkg/actor"
)

func validScenario() *Scenario {
	return &Scenario{
		Name:         "The Obelisk Bargain",
		Description:  "Talk the scholar out of her cypher.",
		Introduction: "Mira barely looks up from her rubbings as you approach.",
		Items: map[string]ItemRecord{
			"Translation Cypher": {Name: "Translation Cypher", Description: "Decodes ancient script."},
			"Bronze Key":         {Name: "Bronze Key"},
		},
		Location: LocationRecord{Name: "Obelisk Plaza", Description: "A windswept square."},
		NPC: CharacterRecord{
			Name:        "Mira",
			Personality: "cautious scholar",
			Goal:        "decode the obelisk",
			Disposition: "wary",
			Items:       []string{"Translation Cypher"},
		},
		Player: PlayerRecord{Name: "Ashe", Items: []string{"Bronze Key"}},
		Victory: &VictoryCondition{
			Type:     VictoryPlayerObtainsItem,
			ItemName: "Translation Cypher",
		},
	}
}

func TestScenarioValidate(t *testing.T) {
	assert.NoError(t, validScenario().Validate())

	tests := []struct {
		name   string
		mutate func(*Scenario)
	}{
		{"empty name", func(s *Scenario) { s.Name = "" }},
		{"no player name", func(s *Scenario) { s.Player.Name = "" }},
		{"npc missing goal", func(s *Scenario) { s.NPC.Goal = "" }},
		{"undefined player item", func(s *Scenario) { s.Player.Items = []string{"Sword"} }},
		{"item held twice", func(s *Scenario) { s.NPC.Items = append(s.NPC.Items, "Bronze Key") }},
		{"item key mismatch", func(s *Scenario) {
			s.Items["Bronze Key"] = ItemRecord{Name: "Brass Key"}
		}},
		{"victory item undefined", func(s *Scenario) { s.Victory.ItemName = "Sword" }},
		{"unknown victory type", func(s *Scenario) { s.Victory.Type = "NPC_SMILES" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validScenario()
			tt.mutate(s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestScenarioBuildsActors(t *testing.T) {
	s := validScenario()

	player, err := s.NewPlayer()
	require.NoError(t, err)
	assert.Equal(t, "Ashe", player.Name)
	assert.True(t, player.Inventory.Has("Bronze Key"))

	npc, err := s.NewNPC()
	require.NoError(t, err)
	assert.Equal(t, "wary", npc.Disposition)
	assert.True(t, npc.Inventory.Has("Translation Cypher"))

	item, ok := npc.Inventory.Get("Translation Cypher")
	require.True(t, ok)
	assert.Equal(t, "Decodes ancient script.", item.Description)
}

func TestVictoryMet(t *testing.T) {
	s := validScenario()

	player, err := s.NewPlayer()
	require.NoError(t, err)
	assert.False(t, s.VictoryMet(player.Inventory))

	require.NoError(t, player.Inventory.Add(actor.Item{Name: "Translation Cypher"}))
	assert.True(t, s.VictoryMet(player.Inventory))

	s.Victory = nil
	assert.False(t, s.VictoryMet(player.Inventory))
}

func TestLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "obelisk.json")

	data := `{
		"name": "The Obelisk Bargain",
		"introduction": "Mira barely looks up.",
		"items": {
			"Translation Cypher": {"name": "Translation Cypher"},
			"Bronze Key": {"name": "Bronze Key"}
		},
		"location": {"name": "Obelisk Plaza"},
		"npc": {
			"name": "Mira",
			"personality": "cautious scholar",
			"goal": "decode the obelisk",
			"items": ["Translation Cypher"]
		},
		"player": {"name": "Ashe", "items": ["Bronze Key"]},
		"victory": {"type": "PLAYER_OBTAINS_ITEM", "item_name": "Translation Cypher"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "The Obelisk Bargain", s.Name)
	assert.Equal(t, "obelisk.json", s.FileName)

	scenarios, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, scenarios, 1)

	_, err = LoadDir(t.TempDir())
	assert.Error(t, err)
}
