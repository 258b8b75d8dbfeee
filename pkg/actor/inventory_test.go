package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryAddRemove(t *testing.T) {
	inv, err := NewInventory(
		Item{Name: "Translation Cypher", Description: "Decodes ancient script."},
		Item{Name: "Bronze Key"},
	)
	require.NoError(t, err)
	assert.True(t, inv.Has("Bronze Key"))

	// Duplicate names are rejected.
	err = inv.Add(Item{Name: "Bronze Key"})
	assert.Error(t, err)
	assert.Len(t, inv, 2)

	// Empty names are rejected.
	err = inv.Add(Item{})
	assert.Error(t, err)

	item, ok := inv.Remove("Bronze Key")
	require.True(t, ok)
	assert.Equal(t, "Bronze Key", item.Name)
	assert.False(t, inv.Has("Bronze Key"))
	assert.Len(t, inv, 1)

	// Removing an absent item leaves the inventory untouched.
	_, ok = inv.Remove("Bronze Key")
	assert.False(t, ok)
	assert.Len(t, inv, 1)
}

func TestInventoryTransferConservesItems(t *testing.T) {
	from, err := NewInventory(Item{Name: "Translation Cypher"}, Item{Name: "Silver Coin"})
	require.NoError(t, err)
	to, err := NewInventory(Item{Name: "Ancient Amulet"})
	require.NoError(t, err)

	total := len(from) + len(to)

	item, ok := from.Remove("Translation Cypher")
	require.True(t, ok)
	require.NoError(t, to.Add(item))

	assert.Equal(t, total, len(from)+len(to))
	assert.False(t, from.Has("Translation Cypher"))
	assert.True(t, to.Has("Translation Cypher"))
}

func TestInventoryClone(t *testing.T) {
	inv, err := NewInventory(Item{Name: "Silver Coin"})
	require.NoError(t, err)

	clone := inv.Clone()
	_, ok := clone.Remove("Silver Coin")
	require.True(t, ok)

	assert.True(t, inv.Has("Silver Coin"))
	assert.False(t, clone.Has("Silver Coin"))
}

func TestInventoryDisplayNames(t *testing.T) {
	var empty Inventory
	assert.Equal(t, "nothing", empty.DisplayNames())

	inv, err := NewInventory(Item{Name: "Bronze Key"}, Item{Name: "Silver Coin"})
	require.NoError(t, err)
	assert.Equal(t, "Bronze Key, Silver Coin", inv.DisplayNames())
}

func TestInventoryResolve(t *testing.T) {
	inv, err := NewInventory(
		Item{Name: "Translation Cypher"},
		Item{Name: "Ancient Amulet"},
		Item{Name: "Bronze Key"},
	)
	require.NoError(t, err)

	tests := []struct {
		name     string
		query    string
		wantItem string
		wantOK   bool
	}{
		{"exact name", "Bronze Key", "Bronze Key", true},
		{"case insensitive", "bronze key", "Bronze Key", true},
		{"partial reference", "cypher", "Translation Cypher", true},
		{"verbose reference", "the ancient amulet please", "Ancient Amulet", true},
		{"typo within tolerance", "translaton cypher", "Translation Cypher", true},
		{"no confident match", "sword", "", false},
		{"empty query", "  ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, ok := inv.Resolve(tt.query)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantItem, item.Name)
		})
	}
}

func TestInventoryResolveNeverGuesses(t *testing.T) {
	inv, err := NewInventory(Item{Name: "Ancient Amulet"})
	require.NoError(t, err)

	_, ok := inv.Resolve("sword")
	assert.False(t, ok)
}

func TestInventoryResolveTieBreak(t *testing.T) {
	// Both names contain "key"; the longer shared run with the query wins.
	inv, err := NewInventory(
		Item{Name: "Rusty Key"},
		Item{Name: "Keystone"},
	)
	require.NoError(t, err)

	item, ok := inv.Resolve("keyst")
	require.True(t, ok)
	assert.Equal(t, "Keystone", item.Name)
}
