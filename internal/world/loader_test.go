package world

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadWorldFromDataDir(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "npcs", "npc_bard.json"), `{
		"id": "npc_bard",
		"name": "Wren",
		"hp": 20,
		"inventory": [],
		"slots": {"main_hand": ""},
		"attributes": {"strength": 9, "dexterity": 13, "constitution": 10},
		"skills": {"daggers": "novice"}
	}`)
	writeFile(t, filepath.Join(dir, "locations", "town_square_static.json"), `{
		"id": "town_square",
		"description": "The town square.",
		"hex_connections": {"north-east": "market_square"}
	}`)
	writeFile(t, filepath.Join(dir, "locations", "town_square_state.json"), `{
		"id": "town_square",
		"occupants": ["npc_bard"],
		"items": ["item_apple_1"],
		"connections_state": {}
	}`)
	writeFile(t, filepath.Join(dir, "locations", "market_square_static.json"), `{
		"id": "market_square",
		"description": "The market.",
		"hex_connections": {"south-west": "town_square"}
	}`)
	writeFile(t, filepath.Join(dir, "locations", "market_square_state.json"), `{
		"id": "market_square",
		"occupants": [],
		"items": [],
		"connections_state": {"town_square": {"status": "closed", "direction": "southwest"}}
	}`)
	writeFile(t, filepath.Join(dir, "items", "catalog.json"), `{
		"apple": {"name": "Apple", "weight": 1, "properties": ["food"]}
	}`)
	writeFile(t, filepath.Join(dir, "items", "instances", "item_apple_1.json"), `{
		"id": "item_apple_1",
		"blueprint_id": "apple"
	}`)

	w, err := Load(dir)
	require.NoError(t, err)

	agent, err := w.Agent("npc_bard")
	require.NoError(t, err)
	// Missing scheduling fields default to zero and sated.
	assert.Equal(t, 0, agent.NextAvailableTick)
	assert.Equal(t, 0, agent.LastMealTick)
	assert.Equal(t, HungerSated, agent.HungerStage)

	bp, err := w.Blueprint("apple")
	require.NoError(t, err)
	assert.Equal(t, "apple", bp.ID)
	assert.Equal(t, "Apple", bp.Name)

	// Hydration created the missing edge with a canonical direction and
	// the authored closed edge kept its status and got canonicalized.
	from := w.LocationsState["town_square"].Connections["market_square"]
	require.NotNil(t, from)
	assert.Equal(t, DirNE, from.Direction)
	to := w.LocationsState["market_square"].Connections["town_square"]
	require.NotNil(t, to)
	assert.Equal(t, EdgeClosed, to.Status)
	assert.Equal(t, DirSW, to.Direction)

	// The grounded apple learned its placement.
	assert.Equal(t, "town_square", w.Items["item_apple_1"].CurrentLocation)
	assert.Equal(t, "town_square", w.FindAgentLocation("npc_bard"))
}
