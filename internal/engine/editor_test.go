package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hamlet/internal/simerr"
	"github.com/talgya/hamlet/internal/world"
)

func TestEditorLocationLifecycle(t *testing.T) {
	eng := newTestEngine(testWorld(), "")

	require.NoError(t, eng.CreateLocation("alley", "A narrow alley."))
	assert.Error(t, eng.CreateLocation("alley", "again"))

	require.NoError(t, eng.ConnectLocations("town_square", "alley", world.EdgeOpen, world.DirSE))
	conn := eng.World.LocationsState["town_square"].Connections["alley"]
	require.NotNil(t, conn)
	assert.Equal(t, world.DirSE, conn.Direction)
	recip := eng.World.LocationsState["alley"].Connections["town_square"]
	require.NotNil(t, recip)
	assert.Equal(t, world.DirNW, recip.Direction)

	require.NoError(t, eng.SetEdgeStatus("town_square", "alley", world.EdgeClosed))
	assert.Equal(t, world.EdgeClosed, recip.Status)

	// An occupied location cannot be deleted.
	err := eng.DeleteLocation("town_square")
	assert.True(t, simerr.Is(err, simerr.InvalidIntentKind))

	require.NoError(t, eng.DeleteLocation("alley"))
	assert.NotContains(t, eng.World.LocationsState["town_square"].Connections, "alley")
}

func TestEditorSpawnAndDeleteAgent(t *testing.T) {
	eng := newTestEngine(testWorld(), "")

	id, err := eng.SpawnAgent("market_square", "Tam")
	require.NoError(t, err)
	assert.Contains(t, eng.World.LocationsState["market_square"].Occupants, id)

	itemID, err := eng.SpawnItem("market_square", "sword")
	require.NoError(t, err)
	require.NoError(t, eng.MoveActor(id, "market_square"))

	// Give the spawned agent the item, then delete: the item drops.
	agent := eng.World.Agents[id]
	eng.World.LocationsState["market_square"].RemoveItem(itemID)
	agent.Inventory = []string{itemID}
	eng.World.Items[itemID].OwnerID = id
	eng.World.Items[itemID].CurrentLocation = ""

	require.NoError(t, eng.DeleteAgent(id))
	assert.NotContains(t, eng.World.Agents, id)
	assert.Contains(t, eng.World.LocationsState["market_square"].Items, itemID)
	checkItemPlacement(t, eng.World)
}

func TestEditorSpawnItemUnknownBlueprint(t *testing.T) {
	eng := newTestEngine(testWorld(), "")
	_, err := eng.SpawnItem("market_square", "nonesuch")
	assert.True(t, simerr.Is(err, simerr.LookupKind))
}

func TestEditorMemoryAndGoal(t *testing.T) {
	eng := newTestEngine(testWorld(), "")

	require.NoError(t, eng.AddAgentMemory("npc_bard", "The well ran dry."))
	require.NoError(t, eng.AddAgentGoal("npc_bard", "Find water."))
	assert.Len(t, eng.World.Agents["npc_bard"].Memories, 1)
	assert.Len(t, eng.World.Agents["npc_bard"].Goals, 1)

	require.NoError(t, eng.RemoveAgentMemory("npc_bard"))
	require.NoError(t, eng.RemoveAgentGoal("npc_bard"))
	assert.Empty(t, eng.World.Agents["npc_bard"].Memories)
	assert.Error(t, eng.RemoveAgentGoal("npc_bard"))
}

func TestEditorMoveActorSilent(t *testing.T) {
	eng := newTestEngine(testWorld(), "")
	require.NoError(t, eng.MoveActor("npc_bard", "market_square"))
	assert.Contains(t, eng.World.LocationsState["market_square"].Occupants, "npc_bard")
	assert.NotContains(t, eng.World.LocationsState["tavern"].Occupants, "npc_bard")
	// No narration, no perception.
	assert.Empty(t, eng.RecentEvents(0))
	assert.Empty(t, eng.World.Agents["npc_sample"].ShortTermMemory)
}

func TestSnapshotProjection(t *testing.T) {
	w := testWorld()
	w.Agents["npc_sample"].Inventory = []string{"item_sword_1"}
	w.Items["item_sword_1"].OwnerID = "npc_sample"
	w.Items["item_sword_1"].CurrentLocation = ""
	w.LocationsState["town_square"].Items = nil
	eng := newTestEngine(w, "npc_sample")

	snap := eng.Snapshot()
	assert.Equal(t, 0, snap.Tick)
	assert.Equal(t, "npc_sample", snap.PlayerID)
	require.Len(t, snap.Agents, 3)
	require.Len(t, snap.Locations, 3)

	var sample AgentView
	for _, a := range snap.Agents {
		if a.ID == "npc_sample" {
			sample = a
		}
	}
	assert.Equal(t, "town_square", sample.Location)
	require.Len(t, sample.Inventory, 1)
	assert.Equal(t, "Sword", sample.Inventory[0].Name)

	var square LocationView
	for _, l := range snap.Locations {
		if l.ID == "town_square" {
			square = l
		}
	}
	require.Len(t, square.Neighbors, 2)
	for _, nb := range square.Neighbors {
		assert.NotEmpty(t, nb.Status)
		assert.NotEmpty(t, nb.Direction)
	}
	// The layout places the row on the q axis with town_square between
	// its neighbors.
	coords := map[string]world.Axial{}
	for _, l := range snap.Locations {
		coords[l.ID] = l.Axial
	}
	assert.NotEqual(t, coords["tavern"], coords["market_square"])
}
