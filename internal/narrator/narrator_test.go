package narrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talgya/hamlet/internal/world"
)

func narratorWorld() *world.World {
	w := world.New()
	w.Agents["npc_bard"] = &world.Agent{
		ID: "npc_bard", Name: "Wren", HP: 16,
		Slots: map[string]string{"main_hand": ""},
	}
	w.Agents["npc_guard"] = &world.Agent{ID: "npc_guard", Name: "Osric", HP: 20,
		Slots: map[string]string{"main_hand": ""},
	}
	w.LocationsStatic["market_square"] = &world.LocationStatic{
		ID: "market_square", Description: "The market square. Stalls crowd the cobbles.",
	}
	w.Blueprints["sword"] = &world.ItemBlueprint{ID: "sword", Name: "Rusty Sword", DamageDice: "1d6", DamageType: "slashing"}
	w.Items["item_sword_1"] = &world.ItemInstance{ID: "item_sword_1", BlueprintID: "sword"}
	return w
}

func TestRenderLines(t *testing.T) {
	n := New(narratorWorld())

	cases := []struct {
		ev   world.Event
		want string
	}{
		{
			world.Event{Kind: world.EventMove, ActorID: "npc_bard", TargetIDs: []string{"market_square"}},
			"Wren moves to The market square.",
		},
		{
			world.Event{Kind: world.EventGrab, ActorID: "npc_bard", TargetIDs: []string{"item_sword_1"}},
			"Wren picks up Rusty Sword.",
		},
		{
			world.Event{Kind: world.EventTalk, ActorID: "npc_bard", Payload: world.Payload{"content": "hello", "recipient_id": "npc_guard"}},
			"Wren to Osric: hello",
		},
		{
			world.Event{Kind: world.EventTalk, ActorID: "npc_bard", Payload: world.Payload{"content": "hello"}},
			"Wren says: hello",
		},
		{
			world.Event{Kind: world.EventScream, ActorID: "npc_bard", Payload: world.Payload{"content": "help"}},
			"Wren screams: help",
		},
		{
			world.Event{Kind: world.EventDamageApplied, ActorID: "npc_guard", TargetIDs: []string{"npc_bard"}, Payload: world.Payload{"amount": 4, "damage_type": "slashing"}},
			"Wren takes 4 slashing damage (HP: 16)",
		},
		{
			world.Event{Kind: world.EventAttackHit, ActorID: "npc_guard", TargetIDs: []string{"npc_bard"}, Payload: world.Payload{"to_hit": 18, "target_ac": 10}},
			"Osric hits Wren (roll 18 vs AC 10)",
		},
		{
			world.Event{Kind: world.EventNPCDied, ActorID: "npc_bard", TargetIDs: []string{"market_square"}},
			"Wren dies.",
		},
		{
			world.Event{Kind: world.EventWait, ActorID: "npc_bard", Payload: world.Payload{"ticks": 3}},
			"Wren waits for 3 ticks.",
		},
		{
			world.Event{Kind: world.EventRest, ActorID: "npc_bard", Payload: world.Payload{"ticks": 1, "healed": 1}},
			"Wren rests and recovers 1 HP.",
		},
		{
			world.Event{Kind: world.EventToggleStarvation, Payload: world.Payload{"enabled": false}},
			"Starvation disabled.",
		},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, n.Render(tc.ev))
	}
}

func TestRenderAttackAttemptUsesWeaponName(t *testing.T) {
	w := narratorWorld()
	n := New(w)
	ev := world.Event{Kind: world.EventAttackAttempt, ActorID: "npc_guard", TargetIDs: []string{"npc_bard"}}
	assert.Equal(t, "Osric attacks Wren with Unarmed.", n.Render(ev))

	w.Agents["npc_guard"].Slots["main_hand"] = "item_sword_1"
	w.Items["item_sword_1"].OwnerID = "npc_guard"
	assert.Equal(t, "Osric attacks Wren with Rusty Sword.", n.Render(ev))
}

func TestRenderInventoryAndDescribe(t *testing.T) {
	n := New(narratorWorld())

	assert.Equal(t, "Wren carries nothing.",
		n.Render(world.Event{Kind: world.EventInventory, ActorID: "npc_bard"}))
	assert.Equal(t, "Wren carries: Rusty Sword, Apple",
		n.Render(world.Event{Kind: world.EventInventory, ActorID: "npc_bard",
			Payload: world.Payload{"items": []string{"Rusty Sword", "Apple"}}}))

	got := n.Render(world.Event{Kind: world.EventDescribeLocation, ActorID: "npc_bard",
		Payload: world.Payload{
			"description": "The market square.",
			"occupants":   []string{"Osric"},
			"items":       []string{"Rusty Sword"},
		}})
	assert.Equal(t, "The market square. You see: Osric Items here: Rusty Sword", got)
}

func TestRenderUnknownKindIsEmpty(t *testing.T) {
	n := New(narratorWorld())
	assert.Empty(t, n.Render(world.Event{Kind: world.EventKind("mystery")}))
}
