package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hamlet/internal/planner"
	"github.com/talgya/hamlet/internal/world"
)

func talkCmd(content, target string) planner.Command {
	params := map[string]any{"content": content}
	if target != "" {
		params["target_id"] = target
	}
	return planner.Command{Tool: "talk", Params: params}
}

func TestConversationTurnTaking(t *testing.T) {
	w := testWorld()
	// Put the bard in the square so the two can talk.
	w.LocationsState["tavern"].Occupants = nil
	w.LocationsState["town_square"].Occupants = append(w.LocationsState["town_square"].Occupants, "npc_bard")
	eng := newTestEngine(w, "npc_sample")

	require.NoError(t, eng.ProcessCommand("npc_sample", talkCmd("Good day.", "npc_bard")))
	eng.AdvanceTick()

	convo := eng.ConversationFor("npc_sample")
	require.NotNil(t, convo)
	assert.Equal(t, []string{"npc_sample", "npc_bard"}, convo.Participants)
	// Targeted speech hands the floor to the target.
	assert.Equal(t, "npc_bard", convo.CurrentSpeaker)
	assert.Equal(t, []string{"npc_sample"}, convo.TurnOrder)
	require.Len(t, convo.History, 1)
	assert.Equal(t, "npc_sample", convo.History[0].Speaker)

	// The bard replies with no target; the floor rotates back.
	require.NoError(t, eng.ProcessCommand("npc_bard", talkCmd("Well met.", "")))
	eng.AdvanceTick()
	assert.Equal(t, "npc_sample", convo.CurrentSpeaker)
	assert.Len(t, convo.History, 2)
}

func TestOutOfTurnTalkIgnoredByMachine(t *testing.T) {
	w := testWorld()
	w.LocationsState["tavern"].Occupants = nil
	w.LocationsState["town_square"].Occupants = append(w.LocationsState["town_square"].Occupants, "npc_bard")
	eng := newTestEngine(w, "npc_sample")

	require.NoError(t, eng.ProcessCommand("npc_sample", talkCmd("Good day.", "npc_bard")))
	eng.AdvanceTick()
	convo := eng.ConversationFor("npc_sample")
	require.NotNil(t, convo)
	require.Equal(t, "npc_bard", convo.CurrentSpeaker)

	// The sample speaks again while the bard holds the floor: the line
	// does not enter history and the floor does not move.
	require.NoError(t, eng.ProcessCommand("npc_sample", talkCmd("And another thing!", "")))
	eng.AdvanceTick()
	assert.Len(t, convo.History, 1)
	assert.Equal(t, "npc_bard", convo.CurrentSpeaker)
}

func TestInterjectionJoinsTail(t *testing.T) {
	w := testWorld()
	w.LocationsState["tavern"].Occupants = nil
	w.LocationsState["town_square"].Occupants = append(w.LocationsState["town_square"].Occupants, "npc_bard")
	eng := newTestEngine(w, "npc_sample")

	require.NoError(t, eng.ProcessCommand("npc_sample", talkCmd("Good day.", "npc_bard")))
	eng.AdvanceTick()
	convo := eng.ConversationFor("npc_sample")
	require.NotNil(t, convo)
	speakerBefore := convo.CurrentSpeaker

	require.NoError(t, eng.ProcessCommand("npc_enemy", planner.Command{
		Tool:   "interject",
		Params: map[string]any{"conversation_id": convo.ID, "content": "Wait."},
	}))
	eng.AdvanceTick()

	assert.Contains(t, convo.Participants, "npc_enemy")
	assert.Contains(t, convo.TurnOrder, "npc_enemy")
	assert.Equal(t, speakerBefore, convo.CurrentSpeaker)
	assert.Equal(t, "npc_enemy", convo.History[len(convo.History)-1].Speaker)
}

func TestLeaveConversationDissolvesPair(t *testing.T) {
	w := testWorld()
	w.LocationsState["tavern"].Occupants = nil
	w.LocationsState["town_square"].Occupants = append(w.LocationsState["town_square"].Occupants, "npc_bard")
	eng := newTestEngine(w, "npc_sample")

	require.NoError(t, eng.ProcessCommand("npc_sample", talkCmd("Good day.", "npc_bard")))
	eng.AdvanceTick()
	require.NotNil(t, eng.ConversationFor("npc_sample"))

	require.NoError(t, eng.ProcessCommand("npc_bard", planner.Command{
		Tool: "leave_conversation", Params: map[string]any{},
	}))
	eng.AdvanceTick()

	assert.Nil(t, eng.ConversationFor("npc_sample"))
	assert.Nil(t, eng.ConversationFor("npc_bard"))
}

func TestConversationGCWhenParticipantsDisperse(t *testing.T) {
	w := testWorld()
	w.LocationsState["tavern"].Occupants = nil
	w.LocationsState["town_square"].Occupants = append(w.LocationsState["town_square"].Occupants, "npc_bard")
	eng := newTestEngine(w, "npc_sample")

	require.NoError(t, eng.ProcessCommand("npc_sample", talkCmd("Good day.", "npc_bard")))
	eng.AdvanceTick()
	require.NotNil(t, eng.ConversationFor("npc_sample"))

	// The bard wanders off; the next handled event collects the husk.
	require.NoError(t, eng.MoveActor("npc_bard", "market_square"))
	require.NoError(t, eng.ProcessCommand("npc_enemy", planner.Command{
		Tool: "stats", Params: map[string]any{},
	}))
	eng.AdvanceTick()

	assert.Nil(t, eng.ConversationFor("npc_sample"))
}

func TestTalkWithoutColocatedTargetIsStandalone(t *testing.T) {
	eng := newTestEngine(testWorld(), "npc_sample")
	// npc_bard is in the tavern, not co-located: validation rejects.
	err := eng.ProcessCommand("npc_sample", talkCmd("Hello?", "npc_bard"))
	assert.Error(t, err)

	// Untargeted talk narrates without starting a conversation.
	require.NoError(t, eng.ProcessCommand("npc_sample", talkCmd("Lovely weather.", "")))
	eng.AdvanceTick()
	assert.Nil(t, eng.ConversationFor("npc_sample"))
}

func TestConversationSnapshotInPlannerContext(t *testing.T) {
	w := testWorld()
	w.LocationsState["tavern"].Occupants = nil
	w.LocationsState["town_square"].Occupants = append(w.LocationsState["town_square"].Occupants, "npc_bard")
	eng := newTestEngine(w, "npc_sample")

	require.NoError(t, eng.ProcessCommand("npc_sample", talkCmd("Good day.", "npc_bard")))
	eng.AdvanceTick()

	ctx := eng.buildPlannerContext(w.Agents["npc_bard"])
	require.NotNil(t, ctx.Conversation)
	assert.Equal(t, "npc_bard", ctx.Conversation.CurrentSpeaker)
	assert.Contains(t, ctx.Conversation.Participants, "npc_sample")
	assert.Equal(t, world.EventTalk, ctx.Actor.ShortTermMemory[len(ctx.Actor.ShortTermMemory)-1].Kind)
}
