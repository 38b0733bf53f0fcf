package engine

import (
	"log/slog"
	"sort"

	"github.com/talgya/hamlet/internal/planner"
	"github.com/talgya/hamlet/internal/world"
)

// RunOneNPCTurn plans and executes exactly one NPC action, blocking on
// the LLM call, and drains the resulting events without advancing time.
// It returns false once the round-robin cycle is exhausted; the next call
// rebuilds the turn order and starts a fresh cycle.
func (e *Engine) RunOneNPCTurn() bool {
	if len(e.turnOrder) > 0 && e.turnIndex >= len(e.turnOrder) {
		// The last agent of the cycle acted on the previous call.
		e.turnIndex = 0
		e.turnOrder = e.turnOrder[:0]
		return false
	}
	if len(e.turnOrder) == 0 {
		for id := range e.World.Agents {
			if id != e.PlayerID {
				e.turnOrder = append(e.turnOrder, id)
			}
		}
		sort.Strings(e.turnOrder)
		e.turnIndex = 0
		if len(e.turnOrder) == 0 {
			return false
		}
	}

	for e.turnIndex < len(e.turnOrder) {
		id := e.turnOrder[e.turnIndex]
		e.turnIndex++

		agent, ok := e.World.Agents[id]
		if !ok || agent.IsDead() {
			continue
		}
		if agent.NextAvailableTick > e.tick {
			continue
		}

		ctx := e.buildPlannerContext(agent)
		var cmd *planner.Command
		if e.Planner != nil {
			cmd = e.Planner.Plan(ctx, e.conversationTail(id))
		}
		if cmd == nil {
			// No action this turn; keep scanning the cycle.
			continue
		}

		// Runtime guard: speaking out of turn becomes a visible wait.
		if convo := e.ConversationFor(id); convo != nil && convo.CurrentSpeaker != id && cmd.Tool == "talk" {
			cmd = planner.WaitFallback()
		}

		if err := e.ProcessCommand(id, *cmd); err != nil {
			slog.Warn("npc action rejected", "actor", id, "tool", cmd.Tool, "error", err)
		}
		e.drainReady()
		return true
	}

	e.turnIndex = 0
	e.turnOrder = e.turnOrder[:0]
	return false
}

// buildPlannerContext assembles the per-turn slice of the actor's state
// for the planner.
func (e *Engine) buildPlannerContext(agent *world.Agent) planner.Context {
	locID := e.World.FindAgentLocation(agent.ID)

	loc := planner.LocationContext{ID: locID}
	if locID != "" {
		if static, ok := e.World.LocationsStatic[locID]; ok {
			loc.Name = static.ID
			loc.Description = static.Description
		}
		if state, ok := e.World.LocationsState[locID]; ok {
			for _, occ := range state.Occupants {
				if occ != agent.ID {
					loc.Occupants = append(loc.Occupants, occ)
				}
			}
			loc.Items = append(loc.Items, state.Items...)
			loc.Connections = state.Connections
			for id := range state.Connections {
				loc.Neighbors = append(loc.Neighbors, id)
			}
			sort.Strings(loc.Neighbors)
		}
	}

	var convoSnap *planner.ConversationSnapshot
	if convo := e.ConversationFor(agent.ID); convo != nil {
		convoSnap = &planner.ConversationSnapshot{
			ConversationID:      convo.ID,
			Participants:        append([]string(nil), convo.Participants...),
			CurrentSpeaker:      convo.CurrentSpeaker,
			TurnOrder:           append([]string(nil), convo.TurnOrder...),
			LastInteractionTick: convo.LastInteractionTick,
		}
	}

	available := e.Tools.Names()
	sort.Strings(available)

	return planner.Context{
		GameTick: e.tick,
		Actor: planner.Persona{
			ID:              agent.ID,
			Name:            agent.Name,
			HP:              agent.HP,
			Attributes:      agent.Attributes,
			Skills:          agent.Skills,
			Tags:            agent.Tags,
			ShortTermMemory: agent.ShortTermMemory,
			Memories:        agent.Memories,
			CoreMemories:    agent.CoreMemories,
			Goals:           agent.Goals,
		},
		Location:       loc,
		AvailableTools: available,
		Conversation:   convoSnap,
	}
}

// conversationTail returns the text of the actor's recent conversation
// lines for retrieval keyword building.
func (e *Engine) conversationTail(actorID string) []string {
	convo := e.ConversationFor(actorID)
	if convo == nil {
		return nil
	}
	var lines []string
	for _, l := range convo.History {
		lines = append(lines, l.Content)
	}
	return lines
}
