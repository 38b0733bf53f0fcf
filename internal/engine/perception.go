package engine

import (
	"sort"

	"github.com/talgya/hamlet/internal/world"
)

// Visual event kinds that an elevated vantage point perceives from any
// neighbor regardless of edge status.
var vantageVisualKinds = map[world.EventKind]bool{
	world.EventGrab:          true,
	world.EventDrop:          true,
	world.EventEquip:         true,
	world.EventUnequip:       true,
	world.EventAttackHit:     true,
	world.EventAttackMissed:  true,
	world.EventDamageApplied: true,
	world.EventInventory:     true,
	world.EventStats:         true,
	world.EventAnalyze:       true,
}

// recordPerception fans the event out to observers: co-located agents,
// auditory neighbors for scream/talk_loud, and elevated vantage points
// for the visual subset. Each recipient gets a compact projection
// appended to its short-term memory, capped at the configured size.
func (e *Engine) recordPerception(ev world.Event) {
	if ev.Kind == world.EventDescribeLocation || ev.Kind == world.EventWait {
		return
	}

	locationID := e.primaryLocation(ev)
	if locationID == "" {
		return
	}

	recipients := make(map[string]bool)
	if state, ok := e.World.LocationsState[locationID]; ok {
		for _, occ := range state.Occupants {
			if occ != ev.ActorID {
				recipients[occ] = true
			}
		}
	}

	neighbors := e.neighborIDs(locationID)

	// Auditory propagation: screams cross closed edges, shouts only open
	// ones.
	if ev.Kind == world.EventScream || ev.Kind == world.EventTalkLoud {
		for _, neighborID := range neighbors {
			if ev.Kind == world.EventTalkLoud && !e.edgeOpen(locationID, neighborID) {
				continue
			}
			if state, ok := e.World.LocationsState[neighborID]; ok {
				for _, occ := range state.Occupants {
					recipients[occ] = true
				}
			}
		}
	}

	// Visual cross-location perception for elevated vantage points.
	if vantageVisualKinds[ev.Kind] {
		for _, neighborID := range neighbors {
			state, ok := e.World.LocationsState[neighborID]
			if !ok {
				continue
			}
			for _, occ := range state.Occupants {
				agent, ok := e.World.Agents[occ]
				if ok && agent.Tags.HasInherent(world.VantageTag) {
					recipients[occ] = true
				}
			}
		}
	}

	ids := make([]string, 0, len(recipients))
	for id := range recipients {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		agent, ok := e.World.Agents[id]
		if !ok {
			continue
		}
		agent.ShortTermMemory = append(agent.ShortTermMemory, world.NewPerception(ev, locationID))
		limit := e.perceptionBufferSize
		if limit < 1 {
			limit = 1
		}
		for len(agent.ShortTermMemory) > limit {
			agent.ShortTermMemory = agent.ShortTermMemory[1:]
		}
	}
}

// primaryLocation resolves where an event is perceived: a move is
// perceived at its destination, a death at the recorded location, and
// everything else where the actor stands.
func (e *Engine) primaryLocation(ev world.Event) string {
	switch ev.Kind {
	case world.EventMove, world.EventNPCDied:
		return ev.Target()
	default:
		return e.World.FindAgentLocation(ev.ActorID)
	}
}

// neighborIDs unions dynamic and static adjacency for a location, sorted
// for deterministic fan-out.
func (e *Engine) neighborIDs(locationID string) []string {
	seen := make(map[string]bool)
	var out []string
	if state, ok := e.World.LocationsState[locationID]; ok {
		for id := range state.Connections {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	if static, ok := e.World.LocationsStatic[locationID]; ok {
		for _, id := range static.HexConnections {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	sort.Strings(out)
	return out
}

// edgeOpen reports whether the edge from a location to a neighbor is
// open, defaulting to open when the edge carries no status.
func (e *Engine) edgeOpen(fromID, toID string) bool {
	state, ok := e.World.LocationsState[fromID]
	if !ok {
		return false
	}
	conn, ok := state.Connections[toID]
	if !ok {
		return false
	}
	return conn.Status == "" || conn.Status == world.EdgeOpen
}
