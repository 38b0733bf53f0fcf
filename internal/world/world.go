package world

import (
	"sort"

	"github.com/talgya/hamlet/internal/simerr"
)

// World is the canonical store. It exclusively owns agents, locations,
// and items by id; integrity is enforced by Apply.
type World struct {
	Agents          map[string]*Agent
	LocationsStatic map[string]*LocationStatic
	LocationsState  map[string]*LocationState
	Blueprints      map[string]*ItemBlueprint
	Items           map[string]*ItemInstance
}

// New returns an empty world.
func New() *World {
	return &World{
		Agents:          make(map[string]*Agent),
		LocationsStatic: make(map[string]*LocationStatic),
		LocationsState:  make(map[string]*LocationState),
		Blueprints:      make(map[string]*ItemBlueprint),
		Items:           make(map[string]*ItemInstance),
	}
}

// Agent returns the agent with the given id.
func (w *World) Agent(id string) (*Agent, error) {
	if a, ok := w.Agents[id]; ok {
		return a, nil
	}
	return nil, simerr.New(simerr.LookupKind, "unknown agent %q", id)
}

// LocationStatic returns the static record for a location.
func (w *World) LocationStatic(id string) (*LocationStatic, error) {
	if l, ok := w.LocationsStatic[id]; ok {
		return l, nil
	}
	return nil, simerr.New(simerr.LookupKind, "unknown location %q", id)
}

// LocationState returns the mutable record for a location.
func (w *World) LocationState(id string) (*LocationState, error) {
	if l, ok := w.LocationsState[id]; ok {
		return l, nil
	}
	return nil, simerr.New(simerr.LookupKind, "unknown location state %q", id)
}

// Item returns the item instance with the given id.
func (w *World) Item(id string) (*ItemInstance, error) {
	if it, ok := w.Items[id]; ok {
		return it, nil
	}
	return nil, simerr.New(simerr.LookupKind, "unknown item %q", id)
}

// Blueprint returns the item blueprint with the given id.
func (w *World) Blueprint(id string) (*ItemBlueprint, error) {
	if b, ok := w.Blueprints[id]; ok {
		return b, nil
	}
	return nil, simerr.New(simerr.LookupKind, "unknown blueprint %q", id)
}

// ItemName resolves an instance id to its blueprint name, falling back to
// the raw id when either lookup misses.
func (w *World) ItemName(itemID string) string {
	if it, ok := w.Items[itemID]; ok {
		if bp, ok := w.Blueprints[it.BlueprintID]; ok {
			return bp.Name
		}
	}
	return itemID
}

// FindAgentLocation scans location occupants for the agent. Returns ""
// when the agent is not placed anywhere. Linear scan is fine at this
// world size.
func (w *World) FindAgentLocation(agentID string) string {
	for locID, st := range w.LocationsState {
		for _, occ := range st.Occupants {
			if occ == agentID {
				return locID
			}
		}
	}
	return ""
}

// HydrateConnectionDirections seeds the dynamic edge map from the static
// hex layout: every static connection gets a dynamic entry (status open
// when missing) with its canonical direction, and the reciprocal side
// gets the inverse. Existing statuses and directions are preserved.
func (w *World) HydrateConnectionDirections() {
	for locID, static := range w.LocationsStatic {
		state, ok := w.LocationsState[locID]
		if !ok {
			continue
		}
		if state.Connections == nil {
			state.Connections = make(map[string]*Connection)
		}
		for dirKey, neighborID := range static.HexConnections {
			dir, dirOK := CanonicalDirection(dirKey)
			entry := state.Connections[neighborID]
			if entry == nil {
				entry = &Connection{}
				state.Connections[neighborID] = entry
			}
			if entry.Status == "" {
				entry.Status = EdgeOpen
			}
			if entry.Direction == "" && dirOK {
				entry.Direction = dir
			}
			recip, ok := w.LocationsState[neighborID]
			if !ok {
				continue
			}
			if recip.Connections == nil {
				recip.Connections = make(map[string]*Connection)
			}
			rentry := recip.Connections[locID]
			if rentry == nil {
				rentry = &Connection{}
				recip.Connections[locID] = rentry
			}
			if rentry.Status == "" {
				rentry.Status = entry.Status
			}
			if rentry.Direction == "" && dirOK {
				rentry.Direction = dir.Inverse()
			}
		}
	}
}

// UpdateHunger advances each living agent's hunger stage from the gap
// between now and its last meal, emitting one point of starvation damage
// per starving agent.
func (w *World) UpdateHunger(currentTick int) []Event {
	const (
		hungryThreshold   = 20
		starvingThreshold = 40
	)
	var events []Event
	ids := make([]string, 0, len(w.Agents))
	for id := range w.Agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		a := w.Agents[id]
		if a.IsDead() {
			continue
		}
		sinceMeal := currentTick - a.LastMealTick
		switch {
		case sinceMeal >= starvingThreshold:
			a.HungerStage = HungerStarving
			events = append(events, Event{
				Kind:      EventDamageApplied,
				Tick:      currentTick,
				ActorID:   a.ID,
				TargetIDs: []string{a.ID},
				Payload:   Payload{"amount": 1, "damage_type": "starvation"},
			})
		case sinceMeal >= hungryThreshold:
			a.HungerStage = HungerHungry
		default:
			a.HungerStage = HungerSated
		}
	}
	return events
}
