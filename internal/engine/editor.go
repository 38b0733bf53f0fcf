package engine

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/talgya/hamlet/internal/simerr"
	"github.com/talgya/hamlet/internal/world"
)

// Editor operations: the typed authoring surface used by dev-mode front
// ends. These mutate the world deterministically without narration or
// perception; player-visible change still goes through events.

// CreateLocation adds an empty location.
func (e *Engine) CreateLocation(id, description string) error {
	if id == "" {
		return simerr.New(simerr.InvalidIntentKind, "location id required")
	}
	if _, exists := e.World.LocationsStatic[id]; exists {
		return simerr.New(simerr.InvalidIntentKind, "location %q already exists", id)
	}
	e.World.LocationsStatic[id] = &world.LocationStatic{
		ID:             id,
		Description:    description,
		HexConnections: make(map[string]string),
	}
	e.World.LocationsState[id] = &world.LocationState{
		ID:          id,
		Connections: make(map[string]*world.Connection),
	}
	return nil
}

// DeleteLocation removes an unoccupied location and every edge pointing
// at it.
func (e *Engine) DeleteLocation(id string) error {
	state, err := e.World.LocationState(id)
	if err != nil {
		return err
	}
	if len(state.Occupants) > 0 {
		return simerr.New(simerr.InvalidIntentKind, "location %q is occupied", id)
	}
	delete(e.World.LocationsStatic, id)
	delete(e.World.LocationsState, id)
	for _, other := range e.World.LocationsState {
		delete(other.Connections, id)
	}
	for _, static := range e.World.LocationsStatic {
		for key, neighbor := range static.HexConnections {
			if neighbor == id {
				delete(static.HexConnections, key)
			}
		}
	}
	return nil
}

// ConnectLocations creates a symmetric edge between two locations with
// the given status and optional canonical direction (a→b side).
func (e *Engine) ConnectLocations(a, b, status string, direction world.Direction) error {
	stateA, err := e.World.LocationState(a)
	if err != nil {
		return err
	}
	stateB, err := e.World.LocationState(b)
	if err != nil {
		return err
	}
	if status == "" {
		status = world.EdgeOpen
	}
	if stateA.Connections == nil {
		stateA.Connections = make(map[string]*world.Connection)
	}
	if stateB.Connections == nil {
		stateB.Connections = make(map[string]*world.Connection)
	}
	stateA.Connections[b] = &world.Connection{Status: status, Direction: direction}
	inverse := world.Direction("")
	if direction != "" {
		inverse = direction.Inverse()
	}
	stateB.Connections[a] = &world.Connection{Status: status, Direction: inverse}
	return nil
}

// DisconnectLocations removes the edge in both directions.
func (e *Engine) DisconnectLocations(a, b string) error {
	stateA, err := e.World.LocationState(a)
	if err != nil {
		return err
	}
	stateB, err := e.World.LocationState(b)
	if err != nil {
		return err
	}
	delete(stateA.Connections, b)
	delete(stateB.Connections, a)
	return nil
}

// SetEdgeStatus flips an existing edge open or closed on both sides.
func (e *Engine) SetEdgeStatus(a, b, status string) error {
	if status != world.EdgeOpen && status != world.EdgeClosed {
		return simerr.New(simerr.InvalidIntentKind, "bad edge status %q", status)
	}
	stateA, err := e.World.LocationState(a)
	if err != nil {
		return err
	}
	stateB, err := e.World.LocationState(b)
	if err != nil {
		return err
	}
	connA, ok := stateA.Connections[b]
	if !ok {
		return simerr.New(simerr.LookupKind, "no edge %s-%s", a, b)
	}
	connA.Status = status
	if connB, ok := stateB.Connections[a]; ok {
		connB.Status = status
	}
	return nil
}

// SetEdgeDirection sets the canonical direction of the a→b edge and the
// inverse on the reciprocal.
func (e *Engine) SetEdgeDirection(a, b string, direction world.Direction) error {
	canon, ok := world.CanonicalDirection(string(direction))
	if !ok {
		return simerr.New(simerr.InvalidIntentKind, "bad direction %q", direction)
	}
	stateA, err := e.World.LocationState(a)
	if err != nil {
		return err
	}
	stateB, err := e.World.LocationState(b)
	if err != nil {
		return err
	}
	connA, ok := stateA.Connections[b]
	if !ok {
		return simerr.New(simerr.LookupKind, "no edge %s-%s", a, b)
	}
	connA.Direction = canon
	if connB, ok := stateB.Connections[a]; ok {
		connB.Direction = canon.Inverse()
	}
	return nil
}

// SpawnAgent places a fresh agent in a location and returns its id.
func (e *Engine) SpawnAgent(locationID, name string) (string, error) {
	state, err := e.World.LocationState(locationID)
	if err != nil {
		return "", err
	}
	id := "npc_" + strings.Split(uuid.NewString(), "-")[0]
	if name == "" {
		name = "Stranger"
	}
	agent := &world.Agent{
		ID:   id,
		Name: name,
		HP:   20,
		Attributes: map[string]int{
			"strength": 10, "dexterity": 10, "constitution": 10,
		},
		Slots:         map[string]string{"main_hand": "", "torso": ""},
		Skills:        make(map[string]string),
		Relationships: make(map[string]string),
		HungerStage:   world.HungerSated,
		LastMealTick:  e.tick,
	}
	e.World.Agents[id] = agent
	state.Occupants = append(state.Occupants, id)
	return id, nil
}

// DeleteAgent removes an agent entirely, dropping carried and equipped
// items where it stood.
func (e *Engine) DeleteAgent(id string) error {
	agent, err := e.World.Agent(id)
	if err != nil {
		return err
	}
	locID := e.World.FindAgentLocation(id)
	if locID != "" {
		loc := e.World.LocationsState[locID]
		loc.RemoveOccupant(id)
		dropped := append([]string(nil), agent.Inventory...)
		slots := make([]string, 0, len(agent.Slots))
		for slot := range agent.Slots {
			slots = append(slots, slot)
		}
		sort.Strings(slots)
		for _, slot := range slots {
			if itemID := agent.Slots[slot]; itemID != "" {
				dropped = append(dropped, itemID)
			}
		}
		for _, itemID := range dropped {
			loc.Items = append(loc.Items, itemID)
			if inst, ok := e.World.Items[itemID]; ok {
				inst.OwnerID = ""
				inst.CurrentLocation = locID
			}
		}
	}
	delete(e.World.Agents, id)
	delete(e.lastActorLines, id)
	e.leaveConversation(id)
	return nil
}

// SpawnItem instantiates a blueprint into a location and returns the
// instance id.
func (e *Engine) SpawnItem(locationID, blueprintID string) (string, error) {
	state, err := e.World.LocationState(locationID)
	if err != nil {
		return "", err
	}
	if _, err := e.World.Blueprint(blueprintID); err != nil {
		return "", err
	}
	id := "item_" + strings.Split(uuid.NewString(), "-")[0]
	e.World.Items[id] = &world.ItemInstance{
		ID:              id,
		BlueprintID:     blueprintID,
		CurrentLocation: locationID,
	}
	state.Items = append(state.Items, id)
	return id, nil
}

// DeleteItem removes an item instance from wherever it rests.
func (e *Engine) DeleteItem(id string) error {
	inst, err := e.World.Item(id)
	if err != nil {
		return err
	}
	if inst.CurrentLocation != "" {
		if loc, ok := e.World.LocationsState[inst.CurrentLocation]; ok {
			loc.RemoveItem(id)
		}
	}
	if inst.OwnerID != "" {
		if owner, ok := e.World.Agents[inst.OwnerID]; ok {
			owner.RemoveItem(id)
			for slot, equipped := range owner.Slots {
				if equipped == id {
					owner.Slots[slot] = ""
				}
			}
		}
	}
	delete(e.World.Items, id)
	return nil
}

// AddAgentMemory appends a memory directly (authoring shortcut for what
// reason would do in play).
func (e *Engine) AddAgentMemory(agentID, text string) error {
	agent, err := e.World.Agent(agentID)
	if err != nil {
		return err
	}
	agent.Memories = append(agent.Memories, world.Memory{
		Text:       text,
		Tick:       e.tick,
		Priority:   world.PriorityNormal,
		Status:     world.MemoryActive,
		SourceID:   "editor",
		Confidence: 1.0,
	})
	return nil
}

// RemoveAgentMemory pops the most recent memory.
func (e *Engine) RemoveAgentMemory(agentID string) error {
	agent, err := e.World.Agent(agentID)
	if err != nil {
		return err
	}
	if len(agent.Memories) == 0 {
		return simerr.New(simerr.LookupKind, "%s has no memories", agentID)
	}
	agent.Memories = agent.Memories[:len(agent.Memories)-1]
	return nil
}

// AddAgentGoal appends a goal.
func (e *Engine) AddAgentGoal(agentID, text string) error {
	agent, err := e.World.Agent(agentID)
	if err != nil {
		return err
	}
	agent.Goals = append(agent.Goals, world.Goal{
		Text:     text,
		Type:     "task",
		Priority: world.PriorityNormal,
		Status:   world.GoalActive,
	})
	return nil
}

// RemoveAgentGoal pops the most recent goal.
func (e *Engine) RemoveAgentGoal(agentID string) error {
	agent, err := e.World.Agent(agentID)
	if err != nil {
		return err
	}
	if len(agent.Goals) == 0 {
		return simerr.New(simerr.LookupKind, "%s has no goals", agentID)
	}
	agent.Goals = agent.Goals[:len(agent.Goals)-1]
	return nil
}

// MoveActor teleports an agent without narration or perception.
func (e *Engine) MoveActor(agentID, toLocationID string) error {
	if _, err := e.World.Agent(agentID); err != nil {
		return err
	}
	dest, err := e.World.LocationState(toLocationID)
	if err != nil {
		return err
	}
	if cur := e.World.FindAgentLocation(agentID); cur != "" {
		e.World.LocationsState[cur].RemoveOccupant(agentID)
	}
	dest.Occupants = append(dest.Occupants, agentID)
	return nil
}
